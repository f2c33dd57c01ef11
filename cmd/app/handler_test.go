package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserHandler(t *testing.T) {
	app, db := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	testCases := []struct {
		name         string
		form         url.Values
		wantStatus   int
		wantLocation string
		wantBody     envelope
	}{
		{
			name:         "valid request",
			form:         url.Values{"name": {"Owner"}, "email": {"owner@example.com"}, "password": {testPassword}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/",
		},
		{
			name:         "duplicate email",
			form:         url.Values{"name": {"Someone"}, "email": {"owner@example.com"}, "password": {"other"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/login",
		},
		{
			name:       "invalid email",
			form:       url.Values{"name": {"Someone"}, "email": {"nope"}, "password": {"other"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   envelope{"error": map[string]any{"email": "must be a valid email address"}},
		},
		{
			name:       "empty form",
			form:       url.Values{},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: envelope{"error": map[string]any{
				"name":     "must be provided",
				"email":    "must be provided",
				"password": "must be provided",
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := ts.newClient(t)

			status, header, body := c.postForm(t, "/register", tc.form)
			assert.Equal(t, tc.wantStatus, status)

			if tc.wantLocation != "" {
				assert.Equal(t, tc.wantLocation, header.Get("Location"))
			}
			if tc.wantBody != nil {
				assert.Equal(t, tc.wantBody, body)
			}
		})
	}

	assert.Equal(t, 1, countRows(t, db, "users"))
}

func TestRegisterTwiceShowsFlashOnLogin(t *testing.T) {
	app, db := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	ts.newClient(t).register(t, "Owner", "owner@example.com")

	c := ts.newClient(t)
	status, header, _ := c.postForm(t, "/register", url.Values{
		"name":     {"Again"},
		"email":    {"owner@example.com"},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, status)
	require.Equal(t, "/login", header.Get("Location"))

	_, _, body := c.get(t, "/login")
	assert.Equal(t, msgAccountExists, body["flash"])

	// the flash is shown once
	_, _, body = c.get(t, "/login")
	assert.NotContains(t, body, "flash")

	assert.Equal(t, 1, countRows(t, db, "users"))
}

func TestRegisterLogsIn(t *testing.T) {
	app, _ := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	c := ts.newClient(t)
	c.register(t, "Owner", "owner@example.com")

	status, _, body := c.get(t, "/")
	require.Equal(t, http.StatusOK, status)

	current, ok := body["current_user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), current["id"])
	assert.Equal(t, "owner", current["role"])
}

func TestLoginUserHandler(t *testing.T) {
	app, _ := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	ts.newClient(t).register(t, "Owner", "owner@example.com")

	testCases := []struct {
		name       string
		reveal     bool
		form       url.Values
		wantStatus int
		wantError  any
	}{
		{
			name:       "valid credentials",
			form:       url.Values{"email": {"owner@example.com"}, "password": {testPassword}},
			wantStatus: http.StatusSeeOther,
		},
		{
			name:       "unknown email",
			form:       url.Values{"email": {"nobody@example.com"}, "password": {testPassword}},
			wantStatus: http.StatusUnauthorized,
			wantError:  msgInvalidLogin,
		},
		{
			name:       "wrong password",
			form:       url.Values{"email": {"owner@example.com"}, "password": {"wrong"}},
			wantStatus: http.StatusUnauthorized,
			wantError:  msgInvalidLogin,
		},
		{
			name:       "unknown email revealed",
			reveal:     true,
			form:       url.Values{"email": {"nobody@example.com"}, "password": {testPassword}},
			wantStatus: http.StatusUnauthorized,
			wantError:  msgNoAccount,
		},
		{
			name:       "wrong password revealed",
			reveal:     true,
			form:       url.Values{"email": {"owner@example.com"}, "password": {"wrong"}},
			wantStatus: http.StatusUnauthorized,
			wantError:  msgWrongPassword,
		},
		{
			name:       "missing fields",
			form:       url.Values{},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  map[string]any{"email": "must be provided", "password": "must be provided"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app.config.LoginRevealAccount = tc.reveal
			t.Cleanup(func() { app.config.LoginRevealAccount = false })

			status, _, body := ts.newClient(t).postForm(t, "/login", tc.form)
			assert.Equal(t, tc.wantStatus, status)

			if tc.wantError != nil {
				assert.Equal(t, tc.wantError, body["error"])
			}
		})
	}
}

func TestLogoutUserHandler(t *testing.T) {
	app, _ := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	c := ts.newClient(t)
	c.register(t, "Owner", "owner@example.com")

	status, header, _ := c.get(t, "/logout")
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", header.Get("Location"))

	_, _, body := c.get(t, "/")
	assert.Nil(t, body["current_user"])
}

func TestCreatePostRequiresAdmin(t *testing.T) {
	app, db := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	owner := ts.newClient(t)
	owner.register(t, "Owner", "owner@example.com")

	member := ts.newClient(t)
	member.register(t, "Alice", "alice@example.com")

	// anonymous visitors are sent to the login page
	status, header, _ := ts.newClient(t).postForm(t, "/new-post", postForm("Anonymous"))
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", header.Get("Location"))

	status, _, _ = member.postForm(t, "/new-post", postForm("Denied"))
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = member.get(t, "/new-post")
	assert.Equal(t, http.StatusForbidden, status)

	status, header, _ = owner.postForm(t, "/admin/add", url.Values{"the_user": {"2"}})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/admins", header.Get("Location"))

	status, header, body := member.postForm(t, "/new-post", postForm("Allowed"))
	require.Equal(t, http.StatusCreated, status)

	post, ok := body["post"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), post["author_id"])
	assert.Equal(t, map[string]any{"id": float64(2), "name": "Alice"}, post["author"])
	assert.Equal(t, fmt.Sprintf("/post/%v", post["id"]), header.Get("Location"))

	status, _, body = member.postForm(t, "/new-post", postForm("Allowed"))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, map[string]any{"title": msgDuplicateTitle}, body["error"])

	assert.Equal(t, 1, countRows(t, db, "blog_posts"))
}

func TestEditAndDeletePost(t *testing.T) {
	app, db := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	owner := ts.newClient(t)
	owner.register(t, "Owner", "owner@example.com")

	alice := ts.newClient(t)
	alice.register(t, "Alice", "alice@example.com")

	bob := ts.newClient(t)
	bob.register(t, "Bob", "bob@example.com")

	for _, id := range []string{"2", "3"} {
		status, _, _ := owner.postForm(t, "/admin/add", url.Values{"the_user": {id}})
		require.Equal(t, http.StatusSeeOther, status)
	}

	status, _, body := alice.postForm(t, "/new-post", postForm("Alice's post"))
	require.Equal(t, http.StatusCreated, status)
	post := body["post"].(map[string]any)
	path := fmt.Sprintf("/edit-post/%v", post["id"])

	t.Run("other admin cannot edit", func(t *testing.T) {
		status, _, _ := bob.postForm(t, path, postForm("Bob's edit"))
		assert.Equal(t, http.StatusForbidden, status)

		status, _, _ = bob.get(t, path)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("owner is not exempt", func(t *testing.T) {
		status, _, _ := owner.postForm(t, path, postForm("Owner's edit"))
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("author edits", func(t *testing.T) {
		status, _, body := alice.get(t, path)
		require.Equal(t, http.StatusOK, status)
		form := body["form"].(map[string]any)
		assert.Equal(t, "Alice's post", form["title"])

		status, _, body = alice.postForm(t, path, postForm("Edited"))
		require.Equal(t, http.StatusOK, status)

		updated := body["post"].(map[string]any)
		assert.Equal(t, "Edited", updated["title"])
		assert.Equal(t, float64(2), updated["author_id"])
		assert.Equal(t, map[string]any{"id": float64(2), "name": "Alice"}, updated["author"])
		assert.Equal(t, post["date"], updated["date"])
	})

	t.Run("missing post", func(t *testing.T) {
		status, _, _ := alice.postForm(t, "/edit-post/999", postForm("Nothing"))
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("any admin deletes", func(t *testing.T) {
		status, _, _ := alice.postForm(t, fmt.Sprintf("/post/%v", post["id"]), url.Values{"comment": {"first"}})
		require.Equal(t, http.StatusCreated, status)

		status, header, _ := bob.postForm(t, fmt.Sprintf("/delete/%v", post["id"]), nil)
		require.Equal(t, http.StatusSeeOther, status)
		assert.Equal(t, "/", header.Get("Location"))

		assert.Zero(t, countRows(t, db, "blog_posts"))
		assert.Zero(t, countRows(t, db, "comments"))

		status, _, _ = bob.postForm(t, fmt.Sprintf("/delete/%v", post["id"]), nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestDeletePostRequiresAdmin(t *testing.T) {
	app, db := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	owner := ts.newClient(t)
	owner.register(t, "Owner", "owner@example.com")

	status, _, body := owner.postForm(t, "/new-post", postForm("Keep me"))
	require.Equal(t, http.StatusCreated, status)
	path := fmt.Sprintf("/delete/%v", body["post"].(map[string]any)["id"])

	member := ts.newClient(t)
	member.register(t, "Alice", "alice@example.com")

	status, _, _ = member.postForm(t, path, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, header, _ := ts.newClient(t).postForm(t, path, nil)
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", header.Get("Location"))

	// a plain link cannot delete, even for an admin
	status, _, _ = owner.get(t, path)
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	assert.Equal(t, 1, countRows(t, db, "blog_posts"))
}

func TestShowPostHandler(t *testing.T) {
	app, _ := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	owner := ts.newClient(t)
	owner.register(t, "Owner", "owner@example.com")

	status, _, body := owner.postForm(t, "/new-post", postForm("Readable"))
	require.Equal(t, http.StatusCreated, status)
	id := body["post"].(map[string]any)["id"]

	status, _, _ = owner.postForm(t, fmt.Sprintf("/post/%v", id), url.Values{"comment": {"Nice"}})
	require.Equal(t, http.StatusCreated, status)

	anon := ts.newClient(t)

	status, _, body = anon.get(t, fmt.Sprintf("/post/%v", id))
	require.Equal(t, http.StatusOK, status)

	post := body["post"].(map[string]any)
	assert.Equal(t, "Readable", post["title"])
	assert.Equal(t, "Owner", post["author"].(map[string]any)["name"])

	comments := body["comments"].([]any)
	require.Len(t, comments, 1)
	author := comments[0].(map[string]any)["author"].(map[string]any)
	assert.Equal(t, "Owner", author["name"])
	assert.Contains(t, author["avatar_url"], "https://www.gravatar.com/avatar/")

	status, _, _ = anon.get(t, "/post/999")
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = anon.get(t, "/post/abc")
	assert.Equal(t, http.StatusNotFound, status)

	status, _, body = anon.get(t, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["posts"], 1)
}

func TestAddCommentHandler(t *testing.T) {
	app, db := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	owner := ts.newClient(t)
	owner.register(t, "Owner", "owner@example.com")

	status, _, body := owner.postForm(t, "/new-post", postForm("Commented"))
	require.Equal(t, http.StatusCreated, status)
	path := fmt.Sprintf("/post/%v", body["post"].(map[string]any)["id"])

	t.Run("anonymous is redirected", func(t *testing.T) {
		anon := ts.newClient(t)

		status, header, _ := anon.postForm(t, path, url.Values{"comment": {"hello"}})
		require.Equal(t, http.StatusSeeOther, status)
		assert.Equal(t, "/login", header.Get("Location"))

		_, _, body := anon.get(t, "/login")
		assert.Equal(t, msgLoginToComment, body["flash"])

		assert.Zero(t, countRows(t, db, "comments"))
	})

	t.Run("empty comment", func(t *testing.T) {
		status, _, body := owner.postForm(t, path, url.Values{"comment": {"  "}})
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, map[string]any{"comment": "must be provided"}, body["error"])
	})

	t.Run("unknown post", func(t *testing.T) {
		status, _, _ := owner.postForm(t, "/post/999", url.Values{"comment": {"hello"}})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("member comments", func(t *testing.T) {
		member := ts.newClient(t)
		member.register(t, "Alice", "alice@example.com")

		for range 2 {
			status, header, _ := member.postForm(t, path, url.Values{"comment": {"same text"}})
			require.Equal(t, http.StatusCreated, status)
			assert.Equal(t, path, header.Get("Location"))
		}

		assert.Equal(t, 2, countRows(t, db, "comments"))
	})
}

func TestAdminRoutesHidden(t *testing.T) {
	app, db := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	owner := ts.newClient(t)
	owner.register(t, "Owner", "owner@example.com")

	admin := ts.newClient(t)
	admin.register(t, "Alice", "alice@example.com")

	member := ts.newClient(t)
	member.register(t, "Bob", "bob@example.com")

	status, _, _ := owner.postForm(t, "/admin/add", url.Values{"the_user": {"2"}})
	require.Equal(t, http.StatusSeeOther, status)

	paths := []string{"/admins", "/admin/add", "/admin/remove"}

	for name, c := range map[string]*testClient{"anonymous": ts.newClient(t), "member": member, "admin": admin} {
		for _, path := range paths {
			t.Run(name+" GET "+path, func(t *testing.T) {
				status, _, _ := c.get(t, path)
				assert.Equal(t, http.StatusNotFound, status)
			})
		}

		t.Run(name+" POST /admin/add", func(t *testing.T) {
			status, _, _ := c.postForm(t, "/admin/add", url.Values{"the_user": {"3"}})
			assert.Equal(t, http.StatusNotFound, status)
		})
	}

	t.Run("owner lists admins", func(t *testing.T) {
		status, _, body := owner.get(t, "/admins")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, []any{
			map[string]any{"id": float64(1), "label": "Owner (owner@example.com)"},
			map[string]any{"id": float64(2), "label": "Alice (alice@example.com)"},
		}, body["admins"])
	})

	t.Run("owner sees candidates", func(t *testing.T) {
		status, _, body := owner.get(t, "/admin/add")
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["choices"], 2)
	})

	t.Run("invalid choices", func(t *testing.T) {
		for _, choice := range []string{"1", "abc", ""} {
			status, _, body := owner.postForm(t, "/admin/add", url.Values{"the_user": {choice}})
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			assert.Equal(t, map[string]any{"the_user": "not a valid choice"}, body["error"])
		}

		status, _, _ := owner.postForm(t, "/admin/remove", url.Values{"the_user": {"99"}})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("owner removes admin", func(t *testing.T) {
		status, _, _ := owner.postForm(t, "/admin/remove", url.Values{"the_user": {"2"}})
		require.Equal(t, http.StatusSeeOther, status)

		var isAdmin bool
		err := db.QueryRow("SELECT is_admin FROM users WHERE id = 2").Scan(&isAdmin)
		require.NoError(t, err)
		assert.False(t, isAdmin)

		status, _, _ = admin.postForm(t, "/new-post", postForm("Too late"))
		assert.Equal(t, http.StatusForbidden, status)
	})
}

func TestContactHandler(t *testing.T) {
	form := url.Values{
		"name":    {"Jane"},
		"email":   {"jane@example.com"},
		"phone":   {"555-0100"},
		"message": {"Hello"},
	}

	t.Run("delivered", func(t *testing.T) {
		dialer := &stubDialer{}
		app, _ := newTestApplication(t, dialer)
		ts := newTestServer(t, app.routes())

		status, _, body := ts.newClient(t).postForm(t, "/contact", form)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["sent"])
		assert.Equal(t, msgContactSent, body["message"])

		require.Len(t, dialer.sent, 1)
		assert.Equal(t, []string{"owner@example.com"}, dialer.sent[0].GetHeader("To"))
	})

	t.Run("mail failure still succeeds", func(t *testing.T) {
		dialer := &stubDialer{err: errors.New("dial tcp: connection refused")}
		app, _ := newTestApplication(t, dialer)
		ts := newTestServer(t, app.routes())

		status, _, body := ts.newClient(t).postForm(t, "/contact", form)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, false, body["sent"])
		assert.Equal(t, msgContactFailed, body["message"])
		assert.Len(t, dialer.sent, 1)
	})

	t.Run("invalid form and prefill", func(t *testing.T) {
		dialer := &stubDialer{}
		app, _ := newTestApplication(t, dialer)
		ts := newTestServer(t, app.routes())

		c := ts.newClient(t)

		status, _, body := c.postForm(t, "/contact", url.Values{"name": {"Jane"}})
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Contains(t, body["error"], "email")
		assert.Empty(t, dialer.sent)

		c.register(t, "Owner", "owner@example.com")
		status, _, body = c.get(t, "/contact")
		require.Equal(t, http.StatusOK, status)
		prefill := body["form"].(map[string]any)
		assert.Equal(t, "Owner", prefill["name"])
		assert.Equal(t, "owner@example.com", prefill["email"])
	})
}

func TestHealthCheckHandler(t *testing.T) {
	app, _ := newTestApplication(t, nil)
	ts := newTestServer(t, app.routes())

	status, _, body := ts.newClient(t).get(t, "/healthcheck")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "available", body["status"])
	assert.Equal(t, map[string]any{"environment": "testing", "version": "test"}, body["system_info"])
}
