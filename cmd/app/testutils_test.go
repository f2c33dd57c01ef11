package main

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/require"

	"github.com/DijitalRED/red-blog/internal/blogservice"
	"github.com/DijitalRED/red-blog/internal/common"
	"github.com/DijitalRED/red-blog/internal/mailservice"
	"github.com/DijitalRED/red-blog/internal/userservice"
)

const testPassword = "secret-password"

// stubDialer records messages instead of talking to an SMTP server.
type stubDialer struct {
	mu   sync.Mutex
	err  error
	sent []*mail.Message
}

func (d *stubDialer) DialAndSend(m ...*mail.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sent = append(d.sent, m...)
	return d.err
}

func newTestConfig() *Config {
	cfg := &Config{
		Port:               ":0",
		Environment:        "testing",
		Version:            "test",
		SessionStore:       "memory",
		SessionLifetime:    time.Hour,
		PasswordIterations: 1000,
	}
	cfg.Mail.Sender = "blog@example.com"
	cfg.Mail.Recipient = "owner@example.com"

	return cfg
}

func newTestApplication(t *testing.T, dialer mailservice.Dialer) (*application, *sql.DB) {
	db := common.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := newTestConfig()

	if dialer == nil {
		dialer = &stubDialer{}
	}

	app := &application{
		config:         cfg,
		logger:         logger,
		userService:    userservice.NewUserService(db, cfg.PasswordIterations),
		blogService:    blogservice.NewBlogService(db),
		mailService:    mailservice.NewMailService(dialer, cfg.mailSender(), cfg.mailRecipient(), logger),
		sessionManager: common.NewSessionManager(common.NewCacheStore(common.NewCache(time.Hour, time.Hour)), time.Hour, false),
		broker:         common.NopProducer{},
		limiters:       common.NewCache(time.Minute, time.Minute),
		csrfKey:        []byte(strings.Repeat("k", 32)),
	}

	return app, db
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// testClient is one browser: it keeps its own cookies and does not follow
// redirects.
type testClient struct {
	ts     *testServer
	client *http.Client
}

func (ts *testServer) newClient(t *testing.T) *testClient {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testClient{
		ts: ts,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var env envelope
	if len(strings.TrimSpace(string(responseBody))) > 0 && strings.HasPrefix(res.Header.Get("Content-Type"), "application/json") {
		err = json.Unmarshal(responseBody, &env)
		require.NoError(t, err)
	}

	return res.StatusCode, res.Header, env
}

func (c *testClient) get(t *testing.T, path string) (int, http.Header, envelope) {
	res, err := c.client.Get(c.ts.URL + path)
	require.NoError(t, err)

	return readResponse(t, res)
}

func (c *testClient) postForm(t *testing.T, path string, form url.Values) (int, http.Header, envelope) {
	res, err := c.client.PostForm(c.ts.URL+path, form)
	require.NoError(t, err)

	return readResponse(t, res)
}

func (c *testClient) register(t *testing.T, name, email string) {
	status, header, _ := c.postForm(t, "/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, status)
	require.Equal(t, "/", header.Get("Location"))
}

func (c *testClient) login(t *testing.T, email string) {
	status, _, _ := c.postForm(t, "/login", url.Values{
		"email":    {email},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, status)
}

func postForm(title string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {"A subtitle"},
		"img_url":  {"https://example.com/image.jpg"},
		"body":     {"<p>Body</p>"},
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	require.NoError(t, err)

	return n
}
