package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DijitalRED/red-blog/internal/blogservice"
	"github.com/DijitalRED/red-blog/internal/common"
	"github.com/DijitalRED/red-blog/internal/userservice"
)

const (
	msgAccountExists  = "an account with this email already exists, log in instead"
	msgLoginToComment = "log in to post a comment"
	msgInvalidLogin   = "invalid email or password"
	msgNoAccount      = "that email does not exist, please try again"
	msgWrongPassword  = "password incorrect, please try again"
	msgDuplicateTitle = "a post with this title already exists"
)

type registerUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) registerFormHandler(w http.ResponseWriter, r *http.Request) {
	env := app.page(r)
	env["form"] = registerUserRequest{}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input registerUserRequest

	err := app.readInput(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.CreateUser(r.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.redirectWithFlash(w, r, "/login", msgAccountExists)
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.logIn(r, user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.publish(r.Context(), common.UserRegisteredKey, envelope{"id": user.ID, "name": user.Name, "email": user.Email})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type loginUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) loginFormHandler(w http.ResponseWriter, r *http.Request) {
	env := app.page(r)
	env["form"] = loginUserRequest{}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input loginUserRequest

	err := app.readInput(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.LoginUser(r.Context(), input.Email, input.Password)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, userservice.ErrNoAccount):
			app.invalidCredentialsErrorResponse(w, r, app.loginFailureMessage(msgNoAccount))
		case errors.Is(err, userservice.ErrWrongPassword):
			app.invalidCredentialsErrorResponse(w, r, app.loginFailureMessage(msgWrongPassword))
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.logIn(r, user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loginFailureMessage hides which credential was wrong unless the deployment
// opted into revealing it.
func (app *application) loginFailureMessage(specific string) string {
	if app.config.LoginRevealAccount {
		return specific
	}
	return msgInvalidLogin
}

// logIn renews the session token before storing the identity.
func (app *application) logIn(r *http.Request, userID int) error {
	err := app.sessionManager.RenewToken(r.Context())
	if err != nil {
		return err
	}

	app.sessionManager.Put(r.Context(), common.SessionKeyUserID, userID)
	return nil
}

func (app *application) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	err := app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.sessionManager.Remove(r.Context(), common.SessionKeyUserID)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := app.blogService.GetPosts(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	env := app.page(r)
	env["posts"] = posts

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// loadPost reads the :id parameter and fetches the post, writing the error
// response itself when it returns nil.
func (app *application) loadPost(w http.ResponseWriter, r *http.Request) *blogservice.Post {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return nil
	}

	post, err := app.blogService.GetPostByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil
	}

	return post
}

func (app *application) showPostHandler(w http.ResponseWriter, r *http.Request) {
	post := app.loadPost(w, r)
	if post == nil {
		return
	}

	comments, err := app.blogService.GetComments(r.Context(), post.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	env := app.page(r)
	env["post"] = post
	env["comments"] = comments

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func (app *application) addCommentHandler(w http.ResponseWriter, r *http.Request) {
	post := app.loadPost(w, r)
	if post == nil {
		return
	}

	var input commentRequest

	err := app.readInput(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	v := common.NewValidator()
	v.Check(common.NotBlank(input.Comment), "comment", "must be provided")
	if !v.Valid() {
		app.failedValidationErrorResponse(w, r, v.Errors)
		return
	}

	user := app.getUserContext(r)
	if userservice.Can(user, userservice.ActionAddComment, post) == userservice.RequireLogin {
		app.redirectWithFlash(w, r, "/login", msgLoginToComment)
		return
	}

	comment, err := app.blogService.AddComment(r.Context(), post.ID, user.ID, input.Comment)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.publish(r.Context(), common.CommentCreatedKey, comment)

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/post/%d", post.ID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"comment": comment}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) newPostFormHandler(w http.ResponseWriter, r *http.Request) {
	env := app.page(r)
	env["form"] = blogservice.PostInput{}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// writePostError maps the errors shared by create and update.
func (app *application) writePostError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError
	switch {
	case errors.Is(err, blogservice.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, blogservice.ErrDuplicateTitle):
		app.failedValidationErrorResponse(w, r, map[string]string{"title": msgDuplicateTitle})
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.PostInput

	err := app.readInput(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	post, err := app.blogService.CreatePost(r.Context(), user.ID, &input)
	if err != nil {
		app.writePostError(w, r, err)
		return
	}

	app.publish(r.Context(), common.PostCreatedKey, envelope{"id": post.ID, "title": post.Title, "author_id": post.AuthorID})

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/post/%d", post.ID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"post": post}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) editPostFormHandler(w http.ResponseWriter, r *http.Request) {
	post := app.loadPost(w, r)
	if post == nil {
		return
	}

	if !app.enforce(w, r, userservice.Can(app.getUserContext(r), userservice.ActionEditPost, post)) {
		return
	}

	env := app.page(r)
	env["form"] = blogservice.PostInput{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
	}
	env["post"] = post

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	post := app.loadPost(w, r)
	if post == nil {
		return
	}

	user := app.getUserContext(r)
	if !app.enforce(w, r, userservice.Can(user, userservice.ActionEditPost, post)) {
		return
	}

	var input blogservice.PostInput

	err := app.readInput(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	updated, err := app.blogService.UpdatePost(r.Context(), post.ID, user.ID, &input)
	if err != nil {
		app.writePostError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": updated}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.blogService.DeletePost(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.publish(r.Context(), common.PostDeletedKey, envelope{"id": id})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
