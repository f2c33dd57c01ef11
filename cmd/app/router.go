package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/DijitalRED/red-blog/internal/userservice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthCheckHandler)
	router.HandlerFunc(http.MethodGet, "/about", app.aboutHandler)

	// users
	router.HandlerFunc(http.MethodGet, "/register", app.registerFormHandler)
	router.HandlerFunc(http.MethodPost, "/register", app.rateLimit(app.registerUserHandler))
	router.HandlerFunc(http.MethodGet, "/login", app.loginFormHandler)
	router.HandlerFunc(http.MethodPost, "/login", app.rateLimit(app.loginUserHandler))
	router.HandlerFunc(http.MethodGet, "/logout", app.logoutUserHandler)

	// posts
	router.HandlerFunc(http.MethodGet, "/", app.listPostsHandler)
	router.HandlerFunc(http.MethodGet, "/post/:id", app.showPostHandler)
	router.HandlerFunc(http.MethodPost, "/post/:id", app.addCommentHandler)
	router.HandlerFunc(http.MethodGet, "/new-post", app.requireAction(userservice.ActionCreatePost, app.newPostFormHandler))
	router.HandlerFunc(http.MethodPost, "/new-post", app.requireAction(userservice.ActionCreatePost, app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/edit-post/:id", app.requireAction(userservice.ActionEditPost, app.editPostFormHandler))
	router.HandlerFunc(http.MethodPost, "/edit-post/:id", app.requireAction(userservice.ActionEditPost, app.updatePostHandler))
	router.HandlerFunc(http.MethodPost, "/delete/:id", app.requireAction(userservice.ActionDeletePost, app.deletePostHandler))

	// admin
	router.HandlerFunc(http.MethodGet, "/admins", app.requireAction(userservice.ActionManageAdmins, app.listAdminsHandler))
	router.HandlerFunc(http.MethodGet, "/admin/add", app.requireAction(userservice.ActionManageAdmins, app.addAdminFormHandler))
	router.HandlerFunc(http.MethodPost, "/admin/add", app.requireAction(userservice.ActionManageAdmins, app.addAdminHandler))
	router.HandlerFunc(http.MethodGet, "/admin/remove", app.requireAction(userservice.ActionManageAdmins, app.removeAdminFormHandler))
	router.HandlerFunc(http.MethodPost, "/admin/remove", app.requireAction(userservice.ActionManageAdmins, app.removeAdminHandler))

	// contact
	router.HandlerFunc(http.MethodGet, "/contact", app.contactFormHandler)
	router.HandlerFunc(http.MethodPost, "/contact", app.contactHandler)

	return app.recoverPanic(app.logRequest(app.csrfProtect(app.sessionManager.LoadAndSave(app.authenticate(router)))))
}
