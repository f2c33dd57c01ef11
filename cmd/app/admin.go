package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/DijitalRED/red-blog/internal/common"
	"github.com/DijitalRED/red-blog/internal/userservice"
)

type adminChoice struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

type adminRequest struct {
	TheUser string `json:"the_user"`
}

func (app *application) listAdminsHandler(w http.ResponseWriter, r *http.Request) {
	users, err := app.userService.GetUsers(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	admins := []adminChoice{}
	for _, u := range users {
		if u.Role() != userservice.RoleMember {
			admins = append(admins, choiceFor(u))
		}
	}

	env := app.page(r)
	env["admins"] = admins

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) adminFormHandler(w http.ResponseWriter, r *http.Request) {
	users, err := app.userService.GetAdminCandidates(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	choices := make([]adminChoice, 0, len(users))
	for _, u := range users {
		choices = append(choices, choiceFor(u))
	}

	env := app.page(r)
	env["choices"] = choices

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) addAdminFormHandler(w http.ResponseWriter, r *http.Request) {
	app.adminFormHandler(w, r)
}

func (app *application) removeAdminFormHandler(w http.ResponseWriter, r *http.Request) {
	app.adminFormHandler(w, r)
}

func (app *application) addAdminHandler(w http.ResponseWriter, r *http.Request) {
	app.setAdmin(w, r, true)
}

func (app *application) removeAdminHandler(w http.ResponseWriter, r *http.Request) {
	app.setAdmin(w, r, false)
}

func (app *application) setAdmin(w http.ResponseWriter, r *http.Request, isAdmin bool) {
	var input adminRequest

	err := app.readInput(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	id, err := strconv.Atoi(strings.TrimSpace(input.TheUser))
	if err != nil {
		app.failedValidationErrorResponse(w, r, map[string]string{"the_user": "not a valid choice"})
		return
	}

	err = app.userService.SetAdmin(r.Context(), id, isAdmin)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, userservice.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	http.Redirect(w, r, "/admins", http.StatusSeeOther)
}

func choiceFor(u userservice.User) adminChoice {
	return adminChoice{ID: u.ID, Label: fmt.Sprintf("%s (%s)", u.Name, u.Email)}
}
