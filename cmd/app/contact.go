package main

import (
	"errors"
	"net/http"

	"github.com/DijitalRED/red-blog/internal/common"
	"github.com/DijitalRED/red-blog/internal/mailservice"
)

const (
	msgContactSent   = "successfully sent your message"
	msgContactFailed = "your message could not be sent, please try again later"
)

func (app *application) contactFormHandler(w http.ResponseWriter, r *http.Request) {
	form := mailservice.ContactMessage{}

	if user := app.getUserContext(r); !user.IsAnonymous() {
		form.Name = user.Name
		form.Email = user.Email
	}

	env := app.page(r)
	env["form"] = form

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// contactHandler mails the message once. A delivery failure still answers
// 200, with sent set to false.
func (app *application) contactHandler(w http.ResponseWriter, r *http.Request) {
	var input mailservice.ContactMessage

	err := app.readInput(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.mailService.SendContactMessage(r.Context(), &input)
	if err != nil {
		var validationErr common.ValidationError
		if errors.As(err, &validationErr) {
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
			return
		}

		err = app.writeJSON(w, http.StatusOK, envelope{"sent": false, "message": msgContactFailed}, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"sent": true, "message": msgContactSent}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
