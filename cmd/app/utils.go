package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/DijitalRED/red-blog/internal/common"
	"github.com/DijitalRED/red-blog/internal/userservice"
)

const maxBodyBytes = 1_048_576

type envelope map[string]any

func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	json, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(json)

	return nil
}

// readInput decodes a JSON body, or a url-encoded form for any other content
// type, into dst. Form fields map onto dst's json tags.
func (app *application) readInput(w http.ResponseWriter, r *http.Request, dst any) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return app.parseJSON(w, r, dst)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return fmt.Errorf("request body must not be larger than %d bytes", maxBytesError.Limit)
		}
		return errors.New("request body contains a badly-formed form")
	}

	fields := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		fields[key] = r.PostForm.Get(key)
	}

	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}

func (app *application) parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("request body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("request body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("request body contains an invalid value for the %q field", unmarshalTypeError.Field)
			}
			return fmt.Errorf("request body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("request body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("request body contains unknown field %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("request body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}
	err = decoder.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("request body must only contain a single JSON value")
	}
	return nil
}

func (app *application) readIDParam(r *http.Request, key string) (int, error) {
	params := httprouter.ParamsFromContext(r.Context())

	id, err := strconv.Atoi(params.ByName(key))
	if err != nil || id < 1 {
		return 0, errors.New("invalid ID parameter")
	}

	return id, nil
}

// redirectWithFlash stores message for the next page and sends a 303.
func (app *application) redirectWithFlash(w http.ResponseWriter, r *http.Request, url, message string) {
	app.sessionManager.Put(r.Context(), common.SessionKeyFlash, message)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// page returns the envelope shared by every view: the current identity and
// any pending flash message, which is consumed.
func (app *application) page(r *http.Request) envelope {
	env := envelope{"current_user": currentUserView(app.getUserContext(r))}

	if flash := app.sessionManager.PopString(r.Context(), common.SessionKeyFlash); flash != "" {
		env["flash"] = flash
	}

	return env
}

type userView struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

func currentUserView(u *userservice.User) *userView {
	if u.IsAnonymous() {
		return nil
	}

	return &userView{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role().String(),
		IsAdmin: u.IsAdmin,
	}
}

// publish emits a domain event. Delivery is best effort: a failure is logged
// and never fails the request.
func (app *application) publish(ctx context.Context, key common.BindingKey, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		app.logger.Error("could not encode event", slog.String("key", string(key)), slog.String("error", err.Error()))
		return
	}

	if err := app.broker.Publish(ctx, msg, key, common.BlogExchange); err != nil {
		app.logger.Error("could not publish event", slog.String("key", string(key)), slog.String("error", err.Error()))
	}
}
