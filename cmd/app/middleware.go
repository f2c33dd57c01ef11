package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"filippo.io/csrf/gorilla"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/DijitalRED/red-blog/internal/common"
	"github.com/DijitalRED/red-blog/internal/userservice"
)

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDContextKey, id))

		var (
			ip     = r.RemoteAddr
			method = r.Method
			proto  = r.Proto
			uri    = r.URL.RequestURI()
		)

		start := time.Now()
		next.ServeHTTP(w, r)

		app.logger.Info("request",
			slog.String("request_id", id),
			slog.String("method", method),
			slog.String("uri", uri),
			slog.String("remote_addr", ip),
			slog.String("proto", proto),
			slog.Duration("duration", time.Since(start)))
	})
}

// csrfProtect rejects cross-origin state changing requests using the Fetch
// metadata headers browsers send.
func (app *application) csrfProtect(next http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.ErrorHandler(http.HandlerFunc(app.csrfFailedResponse)),
	}

	if len(app.config.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(app.config.TrustedOrigins))
	}

	return csrf.Protect(app.csrfKey, opts...)(next)
}

// authenticate resolves the session's user id. Missing sessions and ids of
// users that no longer exist both yield the anonymous user.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := app.sessionManager.GetInt(r.Context(), common.SessionKeyUserID)
		if id == 0 {
			r = app.createUserContext(r, &userservice.AnonymousUser)
			next.ServeHTTP(w, r)
			return
		}

		user, err := app.userService.GetUserByID(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, userservice.ErrNotFound), errors.As(err, &common.ValidationError{}):
				app.sessionManager.Remove(r.Context(), common.SessionKeyUserID)
				r = app.createUserContext(r, &userservice.AnonymousUser)
				next.ServeHTTP(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		r = app.createUserContext(r, user)
		next.ServeHTTP(w, r)
	})
}

// enforce writes the response for a denied decision and reports whether the
// request may proceed.
func (app *application) enforce(w http.ResponseWriter, r *http.Request, d userservice.Decision) bool {
	switch d {
	case userservice.Allow:
		return true
	case userservice.RequireLogin:
		app.redirectWithFlash(w, r, "/login", "log in to continue")
	case userservice.NotFound:
		app.notFoundErrorResponse(w, r)
	default:
		app.forbiddenErrorResponse(w, r)
	}

	return false
}

// requireAction gates next behind the policy decision for action. Actions
// that need a target are checked again in the handler.
func (app *application) requireAction(action userservice.Action, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := app.getUserContext(r)

		d := userservice.Can(user, action, nil)
		if action == userservice.ActionEditPost {
			d = userservice.Can(user, userservice.ActionCreatePost, nil)
		}

		if !app.enforce(w, r, d) {
			return
		}

		next.ServeHTTP(w, r)
	}
}

// rateLimit throttles a route per client address. Each limiter expires from
// the cache after the cache's default expiration.
func (app *application) rateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !app.config.Limiter.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		key := common.CacheKeyLimiter(ip)
		limiter := rate.NewLimiter(rate.Limit(app.config.Limiter.RPS), app.config.Limiter.Burst)
		if err := app.limiters.Add(key, limiter, 0); err != nil {
			if v, ok := app.limiters.Get(key); ok {
				limiter = v.(*rate.Limiter)
			}
		}

		if !limiter.Allow() {
			app.rateLimitExceededResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	}
}
