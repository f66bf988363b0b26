/*
Package handler provides the HTTP handlers and routing setup for the lia server.

This file contains the session middleware and guard helpers. The session is an
opaque server-issued UUID carried in an HTTP-only cookie; a session may exist
without a bound user, so the middleware never rejects requests itself — guards
on individual routes decide what level of identity they require.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"lia/internal/app/model"
	"lia/internal/pkg/errs"
	"lia/internal/pkg/logx"
	"lia/internal/pkg/randx"
)

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "lia-token"

type contextKey string

// contextSessionKey is the key used to store the resolved *model.Session in the request Context.
const contextSessionKey contextKey = "session"

// SessionExtractorMiddleware resolves the session cookie against the store and
// injects the session into the request context. Missing or unknown cookies are
// treated as anonymous requests and passed through; /auth/session is the only
// endpoint that mints new sessions.
func SessionExtractorMiddleware(deps *AppDeps) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sessionID, err := uuid.Parse(cookie.Value)
			if err != nil {
				logx.Warn("Malformed session cookie, treating as anonymous")
				next.ServeHTTP(w, r)
				return
			}

			session, err := deps.Store.GetSession(r.Context(), sessionID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if err := deps.Store.TouchSession(r.Context(), session.ID); err != nil {
				logx.Warn("Failed to update session last_request", "session_id", session.ID.String())
			}

			ctx := context.WithValue(r.Context(), contextSessionKey, &session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentSession extracts the resolved session from the request Context.
// A nil return means the request carries no valid session.
func CurrentSession(r *http.Request) *model.Session {
	session, ok := r.Context().Value(contextSessionKey).(*model.Session)
	if !ok {
		return nil
	}
	return session
}

// RequireUser resolves the logged-in user for the request, or returns an
// unauthorized error for anonymous sessions and sessionless requests.
func RequireUser(deps *AppDeps, r *http.Request) (model.User, *errs.CustomError) {
	session := CurrentSession(r)
	if session == nil || session.UserID == "" {
		return model.User{}, errs.NewError(errs.ErrUnauthorized)
	}

	userID, err := randx.ParseID(session.UserID)
	if err != nil {
		return model.User{}, errs.NewError(errs.ErrUnauthorized)
	}

	user, err := deps.Store.GetUser(r.Context(), userID)
	if err != nil {
		return model.User{}, errs.NewError(errs.ErrUnauthorized)
	}

	return user, nil
}

// setSessionCookie (re)issues the session cookie on the response.
func setSessionCookie(deps *AppDeps, w http.ResponseWriter, session model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   deps.Config.Environment != "development",
	})
}
