/*
Package handler provides HTTP handler functions for session bootstrap and authentication.
*/
package handler

import (
	"net/http"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"lia/internal/app/model"
	"lia/internal/app/store"
	"lia/internal/pkg/errs"
	"lia/internal/pkg/logx"
	"lia/internal/pkg/randx"
	"lia/internal/pkg/req"
	"lia/internal/pkg/resp"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// HandleGetSession answers the "do I have a valid session" bootstrap check.
// A request without a resolvable session gets a fresh anonymous session; in
// both cases the session cookie is (re)issued and the session returned.
func HandleGetSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session := CurrentSession(r); session != nil {
			setSessionCookie(deps, w, *session)
			resp.RespondSuccess(w, r, session)
			return
		}

		session, err := deps.Store.CreateSession(r.Context())
		if err != nil {
			logx.Error(err, "failed to create session")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		setSessionCookie(deps, w, session)
		resp.RespondSuccess(w, r, session)
	}
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies user credentials and binds the user to the current session.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := CurrentSession(r)
		if session == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Store.GetUserByUsername(r.Context(), input.Username)
		if err != nil {
			logx.Warn("login: user fetch failed", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := deps.Store.BindSessionUser(r.Context(), session.ID, randx.Hex(user.ID)); err != nil {
			logx.Error(err, "login: failed to bind user to session", "session_id", session.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, user.Redacted())
	}
}

// HandleLogout detaches the user from the current session.
// The session itself survives as an anonymous browsing context.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := CurrentSession(r)
		if session == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if err := deps.Store.BindSessionUser(r.Context(), session.ID, ""); err != nil {
			logx.Error(err, "logout: failed to unbind session user", "session_id", session.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondNoContent(w, r)
	}
}

type CreateAccountInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Invite   string `json:"invite,omitempty"`
}

// HandleCreateAccount processes the request to create a new user account.
// When open account creation is disabled, a usable account invite is required;
// redeeming it consumes one use.
func HandleCreateAccount(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := CurrentSession(r)
		if session == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input CreateAccountInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var invite *model.Invite
		if input.Invite != "" {
			found, err := deps.Store.GetInviteByURI(r.Context(), input.Invite)
			if err != nil || found.Type != model.InviteTypeAccount {
				resp.RespondError(w, r, errs.NewError(errs.ErrInviteNotFound))
				return
			}
			if !found.Usable(time.Now()) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInviteExhausted))
				return
			}
			invite = &found
		}

		if invite == nil && !deps.Config.AllowAccountCreation {
			resp.RespondError(w, r, errs.NewError(errs.ErrAccountCreationDisabled))
			return
		}

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		passwordLen := utf8.RuneCountInString(input.Password)
		if passwordLen < 6 || passwordLen > 64 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		user, err := deps.Store.CreateUser(r.Context(), input.Username, string(hashedPassword), false)
		if err != nil {
			if err == store.ErrConflict {
				logx.Warn("account creation conflict: username already exists", "username", input.Username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create user")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if invite != nil {
			if err := deps.Store.DecrementInviteUses(r.Context(), invite.URI); err != nil {
				logx.Error(err, "failed to consume account invite use", "uri", invite.URI)
			}
		}

		if err := deps.Store.BindSessionUser(r.Context(), session.ID, randx.Hex(user.ID)); err != nil {
			logx.Error(err, "create account: failed to bind user to session", "session_id", session.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, user.Redacted())
	}
}
