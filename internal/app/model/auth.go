/*
Package model contains the core domain entities shared by the server handlers,
the persistence layer, and the API client.

This file defines the session and user types. Sessions are opaque server-issued
credential references carried by an HTTP-only cookie; a session may exist without
a bound user (anonymous browsing context).
*/
package model

import (
	"time"

	"github.com/google/uuid"
)

// Session represents an authenticated (possibly anonymous) browsing context.
type Session struct {
	ID          uuid.UUID `json:"id"`
	LastRequest time.Time `json:"last_request"`

	// UserID is the dashless hex id of the bound user, or empty for anonymous sessions.
	UserID string `json:"user_id"`
}

// User is the full user record including credentials. It never crosses the API
// boundary directly; handlers expose Redacted() instead.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Admin        bool
}

// RedactedUser is the client-facing projection of a user account.
type RedactedUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Admin    bool      `json:"admin"`
}

// Redacted strips credential material from the user record.
func (u User) Redacted() RedactedUser {
	return RedactedUser{
		ID:       u.ID,
		Username: u.Username,
		Admin:    u.Admin,
	}
}

// Settings is the server-side configuration surface fetched once per session.
type Settings struct {
	StoreLocation        string   `json:"store_location"`
	StoreSupport         []string `json:"store_support"`
	AllowAccountCreation bool     `json:"allow_account_creation"`
}
