package model

import (
	"time"

	"github.com/google/uuid"
)

// Invite target discriminants.
const (
	InviteTypeList    = "list"
	InviteTypeAccount = "account"
)

// Invite is a short-lived, shareable code. List invites grant join access to a
// list (and double as that list's alias); account invites authorize account
// creation when open registration is disabled.
type Invite struct {
	ID uuid.UUID `json:"id"`

	// URI is the 12-character Base62 code embedded in shareable links.
	URI string `json:"uri"`

	Type string `json:"type"`

	// Reference is the dashless hex id of the target list; empty for account invites.
	Reference string `json:"reference"`

	UsesRemaining *int       `json:"uses_remaining,omitempty"`
	Expires       *time.Time `json:"expires,omitempty"`

	// Owner is the dashless hex id of the creating user.
	Owner string `json:"owner"`
}

// Usable reports whether the invite can still be redeemed at the given time.
func (i Invite) Usable(now time.Time) bool {
	if i.Expires != nil && now.After(*i.Expires) {
		return false
	}
	if i.UsesRemaining != nil && *i.UsesRemaining <= 0 {
		return false
	}
	return true
}
