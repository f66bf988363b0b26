/*
Package store defines the persistence contract used by the HTTP layer.

Two implementations exist: postgres (pgx-backed, the production default) and
memory (used by tests and by STORE_MODE=memory deployments).
*/
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"lia/internal/app/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a uniqueness constraint (username, invite URI)
// would be violated.
var ErrConflict = errors.New("conflict")

// Store is the runtime persistence contract.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context) (model.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (model.Session, error)
	TouchSession(ctx context.Context, id uuid.UUID) error
	// BindSessionUser attaches the given user (dashless hex id) to the session;
	// an empty userID detaches it.
	BindSessionUser(ctx context.Context, id uuid.UUID, userID string) error

	// Users
	CreateUser(ctx context.Context, username, passwordHash string, admin bool) (model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Lists
	CreateList(ctx context.Context, list model.GroceryList) error
	GetList(ctx context.Context, id uuid.UUID) (model.GroceryList, error)
	UpdateList(ctx context.Context, list model.GroceryList) error
	// DeleteList removes the list and all of its items.
	DeleteList(ctx context.Context, id uuid.UUID) error
	ListsByOwner(ctx context.Context, ownerID string) ([]model.GroceryList, error)

	// Items
	CreateItem(ctx context.Context, item model.ListItem) error
	GetItem(ctx context.Context, id uuid.UUID) (model.ListItem, error)
	UpdateItem(ctx context.Context, item model.ListItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ItemsByList(ctx context.Context, listID string) ([]model.ListItem, error)

	// Invites
	CreateInvite(ctx context.Context, invite model.Invite) error
	GetInviteByURI(ctx context.Context, uri string) (model.Invite, error)
	DecrementInviteUses(ctx context.Context, uri string) error
	DeleteInviteByURI(ctx context.Context, uri string) error
	InvitesByReference(ctx context.Context, reference string) ([]model.Invite, error)

	// Memberships
	AddJoinedList(ctx context.Context, userID, inviteURI string) error
	RemoveJoinedList(ctx context.Context, userID, inviteURI string) error
	JoinedLists(ctx context.Context, userID string) ([]model.JoinedList, error)

	// Favorites
	// ToggleFavorite pins the reference for the user, or removes the existing
	// pin; it returns the created favorite, or nil when the pin was removed.
	ToggleFavorite(ctx context.Context, userID string, ref model.AccessReference) (*model.Favorite, error)
	Favorites(ctx context.Context, userID string) ([]model.Favorite, error)
	IsFavorite(ctx context.Context, userID string, ref model.AccessReference) (bool, error)
	// DeleteFavoritesByReference removes every favorite pointing at the given
	// reference string, regardless of owner or reference type.
	DeleteFavoritesByReference(ctx context.Context, reference string) error

	Close()
}
