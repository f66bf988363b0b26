/*
Package postgres provides the pgx-backed Store implementation.

Identifiers are stored as native uuid columns where they are primary keys and as
dashless hex text where they reference other records, matching the wire form.
List items keep their deep structure in a jsonb document column.
*/
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lia/internal/app/model"
	"lia/internal/app/store"
	"lia/internal/pkg/randx"
)

// Store is the pgx-backed implementation of store.Store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an initialized connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() {
	s.pool.Close()
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// Sessions

func (s *Store) CreateSession(ctx context.Context) (model.Session, error) {
	session := model.Session{
		ID:          uuid.New(),
		LastRequest: time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, last_request, user_id) VALUES ($1, $2, '')`,
		session.ID.String(), session.LastRequest)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (model.Session, error) {
	var (
		rawID   string
		session model.Session
	)

	err := s.pool.QueryRow(ctx,
		`SELECT id::text, last_request, user_id FROM sessions WHERE id = $1`,
		id.String()).Scan(&rawID, &session.LastRequest, &session.UserID)
	if err != nil {
		return model.Session{}, mapNoRows(err)
	}

	session.ID, err = uuid.Parse(rawID)
	if err != nil {
		return model.Session{}, err
	}
	return session, nil
}

func (s *Store) TouchSession(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET last_request = $2 WHERE id = $1`,
		id.String(), time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) BindSessionUser(ctx context.Context, id uuid.UUID, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET user_id = $2, last_request = $3 WHERE id = $1`,
		id.String(), userID, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string, admin bool) (model.User, error) {
	user := model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Admin:        admin,
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, admin) VALUES ($1, $2, $3, $4)`,
		user.ID.String(), user.Username, user.PasswordHash, user.Admin)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, store.ErrConflict
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.queryUser(ctx, `SELECT id::text, username, password_hash, admin FROM users WHERE id = $1`, id.String())
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return s.queryUser(ctx, `SELECT id::text, username, password_hash, admin FROM users WHERE username = $1`, username)
}

func (s *Store) queryUser(ctx context.Context, query string, arg any) (model.User, error) {
	var (
		rawID string
		user  model.User
	)

	err := s.pool.QueryRow(ctx, query, arg).
		Scan(&rawID, &user.Username, &user.PasswordHash, &user.Admin)
	if err != nil {
		return model.User{}, mapNoRows(err)
	}

	user.ID, err = uuid.Parse(rawID)
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Lists

func (s *Store) CreateList(ctx context.Context, list model.GroceryList) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO grocery_lists (id, name, owner_id, included_stores, type) VALUES ($1, $2, $3, $4, $5)`,
		list.ID.String(), list.Name, list.OwnerID, list.IncludedStores, list.Type)
	return err
}

func (s *Store) GetList(ctx context.Context, id uuid.UUID) (model.GroceryList, error) {
	var (
		rawID string
		list  model.GroceryList
	)

	err := s.pool.QueryRow(ctx,
		`SELECT id::text, name, owner_id, included_stores, type FROM grocery_lists WHERE id = $1`,
		id.String()).Scan(&rawID, &list.Name, &list.OwnerID, &list.IncludedStores, &list.Type)
	if err != nil {
		return model.GroceryList{}, mapNoRows(err)
	}

	list.ID, err = uuid.Parse(rawID)
	if err != nil {
		return model.GroceryList{}, err
	}
	return list, nil
}

func (s *Store) UpdateList(ctx context.Context, list model.GroceryList) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE grocery_lists SET name = $2, owner_id = $3, included_stores = $4, type = $5 WHERE id = $1`,
		list.ID.String(), list.Name, list.OwnerID, list.IncludedStores, list.Type)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteList(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	hexID := randx.Hex(id)

	if _, err := tx.Exec(ctx, `DELETE FROM grocery_items WHERE list_id = $1`, hexID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM grocery_lists WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (s *Store) ListsByOwner(ctx context.Context, ownerID string) ([]model.GroceryList, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, name, owner_id, included_stores, type FROM grocery_lists WHERE owner_id = $1 ORDER BY name`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.GroceryList{}
	for rows.Next() {
		var (
			rawID string
			list  model.GroceryList
		)
		if err := rows.Scan(&rawID, &list.Name, &list.OwnerID, &list.IncludedStores, &list.Type); err != nil {
			return nil, err
		}
		if list.ID, err = uuid.Parse(rawID); err != nil {
			return nil, err
		}
		result = append(result, list)
	}
	return result, rows.Err()
}

// Items

func (s *Store) CreateItem(ctx context.Context, item model.ListItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO grocery_items (id, list_id, data) VALUES ($1, $2, $3)`,
		item.ID.String(), item.ListID, data)
	return err
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (model.ListItem, error) {
	var data []byte

	err := s.pool.QueryRow(ctx,
		`SELECT data FROM grocery_items WHERE id = $1`, id.String()).Scan(&data)
	if err != nil {
		return model.ListItem{}, mapNoRows(err)
	}

	item := model.ListItem{}
	if err := json.Unmarshal(data, &item); err != nil {
		return model.ListItem{}, err
	}
	return item, nil
}

func (s *Store) UpdateItem(ctx context.Context, item model.ListItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE grocery_items SET list_id = $2, data = $3 WHERE id = $1`,
		item.ID.String(), item.ListID, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM grocery_items WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ItemsByList(ctx context.Context, listID string) ([]model.ListItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM grocery_items WHERE list_id = $1`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.ListItem{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		item := model.ListItem{}
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// Invites

func (s *Store) CreateInvite(ctx context.Context, invite model.Invite) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO invites (id, uri, type, reference, uses_remaining, expires, owner)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		invite.ID.String(), invite.URI, invite.Type, invite.Reference,
		invite.UsesRemaining, invite.Expires, invite.Owner)
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	return err
}

func (s *Store) GetInviteByURI(ctx context.Context, uri string) (model.Invite, error) {
	var (
		rawID  string
		invite model.Invite
	)

	err := s.pool.QueryRow(ctx,
		`SELECT id::text, uri, type, reference, uses_remaining, expires, owner FROM invites WHERE uri = $1`,
		uri).Scan(&rawID, &invite.URI, &invite.Type, &invite.Reference,
		&invite.UsesRemaining, &invite.Expires, &invite.Owner)
	if err != nil {
		return model.Invite{}, mapNoRows(err)
	}

	invite.ID, err = uuid.Parse(rawID)
	if err != nil {
		return model.Invite{}, err
	}
	return invite, nil
}

func (s *Store) DecrementInviteUses(ctx context.Context, uri string) error {
	// Invites without a use limit are left untouched.
	_, err := s.pool.Exec(ctx,
		`UPDATE invites SET uses_remaining = uses_remaining - 1 WHERE uri = $1 AND uses_remaining IS NOT NULL`,
		uri)
	return err
}

func (s *Store) DeleteInviteByURI(ctx context.Context, uri string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM invites WHERE uri = $1`, uri)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) InvitesByReference(ctx context.Context, reference string) ([]model.Invite, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, uri, type, reference, uses_remaining, expires, owner FROM invites WHERE reference = $1`,
		reference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Invite{}
	for rows.Next() {
		var (
			rawID  string
			invite model.Invite
		)
		if err := rows.Scan(&rawID, &invite.URI, &invite.Type, &invite.Reference,
			&invite.UsesRemaining, &invite.Expires, &invite.Owner); err != nil {
			return nil, err
		}
		if invite.ID, err = uuid.Parse(rawID); err != nil {
			return nil, err
		}
		result = append(result, invite)
	}
	return result, rows.Err()
}

// Memberships

func (s *Store) AddJoinedList(ctx context.Context, userID, inviteURI string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO joined_lists (user_id, invite_uri) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, inviteURI)
	return err
}

func (s *Store) RemoveJoinedList(ctx context.Context, userID, inviteURI string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM joined_lists WHERE user_id = $1 AND invite_uri = $2`,
		userID, inviteURI)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) JoinedLists(ctx context.Context, userID string) ([]model.JoinedList, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, invite_uri FROM joined_lists WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.JoinedList{}
	for rows.Next() {
		joined := model.JoinedList{}
		if err := rows.Scan(&joined.UserID, &joined.InviteURI); err != nil {
			return nil, err
		}
		result = append(result, joined)
	}
	return result, rows.Err()
}

// Favorites

func (s *Store) ToggleFavorite(ctx context.Context, userID string, ref model.AccessReference) (*model.Favorite, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND ref_type = $2 AND reference = $3`,
		userID, ref.Type, ref.Reference)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() > 0 {
		return nil, nil
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO favorites (user_id, ref_type, reference) VALUES ($1, $2, $3)`,
		userID, ref.Type, ref.Reference)
	if err != nil {
		return nil, err
	}

	return &model.Favorite{UserID: userID, Reference: ref}, nil
}

func (s *Store) Favorites(ctx context.Context, userID string) ([]model.Favorite, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, ref_type, reference FROM favorites WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Favorite{}
	for rows.Next() {
		fav := model.Favorite{}
		if err := rows.Scan(&fav.UserID, &fav.Reference.Type, &fav.Reference.Reference); err != nil {
			return nil, err
		}
		result = append(result, fav)
	}
	return result, rows.Err()
}

func (s *Store) IsFavorite(ctx context.Context, userID string, ref model.AccessReference) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND ref_type = $2 AND reference = $3)`,
		userID, ref.Type, ref.Reference).Scan(&exists)
	return exists, err
}

func (s *Store) DeleteFavoritesByReference(ctx context.Context, reference string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM favorites WHERE reference = $1`, reference)
	return err
}
