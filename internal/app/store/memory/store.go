/*
Package memory provides an in-memory Store implementation.

It backs handler tests and STORE_MODE=memory deployments. All state lives in
maps guarded by a single RWMutex; returned slices and structs are copies.
*/
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lia/internal/app/model"
	"lia/internal/app/store"
	"lia/internal/pkg/randx"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	sessions map[uuid.UUID]model.Session
	users    map[uuid.UUID]model.User
	lists    map[uuid.UUID]model.GroceryList
	items    map[uuid.UUID]model.ListItem

	invites map[string]model.Invite

	// joined maps userID -> set of invite URIs, insertion-ordered.
	joined map[string][]string

	favorites []model.Favorite
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[uuid.UUID]model.Session),
		users:    make(map[uuid.UUID]model.User),
		lists:    make(map[uuid.UUID]model.GroceryList),
		items:    make(map[uuid.UUID]model.ListItem),
		invites:  make(map[string]model.Invite),
		joined:   make(map[string][]string),
	}
}

func (s *Store) CreateSession(ctx context.Context) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := model.Session{
		ID:          uuid.New(),
		LastRequest: time.Now().UTC(),
	}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return model.Session{}, store.ErrNotFound
	}
	return session, nil
}

func (s *Store) TouchSession(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	session.LastRequest = time.Now().UTC()
	s.sessions[id] = session
	return nil
}

func (s *Store) BindSessionUser(ctx context.Context, id uuid.UUID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	session.UserID = userID
	session.LastRequest = time.Now().UTC()
	s.sessions[id] = session
	return nil
}

func (s *Store) CreateUser(ctx context.Context, username, passwordHash string, admin bool) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return model.User{}, store.ErrConflict
		}
	}

	user := model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Admin:        admin,
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return model.User{}, store.ErrNotFound
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) CreateList(ctx context.Context, list model.GroceryList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[list.ID] = list
	return nil
}

func (s *Store) GetList(ctx context.Context, id uuid.UUID) (model.GroceryList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.lists[id]
	if !ok {
		return model.GroceryList{}, store.ErrNotFound
	}
	return list, nil
}

func (s *Store) UpdateList(ctx context.Context, list model.GroceryList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[list.ID]; !ok {
		return store.ErrNotFound
	}
	s.lists[list.ID] = list
	return nil
}

func (s *Store) DeleteList(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[id]
	if !ok {
		return store.ErrNotFound
	}

	hexID := randx.Hex(list.ID)
	for itemID, item := range s.items {
		if item.ListID == hexID {
			delete(s.items, itemID)
		}
	}

	delete(s.lists, id)
	return nil
}

func (s *Store) ListsByOwner(ctx context.Context, ownerID string) ([]model.GroceryList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []model.GroceryList{}
	for _, list := range s.lists {
		if list.OwnerID == ownerID {
			result = append(result, list)
		}
	}
	return result, nil
}

func (s *Store) CreateItem(ctx context.Context, item model.ListItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[item.ID] = item
	return nil
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (model.ListItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return model.ListItem{}, store.ErrNotFound
	}
	return item, nil
}

func (s *Store) UpdateItem(ctx context.Context, item model.ListItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; !ok {
		return store.ErrNotFound
	}
	s.items[item.ID] = item
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) ItemsByList(ctx context.Context, listID string) ([]model.ListItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []model.ListItem{}
	for _, item := range s.items {
		if item.ListID == listID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (s *Store) CreateInvite(ctx context.Context, invite model.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invites[invite.URI]; ok {
		return store.ErrConflict
	}
	s.invites[invite.URI] = invite
	return nil
}

func (s *Store) GetInviteByURI(ctx context.Context, uri string) (model.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invite, ok := s.invites[uri]
	if !ok {
		return model.Invite{}, store.ErrNotFound
	}
	return invite, nil
}

func (s *Store) DecrementInviteUses(ctx context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	invite, ok := s.invites[uri]
	if !ok {
		return store.ErrNotFound
	}
	if invite.UsesRemaining != nil {
		remaining := *invite.UsesRemaining - 1
		invite.UsesRemaining = &remaining
		s.invites[uri] = invite
	}
	return nil
}

func (s *Store) DeleteInviteByURI(ctx context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invites[uri]; !ok {
		return store.ErrNotFound
	}
	delete(s.invites, uri)
	return nil
}

func (s *Store) InvitesByReference(ctx context.Context, reference string) ([]model.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []model.Invite{}
	for _, invite := range s.invites {
		if invite.Reference == reference {
			result = append(result, invite)
		}
	}
	return result, nil
}

func (s *Store) AddJoinedList(ctx context.Context, userID, inviteURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, uri := range s.joined[userID] {
		if uri == inviteURI {
			return nil
		}
	}
	s.joined[userID] = append(s.joined[userID], inviteURI)
	return nil
}

func (s *Store) RemoveJoinedList(ctx context.Context, userID, inviteURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uris := s.joined[userID]
	for i, uri := range uris {
		if uri == inviteURI {
			s.joined[userID] = append(uris[:i], uris[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) JoinedLists(ctx context.Context, userID string) ([]model.JoinedList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []model.JoinedList{}
	for _, uri := range s.joined[userID] {
		result = append(result, model.JoinedList{UserID: userID, InviteURI: uri})
	}
	return result, nil
}

func (s *Store) ToggleFavorite(ctx context.Context, userID string, ref model.AccessReference) (*model.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, fav := range s.favorites {
		if fav.UserID == userID && fav.Reference.Type == ref.Type && fav.Reference.Reference == ref.Reference {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return nil, nil
		}
	}

	fav := model.Favorite{UserID: userID, Reference: ref}
	s.favorites = append(s.favorites, fav)
	return &fav, nil
}

func (s *Store) Favorites(ctx context.Context, userID string) ([]model.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []model.Favorite{}
	for _, fav := range s.favorites {
		if fav.UserID == userID {
			result = append(result, fav)
		}
	}
	return result, nil
}

func (s *Store) IsFavorite(ctx context.Context, userID string, ref model.AccessReference) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, fav := range s.favorites {
		if fav.UserID == userID && fav.Reference.Type == ref.Type && fav.Reference.Reference == ref.Reference {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteFavoritesByReference(ctx context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.favorites[:0]
	for _, fav := range s.favorites {
		if fav.Reference.Reference != reference {
			kept = append(kept, fav)
		}
	}
	s.favorites = kept
	return nil
}

func (s *Store) Close() {}
