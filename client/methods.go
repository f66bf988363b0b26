/*
This file contains the method registry: the namespaced remote operations a
connected consumer calls. Every operation collapses failure into a safe zero
default (nil, empty slice, false); callers branch on presence, not on errors.
*/
package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"lia/internal/app/model"
)

// Methods is the registry of remote operations, grouped by resource.
type Methods struct {
	Auth      AuthMethods
	List      ListMethods
	User      UserMethods
	Groceries GroceryMethods
	Invites   InviteMethods
}

func newMethods(c *Client) *Methods {
	return &Methods{
		Auth:      AuthMethods{c: c},
		List:      ListMethods{c: c},
		User:      UserMethods{c: c},
		Groceries: GroceryMethods{c: c},
		Invites:   InviteMethods{c: c},
	}
}

// AuthMethods holds the authentication operations. Login, Logout, and
// CreateAccount are the only operations that mutate the client's user slot.
type AuthMethods struct {
	c *Client
}

// Login exchanges credentials for a logged-in user, or nil on failure.
func (m AuthMethods) Login(ctx context.Context, username, password string) *model.RedactedUser {
	res := do[model.RedactedUser](ctx, m.c, "/auth/login", requestOptions{
		method: http.MethodPost,
		body:   map[string]string{"username": username, "password": password},
	})
	if !res.Success {
		return nil
	}

	user := res.Data
	m.c.setUser(&user)
	return &user
}

// Logout detaches the user from the session. The session itself survives.
func (m AuthMethods) Logout(ctx context.Context) {
	do[struct{}](ctx, m.c, "/auth/logout", requestOptions{method: http.MethodPost})
	m.c.setUser(nil)
}

// CreateAccount registers a new user and logs it in. The invite argument is
// required when the server has open account creation disabled; pass "" otherwise.
func (m AuthMethods) CreateAccount(ctx context.Context, username, password, invite string) *model.RedactedUser {
	body := map[string]string{"username": username, "password": password}
	if invite != "" {
		body["invite"] = invite
	}

	res := do[model.RedactedUser](ctx, m.c, "/auth/create", requestOptions{
		method: http.MethodPost,
		body:   body,
	})
	if !res.Success {
		return nil
	}

	user := res.Data
	m.c.setUser(&user)
	return &user
}

// ListMethods holds the grocery/recipe list operations. Lists are addressed by
// an access pair: method "id" or "alias" plus the reference for that method.
type ListMethods struct {
	c *Client
}

func listPath(method, ref string, suffix string) string {
	return "/grocery/lists/" + method + "/" + ref + suffix
}

// Create makes a new list and returns it, or nil on failure.
func (m ListMethods) Create(ctx context.Context, name string, stores []string, listType string) *model.GroceryList {
	res := do[model.GroceryList](ctx, m.c, "/grocery/lists/create", requestOptions{
		method: http.MethodPost,
		body:   map[string]any{"name": name, "stores": stores, "type": listType},
	})
	if !res.Success {
		return nil
	}
	return &res.Data
}

// Get fetches the addressed list, or nil.
func (m ListMethods) Get(ctx context.Context, method, ref string) *model.GroceryList {
	res := do[model.GroceryList](ctx, m.c, listPath(method, ref, ""), requestOptions{})
	if !res.Success {
		return nil
	}
	return &res.Data
}

// Items fetches all items on the addressed list; empty on failure.
func (m ListMethods) Items(ctx context.Context, method, ref string) []model.ListItem {
	res := do[[]model.ListItem](ctx, m.c, listPath(method, ref, "/items"), requestOptions{})
	if !res.Success {
		return []model.ListItem{}
	}
	return res.Data
}

// AddItem creates an item on the addressed list and returns it, or nil.
func (m ListMethods) AddItem(ctx context.Context, method, ref string, draft model.ItemDraft) *model.ListItem {
	res := do[model.ListItem](ctx, m.c, listPath(method, ref, "/item"), requestOptions{
		method: http.MethodPost,
		body:   draft,
	})
	if !res.Success {
		return nil
	}
	return &res.Data
}

// SetItemCheck flips an item's checked flag: checked issues POST, unchecked
// issues DELETE. The item id's dashes are stripped for the URL segment only.
func (m ListMethods) SetItemCheck(ctx context.Context, method, ref, itemID string, checked bool) bool {
	verb := http.MethodPost
	if !checked {
		verb = http.MethodDelete
	}

	res := do[struct{}](ctx, m.c, listPath(method, ref, "/item/"+noDashes(itemID)+"/checked"), requestOptions{
		method: verb,
	})
	return res.Success
}

// UpdateItem applies a deep-partial patch and returns the updated item, or nil.
func (m ListMethods) UpdateItem(ctx context.Context, method, ref, itemID string, patch map[string]any) *model.ListItem {
	res := do[model.ListItem](ctx, m.c, listPath(method, ref, "/item/"+noDashes(itemID)+"/update"), requestOptions{
		method: http.MethodPost,
		body:   patch,
	})
	if !res.Success {
		return nil
	}
	return &res.Data
}

// DeleteItem removes an item from the addressed list.
func (m ListMethods) DeleteItem(ctx context.Context, method, ref, itemID string) bool {
	res := do[struct{}](ctx, m.c, listPath(method, ref, "/item/"+noDashes(itemID)), requestOptions{
		method: http.MethodDelete,
	})
	return res.Success
}

// UpdateSettings renames the list and replaces its store selection. Owner only,
// so the list is addressed by id.
func (m ListMethods) UpdateSettings(ctx context.Context, id, name string, stores []string) *model.GroceryList {
	res := do[model.GroceryList](ctx, m.c, "/grocery/lists/"+noDashes(id)+"/settings", requestOptions{
		method: http.MethodPost,
		body:   map[string]any{"name": name, "stores": stores},
	})
	if !res.Success {
		return nil
	}
	return &res.Data
}

// Invites fetches all invites pointing at an owned list; empty on failure.
func (m ListMethods) Invites(ctx context.Context, id string) []model.Invite {
	res := do[[]model.Invite](ctx, m.c, "/grocery/lists/"+noDashes(id)+"/invites", requestOptions{})
	if !res.Success {
		return []model.Invite{}
	}
	return res.Data
}

// DeleteOrLeave deletes the addressed list when the caller owns it, otherwise
// leaves it.
func (m ListMethods) DeleteOrLeave(ctx context.Context, method, ref string) bool {
	res := do[struct{}](ctx, m.c, listPath(method, ref, ""), requestOptions{
		method: http.MethodDelete,
	})
	return res.Success
}

// UserMethods holds the operations scoped to the current user.
type UserMethods struct {
	c *Client
}

// Self fetches the current user's profile, or nil.
func (m UserMethods) Self(ctx context.Context) *model.RedactedUser {
	res := do[model.RedactedUser](ctx, m.c, "/user", requestOptions{})
	if !res.Success {
		return nil
	}
	return &res.Data
}

// Lists fetches every list the user can access, with its access pair and
// favorite state; empty on failure.
func (m UserMethods) Lists(ctx context.Context) []model.ListAccessSpec {
	res := do[[]model.ListAccessSpec](ctx, m.c, "/user/lists", requestOptions{})
	if !res.Success {
		return []model.ListAccessSpec{}
	}
	return res.Data
}

// Favorites fetches the user's pinned references; empty on failure.
func (m UserMethods) Favorites(ctx context.Context) []model.Favorite {
	res := do[[]model.Favorite](ctx, m.c, "/user/favorites", requestOptions{})
	if !res.Success {
		return []model.Favorite{}
	}
	return res.Data
}

// ToggleFavorite pins or unpins a list. The target may be a full
// model.ListAccessSpec or a bare model.AccessReference; both route to the same
// endpoint shape. A created pin is returned; removal and failure return nil.
func (m UserMethods) ToggleFavorite(ctx context.Context, target any) *model.Favorite {
	var refType, reference string

	switch t := target.(type) {
	case model.ListAccessSpec:
		refType = t.AccessType
		reference = t.AccessReference
	case model.AccessReference:
		refType = t.Type
		reference = t.Reference
	default:
		return nil
	}

	res := do[*model.Favorite](ctx, m.c, "/user/favorites/"+refType+"/"+reference, requestOptions{
		method: http.MethodPost,
	})
	if !res.Success {
		return nil
	}
	return res.Data
}

// JoinList redeems a list invite. It accepts either a bare 12-character invite
// code or a full join URL, from which the code is extracted.
func (m UserMethods) JoinList(ctx context.Context, uriOrCode string) bool {
	code := uriOrCode
	if strings.Contains(code, "/join/") {
		code = strings.SplitN(code, "/join/", 2)[1]
	}

	res := do[struct{}](ctx, m.c, "/user/join/"+code, requestOptions{
		method: http.MethodPost,
	})
	return res.Success
}

// GroceryMethods holds the product-search operations.
type GroceryMethods struct {
	c *Client
}

// Search queries the product index across the given stores; empty on failure.
func (m GroceryMethods) Search(ctx context.Context, stores []string, term string) []model.GroceryItem {
	params := url.Values{}
	params.Set("stores", strings.ToLower(strings.Join(stores, ",")))
	params.Set("term", term)

	res := do[[]model.GroceryItem](ctx, m.c, "/groceries/search", requestOptions{params: params})
	if !res.Success {
		return []model.GroceryItem{}
	}
	return res.Data
}

// InviteMethods holds the invite operations.
type InviteMethods struct {
	c *Client
}

// CreateListInvite issues a new invite for an owned list, or nil on failure.
func (m InviteMethods) CreateListInvite(ctx context.Context, listID string) *model.Invite {
	res := do[model.Invite](ctx, m.c, "/invites/list/"+noDashes(listID), requestOptions{
		method: http.MethodPost,
	})
	if !res.Success {
		return nil
	}
	return &res.Data
}

// DeleteListInvite revokes a list invite by URI.
func (m InviteMethods) DeleteListInvite(ctx context.Context, uri string) bool {
	res := do[struct{}](ctx, m.c, "/invites/item/list/"+uri, requestOptions{
		method: http.MethodDelete,
	})
	return res.Success
}
