/*
Package model contains the core domain entities shared by the server handlers,
the persistence layer, and the API client.

This file defines grocery/recipe lists, list items, and the access-reference
types used to address lists either by stable id or by shareable alias.
*/
package model

import "github.com/google/uuid"

// List type discriminants.
const (
	ListTypeGrocery = "grocery"
	ListTypeRecipe  = "recipe"
)

// Access method discriminants for addressing a list.
const (
	AccessMethodID    = "id"
	AccessMethodAlias = "alias"
)

// GroceryList is a shared grocery or recipe list. The Type field discriminates
// the two flavors; they share all other structure.
type GroceryList struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	OwnerID        string    `json:"owner_id"`
	IncludedStores []string  `json:"included_stores"`
	Type           string    `json:"type"`
}

// QuantitySpec describes how much of an item is wanted.
type QuantitySpec struct {
	Amount float64 `json:"amount"`
	Unit   *string `json:"unit"`
}

// AlternativeSpec marks an item as the n-th alternative to another item.
type AlternativeSpec struct {
	AlternativeTo string `json:"alternative_to"`
	Index         int    `json:"index"`
}

// ListItem is a single entry on a grocery/recipe list.
type ListItem struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	ListID      string           `json:"list_id"`
	AddedBy     string           `json:"added_by"`
	Checked     bool             `json:"checked"`
	Quantity    QuantitySpec     `json:"quantity"`
	Alternative *AlternativeSpec `json:"alternative"`
	Categories  []string         `json:"categories"`
	Price       float64          `json:"price"`
	Location    *string          `json:"location"`
	LinkedItem  *GroceryItem     `json:"linked_item"`
	Recipe      *string          `json:"recipe"`
}

// ItemDraft carries the caller-supplied fields for a new list item. Identity,
// membership, and lifecycle fields are assigned server-side.
type ItemDraft struct {
	Name       string       `json:"name"`
	Quantity   QuantitySpec `json:"quantity"`
	Categories []string     `json:"categories"`
	Price      float64      `json:"price"`
	Location   *string      `json:"location"`
	LinkedItem *GroceryItem `json:"linked_item"`
}

// AccessReference is a (type, identifier) pair addressing a list either by
// stable id or by human-shareable alias.
type AccessReference struct {
	Type      string `json:"type"`
	Reference string `json:"reference"`
}

// ListAccessSpec bundles a list with the access path the current user has to it.
type ListAccessSpec struct {
	Data            GroceryList `json:"data"`
	AccessType      string      `json:"access_type"`
	AccessReference string      `json:"access_reference"`
	Favorited       bool        `json:"favorited"`
}

// Favorite is a user-scoped pin on a list, identified by its access reference.
type Favorite struct {
	UserID    string          `json:"user_id"`
	Reference AccessReference `json:"reference"`
}

// JoinedList records a membership created by redeeming a list invite.
type JoinedList struct {
	UserID    string `json:"user_id"`
	InviteURI string `json:"invite_uri"`
}
