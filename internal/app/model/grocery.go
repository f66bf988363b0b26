package model

// GroceryItem is a product record returned by the external product-search
// backend. The application moves these around and links them to list items,
// but never interprets their internals.
type GroceryItem struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Location   *string        `json:"location"`
	Images     []string       `json:"images"`
	Tags       []string       `json:"tags"`
	Categories []string       `json:"categories"`
	Price      float64        `json:"price"`
	Ratings    ItemRatings    `json:"ratings"`
	Metadata   map[string]any `json:"metadata"`
}

// ItemRatings aggregates product review data.
type ItemRatings struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
