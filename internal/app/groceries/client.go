/*
Package groceries provides the HTTP client for the external product-search backend.

The backend is queried per store; results are fetched concurrently and merged.
Individual store failures are tolerated so that one slow or broken store does
not empty the whole result set.
*/
package groceries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lia/internal/app/model"
	"lia/internal/pkg/logx"
)

const defaultSearchTimeout = 10 * time.Second

// Client queries the product-search backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a search client for the given backend base URL.
// An empty baseURL yields a client whose searches always return no results,
// which keeps development setups without a search backend functional.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultSearchTimeout},
	}
}

// Search queries every requested store concurrently and merges the results.
// Store-level failures are logged and skipped.
func (c *Client) Search(ctx context.Context, stores []string, term string) ([]model.GroceryItem, error) {
	if c.baseURL == "" || len(stores) == 0 {
		return []model.GroceryItem{}, nil
	}

	var (
		mu      sync.Mutex
		results = []model.GroceryItem{}
	)

	g, ctx := errgroup.WithContext(ctx)

	for _, store := range stores {
		g.Go(func() error {
			items, err := c.searchStore(ctx, store, term)
			if err != nil {
				logx.Warn("Product search failed for store.", "store", store, "error", err)
				return nil
			}

			mu.Lock()
			results = append(results, items...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// searchStore issues a single-store search request.
func (c *Client) searchStore(ctx context.Context, store, term string) ([]model.GroceryItem, error) {
	params := url.Values{}
	params.Set("stores", store)
	params.Set("term", term)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search backend returned status %d", res.StatusCode)
	}

	items := []model.GroceryItem{}
	if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
		return nil, err
	}

	return items, nil
}
