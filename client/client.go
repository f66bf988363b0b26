/*
Package client implements the Go API client for the lia server: the session
bootstrap, the typed request/response contract, the generated method surface
(auth, list, user, groceries, invites), and the push-notification subscriptions
used to keep local state live.

The client mirrors the server's lossy UI contract: method calls collapse
failures into safe zero defaults, and push messages are invalidation triggers
only, never a source of truth.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lia/internal/app/model"
)

// ApiResponse is the tagged result of every transport round trip. Exactly one
// variant holds: Success with Data, or failure with Code and Detail. Transport
// and method calls never panic or return Go errors for HTTP-level failures.
type ApiResponse[T any] struct {
	Success bool

	// Data carries the parsed payload on success.
	Data T

	// Code is the HTTP status of a failed request, or 0 when the failure never
	// reached the server (no session, network error).
	Code int

	// Detail is the server's plain-text error body, verbatim.
	Detail string
}

// Client owns the session, user, and settings state for one server connection.
// All state transitions flow through Connect and the auth methods; readers get
// a consistent snapshot through Connection.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	session   *model.Session
	user      *model.RedactedUser
	settings  *model.Settings
	firstLoad bool
}

// New creates a client for the server at baseURL. The session credential is an
// HTTP-only cookie, so the client carries a cookie jar; the session struct held
// here is data only.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

type requestOptions struct {
	method string
	params url.Values
	body   any

	// allowAnonymous bypasses the session gate; only the session check itself
	// sets it.
	allowAnonymous bool
}

func (c *Client) hasSession() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

// do performs one API round trip and normalizes the outcome into an
// ApiResponse. Without an established session it fails fast with code 0 and
// makes no network call. A 204 yields success with zero Data; a 2xx body that
// is not valid JSON for T is passed through as raw text when T can hold a
// string.
func do[T any](ctx context.Context, c *Client, path string, opts requestOptions) ApiResponse[T] {
	if !opts.allowAnonymous && !c.hasSession() {
		return ApiResponse[T]{Success: false, Code: 0, Detail: "not connected"}
	}

	method := opts.method
	if method == "" {
		method = http.MethodGet
	}

	requestURL := c.baseURL + path
	if len(opts.params) > 0 {
		requestURL += "?" + opts.params.Encode()
	}

	var bodyReader io.Reader
	if opts.body != nil {
		encoded, err := json.Marshal(opts.body)
		if err != nil {
			return ApiResponse[T]{Success: false, Code: 0, Detail: err.Error()}
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return ApiResponse[T]{Success: false, Code: 0, Detail: err.Error()}
	}

	if opts.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return ApiResponse[T]{Success: false, Code: 0, Detail: err.Error()}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return ApiResponse[T]{Success: false, Code: 0, Detail: err.Error()}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return ApiResponse[T]{Success: false, Code: res.StatusCode, Detail: string(raw)}
	}

	var data T

	if res.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return ApiResponse[T]{Success: true, Data: data}
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		// Non-JSON success bodies are tolerated as raw text.
		if text, ok := any(string(raw)).(T); ok {
			return ApiResponse[T]{Success: true, Data: text}
		}
		return ApiResponse[T]{Success: false, Code: 0, Detail: err.Error()}
	}

	return ApiResponse[T]{Success: true, Data: data}
}

// Connect performs the session bootstrap: one session check, then the user and
// settings fetches in parallel. It is the sole writer of the session slot and
// is intended to run once per client lifetime; it does not poll or retry.
//
// Connect never fails the bootstrap outright: an unreachable server simply
// leaves the client disconnected. The returned error reports transport
// misconfiguration only.
func (c *Client) Connect(ctx context.Context) error {
	sessionRes := do[model.Session](ctx, c, "/auth/session", requestOptions{allowAnonymous: true})
	if !sessionRes.Success {
		c.mu.Lock()
		c.session = nil
		c.user = nil
		c.settings = nil
		c.firstLoad = false
		c.mu.Unlock()
		return nil
	}

	session := sessionRes.Data
	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()

	// User and settings resolution are independent; no ordering between them,
	// only that both complete before the client reports Connected.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var user *model.RedactedUser
		if session.UserID != "" {
			userRes := do[model.RedactedUser](gctx, c, "/user", requestOptions{})
			if userRes.Success {
				user = &userRes.Data
			}
		}

		// A session without a resolvable user is an anonymous session, not an
		// error; firstLoad flips either way.
		c.mu.Lock()
		c.user = user
		c.firstLoad = true
		c.mu.Unlock()
		return nil
	})

	g.Go(func() error {
		settingsRes := do[model.Settings](gctx, c, "/", requestOptions{})

		c.mu.Lock()
		if settingsRes.Success {
			settings := settingsRes.Data
			c.settings = &settings
		} else {
			c.settings = nil
		}
		c.mu.Unlock()
		return nil
	})

	return g.Wait()
}

// Connection is the snapshot handed to consumers of an established connection.
type Connection struct {
	Session  model.Session
	User     *model.RedactedUser
	Settings model.Settings
	Methods  *Methods
}

// Connection returns the current connection snapshot, or false while
// disconnected. Connected requires a session, resolved settings, and a
// completed first user resolution; the returned method registry is built
// fresh on every call.
func (c *Client) Connection() (Connection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil || c.settings == nil || !c.firstLoad {
		return Connection{}, false
	}

	return Connection{
		Session:  *c.session,
		User:     c.user,
		Settings: *c.settings,
		Methods:  newMethods(c),
	}, true
}

// setUser replaces the resolved user slot. Auth operations are its only callers.
func (c *Client) setUser(user *model.RedactedUser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
}

// noDashes strips dashes from an id for use as a URL path segment.
func noDashes(id string) string {
	return strings.ReplaceAll(id, "-", "")
}
