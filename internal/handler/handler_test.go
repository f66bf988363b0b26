package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"lia/internal/app/events"
	"lia/internal/app/groceries"
	"lia/internal/app/model"
	"lia/internal/app/store/memory"
	"lia/internal/configs"
	"lia/internal/pkg/randx"
)

func newTestServer(t *testing.T, mutate func(cfg *configs.AppConfig)) (*httptest.Server, *AppDeps) {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:          "development",
		Port:                 8080,
		AllowedOrigins:       []string{},
		StoreMode:            "memory",
		RootUser:             "root",
		RootPassword:         "root",
		AllowAccountCreation: true,
		StoreLocation:        "Times Square",
		StoreSupport:         []string{"wegmans", "costco"},
	}
	if mutate != nil {
		mutate(cfg)
	}

	deps := &AppDeps{
		Store:  memory.NewStore(),
		Hub:    events.NewHub(),
		Search: groceries.NewClient(cfg.SearchURL),
		Config: cfg,
	}

	server := httptest.NewServer(Router(deps))
	t.Cleanup(func() {
		server.Close()
		deps.Hub.Shutdown()
	})

	return server, deps
}

// newSessionClient returns an HTTP client with a fresh session cookie.
func newSessionClient(t *testing.T, server *httptest.Server) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	httpClient := &http.Client{Jar: jar}

	res, err := httpClient.Get(server.URL + "/auth/session")
	if err != nil {
		t.Fatalf("session check: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("session check status = %d, want 200", res.StatusCode)
	}

	return httpClient
}

func doJSON(t *testing.T, httpClient *http.Client, method, rawURL string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, rawURL, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, rawURL, err)
	}
	return res
}

func decodeBody[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()

	var out T
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func mustStatus(t *testing.T, res *http.Response, want int) {
	t.Helper()
	if res.StatusCode != want {
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		t.Fatalf("status = %d, want %d (body: %s)", res.StatusCode, want, body)
	}
}

// createAccount registers a user on a fresh session client and returns both.
func createAccount(t *testing.T, server *httptest.Server, username string) (*http.Client, model.RedactedUser) {
	t.Helper()

	httpClient := newSessionClient(t, server)
	res := doJSON(t, httpClient, http.MethodPost, server.URL+"/auth/create", map[string]string{
		"username": username,
		"password": "secret1",
	})
	mustStatus(t, res, http.StatusOK)

	return httpClient, decodeBody[model.RedactedUser](t, res)
}

func createList(t *testing.T, server *httptest.Server, httpClient *http.Client, name string) model.GroceryList {
	t.Helper()

	res := doJSON(t, httpClient, http.MethodPost, server.URL+"/grocery/lists/create", map[string]any{
		"name":   name,
		"stores": []string{"wegmans"},
		"type":   "grocery",
	})
	mustStatus(t, res, http.StatusOK)

	return decodeBody[model.GroceryList](t, res)
}

func hexID(list model.GroceryList) string {
	return randx.Hex(list.ID)
}

func TestSessionBootstrap_ReissuesSameSession(t *testing.T) {
	server, _ := newTestServer(t, nil)

	httpClient := newSessionClient(t, server)

	res, err := httpClient.Get(server.URL + "/auth/session")
	if err != nil {
		t.Fatalf("second session check: %v", err)
	}
	first := decodeBody[model.Session](t, res)

	res, err = httpClient.Get(server.URL + "/auth/session")
	if err != nil {
		t.Fatalf("third session check: %v", err)
	}
	second := decodeBody[model.Session](t, res)

	if first.ID != second.ID {
		t.Fatalf("session ids differ across checks: %s vs %s", first.ID, second.ID)
	}
}

func TestCreateAccountLoginLogout(t *testing.T) {
	server, _ := newTestServer(t, nil)

	httpClient, user := createAccount(t, server, "alice")
	if user.Username != "alice" {
		t.Fatalf("Username = %q, want %q", user.Username, "alice")
	}
	if user.Admin {
		t.Fatalf("new accounts must not be admin")
	}

	// account creation binds the session
	res := doJSON(t, httpClient, http.MethodGet, server.URL+"/user", nil)
	mustStatus(t, res, http.StatusOK)
	self := decodeBody[model.RedactedUser](t, res)
	if self.ID != user.ID {
		t.Fatalf("self ID = %s, want %s", self.ID, user.ID)
	}

	res = doJSON(t, httpClient, http.MethodPost, server.URL+"/auth/logout", nil)
	mustStatus(t, res, http.StatusNoContent)

	res = doJSON(t, httpClient, http.MethodGet, server.URL+"/user", nil)
	mustStatus(t, res, http.StatusUnauthorized)

	res = doJSON(t, httpClient, http.MethodPost, server.URL+"/auth/login", map[string]string{
		"username": "alice",
		"password": "secret1",
	})
	mustStatus(t, res, http.StatusOK)

	res = doJSON(t, httpClient, http.MethodGet, server.URL+"/user", nil)
	mustStatus(t, res, http.StatusOK)
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	server, _ := newTestServer(t, nil)

	httpClient, _ := createAccount(t, server, "alice")
	res := doJSON(t, httpClient, http.MethodPost, server.URL+"/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	mustStatus(t, res, http.StatusUnauthorized)
}

func TestCreateAccount_RejectsInvalidInput(t *testing.T) {
	server, _ := newTestServer(t, nil)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "ab", "secret1"},
		{"bad characters", "alice!", "secret1"},
		{"short password", "alice", "pw"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			httpClient := newSessionClient(t, server)
			res := doJSON(t, httpClient, http.MethodPost, server.URL+"/auth/create", map[string]string{
				"username": tc.username,
				"password": tc.password,
			})
			mustStatus(t, res, http.StatusBadRequest)
		})
	}
}

func TestCreateAccount_DuplicateUsernameConflicts(t *testing.T) {
	server, _ := newTestServer(t, nil)

	createAccount(t, server, "alice")

	httpClient := newSessionClient(t, server)
	res := doJSON(t, httpClient, http.MethodPost, server.URL+"/auth/create", map[string]string{
		"username": "alice",
		"password": "secret1",
	})
	mustStatus(t, res, http.StatusConflict)
}

func TestCreateAccount_InviteGateWhenDisabled(t *testing.T) {
	server, deps := newTestServer(t, func(cfg *configs.AppConfig) {
		cfg.AllowAccountCreation = false
	})

	// without an invite
	httpClient := newSessionClient(t, server)
	res := doJSON(t, httpClient, http.MethodPost, server.URL+"/auth/create", map[string]string{
		"username": "alice",
		"password": "secret1",
	})
	mustStatus(t, res, http.StatusMethodNotAllowed)

	// an admin mints a single-use invite
	adminClient, _ := createAdmin(t, server, deps)
	res = doJSON(t, adminClient, http.MethodPost, server.URL+"/invites/account", map[string]any{
		"uses": 1,
	})
	mustStatus(t, res, http.StatusOK)
	invite := decodeBody[model.Invite](t, res)

	// the invite admits exactly one account
	res = doJSON(t, httpClient, http.MethodPost, server.URL+"/auth/create", map[string]string{
		"username": "alice",
		"password": "secret1",
		"invite":   invite.URI,
	})
	mustStatus(t, res, http.StatusOK)

	other := newSessionClient(t, server)
	res = doJSON(t, other, http.MethodPost, server.URL+"/auth/create", map[string]string{
		"username": "bob",
		"password": "secret1",
		"invite":   invite.URI,
	})
	mustStatus(t, res, http.StatusGone)
}

// createAdmin seeds an admin user directly in the store and logs it in on a
// fresh session client. Seeding bypasses the account-creation endpoint so it
// works regardless of the creation policy under test.
func createAdmin(t *testing.T, server *httptest.Server, deps *AppDeps) (*http.Client, model.User) {
	t.Helper()

	httpClient := newSessionClient(t, server)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin password: %v", err)
	}

	admin, err := deps.Store.CreateUser(t.Context(), "sudo", string(hash), true)
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	res := doJSON(t, httpClient, http.MethodPost, server.URL+"/auth/login", map[string]string{
		"username": admin.Username,
		"password": "secret1",
	})
	mustStatus(t, res, http.StatusOK)
	res.Body.Close()

	return httpClient, admin
}

func TestAccountInvite_AdminOnly(t *testing.T) {
	server, _ := newTestServer(t, nil)

	httpClient, _ := createAccount(t, server, "alice")
	res := doJSON(t, httpClient, http.MethodPost, server.URL+"/invites/account", nil)
	mustStatus(t, res, http.StatusUnauthorized)
}

func TestListSettings_RequiresOwnership(t *testing.T) {
	server, _ := newTestServer(t, nil)

	ownerClient, _ := createAccount(t, server, "alice")
	list := createList(t, server, ownerClient, "Groceries")

	otherClient, _ := createAccount(t, server, "mallory")
	res := doJSON(t, otherClient, http.MethodPost, server.URL+"/grocery/lists/"+hexID(list)+"/settings", map[string]any{
		"name":   "Hijacked",
		"stores": []string{},
	})
	mustStatus(t, res, http.StatusMethodNotAllowed)

	res = doJSON(t, ownerClient, http.MethodPost, server.URL+"/grocery/lists/"+hexID(list)+"/settings", map[string]any{
		"name":   "Renamed",
		"stores": []string{"costco"},
	})
	mustStatus(t, res, http.StatusOK)
	updated := decodeBody[model.GroceryList](t, res)
	if updated.Name != "Renamed" {
		t.Fatalf("Name = %q, want %q", updated.Name, "Renamed")
	}
}

func TestSettingsEndpoint_ReflectsConfig(t *testing.T) {
	server, _ := newTestServer(t, nil)

	res, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	settings := decodeBody[model.Settings](t, res)

	if settings.StoreLocation != "Times Square" {
		t.Fatalf("StoreLocation = %q, want %q", settings.StoreLocation, "Times Square")
	}
	if !settings.AllowAccountCreation {
		t.Fatalf("AllowAccountCreation = false, want true")
	}
	if len(settings.StoreSupport) != 2 {
		t.Fatalf("StoreSupport = %v, want two stores", settings.StoreSupport)
	}
}

func TestGrocerySearch_ProxiesToBackend(t *testing.T) {
	searchBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := r.URL.Query().Get("stores")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[{"type":"grocery","id":"%s-1","name":"milk","price":3.5}]`, store)
	}))
	defer searchBackend.Close()

	server, _ := newTestServer(t, func(cfg *configs.AppConfig) {
		cfg.SearchURL = searchBackend.URL
	})

	httpClient, _ := createAccount(t, server, "alice")
	res := doJSON(t, httpClient, http.MethodGet, server.URL+"/groceries/search?stores=wegmans,costco&term=milk", nil)
	mustStatus(t, res, http.StatusOK)

	items := decodeBody[[]model.GroceryItem](t, res)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want one per store", len(items))
	}
}

func TestGrocerySearch_RequiresUser(t *testing.T) {
	server, _ := newTestServer(t, nil)

	httpClient := newSessionClient(t, server)
	res := doJSON(t, httpClient, http.MethodGet, server.URL+"/groceries/search?stores=wegmans&term=milk", nil)
	mustStatus(t, res, http.StatusUnauthorized)
}
