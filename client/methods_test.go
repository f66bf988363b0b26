package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"

	"lia/internal/app/model"
)

// recorder captures the wire calls a method issues.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (rec *recorder) record(r *http.Request) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.calls = append(rec.calls, r.Method+" "+r.URL.Path)
}

func (rec *recorder) last(t *testing.T) string {
	t.Helper()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) == 0 {
		t.Fatalf("no calls recorded")
	}
	return rec.calls[len(rec.calls)-1]
}

func newRecordingClient(t *testing.T) (*Methods, *recorder) {
	t.Helper()

	rec := &recorder{}
	c, _ := newBootstrapServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			rec.record(r)
			w.WriteHeader(http.StatusNoContent)
		})
	})

	conn, ok := c.Connection()
	if !ok {
		t.Fatalf("expected connected state")
	}

	return conn.Methods, rec
}

func TestToggleFavorite_BothShapesRouteIdentically(t *testing.T) {
	methods, rec := newRecordingClient(t)
	ctx := context.Background()

	methods.User.ToggleFavorite(ctx, model.ListAccessSpec{
		AccessType:      "alias",
		AccessReference: "abcdefghijkl",
	})
	fromSpec := rec.last(t)

	methods.User.ToggleFavorite(ctx, model.AccessReference{
		Type:      "alias",
		Reference: "abcdefghijkl",
	})
	fromRef := rec.last(t)

	want := "POST /user/favorites/alias/abcdefghijkl"
	if fromSpec != want {
		t.Fatalf("spec-shaped call = %q, want %q", fromSpec, want)
	}
	if fromRef != want {
		t.Fatalf("reference-shaped call = %q, want %q", fromRef, want)
	}
}

func TestToggleFavorite_CreatedPinReturned(t *testing.T) {
	c, _ := newBootstrapServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("POST /user/favorites/id/1234", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(model.Favorite{
				UserID:    "u1",
				Reference: model.AccessReference{Type: "id", Reference: "1234"},
			})
		})
	})

	conn, _ := c.Connection()
	fav := conn.Methods.User.ToggleFavorite(context.Background(), model.AccessReference{Type: "id", Reference: "1234"})
	if fav == nil {
		t.Fatalf("expected the created favorite")
	}
	if fav.Reference.Reference != "1234" {
		t.Fatalf("Reference = %q, want %q", fav.Reference.Reference, "1234")
	}
}

func TestToggleFavorite_RemovalYieldsNil(t *testing.T) {
	methods, _ := newRecordingClient(t)

	fav := methods.User.ToggleFavorite(context.Background(), model.AccessReference{Type: "id", Reference: "1234"})
	if fav != nil {
		t.Fatalf("expected nil for a removed pin, got %+v", fav)
	}
}

func TestJoinList_AcceptsCodeAndFullURL(t *testing.T) {
	methods, rec := newRecordingClient(t)
	ctx := context.Background()

	if !methods.User.JoinList(ctx, "abcdefghijkl") {
		t.Fatalf("JoinList with bare code failed")
	}
	want := "POST /user/join/abcdefghijkl"
	if got := rec.last(t); got != want {
		t.Fatalf("bare code call = %q, want %q", got, want)
	}

	if !methods.User.JoinList(ctx, "https://host/join/abcdefghijkl") {
		t.Fatalf("JoinList with full URL failed")
	}
	if got := rec.last(t); got != want {
		t.Fatalf("full URL call = %q, want %q", got, want)
	}
}

func TestSetItemCheck_VerbFollowsDirection(t *testing.T) {
	methods, rec := newRecordingClient(t)
	ctx := context.Background()

	itemID := "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeffff"

	if !methods.List.SetItemCheck(ctx, "id", "1234", itemID, true) {
		t.Fatalf("check call failed")
	}
	wantCheck := "POST /grocery/lists/id/1234/item/aaaaaaaabbbbccccddddeeeeeeeeffff/checked"
	if got := rec.last(t); got != wantCheck {
		t.Fatalf("check call = %q, want %q", got, wantCheck)
	}

	if !methods.List.SetItemCheck(ctx, "id", "1234", itemID, false) {
		t.Fatalf("uncheck call failed")
	}
	wantUncheck := "DELETE /grocery/lists/id/1234/item/aaaaaaaabbbbccccddddeeeeeeeeffff/checked"
	if got := rec.last(t); got != wantUncheck {
		t.Fatalf("uncheck call = %q, want %q", got, wantUncheck)
	}
}

func TestDeleteItem_StripsDashesFromURLSegment(t *testing.T) {
	methods, rec := newRecordingClient(t)

	methods.List.DeleteItem(context.Background(), "alias", "abcdefghijkl", "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeffff")

	want := "DELETE /grocery/lists/alias/abcdefghijkl/item/aaaaaaaabbbbccccddddeeeeeeeeffff"
	if got := rec.last(t); got != want {
		t.Fatalf("call = %q, want %q", got, want)
	}
}

func TestGrocerySearch_LowercasesAndJoinsStores(t *testing.T) {
	var gotQuery string
	c, _ := newBootstrapServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("GET /groceries/search", func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte("[]"))
		})
	})

	conn, _ := c.Connection()
	conn.Methods.Groceries.Search(context.Background(), []string{"Wegmans", "Costco"}, "milk")

	wantStores := "stores=wegmans%2Ccostco"
	if gotQuery != wantStores+"&term=milk" {
		t.Fatalf("query = %q, want %q", gotQuery, wantStores+"&term=milk")
	}
}

func TestLogin_SetsUserOnSuccess(t *testing.T) {
	userID := uuid.New()
	c, _ := newBootstrapServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["username"] != "alice" || body["password"] != "secret1" {
				http.Error(w, "Incorrect username or password.", http.StatusUnauthorized)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(model.RedactedUser{ID: userID, Username: "alice"})
		})
	})

	conn, _ := c.Connection()

	user := conn.Methods.Auth.Login(context.Background(), "alice", "secret1")
	if user == nil {
		t.Fatalf("expected a user from a successful login")
	}
	if user.ID != userID {
		t.Fatalf("ID = %s, want %s", user.ID, userID)
	}

	refreshed, ok := c.Connection()
	if !ok {
		t.Fatalf("expected connected state after login")
	}
	if refreshed.User == nil || refreshed.User.Username != "alice" {
		t.Fatalf("connection user = %+v, want alice", refreshed.User)
	}
}

func TestLogin_FailureLeavesUserUnset(t *testing.T) {
	c, _ := newBootstrapServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Incorrect username or password.", http.StatusUnauthorized)
		})
	})

	conn, _ := c.Connection()

	if user := conn.Methods.Auth.Login(context.Background(), "alice", "wrong"); user != nil {
		t.Fatalf("expected nil user from a failed login, got %+v", user)
	}

	refreshed, _ := c.Connection()
	if refreshed.User != nil {
		t.Fatalf("connection user = %+v, want nil", refreshed.User)
	}
}

func TestLogout_ClearsUser(t *testing.T) {
	c, _ := newBootstrapServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(model.RedactedUser{ID: uuid.New(), Username: "alice"})
		})
		mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	conn, _ := c.Connection()
	conn.Methods.Auth.Login(context.Background(), "alice", "secret1")
	conn.Methods.Auth.Logout(context.Background())

	refreshed, _ := c.Connection()
	if refreshed.User != nil {
		t.Fatalf("connection user = %+v, want nil after logout", refreshed.User)
	}
}

func TestListItems_FailureCollapsesToEmpty(t *testing.T) {
	c, _ := newBootstrapServer(t, "", func(mux *http.ServeMux) {
		mux.HandleFunc("GET /grocery/lists/id/1234/items", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "List with id does not exist.", http.StatusNotFound)
		})
	})

	conn, _ := c.Connection()
	items := conn.Methods.List.Items(context.Background(), "id", "1234")
	if items == nil {
		t.Fatalf("expected an empty slice, got nil")
	}
	if len(items) != 0 {
		t.Fatalf("len(items) = %d, want 0", len(items))
	}
}
