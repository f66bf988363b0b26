package client

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lia/internal/app/events"
	"lia/internal/app/groceries"
	"lia/internal/app/model"
	"lia/internal/app/store/memory"
	"lia/internal/configs"
	"lia/internal/handler"
)

// newLiveServer runs the full server stack against the in-memory store and
// returns a connected client with a registered user.
func newLiveServer(t *testing.T) (*Client, *Methods) {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:          "development",
		StoreMode:            "memory",
		AllowAccountCreation: true,
		StoreLocation:        "Times Square",
		StoreSupport:         []string{"wegmans"},
	}

	deps := &handler.AppDeps{
		Store:  memory.NewStore(),
		Hub:    events.NewHub(),
		Search: groceries.NewClient(""),
		Config: cfg,
	}

	server := httptest.NewServer(handler.Router(deps))
	t.Cleanup(func() {
		server.Close()
		deps.Hub.Shutdown()
	})

	c, err := New(server.URL)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect error: %v", err)
	}

	conn, ok := c.Connection()
	if !ok {
		t.Fatalf("expected connected state against live server")
	}

	if user := conn.Methods.Auth.CreateAccount(context.Background(), "alice", "secret1", ""); user == nil {
		t.Fatalf("account creation failed")
	}

	return c, conn.Methods
}

func waitForCount(t *testing.T, counter *atomic.Int32, want int32) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if counter.Load() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("counter = %d, want %d", counter.Load(), want)
}

func TestSubscribe_ItemMutationTriggersInvalidation(t *testing.T) {
	c, methods := newLiveServer(t)
	ctx := context.Background()

	list := methods.List.Create(ctx, "Groceries", []string{"wegmans"}, model.ListTypeGrocery)
	if list == nil {
		t.Fatalf("list creation failed")
	}

	var refetches atomic.Int32
	sub, err := c.Subscribe(ListTopic(list.ID.String()), func(payload map[string]any) {
		// the payload is only an invalidation trigger; fetch for real state
		methods.List.Items(ctx, "id", noDashes(list.ID.String()))
		refetches.Add(1)
	})
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}
	defer sub.Close()

	item := methods.List.AddItem(ctx, "id", noDashes(list.ID.String()), model.ItemDraft{
		Name:     "milk",
		Quantity: model.QuantitySpec{Amount: 1},
	})
	if item == nil {
		t.Fatalf("AddItem failed")
	}

	waitForCount(t, &refetches, 1)
}

func TestSubscribe_CloseStopsDelivery(t *testing.T) {
	c, methods := newLiveServer(t)
	ctx := context.Background()

	list := methods.List.Create(ctx, "Groceries", []string{"wegmans"}, model.ListTypeGrocery)
	if list == nil {
		t.Fatalf("list creation failed")
	}

	var invalidations atomic.Int32
	sub, err := c.Subscribe(ListTopic(list.ID.String()), func(payload map[string]any) {
		invalidations.Add(1)
	})
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}

	methods.List.AddItem(ctx, "id", noDashes(list.ID.String()), model.ItemDraft{Name: "milk"})
	waitForCount(t, &invalidations, 1)

	sub.Close()

	methods.List.AddItem(ctx, "id", noDashes(list.ID.String()), model.ItemDraft{Name: "eggs"})
	time.Sleep(100 * time.Millisecond)

	if got := invalidations.Load(); got != 1 {
		t.Fatalf("invalidations = %d, want 1 after Close", got)
	}
}

func TestSubscribe_RequiresConnection(t *testing.T) {
	c, err := New("http://localhost:0")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := c.Subscribe("list.abc", func(map[string]any) {}); err == nil {
		t.Fatalf("expected an error without a session")
	}
}

func TestSubscribe_DeleteTopicAnnouncesRemoval(t *testing.T) {
	c, methods := newLiveServer(t)
	ctx := context.Background()

	list := methods.List.Create(ctx, "Doomed", []string{"wegmans"}, model.ListTypeGrocery)
	if list == nil {
		t.Fatalf("list creation failed")
	}

	var removals atomic.Int32
	sub, err := c.Subscribe(ListDeleteTopic(list.ID.String()), func(payload map[string]any) {
		removals.Add(1)
	})
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}
	defer sub.Close()

	if !methods.List.DeleteOrLeave(ctx, "id", noDashes(list.ID.String())) {
		t.Fatalf("DeleteOrLeave failed")
	}

	waitForCount(t, &removals, 1)
}
