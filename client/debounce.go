/*
This file contains the debounced item updater: a timer-based coalescing queue
that merges rapid edits to the same item into one write after a settle delay,
giving last-write-wins semantics without out-of-order updates on the wire.
*/
package client

import (
	"context"
	"sync"
	"time"

	"lia/internal/app/model"
)

// DefaultSettleDelay is how long an item's edits accumulate before dispatch.
const DefaultSettleDelay = 250 * time.Millisecond

type pendingUpdate struct {
	method string
	ref    string
	itemID string
	patch  map[string]any
	timer  *time.Timer
}

// ItemUpdater coalesces deep-partial item patches per item. Queue merges each
// patch into the item's pending set and (re)arms its settle timer; the merged
// patch ships once the edits stop for the settle delay.
type ItemUpdater struct {
	list  ListMethods
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingUpdate
}

// NewItemUpdater creates an updater dispatching through the given list methods.
// A non-positive delay falls back to DefaultSettleDelay.
func NewItemUpdater(list ListMethods, delay time.Duration) *ItemUpdater {
	if delay <= 0 {
		delay = DefaultSettleDelay
	}

	return &ItemUpdater{
		list:    list,
		delay:   delay,
		pending: make(map[string]*pendingUpdate),
	}
}

// Queue merges a patch into the item's pending update and restarts its settle
// timer. Later values win on conflicting fields; nested objects merge key-wise.
func (u *ItemUpdater) Queue(method, ref, itemID string, patch map[string]any) {
	u.mu.Lock()
	defer u.mu.Unlock()

	key := method + "/" + ref + "/" + noDashes(itemID)

	if existing, ok := u.pending[key]; ok {
		existing.patch = model.MergePatch(existing.patch, patch)
		existing.timer.Reset(u.delay)
		return
	}

	update := &pendingUpdate{
		method: method,
		ref:    ref,
		itemID: itemID,
		patch:  model.MergePatch(map[string]any{}, patch),
	}
	update.timer = time.AfterFunc(u.delay, func() {
		u.dispatch(key)
	})
	u.pending[key] = update
}

func (u *ItemUpdater) dispatch(key string) {
	u.mu.Lock()
	update, ok := u.pending[key]
	if ok {
		delete(u.pending, key)
	}
	u.mu.Unlock()

	if !ok {
		return
	}

	u.list.UpdateItem(context.Background(), update.method, update.ref, update.itemID, update.patch)
}

// Flush dispatches every pending update immediately.
func (u *ItemUpdater) Flush() {
	u.mu.Lock()
	keys := make([]string, 0, len(u.pending))
	for key, update := range u.pending {
		update.timer.Stop()
		keys = append(keys, key)
	}
	u.mu.Unlock()

	for _, key := range keys {
		u.dispatch(key)
	}
}

// Stop cancels every pending update without dispatching it.
func (u *ItemUpdater) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()

	for key, update := range u.pending {
		update.timer.Stop()
		delete(u.pending, key)
	}
}
