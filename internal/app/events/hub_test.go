package events

import (
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscriber) []byte {
	t.Helper()

	select {
	case message, ok := <-sub.Messages():
		if !ok {
			t.Fatalf("delivery queue closed unexpectedly")
		}
		return message
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for message")
		return nil
	}
}

func TestHub_PublishReachesAllTopicSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	topic := ListTopic("0123456789abcdef0123456789abcdef")
	first := hub.Subscribe(topic)
	second := hub.Subscribe(topic)

	hub.Publish(topic, ActionPayload{Action: ActionAddItem})

	want := `{"action":"addItem"}`
	if got := string(receive(t, first)); got != want {
		t.Fatalf("first subscriber got %q, want %q", got, want)
	}
	if got := string(receive(t, second)); got != want {
		t.Fatalf("second subscriber got %q, want %q", got, want)
	}
}

func TestHub_TopicsAreIsolated(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	listID := "0123456789abcdef0123456789abcdef"
	items := hub.Subscribe(ListTopic(listID))
	settings := hub.Subscribe(ListSettingsTopic(listID))

	hub.Publish(ListSettingsTopic(listID), struct{}{})

	receive(t, settings)

	select {
	case message := <-items.Messages():
		t.Fatalf("item topic received %q, want nothing", message)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_PublishWithoutSubscribersIsNoOp(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	hub.Publish(ListTopic("0123456789abcdef0123456789abcdef"), ActionPayload{Action: ActionDeleteItem})
}

func TestHub_UnsubscribeClosesQueue(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	sub := hub.Subscribe(ListTopic("0123456789abcdef0123456789abcdef"))
	hub.Unsubscribe(sub)

	if _, ok := <-sub.Messages(); ok {
		t.Fatalf("expected a closed delivery queue after unsubscribe")
	}

	// double unsubscribe must not panic
	hub.Unsubscribe(sub)
}

func TestHub_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	topic := ListTopic("0123456789abcdef0123456789abcdef")
	sub := hub.Subscribe(topic)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberChannelBuffer+10; i++ {
			hub.Publish(topic, ActionPayload{Action: ActionUpdateItem})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on a full subscriber queue")
	}

	if got := len(sub.Messages()); got != subscriberChannelBuffer {
		t.Fatalf("queued %d messages, want the buffer cap %d", got, subscriberChannelBuffer)
	}
}

func TestHub_SubscribeAfterShutdownReturnsNil(t *testing.T) {
	hub := NewHub()
	hub.Shutdown()

	if sub := hub.Subscribe("list.abc"); sub != nil {
		t.Fatalf("expected nil subscriber after shutdown")
	}
}

func TestTopicNames(t *testing.T) {
	listHex := "0123456789abcdef0123456789abcdef"

	if got := ListTopic(listHex); got != "list."+listHex {
		t.Fatalf("ListTopic = %q", got)
	}
	if got := ListSettingsTopic(listHex); got != "list."+listHex+".settings" {
		t.Fatalf("ListSettingsTopic = %q", got)
	}
	if got := ListDeleteTopic(listHex); got != "list."+listHex+".delete" {
		t.Fatalf("ListDeleteTopic = %q", got)
	}
}
