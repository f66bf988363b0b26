/*
This file contains the push-notification bridge: one WebSocket subscription per
topic, delivering each inbound message to a callback in arrival order. Messages
are invalidation triggers; subscribers fetch current state separately.
*/
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Topic builders matching the server's published channels. The list id is its
// dashless hex form.

// ListTopic names the channel announcing item mutations for a list.
func ListTopic(listID string) string {
	return "list." + noDashes(listID)
}

// ListSettingsTopic names the channel announcing list metadata changes.
func ListSettingsTopic(listID string) string {
	return "list." + noDashes(listID) + ".settings"
}

// ListDeleteTopic names the channel announcing removal of the list itself.
func ListDeleteTopic(listID string) string {
	return "list." + noDashes(listID) + ".delete"
}

// Subscription is one live topic connection. Close tears it down with a normal
// closure; the callback is never invoked after Close returns.
type Subscription struct {
	conn *websocket.Conn

	closeOnce sync.Once
	done      chan struct{}

	// wg tracks the read loop so Close can wait for the final callback.
	wg sync.WaitGroup
}

// Subscribe opens a live connection for the given topic and invokes onMessage
// for every inbound payload, in arrival order. It requires an established
// session; the session cookie rides along on the WebSocket handshake.
func (c *Client) Subscribe(topic string, onMessage func(payload map[string]any)) (*Subscription, error) {
	if !c.hasSession() {
		return nil, errors.New("not connected")
	}

	endpoint, err := c.eventsURL(topic)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{
		Jar:              c.httpClient.Jar,
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	sub := &Subscription{
		conn: conn,
		done: make(chan struct{}),
	}

	sub.wg.Add(1)
	go sub.readLoop(onMessage)

	return sub, nil
}

// eventsURL derives the WebSocket endpoint for a topic from the API base URL.
func (c *Client) eventsURL(topic string) (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/events/" + topic
	return parsed.String(), nil
}

func (s *Subscription) readLoop(onMessage func(payload map[string]any)) {
	defer s.wg.Done()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		select {
		case <-s.done:
			return
		default:
		}

		payload := map[string]any{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			// Unparseable frames still count as invalidation triggers.
			payload = map[string]any{}
		}

		onMessage(payload)
	}
}

// Close ends the subscription with a normal closure code. Missed messages are
// not buffered; a late subscriber must fetch current state itself.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		deadline := time.Now().Add(time.Second)
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline,
		)
		s.conn.Close()
		s.wg.Wait()
	})
}
