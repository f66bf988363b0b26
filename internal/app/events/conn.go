/*
Package events contains the push-notification fan-out for live collaborative updates.

This file defines the Conn struct, which binds a Hub subscriber to an active
WebSocket connection and runs the read/write pump loops for its lifetime.
*/
package events

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lia/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// subscribers never send application data; anything beyond a close frame is noise.
	maxInboundSize = 512
)

// Conn binds a Hub subscriber to a WebSocket connection.
type Conn struct {
	// the hub that owns the subscription.
	hub *Hub

	// the per-topic subscription being served.
	sub *Subscriber

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// structured logger with topic context.
	logger zerolog.Logger
}

// NewConn constructs a Conn serving the given subscriber over wsConn.
func NewConn(hub *Hub, sub *Subscriber, wsConn *websocket.Conn) *Conn {
	connLogger := logx.Logger().With().
		Str("component", "events").
		Str("topic", sub.Topic).
		Logger()

	return &Conn{
		hub:    hub,
		sub:    sub,
		conn:   wsConn,
		logger: connLogger,
	}
}

// ReadPump consumes the inbound side of the connection.
// Subscribers are listen-only, so inbound frames are discarded; the pump exists
// to handle Pong heartbeats and to detect the peer closing the connection.
func (c *Conn) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxInboundSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (subscriber close/going away)")
			}
			return
		}
	}
}

// cleanupOnDisconnect unsubscribes from the hub and closes the connection.
func (c *Conn) cleanupOnDisconnect() {
	c.hub.Unsubscribe(c.sub)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Subscriber connection close error")
	}
}

// WritePump forwards queued messages from the subscription to the WebSocket
// connection and maintains the ping heartbeat.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Subscriber connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.sub.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				// Hub closed the subscription (topic teardown or shutdown).
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing event message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
