package handler

import (
	"net"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"lia/internal/app/events"
	"lia/internal/pkg/errs"
	"lia/internal/pkg/limiter"
	"lia/internal/pkg/logx"
	"lia/internal/pkg/resp"
)

// topicRegex matches the published topic forms: "list.{id}" plus the
// ".settings" and ".delete" variants, where {id} is a dashless hex list id.
var topicRegex = regexp.MustCompile(`^list\.[0-9a-f]{32}(\.settings|\.delete)?$`)

// HandleEvents creates an HTTP HandlerFunc that upgrades the connection to a
// WebSocket subscribed to a single topic. Messages flow server-to-client only;
// inbound frames are drained and discarded.
func HandleEvents(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		if CurrentSession(r) == nil {
			logx.Warn("WebSocket connection rejected: No session.")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		topic := chi.URLParam(r, "topic")
		if !topicRegex.MatchString(topic) {
			logx.Warn("WebSocket connection rejected: Invalid topic", "topic", topic)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		// Register before the handshake completes so a mutation racing the
		// connect cannot slip past the subscription.
		sub := deps.Hub.Subscribe(topic)
		if sub == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			deps.Hub.Unsubscribe(sub)
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		conn := events.NewConn(deps.Hub, sub, wsConn)

		go conn.WritePump()

		logx.Info("WebSocket subscription established", "topic", topic)

		conn.ReadPump()
	}
}
