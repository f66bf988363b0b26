/*
Package handler provides the HTTP handlers and routing setup for the lia server.

This file defines the main Router, applying necessary middleware like logging, CORS,
session extraction, and IP-based rate limiting before delegating requests to the
specific handlers (REST API and WebSocket event subscriptions).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"lia/internal/pkg/limiter"
	"lia/internal/pkg/logx"
)

const (
	AuthRate    = 0.5
	AuthBurst   = 10
	EventsRate  = 1
	EventsBurst = 20
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It configures CORS, applies global and per-route middleware, and mounts every
// API route plus the /events WebSocket endpoint.
func Router(deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst)
	eventsLimiter := limiter.NewIPRateLimiter(rate.Limit(EventsRate), EventsBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Use(SessionExtractorMiddleware(deps))

	r.Get("/", HandleGetSettings(deps))

	r.Route("/auth", func(auth chi.Router) {
		auth.Get("/session", HandleGetSession(deps))
		auth.Post("/logout", HandleLogout(deps))

		rateLimitedLogin := authLimiter.Middleware(HandleLogin(deps))
		auth.Post("/login", rateLimitedLogin.ServeHTTP)

		rateLimitedCreate := authLimiter.Middleware(HandleCreateAccount(deps))
		auth.Post("/create", rateLimitedCreate.ServeHTTP)
	})

	r.Route("/user", func(user chi.Router) {
		user.Get("/", HandleGetSelf(deps))
		user.Get("/lists", HandleGetUserLists(deps))
		user.Get("/favorites", HandleGetFavorites(deps))
		user.Post("/favorites/{type}/{reference}", HandleToggleFavorite(deps))
		user.Post("/join/{code}", HandleJoinList(deps))
	})

	r.Route("/grocery/lists", func(lists chi.Router) {
		lists.Post("/create", HandleCreateList(deps))
		lists.Post("/{list_id}/settings", HandleUpdateListSettings(deps))
		lists.Get("/{list_id}/invites", HandleGetListInvites(deps))

		lists.Route("/{method}/{reference}", func(list chi.Router) {
			list.Get("/", HandleGetList(deps))
			list.Delete("/", HandleDeleteOrLeaveList(deps))
			list.Get("/items", HandleGetListItems(deps))
			list.Post("/item", HandleAddListItem(deps))
			list.Post("/item/{item}/checked", HandleSetItemChecked(deps, true))
			list.Delete("/item/{item}/checked", HandleSetItemChecked(deps, false))
			list.Post("/item/{item}/update", HandleUpdateListItem(deps))
			list.Delete("/item/{item}", HandleDeleteListItem(deps))
		})
	})

	r.Route("/invites", func(invites chi.Router) {
		invites.Post("/account", HandleCreateAccountInvite(deps))
		invites.Post("/list/{list_id}", HandleCreateListInvite(deps))
		invites.Get("/{invite_type}/{uri}", HandleGetInvite(deps))
		invites.Delete("/item/list/{uri}", HandleDeleteListInvite(deps))
	})

	r.Get("/groceries/search", HandleGrocerySearch(deps))

	r.Get("/events/{topic}", HandleEvents(wsUpgrader, eventsLimiter, deps))

	return r
}
