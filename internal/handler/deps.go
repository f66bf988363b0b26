package handler

import (
	"lia/internal/app/events"
	"lia/internal/app/groceries"
	"lia/internal/app/store"
	"lia/internal/configs"
)

// AppDeps bundles the shared collaborators injected into every handler.
type AppDeps struct {
	Store  store.Store
	Hub    *events.Hub
	Search *groceries.Client
	Config *configs.AppConfig
}
