package handler

import (
	"net/http"
	"strings"

	"lia/internal/app/model"
	"lia/internal/pkg/errs"
	"lia/internal/pkg/logx"
	"lia/internal/pkg/resp"
)

// HandleGetSettings returns the server configuration surface fetched once per
// session bootstrap.
func HandleGetSettings(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, model.Settings{
			StoreLocation:        deps.Config.StoreLocation,
			StoreSupport:         deps.Config.StoreSupport,
			AllowAccountCreation: deps.Config.AllowAccountCreation,
		})
	}
}

// HandleGrocerySearch proxies a product search to the external grocery data
// service, fanning out across the requested stores.
func HandleGrocerySearch(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, customErr := RequireUser(deps, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		term := r.URL.Query().Get("term")
		storesParam := r.URL.Query().Get("stores")

		stores := []string{}
		for _, store := range strings.Split(storesParam, ",") {
			store = strings.ToLower(strings.TrimSpace(store))
			if store != "" {
				stores = append(stores, store)
			}
		}

		if len(stores) == 0 {
			stores = deps.Config.StoreSupport
		}

		results, err := deps.Search.Search(r.Context(), stores, term)
		if err != nil {
			logx.Error(err, "grocery search failed", "term", term)
			resp.RespondError(w, r, errs.NewError(errs.ErrSearchUnavailable))
			return
		}

		resp.RespondSuccess(w, r, results)
	}
}
