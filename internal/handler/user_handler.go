/*
This file contains the handlers under /user: the current user's profile, the
merged view of owned and joined lists, favorites, and list joining.
*/
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lia/internal/app/model"
	"lia/internal/pkg/errs"
	"lia/internal/pkg/logx"
	"lia/internal/pkg/randx"
	"lia/internal/pkg/resp"
)

// HandleGetSelf returns the current user's redacted profile.
func HandleGetSelf(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, user.Redacted())
	}
}

// HandleGetUserLists returns every list the user can access: owned lists
// addressed by id, joined lists addressed by the alias they were joined through.
// Joined lists whose target no longer exists are skipped.
func HandleGetUserLists(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		userHex := randx.Hex(user.ID)
		specs := []model.ListAccessSpec{}

		owned, err := deps.Store.ListsByOwner(r.Context(), userHex)
		if err != nil {
			logx.Error(err, "failed to load owned lists", "user_id", userHex)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		for _, list := range owned {
			ref := model.AccessReference{Type: model.AccessMethodID, Reference: randx.Hex(list.ID)}
			favorited, _ := deps.Store.IsFavorite(r.Context(), userHex, ref)
			specs = append(specs, model.ListAccessSpec{
				Data:            list,
				AccessType:      ref.Type,
				AccessReference: ref.Reference,
				Favorited:       favorited,
			})
		}

		joined, err := deps.Store.JoinedLists(r.Context(), userHex)
		if err != nil {
			logx.Error(err, "failed to load joined lists", "user_id", userHex)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		for _, membership := range joined {
			invite, err := deps.Store.GetInviteByURI(r.Context(), membership.InviteURI)
			if err != nil {
				continue
			}

			listID, err := randx.ParseID(invite.Reference)
			if err != nil {
				continue
			}

			list, err := deps.Store.GetList(r.Context(), listID)
			if err != nil {
				continue
			}

			ref := model.AccessReference{Type: model.AccessMethodAlias, Reference: invite.URI}
			favorited, _ := deps.Store.IsFavorite(r.Context(), userHex, ref)
			specs = append(specs, model.ListAccessSpec{
				Data:            list,
				AccessType:      ref.Type,
				AccessReference: ref.Reference,
				Favorited:       favorited,
			})
		}

		resp.RespondSuccess(w, r, specs)
	}
}

// HandleGetFavorites returns the user's pinned list references.
func HandleGetFavorites(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		favorites, err := deps.Store.Favorites(r.Context(), randx.Hex(user.ID))
		if err != nil {
			logx.Error(err, "failed to load favorites", "user_id", randx.Hex(user.ID))
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, favorites)
	}
}

// HandleToggleFavorite pins or unpins the referenced list for the user.
// A created pin is returned as the response payload; removal answers 204.
func HandleToggleFavorite(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		refType := chi.URLParam(r, "type")
		if refType != model.AccessMethodID && refType != model.AccessMethodAlias {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidAccessMethod))
			return
		}

		ref := model.AccessReference{
			Type:      refType,
			Reference: chi.URLParam(r, "reference"),
		}

		favorite, err := deps.Store.ToggleFavorite(r.Context(), randx.Hex(user.ID), ref)
		if err != nil {
			logx.Error(err, "failed to toggle favorite", "reference", ref.Reference)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if favorite == nil {
			resp.RespondNoContent(w, r)
			return
		}

		resp.RespondSuccess(w, r, favorite)
	}
}

// HandleJoinList redeems a list invite for the current user, consuming one use.
func HandleJoinList(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		uri := chi.URLParam(r, "code")

		invite, err := deps.Store.GetInviteByURI(r.Context(), uri)
		if err != nil || invite.Type != model.InviteTypeList {
			resp.RespondError(w, r, errs.NewError(errs.ErrInviteNotFound))
			return
		}

		if !invite.Usable(time.Now()) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInviteExhausted))
			return
		}

		userHex := randx.Hex(user.ID)

		// Owners and existing members just get the current membership back.
		listID, err := randx.ParseID(invite.Reference)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAliasUnlinked))
			return
		}

		list, err := deps.Store.GetList(r.Context(), listID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAliasUnlinked))
			return
		}

		if list.OwnerID == userHex {
			resp.RespondNoContent(w, r)
			return
		}

		memberships, err := deps.Store.JoinedLists(r.Context(), userHex)
		if err == nil {
			for _, membership := range memberships {
				if membership.InviteURI == uri {
					resp.RespondNoContent(w, r)
					return
				}
			}
		}

		if err := deps.Store.AddJoinedList(r.Context(), userHex, uri); err != nil {
			logx.Error(err, "failed to record list membership", "uri", uri)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Store.DecrementInviteUses(r.Context(), uri); err != nil {
			logx.Warn("failed to consume invite use", "uri", uri)
		}

		resp.RespondNoContent(w, r)
	}
}
