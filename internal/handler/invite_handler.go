/*
This file contains the invite handlers. List invites double as a list's
shareable alias; account invites let admins open registration selectively when
open account creation is disabled.
*/
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lia/internal/app/model"
	"lia/internal/pkg/errs"
	"lia/internal/pkg/logx"
	"lia/internal/pkg/randx"
	"lia/internal/pkg/req"
	"lia/internal/pkg/resp"
)

// HandleCreateListInvite issues a new invite for an owned list.
func HandleCreateListInvite(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		list, customErr := ownedListFromPath(deps, r, user)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		uri, err := randx.InviteURI()
		if err != nil {
			logx.Error(err, "failed to generate invite uri")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		invite := model.Invite{
			ID:        uuid.New(),
			URI:       uri,
			Type:      model.InviteTypeList,
			Reference: randx.Hex(list.ID),
			Owner:     randx.Hex(user.ID),
		}

		if err := deps.Store.CreateInvite(r.Context(), invite); err != nil {
			logx.Error(err, "failed to create list invite", "list_id", list.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, invite)
	}
}

type AccountInviteInput struct {
	Uses    *int       `json:"uses,omitempty"`
	Expires *time.Time `json:"expires,omitempty"`
}

// HandleCreateAccountInvite issues a new account-creation invite. Admin only.
func HandleCreateAccountInvite(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !user.Admin {
			resp.RespondError(w, r, errs.NewError(errs.ErrAdminRequired))
			return
		}

		input := AccountInviteInput{}
		if r.ContentLength > 0 {
			if customErr := req.BindJSON(r, &input); customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
		}

		uri, err := randx.InviteURI()
		if err != nil {
			logx.Error(err, "failed to generate invite uri")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		invite := model.Invite{
			ID:            uuid.New(),
			URI:           uri,
			Type:          model.InviteTypeAccount,
			UsesRemaining: input.Uses,
			Expires:       input.Expires,
			Owner:         randx.Hex(user.ID),
		}

		if err := deps.Store.CreateInvite(r.Context(), invite); err != nil {
			logx.Error(err, "failed to create account invite")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, invite)
	}
}

// HandleGetInvite resolves an invite by type and URI.
func HandleGetInvite(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inviteType := chi.URLParam(r, "invite_type")
		if inviteType != model.InviteTypeAccount && inviteType != model.InviteTypeList {
			resp.RespondError(w, r, errs.NewError(errs.ErrInviteNotFound))
			return
		}

		invite, err := deps.Store.GetInviteByURI(r.Context(), chi.URLParam(r, "uri"))
		if err != nil || invite.Type != inviteType {
			resp.RespondError(w, r, errs.NewError(errs.ErrInviteNotFound))
			return
		}

		resp.RespondSuccess(w, r, invite)
	}
}

// HandleDeleteListInvite revokes a list invite. Only the owner of the
// referenced list may revoke it; memberships created through the invite are
// severed because alias resolution fails once the invite is gone.
func HandleDeleteListInvite(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		uri := chi.URLParam(r, "uri")

		invite, err := deps.Store.GetInviteByURI(r.Context(), uri)
		if err != nil || invite.Type != model.InviteTypeList {
			resp.RespondError(w, r, errs.NewError(errs.ErrInviteNotFound))
			return
		}

		listID, err := randx.ParseID(invite.Reference)
		if err == nil {
			list, err := deps.Store.GetList(r.Context(), listID)
			if err == nil && list.OwnerID != randx.Hex(user.ID) {
				resp.RespondError(w, r, errs.NewError(errs.ErrListNotOwned))
				return
			}
		}

		if err := deps.Store.DeleteInviteByURI(r.Context(), uri); err != nil {
			logx.Error(err, "failed to delete invite", "uri", uri)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Store.DeleteFavoritesByReference(r.Context(), uri); err != nil {
			logx.Warn("failed to clear favorites for revoked invite", "uri", uri)
		}

		resp.RespondNoContent(w, r)
	}
}
