/*
This file contains the grocery/recipe list handlers. Lists are addressed by an
access method pair: "id" (owner access by stable id) or "alias" (shared access
through a list invite's URI). Every item mutation publishes an invalidation
message on the list's event topic.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lia/internal/app/events"
	"lia/internal/app/model"
	"lia/internal/pkg/errs"
	"lia/internal/pkg/logx"
	"lia/internal/pkg/randx"
	"lia/internal/pkg/req"
	"lia/internal/pkg/resp"
)

// resolveListAccess loads the list addressed by the request's {method}/{reference}
// path segments, enforcing the access rules for each method: "id" requires
// ownership by the current user, "alias" requires a live list invite. An alias
// whose target list no longer exists is unlinked (the invite is deleted).
func resolveListAccess(deps *AppDeps, r *http.Request, user model.User) (model.GroceryList, *errs.CustomError) {
	method := chi.URLParam(r, "method")
	reference := chi.URLParam(r, "reference")

	switch method {
	case model.AccessMethodID:
		listID, err := randx.ParseID(reference)
		if err != nil {
			return model.GroceryList{}, errs.NewError(errs.ErrListNotFound)
		}

		list, err := deps.Store.GetList(r.Context(), listID)
		if err != nil || list.OwnerID != randx.Hex(user.ID) {
			return model.GroceryList{}, errs.NewError(errs.ErrListNotFound)
		}

		return list, nil

	case model.AccessMethodAlias:
		invite, err := deps.Store.GetInviteByURI(r.Context(), reference)
		if err != nil || invite.Type != model.InviteTypeList {
			return model.GroceryList{}, errs.NewError(errs.ErrListNotFound)
		}

		listID, err := randx.ParseID(invite.Reference)
		if err != nil {
			return model.GroceryList{}, errs.NewError(errs.ErrAliasUnlinked)
		}

		list, err := deps.Store.GetList(r.Context(), listID)
		if err != nil {
			if deleteErr := deps.Store.DeleteInviteByURI(r.Context(), invite.URI); deleteErr != nil {
				logx.Warn("failed to unlink dangling alias", "uri", invite.URI)
			}
			return model.GroceryList{}, errs.NewError(errs.ErrAliasUnlinked)
		}

		return list, nil
	}

	return model.GroceryList{}, errs.NewError(errs.ErrInvalidAccessMethod)
}

// resolveListItem loads the item addressed by the {item} path segment and
// verifies it belongs to the given list.
func resolveListItem(deps *AppDeps, r *http.Request, list model.GroceryList) (model.ListItem, *errs.CustomError) {
	itemID, err := randx.ParseID(chi.URLParam(r, "item"))
	if err != nil {
		return model.ListItem{}, errs.NewError(errs.ErrItemNotFound)
	}

	item, err := deps.Store.GetItem(r.Context(), itemID)
	if err != nil || item.ListID != randx.Hex(list.ID) {
		return model.ListItem{}, errs.NewError(errs.ErrItemNotFound)
	}

	return item, nil
}

type ListCreationInput struct {
	Name   string   `json:"name"`
	Stores []string `json:"stores"`
	Type   string   `json:"type"`
}

// HandleCreateList creates a new grocery or recipe list owned by the current user.
func HandleCreateList(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input ListCreationInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Type != model.ListTypeGrocery && input.Type != model.ListTypeRecipe {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidJSONFormat))
			return
		}

		list := model.GroceryList{
			ID:             uuid.New(),
			Name:           input.Name,
			OwnerID:        randx.Hex(user.ID),
			IncludedStores: input.Stores,
			Type:           input.Type,
		}

		if err := deps.Store.CreateList(r.Context(), list); err != nil {
			logx.Error(err, "failed to create list")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, list)
	}
}

type ListSettingsInput struct {
	Name   string   `json:"name"`
	Stores []string `json:"stores"`
}

// HandleUpdateListSettings updates list metadata. Only the owner may change
// settings, so this endpoint addresses the list by id rather than by access pair.
func HandleUpdateListSettings(deps *AppDeps) http.HandlerFunc {
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

		var input ListSettingsInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		list.Name = input.Name
		list.IncludedStores = input.Stores

		if err := deps.Store.UpdateList(r.Context(), list); err != nil {
			logx.Error(err, "failed to update list settings", "list_id", list.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		deps.Hub.Publish(events.ListSettingsTopic(randx.Hex(list.ID)), struct{}{})
		resp.RespondSuccess(w, r, list)
	}
}

// HandleGetListInvites returns all invites pointing at an owned list.
func HandleGetListInvites(deps *AppDeps) http.HandlerFunc {
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

		invites, err := deps.Store.InvitesByReference(r.Context(), randx.Hex(list.ID))
		if err != nil {
			logx.Error(err, "failed to load list invites", "list_id", list.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, invites)
	}
}

// ownedListFromPath loads the list named by the {list_id} path segment and
// verifies the current user owns it.
func ownedListFromPath(deps *AppDeps, r *http.Request, user model.User) (model.GroceryList, *errs.CustomError) {
	listID, err := randx.ParseID(chi.URLParam(r, "list_id"))
	if err != nil {
		return model.GroceryList{}, errs.NewError(errs.ErrListNotFound)
	}

	list, err := deps.Store.GetList(r.Context(), listID)
	if err != nil {
		return model.GroceryList{}, errs.NewError(errs.ErrListNotFound)
	}

	if list.OwnerID != randx.Hex(user.ID) {
		return model.GroceryList{}, errs.NewError(errs.ErrListNotOwned)
	}

	return list, nil
}

// HandleGetList returns the list addressed by {method}/{reference}.
func HandleGetList(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		list, customErr := resolveListAccess(deps, r, user)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, list)
	}
}

// HandleGetListItems returns all items on the addressed list.
func HandleGetListItems(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		list, customErr := resolveListAccess(deps, r, user)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		items, err := deps.Store.ItemsByList(r.Context(), randx.Hex(list.ID))
		if err != nil {
			logx.Error(err, "failed to load list items", "list_id", list.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, items)
	}
}

// HandleAddListItem creates an item on the addressed list.
func HandleAddListItem(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		list, customErr := resolveListAccess(deps, r, user)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var draft model.ItemDraft
		if customErr := req.BindJSON(r, &draft); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		location := draft.Location
		if location != nil && *location == "" {
			location = nil
		}

		item := model.ListItem{
			ID:         uuid.New(),
			Name:       draft.Name,
			ListID:     randx.Hex(list.ID),
			AddedBy:    randx.Hex(user.ID),
			Checked:    false,
			Quantity:   draft.Quantity,
			Categories: draft.Categories,
			Price:      draft.Price,
			Location:   location,
			LinkedItem: draft.LinkedItem,
		}

		if err := deps.Store.CreateItem(r.Context(), item); err != nil {
			logx.Error(err, "failed to create list item", "list_id", list.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		deps.Hub.Publish(events.ListTopic(item.ListID), events.ActionPayload{Action: events.ActionAddItem})
		resp.RespondSuccess(w, r, item)
	}
}

// HandleSetItemChecked flips an item's checked flag: POST checks, DELETE unchecks.
func HandleSetItemChecked(deps *AppDeps, checked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		list, customErr := resolveListAccess(deps, r, user)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		item, customErr := resolveListItem(deps, r, list)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		item.Checked = checked
		if err := deps.Store.UpdateItem(r.Context(), item); err != nil {
			logx.Error(err, "failed to update item checked state", "item_id", item.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		action := events.ActionCheckItem
		if !checked {
			action = events.ActionUncheckItem
		}

		deps.Hub.Publish(events.ListTopic(item.ListID), events.ActionPayload{Action: action})
		resp.RespondNoContent(w, r)
	}
}

// HandleUpdateListItem applies a deep-partial patch to an item and returns the
// updated record.
func HandleUpdateListItem(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		list, customErr := resolveListAccess(deps, r, user)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		item, customErr := resolveListItem(deps, r, list)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		patch, customErr := req.BindJSONMap(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		patched, err := model.ApplyItemPatch(item, patch)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidJSONFormat))
			return
		}

		if err := deps.Store.UpdateItem(r.Context(), patched); err != nil {
			logx.Error(err, "failed to update item", "item_id", item.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		deps.Hub.Publish(events.ListTopic(item.ListID), events.ActionPayload{Action: events.ActionUpdateItem})
		resp.RespondSuccess(w, r, patched)
	}
}

// HandleDeleteListItem removes an item from the addressed list.
func HandleDeleteListItem(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		list, customErr := resolveListAccess(deps, r, user)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		item, customErr := resolveListItem(deps, r, list)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Store.DeleteItem(r.Context(), item.ID); err != nil {
			logx.Error(err, "failed to delete item", "item_id", item.ID.String())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		deps.Hub.Publish(events.ListTopic(item.ListID), events.ActionPayload{Action: events.ActionDeleteItem})
		resp.RespondNoContent(w, r)
	}
}

// HandleDeleteOrLeaveList deletes the list when the caller owns it, otherwise
// removes the caller's membership obtained through the alias reference.
func HandleDeleteOrLeaveList(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, customErr := RequireUser(deps, r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		list, customErr := resolveListAccess(deps, r, user)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if list.OwnerID == randx.Hex(user.ID) {
			if err := deps.Store.DeleteList(r.Context(), list.ID); err != nil {
				logx.Error(err, "failed to delete list", "list_id", list.ID.String())
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}

			deps.Hub.Publish(events.ListDeleteTopic(randx.Hex(list.ID)), struct{}{})
			resp.RespondNoContent(w, r)
			return
		}

		reference := chi.URLParam(r, "reference")
		if err := deps.Store.RemoveJoinedList(r.Context(), randx.Hex(user.ID), reference); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotListMember))
			return
		}

		if err := deps.Store.DeleteFavoritesByReference(r.Context(), reference); err != nil {
			logx.Warn("failed to clear favorites for left list", "reference", reference)
		}

		resp.RespondNoContent(w, r)
	}
}
