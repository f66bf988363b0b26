/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the client message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Session, Account, and Security Errors
	ErrUnauthorized:            {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials:      {Code: ErrInvalidCredentials, Message: "Incorrect username or password.", Status: http.StatusUnauthorized},
	ErrInvalidUsername:         {Code: ErrInvalidUsername, Message: "Invalid username.", Status: http.StatusBadRequest},
	ErrInvalidPassword:         {Code: ErrInvalidPassword, Message: "Invalid password.", Status: http.StatusBadRequest},
	ErrUserAlreadyExists:       {Code: ErrUserAlreadyExists, Message: "Username is already taken.", Status: http.StatusConflict},
	ErrAccountCreationDisabled: {Code: ErrAccountCreationDisabled, Message: "Account creation is disabled.", Status: http.StatusMethodNotAllowed},
	ErrAdminRequired:           {Code: ErrAdminRequired, Message: "Account invites cannot be created by non-admin users.", Status: http.StatusUnauthorized},

	// 3xxx: List, Item, and Invite Business Logic Errors
	ErrListNotFound:        {Code: ErrListNotFound, Message: "List not found.", Status: http.StatusNotFound},
	ErrListNotOwned:        {Code: ErrListNotOwned, Message: "List not owned by current user.", Status: http.StatusMethodNotAllowed},
	ErrInvalidAccessMethod: {Code: ErrInvalidAccessMethod, Message: "Invalid method.", Status: http.StatusBadRequest},
	ErrAliasUnlinked:       {Code: ErrAliasUnlinked, Message: "Referenced alias has been unlinked and is no longer accessible.", Status: http.StatusNotFound},
	ErrItemNotFound:        {Code: ErrItemNotFound, Message: "Item not found.", Status: http.StatusNotFound},
	ErrInviteNotFound:      {Code: ErrInviteNotFound, Message: "Invite URI not found.", Status: http.StatusNotFound},
	ErrInviteExhausted:     {Code: ErrInviteExhausted, Message: "Invite is expired or has no remaining uses.", Status: http.StatusGone},
	ErrNotListMember:       {Code: ErrNotListMember, Message: "Not a member of specified list.", Status: http.StatusNotFound},

	// 4xxx: Upstream Service Errors
	ErrSearchUnavailable: {Code: ErrSearchUnavailable, Message: "Product search is currently unavailable.", Status: http.StatusBadGateway},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
