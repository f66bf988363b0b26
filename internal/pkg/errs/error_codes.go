/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Session, Account, and Security Errors
const (
	// ErrUnauthorized indicates the request requires a logged-in user.
	ErrUnauthorized = 2001

	// ErrInvalidCredentials indicates an incorrect username or password during login.
	ErrInvalidCredentials = 2002

	// ErrInvalidUsername indicates the username failed validation during account creation.
	ErrInvalidUsername = 2003

	// ErrInvalidPassword indicates the password failed validation during account creation.
	ErrInvalidPassword = 2004

	// ErrUserAlreadyExists indicates the attempted username is already taken.
	ErrUserAlreadyExists = 2005

	// ErrAccountCreationDisabled indicates open account creation is disabled and no valid invite was supplied.
	ErrAccountCreationDisabled = 2006

	// ErrAdminRequired indicates the operation is restricted to admin users.
	ErrAdminRequired = 2007
)

// 3xxx: List, Item, and Invite Business Logic Errors
const (
	// ErrListNotFound indicates that the referenced list does not exist or cannot be accessed.
	ErrListNotFound = 3101

	// ErrListNotOwned indicates the list is not owned by the current user.
	ErrListNotOwned = 3102

	// ErrInvalidAccessMethod indicates an access method other than "id" or "alias" was supplied.
	ErrInvalidAccessMethod = 3103

	// ErrAliasUnlinked indicates the referenced alias points at a list that no longer exists.
	ErrAliasUnlinked = 3104

	// ErrItemNotFound indicates that the referenced list item does not exist.
	ErrItemNotFound = 3201

	// ErrInviteNotFound indicates that the referenced invite URI does not exist.
	ErrInviteNotFound = 3301

	// ErrInviteExhausted indicates the invite has expired or has no remaining uses.
	ErrInviteExhausted = 3302

	// ErrNotListMember indicates the user is not a member of the specified list.
	ErrNotListMember = 3401
)

// 4xxx: Upstream Service Errors
const (
	// ErrSearchUnavailable indicates the product-search backend could not be reached.
	ErrSearchUnavailable = 4001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
