/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both inside
the server and in responses sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Chat and Message Business Logic Errors
const (
	// ErrChatNotFound indicates the referenced chat does not exist.
	ErrChatNotFound = 2101

	// ErrNotChatMember indicates the caller is not a participant of the chat.
	ErrNotChatMember = 2102

	// ErrNotGroupChat indicates a group operation was attempted on a 1:1 chat.
	ErrNotGroupChat = 2103

	// ErrGroupTooSmall indicates a group chat was created with fewer than two other members.
	ErrGroupTooSmall = 2104

	// ErrMessageContentEmpty indicates a message with no content was submitted.
	ErrMessageContentEmpty = 2201

	// ErrMessageContentTooLong indicates the message content exceeded the length limit.
	ErrMessageContentTooLong = 2202
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing or invalid session token.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = 3002

	// ErrUserAlreadyExists indicates the email is already registered.
	ErrUserAlreadyExists = 3003

	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = 3004

	// ErrInvalidEmail indicates the supplied email address failed validation.
	ErrInvalidEmail = 3005

	// ErrInvalidPassword indicates the supplied password failed the length policy.
	ErrInvalidPassword = 3006
)

// 4xxx: File and Storage Errors
const (
	// ErrFileTypeInvalid indicates an unsupported avatar file type.
	ErrFileTypeInvalid = 4001

	// ErrFileSizeTooLarge indicates the avatar exceeded the size limit.
	ErrFileSizeTooLarge = 4002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified server internal error.
	ErrUnknown = 5000
)
