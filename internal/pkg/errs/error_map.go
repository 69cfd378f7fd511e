package errs

import "net/http"

// errorMap binds each error code to its message template and HTTP status.
var errorMap = map[int]CustomError{
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported media type.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Request body is not valid JSON.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request body contains extra content after JSON data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please slow down.", Status: http.StatusTooManyRequests},

	ErrChatNotFound:          {Code: ErrChatNotFound, Message: "Chat not found.", Status: http.StatusNotFound},
	ErrNotChatMember:         {Code: ErrNotChatMember, Message: "You are not a member of this chat.", Status: http.StatusForbidden},
	ErrNotGroupChat:          {Code: ErrNotGroupChat, Message: "This operation requires a group chat.", Status: http.StatusBadRequest},
	ErrGroupTooSmall:         {Code: ErrGroupTooSmall, Message: "A group chat needs at least %d members besides you.", Status: http.StatusBadRequest},
	ErrMessageContentEmpty:   {Code: ErrMessageContentEmpty, Message: "Message content must not be empty.", Status: http.StatusBadRequest},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message content exceeds the maximum length.", Status: http.StatusBadRequest},

	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Authentication required.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid email or password.", Status: http.StatusUnauthorized},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "A user with this email already exists.", Status: http.StatusConflict},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrInvalidEmail:       {Code: ErrInvalidEmail, Message: "Email address is not valid.", Status: http.StatusBadRequest},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Password must be between %d and %d characters.", Status: http.StatusBadRequest},

	ErrFileTypeInvalid:  {Code: ErrFileTypeInvalid, Message: "File type is not allowed for avatars.", Status: http.StatusBadRequest},
	ErrFileSizeTooLarge: {Code: ErrFileSizeTooLarge, Message: "File exceeds the maximum allowed size of %d MB.", Status: http.StatusBadRequest},

	ErrUnknown: {Code: ErrUnknown, Message: "An internal server error occurred.", Status: http.StatusInternalServerError},
}
