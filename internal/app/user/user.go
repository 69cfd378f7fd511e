/*
Package user defines the client-facing representation of a user.

It is the sanitized shape handed out in REST responses and embedded in
chat message payloads; the password hash never leaves the db package.
*/
package user

// User is the public identity of a chat participant.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`

	// Name is the display name shown in chats.
	Name string `json:"name"`

	// Email is the account email address.
	Email string `json:"email"`

	// AvatarURL points at the user's avatar in object storage, if set.
	AvatarURL string `json:"avatarUrl,omitempty"`
}
