/*
Package randx generates unique identifiers used across the server.
*/
package randx

import (
	"github.com/google/uuid"
)

// ConnID generates a unique identifier for a live connection.
func ConnID() string {
	return uuid.New().String()
}

// MessageID generates a unique identifier for a chat message record.
func MessageID() string {
	return uuid.New().String()
}
