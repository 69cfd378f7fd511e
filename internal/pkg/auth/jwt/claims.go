package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims carried by a session token.
type Payload struct {
	// StandardClaims embeds the JWT standard fields (Exp, Iat, Iss)
	// used for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the user's unique identifier.
	ID string `json:"id"`

	// Name is the user's display name, echoed in payloads so clients
	// can render without an extra lookup.
	Name string `json:"name"`

	// Email is the account email the token was issued for.
	Email string `json:"email"`
}
