package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)

	payload := &Payload{
		ID:    "user-1",
		Name:  "Ada",
		Email: "ada@example.com",
	}

	tokenString, err := GenerateToken(payload, "secret", time.Minute)
	req.NoError(err)

	parsed, err := ParseToken(tokenString, "secret")
	req.NoError(err)
	req.Equal("user-1", parsed.ID)
	req.Equal("Ada", parsed.Name)
	req.Equal("ada@example.com", parsed.Email)
	req.Equal(TokenIssuer, parsed.Issuer)
}

func TestParseTokenWrongSecret(t *testing.T) {
	req := require.New(t)

	tokenString, err := GenerateToken(&Payload{ID: "user-1"}, "secret", time.Minute)
	req.NoError(err)

	_, err = ParseToken(tokenString, "other-secret")
	req.Error(err)
}

func TestParseTokenExpired(t *testing.T) {
	req := require.New(t)

	tokenString, err := GenerateToken(&Payload{ID: "user-1"}, "secret", -time.Minute)
	req.NoError(err)

	_, err = ParseToken(tokenString, "secret")
	req.Error(err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", "secret")
	require.Error(t, err)
}
