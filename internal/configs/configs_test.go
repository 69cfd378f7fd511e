package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("S3_BUCKET_NAME", "avatars")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_ACCESS_KEY_ID", "key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	req := require.New(t)
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	req.NoError(err)
	req.Equal("development", cfg.Environment)
	req.Equal(8080, cfg.Port)
	req.Equal(60*time.Second, cfg.WSPongWait)
	req.NotEmpty(cfg.JWTSecret)
	req.NotEmpty(cfg.DatabaseDSN)
}

func TestLoadConfigPongWait(t *testing.T) {
	req := require.New(t)
	setRequiredEnv(t)

	t.Setenv("WS_PONG_WAIT", "90s")
	cfg, err := LoadConfig()
	req.NoError(err)
	req.Equal(90*time.Second, cfg.WSPongWait)

	t.Setenv("WS_PONG_WAIT", "bogus")
	_, err = LoadConfig()
	req.Error(err)

	t.Setenv("WS_PONG_WAIT", "10ms")
	_, err = LoadConfig()
	req.Error(err)
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	req := require.New(t)
	setRequiredEnv(t)

	t.Setenv("PORT", "80")
	_, err := LoadConfig()
	req.Error(err)

	t.Setenv("PORT", "not-a-number")
	_, err = LoadConfig()
	req.Error(err)
}

func TestLoadConfigProductionRequiresSecrets(t *testing.T) {
	req := require.New(t)
	setRequiredEnv(t)

	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	req.Error(err)
}
