package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "c2VjcmV0LXNlY3JldC1zZWNyZXQtc2VjcmV0ISE=")
	t.Setenv("DATABASE_DSN", "postgres://localhost/app?sslmode=disable")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, "bearer", cfg.TokenTransport)
	assert.Contains(t, cfg.PublicPaths, "/health")
	assert.Contains(t, cfg.PublicPaths, "/oauth/*")
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_DSN", "postgres://localhost/app")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TRANSPORT", "header-and-cookie")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvertedTTLs(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_TTL", "24h")
	t.Setenv("REFRESH_TOKEN_TTL", "1h")

	_, err := Load()
	require.Error(t, err)
}

func TestProviderEnablement(t *testing.T) {
	setRequired(t)
	t.Setenv("KAKAO_CLIENT_ID", "kid")
	t.Setenv("KAKAO_REDIRECT_URL", "https://app/oauth/callback/kakao")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.GoogleEnabled())
	assert.True(t, cfg.KakaoEnabled())
	assert.False(t, cfg.NaverEnabled())
}
