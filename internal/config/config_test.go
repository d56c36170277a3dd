// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("UPSTREAM_API_URL", "http://api.local/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local, http://b.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://api.local", cfg.Upstream.BaseURL)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, "pt_BR", cfg.I18n.DefaultLocale)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Frontend.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout())
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT:         JWTConfig{SecretKey: "your-secret-key-change-in-production"},
		Session:     SessionConfig{Store: "memory", SealKey: "k"},
		Upstream:    UpstreamConfig{BaseURL: "http://api"},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "real-secret"
	assert.NoError(t, cfg.Validate())

	cfg.Session.SealKey = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	cfg := &Config{
		JWT:      JWTConfig{SecretKey: "x"},
		Session:  SessionConfig{Store: "redis"},
		Upstream: UpstreamConfig{BaseURL: "http://api"},
	}
	assert.Error(t, cfg.Validate())
}

func TestUpstreamTimeoutNeverZero(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout())

	cfg.Upstream.Timeout = 5
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout())
}
