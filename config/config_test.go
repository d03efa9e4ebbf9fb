package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("STORE_DRIVER", "")

	cfg := Load()

	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "soon")
	t.Setenv("REDIS_DB", "one")
	t.Setenv("MAIL_SEND_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.MailSendEnabled)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:         "development",
			StoreDriver: "memory",
			JWTSecret:   "s",
			AccessTTL:   time.Minute,
			RefreshTTL:  time.Hour,
		}
	}

	testCases := []struct {
		description string
		mutate      func(c *Config)
		wantErr     bool
	}{
		{"valid development config", func(c *Config) {}, false},
		{"refresh not longer than access", func(c *Config) { c.RefreshTTL = c.AccessTTL }, true},
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }, true},
		{"empty secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"dev secret in production", func(c *Config) { c.Env = "production"; c.JWTSecret = devJWTSecret }, true},
		{"short secret in production", func(c *Config) { c.Env = "production"; c.JWTSecret = "short" }, true},
		{"long secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "0123456789abcdef0123456789abcdef"
		}, false},
		{"unknown store driver", func(c *Config) { c.StoreDriver = "firestore" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSplitLists(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://a.test, ,http://b.test ", ElasticsearchAddrs: ""}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Empty(t, cfg.ESAddrs())
}
