package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8000", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Equal(t, "/api/v1/users", c.RoutePrefix)
	assert.Equal(t, 24*time.Hour, c.AccessTokenTTL)
	assert.Equal(t, 240*time.Hour, c.RefreshTokenTTL)
	assert.Equal(t, int64(16<<10), c.JSONBodyLimit)
	assert.Equal(t, "20-M", c.RateLimit)
	assert.Equal(t, "json", c.LogFormat)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env", "does-not-exist.env"}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want.HTTPAddr, c.HTTPAddr)
	assert.Equal(t, want.RoutePrefix, c.RoutePrefix)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults ok", func(*Config) {}, ""},
		{"empty access secret", func(c *Config) { c.AccessTokenSecret = "" }, "access token secret is empty"},
		{"empty refresh secret", func(c *Config) { c.RefreshTokenSecret = "" }, "refresh token secret is empty"},
		{"same secrets", func(c *Config) { c.RefreshTokenSecret = c.AccessTokenSecret }, "must differ"},
		{"zero access ttl", func(c *Config) { c.AccessTokenTTL = 0 }, "access token ttl must be positive"},
		{"refresh not longer", func(c *Config) { c.RefreshTokenTTL = c.AccessTokenTTL }, "must exceed"},
		{"empty dsn", func(c *Config) { c.DatabaseDSN = "" }, "database dsn is empty"},
		{"empty bucket", func(c *Config) { c.S3Bucket = "" }, "s3 bucket is empty"},
		{"bad limits", func(c *Config) { c.JSONBodyLimit = 0 }, "body limits"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tc.mutate(&c)

			err := c.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
