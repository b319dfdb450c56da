package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("CONFIG", "")

	path := writeTempJSON(t, map[string]any{
		"endpoint_addr":                   "example:9000",
		"database_driver":                 "sqlite",
		"database_dsn":                    "clientbook.db",
		"secret_key":                      "s3cr3t",
		"access_token_validity_duration":  "1m",
		"refresh_token_validity_duration": "3h",
		"metrics_addr":                    ":9100",
		"otel_endpoint":                   "http://collector:4318",
		"feed_buffer_size":                16,
		"s3_bucket":                       "bucket",
		"export_url_ttl":                  "30m",
	})

	t.Run("overlays present fields", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}
		cfg := &Config{S3Region: "keep-me"}
		parseJson(cfg)

		assert.Equal(t, "example:9000", cfg.EndpointAddr)
		assert.Equal(t, "sqlite", cfg.DatabaseDriver)
		assert.Equal(t, "clientbook.db", cfg.DatabaseDSN)
		assert.Equal(t, "s3cr3t", cfg.SecretKey)
		assert.Equal(t, time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 3*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, ":9100", cfg.MetricsAddr)
		assert.Equal(t, "http://collector:4318", cfg.OTelEndpoint)
		assert.Equal(t, 16, cfg.FeedBufferSize)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, 30*time.Minute, cfg.ExportURLTTL)
		assert.Equal(t, "keep-me", cfg.S3Region)
	})

	t.Run("no config path leaves config alone", func(t *testing.T) {
		os.Args = []string{"testbin"}
		cfg := &Config{EndpointAddr: "defaults:1234", ExportURLTTL: time.Second}
		parseJson(cfg)
		assert.Equal(t, "defaults:1234", cfg.EndpointAddr)
		assert.Equal(t, time.Second, cfg.ExportURLTTL)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ nope`), 0o600))
		os.Args = []string{"testbin", "-c", bad}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "absent.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
