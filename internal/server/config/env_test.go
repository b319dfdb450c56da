package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withDotenv(t *testing.T, content string) {
	t.Helper()
	orig := dotenvFile
	t.Cleanup(func() { dotenvFile = orig })
	dotenvFile = filepath.Join(t.TempDir(), ".env")
	if content != "" {
		require.NoError(t, os.WriteFile(dotenvFile, []byte(content), 0o600))
	}
}

func Test_parseEnv_ProcessEnvironment(t *testing.T) {
	withDotenv(t, "")
	t.Setenv("ADDRESS", ":6000")
	t.Setenv("ACCESS_TOKEN_TTL", "2m")
	t.Setenv("FEED_BUFFER_SIZE", "8")

	cfg := &Config{EndpointAddr: ":1", SecretKey: "keep"}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, ":6000", cfg.EndpointAddr)
	assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 8, cfg.FeedBufferSize)
	assert.Equal(t, "keep", cfg.SecretKey)
}

func Test_parseEnv_DotenvFile(t *testing.T) {
	withDotenv(t, "S3_BUCKET=from-dotenv\nOTEL_ENDPOINT=http://otel:4318\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("S3_BUCKET")
		_ = os.Unsetenv("OTEL_ENDPOINT")
	})

	cfg := &Config{}
	require.NoError(t, parseEnv(cfg))
	assert.Equal(t, "from-dotenv", cfg.S3Bucket)
	assert.Equal(t, "http://otel:4318", cfg.OTelEndpoint)
}

func Test_parseEnv_BadValue(t *testing.T) {
	withDotenv(t, "")
	t.Setenv("FEED_BUFFER_SIZE", "many")

	err := parseEnv(&Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}
