package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("CONFIG", "")

	t.Run("overlays present fields", func(t *testing.T) {
		path := writeTempJSON(t, `{
			"server_endpoint_addr": "example:9000",
			"request_timeout": "3s",
			"session_db": "/tmp/s.db",
			"log_level": "debug"
		}`)
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{ExportDir: "keep"}
		parseJson(cfg)

		assert.Equal(t, "example:9000", cfg.ServerEndpointAddr)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "/tmp/s.db", cfg.SessionDB)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "keep", cfg.ExportDir)
	})

	t.Run("no config flag is a no-op", func(t *testing.T) {
		os.Args = []string{"testbin"}
		cfg := &Config{ServerEndpointAddr: "keep"}
		parseJson(cfg)
		assert.Equal(t, "keep", cfg.ServerEndpointAddr)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("bad json panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", writeTempJSON(t, "{")}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}
