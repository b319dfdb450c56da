package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		start       Config
		expected    Config
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-D", "sqlite", "-d", "db", "-k", "secret",
				"-t", "1m", "-r", "3h", "-m", ":9100", "-o", "http://otel", "-l", "debug",
				"-b", "bucket", "-e", "http://s3",
			},
			expected: Config{
				EndpointAddr:                 "127.0.0.1:9090",
				DatabaseDriver:               "sqlite",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				AccessTokenValidityDuration:  time.Minute,
				RefreshTokenValidityDuration: 3 * time.Hour,
				MetricsAddr:                  ":9100",
				OTelEndpoint:                 "http://otel",
				LogLevel:                     "debug",
				S3Bucket:                     "bucket",
				S3BaseEndpoint:               "http://s3",
			},
		},
		{
			name:     "config flag and unknown flags ignored",
			args:     []string{"-c", "cfg.json", "-x", "1", "-a", ":1"},
			start:    Config{SecretKey: "keep"},
			expected: Config{EndpointAddr: ":1", SecretKey: "keep"},
		},
		{
			name:        "bad duration panics",
			args:        []string{"-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.start
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(&cfg, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(&cfg, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
