package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/clientbook/internal/server/config"
	"github.com/dmitrijs2005/clientbook/internal/server/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(name string) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.EndpointAddr = "127.0.0.1:0"
	cfg.MetricsAddr = ""
	cfg.DatabaseDriver = "sqlite"
	cfg.DatabaseDSN = "file:" + name + "?mode=memory&cache=shared"
	cfg.LogLevel = "error"
	return cfg
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), sqliteConfig("app_run"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestNewApp_Errors(t *testing.T) {
	cfg := sqliteConfig("app_bad_driver")
	cfg.DatabaseDriver = "oracle"
	_, err := NewApp(context.Background(), cfg)
	assert.Error(t, err)

	orig := setupTracing
	t.Cleanup(func() { setupTracing = orig })
	setupTracing = func(context.Context, string, string) (telemetry.ShutdownFunc, error) {
		return nil, errors.New("otel down")
	}
	_, err = NewApp(context.Background(), sqliteConfig("app_bad_tracing"))
	assert.ErrorContains(t, err, "otel down")
}

func TestApp_RunReturnsListenError(t *testing.T) {
	cfg := sqliteConfig("app_bad_addr")
	cfg.EndpointAddr = "127.0.0.1:99999"
	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)

	assert.Error(t, app.Run(context.Background()))
}
