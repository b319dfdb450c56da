// Package server wires the clientbook server together: configuration,
// storage and migrations, the change feed, gRPC, metrics and tracing.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/clientbook/internal/dbx"
	"github.com/dmitrijs2005/clientbook/internal/logging"
	"github.com/dmitrijs2005/clientbook/internal/server/config"
	"github.com/dmitrijs2005/clientbook/internal/server/feed"
	"github.com/dmitrijs2005/clientbook/internal/server/metrics"
	"github.com/dmitrijs2005/clientbook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clientbook/internal/server/services"
	"github.com/dmitrijs2005/clientbook/internal/server/telemetry"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/clientbook/internal/server/grpc"
)

const serviceName = "clientbook-server"

var setupTracing = telemetry.Setup

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	metrics         *metrics.Metrics
	server          *gs.GRPCServer
	shutdownTracing telemetry.ShutdownFunc
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", c.LogLevel)

	dialect, err := dbx.ParseDialect(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, dialect, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewSQLRepositoryManager(dialect)
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	shutdown, err := setupTracing(ctx, serviceName, c.OTelEndpoint)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	m := metrics.New()
	broker := feed.NewBroker(c.FeedBufferSize, logger, m)

	svc := gs.Services{
		Users:   services.NewUserService(db, rm, c),
		Ledger:  services.NewLedgerService(db, rm, broker, logger),
		Exports: services.NewExportService(c),
		Feed:    broker,
	}

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		metrics:         m,
		server:          gs.NewGRPCServer(c.EndpointAddr, logger, svc, m, c.SecretKey),
		shutdownTracing: shutdown,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves gRPC and metrics until ctx is done, a signal arrives or one
// of the servers fails. It releases every resource before returning.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.server.Run(ctx)
	})

	if app.config.MetricsAddr != "" {
		g.Go(func() error {
			return app.metrics.Serve(ctx, app.config.MetricsAddr, app.logger)
		})
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}

	if err := app.shutdownTracing(context.Background()); err != nil {
		app.logger.Warn(ctx, "tracing shutdown", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
