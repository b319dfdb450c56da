// Package grpc exposes the ledger, session and export services over gRPC
// using the JSON codec registered by package api.
package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/clientbook/internal/api"
	"github.com/dmitrijs2005/clientbook/internal/logging"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/dmitrijs2005/clientbook/internal/server/feed"
	"github.com/dmitrijs2005/clientbook/internal/server/metrics"
	"github.com/dmitrijs2005/clientbook/internal/server/services"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type UserService interface {
	Register(ctx context.Context, email, password string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
}

type LedgerService interface {
	ListClients(ctx context.Context, ownerID string) ([]models.Client, error)
	InsertClient(ctx context.Context, ownerID, name string) (*models.Client, error)
	UpdateClient(ctx context.Context, ownerID, id, name string) (*models.Client, error)
	DeleteClient(ctx context.Context, ownerID, id string) error
	ListEntries(ctx context.Context, ownerID string) ([]models.Entry, error)
	InsertEntry(ctx context.Context, ownerID, clientID, description string, cost decimal.Decimal) (*models.Entry, error)
	DeleteEntry(ctx context.Context, ownerID, id string) error
	DeleteClientEntries(ctx context.Context, ownerID, clientID string) (int, error)
}

type ExportService interface {
	CreateUpload(ctx context.Context, ownerID, filename, contentType string) (*services.ExportUpload, error)
}

type Feed interface {
	Subscribe(ownerID string, table models.Table) *feed.Subscription
}

// Services groups the collaborators the server dispatches to.
type Services struct {
	Users   UserService
	Ledger  LedgerService
	Exports ExportService
	Feed    Feed
}

type GRPCServer struct {
	api.UnimplementedLedgerServer
	address   string
	svc       Services
	metrics   *metrics.Metrics
	logger    logging.Logger
	jwtSecret []byte
	health    *health.Server
	stopping  chan struct{}
}

func NewGRPCServer(a string, l logging.Logger, svc Services, m *metrics.Metrics, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		svc:       svc,
		metrics:   m,
		logger:    l.With("module", "grpc_server"),
		jwtSecret: []byte(secretKey),
		health:    health.NewServer(),
		stopping:  make(chan struct{}),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	unary := []grpc.UnaryServerInterceptor{}
	stream := []grpc.StreamServerInterceptor{}
	if s.metrics != nil {
		unary = append(unary, s.metrics.UnaryServerInterceptor())
		stream = append(stream, s.metrics.StreamServerInterceptor())
	}
	unary = append(unary, s.accessTokenInterceptor)
	stream = append(stream, s.streamAccessTokenInterceptor)

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)

	api.RegisterLedgerServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then reports
// NOT_SERVING, ends open feeds and stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		close(s.stopping)
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
