package client

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/clientbook/internal/api"
	"github.com/dmitrijs2005/clientbook/internal/common"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *api.LedgerClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onRefresh    func(Session)

	// refreshMu serializes refreshes so concurrent expiries trigger one call.
	refreshMu sync.Mutex
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) adopt(access, refresh string) {
	s.mu.Lock()
	s.accessToken, s.refreshToken = access, refresh
	s.mu.Unlock()
}

func (s *GRPCClient) ClearTokens() {
	s.adopt("", "")
}

func (s *GRPCClient) OnTokensRefreshed(fn func(Session)) {
	s.mu.Lock()
	s.onRefresh = fn
	s.mu.Unlock()
}

// refresh replaces an expired access token. If another call already
// replaced stale, the current token is returned without a round trip.
func (s *GRPCClient) refresh(ctx context.Context, stale string) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	access, refresh := s.tokens()
	if access != stale {
		return access, nil
	}
	if refresh == "" {
		return "", common.ErrTokenExpired
	}

	resp, err := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		return "", mapError(err)
	}
	s.adopt(resp.AccessToken, resp.RefreshToken)

	s.mu.Lock()
	fn := s.onRefresh
	s.mu.Unlock()
	if fn != nil {
		fn(Session{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken, User: resp.User})
	}
	return resp.AccessToken, nil
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, public := api.PublicMethods[method]; public {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	access, _ := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !errors.Is(mapError(err), common.ErrTokenExpired) {
		return err
	}

	access, rerr := s.refresh(ctx, access)
	if rerr != nil {
		return err
	}

	// tokens refreshed, retrying once with the new access token
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	access, _ := s.tokens()
	return streamer(withAccessToken(ctx, access), desc, cc, method, opts...)
}

// NewGRPCClient creates a client for endpointURL. Extra dial options are
// appended to the defaults, e.g. a custom dialer in tests.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(extra ...grpc.DialOption) error {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithChainStreamInterceptor(s.streamAccessTokenInterceptor),
	}
	conn, err := grpc.NewClient(s.endpointURL, append(opts, extra...)...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewLedgerClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) session(resp *api.AuthResponse) *Session {
	s.adopt(resp.AccessToken, resp.RefreshToken)
	return &Session{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken, User: resp.User}
}

func (s *GRPCClient) Register(ctx context.Context, email, password string) (*Session, error) {
	resp, err := s.client.Register(ctx, &api.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	return s.session(resp), nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	resp, err := s.client.SignIn(ctx, &api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	return s.session(resp), nil
}

func (s *GRPCClient) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	resp, err := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, mapError(err)
	}
	return s.session(resp), nil
}

// SignOut revokes the refresh token on the server and forgets both tokens.
// The local tokens are dropped even when the server call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refresh := s.tokens()
	s.ClearTokens()
	if refresh == "" {
		return nil
	}
	if _, err := s.client.SignOut(ctx, &api.SignOutRequest{RefreshToken: refresh}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListClients(ctx context.Context) ([]models.Client, error) {
	resp, err := s.client.ListClients(ctx, &api.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Clients, nil
}

func (s *GRPCClient) InsertClient(ctx context.Context, name string) (*models.Client, error) {
	resp, err := s.client.InsertClient(ctx, &api.InsertClientRequest{Name: name})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.Client, nil
}

func (s *GRPCClient) UpdateClient(ctx context.Context, id, name string) (*models.Client, error) {
	resp, err := s.client.UpdateClient(ctx, &api.UpdateClientRequest{ID: id, Name: name})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.Client, nil
}

func (s *GRPCClient) DeleteClient(ctx context.Context, id string) error {
	if _, err := s.client.DeleteClient(ctx, &api.IDRequest{ID: id}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListEntries(ctx context.Context) ([]models.Entry, error) {
	resp, err := s.client.ListEntries(ctx, &api.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Entries, nil
}

func (s *GRPCClient) InsertEntry(ctx context.Context, clientID, description string, cost decimal.Decimal) (*models.Entry, error) {
	resp, err := s.client.InsertEntry(ctx, &api.InsertEntryRequest{ClientID: clientID, Description: description, Cost: cost})
	if err != nil {
		return nil, mapError(err)
	}
	return &resp.Entry, nil
}

func (s *GRPCClient) DeleteEntry(ctx context.Context, id string) error {
	if _, err := s.client.DeleteEntry(ctx, &api.IDRequest{ID: id}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *GRPCClient) DeleteClientEntries(ctx context.Context, clientID string) (int, error) {
	resp, err := s.client.DeleteClientEntries(ctx, &api.DeleteClientEntriesRequest{ClientID: clientID})
	if err != nil {
		return 0, mapError(err)
	}
	return resp.Count, nil
}

func (s *GRPCClient) CreateExportUpload(ctx context.Context, filename, contentType string) (*api.ExportUploadResponse, error) {
	resp, err := s.client.CreateExportUpload(ctx, &api.ExportUploadRequest{Filename: filename, ContentType: contentType})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

type changeStream struct {
	owner  *GRPCClient
	stream api.ChangeStreamClient
	token  string
	ctx    context.Context
}

// Recv maps stream errors. An expired token is refreshed before the error
// is returned, so the caller's next Subscribe succeeds.
func (c *changeStream) Recv() (*models.ChangeEvent, error) {
	ev, err := c.stream.Recv()
	if err == nil {
		return ev, nil
	}
	err = mapError(err)
	if errors.Is(err, common.ErrTokenExpired) {
		_, _ = c.owner.refresh(c.ctx, c.token)
	}
	return nil, err
}

// Subscribe opens the change stream for table. Cancel ctx to end it.
func (s *GRPCClient) Subscribe(ctx context.Context, table models.Table) (ChangeStream, error) {
	access, _ := s.tokens()
	stream, err := s.client.Subscribe(ctx, &api.SubscribeRequest{Table: table})
	if err != nil {
		return nil, mapError(err)
	}
	return &changeStream{owner: s, stream: stream, token: access, ctx: ctx}, nil
}
