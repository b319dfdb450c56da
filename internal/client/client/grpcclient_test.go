package client

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/dmitrijs2005/clientbook/internal/api"
	"github.com/dmitrijs2005/clientbook/internal/common"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// fakeServer accepts only the access token "fresh"; "old" is expired.
type fakeServer struct {
	api.UnimplementedLedgerServer

	mu           sync.Mutex
	refreshCalls int
	refreshErr   error
	LastSignOut  string
	LastEntry    *api.InsertEntryRequest
	events       []models.ChangeEvent
}

func tokenFrom(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func checkToken(ctx context.Context) error {
	switch tokenFrom(ctx) {
	case "fresh":
		return nil
	case "old":
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case "":
		return status.Error(codes.Unauthenticated, "missing token")
	default:
		return status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}
}

func (f *fakeServer) SignIn(_ context.Context, req *api.SignInRequest) (*api.AuthResponse, error) {
	if req.Password != "pw" {
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidCredentials.Error())
	}
	return &api.AuthResponse{AccessToken: "old", RefreshToken: "r1", User: models.User{ID: "u1", Email: req.Email}}, nil
}

func (f *fakeServer) RefreshToken(_ context.Context, req *api.RefreshTokenRequest) (*api.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &api.AuthResponse{AccessToken: "fresh", RefreshToken: "r2", User: models.User{ID: "u1"}}, nil
}

func (f *fakeServer) SignOut(_ context.Context, req *api.SignOutRequest) (*api.Empty, error) {
	f.LastSignOut = req.RefreshToken
	return &api.Empty{}, nil
}

func (f *fakeServer) ListClients(ctx context.Context, _ *api.Empty) (*api.ClientList, error) {
	if err := checkToken(ctx); err != nil {
		return nil, err
	}
	return &api.ClientList{Clients: []models.Client{{ID: "c1", Name: "Acme"}}}, nil
}

func (f *fakeServer) InsertEntry(ctx context.Context, req *api.InsertEntryRequest) (*api.EntryResponse, error) {
	if err := checkToken(ctx); err != nil {
		return nil, err
	}
	f.LastEntry = req
	return &api.EntryResponse{Entry: models.Entry{ID: "e1", ClientID: req.ClientID, Cost: req.Cost}}, nil
}

func (f *fakeServer) DeleteClient(ctx context.Context, _ *api.IDRequest) (*api.Empty, error) {
	if err := checkToken(ctx); err != nil {
		return nil, err
	}
	return nil, status.Error(codes.FailedPrecondition, "conflict: client has 2 entries")
}

func (f *fakeServer) Subscribe(req *api.SubscribeRequest, stream api.ChangeStream) error {
	if err := checkToken(stream.Context()); err != nil {
		return err
	}
	for _, ev := range f.events {
		ev := ev
		if ev.Table == req.Table {
			if err := stream.Send(&ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func newTestClient(t *testing.T, f *fakeServer) *GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	api.RegisterLedgerServer(srv, f)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGRPCClient_SignInAndRefreshOnExpiry(t *testing.T) {
	f := &fakeServer{}
	c := newTestClient(t, f)
	ctx := context.Background()

	var refreshed []Session
	c.OnTokensRefreshed(func(s Session) { refreshed = append(refreshed, s) })

	sess, err := c.SignIn(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.User.ID)

	items, err := c.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, 1, f.refreshCalls)
	require.Len(t, refreshed, 1)
	assert.Equal(t, "r2", refreshed[0].RefreshToken)

	access, refresh := c.tokens()
	assert.Equal(t, "fresh", access)
	assert.Equal(t, "r2", refresh)

	_, err = c.ListClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.refreshCalls)
}

func TestGRPCClient_RefreshFailureReturnsOriginalError(t *testing.T) {
	f := &fakeServer{refreshErr: status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())}
	c := newTestClient(t, f)
	ctx := context.Background()

	_, err := c.SignIn(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	_, err = c.ListClients(ctx)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGRPCClient_SignInWrongPassword(t *testing.T) {
	c := newTestClient(t, &fakeServer{})

	_, err := c.SignIn(context.Background(), "a@b.c", "nope")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestGRPCClient_InsertEntryAndErrors(t *testing.T) {
	f := &fakeServer{}
	c := newTestClient(t, f)
	ctx := context.Background()
	c.adopt("fresh", "r")

	e, err := c.InsertEntry(ctx, "c1", "work", decimal.RequireFromString("99.99"))
	require.NoError(t, err)
	assert.True(t, e.Cost.Equal(decimal.RequireFromString("99.99")))
	assert.Equal(t, "c1", f.LastEntry.ClientID)

	err = c.DeleteClient(ctx, "c1")
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "conflict: client has 2 entries", err.Error())

	c.ClearTokens()
	_, err = c.ListClients(ctx)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestGRPCClient_SignOut(t *testing.T) {
	f := &fakeServer{}
	c := newTestClient(t, f)
	c.adopt("fresh", "r9")

	require.NoError(t, c.SignOut(context.Background()))
	assert.Equal(t, "r9", f.LastSignOut)

	access, refresh := c.tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)

	f.LastSignOut = ""
	require.NoError(t, c.SignOut(context.Background()))
	assert.Empty(t, f.LastSignOut)
}

func TestGRPCClient_Subscribe(t *testing.T) {
	f := &fakeServer{events: []models.ChangeEvent{
		models.ClientEvent(models.OpInsert, models.Client{ID: "c1"}),
		models.EntryEvent(models.OpInsert, models.Entry{ID: "e1"}),
		models.ClientEvent(models.OpDelete, models.Client{ID: "c1"}),
	}}
	c := newTestClient(t, f)
	c.adopt("fresh", "r")

	stream, err := c.Subscribe(context.Background(), models.TableClients)
	require.NoError(t, err)

	ev, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, models.OpInsert, ev.Operation)
	ev, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, models.OpDelete, ev.Operation)
	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestGRPCClient_SubscribeExpiredRefreshesForNextAttempt(t *testing.T) {
	f := &fakeServer{}
	c := newTestClient(t, f)
	c.adopt("old", "r1")

	stream, err := c.Subscribe(context.Background(), models.TableEntries)
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.ErrorIs(t, err, common.ErrTokenExpired)
	assert.Equal(t, 1, f.refreshCalls)

	stream, err = c.Subscribe(context.Background(), models.TableEntries)
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
		msg  string
	}{
		{"nil", nil, nil, ""},
		{"eof", io.EOF, io.EOF, "EOF"},
		{"plain", errors.New("x"), nil, "x"},
		{"expired", status.Error(codes.Unauthenticated, "token expired"), common.ErrTokenExpired, "token expired"},
		{"unauth", status.Error(codes.Unauthenticated, "missing token"), common.ErrorUnauthorized, "unauthorized: missing token"},
		{"unavailable", status.Error(codes.Unavailable, ""), common.ErrUnavailable, "service unavailable"},
		{"not found", status.Error(codes.NotFound, "client c1: not found"), common.ErrorNotFound, "not found: client c1: not found"},
		{"validation", status.Error(codes.InvalidArgument, "validation error: cost must not be negative"), common.ErrValidation, "validation error: cost must not be negative"},
		{"exists", status.Error(codes.AlreadyExists, "already exists: email already registered"), common.ErrAlreadyExists, "already exists: email already registered"},
		{"internal", status.Error(codes.Internal, "internal error"), nil, "rpc error: rpc error: code = Internal desc = internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.in)
			if tt.in == nil {
				assert.NoError(t, got)
				return
			}
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
			}
			assert.Equal(t, tt.msg, got.Error())
		})
	}
}
