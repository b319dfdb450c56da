package api

import (
	"context"

	"github.com/dmitrijs2005/clientbook/internal/models"
	"google.golang.org/grpc"
)

// LedgerClient is the client stub for the Ledger service. Every call is
// sent with the JSON content subtype.
type LedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerClient(cc grpc.ClientConnInterface) *LedgerClient {
	return &LedgerClient{cc: cc}
}

func callOpts(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LedgerClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *LedgerClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *LedgerClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *LedgerClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSignOut, in, opts)
}

func (c *LedgerClient) ListClients(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ClientList, error) {
	return invoke[ClientList](ctx, c.cc, MethodListClients, in, opts)
}

func (c *LedgerClient) InsertClient(ctx context.Context, in *InsertClientRequest, opts ...grpc.CallOption) (*ClientResponse, error) {
	return invoke[ClientResponse](ctx, c.cc, MethodInsertClient, in, opts)
}

func (c *LedgerClient) UpdateClient(ctx context.Context, in *UpdateClientRequest, opts ...grpc.CallOption) (*ClientResponse, error) {
	return invoke[ClientResponse](ctx, c.cc, MethodUpdateClient, in, opts)
}

func (c *LedgerClient) DeleteClient(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteClient, in, opts)
}

func (c *LedgerClient) ListEntries(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*EntryList, error) {
	return invoke[EntryList](ctx, c.cc, MethodListEntries, in, opts)
}

func (c *LedgerClient) InsertEntry(ctx context.Context, in *InsertEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c.cc, MethodInsertEntry, in, opts)
}

func (c *LedgerClient) DeleteEntry(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteEntry, in, opts)
}

func (c *LedgerClient) DeleteClientEntries(ctx context.Context, in *DeleteClientEntriesRequest, opts ...grpc.CallOption) (*DeletedResponse, error) {
	return invoke[DeletedResponse](ctx, c.cc, MethodDeleteClientEntries, in, opts)
}

func (c *LedgerClient) CreateExportUpload(ctx context.Context, in *ExportUploadRequest, opts ...grpc.CallOption) (*ExportUploadResponse, error) {
	return invoke[ExportUploadResponse](ctx, c.cc, MethodCreateExportUpload, in, opts)
}

// ChangeStreamClient is the client side of a Subscribe call.
type ChangeStreamClient interface {
	Recv() (*models.ChangeEvent, error)
}

type changeStreamClient struct {
	grpc.ClientStream
}

func (s *changeStreamClient) Recv() (*models.ChangeEvent, error) {
	ev := new(models.ChangeEvent)
	if err := s.ClientStream.RecvMsg(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Subscribe opens a change stream for one table. Cancel ctx to end it.
// It returns once the server has registered the subscription, so changes
// committed after that are delivered. Errors surface from Recv.
func (c *LedgerClient) Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (ChangeStreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &LedgerServiceDesc.Streams[0], FullMethod(MethodSubscribe), callOpts(opts)...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	if _, err := stream.Header(); err != nil {
		return nil, err
	}
	return &changeStreamClient{stream}, nil
}
