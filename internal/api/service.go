package api

import (
	"context"

	"github.com/dmitrijs2005/clientbook/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const ServiceName = "clientbook.v1.Ledger"

const (
	MethodRegister            = "Register"
	MethodSignIn              = "SignIn"
	MethodRefreshToken        = "RefreshToken"
	MethodSignOut             = "SignOut"
	MethodListClients         = "ListClients"
	MethodInsertClient        = "InsertClient"
	MethodUpdateClient        = "UpdateClient"
	MethodDeleteClient        = "DeleteClient"
	MethodListEntries         = "ListEntries"
	MethodInsertEntry         = "InsertEntry"
	MethodDeleteEntry         = "DeleteEntry"
	MethodDeleteClientEntries = "DeleteClientEntries"
	MethodCreateExportUpload  = "CreateExportUpload"
	MethodSubscribe           = "Subscribe"
)

// FullMethod returns the gRPC full method name, e.g. "/clientbook.v1.Ledger/SignIn".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// PublicMethods lists the calls that do not require an access token.
var PublicMethods = map[string]struct{}{
	FullMethod(MethodRegister):     {},
	FullMethod(MethodSignIn):       {},
	FullMethod(MethodRefreshToken): {},
	FullMethod(MethodSignOut):      {},
}

// LedgerServer is the server API for the Ledger service.
type LedgerServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error)
	SignOut(context.Context, *SignOutRequest) (*Empty, error)

	ListClients(context.Context, *Empty) (*ClientList, error)
	InsertClient(context.Context, *InsertClientRequest) (*ClientResponse, error)
	UpdateClient(context.Context, *UpdateClientRequest) (*ClientResponse, error)
	DeleteClient(context.Context, *IDRequest) (*Empty, error)

	ListEntries(context.Context, *Empty) (*EntryList, error)
	InsertEntry(context.Context, *InsertEntryRequest) (*EntryResponse, error)
	DeleteEntry(context.Context, *IDRequest) (*Empty, error)
	DeleteClientEntries(context.Context, *DeleteClientEntriesRequest) (*DeletedResponse, error)

	CreateExportUpload(context.Context, *ExportUploadRequest) (*ExportUploadResponse, error)

	Subscribe(*SubscribeRequest, ChangeStream) error
}

// ChangeStream is the server side of a Subscribe call. The handler sends
// the header once the subscription is live; clients wait for it.
type ChangeStream interface {
	Send(*models.ChangeEvent) error
	SendHeader(metadata.MD) error
	Context() context.Context
}

// UnimplementedLedgerServer answers every call with codes.Unimplemented.
// Embed it to implement only part of LedgerServer.
type UnimplementedLedgerServer struct{}

func unimplemented(m string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", m)
}

func (UnimplementedLedgerServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodRegister)
}
func (UnimplementedLedgerServer) SignIn(context.Context, *SignInRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodSignIn)
}
func (UnimplementedLedgerServer) RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error) {
	return nil, unimplemented(MethodRefreshToken)
}
func (UnimplementedLedgerServer) SignOut(context.Context, *SignOutRequest) (*Empty, error) {
	return nil, unimplemented(MethodSignOut)
}
func (UnimplementedLedgerServer) ListClients(context.Context, *Empty) (*ClientList, error) {
	return nil, unimplemented(MethodListClients)
}
func (UnimplementedLedgerServer) InsertClient(context.Context, *InsertClientRequest) (*ClientResponse, error) {
	return nil, unimplemented(MethodInsertClient)
}
func (UnimplementedLedgerServer) UpdateClient(context.Context, *UpdateClientRequest) (*ClientResponse, error) {
	return nil, unimplemented(MethodUpdateClient)
}
func (UnimplementedLedgerServer) DeleteClient(context.Context, *IDRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeleteClient)
}
func (UnimplementedLedgerServer) ListEntries(context.Context, *Empty) (*EntryList, error) {
	return nil, unimplemented(MethodListEntries)
}
func (UnimplementedLedgerServer) InsertEntry(context.Context, *InsertEntryRequest) (*EntryResponse, error) {
	return nil, unimplemented(MethodInsertEntry)
}
func (UnimplementedLedgerServer) DeleteEntry(context.Context, *IDRequest) (*Empty, error) {
	return nil, unimplemented(MethodDeleteEntry)
}
func (UnimplementedLedgerServer) DeleteClientEntries(context.Context, *DeleteClientEntriesRequest) (*DeletedResponse, error) {
	return nil, unimplemented(MethodDeleteClientEntries)
}
func (UnimplementedLedgerServer) CreateExportUpload(context.Context, *ExportUploadRequest) (*ExportUploadResponse, error) {
	return nil, unimplemented(MethodCreateExportUpload)
}
func (UnimplementedLedgerServer) Subscribe(*SubscribeRequest, ChangeStream) error {
	return unimplemented(MethodSubscribe)
}

// unary adapts a typed LedgerServer method to a grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(LedgerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(LedgerServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type changeStreamServer struct {
	grpc.ServerStream
}

func (s *changeStreamServer) Send(ev *models.ChangeEvent) error {
	return s.ServerStream.SendMsg(ev)
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(SubscribeRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(LedgerServer).Subscribe(in, &changeStreamServer{stream})
}

// LedgerServiceDesc describes the Ledger service for grpc.Server.
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRegister, LedgerServer.Register),
		unary(MethodSignIn, LedgerServer.SignIn),
		unary(MethodRefreshToken, LedgerServer.RefreshToken),
		unary(MethodSignOut, LedgerServer.SignOut),
		unary(MethodListClients, LedgerServer.ListClients),
		unary(MethodInsertClient, LedgerServer.InsertClient),
		unary(MethodUpdateClient, LedgerServer.UpdateClient),
		unary(MethodDeleteClient, LedgerServer.DeleteClient),
		unary(MethodListEntries, LedgerServer.ListEntries),
		unary(MethodInsertEntry, LedgerServer.InsertEntry),
		unary(MethodDeleteEntry, LedgerServer.DeleteEntry),
		unary(MethodDeleteClientEntries, LedgerServer.DeleteClientEntries),
		unary(MethodCreateExportUpload, LedgerServer.CreateExportUpload),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    MethodSubscribe,
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "clientbook/ledger",
}

// RegisterLedgerServer registers srv on s.
func RegisterLedgerServer(s grpc.ServiceRegistrar, srv LedgerServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}
