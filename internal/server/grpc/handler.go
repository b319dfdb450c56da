package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/clientbook/internal/api"
	"github.com/dmitrijs2005/clientbook/internal/common"
	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/dmitrijs2005/clientbook/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC status errors. Unknown errors are
// logged and reported as Internal without details.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrRefreshTokenExpired.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}

func (s *GRPCServer) owner(ctx context.Context) (string, error) {
	id, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "unauthorized")
	}
	return id, nil
}

func authResponse(sess *services.Session) *api.AuthResponse {
	return &api.AuthResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		User:         sess.User,
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.AuthResponse, error) {
	sess, err := s.svc.Users.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "Registered", "user_id", sess.User.ID)
	return authResponse(sess), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.SignInRequest) (*api.AuthResponse, error) {
	sess, err := s.svc.Users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return authResponse(sess), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.AuthResponse, error) {
	sess, err := s.svc.Users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return authResponse(sess), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *api.SignOutRequest) (*api.Empty, error) {
	if err := s.svc.Users.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListClients(ctx context.Context, _ *api.Empty) (*api.ClientList, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.svc.Ledger.ListClients(ctx, owner)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ClientList{Clients: items}, nil
}

func (s *GRPCServer) InsertClient(ctx context.Context, req *api.InsertClientRequest) (*api.ClientResponse, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.Ledger.InsertClient(ctx, owner, req.Name)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ClientResponse{Client: *c}, nil
}

func (s *GRPCServer) UpdateClient(ctx context.Context, req *api.UpdateClientRequest) (*api.ClientResponse, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.Ledger.UpdateClient(ctx, owner, req.ID, req.Name)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ClientResponse{Client: *c}, nil
}

func (s *GRPCServer) DeleteClient(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Ledger.DeleteClient(ctx, owner, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListEntries(ctx context.Context, _ *api.Empty) (*api.EntryList, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.svc.Ledger.ListEntries(ctx, owner)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.EntryList{Entries: items}, nil
}

func (s *GRPCServer) InsertEntry(ctx context.Context, req *api.InsertEntryRequest) (*api.EntryResponse, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.svc.Ledger.InsertEntry(ctx, owner, req.ClientID, req.Description, req.Cost)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.EntryResponse{Entry: *e}, nil
}

func (s *GRPCServer) DeleteEntry(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Ledger.DeleteEntry(ctx, owner, req.ID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) DeleteClientEntries(ctx context.Context, req *api.DeleteClientEntriesRequest) (*api.DeletedResponse, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.svc.Ledger.DeleteClientEntries(ctx, owner, req.ClientID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.DeletedResponse{Count: n}, nil
}

func (s *GRPCServer) CreateExportUpload(ctx context.Context, req *api.ExportUploadRequest) (*api.ExportUploadResponse, error) {
	owner, err := s.owner(ctx)
	if err != nil {
		return nil, err
	}
	up, err := s.svc.Exports.CreateUpload(ctx, owner, req.Filename, req.ContentType)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.ExportUploadResponse{
		Key:         up.Key,
		UploadURL:   up.UploadURL,
		DownloadURL: up.DownloadURL,
		ExpiresAt:   up.ExpiresAt,
	}, nil
}

// Subscribe streams the caller's changes to one table until the client
// goes away, the broker drops the subscription or the server stops.
func (s *GRPCServer) Subscribe(req *api.SubscribeRequest, stream api.ChangeStream) error {
	ctx := stream.Context()
	owner, err := s.owner(ctx)
	if err != nil {
		return err
	}
	table, err := models.ParseTable(string(req.Table))
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	sub := s.svc.Feed.Subscribe(owner, table)
	defer sub.Close()

	if err := stream.SendHeader(metadata.MD{}); err != nil {
		return err
	}

	s.logger.Debug(ctx, "subscribed", "user_id", owner, "table", table)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopping:
			return status.Error(codes.Unavailable, "server is shutting down")
		case ev, ok := <-sub.Events():
			if !ok {
				return status.Error(codes.ResourceExhausted, "subscriber too slow")
			}
			if err := stream.Send(&ev); err != nil {
				return err
			}
		}
	}
}
