package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/clientbook/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mapError converts a gRPC error into one wrapping a common sentinel and
// keeping the server's message. io.EOF is returned unchanged so stream
// readers can detect a clean end.
func mapError(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var sentinel error
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		switch st.Message() {
		case common.ErrTokenExpired.Error():
			return common.ErrTokenExpired
		case common.ErrInvalidCredentials.Error():
			return common.ErrInvalidCredentials
		}
		sentinel = common.ErrorUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		sentinel = common.ErrUnavailable
	case codes.NotFound:
		sentinel = common.ErrorNotFound
	case codes.InvalidArgument:
		sentinel = common.ErrValidation
	case codes.FailedPrecondition:
		sentinel = common.ErrConflict
	case codes.AlreadyExists:
		sentinel = common.ErrAlreadyExists
	case codes.Canceled:
		sentinel = context.Canceled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}

	msg := strings.TrimPrefix(st.Message(), sentinel.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
