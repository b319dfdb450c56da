// Package common defines constants and sentinel errors shared by the
// clientbook client and server. Match them with errors.Is.
package common

import "errors"

// AccessTokenHeaderName is the gRPC metadata key that carries the access token.
const AccessTokenHeaderName = "access_token"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrAlreadyExists  = errors.New("already exists")

	// Transport errors seen by the client.
	ErrUnavailable = errors.New("service unavailable")

	// Auth errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)
