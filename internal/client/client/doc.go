// Package client talks to the clientbook server.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering the
//     session calls (Register, SignIn, Refresh, SignOut), the clients and
//     entries store, change subscriptions and export sharing.
//  2. A gRPC implementation (see GRPCClient) that injects the access token
//     via interceptors, transparently refreshes an expired token once, and
//     maps gRPC status codes to the sentinel errors of package common.
//
// # Error Handling
//
// Errors returned by GRPCClient wrap one of common.ErrUnavailable,
// common.ErrorUnauthorized, common.ErrTokenExpired, common.ErrInvalidCredentials,
// common.ErrorNotFound, common.ErrValidation, common.ErrConflict or
// common.ErrAlreadyExists together with the server's message. Match them
// with errors.Is.
//
// # Concurrency
//
// GRPCClient is safe for concurrent use. Token state is guarded by a mutex
// and at most one refresh is in flight at a time.
package client
