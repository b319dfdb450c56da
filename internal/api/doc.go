// Package api is the wire contract between the clientbook server and its
// clients. The Ledger gRPC service is described by hand with a
// grpc.ServiceDesc and carries JSON-encoded messages through a codec
// registered under the "json" content subtype, so no generated stubs are
// involved. Standard services such as health checking keep using protobuf.
package api
