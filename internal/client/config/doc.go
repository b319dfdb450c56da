// Package config loads runtime configuration for the clientbook terminal
// client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/-config or the CONFIG variable.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the clientbook gRPC endpoint
//	-t duration   per-request timeout
//	-s string     path of the local session database
//	-x string     directory spreadsheet exports are written to
//	-l string     log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations accept strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "session_db": "clientbook.db",
//	  "export_dir": ".",
//	  "log_level": "warn"
//	}
package config
