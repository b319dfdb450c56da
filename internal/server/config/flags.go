package config

import (
	"flag"

	"github.com/dmitrijs2005/clientbook/internal/flagx"
)

// parseFlags overlays command-line flags:
//
//	-a string    gRPC bind address
//	-D string    database driver (postgres|sqlite)
//	-d string    database DSN
//	-k string    JWT signing key
//	-t duration  access token lifetime
//	-r duration  refresh token lifetime
//	-m string    metrics bind address
//	-o string    OTLP/HTTP traces endpoint
//	-l string    log level
//	-b string    S3 bucket for shared exports
//	-e string    S3 endpoint
//
// Unknown arguments are filtered out first, so -c/-config are tolerated.
func parseFlags(config *Config, argv []string) {
	args := flagx.FilterArgs(argv, []string{"-a", "-D", "-d", "-k", "-t", "-r", "-m", "-o", "-l", "-b", "-e"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run the gRPC server")
	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver: postgres or sqlite")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "JWT signing key")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token lifetime")
	fs.DurationVar(&config.RefreshTokenValidityDuration, "r", config.RefreshTokenValidityDuration, "refresh token lifetime")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics HTTP address, empty to disable")
	fs.StringVar(&config.OTelEndpoint, "o", config.OTelEndpoint, "OTLP/HTTP traces endpoint, empty to disable")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket for shared exports")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
