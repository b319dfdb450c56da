package config

import (
	"flag"

	"github.com/dmitrijs2005/clientbook/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Arguments
// it does not know are filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config, argv []string) {
	args := flagx.FilterArgs(argv, []string{"-a", "-t", "-s", "-x", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.SessionDB, "s", cfg.SessionDB, "local session database file")
	fs.StringVar(&cfg.ExportDir, "x", cfg.ExportDir, "directory for spreadsheet exports")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
