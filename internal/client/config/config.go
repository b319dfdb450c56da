package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the clientbook client.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	SessionDB          string
	ExportDir          string
	LogLevel           string
}

// LoadDefaults populates c with defaults suitable for a local server.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.SessionDB = "clientbook.db"
	c.ExportDir = "."
	c.LogLevel = "warn"
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg, os.Args[1:])
	return cfg
}
