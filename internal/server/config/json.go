package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/clientbook/internal/flagx"
	"github.com/dmitrijs2005/clientbook/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Every field is
// optional; absent fields keep their current value.
type JsonConfig struct {
	EndpointAddr                 *string         `json:"endpoint_addr"`
	DatabaseDriver               *string         `json:"database_driver"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	MetricsAddr                  *string         `json:"metrics_addr"`
	OTelEndpoint                 *string         `json:"otel_endpoint"`
	FeedBufferSize               *int            `json:"feed_buffer_size"`
	LogLevel                     *string         `json:"log_level"`
	S3AccessKey                  *string         `json:"s3_access_key"`
	S3SecretKey                  *string         `json:"s3_secret_key"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
	ExportURLTTL                 *timex.Duration `json:"export_url_ttl"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseJson overlays the file named by -c/-config (or CONFIG). It panics
// if the file cannot be read or parsed.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	set(&config.EndpointAddr, c.EndpointAddr)
	set(&config.DatabaseDriver, c.DatabaseDriver)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	set(&config.MetricsAddr, c.MetricsAddr)
	set(&config.OTelEndpoint, c.OTelEndpoint)
	set(&config.FeedBufferSize, c.FeedBufferSize)
	set(&config.LogLevel, c.LogLevel)
	set(&config.S3AccessKey, c.S3AccessKey)
	set(&config.S3SecretKey, c.S3SecretKey)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	access := timex.Duration{Duration: config.AccessTokenValidityDuration}
	set(&access, c.AccessTokenValidityDuration)
	config.AccessTokenValidityDuration = access.Duration

	refresh := timex.Duration{Duration: config.RefreshTokenValidityDuration}
	set(&refresh, c.RefreshTokenValidityDuration)
	config.RefreshTokenValidityDuration = refresh.Duration

	ttl := timex.Duration{Duration: config.ExportURLTTL}
	set(&ttl, c.ExportURLTTL)
	config.ExportURLTTL = ttl.Duration
}
