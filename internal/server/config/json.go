package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/careervault/internal/flagx"
	"github.com/dmitrijs2005/careervault/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration. Durations accept
// strings such as "5m" or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	MetricsAddr        string         `json:"metrics_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	LogBackend         string         `json:"log_backend"`
	Debug              *bool          `json:"debug"`
	GeminiAPIKey       string         `json:"gemini_api_key"`
	GeminiModel        string         `json:"gemini_model"`
	ProviderTimeout    timex.Duration `json:"provider_timeout"`
	ProviderRate       float64        `json:"provider_rate"`
	AuditTTL           timex.Duration `json:"audit_ttl"`
	AuditCacheSize     int            `json:"audit_cache_size"`
	RescoreConcurrency int            `json:"rescore_concurrency"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c or -config.
// Fields absent from the file keep their current value. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogBackend, c.LogBackend)
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
	setString(&config.GeminiAPIKey, c.GeminiAPIKey)
	setString(&config.GeminiModel, c.GeminiModel)
	if c.ProviderTimeout.Duration > 0 {
		config.ProviderTimeout = c.ProviderTimeout.Duration
	}
	if c.ProviderRate > 0 {
		config.ProviderRate = c.ProviderRate
	}
	if c.AuditTTL.Duration > 0 {
		config.AuditTTL = c.AuditTTL.Duration
	}
	if c.AuditCacheSize > 0 {
		config.AuditCacheSize = c.AuditCacheSize
	}
	if c.RescoreConcurrency > 0 {
		config.RescoreConcurrency = c.RescoreConcurrency
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
