// Package config loads settings for the careervault operator CLI.
package config

import "time"

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gRPC endpoint.
//   - AccessToken: bearer token sent with every call; prompted for when empty.
//   - CallTimeout: upper bound for a single RPC.
//   - OnlineCheckInterval: how often the CLI probes server reachability.
type Config struct {
	ServerEndpointAddr  string
	AccessToken         string
	CallTimeout         time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.CallTimeout = 30 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
}

// LoadConfig applies defaults, then JSON, environment and flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
