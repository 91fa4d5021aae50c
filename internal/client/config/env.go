package config

import "github.com/dmitrijs2005/careervault/internal/flagx"

func parseEnv(cfg *Config) {
	if v, ok := flagx.Env("CAREERVAULT_TOKEN"); ok {
		cfg.AccessToken = v
	}
	if v, ok := flagx.Env("CAREERVAULT_ADDR"); ok {
		cfg.ServerEndpointAddr = v
	}
}
