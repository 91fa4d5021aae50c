package config

import "github.com/dmitrijs2005/careervault/internal/flagx"

// parseEnv reads secrets that are usually injected by the environment.
func parseEnv(config *Config) {
	if v, ok := flagx.Env("GEMINI_API_KEY", "GOOGLE_API_KEY"); ok {
		config.GeminiAPIKey = v
	}
	if v, ok := flagx.Env("CAREERVAULT_JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := flagx.Env("CAREERVAULT_DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
}
