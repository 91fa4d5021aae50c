package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/careervault/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address (e.g., ":9090"), empty disables
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-l string   log backend: slog or zap
//	-v          debug logging
//	-k string   Gemini API key
//	-n string   Gemini model
//	-o int      provider call timeout, seconds
//	-q float    provider calls per second
//	-w int      audit cache TTL, minutes
//	-z int      audit cache size
//	-j int      rescore concurrency
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Notes:
//   - os.Args is first filtered to the flags recognized here using
//     flagx.FilterArgs, avoiding collisions with -c/-config.
//   - Duration flags are integers in the stated unit.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-d", "-s", "-l", "-v", "-k", "-n", "-o", "-q", "-w", "-z", "-j",
		"-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port of the metrics endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")
	fs.BoolVar(&config.Debug, "v", config.Debug, "debug logging")

	fs.StringVar(&config.GeminiAPIKey, "k", config.GeminiAPIKey, "Gemini API key")
	fs.StringVar(&config.GeminiModel, "n", config.GeminiModel, "Gemini model")
	providerTimeout := fs.Int("o", int(config.ProviderTimeout.Seconds()), "provider call timeout (in seconds)")
	fs.Float64Var(&config.ProviderRate, "q", config.ProviderRate, "provider calls per second")

	auditTTL := fs.Int("w", int(config.AuditTTL.Minutes()), "audit cache TTL (in minutes)")
	fs.IntVar(&config.AuditCacheSize, "z", config.AuditCacheSize, "audit cache size")
	fs.IntVar(&config.RescoreConcurrency, "j", config.RescoreConcurrency, "rescore concurrency")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ProviderTimeout = time.Duration(*providerTimeout) * time.Second
	config.AuditTTL = time.Duration(*auditTTL) * time.Minute
}
