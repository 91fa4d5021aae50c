package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/careervault/internal/flagx"
	"github.com/dmitrijs2005/careervault/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI config. Durations accept "30s"
// style strings or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	AccessToken         string         `json:"access_token"`
	CallTimeout         timex.Duration `json:"call_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays cfg with the file named by -c/-config. Only fields set in
// the file replace defaults. Read and decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.AccessToken != "" {
		cfg.AccessToken = jc.AccessToken
	}
	if jc.CallTimeout.Duration > 0 {
		cfg.CallTimeout = jc.CallTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}
