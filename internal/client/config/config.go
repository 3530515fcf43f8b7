package config

import "time"

// Config holds runtime settings for the account CLI.
//
// Fields:
//   - ServerURL: base URL of the user routes, e.g. http://127.0.0.1:8000/api/v1/users.
//   - HealthAddr: host:port of the server's gRPC health endpoint.
//   - RequestTimeout: per-request HTTP timeout.
//   - OnlineCheckInterval: how often the client probes server health.
type Config struct {
	ServerURL           string
	HealthAddr          string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000/api/v1/users"
	c.HealthAddr = "127.0.0.1:50051"
	c.RequestTimeout = 15 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
