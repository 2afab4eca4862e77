package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// MetricsEnabled exposes prometheus metrics at /metrics.
	MetricsEnabled bool `mapstructure:"metrics_enabled" default:"true"`
	// ShutdownTimeoutSeconds bounds graceful shutdown of in-flight requests.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" default:"30"`
}

// ListenAddr returns the address passed to the HTTP listener.
func (c Config) ListenAddr() string {
	if c.Port == "" {
		return ":8080"
	}
	return ":" + c.Port
}
