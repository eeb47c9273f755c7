package ratelimit

import (
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused client entry is kept.
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig limits every client to perMinute requests a minute outside the endpoints with
// their own limits. perMinute <= 0 disables limiting.
func DefaultConfig(perMinute int) *Config {
	if perMinute <= 0 {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    perMinute,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// browser renders and model calls
		{Path: "/v1/scrape/stream", Method: "POST", Limit: 6, Window: time.Minute, Burst: 2},
		{Path: "/v1/analyze", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},

		// writes to the workspace
		{Path: "/v1/save", Method: "POST", Limit: 30, Window: time.Minute, Burst: 10},
		{Path: "/v1/selectors/refresh", Method: "POST", Limit: 6, Window: time.Minute, Burst: 1},
		{Path: "/v1/history/", Method: "DELETE", Limit: 30, Window: time.Minute, Burst: 10},
	}
}
