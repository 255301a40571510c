package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a group of routes.
type EndpointConfig struct {
	Path   string        // Route path (a trailing "/" matches every path below it)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Environment variables read by LoadConfig.
const (
	EnvEnabled   = "RESUME_BUILDER_RATE_LIMIT_ENABLED"
	EnvWhitelist = "RESUME_BUILDER_RATE_LIMIT_WHITELIST"
	EnvBlacklist = "RESUME_BUILDER_RATE_LIMIT_BLACKLIST"
)

// NewConfig returns a configuration allowing perMinute requests per client on
// ordinary routes. Rendering routes share that budget; draft writes get half.
func NewConfig(perMinute int) *Config {
	if perMinute <= 0 {
		perMinute = 120
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    perMinute,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(perMinute),
	}
}

// LoadConfig builds NewConfig(perMinute) and applies the environment overrides.
func LoadConfig(perMinute int) *Config {
	if !getEnvBool(EnvEnabled, true) {
		return &Config{Enabled: false}
	}
	cfg := NewConfig(perMinute)
	cfg.Whitelist = parseIPList(os.Getenv(EnvWhitelist))
	cfg.Blacklist = parseIPList(os.Getenv(EnvBlacklist))
	return cfg
}

// DefaultEndpointConfigs returns the per-route tiers.
func DefaultEndpointConfigs(perMinute int) []EndpointConfig {
	writes := max(perMinute/2, 1)
	burst := max(perMinute/10, 1)
	return []EndpointConfig{
		// Rendering runs custom layout code; every render route shares one bucket.
		{Path: "/render", Method: "POST", Limit: perMinute, Window: time.Minute, Burst: burst},
		{Path: "/render/text", Method: "POST", Limit: perMinute, Window: time.Minute, Burst: burst},
		{Path: "/import", Method: "POST", Limit: perMinute, Window: time.Minute, Burst: burst},
		{Path: "/export", Method: "POST", Limit: perMinute, Window: time.Minute, Burst: burst},

		// Draft writes
		{Path: "/drafts", Method: "POST", Limit: writes, Window: time.Minute, Burst: burst},
		{Path: "/drafts/", Method: "PUT", Limit: writes, Window: time.Minute, Burst: burst},
		{Path: "/drafts/", Method: "DELETE", Limit: writes, Window: time.Minute, Burst: burst},

		// Reads use the default limit; /health is unlimited (see MatchEndpoint)
	}
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
