// Package config defines service configuration and its loading order.
//
// Configuration is layered: compiled-in defaults, then an optional YAML
// file named by ROI_CONFIG, then environment variables prefixed ROI_.
// The bare PORT variable is honored last for deployment compatibility.
package config

import "time"

// Config contains process configuration for the server and CLI.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Port is the HTTP listen port.
	Port string `koanf:"port"`

	// AllowedOrigins lists origins permitted by the CORS middleware.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// CacheTTLSeconds is the TTL for cached scoring responses.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// RedisAddr enables the Redis-backed rate limiter when non-empty.
	// Empty means in-memory rate limiting only.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// IPLimitPerMin caps requests per client IP per minute.
	IPLimitPerMin int `koanf:"ip_limit_per_min"`

	// RequestTimeoutSeconds bounds handler execution time.
	RequestTimeoutSeconds int `koanf:"request_timeout_seconds"`

	// MaxBodyBytes caps the size of accepted request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// EnableProfiling mounts the pprof endpoints when true.
	EnableProfiling bool `koanf:"enable_profiling"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Port:                  "3000",
		AllowedOrigins:        []string{"http://localhost:3000", "http://localhost:5173"},
		CacheTTLSeconds:       900,
		RedisAddr:             "",
		RedisDB:               0,
		IPLimitPerMin:         60,
		RequestTimeoutSeconds: 30,
		MaxBodyBytes:          1 << 20,
	}
}

// RequestTimeout returns the handler timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns the response-cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
