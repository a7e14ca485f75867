package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Identity  IdentityConfig  `mapstructure:"identity"   validate:"required"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// IdentityConfig contains the settings for the external identity provider.
// ProjectID is the provider project the API trusts: it is both the expected
// audience of incoming ID tokens and part of the expected issuer. BaseURL
// and CertsURL default to the provider's public endpoints and exist so
// tests can point the client at a local server.
type IdentityConfig struct {
	ProjectID string `mapstructure:"project_id" validate:"required"`
	APIKey    string `mapstructure:"api_key"    validate:"required"`
	BaseURL   string `mapstructure:"base_url"   validate:"omitempty,url"`
	CertsURL  string `mapstructure:"certs_url"  validate:"omitempty,url"`
}

// CORSConfig contains cross-origin settings for the HTTP surface.
// Origins is a comma-separated list; "*" allows any origin.
type CORSConfig struct {
	Origins string `mapstructure:"origins"`
}

// RateLimitConfig bounds the signup/login endpoints, which fan out to the
// identity provider and are the brute-force surface of the API.
type RateLimitConfig struct {
	AuthPerSecond float64 `mapstructure:"auth_per_second" validate:"gte=0"`
	AuthBurst     int     `mapstructure:"auth_burst"      validate:"gte=0"`
}
