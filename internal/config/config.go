// Package config holds the formsink configuration structures, loaded from a
// YAML file, FORMSINK_* environment variables, and CLI flags via viper.
package config

import "time"

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	// AdminToken guards the form-registry endpoints. Empty disables them.
	AdminToken string `mapstructure:"admin_token"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects and configures the submission store backend.
// Driver is "libsql" (embedded, Path or URL) or "postgres" (URL is a
// lib/pq connection string).
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// RateLimitConfig bounds per-form submission volume.
type RateLimitConfig struct {
	MaxPoints int           `mapstructure:"max_points"`
	Window    time.Duration `mapstructure:"window"`
}

// NotifyConfig configures the submission alert channel. When SMTP.Host is
// empty, alerts are written to the log instead.
type NotifyConfig struct {
	From          string     `mapstructure:"from"`
	SubjectPrefix string     `mapstructure:"subject_prefix"`
	SMTP          SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig contains SMTP relay credentials.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSL      bool   `mapstructure:"ssl"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `mapstructure:"level"`
}
