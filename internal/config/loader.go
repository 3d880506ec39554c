package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// SetDefaults registers default values on the given viper instance. Called
// before flag binding so flags and env vars override them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", "data/formsink.db")

	v.SetDefault("rate_limit.max_points", 10)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("notify.subject_prefix", "[formsink]")
	v.SetDefault("notify.smtp.port", 587)

	v.SetDefault("logging.level", "info")
}

// Load unmarshals the viper state into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))

	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch strings.TrimSpace(c.Store.Driver) {
	case "", "libsql", "postgres":
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Store.Driver)
	}

	if c.RateLimit.MaxPoints <= 0 {
		return fmt.Errorf("rate_limit.max_points must be positive, got %d", c.RateLimit.MaxPoints)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive, got %s", c.RateLimit.Window)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	if c.Notify.SMTP.Host != "" && c.Notify.From == "" {
		return fmt.Errorf("notify.from is required when notify.smtp.host is set")
	}

	return nil
}
