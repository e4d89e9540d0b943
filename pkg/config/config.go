package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the service configuration. Values come from defaults,
// overridden by AUTOMATION_* environment variables (dots become
// underscores, e.g. AUTOMATION_SERVER_PORT).
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Engine EngineConfig `mapstructure:"engine"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

type EngineConfig struct {
	// NodeTimeout is the default per-node execution bound; requests may
	// override it. Zero disables the bound.
	NodeTimeout time.Duration `mapstructure:"node_timeout"`
}

// Load builds the configuration from defaults and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3003"})
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("engine.node_timeout", 0)

	v.SetEnvPrefix("AUTOMATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
