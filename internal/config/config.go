// FilePath: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	GraphQL  GraphQLConfig
	Cache    CacheConfig
	Services ServicesConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type GraphQLConfig struct {
	// MaxQuerySize caps the request body in bytes before it reaches the
	// GraphQL layer
	MaxQuerySize int64 `mapstructure:"max_query_size"`
}

type CacheConfig struct {
	// Backend selects the field-cache store: "redis" or "memory"
	Backend   string        `mapstructure:"backend"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	Prefix    string        `mapstructure:"prefix"`
	MaxTTL    time.Duration `mapstructure:"max_ttl"`
	EnableTLS bool          `mapstructure:"enable_tls"`
}

type ServicesConfig struct {
	Things   UpstreamConfig `mapstructure:"things"`
	Readings UpstreamConfig `mapstructure:"readings"`
	Users    UpstreamConfig `mapstructure:"users"`
}

type UpstreamConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// BaseURL returns the versioned API prefix for an upstream service
func (u UpstreamConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%d/v1", u.Host, u.Port)
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("WASP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Log defaults
	viper.SetDefault("log.level", "info")

	// GraphQL defaults
	viper.SetDefault("graphql.max_query_size", 100000)

	// Cache defaults
	viper.SetDefault("cache.backend", "redis")
	viper.SetDefault("cache.port", 6379)
	viper.SetDefault("cache.prefix", "WASP_API_CACHE")
	viper.SetDefault("cache.max_ttl", "600s")

	// Upstream service defaults
	viper.SetDefault("services.things.host", "wasp-thing-service")
	viper.SetDefault("services.things.port", 80)
	viper.SetDefault("services.readings.host", "wasp-reading-service")
	viper.SetDefault("services.readings.port", 80)
	viper.SetDefault("services.users.host", "wasp-user-service")
	viper.SetDefault("services.users.port", 80)
}

func validateConfig(config *Config) error {
	if config.Cache.Backend != "redis" && config.Cache.Backend != "memory" {
		return fmt.Errorf("cache backend must be redis or memory, got %q", config.Cache.Backend)
	}
	if config.Cache.Backend == "redis" && config.Cache.Host == "" {
		return fmt.Errorf("cache host is required")
	}
	if config.GraphQL.MaxQuerySize <= 0 {
		return fmt.Errorf("graphql max_query_size must be positive")
	}
	return nil
}
