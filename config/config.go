// Package config loads server configuration from file, environment and
// defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Storage backend selectors.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
)

// ServerConfig holds all configuration for the server. Tags use
// mapstructure for viper unmarshalling.
type ServerConfig struct {
	HTTPPort  string `mapstructure:"HTTP_PORT"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	Issuer   string `mapstructure:"ISSUER"`
	Audience string `mapstructure:"AUDIENCE"`

	AccessTokenTTLMin  int `mapstructure:"ACCESS_TOKEN_TTL_MIN"`
	AuthCodeTTLMin     int `mapstructure:"AUTH_CODE_TTL_MIN"`
	CleanupIntervalSec int `mapstructure:"CLEANUP_INTERVAL_SEC"`

	// Path to a PEM-encoded RSA private key. Empty means an ephemeral key
	// is generated at startup.
	SigningKeyFile string `mapstructure:"SIGNING_KEY_FILE"`
	SigningKeyID   string `mapstructure:"SIGNING_KEY_ID"`

	Storage     string `mapstructure:"STORAGE"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`
	RedisPrefix string `mapstructure:"REDIS_PREFIX"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

// LoadConfig reads configuration from config.yaml, environment variables,
// and defaults, in that order of precedence.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/gatehouse/")
	v.AddConfigPath("$HOME/.gatehouse")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("ISSUER", "http://localhost:8080")
	v.SetDefault("AUDIENCE", "gatehouse")
	v.SetDefault("ACCESS_TOKEN_TTL_MIN", 60)
	v.SetDefault("AUTH_CODE_TTL_MIN", 1)
	v.SetDefault("CLEANUP_INTERVAL_SEC", 60)
	v.SetDefault("STORAGE", StorageMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PREFIX", "gatehouse")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/gatehouse_dev")
	v.SetDefault("MONGO_DB_NAME", "gatehouse_dev")
	v.SetDefault("OTEL_SERVICE_NAME", "gatehouse-server")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	switch cfg.Storage {
	case StorageMemory, StorageRedis, StorageMongo:
	default:
		return nil, fmt.Errorf("unknown STORAGE backend %q", cfg.Storage)
	}

	return &cfg, nil
}
