package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LIFELINK_SERVER_PORT.
const EnvPrefix = "LIFELINK"

// Config holds the application configuration
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Store     StoreConfig
	Journal   JournalConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// AuthConfig holds the single credential allowed to read and clear messages
type AuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Realm    string `mapstructure:"realm"`
}

// StoreConfig holds the in-memory message store configuration
type StoreConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// JournalConfig holds the durable log configuration
type JournalConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	QueueSize int    `mapstructure:"queue_size"`
}

// RateLimitConfig holds the per-client intake limit. PerMinute 0 disables it.
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

// LogConfig holds the logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password", "lifelink")
	v.SetDefault("auth.realm", "Message Logs")

	v.SetDefault("store.capacity", 20)

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "lifelink.db")
	v.SetDefault("journal.queue_size", 256)

	v.SetDefault("rate_limit.per_minute", 0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load loads the configuration from config.yaml, or from the file named by
// CONFIG_PATH, with LIFELINK_* environment overrides.
func Load() (*Config, error) {
	return LoadFrom(viper.New(), "")
}

// LoadFrom loads the configuration into v. An explicit path must exist; the
// default config.yaml is optional.
func LoadFrom(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port missing")
	}
	if c.Auth.Username == "" || c.Auth.Password == "" {
		return errors.New("auth.username and auth.password are required")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return errors.New("journal.path required when journal is enabled")
	}
	if c.RateLimit.PerMinute < 0 {
		return errors.New("rate_limit.per_minute must not be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 1
	}
	return nil
}
