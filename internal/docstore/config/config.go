package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v6"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port string `env:"SERVER_PORT" envDefault:"8080"`

	// AuthSecret enables Bearer token validation when set. Empty disables
	// authentication, which is the default for local development.
	AuthSecret string `env:"AUTH_SECRET"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// RealtimeConfig holds settings for the WebSocket listen endpoint.
type RealtimeConfig struct {
	// ClientSendChannelBuffer is the per-connection event buffer. Slow
	// clients drop events once it fills.
	ClientSendChannelBuffer int `env:"CLIENT_SEND_CHANNEL_BUFFER" envDefault:"100"`
}

// RedisConfig holds the optional write journal settings. An empty Host
// disables the journal.
type RedisConfig struct {
	Host         string `env:"REDIS_HOST"`
	Port         string `env:"REDIS_PORT" envDefault:"6379"`
	Password     string `env:"REDIS_PASSWORD"`
	Database     int    `env:"REDIS_DATABASE" envDefault:"0"`
	MaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize     int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS    bool   `env:"REDIS_ENABLE_TLS" envDefault:"false"`
}

// Enabled reports whether the write journal should be wired.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// GetAddr returns the Redis address in host:port form.
func (c RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Config holds all settings for the document store service.
type Config struct {
	MongoDBURI          string `env:"MONGODB_URI"`
	DefaultDatabaseName string `env:"MONGODB_DEFAULT_DATABASE" envDefault:"docstore"`

	Server   ServerConfig
	Realtime RealtimeConfig
	Redis    RedisConfig
}

// LoadConfig loads configuration from environment variables and applies
// defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Server); err != nil {
		return nil, errors.New("failed to load server configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Realtime); err != nil {
		return nil, errors.New("failed to load realtime configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Redis); err != nil {
		return nil, errors.New("failed to load redis configuration from environment: " + err.Error())
	}

	if cfg.MongoDBURI == "" {
		return nil, errors.New("MONGODB_URI environment variable is not set")
	}
	if cfg.Realtime.ClientSendChannelBuffer <= 0 {
		cfg.Realtime.ClientSendChannelBuffer = 100
	}

	return cfg, nil
}

// DefaultConfig returns a Config suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		MongoDBURI:          "mongodb://localhost:27017",
		DefaultDatabaseName: "docstore",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		Realtime: RealtimeConfig{
			ClientSendChannelBuffer: 100,
		},
		Redis: RedisConfig{
			Port:         "6379",
			MaxRetries:   3,
			PoolSize:     10,
			MinIdleConns: 2,
		},
	}
}
