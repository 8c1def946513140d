package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
)

// MongoConfig describes the primary database the dashboard lists and exports.
// MONGODB_URI wins over the discrete host/port/credential fields.
type MongoConfig struct {
	URI      string `env:"MONGODB_URI" json:"-"`
	Host     string `env:"MONGODB_HOST" json:"host"`
	Port     string `env:"MONGODB_PORT" envDefault:"27017" json:"port"`
	Username string `env:"MONGODB_USERNAME" json:"username"`
	Password string `env:"MONGODB_PASSWORD" json:"-"`
	Database string `env:"MONGODB_DATABASE" json:"database"`

	// SSL toggles TLS on the client. DocumentDB clusters usually require it.
	SSL bool `env:"AWS_DOCDB_SSL" envDefault:"false" json:"ssl"`

	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s" json:"connect_timeout"`
}

// ConnectionURI returns the URI to dial, building one from the discrete
// fields when MONGODB_URI is not set. It returns "" when neither is usable.
func (c *MongoConfig) ConnectionURI() string {
	if c.URI != "" {
		return c.URI
	}
	if c.Host == "" {
		return ""
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/",
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	return u.String()
}

// IsConfigured reports whether enough is set to open a connection.
func (c *MongoConfig) IsConfigured() bool {
	return c.ConnectionURI() != ""
}

// DocDBConfig is the separate DocumentDB target used by the CSV array export.
type DocDBConfig struct {
	ConnectionString string `env:"DOCDB_CONNECTION_STRING" json:"-"`
	DatabaseName     string `env:"DOCDB_DATABASE_NAME" json:"database"`
	SSL              bool   `env:"DOCDB_SSL" envDefault:"false" json:"ssl"`
}

// IsConfigured reports whether the DocumentDB export target is usable.
func (c *DocDBConfig) IsConfigured() bool {
	return c.ConnectionString != ""
}

// RedisConfig holds the optional stats cache connection.
type RedisConfig struct {
	Enabled         bool   `env:"REDIS_ENABLED" envDefault:"false"`
	Host            string `env:"REDIS_HOST" envDefault:"localhost"`
	Port            string `env:"REDIS_PORT" envDefault:"6379"`
	Password        string `env:"REDIS_PASSWORD"`
	Database        int    `env:"REDIS_DB" envDefault:"0"`
	MaxRetries      int    `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize        int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS       bool   `env:"REDIS_TLS" envDefault:"false"`
	ConnMaxIdleTime string `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"30m"`
	ConnMaxLifetime string `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"1h"`

	// StatsTTL is how long cached collection stats stay valid.
	StatsTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"30s"`
}

// GetAddr returns host:port for the redis client.
func (c *RedisConfig) GetAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// DashboardConfig holds all configuration for the dashboard module.
type DashboardConfig struct {
	Mongo MongoConfig
	DocDB DocDBConfig
	Redis RedisConfig
}

// LoadConfig loads configuration from environment variables and applies defaults.
// Missing database settings are not an error here: requests that need them
// fail with a configuration error instead of the process refusing to start.
func LoadConfig() (*DashboardConfig, error) {
	cfg := &DashboardConfig{}

	if err := env.Parse(&cfg.Mongo); err != nil {
		return nil, errors.New("failed to load mongodb configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.DocDB); err != nil {
		return nil, errors.New("failed to load documentdb configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Redis); err != nil {
		return nil, errors.New("failed to load redis configuration from environment: " + err.Error())
	}

	if cfg.Mongo.ConnectTimeout <= 0 {
		cfg.Mongo.ConnectTimeout = 10 * time.Second
	}
	if cfg.Redis.StatsTTL < 0 {
		return nil, fmt.Errorf("STATS_CACHE_TTL must not be negative, got %s", cfg.Redis.StatsTTL)
	}

	return cfg, nil
}

// DefaultDashboardConfig returns a DashboardConfig pointing at a local MongoDB.
func DefaultDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Port:           "27017",
			Database:       "test",
			ConnectTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Host:            "localhost",
			Port:            "6379",
			MaxRetries:      3,
			PoolSize:        10,
			MinIdleConns:    2,
			ConnMaxIdleTime: "30m",
			ConnMaxLifetime: "1h",
			StatsTTL:        30 * time.Second,
		},
	}
}
