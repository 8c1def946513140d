package config

import (
	"errors"

	"github.com/caarlos0/env/v6"
)

// EnvironmentStoreConfig locates the connection profile store.
type EnvironmentStoreConfig struct {
	// Path is the Badger directory. Empty keeps profiles in memory only.
	Path string `env:"ENVIRONMENTS_PATH"`

	// Secret derives the key that seals stored passwords. Without it the
	// store refuses to persist any password.
	Secret string `env:"ENVIRONMENTS_SECRET" json:"-"`
}

// InMemory reports whether profiles are lost on restart.
func (c *EnvironmentStoreConfig) InMemory() bool {
	return c.Path == ""
}

// CanSealPasswords reports whether a sealing secret is configured.
func (c *EnvironmentStoreConfig) CanSealPasswords() bool {
	return c.Secret != ""
}

// LoadConfig reads the store configuration from the environment.
func LoadConfig() (*EnvironmentStoreConfig, error) {
	cfg := &EnvironmentStoreConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load environment store configuration: " + err.Error())
	}
	return cfg, nil
}
