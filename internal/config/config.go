// Package config holds runtime settings for the vault program.
//
// Values are resolved in order: defaults, an optional JSON file named by
// -config, then command-line flags. Later sources win.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pkgcrypto "github.com/and161185/secure-vault/internal/crypto"
)

// Store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Config holds runtime settings.
type Config struct {
	Store          string
	DataDir        string
	DSN            string
	LogLevel       string
	MigrateOnStart bool
	KDF            pkgcrypto.KDF
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.Store = StoreFile
	c.DataDir = defaultDataDir()
	c.DSN = ""
	c.LogLevel = "warn"
	c.MigrateOnStart = true
	c.KDF = pkgcrypto.DefaultKDF
}

// Load resolves the configuration from args (without the program name) and
// returns the remaining positional arguments.
func Load(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	path, err := configPath(args)
	if err != nil {
		return nil, nil, err
	}
	if path != "" {
		if err := parseJSON(cfg, path); err != nil {
			return nil, nil, err
		}
	}

	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}

// Validate checks the settings are usable together.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile:
		if c.DataDir == "" {
			return errors.New("config: data dir is required for the file store")
		}
	case StorePostgres:
		if c.DSN == "" {
			return errors.New("config: dsn is required for the postgres store")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if !c.KDF.Valid() {
		return fmt.Errorf("config: invalid kdf parameters %+v", c.KDF)
	}
	return nil
}

func defaultDataDir() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return filepath.Join(v, "secure-vault")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "vault-data"
	}
	return filepath.Join(home, ".local", "share", "secure-vault")
}
