// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageBadger = "badger"
	StorageSQLite = "sqlite"
)

// Config is the complete set of BLOG_* settings.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	Storage         string        `env:"STORAGE" envDefault:"badger"`
	BadgerPath      string        `env:"BADGER_PATH" envDefault:"data/badger"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"data/blog.db"`
	BackupDir       string        `env:"BACKUP_DIR" envDefault:"data/backups"`
	StaticDir       string        `env:"STATIC_DIR" envDefault:"static"`
	SessionSecret   string        `env:"SESSION_SECRET"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"336h"`
	SecureCookies   bool          `env:"SECURE_COOKIES" envDefault:"false"`
	PageSize        int           `env:"PAGE_SIZE" envDefault:"10"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	Development     bool          `env:"DEV" envDefault:"false"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and then parses BLOG_* variables.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse(env.Options{Prefix: "BLOG_"})
}

// Parse builds a Config using opts, which lets tests inject variables
// through opts.Environment.
func Parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StorageBadger, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q (want %s or %s)", c.Storage, StorageBadger, StorageSQLite)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		return fmt.Errorf("session secret must be at least 32 bytes")
	}
	return nil
}
