package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends accepted in BIZCALC_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Settings are the runtime knobs of the CLI and the HTTP server.
type Settings struct {
	Store       string
	DatabaseURL string
	SQLitePath  string
	RedisAddr   string
	Addr        string
	TenantID    string
}

// DefaultSettings returns settings for a local, in-memory run.
func DefaultSettings() Settings {
	return Settings{
		Store:      StoreMemory,
		SQLitePath: "bizcalc.db",
		Addr:       ":8080",
		TenantID:   "default",
	}
}

// LoadSettings reads and validates settings. See ReadSettings.
func LoadSettings(envFiles ...string) (Settings, error) {
	s, err := ReadSettings(envFiles...)
	if err != nil {
		return Settings{}, err
	}
	return s, s.Validate()
}

// ReadSettings reads settings from the environment after loading envFiles
// (default ".env") without validating them, so callers can apply flag
// overrides first. Missing env files are ignored; variables already set in
// the process environment win over the file.
func ReadSettings(envFiles ...string) (Settings, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	s := DefaultSettings()
	if v := os.Getenv("BIZCALC_STORE"); v != "" {
		s.Store = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		s.DatabaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		s.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		s.RedisAddr = v
	}
	if v := os.Getenv("BIZCALC_ADDR"); v != "" {
		s.Addr = v
	}
	if v := os.Getenv("BIZCALC_TENANT"); v != "" {
		s.TenantID = v
	}
	return s, nil
}

// Validate checks that the selected backend has what it needs.
func (s Settings) Validate() error {
	switch s.Store {
	case StoreMemory:
	case StoreSQLite:
		if s.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if s.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable not set")
		}
	case StoreRedis:
		if s.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR environment variable not set")
		}
	default:
		return fmt.Errorf("unknown store %q (want memory, sqlite, postgres or redis)", s.Store)
	}
	if s.TenantID == "" {
		return fmt.Errorf("tenant id is required")
	}
	return nil
}
