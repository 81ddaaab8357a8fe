package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settingsEnv = []string{"BIZCALC_STORE", "DATABASE_URL", "SQLITE_PATH", "REDIS_ADDR", "BIZCALC_ADDR", "BIZCALC_TENANT"}

// clearSettingsEnv blanks every settings variable for the duration of the test.
func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, k := range settingsEnv {
		t.Setenv(k, "")
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	clearSettingsEnv(t)
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_FromEnv(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv("BIZCALC_STORE", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/history.db")
	t.Setenv("BIZCALC_TENANT", "acme")
	t.Setenv("BIZCALC_ADDR", ":9090")

	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, s.Store)
	assert.Equal(t, "/tmp/history.db", s.SQLitePath)
	assert.Equal(t, "acme", s.TenantID)
	assert.Equal(t, ":9090", s.Addr)
}

func TestLoadSettings_EnvFile(t *testing.T) {
	clearSettingsEnv(t)
	// godotenv does not override variables that are already present, even when
	// empty, so unset them for the file to take effect.
	for _, k := range settingsEnv {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Cleanup(func() {
		for _, k := range settingsEnv {
			_ = os.Unsetenv(k)
		}
	})

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BIZCALC_STORE=redis\nREDIS_ADDR=localhost:6379\n"), 0o600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, s.Store)
	assert.Equal(t, "localhost:6379", s.RedisAddr)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"memory", func(s *Settings) {}, ""},
		{"postgres without url", func(s *Settings) { s.Store = StorePostgres }, "DATABASE_URL"},
		{"postgres with url", func(s *Settings) { s.Store, s.DatabaseURL = StorePostgres, "postgres://localhost/bizcalc" }, ""},
		{"redis without addr", func(s *Settings) { s.Store = StoreRedis }, "REDIS_ADDR"},
		{"sqlite without path", func(s *Settings) { s.Store, s.SQLitePath = StoreSQLite, "" }, "SQLITE_PATH"},
		{"unknown backend", func(s *Settings) { s.Store = "mongo" }, "unknown store"},
		{"empty tenant", func(s *Settings) { s.TenantID = "" }, "tenant id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
