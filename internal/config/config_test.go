package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9000
  mode: release
database:
  driver: sqlite
  path: market.db
jwt:
  secret: s3cret
  expire_hours: 2
listings:
  expiry_days: 7
  feed_limit: 50
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "market.db", cfg.Database.Path)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 2, cfg.JWT.ExpireHours)
	assert.Equal(t, 7, cfg.Listings.ExpiryDays)
	assert.Equal(t, 50, cfg.Listings.FeedLimit)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, "static/photos", cfg.Uploads.Dir)
	assert.Equal(t, "/static/photos/", cfg.Uploads.URLPrefix)
	assert.Equal(t, 10, cfg.Listings.ExpiryDays)
	assert.Equal(t, 100, cfg.Listings.FeedLimit)
	assert.Equal(t, 15, cfg.Listings.SweepIntervalMin)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  host: confighost
jwt:
  secret: from-file
`)

	t.Setenv("DB_HOST", "envhost")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_EXPIRE_HOURS", "6")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "envhost", cfg.Database.Host)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 6, cfg.JWT.ExpireHours)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "market", Password: "pw",
		DBName: "market", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=market password=pw dbname=market sslmode=disable", cfg.DSN())
}
