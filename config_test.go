package main

import (
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/auth"
	"warbler/database"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	c, err := LoadConfig(false)
	require.NoError(t, err)
	assert.Equal(t, 1111, c.Port)
	assert.False(t, c.IsProd())
	assert.Equal(t, "curr_user", c.SessionUserKey)
	assert.True(t, c.RequireAuthToView)
	assert.False(t, c.CSRFEnabled)
	assert.Equal(t, "memory", c.Session.Store)
	assert.Equal(t, 168*time.Hour, c.Session.TTL)
	assert.Equal(t, database.DriverPostgres, c.Database.Driver)
	assert.Equal(t, "host=localhost port=5432 user=postgres dbname=warbler sslmode=disable", c.Database.ConnectionInfo())
}

func TestLoadConfig_Required(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := LoadConfig(true)
	assert.Error(t, err)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	file := `{
		"port": 8080,
		"env": "prod",
		"require_auth_to_view": false,
		"session": {"store": "redis", "ttl": "1h"},
		"database": {"driver": "sqlite", "path": "test.db"}
	}`
	require.NoError(t, os.WriteFile(".config.json", []byte(file), 0o600))
	t.Setenv("WARBLER_PORT", "9090")
	t.Setenv("WARBLER_REDIS_URL", "redis://cache:6379/1")

	c, err := LoadConfig(true)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Port)
	assert.True(t, c.IsProd())
	assert.False(t, c.RequireAuthToView)
	assert.Equal(t, "redis", c.Session.Store)
	assert.Equal(t, time.Hour, c.Session.TTL)
	assert.Equal(t, "redis://cache:6379/1", c.Redis.URL)
	assert.Equal(t, "file:test.db?_foreign_keys=1", c.Database.ConnectionInfo())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	chdir(t, t.TempDir())
	// Register a cleanup that restores the variable godotenv is about to set.
	t.Setenv("WARBLER_PEPPER", "")
	require.NoError(t, os.Unsetenv("WARBLER_PEPPER"))
	require.NoError(t, os.WriteFile(".env", []byte("WARBLER_PEPPER=from-dotenv\n"), 0o600))

	c, err := LoadConfig(false)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", c.Pepper)
}

func TestLoadConfig_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("WARBLER_SESSION_STORE", "disk")
	_, err := LoadConfig(false)
	assert.ErrorContains(t, err, "session store")

	t.Setenv("WARBLER_SESSION_STORE", "memory")
	t.Setenv("WARBLER_CSRF_KEY", "short")
	_, err = LoadConfig(false)
	assert.ErrorContains(t, err, "csrf_key")
}

func TestDatabaseConfig_ConnectionInfoWithPassword(t *testing.T) {
	dc := DatabaseConfig{Driver: database.DriverPostgres, Host: "db", Port: 5433, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", dc.ConnectionInfo())
}

func TestNewSessionStore(t *testing.T) {
	store, err := newSessionStore(Config{Session: SessionConfig{Store: "memory"}})
	require.NoError(t, err)
	assert.IsType(t, &auth.MemoryStore{}, store)

	mr := miniredis.RunT(t)
	store, err = newSessionStore(Config{
		Session: SessionConfig{Store: "redis"},
		Redis:   RedisConfig{URL: "redis://" + mr.Addr()},
	})
	require.NoError(t, err)
	assert.IsType(t, &auth.RedisStore{}, store)

	_, err = newSessionStore(Config{Session: SessionConfig{Store: "redis"}, Redis: RedisConfig{URL: "::bad"}})
	assert.Error(t, err)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
