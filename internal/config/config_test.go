package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/board.db", cfg.Database.DSN)
	assert.Equal(t, "board_session", cfg.Auth.CookieName)
	assert.Equal(t, 1440, cfg.Auth.SessionTTLMinutes)
	assert.Error(t, cfg.Validate(), "session secret has no default")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BOARD_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("BOARD_DATABASE_DRIVER", "postgres")
	t.Setenv("BOARD_DATABASE_DSN", "postgres://board@localhost/board")
	t.Setenv("BOARD_AUTH_SESSIONSECRET", "s3cret")
	t.Setenv("BOARD_AUTH_SECURECOOKIE", "true")
	t.Setenv("BOARD_AUTH_SESSIONTTLMINUTES", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://board@localhost/board", cfg.Database.DSN)
	assert.Equal(t, "s3cret", cfg.Auth.SessionSecret)
	assert.True(t, cfg.Auth.SecureCookie)
	assert.Equal(t, 30, cfg.Auth.SessionTTLMinutes)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	var cfg Config
	cfg.Auth.SessionSecret = "x"
	cfg.Auth.SessionTTLMinutes = 10
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "board.db"
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Database.Driver = "mysql"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Database.DSN = " "
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Auth.SessionTTLMinutes = 0
	assert.Error(t, bad.Validate())
}
