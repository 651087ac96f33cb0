package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Driver       string
		DSN          string
		MaxOpenConns int
	}
	Auth struct {
		SessionSecret     string
		SessionTTLMinutes int
		CookieName        string
		SecureCookie      bool
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// existing environment wins over .env
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/board.db")
	v.SetDefault("database.maxopenconns", 10)
	v.SetDefault("auth.sessionsecret", "")
	v.SetDefault("auth.sessionttlminutes", 60*24)
	v.SetDefault("auth.cookiename", "board_session")
	v.SetDefault("auth.securecookie", false)
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate reports configuration that the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.SessionSecret) == "" {
		return fmt.Errorf("auth session secret is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Auth.SessionTTLMinutes <= 0 {
		return fmt.Errorf("auth session ttl must be positive")
	}
	return nil
}
