package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"warbler/database"
)

// Config is the app configuration. It is read from a .config.json file, and
// every key can be overridden by an environment variable prefixed with WARBLER_,
// e.g. WARBLER_PORT or WARBLER_DATABASE_HOST.
type Config struct {
	Port              int            `mapstructure:"port"`
	Env               string         `mapstructure:"env"`
	Pepper            string         `mapstructure:"pepper"`
	HMACKey           string         `mapstructure:"hmac_key"`
	CSRFKey           string         `mapstructure:"csrf_key"`
	BcryptCost        int            `mapstructure:"bcrypt_cost"`
	SessionUserKey    string         `mapstructure:"session_user_key"`
	CSRFEnabled       bool           `mapstructure:"csrf_enabled"`
	RequireAuthToView bool           `mapstructure:"require_auth_to_view"`
	Session           SessionConfig  `mapstructure:"session"`
	Redis             RedisConfig    `mapstructure:"redis"`
	Database          DatabaseConfig `mapstructure:"database"`
}

// IsProd reports whether the app runs in production.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// SessionConfig selects the session store.
type SessionConfig struct {
	// Store is either "redis" or "memory".
	Store string        `mapstructure:"store"`
	TTL   time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	// Path is the database file when Driver is sqlite.
	Path string `mapstructure:"path"`
}

// ConnectionInfo returns the connection string for the configured driver.
func (dc DatabaseConfig) ConnectionInfo() string {
	if dc.Driver == database.DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=1", dc.Path)
	}
	if dc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", dc.Host, dc.Port, dc.User, dc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", dc.Host, dc.Port, dc.User, dc.Password, dc.Name)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 1111)
	v.SetDefault("env", "dev")
	v.SetDefault("pepper", "secret-random-string")
	v.SetDefault("hmac_key", "secret-hmac-key")
	v.SetDefault("csrf_key", "32-byte-long-auth-key-for-dev-00")
	v.SetDefault("bcrypt_cost", 0)
	v.SetDefault("session_user_key", "curr_user")
	v.SetDefault("csrf_enabled", false)
	v.SetDefault("require_auth_to_view", true)
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("database.driver", database.DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "warbler")
	v.SetDefault("database.path", "warbler.db")
}

// LoadConfig loads a .env file and the .config.json file if present, otherwise the
// defaults for development are used. If configReq is true, a missing .config.json
// file is an error.
func LoadConfig(configReq bool) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(".config.json")
	v.SetEnvPrefix("WARBLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading .config.json: %w", err)
		}
		if configReq {
			return Config{}, errors.New("a .config.json file must be provided in production")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	if c.Session.Store != "memory" && c.Session.Store != "redis" {
		return Config{}, fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	if len(c.CSRFKey) != 32 {
		return Config{}, errors.New("csrf_key must be 32 bytes long")
	}
	return c, nil
}
