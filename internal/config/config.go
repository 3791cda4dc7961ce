package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Env  string
	Port string

	// Sessions
	SecretKey  string
	SessionTTL time.Duration

	// Database
	DBDriver    string
	DBPath      string
	DatabaseURL string
}

const (
	defaultPort       = "5000"
	defaultSecretKey  = "dev-key-change-me"
	defaultSessionTTL = 24 * time.Hour
	defaultDBPath     = "instance/budget.db"
)

// Load reads configuration from a .env file (if present), an optional YAML
// file named by CONFIG_FILE and the process environment, in increasing order
// of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	v.SetDefault("env", "development")
	v.SetDefault("port", defaultPort)
	v.SetDefault("secret_key", defaultSecretKey)
	v.SetDefault("session_ttl", defaultSessionTTL.String())
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_path", defaultDBPath)
	v.SetDefault("database_url", "")
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Env:         strings.ToLower(strings.TrimSpace(v.GetString("env"))),
		Port:        v.GetString("port"),
		SecretKey:   v.GetString("secret_key"),
		DBDriver:    strings.ToLower(strings.TrimSpace(v.GetString("db_driver"))),
		DBPath:      v.GetString("db_path"),
		DatabaseURL: v.GetString("database_url"),
	}

	ttlStr := v.GetString("session_ttl")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		log.Printf("Warning: invalid SESSION_TTL value '%s', falling back to %s\n", ttlStr, defaultSessionTTL)
		ttl = defaultSessionTTL
	}
	cfg.SessionTTL = ttl

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot produce a working server.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY must not be empty")
	}
	if c.IsProduction() && c.SecretKey == defaultSecretKey {
		return errors.New("SECRET_KEY must be set in production")
	}
	return nil
}

// IsProduction reports whether the server runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
