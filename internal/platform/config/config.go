// Package config loads application settings from an optional YAML file,
// an optional .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"survey_backend/internal/platform/db"
	"survey_backend/internal/platform/redis"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig `yaml:"server"`
	Database db.Config    `yaml:"database"`
	Redis    RedisConfig  `yaml:"redis"`
	Auth     AuthConfig   `yaml:"auth"`
	Survey   SurveyConfig `yaml:"survey"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr            string  `yaml:"addr"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
}

// RedisConfig holds the optional cache settings.
type RedisConfig struct {
	redis.Config    `yaml:",inline"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the list cache lifetime.
func (c RedisConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// AuthConfig holds token and bootstrap admin settings.
type AuthConfig struct {
	JWTSecret            string `yaml:"jwt_secret"`
	JWTExpirationMinutes int    `yaml:"jwt_expiration_minutes"`
	AdminUsername        string `yaml:"admin_username"`
	AdminPassword        string `yaml:"admin_password"`
}

// JWTExpiration returns the token lifetime.
func (c AuthConfig) JWTExpiration() time.Duration {
	return time.Duration(c.JWTExpirationMinutes) * time.Minute
}

// SurveyConfig holds survey entry settings.
type SurveyConfig struct {
	PhoneDefaultRegion string `yaml:"phone_default_region"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			RateLimitPerSec: 10,
			RateLimitBurst:  20,
		},
		Database: db.DefaultConfig(),
		Redis: RedisConfig{
			Config:          redis.Config{Port: "6379"},
			CacheTTLSeconds: 300,
		},
		Auth: AuthConfig{
			JWTExpirationMinutes: 24 * 60,
		},
		Survey: SurveyConfig{
			PhoneDefaultRegion: "IN",
		},
	}
}

// Load builds the configuration. envFile is loaded with godotenv when it exists;
// CONFIG_PATH, when set, names a YAML file applied before the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.JWTExpirationMinutes <= 0 {
		return errors.New("JWT_EXPIRATION_MINUTES must be positive")
	}
	switch c.Database.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if (c.Auth.AdminUsername == "") != (c.Auth.AdminPassword == "") {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func loadYAML(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Database = db.ApplyEnv(cfg.Database)

	setString("HTTP_ADDR", &cfg.Server.Addr)
	setString("REDIS_HOST", &cfg.Redis.Host)
	setString("REDIS_PORT", &cfg.Redis.Port)
	setString("REDIS_PASSWORD", &cfg.Redis.Password)
	setString("JWT_SECRET", &cfg.Auth.JWTSecret)
	setString("ADMIN_USERNAME", &cfg.Auth.AdminUsername)
	setString("ADMIN_PASSWORD", &cfg.Auth.AdminPassword)
	setString("PHONE_DEFAULT_REGION", &cfg.Survey.PhoneDefaultRegion)

	if err := setInt("CACHE_TTL_SECONDS", &cfg.Redis.CacheTTLSeconds); err != nil {
		return err
	}
	if err := setInt("JWT_EXPIRATION_MINUTES", &cfg.Auth.JWTExpirationMinutes); err != nil {
		return err
	}
	if err := setInt("RATE_LIMIT_BURST", &cfg.Server.RateLimitBurst); err != nil {
		return err
	}
	if v := os.Getenv("RATE_LIMIT_PER_SEC"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_PER_SEC: %w", err)
		}
		cfg.Server.RateLimitPerSec = f
	}
	return nil
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
