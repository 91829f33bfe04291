// Package db opens and migrates the relational store.
package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authentity "survey_backend/internal/feature/auth/domain/entity"
	surveyadapters "survey_backend/internal/feature/surveys/adapters"
)

// Supported values of Config.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Config holds database connection settings.
type Config struct {
	Driver        string `yaml:"driver"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Name          string `yaml:"name"`
	Host          string `yaml:"host"`
	Port          string `yaml:"port"`
	SSLMode       string `yaml:"sslmode"`
	InstanceName  string `yaml:"instance_connection_name"`
	SQLitePath    string `yaml:"sqlite_path"`
	RunMigrations bool   `yaml:"run_migrations"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Driver:     DriverPostgres,
		Host:       "localhost",
		Port:       "5432",
		SSLMode:    "disable",
		SQLitePath: "survey.db",
	}
}

// LoadConfigFromEnv reads database settings from environment variables on top of DefaultConfig.
func LoadConfigFromEnv() Config {
	return ApplyEnv(DefaultConfig())
}

// ApplyEnv overrides cfg with every database environment variable that is set.
func ApplyEnv(cfg Config) Config {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set("DB_DRIVER", &cfg.Driver)
	set("DB_USER", &cfg.User)
	set("DB_PASSWORD", &cfg.Password)
	set("DB_NAME", &cfg.Name)
	set("DB_HOST", &cfg.Host)
	set("DB_PORT", &cfg.Port)
	set("DB_SSLMODE", &cfg.SSLMode)
	set("INSTANCE_CONNECTION_NAME", &cfg.InstanceName)
	set("SQLITE_PATH", &cfg.SQLitePath)
	if v, ok := os.LookupEnv("RUN_MIGRATIONS"); ok {
		cfg.RunMigrations = v == "true"
	}
	return cfg
}

// BuildDSN returns the connection string for cfg.Driver.
// For PostgreSQL, a Cloud SQL instance name takes precedence over host and port.
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		path := cfg.SQLitePath
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + "_foreign_keys=on"
	}

	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name, sslmode)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(retryInterval)
	}
}

// OpenerFor returns the Opener matching cfg.Driver.
func OpenerFor(cfg Config) (Opener, error) {
	gcfg := &gorm.Config{TranslateError: true}
	switch cfg.Driver {
	case DriverPostgres, "":
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gcfg)
		}, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			db, err := gorm.Open(sqlite.Open(dsn), gcfg)
			if err != nil {
				return nil, err
			}
			if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
				return nil, err
			}
			return db, nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// Open connects with retry and migrates the schema when cfg.RunMigrations is set.
func Open(cfg Config, timeout time.Duration) (*gorm.DB, error) {
	open, err := OpenerFor(cfg)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, open)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// SQLite serializes writers.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the users and survey_entries tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&authentity.User{},
		&surveyadapters.EntryModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
