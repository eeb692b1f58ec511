package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Database DatabaseConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Driver             string
	Host               string
	Port               string
	User               string
	Password           string
	DBName             string
	SSLMode            string
	SQLitePath         string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	QueryTimeout       time.Duration
	SlowQueryThreshold time.Duration
	PrepareStmt        bool
	AutoMigrate        bool
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:             strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverPostgres)),
			Host:               getEnvOrDefault("DB_HOST", "localhost"),
			Port:               getEnvOrDefault("DB_PORT", "5432"),
			User:               getEnvOrDefault("DB_USER", "postgres"),
			Password:           getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:             getEnvOrDefault("DB_NAME", "movie_db"),
			SSLMode:            getEnvOrDefault("DB_SSLMODE", "disable"),
			SQLitePath:         getEnvOrDefault("DB_SQLITE_PATH", "movie_db.sqlite"),
			MaxOpenConns:       getIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:    getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			QueryTimeout:       getDurationOrDefault("DB_QUERY_TIMEOUT", 10*time.Second),
			SlowQueryThreshold: getDurationOrDefault("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),
			PrepareStmt:        getBoolOrDefault("DB_PREPARE_STMT", true),
			AutoMigrate:        getBoolOrDefault("DB_AUTO_MIGRATE", true),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}
}

// DSN returns the connection string for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		// go-sqlite3 leaves foreign keys off unless asked per connection.
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.SQLitePath)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", c.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
