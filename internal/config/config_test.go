package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_QUERY_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "movie_db", cfg.Database.DBName)
	assert.Equal(t, 10*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Database.AutoMigrate)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/movies.db")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("DB_QUERY_TIMEOUT", "2s")
	t.Setenv("DB_MAX_IDLE_CONNS", "not-a-number")
	t.Setenv("DB_PREPARE_STMT", "false")

	cfg := Load()

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 3, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 2*time.Second, cfg.Database.QueryTimeout)
	assert.False(t, cfg.Database.PrepareStmt)
	require.NoError(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	sqlite := DatabaseConfig{Driver: DriverSQLite, SQLitePath: "/data/m.db"}
	assert.Equal(t, "file:/data/m.db?_foreign_keys=on&_busy_timeout=5000", sqlite.DSN())

	pg := DatabaseConfig{Driver: DriverPostgres, Host: "db", Port: "5434", User: "u", Password: "p", DBName: "movie_db", SSLMode: "disable"}
	dsn := pg.DSN()
	assert.True(t, strings.HasPrefix(dsn, "host=db user=u password=p dbname=movie_db port=5434"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported DB_DRIVER"},
		{"missing host", func(c *Config) { c.Database.Host = "" }, "DB_HOST"},
		{"missing sqlite path", func(c *Config) {
			c.Database.Driver = DriverSQLite
			c.Database.SQLitePath = ""
		}, "DB_SQLITE_PATH"},
		{"zero timeout", func(c *Config) { c.Database.QueryTimeout = 0 }, "DB_QUERY_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Database: DatabaseConfig{
				Driver:       DriverPostgres,
				Host:         "localhost",
				DBName:       "movie_db",
				QueryTimeout: time.Second,
			}}
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
