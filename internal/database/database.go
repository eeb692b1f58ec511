package database

import (
	"context"
	"fmt"
	"time"

	"moviedb/internal/config"
	"moviedb/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	*gorm.DB
	config config.DatabaseConfig
	log    *logrus.Logger
}

// Connect opens the configured driver and, when enabled, migrates the schema.
func Connect(cfg config.DatabaseConfig, log *logrus.Logger) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	database, err := Open(dialector, cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := database.Migrate(ctx); err != nil {
			_ = database.Close()
			return nil, err
		}
	}

	return database, nil
}

// Open wraps an already chosen dialector. It pings and sizes the pool but
// does not touch the schema.
func Open(dialector gorm.Dialector, cfg config.DatabaseConfig, log *logrus.Logger) (*Database, error) {
	gormConfig := &gorm.Config{
		Logger: newGormLogger(log, cfg.SlowQueryThreshold),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: cfg.PrepareStmt,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Error("Failed to get underlying sql.DB")
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		log.WithError(err).Error("Failed to ping database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	log.WithField("driver", db.Dialector.Name()).Info("Database connection established successfully")

	return &Database{
		DB:     db,
		config: cfg,
		log:    log,
	}, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates the endpoint tables first and the junction tables second,
// with foreign keys on both junction columns.
func (d *Database) Migrate(ctx context.Context) error {
	d.log.Info("Running auto migration...")

	db := d.DB.WithContext(ctx)
	if err := db.AutoMigrate(models.EndpointModels()...); err != nil {
		d.log.WithError(err).Error("Failed to migrate endpoint tables")
		return fmt.Errorf("failed to migrate endpoint tables: %w", err)
	}
	if err := db.AutoMigrate(models.JunctionModels()...); err != nil {
		d.log.WithError(err).Error("Failed to migrate junction tables")
		return fmt.Errorf("failed to migrate junction tables: %w", err)
	}

	d.log.Info("Auto migration completed successfully")
	return nil
}

func (d *Database) WithContext(ctx context.Context) *gorm.DB {
	return d.DB.WithContext(ctx)
}

func (d *Database) GetQueryTimeout() time.Duration {
	return d.config.QueryTimeout
}

// Driver reports the dialect name gorm resolved ("postgres" or "sqlite").
func (d *Database) Driver() string {
	return d.DB.Dialector.Name()
}

func (d *Database) HealthCheck() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newGormLogger routes gorm's statement log through logrus. Only slow
// queries and errors are reported; missing rows are expected lookups.
func newGormLogger(log *logrus.Logger, slow time.Duration) logger.Interface {
	level := logger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	return logger.New(log.WithField("component", "gorm"), logger.Config{
		SlowThreshold:             slow,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
