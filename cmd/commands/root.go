package commands

import (
	"context"
	"fmt"
	"strconv"

	"moviedb/internal/config"
	"moviedb/internal/database"
	"moviedb/internal/repository"
	"moviedb/internal/services"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	cfg *config.Config
	log *logrus.Logger

	driver     string
	sqlitePath string
	jsonOutput bool

	runID string
}

// runIDHook stamps every log entry with the run id of the current
// invocation.
type runIDHook struct {
	app *app
}

func (h runIDHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h runIDHook) Fire(entry *logrus.Entry) error {
	if h.app.runID != "" {
		entry.Data["run_id"] = h.app.runID
	}
	return nil
}

// NewRootCmd builds the moviedb command tree over cfg. Flags override the
// matching environment settings.
func NewRootCmd(cfg *config.Config, log *logrus.Logger) *cobra.Command {
	a := &app{cfg: cfg, log: log}
	log.AddHook(runIDHook{app: a})

	root := &cobra.Command{
		Use:   "moviedb",
		Short: "Manage the movie metadata schema",
		Long: `moviedb creates and checks the movie metadata schema: movies, the six
reference tables (people, genres, keywords, companies, countries, languages)
and the junction tables linking them, whose foreign keys cascade on delete.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.prepare,
	}

	root.PersistentFlags().StringVar(&a.driver, "driver", "", "Database driver: postgres or sqlite (overrides DB_DRIVER)")
	root.PersistentFlags().StringVar(&a.sqlitePath, "sqlite-path", "", "SQLite database file (overrides DB_SQLITE_PATH)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")

	root.AddCommand(
		newMigrateCmd(a),
		newVerifyCmd(a),
		newStatsCmd(a),
		newResetCmd(a),
		newDeleteCmd(a),
		newDescribeCmd(a),
		newAttachCmd(a),
		newMovieCmd(a),
		newQueryCmd(a),
	)
	return root
}

func (a *app) prepare(cmd *cobra.Command, args []string) error {
	if a.driver != "" {
		a.cfg.Database.Driver = a.driver
	}
	if a.sqlitePath != "" {
		a.cfg.Database.SQLitePath = a.sqlitePath
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.runID = uuid.NewString()
	a.log.WithFields(logrus.Fields{
		"command": cmd.Name(),
		"driver":  a.cfg.Database.Driver,
	}).Info("Starting")
	return nil
}

// withDatabase runs fn against an open database and closes it afterwards.
// The schema is migrated on connect when DB_AUTO_MIGRATE is set.
func (a *app) withDatabase(ctx context.Context, fn func(context.Context, *database.Database) error) error {
	return a.open(ctx, a.cfg.Database, fn)
}

// withLiveSchema is withDatabase without the automatic migration, for
// commands that inspect or create the schema themselves.
func (a *app) withLiveSchema(ctx context.Context, fn func(context.Context, *database.Database) error) error {
	cfg := a.cfg.Database
	cfg.AutoMigrate = false
	return a.open(ctx, cfg, fn)
}

func (a *app) open(ctx context.Context, cfg config.DatabaseConfig, fn func(context.Context, *database.Database) error) error {
	db, err := database.Connect(cfg, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			a.log.WithError(err).Error("Error closing database connection")
		}
	}()
	return fn(ctx, db)
}

func (a *app) service(db *database.Database) services.MetadataService {
	return services.NewMetadataService(repository.NewRepositories(db), a.log)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
