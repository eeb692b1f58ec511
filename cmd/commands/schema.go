package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"moviedb/cmd/output"
	"moviedb/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and check its foreign keys",
		Long: `Create any missing tables, then verify that every junction table
cascades deletes from both of its endpoints.

Examples:
  moviedb migrate
  moviedb migrate --driver sqlite --sqlite-path ./movies.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLiveSchema(cmd.Context(), func(ctx context.Context, db *database.Database) error {
				if err := db.Migrate(ctx); err != nil {
					return err
				}
				reports, err := db.Verify(ctx)
				if a.jsonOutput {
					if jerr := output.JSON(cmd.OutOrStdout(), reports); jerr != nil {
						return jerr
					}
					return err
				}
				if err != nil {
					printReports(cmd, reports)
					return err
				}
				output.Success(cmd.OutOrStdout(), "Schema ready on %s (%d junction tables)", db.Driver(), len(reports))
				return nil
			})
		},
	}
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check junction tables and their cascading foreign keys",
		Long: `Inspect the live catalog and report, per junction table, whether it
exists and whether both foreign keys delete with CASCADE. Exits non-zero on
any mismatch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLiveSchema(cmd.Context(), func(ctx context.Context, db *database.Database) error {
				reports, err := db.Verify(ctx)
				if err != nil && !errors.Is(err, database.ErrSchemaMismatch) {
					return err
				}
				if a.jsonOutput {
					if jerr := output.JSON(cmd.OutOrStdout(), reports); jerr != nil {
						return jerr
					}
					return err
				}
				printReports(cmd, reports)
				return err
			})
		},
	}
}

func printReports(cmd *cobra.Command, reports []database.TableReport) {
	w := cmd.OutOrStdout()
	output.Section(w, "Junction tables")

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		fks := make([]string, 0, len(r.ForeignKeys))
		for _, fk := range r.ForeignKeys {
			fks = append(fks, fmt.Sprintf("%s->%s (%s)", fk.Column, fk.ReferencedTable, fk.OnDelete))
		}
		rows = append(rows, []string{output.StatusIcon(r.OK()), r.Table, strings.Join(fks, ", ")})
	}
	_ = output.Table(w, []string{"", "TABLE", "FOREIGN KEYS"}, rows)

	failed := 0
	for _, r := range reports {
		for _, p := range r.Problems {
			output.Error(w, "%s: %s", r.Table, p)
		}
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		output.Warning(w, "%d of %d junction tables need attention", failed, len(reports))
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count the rows of every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDatabase(cmd.Context(), func(ctx context.Context, db *database.Database) error {
				counts, err := db.Stats(ctx)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return output.JSON(cmd.OutOrStdout(), counts)
				}

				rows := make([][]string, 0, len(counts))
				for _, c := range counts {
					rows = append(rows, []string{c.Table, strconv.FormatInt(c.Rows, 10)})
				}
				return output.Table(cmd.OutOrStdout(), []string{"TABLE", "ROWS"}, rows)
			})
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every row, keeping the schema",
		Long: `Delete every row from the junction tables, the reference tables and
movies. The tables themselves are kept. Requires --yes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to reset without --yes")
			}
			return a.withDatabase(cmd.Context(), func(ctx context.Context, db *database.Database) error {
				if err := db.Reset(ctx); err != nil {
					return err
				}
				if a.jsonOutput {
					return output.JSON(cmd.OutOrStdout(), map[string]int{"tables_cleared": len(database.Tables())})
				}
				output.Success(cmd.OutOrStdout(), "Cleared %d tables", len(database.Tables()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deleting all data")
	return cmd
}
