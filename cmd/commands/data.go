package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"moviedb/cmd/output"
	"moviedb/internal/database"
	"moviedb/internal/models"
	"moviedb/internal/services"

	"github.com/spf13/cobra"
)

const kindMovie = "movie"

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a movie or reference row and report the cascade",
		Long: `Delete one row and report how many junction rows the database removed
with it. kind is movie, person, genre, keyword, company, country or language.

Examples:
  moviedb delete movie 550
  moviedb delete genre 18 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}

			kind := strings.ToLower(strings.TrimSpace(args[0]))
			var entityKind models.EntityKind
			if kind != kindMovie {
				if entityKind, err = models.ParseEntityKind(kind); err != nil {
					return err
				}
			}

			return a.withDatabase(cmd.Context(), func(ctx context.Context, db *database.Database) error {
				svc := a.service(db)

				counts := services.LinkCounts{}
				if kind == kindMovie {
					if counts, err = svc.DeleteMovie(ctx, id); err != nil {
						return err
					}
				} else {
					j, _ := models.JunctionFor(entityKind)
					n, err := svc.DeleteEntity(ctx, entityKind, id)
					if err != nil {
						return err
					}
					counts[j.Table] = n
				}

				if a.jsonOutput {
					return output.JSON(cmd.OutOrStdout(), map[string]interface{}{
						"kind":     kind,
						"id":       id,
						"cascaded": counts,
					})
				}
				output.Success(cmd.OutOrStdout(), "Deleted %s %d, %d junction rows removed", kind, id, counts.Total())
				return output.Table(cmd.OutOrStdout(), []string{"TABLE", "ROWS"}, countRows(counts))
			})
		},
	}
}

func countRows(counts services.LinkCounts) [][]string {
	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	rows := make([][]string, 0, len(tables))
	for _, table := range tables {
		rows = append(rows, []string{table, strconv.FormatInt(counts[table], 10)})
	}
	return rows
}

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <movie-id>",
		Short: "Show a movie with everything linked to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withDatabase(cmd.Context(), func(ctx context.Context, db *database.Database) error {
				details, err := a.service(db).Describe(ctx, id)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return output.JSON(cmd.OutOrStdout(), details)
				}
				printDetails(cmd, details)
				return nil
			})
		},
	}
}

func printDetails(cmd *cobra.Command, d *services.MovieDetails) {
	w := cmd.OutOrStdout()
	title := d.Movie.Title
	if d.Movie.ReleaseYear != nil {
		title = fmt.Sprintf("%s (%d)", title, *d.Movie.ReleaseYear)
	}
	output.Section(w, title)

	var rows [][]string
	for _, c := range append(append([]models.MoviePerson{}, d.Cast...), d.Crew...) {
		name := strconv.FormatUint(uint64(c.PersonID), 10)
		if c.Person != nil {
			name = c.Person.Name
		}
		rows = append(rows, []string{string(c.Role), name, strconv.Itoa(c.Importance)})
	}
	_ = output.Table(w, []string{"ROLE", "NAME", "ORDER"}, rows)
	fmt.Fprintln(w)

	names := func(label string, list []string) {
		if len(list) > 0 {
			output.Info(w, "%s: %s", label, strings.Join(list, ", "))
		}
	}
	names("Genres", collect(d.Genres, func(e models.Genre) string { return e.Name }))
	names("Keywords", collect(d.Keywords, func(e models.Keyword) string { return e.Name }))
	names("Companies", collect(d.Companies, func(e models.Company) string { return e.Name }))
	names("Countries", collect(d.Countries, func(e models.Country) string { return e.Name }))
	names("Languages", collect(d.Languages, func(e models.Language) string { return e.Name }))
}

func collect[E any](list []E, name func(E) string) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, name(e))
	}
	return out
}

func newAttachCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "attach <movie-id>",
		Short: "Link reference names to a movie from a JSON file",
		Long: `Read credits, genres, keywords, companies, countries and languages from
a JSON file and link them to an existing movie. Missing names are created;
links that already exist are skipped.

Example file:
  {"credits": [{"name": "Michael Mann", "role": "director"}],
   "genres": ["Crime", "Thriller"]}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			meta, err := readMetadata(file)
			if err != nil {
				return err
			}

			return a.withDatabase(cmd.Context(), func(ctx context.Context, db *database.Database) error {
				counts, err := a.service(db).AttachMetadata(ctx, id, meta)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return output.JSON(cmd.OutOrStdout(), counts)
				}
				output.Success(cmd.OutOrStdout(), "Linked %d rows to movie %d", counts.Total(), id)
				return output.Table(cmd.OutOrStdout(), []string{"TABLE", "ROWS"}, countRows(counts))
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON metadata file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readMetadata(path string) (services.MovieMetadata, error) {
	var meta services.MovieMetadata

	data, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("failed to read metadata file: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse metadata file %s: %w", path, err)
	}
	return meta, nil
}
