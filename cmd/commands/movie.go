package commands

import (
	"context"

	"moviedb/cmd/output"
	"moviedb/internal/database"
	"moviedb/internal/models"
	"moviedb/internal/repository"

	"github.com/spf13/cobra"
)

func newMovieCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movie",
		Short: "Add and list movies",
	}
	cmd.AddCommand(newMovieAddCmd(a), newMovieListCmd(a))
	return cmd
}

func newMovieAddCmd(a *app) *cobra.Command {
	var (
		movie       models.Movie
		id          uint
		year        int
		voteAverage float64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Insert one movie",
		Long: `Insert one movie so that metadata can be attached to it. Without --id
the database assigns the next id.

Examples:
  moviedb movie add --id 949 --title Heat --year 1995 --rating 7.9
  moviedb movie add --title Ronin --language en`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			movie.ID = id
			movie.VoteAverage = voteAverage
			if year != 0 {
				movie.ReleaseYear = &year
			}

			return a.withDatabase(cmd.Context(), func(ctx context.Context, db *database.Database) error {
				if err := repository.NewMovieRepository(db).Create(ctx, &movie); err != nil {
					return err
				}
				a.log.WithField("movie_id", movie.ID).Info("Movie added")

				if a.jsonOutput {
					return output.JSON(cmd.OutOrStdout(), movie)
				}
				output.Success(cmd.OutOrStdout(), "Added movie %d: %s", movie.ID, movie.Title)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.UintVar(&id, "id", 0, "Movie id (default: assigned by the database)")
	flags.StringVar(&movie.Title, "title", "", "Title (required)")
	flags.IntVar(&year, "year", 0, "Release year")
	flags.Float64Var(&voteAverage, "rating", 0, "Vote average")
	flags.StringVar(&movie.OriginalLanguage, "language", "", "Original language code, e.g. en")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newMovieListCmd(a *app) *cobra.Command {
	var (
		page, limit int
		search      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movies, optionally filtered by title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDatabase(cmd.Context(), func(ctx context.Context, db *database.Database) error {
				movies, total, err := repository.NewMovieRepository(db).FindAll(ctx, page, limit, search)
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return output.JSON(cmd.OutOrStdout(), map[string]interface{}{
						"movies": movies,
						"total":  total,
					})
				}
				if err := printMovies(cmd, movies); err != nil {
					return err
				}
				output.Info(cmd.OutOrStdout(), "%d of %d movies", len(movies), total)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&page, "page", 1, "Page number")
	flags.IntVar(&limit, "limit", 20, "Movies per page (max 100)")
	flags.StringVar(&search, "search", "", "Case-insensitive title filter")
	return cmd
}

func printMovies(cmd *cobra.Command, movies []models.Movie) error {
	rows := make([][]string, 0, len(movies))
	for _, m := range movies {
		rows = append(rows, movieRow(m))
	}
	return output.Table(cmd.OutOrStdout(), movieHeader, rows)
}
