package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"moviedb/cmd/output"
	"moviedb/internal/database"
	"moviedb/internal/models"
	"moviedb/internal/repository"

	"github.com/spf13/cobra"
)

func newQueryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Search and summarise the catalog through the junction tables",
		Long: `Read-only catalog queries. Name arguments match case-insensitively as
substrings unless noted otherwise.

Examples:
  moviedb query genre thriller --year 1995
  moviedb query person "de niro" --role actor
  moviedb query genres Action Adventure "Science Fiction" --min-matches 3
  moviedb query origin --genre drama --country "united states" --language en
  moviedb query top-actors --limit 10 --min-movies 3 --json`,
	}
	cmd.AddCommand(
		newQueryGenreCmd(a),
		newQueryPersonCmd(a),
		newQueryYearCmd(a),
		newQueryTopRatedCmd(a),
		newQueryLinkedCmd(a),
		newQueryGenresCmd(a),
		newQueryOriginCmd(a),
		newQueryCountCmd(a),
		newQueryPerYearCmd(a),
		newQueryGenreRatingsCmd(a),
		newQueryTopActorsCmd(a),
		newQueryTrendsCmd(a),
		newQueryCombinationsCmd(a),
	)
	return cmd
}

// runQuery opens the catalog, runs fn and prints its rows as a table, or as
// JSON with --json.
func runQuery[T any](a *app, cmd *cobra.Command, header []string, row func(T) []string,
	fn func(context.Context, repository.CatalogRepository) ([]T, error)) error {
	return a.withDatabase(cmd.Context(), func(ctx context.Context, db *database.Database) error {
		items, err := fn(ctx, repository.NewCatalogRepository(db))
		if err != nil {
			return err
		}
		if a.jsonOutput {
			if items == nil {
				items = []T{}
			}
			return output.JSON(cmd.OutOrStdout(), items)
		}
		if len(items) == 0 {
			output.Warning(cmd.OutOrStdout(), "No results")
			return nil
		}
		rows := make([][]string, 0, len(items))
		for _, item := range items {
			rows = append(rows, row(item))
		}
		return output.Table(cmd.OutOrStdout(), header, rows)
	})
}

var movieHeader = []string{"ID", "TITLE", "YEAR", "RATING"}

func movieRow(m models.Movie) []string {
	year := "-"
	if m.ReleaseYear != nil {
		year = strconv.Itoa(*m.ReleaseYear)
	}
	return []string{strconv.FormatUint(uint64(m.ID), 10), m.Title, year, rating(m.VoteAverage)}
}

func rating(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func count(n int64) string {
	return strconv.FormatInt(n, 10)
}

func queryMovies(a *app, cmd *cobra.Command, fn func(context.Context, repository.CatalogRepository) ([]models.Movie, error)) error {
	return runQuery(a, cmd, movieHeader, movieRow, fn)
}

func newQueryGenreCmd(a *app) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "genre <name>",
		Short: "Movies in a genre",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryMovies(a, cmd, func(ctx context.Context, repo repository.CatalogRepository) ([]models.Movie, error) {
				return repo.MoviesByGenre(ctx, args[0], year)
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Release year (default: any)")
	return cmd
}

func newQueryPersonCmd(a *app) *cobra.Command {
	var role, genre string
	cmd := &cobra.Command{
		Use:   "person <name>",
		Short: "Movies a person is credited on in one role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryMovies(a, cmd, func(ctx context.Context, repo repository.CatalogRepository) ([]models.Movie, error) {
				if genre != "" {
					return repo.MoviesByPersonAndGenre(ctx, args[0], models.Role(role), genre)
				}
				return repo.MoviesByPerson(ctx, args[0], models.Role(role))
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", string(models.RoleActor), "Credit role")
	cmd.Flags().StringVar(&genre, "genre", "", "Only movies in this genre")
	return cmd
}

func newQueryYearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "year <year>",
		Short: "Movies released in a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			return queryMovies(a, cmd, func(ctx context.Context, repo repository.CatalogRepository) ([]models.Movie, error) {
				return repo.MoviesByYear(ctx, year)
			})
		},
	}
}

func newQueryTopRatedCmd(a *app) *cobra.Command {
	var limit, year int
	cmd := &cobra.Command{
		Use:   "top-rated <genre>",
		Short: "Best rated movies in a genre",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryMovies(a, cmd, func(ctx context.Context, repo repository.CatalogRepository) ([]models.Movie, error) {
				return repo.TopRatedByGenre(ctx, args[0], limit, year)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of movies")
	cmd.Flags().IntVar(&year, "year", 0, "Release year (default: any)")
	return cmd
}

func newQueryLinkedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "linked <kind> <name>",
		Short: "Movies linked to a person, genre, keyword, company, country or language",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseEntityKind(args[0])
			if err != nil {
				return err
			}
			return queryMovies(a, cmd, func(ctx context.Context, repo repository.CatalogRepository) ([]models.Movie, error) {
				return repo.MoviesLinkedTo(ctx, kind, args[1])
			})
		},
	}
}

func newQueryGenresCmd(a *app) *cobra.Command {
	var (
		minMatches int
		minRating  float64
	)
	cmd := &cobra.Command{
		Use:   "genres <name>...",
		Short: "Movies carrying several of the named genres",
		Long: `Movies carrying at least --min-matches of the named genres, best rated
first. Genre names match exactly, ignoring case. Without --min-matches every
genre is required.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryMovies(a, cmd, func(ctx context.Context, repo repository.CatalogRepository) ([]models.Movie, error) {
				return repo.MoviesByGenres(ctx, args, minMatches, minRating)
			})
		},
	}
	cmd.Flags().IntVar(&minMatches, "min-matches", 0, "Minimum number of matching genres")
	cmd.Flags().Float64Var(&minRating, "min-rating", 0, "Minimum vote average")
	return cmd
}

func newQueryOriginCmd(a *app) *cobra.Command {
	var filter repository.OriginFilter
	cmd := &cobra.Command{
		Use:   "origin",
		Short: "Movies by genre, production country and original language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryMovies(a, cmd, func(ctx context.Context, repo repository.CatalogRepository) ([]models.Movie, error) {
				return repo.MoviesByOrigin(ctx, filter)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&filter.Genre, "genre", "", "Genre name")
	flags.StringVar(&filter.Country, "country", "", "Production country name")
	flags.StringVar(&filter.Language, "language", "", "Original language code, e.g. en")
	flags.IntVar(&filter.FromYear, "from-year", 0, "Earliest release year")
	return cmd
}

func newQueryCountCmd(a *app) *cobra.Command {
	var (
		role      string
		minRating float64
	)
	cmd := &cobra.Command{
		Use:   "count <person|genre> <name>",
		Short: "Count a person's movies in one role, or a genre's movies above a rating",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := strings.ToLower(args[0])
			if kind != string(models.KindPerson) && kind != string(models.KindGenre) {
				return fmt.Errorf("count supports person or genre, not %q", args[0])
			}

			return a.withDatabase(cmd.Context(), func(ctx context.Context, db *database.Database) error {
				repo := repository.NewCatalogRepository(db)

				var (
					n   int64
					err error
				)
				if kind == string(models.KindPerson) {
					n, err = repo.CountMoviesByPerson(ctx, args[1], models.Role(role))
				} else {
					n, err = repo.CountRatedAtLeast(ctx, args[1], minRating)
				}
				if err != nil {
					return err
				}

				if a.jsonOutput {
					return output.JSON(cmd.OutOrStdout(), map[string]int64{"movies": n})
				}
				output.Info(cmd.OutOrStdout(), "%d movies", n)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", string(models.RoleActor), "Credit role (person)")
	cmd.Flags().Float64Var(&minRating, "min-rating", 0, "Minimum vote average (genre)")
	return cmd
}

func newQueryPerYearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "per-year",
		Short: "Number of movies per release year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(a, cmd, []string{"YEAR", "MOVIES"},
				func(y repository.YearCount) []string {
					return []string{strconv.Itoa(y.Year), count(y.Movies)}
				},
				func(ctx context.Context, repo repository.CatalogRepository) ([]repository.YearCount, error) {
					return repo.MoviesPerYear(ctx)
				})
		},
	}
}

func newQueryGenreRatingsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "genre-ratings",
		Short: "Average, highest and lowest rating per genre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(a, cmd, []string{"GENRE", "MOVIES", "AVG", "MAX", "MIN"},
				func(g repository.GenreRating) []string {
					return []string{g.Genre, count(g.Movies), rating(g.AvgRating), rating(g.MaxRating), rating(g.MinRating)}
				},
				func(ctx context.Context, repo repository.CatalogRepository) ([]repository.GenreRating, error) {
					return repo.RatingByGenre(ctx)
				})
		},
	}
}

func newQueryTopActorsCmd(a *app) *cobra.Command {
	var limit, minMovies int
	cmd := &cobra.Command{
		Use:   "top-actors",
		Short: "Actors with the most movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(a, cmd, []string{"NAME", "MOVIES", "AVG RATING"},
				func(p repository.ActorCount) []string {
					return []string{p.Name, count(p.Movies), rating(p.AvgRating)}
				},
				func(ctx context.Context, repo repository.CatalogRepository) ([]repository.ActorCount, error) {
					return repo.TopActors(ctx, limit, minMovies)
				})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of actors")
	cmd.Flags().IntVar(&minMovies, "min-movies", 3, "Minimum number of movies")
	return cmd
}

func newQueryTrendsCmd(a *app) *cobra.Command {
	var fromYear int
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Per-year averages of rating, budget, revenue and runtime",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(a, cmd, []string{"YEAR", "MOVIES", "AVG RATING", "AVG BUDGET", "AVG REVENUE", "AVG RUNTIME", "HIGH RATED"},
				func(y repository.YearTrend) []string {
					return []string{
						strconv.Itoa(y.Year),
						count(y.Movies),
						rating(y.AvgRating),
						strconv.FormatFloat(y.AvgBudget, 'f', 0, 64),
						strconv.FormatFloat(y.AvgRevenue, 'f', 0, 64),
						strconv.FormatFloat(y.AvgRuntime, 'f', 0, 64),
						count(y.HighRated),
					}
				},
				func(ctx context.Context, repo repository.CatalogRepository) ([]repository.YearTrend, error) {
					return repo.YearlyTrends(ctx, fromYear)
				})
		},
	}
	cmd.Flags().IntVar(&fromYear, "from-year", 1990, "Earliest release year (0 for all)")
	return cmd
}

func newQueryCombinationsCmd(a *app) *cobra.Command {
	var minMovies int
	cmd := &cobra.Command{
		Use:   "combinations",
		Short: "Most common sets of two or more genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(a, cmd, []string{"GENRES", "MOVIES", "AVG RATING"},
				func(c repository.GenreCombination) []string {
					return []string{strings.Join(c.Genres, ", "), count(c.Movies), rating(c.AvgRating)}
				},
				func(ctx context.Context, repo repository.CatalogRepository) ([]repository.GenreCombination, error) {
					return repo.GenreCombinations(ctx, minMovies)
				})
		},
	}
	cmd.Flags().IntVar(&minMovies, "min-movies", 3, "Minimum number of movies sharing the set")
	return cmd
}
