package repository_test

import (
	"context"
	"testing"

	"moviedb/internal/database"
	"moviedb/internal/models"
	"moviedb/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func titles(movies []models.Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Title)
	}
	return out
}

// catalog links: Heat (1995) is Crime+Thriller with De Niro acting and Mann
// directing; Ronin (1998) is Thriller with De Niro acting.
func catalog(t *testing.T) (repository.CatalogRepository, *database.Database) {
	t.Helper()
	db := seed(t)
	ctx := context.Background()

	genres := repository.NewMovieGenreRepository(db)
	_, err := genres.LinkIgnoreDuplicate(ctx, []models.MovieGenre{
		{MovieID: 1, GenreID: 1},
		{MovieID: 1, GenreID: 2},
		{MovieID: 2, GenreID: 2},
	})
	require.NoError(t, err)

	_, err = repository.NewCreditRepository(db).LinkIgnoreDuplicate(ctx, []models.MoviePerson{
		{MovieID: 1, PersonID: 1, Role: models.RoleActor, Importance: 1},
		{MovieID: 1, PersonID: 2, Role: models.RoleDirector, Importance: 1},
		{MovieID: 2, PersonID: 1, Role: models.RoleActor, Importance: 1},
	})
	require.NoError(t, err)

	return repository.NewCatalogRepository(db), db
}

func TestMoviesByGenre(t *testing.T) {
	repo, _ := catalog(t)
	ctx := context.Background()

	movies, err := repo.MoviesByGenre(ctx, "thrill", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat", "Ronin"}, titles(movies))

	movies, err = repo.MoviesByGenre(ctx, "THRILLER", 1998)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ronin"}, titles(movies))

	movies, err = repo.MoviesByGenre(ctx, "Western", 0)
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestMoviesByPerson(t *testing.T) {
	repo, _ := catalog(t)
	ctx := context.Background()

	movies, err := repo.MoviesByPerson(ctx, "de niro", models.RoleActor)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat", "Ronin"}, titles(movies))

	movies, err = repo.MoviesByPerson(ctx, "mann", models.RoleActor)
	require.NoError(t, err)
	assert.Empty(t, movies)

	movies, err = repo.MoviesByPersonAndGenre(ctx, "de niro", models.RoleActor, "crime")
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, titles(movies))

	_, err = repo.MoviesByPerson(ctx, "mann", "gaffer")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestMoviesByYear(t *testing.T) {
	repo, _ := catalog(t)

	movies, err := repo.MoviesByYear(context.Background(), 1995)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, titles(movies))
}

func TestTopRatedByGenre(t *testing.T) {
	repo, db := catalog(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Movie{ID: 3, Title: "Collateral", ReleaseYear: intPtr(2004), VoteAverage: 7.3}).Error)
	require.NoError(t, repository.NewMovieGenreRepository(db).Link(ctx, &models.MovieGenre{MovieID: 3, GenreID: 2}))

	movies, err := repo.TopRatedByGenre(ctx, "thriller", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat", "Collateral"}, titles(movies))

	movies, err = repo.TopRatedByGenre(ctx, "thriller", 5, 2004)
	require.NoError(t, err)
	assert.Equal(t, []string{"Collateral"}, titles(movies))
}

func TestCatalogCounts(t *testing.T) {
	repo, _ := catalog(t)
	ctx := context.Background()

	n, err := repo.CountMoviesByPerson(ctx, "robert", models.RoleActor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CountRatedAtLeast(ctx, "thriller", 7.0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMoviesLinkedTo(t *testing.T) {
	repo, db := catalog(t)
	ctx := context.Background()

	rows := []interface{}{
		&models.MovieKeyword{MovieID: 2, KeywordID: 2},
		&models.MovieCompany{MovieID: 2, CompanyID: 2},
		&models.MovieCountry{MovieID: 2, CountryID: 2},
		&models.MovieLanguage{MovieID: 2, LanguageID: 2},
	}
	for _, row := range rows {
		require.NoError(t, db.Omit(clause.Associations).Create(row).Error)
	}

	cases := []struct {
		kind models.EntityKind
		name string
		want []string
	}{
		{models.KindKeyword, "LOS", []string{"Ronin"}},
		{models.KindCompany, "forward", []string{"Ronin"}},
		{models.KindCountry, "france", []string{"Ronin"}},
		{models.KindLanguage, "spanish", []string{"Ronin"}},
		{models.KindPerson, "mann", []string{"Heat"}},
		{models.KindGenre, "thriller", []string{"Heat", "Ronin"}},
		{models.KindLanguage, "english", nil},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind)+"/"+tc.name, func(t *testing.T) {
			movies, err := repo.MoviesLinkedTo(ctx, tc.kind, tc.name)
			require.NoError(t, err)
			if tc.want == nil {
				assert.Empty(t, movies)
				return
			}
			assert.Equal(t, tc.want, titles(movies))
		})
	}

	_, err := repo.MoviesLinkedTo(ctx, "studio", "warner")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestMoviesByGenres(t *testing.T) {
	repo, _ := catalog(t)
	ctx := context.Background()

	movies, err := repo.MoviesByGenres(ctx, []string{"crime", "Thriller", "Western"}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, titles(movies))

	movies, err = repo.MoviesByGenres(ctx, []string{"crime", "Thriller", "Western"}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat", "Ronin"}, titles(movies))

	movies, err = repo.MoviesByGenres(ctx, []string{"thriller"}, 1, 7.0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, titles(movies))

	// below 1 means every genre
	movies, err = repo.MoviesByGenres(ctx, []string{"crime", "thriller", "western"}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movies)

	_, err = repo.MoviesByGenres(ctx, []string{" "}, 1, 0)
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestMoviesByOrigin(t *testing.T) {
	repo, db := catalog(t)
	ctx := context.Background()

	countries := repository.NewMovieCountryRepository(db)
	_, err := countries.LinkIgnoreDuplicate(ctx, []models.MovieCountry{
		{MovieID: 1, CountryID: 1},
		{MovieID: 2, CountryID: 1},
		{MovieID: 2, CountryID: 2},
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Movie{}).Where("id IN ?", []uint{1, 2}).Update("original_language", "en").Error)

	cases := []struct {
		name   string
		filter repository.OriginFilter
		want   []string
	}{
		{"genre and country", repository.OriginFilter{Genre: "thriller", Country: "united states", Language: "EN"}, []string{"Heat", "Ronin"}},
		{"second country", repository.OriginFilter{Genre: "thriller", Country: "france", Language: "en"}, []string{"Ronin"}},
		{"from year", repository.OriginFilter{Genre: "thriller", Country: "united states", FromYear: 1996}, []string{"Ronin"}},
		{"genre narrows", repository.OriginFilter{Genre: "crime", Country: "france"}, nil},
		{"other language", repository.OriginFilter{Country: "united states", Language: "fr"}, nil},
		{"no filter", repository.OriginFilter{}, []string{"Heat", "Ronin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			movies, err := repo.MoviesByOrigin(ctx, tc.filter)
			require.NoError(t, err)
			if tc.want == nil {
				assert.Empty(t, movies)
				return
			}
			assert.Equal(t, tc.want, titles(movies))
		})
	}
}

func TestMoviesPerYear(t *testing.T) {
	repo, db := catalog(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Movie{ID: 3, Title: "Untitled"}).Error)
	require.NoError(t, db.Create(&models.Movie{ID: 4, Title: "The Insider", ReleaseYear: intPtr(1998), VoteAverage: 7.4}).Error)

	years, err := repo.MoviesPerYear(ctx)
	require.NoError(t, err)
	assert.Equal(t, []repository.YearCount{
		{Year: 1998, Movies: 2},
		{Year: 1995, Movies: 1},
	}, years)
}

func TestRatingByGenre(t *testing.T) {
	repo, _ := catalog(t)

	ratings, err := repo.RatingByGenre(context.Background())
	require.NoError(t, err)
	require.Len(t, ratings, 2)

	assert.Equal(t, "Crime", ratings[0].Genre)
	assert.Equal(t, int64(1), ratings[0].Movies)
	assert.InDelta(t, 7.9, ratings[0].AvgRating, 0.001)

	assert.Equal(t, "Thriller", ratings[1].Genre)
	assert.Equal(t, int64(2), ratings[1].Movies)
	assert.InDelta(t, 7.4, ratings[1].AvgRating, 0.001)
	assert.InDelta(t, 7.9, ratings[1].MaxRating, 0.001)
	assert.InDelta(t, 6.9, ratings[1].MinRating, 0.001)
}

func TestTopActors(t *testing.T) {
	repo, db := catalog(t)
	ctx := context.Background()

	require.NoError(t, repository.NewCreditRepository(db).Link(ctx, &models.MoviePerson{
		MovieID: 1, PersonID: 2, Role: models.RoleActor, Importance: 5,
	}))

	actors, err := repo.TopActors(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, actors, 2)
	assert.Equal(t, "Robert De Niro", actors[0].Name)
	assert.Equal(t, int64(2), actors[0].Movies)
	assert.InDelta(t, 7.4, actors[0].AvgRating, 0.001)
	assert.Equal(t, "Michael Mann", actors[1].Name)
	assert.Equal(t, int64(1), actors[1].Movies)

	actors, err = repo.TopActors(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, actors, 1)

	actors, err = repo.TopActors(ctx, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, actors)
}

func TestYearlyTrends(t *testing.T) {
	repo, db := catalog(t)
	ctx := context.Background()

	require.NoError(t, db.Model(&models.Movie{}).Where("id = ?", 1).Updates(map[string]interface{}{
		"budget":  60000000,
		"revenue": 187000000,
		"runtime": 170,
	}).Error)

	trends, err := repo.YearlyTrends(ctx, 0)
	require.NoError(t, err)
	require.Len(t, trends, 2)

	assert.Equal(t, 1998, trends[0].Year)
	assert.Equal(t, int64(1), trends[0].Movies)
	assert.Zero(t, trends[0].HighRated)
	assert.Zero(t, trends[0].AvgRuntime)

	assert.Equal(t, 1995, trends[1].Year)
	assert.Equal(t, int64(1), trends[1].HighRated)
	assert.InDelta(t, 60000000, trends[1].AvgBudget, 0.5)
	assert.InDelta(t, 187000000, trends[1].AvgRevenue, 0.5)
	assert.InDelta(t, 170, trends[1].AvgRuntime, 0.001)

	trends, err = repo.YearlyTrends(ctx, 1996)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, 1998, trends[0].Year)
}

func TestGenreCombinations(t *testing.T) {
	repo, db := catalog(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Movie{ID: 3, Title: "Collateral", ReleaseYear: intPtr(2004), VoteAverage: 7.3}).Error)
	_, err := repository.NewMovieGenreRepository(db).LinkIgnoreDuplicate(ctx, []models.MovieGenre{
		{MovieID: 3, GenreID: 2},
		{MovieID: 3, GenreID: 1},
	})
	require.NoError(t, err)

	combos, err := repo.GenreCombinations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, combos, 1)
	assert.Equal(t, []string{"Crime", "Thriller"}, combos[0].Genres)
	assert.Equal(t, int64(2), combos[0].Movies)
	assert.InDelta(t, 7.6, combos[0].AvgRating, 0.001)

	combos, err = repo.GenreCombinations(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, combos)
}
