package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"moviedb/internal/database"
	"moviedb/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository answers read queries that walk the junction tables.
// Name filters are case-insensitive substring matches. A year of 0 matches
// every release year.
type CatalogRepository interface {
	MoviesByGenre(ctx context.Context, genre string, year int) ([]models.Movie, error)
	MoviesByPerson(ctx context.Context, name string, role models.Role) ([]models.Movie, error)
	MoviesByPersonAndGenre(ctx context.Context, name string, role models.Role, genre string) ([]models.Movie, error)
	MoviesByYear(ctx context.Context, year int) ([]models.Movie, error)
	TopRatedByGenre(ctx context.Context, genre string, limit, year int) ([]models.Movie, error)
	CountMoviesByPerson(ctx context.Context, name string, role models.Role) (int64, error)
	CountRatedAtLeast(ctx context.Context, genre string, minRating float64) (int64, error)

	MoviesLinkedTo(ctx context.Context, kind models.EntityKind, name string) ([]models.Movie, error)
	MoviesByGenres(ctx context.Context, genres []string, minMatches int, minRating float64) ([]models.Movie, error)
	MoviesByOrigin(ctx context.Context, filter OriginFilter) ([]models.Movie, error)

	MoviesPerYear(ctx context.Context) ([]YearCount, error)
	RatingByGenre(ctx context.Context) ([]GenreRating, error)
	TopActors(ctx context.Context, limit, minMovies int) ([]ActorCount, error)
	YearlyTrends(ctx context.Context, fromYear int) ([]YearTrend, error)
	GenreCombinations(ctx context.Context, minMovies int) ([]GenreCombination, error)
}

// HighRating is the vote average from which YearlyTrends counts a movie as
// highly rated.
const HighRating = 7.0

// OriginFilter narrows movies by genre, production country and original
// language. Empty fields are not filtered on.
type OriginFilter struct {
	Genre    string `json:"genre"`
	Country  string `json:"country"`
	Language string `json:"language"`
	FromYear int    `json:"from_year"`
}

type YearCount struct {
	Year   int   `gorm:"column:release_year" json:"year"`
	Movies int64 `gorm:"column:movie_count" json:"movies"`
}

type GenreRating struct {
	Genre     string  `gorm:"column:genre" json:"genre"`
	Movies    int64   `gorm:"column:movie_count" json:"movies"`
	AvgRating float64 `gorm:"column:avg_rating" json:"avg_rating"`
	MaxRating float64 `gorm:"column:max_rating" json:"max_rating"`
	MinRating float64 `gorm:"column:min_rating" json:"min_rating"`
}

type ActorCount struct {
	Name      string  `gorm:"column:name" json:"name"`
	Movies    int64   `gorm:"column:movie_count" json:"movies"`
	AvgRating float64 `gorm:"column:avg_rating" json:"avg_rating"`
}

type YearTrend struct {
	Year       int     `gorm:"column:release_year" json:"year"`
	Movies     int64   `gorm:"column:movie_count" json:"movies"`
	AvgRating  float64 `gorm:"column:avg_rating" json:"avg_rating"`
	AvgBudget  float64 `gorm:"column:avg_budget" json:"avg_budget"`
	AvgRevenue float64 `gorm:"column:avg_revenue" json:"avg_revenue"`
	AvgRuntime float64 `gorm:"column:avg_runtime" json:"avg_runtime"`
	HighRated  int64   `gorm:"column:high_rated" json:"high_rated"`
}

// GenreCombination is a set of two or more genres shared by Movies movies.
type GenreCombination struct {
	Genres    []string `json:"genres"`
	Movies    int64    `json:"movies"`
	AvgRating float64  `json:"avg_rating"`
}

type catalogRepository struct {
	base
}

func NewCatalogRepository(db *database.Database) CatalogRepository {
	return &catalogRepository{base: newBase(db)}
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func (r *catalogRepository) genreMovieIDs(db *gorm.DB, genre string) *gorm.DB {
	return db.Model(&models.MovieGenre{}).
		Select("movie_genres.movie_id").
		Joins("JOIN genres ON genres.id = movie_genres.genre_id").
		Where("LOWER(genres.name) LIKE ?", likePattern(genre))
}

func (r *catalogRepository) personMovieIDs(db *gorm.DB, name string, role models.Role) *gorm.DB {
	return db.Model(&models.MoviePerson{}).
		Select("movie_people.movie_id").
		Joins("JOIN people ON people.id = movie_people.person_id").
		Where("movie_people.role = ? AND LOWER(people.name) LIKE ?", role, likePattern(name))
}

// linkedMovieIDs selects the ids of movies linked to an entity of kind whose
// name matches.
func (r *catalogRepository) linkedMovieIDs(db *gorm.DB, j models.Junction, name string) *gorm.DB {
	return db.Table(j.Table).
		Select(j.Table+".movie_id").
		Joins(fmt.Sprintf("JOIN %s ON %s.id = %s.%s", j.EntityTable, j.EntityTable, j.Table, j.EntityColumn)).
		Where("LOWER("+j.EntityTable+".name) LIKE ?", likePattern(name))
}

func withYear(db *gorm.DB, year int) *gorm.DB {
	if year == 0 {
		return db
	}
	return db.Where("release_year = ?", year)
}

func (r *catalogRepository) MoviesByGenre(ctx context.Context, genre string, year int) ([]models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	var movies []models.Movie
	err := withYear(db.Where("id IN (?)", r.genreMovieIDs(db.Session(&gorm.Session{NewDB: true}), genre)), year).
		Order("id").
		Find(&movies).Error
	return movies, err
}

func (r *catalogRepository) MoviesByPerson(ctx context.Context, name string, role models.Role) ([]models.Movie, error) {
	if err := validateRole(role); err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	var movies []models.Movie
	err := db.Where("id IN (?)", r.personMovieIDs(db.Session(&gorm.Session{NewDB: true}), name, role)).
		Order("id").
		Find(&movies).Error
	return movies, err
}

func (r *catalogRepository) MoviesByPersonAndGenre(ctx context.Context, name string, role models.Role, genre string) ([]models.Movie, error) {
	if err := validateRole(role); err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	var movies []models.Movie
	err := db.
		Where("id IN (?)", r.personMovieIDs(db.Session(&gorm.Session{NewDB: true}), name, role)).
		Where("id IN (?)", r.genreMovieIDs(db.Session(&gorm.Session{NewDB: true}), genre)).
		Order("id").
		Find(&movies).Error
	return movies, err
}

func (r *catalogRepository) MoviesByYear(ctx context.Context, year int) ([]models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movies []models.Movie
	err := r.db.WithContext(ctx).Where("release_year = ?", year).Order("id").Find(&movies).Error
	return movies, err
}

// TopRatedByGenre orders by vote average, highest first. Ties keep id order.
func (r *catalogRepository) TopRatedByGenre(ctx context.Context, genre string, limit, year int) ([]models.Movie, error) {
	if limit < 1 {
		limit = 10
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	var movies []models.Movie
	err := withYear(db.Where("id IN (?)", r.genreMovieIDs(db.Session(&gorm.Session{NewDB: true}), genre)), year).
		Order("vote_average DESC, id").
		Limit(limit).
		Find(&movies).Error
	return movies, err
}

// CountMoviesByPerson counts distinct movies. Several matching people on one
// movie count once.
func (r *catalogRepository) CountMoviesByPerson(ctx context.Context, name string, role models.Role) (int64, error) {
	if err := validateRole(role); err != nil {
		return 0, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	var n int64
	err := db.Model(&models.Movie{}).
		Where("id IN (?)", r.personMovieIDs(db.Session(&gorm.Session{NewDB: true}), name, role)).
		Count(&n).Error
	return n, err
}

func (r *catalogRepository) CountRatedAtLeast(ctx context.Context, genre string, minRating float64) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	var n int64
	err := db.Model(&models.Movie{}).
		Where("id IN (?)", r.genreMovieIDs(db.Session(&gorm.Session{NewDB: true}), genre)).
		Where("vote_average >= ?", minRating).
		Count(&n).Error
	return n, err
}

func (r *catalogRepository) MoviesLinkedTo(ctx context.Context, kind models.EntityKind, name string) ([]models.Movie, error) {
	j, err := models.JunctionFor(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	var movies []models.Movie
	err = db.Where("id IN (?)", r.linkedMovieIDs(db.Session(&gorm.Session{NewDB: true}), j, name)).
		Order("id").
		Find(&movies).Error
	return movies, err
}

// MoviesByGenres returns movies carrying at least minMatches of the named
// genres, best rated first. Genre names match exactly, ignoring case. A
// minMatches below 1 requires every genre.
func (r *catalogRepository) MoviesByGenres(ctx context.Context, genres []string, minMatches int, minRating float64) ([]models.Movie, error) {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			names = append(names, g)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one genre is required", ErrInvalidInput)
	}
	if minMatches < 1 || minMatches > len(names) {
		minMatches = len(names)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	matching := db.Session(&gorm.Session{NewDB: true}).
		Model(&models.MovieGenre{}).
		Select("movie_genres.movie_id").
		Joins("JOIN genres ON genres.id = movie_genres.genre_id").
		Where("LOWER(genres.name) IN ?", names).
		Group("movie_genres.movie_id").
		Having("COUNT(DISTINCT genres.id) >= ?", minMatches)

	var movies []models.Movie
	err := db.Where("id IN (?)", matching).
		Where("vote_average >= ?", minRating).
		Order("vote_average DESC, id").
		Find(&movies).Error
	return movies, err
}

// MoviesByOrigin walks movie_genres and movie_countries and filters on the
// movie's original language code. Results are best rated first.
func (r *catalogRepository) MoviesByOrigin(ctx context.Context, filter OriginFilter) ([]models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	db := r.db.WithContext(ctx)
	query := db
	if strings.TrimSpace(filter.Genre) != "" {
		query = query.Where("id IN (?)", r.genreMovieIDs(db.Session(&gorm.Session{NewDB: true}), filter.Genre))
	}
	if strings.TrimSpace(filter.Country) != "" {
		countries, _ := models.JunctionFor(models.KindCountry)
		query = query.Where("id IN (?)", r.linkedMovieIDs(db.Session(&gorm.Session{NewDB: true}), countries, filter.Country))
	}
	if lang := strings.ToLower(strings.TrimSpace(filter.Language)); lang != "" {
		query = query.Where("LOWER(original_language) = ?", lang)
	}
	if filter.FromYear > 0 {
		query = query.Where("release_year >= ?", filter.FromYear)
	}

	var movies []models.Movie
	err := query.Order("vote_average DESC, id").Find(&movies).Error
	return movies, err
}

// MoviesPerYear counts movies per release year, latest year first. Movies
// without a year are left out.
func (r *catalogRepository) MoviesPerYear(ctx context.Context) ([]YearCount, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out []YearCount
	err := r.db.WithContext(ctx).Model(&models.Movie{}).
		Select("release_year, COUNT(*) AS movie_count").
		Where("release_year IS NOT NULL").
		Group("release_year").
		Order("release_year DESC").
		Scan(&out).Error
	return out, err
}

func (r *catalogRepository) RatingByGenre(ctx context.Context) ([]GenreRating, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out []GenreRating
	err := r.db.WithContext(ctx).Table("genres").
		Select(`genres.name AS genre,
			COUNT(DISTINCT movies.id) AS movie_count,
			AVG(movies.vote_average) AS avg_rating,
			MAX(movies.vote_average) AS max_rating,
			MIN(movies.vote_average) AS min_rating`).
		Joins("JOIN movie_genres ON movie_genres.genre_id = genres.id").
		Joins("JOIN movies ON movies.id = movie_genres.movie_id").
		Group("genres.name").
		Order("avg_rating DESC, genres.name").
		Scan(&out).Error
	return out, err
}

// TopActors ranks actors by the number of distinct movies they act in, then
// by the average rating of those movies. limit defaults to 10 and minMovies
// to 1.
func (r *catalogRepository) TopActors(ctx context.Context, limit, minMovies int) ([]ActorCount, error) {
	if limit < 1 {
		limit = 10
	}
	if minMovies < 1 {
		minMovies = 1
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out []ActorCount
	err := r.db.WithContext(ctx).Table("people").
		Select("people.name AS name, COUNT(DISTINCT movies.id) AS movie_count, AVG(movies.vote_average) AS avg_rating").
		Joins("JOIN movie_people ON movie_people.person_id = people.id").
		Joins("JOIN movies ON movies.id = movie_people.movie_id").
		Where("movie_people.role = ?", models.RoleActor).
		Group("people.name").
		Having("COUNT(DISTINCT movies.id) >= ?", minMovies).
		Order("movie_count DESC, avg_rating DESC, people.name").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// YearlyTrends summarises every release year from fromYear on, latest first.
// A fromYear of 0 covers every year.
func (r *catalogRepository) YearlyTrends(ctx context.Context, fromYear int) ([]YearTrend, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := r.db.WithContext(ctx).Model(&models.Movie{}).
		Select(`release_year,
			COUNT(*) AS movie_count,
			AVG(vote_average) AS avg_rating,
			AVG(budget) AS avg_budget,
			AVG(revenue) AS avg_revenue,
			COALESCE(AVG(runtime), 0) AS avg_runtime,
			COUNT(CASE WHEN vote_average >= ? THEN 1 END) AS high_rated`, HighRating).
		Where("release_year IS NOT NULL")
	if fromYear > 0 {
		query = query.Where("release_year >= ?", fromYear)
	}

	var out []YearTrend
	err := query.Group("release_year").Order("release_year DESC").Scan(&out).Error
	return out, err
}

// GenreCombinations groups movies with two or more genres by their exact
// genre set and keeps the sets shared by at least minMovies movies, most
// common first. The sets are built here rather than with a dialect-specific
// array aggregate.
func (r *catalogRepository) GenreCombinations(ctx context.Context, minMovies int) ([]GenreCombination, error) {
	if minMovies < 1 {
		minMovies = 1
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rows []struct {
		MovieID     uint
		Name        string
		VoteAverage float64
	}
	err := r.db.WithContext(ctx).Model(&models.MovieGenre{}).
		Select("movie_genres.movie_id AS movie_id, genres.name AS name, movies.vote_average AS vote_average").
		Joins("JOIN genres ON genres.id = movie_genres.genre_id").
		Joins("JOIN movies ON movies.id = movie_genres.movie_id").
		Order("movie_genres.movie_id, genres.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	type group struct {
		genres []string
		movies int64
		rating float64
	}
	groups := map[string]*group{}
	flush := func(genres []string, rating float64) {
		if len(genres) < 2 {
			return
		}
		key := strings.Join(genres, "\x00")
		g, ok := groups[key]
		if !ok {
			g = &group{genres: genres}
			groups[key] = g
		}
		g.movies++
		g.rating += rating
	}

	var (
		current uint
		genres  []string
		rating  float64
	)
	for _, row := range rows {
		if row.MovieID != current {
			flush(genres, rating)
			current, genres = row.MovieID, nil
		}
		genres = append(genres, row.Name)
		rating = row.VoteAverage
	}
	flush(genres, rating)

	out := make([]GenreCombination, 0, len(groups))
	for _, g := range groups {
		if g.movies < int64(minMovies) {
			continue
		}
		out = append(out, GenreCombination{
			Genres:    g.genres,
			Movies:    g.movies,
			AvgRating: g.rating / float64(g.movies),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Movies != out[j].Movies {
			return out[i].Movies > out[j].Movies
		}
		return strings.Join(out[i].Genres, ",") < strings.Join(out[j].Genres, ",")
	})
	return out, nil
}
