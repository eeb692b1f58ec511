package services

import (
	"context"
	"fmt"
	"strings"

	"moviedb/internal/models"
	"moviedb/internal/repository"

	"github.com/sirupsen/logrus"
)

// Credit names a person and the role they hold on a movie.
type Credit struct {
	Name       string      `json:"name"`
	Role       models.Role `json:"role"`
	Importance int         `json:"importance"`
}

// MovieMetadata is the set of reference names attached to one movie. A
// person may appear under several roles, but repeating a (name, role) pair
// with a different importance is rejected.
type MovieMetadata struct {
	Credits   []Credit `json:"credits"`
	Genres    []string `json:"genres"`
	Keywords  []string `json:"keywords"`
	Companies []string `json:"companies"`
	Countries []string `json:"countries"`
	Languages []string `json:"languages"`
}

// LinkCounts maps a junction table name to a number of rows.
type LinkCounts map[string]int64

func (c LinkCounts) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}

// MovieDetails is a movie with every entity linked to it.
type MovieDetails struct {
	Movie     *models.Movie        `json:"movie"`
	Cast      []models.MoviePerson `json:"cast"`
	Crew      []models.MoviePerson `json:"crew"`
	Genres    []models.Genre       `json:"genres"`
	Keywords  []models.Keyword     `json:"keywords"`
	Companies []models.Company     `json:"companies"`
	Countries []models.Country     `json:"countries"`
	Languages []models.Language    `json:"languages"`
}

type MetadataService interface {
	AttachMetadata(ctx context.Context, movieID uint, meta MovieMetadata) (LinkCounts, error)
	Describe(ctx context.Context, movieID uint) (*MovieDetails, error)
	DeleteMovie(ctx context.Context, id uint) (LinkCounts, error)
	DeleteEntity(ctx context.Context, kind models.EntityKind, id uint) (int64, error)
}

type metadataService struct {
	repos  *repository.Repositories
	logger *logrus.Logger
}

func NewMetadataService(repos *repository.Repositories, logger *logrus.Logger) MetadataService {
	return &metadataService{
		repos:  repos,
		logger: logger,
	}
}

// uniqueNames trims names and drops blanks and repeats, keeping first-seen
// order.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// normalizeCredits parses roles and trims names, drops exact repeats and
// rejects a (name, role) pair listed with two different importances.
func normalizeCredits(credits []Credit) ([]Credit, error) {
	type key struct {
		name string
		role models.Role
	}
	seen := make(map[key]int, len(credits))
	out := make([]Credit, 0, len(credits))
	for _, c := range credits {
		role, err := models.ParseRole(string(c.Role))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
		}
		k := key{name: strings.TrimSpace(c.Name), role: role}
		if prev, ok := seen[k]; ok {
			if prev != c.Importance {
				return nil, fmt.Errorf("%w: %s is listed as %s with importance %d and %d",
					repository.ErrInvalidInput, k.name, role, prev, c.Importance)
			}
			continue
		}
		seen[k] = c.Importance
		out = append(out, Credit{Name: k.name, Role: role, Importance: c.Importance})
	}
	return out, nil
}

// attach find-or-creates every name in entities and links it through links.
func attach[E models.Entity, L models.Link](
	ctx context.Context,
	names []string,
	entities repository.EntityRepository[E],
	links repository.LinkRepository[L],
	newLink func(*E) L,
) (int64, error) {
	names = uniqueNames(names)
	if len(names) == 0 {
		return 0, nil
	}

	rows := make([]L, 0, len(names))
	for _, name := range names {
		entity, err := entities.FindOrCreate(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve %q: %w", name, err)
		}
		rows = append(rows, newLink(entity))
	}
	return links.LinkIgnoreDuplicate(ctx, rows)
}

func (s *metadataService) AttachMetadata(ctx context.Context, movieID uint, meta MovieMetadata) (LinkCounts, error) {
	exists, err := s.repos.Movies.Exists(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to check movie: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("movie %d: %w", movieID, repository.ErrNotFound)
	}

	credits, err := normalizeCredits(meta.Credits)
	if err != nil {
		return nil, err
	}

	counts := LinkCounts{}

	rows := make([]models.MoviePerson, 0, len(credits))
	for _, c := range credits {
		person, err := s.repos.People.FindOrCreate(ctx, c.Name)
		if err != nil {
			return counts, fmt.Errorf("failed to resolve %q: %w", c.Name, err)
		}
		rows = append(rows, models.MoviePerson{
			MovieID:    movieID,
			PersonID:   person.ID,
			Role:       c.Role,
			Importance: c.Importance,
		})
	}
	n, err := s.repos.Credits.LinkIgnoreDuplicate(ctx, rows)
	if err != nil {
		return counts, err
	}
	counts["movie_people"] = n

	steps := []struct {
		table string
		run   func() (int64, error)
	}{
		{"movie_genres", func() (int64, error) {
			return attach(ctx, meta.Genres, s.repos.Genres, s.repos.MovieGenres, func(g *models.Genre) models.MovieGenre {
				return models.MovieGenre{MovieID: movieID, GenreID: g.ID}
			})
		}},
		{"movie_keywords", func() (int64, error) {
			return attach(ctx, meta.Keywords, s.repos.Keywords, s.repos.MovieKeywords, func(k *models.Keyword) models.MovieKeyword {
				return models.MovieKeyword{MovieID: movieID, KeywordID: k.ID}
			})
		}},
		{"movie_companies", func() (int64, error) {
			return attach(ctx, meta.Companies, s.repos.Companies, s.repos.MovieCompanies, func(c *models.Company) models.MovieCompany {
				return models.MovieCompany{MovieID: movieID, CompanyID: c.ID}
			})
		}},
		{"movie_countries", func() (int64, error) {
			return attach(ctx, meta.Countries, s.repos.Countries, s.repos.MovieCountries, func(c *models.Country) models.MovieCountry {
				return models.MovieCountry{MovieID: movieID, CountryID: c.ID}
			})
		}},
		{"movie_languages", func() (int64, error) {
			return attach(ctx, meta.Languages, s.repos.Languages, s.repos.MovieLanguages, func(l *models.Language) models.MovieLanguage {
				return models.MovieLanguage{MovieID: movieID, LanguageID: l.ID}
			})
		}},
	}
	for _, step := range steps {
		n, err := step.run()
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"movie_id": movieID,
				"table":    step.table,
			}).Error("Failed to attach metadata")
			return counts, err
		}
		counts[step.table] = n
	}

	s.logger.WithFields(logrus.Fields{
		"movie_id": movieID,
		"linked":   counts.Total(),
	}).Info("Metadata attached")

	return counts, nil
}

func linked[L any, E any](links []L, entity func(L) *E) []E {
	out := make([]E, 0, len(links))
	for _, l := range links {
		if e := entity(l); e != nil {
			out = append(out, *e)
		}
	}
	return out
}

func (s *metadataService) Describe(ctx context.Context, movieID uint) (*MovieDetails, error) {
	movie, err := s.repos.Movies.FindByID(ctx, movieID)
	if err != nil {
		return nil, err
	}

	details := &MovieDetails{Movie: movie}

	if details.Cast, err = s.repos.Credits.ListCast(ctx, movieID); err != nil {
		return nil, err
	}
	credits, err := s.repos.Credits.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	details.Crew = make([]models.MoviePerson, 0, len(credits))
	for _, c := range credits {
		if c.Role != models.RoleActor {
			details.Crew = append(details.Crew, c)
		}
	}

	genres, err := s.repos.MovieGenres.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	details.Genres = linked(genres, func(l models.MovieGenre) *models.Genre { return l.Genre })

	keywords, err := s.repos.MovieKeywords.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	details.Keywords = linked(keywords, func(l models.MovieKeyword) *models.Keyword { return l.Keyword })

	companies, err := s.repos.MovieCompanies.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	details.Companies = linked(companies, func(l models.MovieCompany) *models.Company { return l.Company })

	countries, err := s.repos.MovieCountries.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	details.Countries = linked(countries, func(l models.MovieCountry) *models.Country { return l.Country })

	languages, err := s.repos.MovieLanguages.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	details.Languages = linked(languages, func(l models.MovieLanguage) *models.Language { return l.Language })

	return details, nil
}

// linkCounter is the counting half of a LinkRepository.
type linkCounter interface {
	CountByMovie(ctx context.Context, movieID uint) (int64, error)
	CountByEntity(ctx context.Context, entityID uint) (int64, error)
}

type entityDeleter interface {
	Delete(ctx context.Context, id uint) error
}

func (s *metadataService) counters() map[models.EntityKind]linkCounter {
	return map[models.EntityKind]linkCounter{
		models.KindPerson:   s.repos.Credits,
		models.KindGenre:    s.repos.MovieGenres,
		models.KindKeyword:  s.repos.MovieKeywords,
		models.KindCompany:  s.repos.MovieCompanies,
		models.KindCountry:  s.repos.MovieCountries,
		models.KindLanguage: s.repos.MovieLanguages,
	}
}

func (s *metadataService) deleters() map[models.EntityKind]entityDeleter {
	return map[models.EntityKind]entityDeleter{
		models.KindPerson:   s.repos.People,
		models.KindGenre:    s.repos.Genres,
		models.KindKeyword:  s.repos.Keywords,
		models.KindCompany:  s.repos.Companies,
		models.KindCountry:  s.repos.Countries,
		models.KindLanguage: s.repos.Languages,
	}
}

// DeleteMovie deletes a movie and reports the junction rows that went with
// it. The counts are taken just before the delete.
func (s *metadataService) DeleteMovie(ctx context.Context, id uint) (LinkCounts, error) {
	counts := LinkCounts{}
	counters := s.counters()
	for _, j := range models.Junctions() {
		n, err := counters[j.Kind].CountByMovie(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", j.Table, err)
		}
		counts[j.Table] = n
	}

	if err := s.repos.Movies.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"movie_id": id,
		"cascaded": counts.Total(),
	}).Info("Movie deleted")

	return counts, nil
}

// DeleteEntity deletes one reference row and reports how many junction rows
// the cascade removed.
func (s *metadataService) DeleteEntity(ctx context.Context, kind models.EntityKind, id uint) (int64, error) {
	j, err := models.JunctionFor(kind)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}

	n, err := s.counters()[kind].CountByEntity(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", j.Table, err)
	}

	if err := s.deleters()[kind].Delete(ctx, id); err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"kind":     kind,
		"id":       id,
		"cascaded": n,
	}).Info("Entity deleted")

	return n, nil
}
