package repository

import (
	"moviedb/internal/database"
	"moviedb/internal/models"
)

// Repositories bundles every repository over one database.
type Repositories struct {
	Movies    MovieRepository
	People    EntityRepository[models.Person]
	Genres    EntityRepository[models.Genre]
	Keywords  EntityRepository[models.Keyword]
	Companies EntityRepository[models.Company]
	Countries EntityRepository[models.Country]
	Languages EntityRepository[models.Language]

	Credits        CreditRepository
	MovieGenres    LinkRepository[models.MovieGenre]
	MovieKeywords  LinkRepository[models.MovieKeyword]
	MovieCompanies LinkRepository[models.MovieCompany]
	MovieCountries LinkRepository[models.MovieCountry]
	MovieLanguages LinkRepository[models.MovieLanguage]

	Catalog CatalogRepository
}

func NewRepositories(db *database.Database) *Repositories {
	return &Repositories{
		Movies:    NewMovieRepository(db),
		People:    NewPersonRepository(db),
		Genres:    NewGenreRepository(db),
		Keywords:  NewKeywordRepository(db),
		Companies: NewCompanyRepository(db),
		Countries: NewCountryRepository(db),
		Languages: NewLanguageRepository(db),

		Credits:        NewCreditRepository(db),
		MovieGenres:    NewMovieGenreRepository(db),
		MovieKeywords:  NewMovieKeywordRepository(db),
		MovieCompanies: NewMovieCompanyRepository(db),
		MovieCountries: NewMovieCountryRepository(db),
		MovieLanguages: NewMovieLanguageRepository(db),

		Catalog: NewCatalogRepository(db),
	}
}
