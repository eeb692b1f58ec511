package repository_test

import (
	"testing"

	"moviedb/internal/database"
	"moviedb/internal/database/dbtest"
	"moviedb/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func intPtr(v int) *int { return &v }

// seed creates movies 1 and 2 and one row with id 1 and 2 in every reference
// table.
func seed(t *testing.T) *database.Database {
	t.Helper()
	db := dbtest.New(t)

	rows := []interface{}{
		&models.Movie{ID: 1, Title: "Heat", ReleaseYear: intPtr(1995), VoteAverage: 7.9},
		&models.Movie{ID: 2, Title: "Ronin", ReleaseYear: intPtr(1998), VoteAverage: 6.9},
		&models.Person{ID: 1, Name: "Robert De Niro"},
		&models.Person{ID: 2, Name: "Michael Mann"},
		&models.Genre{ID: 1, Name: "Crime"},
		&models.Genre{ID: 2, Name: "Thriller"},
		&models.Keyword{ID: 1, Name: "heist"},
		&models.Keyword{ID: 2, Name: "los angeles"},
		&models.Company{ID: 1, Name: "Warner Bros."},
		&models.Company{ID: 2, Name: "Forward Pass"},
		&models.Country{ID: 1, Name: "United States of America"},
		&models.Country{ID: 2, Name: "France"},
		&models.Language{ID: 1, Name: "English"},
		&models.Language{ID: 2, Name: "Spanish"},
	}
	for _, row := range rows {
		require.NoError(t, db.Create(row).Error)
	}
	return db
}

// linkAll attaches entity id to movieID in all six junction tables.
func linkAll(t *testing.T, db *database.Database, movieID, id uint) {
	t.Helper()

	rows := []interface{}{
		&models.MoviePerson{MovieID: movieID, PersonID: id, Role: models.RoleActor, Importance: 1},
		&models.MovieGenre{MovieID: movieID, GenreID: id},
		&models.MovieKeyword{MovieID: movieID, KeywordID: id},
		&models.MovieCompany{MovieID: movieID, CompanyID: id},
		&models.MovieCountry{MovieID: movieID, CountryID: id},
		&models.MovieLanguage{MovieID: movieID, LanguageID: id},
	}
	for _, row := range rows {
		require.NoError(t, db.Omit(clause.Associations).Create(row).Error)
	}
}

// junctionCounts returns the row count of every junction table.
func junctionCounts(t *testing.T, db *database.Database, where string, args ...interface{}) map[string]int64 {
	t.Helper()

	counts := map[string]int64{}
	for _, j := range models.Junctions() {
		var n int64
		q := db.Table(j.Table)
		if where != "" {
			q = q.Where(where, args...)
		}
		require.NoError(t, q.Count(&n).Error)
		counts[j.Table] = n
	}
	return counts
}
