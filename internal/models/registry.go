package models

import (
	"fmt"
	"strings"
)

// Entity is the set of reference tables a movie can be linked to.
type Entity interface {
	Person | Genre | Keyword | Company | Country | Language
}

// Link is the set of junction tables. Every link row is keyed by a movie id
// and one entity id.
type Link interface {
	MoviePerson | MovieGenre | MovieKeyword | MovieCompany | MovieCountry | MovieLanguage
	TableName() string
	EntityColumn() string
	Key() (movieID, entityID uint)
}

// EntityKind names a reference table from the outside (CLI, services).
type EntityKind string

const (
	KindPerson   EntityKind = "person"
	KindGenre    EntityKind = "genre"
	KindKeyword  EntityKind = "keyword"
	KindCompany  EntityKind = "company"
	KindCountry  EntityKind = "country"
	KindLanguage EntityKind = "language"
)

// Junction describes one junction table and the entity table on its right.
type Junction struct {
	Kind         EntityKind
	Table        string
	EntityTable  string
	EntityColumn string
}

var junctions = []Junction{
	{Kind: KindPerson, Table: "movie_people", EntityTable: "people", EntityColumn: "person_id"},
	{Kind: KindGenre, Table: "movie_genres", EntityTable: "genres", EntityColumn: "genre_id"},
	{Kind: KindKeyword, Table: "movie_keywords", EntityTable: "keywords", EntityColumn: "keyword_id"},
	{Kind: KindCompany, Table: "movie_companies", EntityTable: "companies", EntityColumn: "company_id"},
	{Kind: KindCountry, Table: "movie_countries", EntityTable: "countries", EntityColumn: "country_id"},
	{Kind: KindLanguage, Table: "movie_languages", EntityTable: "languages", EntityColumn: "language_id"},
}

// Junctions lists the six junction tables in a stable order.
func Junctions() []Junction {
	return append([]Junction(nil), junctions...)
}

// JunctionFor returns the junction table whose right side is kind.
func JunctionFor(kind EntityKind) (Junction, error) {
	for _, j := range junctions {
		if j.Kind == kind {
			return j, nil
		}
	}
	return Junction{}, fmt.Errorf("unknown entity kind %q", kind)
}

func ParseEntityKind(s string) (EntityKind, error) {
	kind := EntityKind(strings.ToLower(strings.TrimSpace(s)))
	if _, err := JunctionFor(kind); err != nil {
		return "", err
	}
	return kind, nil
}

// EndpointModels returns the movie table and every reference table. They
// must exist before any junction table is created.
func EndpointModels() []interface{} {
	return []interface{}{
		&Movie{},
		&Person{},
		&Genre{},
		&Keyword{},
		&Company{},
		&Country{},
		&Language{},
	}
}

func JunctionModels() []interface{} {
	return []interface{}{
		&MoviePerson{},
		&MovieGenre{},
		&MovieKeyword{},
		&MovieCompany{},
		&MovieCountry{},
		&MovieLanguage{},
	}
}
