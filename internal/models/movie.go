package models

import (
	"time"
)

// Movie is the left endpoint of every junction table. IDs may be supplied
// explicitly so that source catalog ids survive a reload.
type Movie struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"not null;index" json:"title"`
	OriginalTitle    string    `json:"original_title"`
	Overview         string    `gorm:"type:text" json:"overview"`
	Tagline          string    `json:"tagline"`
	Status           string    `gorm:"size:32" json:"status"`
	ReleaseDate      string    `gorm:"index" json:"release_date"`
	ReleaseYear      *int      `gorm:"index" json:"release_year,omitempty"`
	Runtime          *int      `json:"runtime,omitempty"`
	Budget           int64     `json:"budget"`
	Revenue          int64     `json:"revenue"`
	VoteAverage      float64   `gorm:"index" json:"vote_average"`
	VoteCount        int       `json:"vote_count"`
	Popularity       float64   `gorm:"index" json:"popularity"`
	Adult            bool      `json:"adult"`
	Homepage         string    `json:"homepage"`
	IMDbID           string    `gorm:"column:imdb_id;size:16;index" json:"imdb_id"`
	OriginalLanguage string    `gorm:"size:8" json:"original_language"`
	PosterPath       string    `json:"poster_path"`
	BackdropPath     string    `json:"backdrop_path"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Movie) TableName() string {
	return "movies"
}
