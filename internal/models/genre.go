package models

import "time"

type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex;size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Genre) TableName() string {
	return "genres"
}

type MovieGenre struct {
	MovieID uint   `gorm:"primaryKey;autoIncrement:false" json:"movie_id"`
	GenreID uint   `gorm:"primaryKey;autoIncrement:false;index" json:"genre_id"`
	Movie   *Movie `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Genre   *Genre `gorm:"constraint:OnDelete:CASCADE" json:"genre,omitempty"`
}

func (MovieGenre) TableName() string {
	return "movie_genres"
}

func (MovieGenre) EntityColumn() string {
	return "genre_id"
}

func (l MovieGenre) Key() (uint, uint) {
	return l.MovieID, l.GenreID
}
