package models

import "time"

// Language is a spoken language. The movie's original language is kept as
// a plain code on Movie and is not linked here.
type Language struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex;size:64" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Language) TableName() string {
	return "languages"
}

type MovieLanguage struct {
	MovieID    uint      `gorm:"primaryKey;autoIncrement:false" json:"movie_id"`
	LanguageID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"language_id"`
	Movie      *Movie    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Language   *Language `gorm:"constraint:OnDelete:CASCADE" json:"language,omitempty"`
}

func (MovieLanguage) TableName() string {
	return "movie_languages"
}

func (MovieLanguage) EntityColumn() string {
	return "language_id"
}

func (l MovieLanguage) Key() (uint, uint) {
	return l.MovieID, l.LanguageID
}
