package models

import "time"

type Country struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex;size:128" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Country) TableName() string {
	return "countries"
}

type MovieCountry struct {
	MovieID   uint     `gorm:"primaryKey;autoIncrement:false" json:"movie_id"`
	CountryID uint     `gorm:"primaryKey;autoIncrement:false;index" json:"country_id"`
	Movie     *Movie   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Country   *Country `gorm:"constraint:OnDelete:CASCADE" json:"country,omitempty"`
}

func (MovieCountry) TableName() string {
	return "movie_countries"
}

func (MovieCountry) EntityColumn() string {
	return "country_id"
}

func (l MovieCountry) Key() (uint, uint) {
	return l.MovieID, l.CountryID
}
