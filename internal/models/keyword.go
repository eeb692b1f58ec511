package models

import "time"

type Keyword struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex;size:512" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Keyword) TableName() string {
	return "keywords"
}

type MovieKeyword struct {
	MovieID   uint     `gorm:"primaryKey;autoIncrement:false" json:"movie_id"`
	KeywordID uint     `gorm:"primaryKey;autoIncrement:false;index" json:"keyword_id"`
	Movie     *Movie   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Keyword   *Keyword `gorm:"constraint:OnDelete:CASCADE" json:"keyword,omitempty"`
}

func (MovieKeyword) TableName() string {
	return "movie_keywords"
}

func (MovieKeyword) EntityColumn() string {
	return "keyword_id"
}

func (l MovieKeyword) Key() (uint, uint) {
	return l.MovieID, l.KeywordID
}
