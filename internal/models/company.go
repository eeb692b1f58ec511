package models

import "time"

type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex;size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Company) TableName() string {
	return "companies"
}

type MovieCompany struct {
	MovieID   uint     `gorm:"primaryKey;autoIncrement:false" json:"movie_id"`
	CompanyID uint     `gorm:"primaryKey;autoIncrement:false;index" json:"company_id"`
	Movie     *Movie   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Company   *Company `gorm:"constraint:OnDelete:CASCADE" json:"company,omitempty"`
}

func (MovieCompany) TableName() string {
	return "movie_companies"
}

func (MovieCompany) EntityColumn() string {
	return "company_id"
}

func (l MovieCompany) Key() (uint, uint) {
	return l.MovieID, l.CompanyID
}
