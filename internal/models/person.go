package models

import (
	"fmt"
	"strings"
	"time"
)

type Person struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex;size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Person) TableName() string {
	return "people"
}

// Role is the credit a person holds on a movie.
type Role string

const (
	RoleActor    Role = "actor"
	RoleDirector Role = "director"
	RoleWriter   Role = "writer"
	RoleProducer Role = "producer"
	RoleComposer Role = "composer"
	RoleDOP      Role = "dop"
)

var roles = []Role{RoleActor, RoleDirector, RoleWriter, RoleProducer, RoleComposer, RoleDOP}

// Roles returns every accepted role in declaration order.
func Roles() []Role {
	return append([]Role(nil), roles...)
}

func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole accepts a role name as stored, ignoring surrounding case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// MoviePerson credits a person on a movie. The same person may hold several
// roles on one movie; the role is part of the key.
type MoviePerson struct {
	MovieID    uint    `gorm:"primaryKey;autoIncrement:false" json:"movie_id"`
	PersonID   uint    `gorm:"primaryKey;autoIncrement:false;index" json:"person_id"`
	Role       Role    `gorm:"primaryKey;size:16;check:chk_movie_people_role,role IN ('actor','director','writer','producer','composer','dop')" json:"role"`
	Importance int     `gorm:"not null" json:"importance"`
	Movie      *Movie  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Person     *Person `gorm:"constraint:OnDelete:CASCADE" json:"person,omitempty"`
}

func (MoviePerson) TableName() string {
	return "movie_people"
}

func (MoviePerson) EntityColumn() string {
	return "person_id"
}

func (l MoviePerson) Key() (uint, uint) {
	return l.MovieID, l.PersonID
}
