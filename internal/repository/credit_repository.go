package repository

import (
	"context"
	"fmt"

	"moviedb/internal/database"
	"moviedb/internal/models"
)

// CreditRepository manages movie_people. A person may hold several roles on
// one movie; importance orders the credits but is not unique.
type CreditRepository interface {
	LinkRepository[models.MoviePerson]

	ListCast(ctx context.Context, movieID uint) ([]models.MoviePerson, error)
	ListByRole(ctx context.Context, movieID uint, role models.Role) ([]models.MoviePerson, error)
	RolesFor(ctx context.Context, movieID, personID uint) ([]models.Role, error)
}

type creditRepository struct {
	*linkRepository[models.MoviePerson]
}

func NewCreditRepository(db *database.Database) CreditRepository {
	return &creditRepository{linkRepository: newLinkRepository[models.MoviePerson](db)}
}

func validateRole(role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return nil
}

func (r *creditRepository) Link(ctx context.Context, credit *models.MoviePerson) error {
	if err := validateRole(credit.Role); err != nil {
		return err
	}
	return r.linkRepository.Link(ctx, credit)
}

func (r *creditRepository) LinkIgnoreDuplicate(ctx context.Context, credits []models.MoviePerson) (int64, error) {
	for _, c := range credits {
		if err := validateRole(c.Role); err != nil {
			return 0, err
		}
	}
	return r.linkRepository.LinkIgnoreDuplicate(ctx, credits)
}

func (r *creditRepository) Unlink(ctx context.Context, credit *models.MoviePerson) error {
	if err := validateRole(credit.Role); err != nil {
		return err
	}
	return r.linkRepository.Unlink(ctx, credit)
}

// ListCast returns the actors of a movie in billing order. Unranked credits
// (importance 0) come last.
func (r *creditRepository) ListCast(ctx context.Context, movieID uint) ([]models.MoviePerson, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var cast []models.MoviePerson
	err := r.db.WithContext(ctx).
		Preload("Person").
		Where("movie_id = ? AND role = ?", movieID, models.RoleActor).
		Order("CASE WHEN importance = 0 THEN 1 ELSE 0 END, importance, person_id").
		Find(&cast).Error
	return cast, err
}

func (r *creditRepository) ListByRole(ctx context.Context, movieID uint, role models.Role) ([]models.MoviePerson, error) {
	if err := validateRole(role); err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var credits []models.MoviePerson
	err := r.db.WithContext(ctx).
		Preload("Person").
		Where("movie_id = ? AND role = ?", movieID, role).
		Order("importance, person_id").
		Find(&credits).Error
	return credits, err
}

func (r *creditRepository) RolesFor(ctx context.Context, movieID, personID uint) ([]models.Role, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var roles []models.Role
	err := r.db.WithContext(ctx).
		Model(&models.MoviePerson{}).
		Where("movie_id = ? AND person_id = ?", movieID, personID).
		Order("role").
		Pluck("role", &roles).Error
	return roles, err
}
