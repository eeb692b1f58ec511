package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moviedb/internal/database"
	"moviedb/internal/models"

	"gorm.io/gorm"
)

// EntityRepository manages one reference table (people, genres, keywords,
// companies, countries, languages). Names are unique per table.
type EntityRepository[T models.Entity] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	FindByName(ctx context.Context, name string) (*T, error)
	FindOrCreate(ctx context.Context, name string) (*T, error)
	FindAll(ctx context.Context) ([]T, error)
	Delete(ctx context.Context, id uint) error
}

type entityRepository[T models.Entity] struct {
	base
}

func NewEntityRepository[T models.Entity](db *database.Database) EntityRepository[T] {
	return &entityRepository[T]{base: newBase(db)}
}

func NewPersonRepository(db *database.Database) EntityRepository[models.Person] {
	return NewEntityRepository[models.Person](db)
}

func NewGenreRepository(db *database.Database) EntityRepository[models.Genre] {
	return NewEntityRepository[models.Genre](db)
}

func NewKeywordRepository(db *database.Database) EntityRepository[models.Keyword] {
	return NewEntityRepository[models.Keyword](db)
}

func NewCompanyRepository(db *database.Database) EntityRepository[models.Company] {
	return NewEntityRepository[models.Company](db)
}

func NewCountryRepository(db *database.Database) EntityRepository[models.Country] {
	return NewEntityRepository[models.Country](db)
}

func NewLanguageRepository(db *database.Database) EntityRepository[models.Language] {
	return NewEntityRepository[models.Language](db)
}

func (r *entityRepository[T]) Create(ctx context.Context, entity *T) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return database.Classify(r.db.WithContext(ctx).Create(entity).Error)
}

func (r *entityRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var entity T
	err := r.db.WithContext(ctx).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%T %d: %w", entity, id, ErrNotFound)
		}
		return nil, err
	}
	return &entity, nil
}

func (r *entityRepository[T]) FindByName(ctx context.Context, name string) (*T, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var entity T
	err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// FindOrCreate returns the row named name, inserting it when absent. A
// concurrent insert of the same name is resolved by reading the winner.
func (r *entityRepository[T]) FindOrCreate(ctx context.Context, name string) (*T, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var entity T
	err := database.Classify(r.db.WithContext(ctx).
		FirstOrCreate(&entity, map[string]interface{}{"name": name}).Error)
	if errors.Is(err, database.ErrDuplicateKey) {
		entity = *new(T)
		err = r.db.WithContext(ctx).Where("name = ?", name).First(&entity).Error
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *entityRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var entities []T
	err := r.db.WithContext(ctx).Order("name ASC").Find(&entities).Error
	return entities, err
}

// Delete removes the entity; its junction rows are removed by cascade.
func (r *entityRepository[T]) Delete(ctx context.Context, id uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return database.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%T %d: %w", *new(T), id, ErrNotFound)
	}
	return nil
}
