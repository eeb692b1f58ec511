package repository

import (
	"context"
	"fmt"

	"moviedb/internal/database"
	"moviedb/internal/models"

	"gorm.io/gorm/clause"
)

const linkBatchSize = 500

// LinkRepository manages one junction table. Rows are inserted or deleted,
// never updated.
type LinkRepository[T models.Link] interface {
	// Link inserts one row. Duplicates and dangling references are rejected
	// by the storage engine as database.ErrDuplicateKey and
	// database.ErrForeignKeyViolation.
	Link(ctx context.Context, link *T) error

	// LinkIgnoreDuplicate inserts rows, skipping ones already present, and
	// reports how many were new. Dangling references still fail.
	LinkIgnoreDuplicate(ctx context.Context, links []T) (int64, error)

	Unlink(ctx context.Context, link *T) error
	// ListByMovie returns the rows of one movie with both endpoints loaded.
	ListByMovie(ctx context.Context, movieID uint) ([]T, error)
	ListByEntity(ctx context.Context, entityID uint) ([]T, error)
	CountByMovie(ctx context.Context, movieID uint) (int64, error)
	CountByEntity(ctx context.Context, entityID uint) (int64, error)
}

type linkRepository[T models.Link] struct {
	base
}

func NewLinkRepository[T models.Link](db *database.Database) LinkRepository[T] {
	return newLinkRepository[T](db)
}

func newLinkRepository[T models.Link](db *database.Database) *linkRepository[T] {
	return &linkRepository[T]{base: newBase(db)}
}

func NewMovieGenreRepository(db *database.Database) LinkRepository[models.MovieGenre] {
	return NewLinkRepository[models.MovieGenre](db)
}

func NewMovieKeywordRepository(db *database.Database) LinkRepository[models.MovieKeyword] {
	return NewLinkRepository[models.MovieKeyword](db)
}

func NewMovieCompanyRepository(db *database.Database) LinkRepository[models.MovieCompany] {
	return NewLinkRepository[models.MovieCompany](db)
}

func NewMovieCountryRepository(db *database.Database) LinkRepository[models.MovieCountry] {
	return NewLinkRepository[models.MovieCountry](db)
}

func NewMovieLanguageRepository(db *database.Database) LinkRepository[models.MovieLanguage] {
	return NewLinkRepository[models.MovieLanguage](db)
}

func (r *linkRepository[T]) table() string {
	var zero T
	return zero.TableName()
}

func (r *linkRepository[T]) entityColumn() string {
	var zero T
	return zero.EntityColumn()
}

func validateKey[T models.Link](link T) error {
	movieID, entityID := link.Key()
	if movieID == 0 || entityID == 0 {
		return fmt.Errorf("%w: %s row needs movie_id and %s", ErrInvalidInput, link.TableName(), link.EntityColumn())
	}
	return nil
}

func (r *linkRepository[T]) Link(ctx context.Context, link *T) error {
	if err := validateKey(*link); err != nil {
		return err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(link).Error
	if err != nil {
		movieID, entityID := (*link).Key()
		return fmt.Errorf("failed to link %s (%d, %d): %w", r.table(), movieID, entityID, database.Classify(err))
	}
	return nil
}

func (r *linkRepository[T]) LinkIgnoreDuplicate(ctx context.Context, links []T) (int64, error) {
	if len(links) == 0 {
		return 0, nil
	}
	for _, link := range links {
		if err := validateKey(link); err != nil {
			return 0, err
		}
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&links, linkBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to link %s: %w", r.table(), database.Classify(result.Error))
	}
	return result.RowsAffected, nil
}

// Unlink deletes the row matching the full primary key of link.
func (r *linkRepository[T]) Unlink(ctx context.Context, link *T) error {
	if err := validateKey(*link); err != nil {
		return err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).Delete(link)
	if result.Error != nil {
		return database.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		movieID, entityID := (*link).Key()
		return fmt.Errorf("%s (%d, %d): %w", r.table(), movieID, entityID, ErrNotFound)
	}
	return nil
}

func (r *linkRepository[T]) ListByMovie(ctx context.Context, movieID uint) ([]T, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var links []T
	err := r.db.WithContext(ctx).
		Preload(clause.Associations).
		Where("movie_id = ?", movieID).
		Order(r.entityColumn()).
		Find(&links).Error
	return links, err
}

func (r *linkRepository[T]) ListByEntity(ctx context.Context, entityID uint) ([]T, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var links []T
	err := r.db.WithContext(ctx).
		Where(r.entityColumn()+" = ?", entityID).
		Order("movie_id").
		Find(&links).Error
	return links, err
}

func (r *linkRepository[T]) CountByMovie(ctx context.Context, movieID uint) (int64, error) {
	return r.count(ctx, "movie_id", movieID)
}

func (r *linkRepository[T]) CountByEntity(ctx context.Context, entityID uint) (int64, error) {
	return r.count(ctx, r.entityColumn(), entityID)
}

func (r *linkRepository[T]) count(ctx context.Context, column string, id uint) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).Where(column+" = ?", id).Count(&n).Error
	return n, err
}
