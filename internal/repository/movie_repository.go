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

type MovieRepository interface {
	Create(ctx context.Context, movie *models.Movie) error
	Update(ctx context.Context, movie *models.Movie) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Movie, error)
	Exists(ctx context.Context, id uint) (bool, error)
	FindAll(ctx context.Context, page, limit int, search string) ([]models.Movie, int64, error)
}

type movieRepository struct {
	base
}

func NewMovieRepository(db *database.Database) MovieRepository {
	return &movieRepository{base: newBase(db)}
}

func (r *movieRepository) Create(ctx context.Context, movie *models.Movie) error {
	if strings.TrimSpace(movie.Title) == "" {
		return fmt.Errorf("%w: movie title is required", ErrInvalidInput)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return database.Classify(r.db.WithContext(ctx).Create(movie).Error)
}

func (r *movieRepository) Update(ctx context.Context, movie *models.Movie) error {
	if movie.ID == 0 {
		return fmt.Errorf("%w: movie id is required", ErrInvalidInput)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return database.Classify(r.db.WithContext(ctx).Save(movie).Error)
}

// Delete removes the movie. The storage engine cascades the removal to every
// junction table.
func (r *movieRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).Delete(&models.Movie{}, id)
	if result.Error != nil {
		return database.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("movie %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *movieRepository) FindByID(ctx context.Context, id uint) (*models.Movie, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movie models.Movie
	err := r.db.WithContext(ctx).First(&movie, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("movie %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepository) Exists(ctx context.Context, id uint) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).Model(&models.Movie{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *movieRepository) FindAll(ctx context.Context, page, limit int, search string) ([]models.Movie, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var movies []models.Movie
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Movie{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(original_title) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&movies).Error; err != nil {
		return nil, 0, err
	}

	return movies, total, nil
}
