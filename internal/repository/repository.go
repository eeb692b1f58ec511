package repository

import (
	"context"
	"errors"
	"time"

	"moviedb/internal/database"
)

var (
	// ErrNotFound is returned when a lookup or delete by key matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput is returned for requests rejected before reaching the database.
	ErrInvalidInput = errors.New("invalid input")
)

type base struct {
	db      *database.Database
	timeout time.Duration
}

func newBase(db *database.Database) base {
	return base{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}
