package database

import (
	"context"
	"fmt"
	"strings"

	"moviedb/internal/models"

	"gorm.io/gorm"
)

type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// Tables lists every table in dependency order: junctions, reference
// tables, movies.
func Tables() []string {
	var tables []string
	for _, j := range models.Junctions() {
		tables = append(tables, j.Table)
	}
	for _, j := range models.Junctions() {
		tables = append(tables, j.EntityTable)
	}
	return append(tables, models.Movie{}.TableName())
}

// Stats counts the rows of every table.
func (d *Database) Stats(ctx context.Context) ([]TableCount, error) {
	db := d.DB.WithContext(ctx)

	var counts []TableCount
	for _, table := range Tables() {
		var n int64
		if err := db.Table(table).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts = append(counts, TableCount{Table: table, Rows: n})
	}
	return counts, nil
}

// Reset removes every row while keeping the schema. Junction rows go first so
// the reset never depends on cascades.
func (d *Database) Reset(ctx context.Context) error {
	tables := Tables()

	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if d.Driver() == "postgres" {
			return tx.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE").Error
		}
		for _, table := range tables {
			if err := tx.Exec(fmt.Sprintf("DELETE FROM %q", table)).Error; err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		d.log.WithError(err).Error("Failed to reset database")
		return err
	}

	d.log.WithField("tables", len(tables)).Info("Database cleared")
	return nil
}
