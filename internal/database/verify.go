package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"moviedb/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrSchemaMismatch is returned by Verify when a junction table is missing or
// one of its foreign keys does not cascade on delete.
var ErrSchemaMismatch = errors.New("schema mismatch")

type ForeignKey struct {
	Column          string `json:"column"`
	ReferencedTable string `json:"referenced_table"`
	OnDelete        string `json:"on_delete"`
}

type TableReport struct {
	Table       string       `json:"table"`
	Exists      bool         `json:"exists"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
	Problems    []string     `json:"problems,omitempty"`
}

func (r TableReport) OK() bool {
	return r.Exists && len(r.Problems) == 0
}

// Verify inspects the live catalog and checks that every junction table
// exists with CASCADE foreign keys to movies and to its entity table.
func (d *Database) Verify(ctx context.Context) ([]TableReport, error) {
	var reports []TableReport
	failed := 0

	for _, j := range models.Junctions() {
		report := TableReport{Table: j.Table}

		report.Exists = d.DB.WithContext(ctx).Migrator().HasTable(j.Table)
		if !report.Exists {
			report.Problems = append(report.Problems, "table does not exist")
			reports = append(reports, report)
			failed++
			continue
		}

		fks, err := d.foreignKeys(ctx, j.Table)
		if err != nil {
			return nil, fmt.Errorf("failed to read foreign keys of %s: %w", j.Table, err)
		}
		report.ForeignKeys = fks

		expected := map[string]string{
			"movie_id":     models.Movie{}.TableName(),
			j.EntityColumn: j.EntityTable,
		}
		for column, table := range expected {
			if problem := checkForeignKey(fks, column, table); problem != "" {
				report.Problems = append(report.Problems, problem)
			}
		}

		if !report.OK() {
			failed++
		}
		reports = append(reports, report)
	}

	if failed > 0 {
		d.log.WithField("failed_tables", failed).Warn("Schema verification failed")
		return reports, fmt.Errorf("%w: %d junction table(s) failed verification", ErrSchemaMismatch, failed)
	}

	d.log.WithFields(logrus.Fields{"tables": len(reports)}).Info("Schema verification passed")
	return reports, nil
}

func checkForeignKey(fks []ForeignKey, column, table string) string {
	for _, fk := range fks {
		if fk.Column != column {
			continue
		}
		if fk.ReferencedTable != table {
			return fmt.Sprintf("%s references %s, want %s", column, fk.ReferencedTable, table)
		}
		if !strings.EqualFold(fk.OnDelete, "CASCADE") {
			return fmt.Sprintf("%s deletes with %s, want CASCADE", column, fk.OnDelete)
		}
		return ""
	}
	return fmt.Sprintf("%s has no foreign key to %s", column, table)
}

func (d *Database) foreignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	if d.Driver() == "sqlite" {
		return d.sqliteForeignKeys(ctx, table)
	}
	return d.postgresForeignKeys(ctx, table)
}

func (d *Database) sqliteForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	rows, err := d.DB.WithContext(ctx).Raw(fmt.Sprintf("PRAGMA foreign_key_list(%q)", table)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var id, seq int
		var target, from string
		var to, onUpdate, onDelete, match sql.NullString
		if err := rows.Scan(&id, &seq, &target, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		fks = append(fks, ForeignKey{
			Column:          from,
			ReferencedTable: target,
			OnDelete:        onDelete.String,
		})
	}
	return fks, rows.Err()
}

const postgresForeignKeysQuery = `
SELECT kcu.column_name, ccu.table_name, rc.delete_rule
FROM information_schema.referential_constraints rc
JOIN information_schema.key_column_usage kcu
	ON kcu.constraint_name = rc.constraint_name
	AND kcu.constraint_schema = rc.constraint_schema
JOIN information_schema.constraint_column_usage ccu
	ON ccu.constraint_name = rc.unique_constraint_name
	AND ccu.constraint_schema = rc.unique_constraint_schema
WHERE kcu.table_schema = current_schema() AND kcu.table_name = ?
ORDER BY kcu.column_name`

func (d *Database) postgresForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	rows, err := d.DB.WithContext(ctx).Raw(postgresForeignKeysQuery, table).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Column, &fk.ReferencedTable, &fk.OnDelete); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}
