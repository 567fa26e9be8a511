package source

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mchmarny/bureau/pkg/tradeline"
)

var (
	//go:embed sql/*
	sqlFS embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// ImportRun is one entry of the import log.
type ImportRun struct {
	Source     string `json:"source" yaml:"source"`
	Table      string `json:"table" yaml:"table"`
	Rows       int    `json:"rows" yaml:"rows"`
	ImportedAt string `json:"imported_at" yaml:"importedAt"`
}

// Init creates the import log table when it does not exist.
func Init(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errDBNotInitialized
	}

	b, err := sqlFS.ReadFile("sql/ddl.sql")
	if err != nil {
		return errors.Wrap(err, "failed to read the schema creation file")
	}
	if _, err := db.ExecContext(ctx, string(b)); err != nil {
		return errors.Wrap(err, "failed to create database schema")
	}
	return nil
}

// Columns returns the union of the record columns with crn first and the
// rest sorted.
func Columns(records []tradeline.Record) []string {
	seen := make(map[string]bool)
	list := make([]string, 0)
	for _, r := range records {
		for k := range r {
			if k == tradeline.ColumnCRN || seen[k] {
				continue
			}
			seen[k] = true
			list = append(list, k)
		}
	}
	slices.Sort(list)
	return append([]string{tradeline.ColumnCRN}, list...)
}

// Import replaces table with the records, every column stored as TEXT, and
// appends an entry to the import log. It returns the number of rows written.
func Import(ctx context.Context, db *sql.DB, driver, from, table string, records []tradeline.Record) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	name, err := quoteIdent(table)
	if err != nil {
		return 0, err
	}
	if err := Init(ctx, db); err != nil {
		return 0, err
	}

	cols := Columns(records)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		if quoted[i], err = quoteColumn(c); err != nil {
			return 0, err
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		rollbackTransaction(tx)
		return 0, fmt.Errorf("error dropping table %s: %w", table, err)
	}

	defs := make([]string, len(quoted))
	for i, q := range quoted {
		defs[i] = q + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		rollbackTransaction(tx)
		return 0, fmt.Errorf("error creating table %s: %w", table, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		name, strings.Join(quoted, ", "), placeholders(driver, len(cols)))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		rollbackTransaction(tx)
		return 0, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for i, r := range records {
		for j, c := range cols {
			if v, ok := r[c]; ok {
				args[j] = v
			} else {
				args[j] = nil
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			slog.Error("failed to insert tradeline", "index", i, "error", err)
			rollbackTransaction(tx)
			return 0, fmt.Errorf("error inserting tradeline[%d]: %w", i, err)
		}
	}

	logSQL := fmt.Sprintf("INSERT INTO import_log (source, table_name, row_count, imported_at) VALUES (%s)",
		placeholders(driver, 4))
	if _, err := tx.ExecContext(ctx, logSQL, from, table, len(records),
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		rollbackTransaction(tx)
		return 0, fmt.Errorf("error logging import: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return len(records), nil
}

// ImportHistory returns the import log, newest first.
func ImportHistory(ctx context.Context, db *sql.DB) ([]*ImportRun, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if err := Init(ctx, db); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT source, table_name, row_count, imported_at
		FROM import_log ORDER BY imported_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query import log")
	}
	defer rows.Close()

	list := make([]*ImportRun, 0)
	for rows.Next() {
		r := &ImportRun{}
		if err := rows.Scan(&r.Source, &r.Table, &r.Rows, &r.ImportedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan import log row")
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

func placeholders(driver string, n int) string {
	list := make([]string, n)
	for i := range list {
		if driver == DriverPostgres {
			list[i] = "$" + strconv.Itoa(i+1)
		} else {
			list[i] = "?"
		}
	}
	return strings.Join(list, ", ")
}

func quoteColumn(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "\"\x00") {
		return "", fmt.Errorf("invalid column name: %q", name)
	}
	return `"` + name + `"`, nil
}

func rollbackTransaction(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		slog.Error("error rolling back transaction", "error", err)
	}
}
