package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

type sqliteReader struct {
	db      *sql.DB
	rows    *sql.Rows
	columns []string
}

func openSQLite(ctx context.Context, path, table string) (*sqliteReader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	return &sqliteReader{db: db, rows: rows, columns: columns}, nil
}

func (r *sqliteReader) Columns() []string {
	return r.columns
}

func (r *sqliteReader) Next() (map[string]any, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	values := make([]any, len(r.columns))
	ptrs := make([]any, len(r.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	row := make(map[string]any, len(r.columns))
	for i, col := range r.columns {
		row[col] = values[i]
	}
	return row, nil
}

func (r *sqliteReader) Close() error {
	rowsErr := r.rows.Close()
	if err := r.db.Close(); err != nil {
		return err
	}
	return rowsErr
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
