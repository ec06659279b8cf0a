// Package storage loads city trip-record tables into memory.
//
// Each dataset is read from a tabular source (CSV, Parquet or SQLite), its
// start timestamps are parsed, and the month, weekday and hour fields are
// derived once per record. Loaded tables are cached for the life of the
// Loader and are never mutated, so repeated analysis runs over the same city
// reuse the first load.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rewired-gh/bikestats/internal/logger"
	"github.com/rewired-gh/bikestats/internal/models"
)

// Source formats understood by the loader.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatSQLite  = "sqlite"
)

// DefaultSQLiteTable is queried when a SQLite source does not name a table.
const DefaultSQLiteTable = "trips"

// Source locates the records of one dataset.
type Source struct {
	Path   string
	Format string // Optional; inferred from the file extension when empty
	Table  string // SQLite only
}

// ResolveFormat returns the explicit format or the one implied by the extension.
func (s Source) ResolveFormat() (string, error) {
	if s.Format != "" {
		f := strings.ToLower(s.Format)
		switch f {
		case FormatCSV, FormatParquet, FormatSQLite:
			return f, nil
		}
		return "", fmt.Errorf("unsupported source format %q", s.Format)
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".csv":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("cannot infer source format from %q", s.Path)
}

// rowReader yields source rows keyed by column name. Next returns io.EOF
// after the last row.
type rowReader interface {
	Columns() []string
	Next() (map[string]any, error)
	Close() error
}

// Loader resolves dataset identifiers to sources and loads them.
type Loader struct {
	sources map[models.DatasetID]Source
	tables  map[models.DatasetID]*models.Table
	mu      sync.Mutex
}

// NewLoader creates a Loader over a fixed dataset-to-source mapping.
// The mapping is copied and never modified afterwards.
func NewLoader(sources map[models.DatasetID]Source) *Loader {
	copied := make(map[models.DatasetID]Source, len(sources))
	for id, src := range sources {
		copied[id] = src
	}
	return &Loader{
		sources: copied,
		tables:  make(map[models.DatasetID]*models.Table),
	}
}

// Load returns the table for id, reading it from its source on first use.
func (l *Loader) Load(ctx context.Context, id models.DatasetID) (*models.Table, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownDataset, id)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if table, ok := l.tables[id]; ok {
		logger.Debug("Using cached table for %s (%d trips)", id, table.Len())
		return table, nil
	}

	src, ok := l.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: no source configured for %q", models.ErrUnknownDataset, id)
	}

	table, err := loadSource(ctx, id, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", id, err)
	}
	l.tables[id] = table
	return table, nil
}

func loadSource(ctx context.Context, id models.DatasetID, src Source) (*models.Table, error) {
	start := time.Now()

	format, err := src.ResolveFormat()
	if err != nil {
		return nil, err
	}
	logger.Debug("Opening %s source %s", format, src.Path)

	r, err := openReader(ctx, format, src)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.Close(); err != nil {
			logger.Warn("Failed to close source %s: %v", src.Path, err)
		}
	}()

	schema := models.NewSchema(r.Columns())
	for _, col := range models.RequiredColumns {
		if !schema.Has(col) {
			return nil, fmt.Errorf("%w: %q", models.ErrMissingColumn, col)
		}
	}
	logger.Debug("Schema for %s: gender=%v birth_year=%v columns=%v", id, schema.HasGender, schema.HasBirthYear, schema.Columns)

	records, err := readRecords(ctx, r, schema)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded %d trips for %s in %v", len(records), id, time.Since(start))
	return &models.Table{
		Dataset: id,
		Schema:  schema,
		Records: records,
	}, nil
}

func openReader(ctx context.Context, format string, src Source) (rowReader, error) {
	switch format {
	case FormatCSV:
		return openCSV(src.Path)
	case FormatParquet:
		return openParquet(src.Path)
	case FormatSQLite:
		table := src.Table
		if table == "" {
			table = DefaultSQLiteTable
		}
		return openSQLite(ctx, src.Path, table)
	}
	return nil, fmt.Errorf("unsupported source format %q", format)
}

// checkEvery controls how often the row loop polls the context.
const checkEvery = 4096

func readRecords(ctx context.Context, r rowReader, schema models.Schema) ([]models.TripRecord, error) {
	var records []models.TripRecord
	for row := 0; ; row++ {
		if row%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		values, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		rec, err := decodeRecord(row, values, schema)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
