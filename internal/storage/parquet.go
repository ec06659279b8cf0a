package storage

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
)

type parquetReader struct {
	file    *os.File
	reader  *parquet.Reader
	columns []string
	// TIMESTAMP columns decode to int64 in a row map; these convert them back.
	timestamps map[string]func(int64) time.Time
}

func openParquet(path string) (*parquetReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	fields := pqFile.Schema().Fields()
	columns := make([]string, len(fields))
	timestamps := make(map[string]func(int64) time.Time)
	for i, f := range fields {
		columns[i] = f.Name()
		if lt := f.Type().LogicalType(); lt != nil && lt.Timestamp != nil {
			timestamps[f.Name()] = timestampDecoder(lt.Timestamp.Unit)
		}
	}

	return &parquetReader{
		file:       file,
		reader:     parquet.NewReader(pqFile),
		columns:    columns,
		timestamps: timestamps,
	}, nil
}

func timestampDecoder(unit format.TimeUnit) func(int64) time.Time {
	switch {
	case unit.Millis != nil:
		return func(v int64) time.Time { return time.UnixMilli(v).UTC() }
	case unit.Micros != nil:
		return func(v int64) time.Time { return time.UnixMicro(v).UTC() }
	}
	return func(v int64) time.Time { return time.Unix(0, v).UTC() }
}

func (r *parquetReader) Columns() []string {
	return r.columns
}

func (r *parquetReader) Next() (map[string]any, error) {
	row := make(map[string]any)
	if err := r.reader.Read(&row); err != nil {
		return nil, err
	}
	for col, decode := range r.timestamps {
		if v, ok := row[col].(int64); ok {
			row[col] = decode(v)
		}
	}
	return row, nil
}

func (r *parquetReader) Close() error {
	readErr := r.reader.Close()
	if err := r.file.Close(); err != nil {
		return err
	}
	return readErr
}
