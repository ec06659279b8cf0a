package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

type csvReader struct {
	file    *os.File
	reader  *csv.Reader
	columns []string
}

func openCSV(path string) (*csvReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}
	if len(columns) > 0 {
		columns[0] = strings.TrimPrefix(columns[0], "\ufeff")
	}

	return &csvReader{file: file, reader: reader, columns: columns}, nil
}

func (r *csvReader) Columns() []string {
	return r.columns
}

func (r *csvReader) Next() (map[string]any, error) {
	record, err := r.reader.Read()
	if err != nil {
		return nil, err
	}
	row := make(map[string]any, len(r.columns))
	for i, col := range r.columns {
		if i < len(record) {
			row[col] = record[i]
		}
	}
	return row, nil
}

func (r *csvReader) Close() error {
	return r.file.Close()
}
