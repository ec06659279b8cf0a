package models

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDataset is returned when a dataset identifier is not one of Datasets.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrMalformedTimestamp is matched by every *MalformedTimestampError.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrMissingColumn is returned when a source lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidSelection is returned for month or day names outside the accepted lists.
	ErrInvalidSelection = errors.New("invalid selection")
)

// MalformedTimestampError reports a start time that could not be parsed.
// Row is the zero-based data row index in the source (the header is not counted).
type MalformedTimestampError struct {
	Row   int
	Value string
	Err   error
}

func (e *MalformedTimestampError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d: malformed timestamp %q: %v", e.Row, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d: malformed timestamp %q", e.Row, e.Value)
}

func (e *MalformedTimestampError) Is(target error) bool {
	return target == ErrMalformedTimestamp
}

func (e *MalformedTimestampError) Unwrap() error {
	return e.Err
}
