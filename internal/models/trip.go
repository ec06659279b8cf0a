// Package models defines the core domain entities for bikestats.
// These models represent bikeshare trip records, the tables they are loaded
// into, and the month/day selection an analysis run is restricted to.
//
// Terminology:
//   - Table: every trip of one dataset, in source order, with derived fields.
//   - View: a Table holding the subset of rows that passed the filters.
package models

import (
	"errors"
	"time"
)

// Source column names as they appear in the city exports.
const (
	ColumnStartTime    = "Start Time"
	ColumnEndTime      = "End Time"
	ColumnTripDuration = "Trip Duration"
	ColumnStartStation = "Start Station"
	ColumnEndStation   = "End Station"
	ColumnUserType     = "User Type"
	ColumnGender       = "Gender"
	ColumnBirthYear    = "Birth Year"
)

// RequiredColumns must be present in every source.
var RequiredColumns = []string{
	ColumnStartTime,
	ColumnTripDuration,
	ColumnStartStation,
	ColumnEndStation,
	ColumnUserType,
}

// TripRecord is a single bikeshare trip.
// Month, Weekday and Hour are derived from StartTime when the record is loaded.
type TripRecord struct {
	Row          int                 `json:"row"`          // Zero-based data row in the source
	ID           string              `json:"id,omitempty"` // Leading unnamed index column, if any
	StartTime    time.Time           `json:"start_time"`   // Required
	EndTime      Optional[time.Time] `json:"end_time"`
	TripDuration Optional[float64]   `json:"trip_duration"` // Seconds
	StartStation string              `json:"start_station"`
	EndStation   string              `json:"end_station"`
	UserType     string              `json:"user_type"`
	Gender       string              `json:"gender,omitempty"` // Empty when unknown or column absent
	BirthYear    Optional[float64]   `json:"birth_year"`
	Month        int                 `json:"month"`   // 1-12
	Weekday      string              `json:"weekday"` // e.g. "Monday"
	Hour         int                 `json:"hour"`    // 0-23
}

// Derive fills Month, Weekday and Hour from StartTime.
func (r *TripRecord) Derive() {
	r.Month = int(r.StartTime.Month())
	r.Weekday = r.StartTime.Weekday().String()
	r.Hour = r.StartTime.Hour()
}

// Validate checks that the derived fields are consistent with StartTime.
func (r *TripRecord) Validate() error {
	if r.StartTime.IsZero() {
		return errors.New("start time must be set")
	}
	if r.Month < 1 || r.Month > 12 {
		return errors.New("month must be between 1 and 12")
	}
	if r.Hour < 0 || r.Hour > 23 {
		return errors.New("hour must be between 0 and 23")
	}
	if _, ok := weekdayIndex(r.Weekday); !ok {
		return errors.New("weekday must be a full English day name")
	}
	if r.Month != int(r.StartTime.Month()) || r.Hour != r.StartTime.Hour() || r.Weekday != r.StartTime.Weekday().String() {
		return errors.New("derived fields must match start time")
	}
	if d, ok := r.TripDuration.Get(); ok && d < 0 {
		return errors.New("trip duration must not be negative")
	}
	return nil
}

// Schema describes the columns a source provided.
// The optional-column flags are computed once at load time.
type Schema struct {
	Columns      []string `json:"columns"`
	HasGender    bool     `json:"has_gender"`
	HasBirthYear bool     `json:"has_birth_year"`
}

// NewSchema builds a Schema from source column names.
func NewSchema(columns []string) Schema {
	s := Schema{Columns: append([]string(nil), columns...)}
	for _, c := range columns {
		switch c {
		case ColumnGender:
			s.HasGender = true
		case ColumnBirthYear:
			s.HasBirthYear = true
		}
	}
	return s
}

// Has reports whether the named column is present.
func (s Schema) Has(column string) bool {
	for _, c := range s.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Table is an ordered, read-only collection of trip records from one dataset.
type Table struct {
	Dataset DatasetID    `json:"dataset"`
	Schema  Schema       `json:"schema"`
	Records []TripRecord `json:"records"`
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Empty reports whether the table has no records.
func (t *Table) Empty() bool {
	return len(t.Records) == 0
}

// WithRecords returns a new table sharing this table's dataset and schema.
func (t *Table) WithRecords(records []TripRecord) *Table {
	return &Table{
		Dataset: t.Dataset,
		Schema:  t.Schema,
		Records: records,
	}
}
