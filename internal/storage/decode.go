package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rewired-gh/bikestats/internal/models"
)

// timestampLayouts are tried in order when a timestamp arrives as text.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// idColumns hold the unnamed index column written by dataframe exports.
var idColumns = []string{"", "Unnamed: 0"}

func decodeRecord(row int, values map[string]any, schema models.Schema) (models.TripRecord, error) {
	rec := models.TripRecord{Row: row}

	raw := values[models.ColumnStartTime]
	start, err := parseTimestamp(raw)
	if err != nil {
		return rec, &models.MalformedTimestampError{Row: row, Value: toString(raw), Err: err}
	}
	rec.StartTime = start
	rec.Derive()

	if schema.Has(models.ColumnEndTime) {
		if end, err := parseTimestamp(values[models.ColumnEndTime]); err == nil {
			rec.EndTime = models.Some(end)
		}
	}

	rec.TripDuration, err = parseNumber(values[models.ColumnTripDuration])
	if err != nil {
		return rec, fmt.Errorf("row %d: %s: %w", row, models.ColumnTripDuration, err)
	}

	rec.StartStation = toString(values[models.ColumnStartStation])
	rec.EndStation = toString(values[models.ColumnEndStation])
	rec.UserType = toString(values[models.ColumnUserType])

	if schema.HasGender {
		rec.Gender = toString(values[models.ColumnGender])
	}
	if schema.HasBirthYear {
		rec.BirthYear, err = parseNumber(values[models.ColumnBirthYear])
		if err != nil {
			return rec, fmt.Errorf("row %d: %s: %w", row, models.ColumnBirthYear, err)
		}
	}

	for _, col := range idColumns {
		if v, ok := values[col]; ok {
			rec.ID = toString(v)
			break
		}
	}

	return rec, nil
}

func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, fmt.Errorf("zero time")
		}
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("missing value")
		}
		return parseTimestamp(*t)
	case nil:
		return time.Time{}, fmt.Errorf("missing value")
	}

	s := toString(v)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing value")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no known layout matches")
}

// parseNumber returns an absent value for empty cells and an error for
// cells that are present but not numeric.
func parseNumber(v any) (models.Optional[float64], error) {
	var f float64
	switch n := v.(type) {
	case nil:
		return models.None[float64](), nil
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case *float64:
		if n == nil {
			return models.None[float64](), nil
		}
		f = *n
	case *int64:
		if n == nil {
			return models.None[float64](), nil
		}
		f = float64(*n)
	default:
		s := toString(v)
		if s == "" || strings.EqualFold(s, "nan") {
			return models.None[float64](), nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.None[float64](), fmt.Errorf("not a number: %q", s)
		}
		f = parsed
	}
	if math.IsNaN(f) {
		return models.None[float64](), nil
	}
	return models.Some(f), nil
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case *string:
		if s == nil {
			return ""
		}
		return strings.TrimSpace(*s)
	case []byte:
		return strings.TrimSpace(string(s))
	case time.Time:
		return s.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
