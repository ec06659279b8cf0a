package models

import (
	"fmt"
	"strings"
)

// All disables a month or day filter.
const All = "all"

// Months are the month names a selection may use. The datasets only cover
// the first half of the year.
var Months = []string{"january", "february", "march", "april", "may", "june"}

// Weekdays are the day names a selection may use, Monday first.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Selection restricts an analysis run to a dataset, a month and a weekday.
type Selection struct {
	Dataset DatasetID `json:"dataset"`
	Month   string    `json:"month"` // "all" or one of Months
	Day     string    `json:"day"`   // "all" or one of Weekdays
}

// ParseSelection normalizes user input into a validated Selection.
func ParseSelection(dataset, month, day string) (Selection, error) {
	id, err := ParseDatasetID(dataset)
	if err != nil {
		return Selection{}, err
	}
	s := Selection{
		Dataset: id,
		Month:   strings.ToLower(strings.TrimSpace(month)),
		Day:     strings.ToLower(strings.TrimSpace(day)),
	}
	if err := s.Validate(); err != nil {
		return Selection{}, err
	}
	return s, nil
}

// Validate checks that the month and day are accepted names or "all".
func (s Selection) Validate() error {
	if !s.Dataset.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDataset, s.Dataset)
	}
	if _, err := MonthOrdinal(s.Month); err != nil {
		return err
	}
	if s.Day != All {
		if _, ok := weekdayIndex(s.Day); !ok {
			return fmt.Errorf("%w: day %q", ErrInvalidSelection, s.Day)
		}
	}
	return nil
}

// MonthOrdinal returns the 1-based position of month within Months,
// or 0 for "all".
func MonthOrdinal(month string) (int, error) {
	m := strings.ToLower(month)
	if m == All {
		return 0, nil
	}
	for i, name := range Months {
		if name == m {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: month %q", ErrInvalidSelection, month)
}

// MonthName returns the capitalized English name of a 1-based month.
func MonthName(ordinal int) string {
	names := []string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
	if ordinal < 1 || ordinal > len(names) {
		return fmt.Sprintf("month %d", ordinal)
	}
	return names[ordinal-1]
}

func weekdayIndex(day string) (int, bool) {
	d := strings.ToLower(day)
	for i, name := range Weekdays {
		if name == d {
			return i, true
		}
	}
	return 0, false
}
