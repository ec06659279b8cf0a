// Package filter restricts a trip table to the rows matching a month and
// weekday selection. Both predicates are optional ("all") and compose
// conjunctively; the input table is never modified.
package filter

import (
	"fmt"
	"strings"

	"github.com/rewired-gh/bikestats/internal/logger"
	"github.com/rewired-gh/bikestats/internal/models"
)

// Predicate reports whether a record belongs in the filtered view.
type Predicate func(r *models.TripRecord) bool

// ByMonth keeps records whose derived month equals the named month's ordinal.
// "all" yields a nil predicate.
func ByMonth(month string) (Predicate, error) {
	ordinal, err := models.MonthOrdinal(month)
	if err != nil {
		return nil, err
	}
	if ordinal == 0 {
		return nil, nil
	}
	return func(r *models.TripRecord) bool {
		return r.Month == ordinal
	}, nil
}

// ByDay keeps records whose weekday matches day, ignoring case.
// "all" yields a nil predicate.
func ByDay(day string) (Predicate, error) {
	if strings.EqualFold(day, models.All) {
		return nil, nil
	}
	valid := false
	for _, d := range models.Weekdays {
		if strings.EqualFold(d, day) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("%w: day %q", models.ErrInvalidSelection, day)
	}
	return func(r *models.TripRecord) bool {
		return strings.EqualFold(r.Weekday, day)
	}, nil
}

// Apply returns the view of table selected by month and day.
// With both filters set to "all" the view holds every record in order.
func Apply(table *models.Table, month, day string) (*models.Table, error) {
	byMonth, err := ByMonth(month)
	if err != nil {
		return nil, err
	}
	byDay, err := ByDay(day)
	if err != nil {
		return nil, err
	}

	var predicates []Predicate
	for _, p := range []Predicate{byMonth, byDay} {
		if p != nil {
			predicates = append(predicates, p)
		}
	}

	view := table.WithRecords(Where(table.Records, predicates...))
	logger.Debug("Filter month=%s day=%s kept %d of %d trips", month, day, view.Len(), table.Len())
	return view, nil
}

// ApplySelection is Apply driven by a Selection.
func ApplySelection(table *models.Table, sel models.Selection) (*models.Table, error) {
	return Apply(table, sel.Month, sel.Day)
}

// Where returns the records satisfying every predicate, in their original
// order. The result never aliases records.
func Where(records []models.TripRecord, predicates ...Predicate) []models.TripRecord {
	out := make([]models.TripRecord, 0, len(records))
	for i := range records {
		keep := true
		for _, p := range predicates {
			if !p(&records[i]) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, records[i])
		}
	}
	return out
}
