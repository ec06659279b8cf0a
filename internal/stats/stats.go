// Package stats computes the descriptive statistics reported for a filtered
// trip view: popular travel times, popular stations and trips, trip duration
// totals, and user demographics.
//
// Every computation is read-only and safe on an empty view: aggregates that
// are undefined without data (modes, minimum, maximum, mean) are returned as
// absent models.Optional values instead of failing.
//
// When several values share the highest frequency the lowest one is reported:
// numeric order for months, hours and birth years, byte-wise order for names,
// and start-then-end station order for trips.
package stats

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rewired-gh/bikestats/internal/logger"
	"github.com/rewired-gh/bikestats/internal/models"
)

// Availability tells whether an optional column exists in the dataset.
type Availability string

const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
)

func availability(present bool) Availability {
	if present {
		return Available
	}
	return Unavailable
}

// TimeStats holds the most frequent times of travel.
type TimeStats struct {
	Trips           int                                  `json:"trips"`
	MostCommonMonth models.Optional[models.Mode[int]]    `json:"most_common_month"`
	MostCommonDay   models.Optional[models.Mode[string]] `json:"most_common_day"`
	MostCommonHour  models.Optional[models.Mode[int]]    `json:"most_common_hour"`
	Elapsed         time.Duration                        `json:"elapsed"`
}

// StationPair is a trip from one station to another.
type StationPair struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (p StationPair) less(o StationPair) bool {
	if p.Start != o.Start {
		return p.Start < o.Start
	}
	return p.End < o.End
}

// StationStats holds the most popular stations and trip.
type StationStats struct {
	Trips           int                                       `json:"trips"`
	MostCommonStart models.Optional[models.Mode[string]]      `json:"most_common_start"`
	MostCommonEnd   models.Optional[models.Mode[string]]      `json:"most_common_end"`
	MostCommonTrip  models.Optional[models.Mode[StationPair]] `json:"most_common_trip"`
	Elapsed         time.Duration                             `json:"elapsed"`
}

// HMS is a whole-second duration split into hours, minutes and seconds.
type HMS struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// MS is a whole-second duration split into minutes and seconds.
type MS struct {
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// DurationStats holds total and mean travel time.
// Trips counts only records with a known duration.
type DurationStats struct {
	Trips        int                      `json:"trips"`
	TotalSeconds float64                  `json:"total_seconds"`
	Total        models.Optional[HMS]     `json:"total"`
	MeanSeconds  models.Optional[float64] `json:"mean_seconds"`
	Mean         models.Optional[MS]      `json:"mean"`
	Elapsed      time.Duration            `json:"elapsed"`
}

// GenderStats is the gender distribution, when the dataset records gender.
type GenderStats struct {
	Availability Availability   `json:"availability"`
	Counts       []models.Count `json:"counts,omitempty"`
}

// BirthYearStats summarizes birth years, when the dataset records them.
type BirthYearStats struct {
	Availability Availability                      `json:"availability"`
	Earliest     models.Optional[int]              `json:"earliest"`
	MostRecent   models.Optional[int]              `json:"most_recent"`
	MostCommon   models.Optional[models.Mode[int]] `json:"most_common"`
}

// UserStats holds user type, gender and birth year aggregates.
type UserStats struct {
	Trips     int            `json:"trips"`
	UserTypes []models.Count `json:"user_types"`
	Gender    GenderStats    `json:"gender"`
	BirthYear BirthYearStats `json:"birth_year"`
	Elapsed   time.Duration  `json:"elapsed"`
}

// Summary bundles every report for one analysis run.
type Summary struct {
	RunID     string           `json:"run_id"`
	Selection models.Selection `json:"selection"`
	Trips     int              `json:"trips"`
	Time      TimeStats        `json:"time"`
	Stations  StationStats     `json:"stations"`
	Durations DurationStats    `json:"durations"`
	Users     UserStats        `json:"users"`
}

// Engine computes statistics over filtered views.
type Engine struct {
	now func() time.Time
}

// New creates a new Engine
func New() *Engine {
	return &Engine{now: time.Now}
}

// Time computes the most common month, weekday and start hour.
func (e *Engine) Time(view *models.Table) TimeStats {
	start := e.now()

	months := make(map[int]int)
	days := make(map[string]int)
	hours := make(map[int]int)
	for i := range view.Records {
		r := &view.Records[i]
		months[r.Month]++
		days[r.Weekday]++
		hours[r.Hour]++
	}

	s := TimeStats{
		Trips:           view.Len(),
		MostCommonMonth: mostCommonOrdered(months),
		MostCommonDay:   mostCommonOrdered(days),
		MostCommonHour:  mostCommonOrdered(hours),
	}
	s.Elapsed = e.now().Sub(start)
	logger.Debug("Time stats over %d trips took %v", s.Trips, s.Elapsed)
	return s
}

// Stations computes the most common start station, end station and trip.
// Rows with an empty station name are not counted.
func (e *Engine) Stations(view *models.Table) StationStats {
	start := e.now()

	starts := make(map[string]int)
	ends := make(map[string]int)
	trips := make(map[StationPair]int)
	for i := range view.Records {
		r := &view.Records[i]
		if r.StartStation != "" {
			starts[r.StartStation]++
		}
		if r.EndStation != "" {
			ends[r.EndStation]++
		}
		if r.StartStation != "" && r.EndStation != "" {
			trips[StationPair{Start: r.StartStation, End: r.EndStation}]++
		}
	}

	s := StationStats{
		Trips:           view.Len(),
		MostCommonStart: mostCommonOrdered(starts),
		MostCommonEnd:   mostCommonOrdered(ends),
		MostCommonTrip:  mostCommon(trips, StationPair.less),
	}
	s.Elapsed = e.now().Sub(start)
	logger.Debug("Station stats over %d trips took %v", s.Trips, s.Elapsed)
	return s
}

// Durations computes total and mean trip duration. Both decompositions
// truncate to whole seconds before splitting.
func (e *Engine) Durations(view *models.Table) DurationStats {
	start := e.now()

	var s DurationStats
	for i := range view.Records {
		if d, ok := view.Records[i].TripDuration.Get(); ok {
			s.TotalSeconds += d
			s.Trips++
		}
	}

	if s.Trips > 0 {
		s.Total = models.Some(SplitHMS(s.TotalSeconds))
		mean := s.TotalSeconds / float64(s.Trips)
		s.MeanSeconds = models.Some(mean)
		s.Mean = models.Some(SplitMS(mean))
	}

	s.Elapsed = e.now().Sub(start)
	logger.Debug("Duration stats over %d trips took %v", s.Trips, s.Elapsed)
	return s
}

// SplitHMS floors seconds and splits it into hours, minutes and seconds.
func SplitHMS(seconds float64) HMS {
	total := int64(math.Floor(seconds))
	return HMS{
		Hours:   floorDiv(total, 3600),
		Minutes: floorDiv(floorMod(total, 3600), 60),
		Seconds: floorMod(total, 60),
	}
}

// SplitMS floors seconds and splits it into minutes and seconds.
func SplitMS(seconds float64) MS {
	total := int64(math.Floor(seconds))
	return MS{
		Minutes: floorDiv(total, 60),
		Seconds: floorMod(total, 60),
	}
}

// Users computes user type counts and, where the schema has the columns,
// gender counts and birth year extremes and mode. Empty cells are skipped.
func (e *Engine) Users(view *models.Table) UserStats {
	start := e.now()

	userTypes := make(map[string]int)
	genders := make(map[string]int)
	years := make(map[int]int)
	for i := range view.Records {
		r := &view.Records[i]
		if r.UserType != "" {
			userTypes[r.UserType]++
		}
		if r.Gender != "" {
			genders[r.Gender]++
		}
		if y, ok := r.BirthYear.Get(); ok {
			years[int(y)]++
		}
	}

	s := UserStats{
		Trips:     view.Len(),
		UserTypes: distribution(userTypes),
		Gender:    GenderStats{Availability: availability(view.Schema.HasGender)},
		BirthYear: BirthYearStats{Availability: availability(view.Schema.HasBirthYear)},
	}

	if view.Schema.HasGender {
		s.Gender.Counts = distribution(genders)
	}

	if view.Schema.HasBirthYear && len(years) > 0 {
		earliest, mostRecent := math.MaxInt, math.MinInt
		for y := range years {
			earliest = min(earliest, y)
			mostRecent = max(mostRecent, y)
		}
		s.BirthYear.Earliest = models.Some(earliest)
		s.BirthYear.MostRecent = models.Some(mostRecent)
		s.BirthYear.MostCommon = mostCommonOrdered(years)
	}

	s.Elapsed = e.now().Sub(start)
	logger.Debug("User stats over %d trips took %v", s.Trips, s.Elapsed)
	return s
}

// Summary runs every computation over view and tags the result with a new run ID.
func (e *Engine) Summary(sel models.Selection, view *models.Table) *Summary {
	runID := uuid.New().String()
	logger.Info("Run %s: computing statistics for %s (month=%s, day=%s, trips=%d)",
		runID, sel.Dataset, sel.Month, sel.Day, view.Len())

	return &Summary{
		RunID:     runID,
		Selection: sel,
		Trips:     view.Len(),
		Time:      e.Time(view),
		Stations:  e.Stations(view),
		Durations: e.Durations(view),
		Users:     e.Users(view),
	}
}
