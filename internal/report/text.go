package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/rewired-gh/bikestats/internal/models"
	"github.com/rewired-gh/bikestats/internal/pager"
	"github.com/rewired-gh/bikestats/internal/stats"
)

// NoData is printed in place of an aggregate that is undefined for an empty view.
const NoData = "no data available"

var separator = strings.Repeat("-", 40)

// TextRenderer renders human-readable console output.
type TextRenderer struct{}

// NewTextRenderer creates a new TextRenderer
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Summary writes all four statistics sections.
func (r *TextRenderer) Summary(w io.Writer, s *stats.Summary) error {
	p := &printer{w: w}

	p.printf("Dataset: %s | month: %s | day: %s | trips: %d\n",
		s.Selection.Dataset.Title(), s.Selection.Month, s.Selection.Day, s.Trips)
	p.printf("%s\n", separator)

	printTimeStats(p, s.Time)
	printStationStats(p, s.Stations)
	printDurationStats(p, s.Durations)
	printUserStats(p, s.Users)

	return p.err
}

func printTimeStats(p *printer, s stats.TimeStats) {
	p.printf("\nCalculating The Most Frequent Times of Travel...\n\n")
	month := NoData
	if m, ok := s.MostCommonMonth.Get(); ok {
		month = models.MonthName(m.Value)
	}
	p.printf("Most Common Month: %s\n", month)
	p.printf("Most Common Day of Week: %s\n", modeString(s.MostCommonDay))
	p.printf("Most Common Start Hour: %s\n", modeInt(s.MostCommonHour))
	printElapsed(p, s.Elapsed)
}

func printStationStats(p *printer, s stats.StationStats) {
	p.printf("\nCalculating The Most Popular Stations and Trip...\n\n")
	p.printf("Most Commonly Used Start Station: %s\n", modeString(s.MostCommonStart))
	p.printf("Most Commonly Used End Station: %s\n", modeString(s.MostCommonEnd))
	trip := NoData
	if m, ok := s.MostCommonTrip.Get(); ok {
		trip = fmt.Sprintf("%s -> %s (%d trips)", m.Value.Start, m.Value.End, m.Count)
	}
	p.printf("Most Common Trip: %s\n", trip)
	printElapsed(p, s.Elapsed)
}

func printDurationStats(p *printer, s stats.DurationStats) {
	p.printf("\nCalculating Trip Duration...\n\n")
	if total, ok := s.Total.Get(); ok {
		p.printf("Total Travel Time: %d hours, %d minutes, %d seconds\n", total.Hours, total.Minutes, total.Seconds)
	} else {
		p.printf("Total Travel Time: %s\n", NoData)
	}
	if mean, ok := s.Mean.Get(); ok {
		p.printf("Mean Travel Time: %d minutes, %d seconds\n", mean.Minutes, mean.Seconds)
	} else {
		p.printf("Mean Travel Time: %s\n", NoData)
	}
	printElapsed(p, s.Elapsed)
}

func printUserStats(p *printer, s stats.UserStats) {
	p.printf("\nCalculating User Stats...\n\n")

	p.printf("Counts of User Types:\n")
	printCounts(p, s.UserTypes)

	if s.Gender.Availability == stats.Unavailable {
		p.printf("Gender data not available.\n")
	} else {
		p.printf("Counts of Gender:\n")
		printCounts(p, s.Gender.Counts)
	}

	if s.BirthYear.Availability == stats.Unavailable {
		p.printf("Birth year data not available.\n")
	} else {
		p.printf("Earliest Year: %s\n", optionalInt(s.BirthYear.Earliest))
		p.printf("Most Recent Year: %s\n", optionalInt(s.BirthYear.MostRecent))
		p.printf("Most Common Year: %s\n", modeInt(s.BirthYear.MostCommon))
	}
	printElapsed(p, s.Elapsed)
}

func printCounts(p *printer, counts []models.Count) {
	if len(counts) == 0 {
		p.printf("  %s\n", NoData)
		return
	}
	for _, c := range counts {
		p.printf("  %s: %d\n", c.Value, c.Count)
	}
}

func printElapsed(p *printer, d time.Duration) {
	p.printf("\nThis took %s seconds.\n", strconv.FormatFloat(d.Seconds(), 'f', -1, 64))
	p.printf("%s\n", separator)
}

// Window writes one page of raw records as a table.
func (r *TextRenderer) Window(w io.Writer, win pager.Window, schema models.Schema) error {
	p := &printer{w: w}

	if !win.Empty() {
		table := tablewriter.NewWriter(w)
		table.SetHeader(windowHeader(schema))
		table.SetAutoWrapText(false)
		table.SetAutoFormatHeaders(false)
		for i := range win.Records {
			table.Append(windowRow(&win.Records[i], schema))
		}
		table.Render()
		p.printf("Rows %d-%d of %d\n", win.Start+1, win.Start+len(win.Records), win.Total)
	}

	if win.Done && win.State == pager.Exhausted {
		p.printf("No more data to display.\n")
	}
	return p.err
}

func windowHeader(schema models.Schema) []string {
	header := []string{"#", models.ColumnStartTime, models.ColumnEndTime, models.ColumnTripDuration,
		models.ColumnStartStation, models.ColumnEndStation, models.ColumnUserType}
	if schema.HasGender {
		header = append(header, models.ColumnGender)
	}
	if schema.HasBirthYear {
		header = append(header, models.ColumnBirthYear)
	}
	return header
}

func windowRow(rec *models.TripRecord, schema models.Schema) []string {
	id := rec.ID
	if id == "" {
		id = strconv.Itoa(rec.Row)
	}
	end := ""
	if t, ok := rec.EndTime.Get(); ok {
		end = t.Format(time.DateTime)
	}
	duration := ""
	if d, ok := rec.TripDuration.Get(); ok {
		duration = strconv.FormatFloat(d, 'f', -1, 64)
	}

	row := []string{id, rec.StartTime.Format(time.DateTime), end, duration,
		rec.StartStation, rec.EndStation, rec.UserType}
	if schema.HasGender {
		row = append(row, rec.Gender)
	}
	if schema.HasBirthYear {
		year := ""
		if y, ok := rec.BirthYear.Get(); ok {
			year = strconv.Itoa(int(y))
		}
		row = append(row, year)
	}
	return row
}

func modeString(o models.Optional[models.Mode[string]]) string {
	if m, ok := o.Get(); ok {
		return m.Value
	}
	return NoData
}

func modeInt(o models.Optional[models.Mode[int]]) string {
	if m, ok := o.Get(); ok {
		return strconv.Itoa(m.Value)
	}
	return NoData
}

func optionalInt(o models.Optional[int]) string {
	if v, ok := o.Get(); ok {
		return strconv.Itoa(v)
	}
	return NoData
}

// printer remembers the first write error so section helpers stay terse.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
