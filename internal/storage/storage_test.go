package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/bikestats/internal/models"
)

const chicagoCSV = `,Start Time,End Time,Trip Duration,Start Station,End Station,User Type,Gender,Birth Year
1423854,2017-06-23 15:09:32,2017-06-23 15:14:53,321,Wood St & Hubbard St,Damen Ave & Chicago Ave,Subscriber,Male,1992.0
955915,2017-05-25 18:19:03,2017-05-25 18:45:53,1610,Theater on the Lake,Sheffield Ave & Waveland Ave,Subscriber,Female,1992.0
9031,2017-01-04 08:27:49,2017-01-04 08:34:45,416,May St & Taylor St,Wood St & Taylor St,Subscriber,Male,1981.0
304487,2017-03-06 13:49:38,2017-03-06 13:55:28,350,Christiana Ave & Lawrence Ave,St. Louis Ave & Balmoral Ave,Customer,,
`

const washingtonCSV = `,Start Time,End Time,Trip Duration,Start Station,End Station,User Type
1621326,2017-06-21 08:36:34,2017-06-21 08:44:43,489.066,14th & Belmont St NW,15th & K St NW,Subscriber
482740,2017-03-11 10:40:00,2017-03-11 10:46:00,402.549,Yuma St & Tenley Circle NW,Connecticut Ave & Yuma St NW,Subscriber
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_CSVWithOptionalColumns(t *testing.T) {
	path := writeFile(t, "chicago.csv", chicagoCSV)
	l := NewLoader(map[models.DatasetID]Source{models.Chicago: {Path: path}})

	table, err := l.Load(context.Background(), models.Chicago)
	require.NoError(t, err)

	assert.Equal(t, models.Chicago, table.Dataset)
	assert.True(t, table.Schema.HasGender)
	assert.True(t, table.Schema.HasBirthYear)
	require.Equal(t, 4, table.Len())

	first := table.Records[0]
	assert.Equal(t, "1423854", first.ID)
	assert.Equal(t, 6, first.Month)
	assert.Equal(t, "Friday", first.Weekday)
	assert.Equal(t, 15, first.Hour)
	assert.Equal(t, models.Some(321.0), first.TripDuration)
	assert.Equal(t, "Wood St & Hubbard St", first.StartStation)
	assert.Equal(t, "Male", first.Gender)
	assert.Equal(t, models.Some(1992.0), first.BirthYear)
	assert.True(t, first.EndTime.Valid)

	last := table.Records[3]
	assert.Equal(t, "", last.Gender)
	assert.False(t, last.BirthYear.Valid)
	assert.Equal(t, 3, last.Row)
}

func TestLoad_CSVWithoutOptionalColumns(t *testing.T) {
	path := writeFile(t, "washington.csv", washingtonCSV)
	l := NewLoader(map[models.DatasetID]Source{models.Washington: {Path: path}})

	table, err := l.Load(context.Background(), models.Washington)
	require.NoError(t, err)

	assert.False(t, table.Schema.HasGender)
	assert.False(t, table.Schema.HasBirthYear)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, models.Some(489.066), table.Records[0].TripDuration)
	assert.Equal(t, "Saturday", table.Records[1].Weekday)
}

func TestLoad_DerivedFieldsInRange(t *testing.T) {
	path := writeFile(t, "chicago.csv", chicagoCSV)
	l := NewLoader(map[models.DatasetID]Source{models.Chicago: {Path: path}})

	table, err := l.Load(context.Background(), models.Chicago)
	require.NoError(t, err)

	for _, rec := range table.Records {
		assert.NoError(t, rec.Validate(), "row %d", rec.Row)
		assert.GreaterOrEqual(t, rec.Month, 1)
		assert.LessOrEqual(t, rec.Month, 12)
		assert.GreaterOrEqual(t, rec.Hour, 0)
		assert.LessOrEqual(t, rec.Hour, 23)
	}
}

func TestLoad_UnknownDataset(t *testing.T) {
	l := NewLoader(map[models.DatasetID]Source{})

	_, err := l.Load(context.Background(), models.DatasetID("boston"))
	assert.ErrorIs(t, err, models.ErrUnknownDataset)

	_, err = l.Load(context.Background(), models.Chicago)
	assert.ErrorIs(t, err, models.ErrUnknownDataset)
}

func TestLoad_MalformedTimestamp(t *testing.T) {
	content := `Start Time,Trip Duration,Start Station,End Station,User Type
2017-01-01 00:07:57,100,A,B,Subscriber
not a date,200,A,B,Subscriber
`
	path := writeFile(t, "bad.csv", content)
	l := NewLoader(map[models.DatasetID]Source{models.Chicago: {Path: path}})

	_, err := l.Load(context.Background(), models.Chicago)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedTimestamp)

	var mte *models.MalformedTimestampError
	require.True(t, errors.As(err, &mte))
	assert.Equal(t, 1, mte.Row)
	assert.Equal(t, "not a date", mte.Value)
}

func TestLoad_DurationCells(t *testing.T) {
	content := `Start Time,Trip Duration,Start Station,End Station,User Type
2017-01-01 00:07:57,,A,B,Subscriber
`
	path := writeFile(t, "empty.csv", content)
	l := NewLoader(map[models.DatasetID]Source{models.Chicago: {Path: path}})

	table, err := l.Load(context.Background(), models.Chicago)
	require.NoError(t, err)
	assert.False(t, table.Records[0].TripDuration.Valid)

	content = `Start Time,Trip Duration,Start Station,End Station,User Type
2017-01-01 00:07:57,ten minutes,A,B,Subscriber
`
	path = writeFile(t, "bad.csv", content)
	l = NewLoader(map[models.DatasetID]Source{models.Chicago: {Path: path}})

	_, err = l.Load(context.Background(), models.Chicago)
	assert.ErrorContains(t, err, "Trip Duration")
}

func TestLoad_MissingRequiredColumn(t *testing.T) {
	content := `Start Time,Start Station,End Station,User Type
2017-01-01 00:07:57,A,B,Subscriber
`
	path := writeFile(t, "nodur.csv", content)
	l := NewLoader(map[models.DatasetID]Source{models.Chicago: {Path: path}})

	_, err := l.Load(context.Background(), models.Chicago)
	assert.ErrorIs(t, err, models.ErrMissingColumn)
}

func TestLoad_MissingFile(t *testing.T) {
	l := NewLoader(map[models.DatasetID]Source{
		models.Chicago: {Path: filepath.Join(t.TempDir(), "nope.csv")},
	})

	_, err := l.Load(context.Background(), models.Chicago)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Cached(t *testing.T) {
	path := writeFile(t, "chicago.csv", chicagoCSV)
	l := NewLoader(map[models.DatasetID]Source{models.Chicago: {Path: path}})

	first, err := l.Load(context.Background(), models.Chicago)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	second, err := l.Load(context.Background(), models.Chicago)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoad_CancelledContext(t *testing.T) {
	path := writeFile(t, "chicago.csv", chicagoCSV)
	l := NewLoader(map[models.DatasetID]Source{models.Chicago: {Path: path}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Load(ctx, models.Chicago)
	assert.ErrorIs(t, err, context.Canceled)
}

type parquetTrip struct {
	StartTime    string  `parquet:"Start Time"`
	TripDuration float64 `parquet:"Trip Duration"`
	StartStation string  `parquet:"Start Station"`
	EndStation   string  `parquet:"End Station"`
	UserType     string  `parquet:"User Type"`
	Gender       string  `parquet:"Gender"`
}

func TestLoad_Parquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chicago.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)

	writer := parquet.NewGenericWriter[parquetTrip](f)
	_, err = writer.Write([]parquetTrip{
		{StartTime: "2017-02-14 07:30:00", TripDuration: 600, StartStation: "A", EndStation: "B", UserType: "Subscriber", Gender: "Female"},
		{StartTime: "2017-04-01 22:05:00", TripDuration: 90.5, StartStation: "B", EndStation: "A", UserType: "Customer"},
	})
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, f.Close())

	l := NewLoader(map[models.DatasetID]Source{models.Chicago: {Path: path}})
	table, err := l.Load(context.Background(), models.Chicago)
	require.NoError(t, err)

	assert.True(t, table.Schema.HasGender)
	assert.False(t, table.Schema.HasBirthYear)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, 2, table.Records[0].Month)
	assert.Equal(t, "Tuesday", table.Records[0].Weekday)
	assert.Equal(t, 7, table.Records[0].Hour)
	assert.Equal(t, models.Some(90.5), table.Records[1].TripDuration)
	assert.Equal(t, "Female", table.Records[0].Gender)
}

type parquetTimestampTrip struct {
	StartTime    time.Time `parquet:"Start Time,timestamp"`
	EndTime      time.Time `parquet:"End Time,timestamp(microsecond)"`
	TripDuration float64   `parquet:"Trip Duration"`
	StartStation string    `parquet:"Start Station"`
	EndStation   string    `parquet:"End Station"`
	UserType     string    `parquet:"User Type"`
}

func TestLoad_ParquetNativeTimestamps(t *testing.T) {
	start := time.Date(2017, time.February, 14, 7, 30, 0, 0, time.UTC)
	end := start.Add(10*time.Minute + 250*time.Microsecond)

	path := filepath.Join(t.TempDir(), "washington.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)

	writer := parquet.NewGenericWriter[parquetTimestampTrip](f)
	_, err = writer.Write([]parquetTimestampTrip{
		{StartTime: start, EndTime: end, TripDuration: 600, StartStation: "A", EndStation: "B", UserType: "Subscriber"},
	})
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, f.Close())

	l := NewLoader(map[models.DatasetID]Source{models.Washington: {Path: path}})
	table, err := l.Load(context.Background(), models.Washington)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	rec := table.Records[0]
	assert.True(t, start.Equal(rec.StartTime), "start time %v", rec.StartTime)
	assert.Equal(t, 2, rec.Month)
	assert.Equal(t, "Tuesday", rec.Weekday)
	assert.Equal(t, 7, rec.Hour)

	gotEnd, ok := rec.EndTime.Get()
	require.True(t, ok)
	assert.True(t, end.Equal(gotEnd), "end time %v", gotEnd)
}

func TestLoad_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nyc.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE rides (
		"Start Time" TEXT,
		"Trip Duration" REAL,
		"Start Station" TEXT,
		"End Station" TEXT,
		"User Type" TEXT,
		"Gender" TEXT,
		"Birth Year" REAL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO rides VALUES
		('2017-01-01 00:00:36', 839, 'Broadway', 'Cliff St', 'Subscriber', 'Male', 1980),
		('2017-03-05 16:20:00', 120, 'Cliff St', 'Broadway', 'Customer', NULL, NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	l := NewLoader(map[models.DatasetID]Source{
		models.NewYorkCity: {Path: path, Table: "rides"},
	})
	table, err := l.Load(context.Background(), models.NewYorkCity)
	require.NoError(t, err)

	assert.True(t, table.Schema.HasGender)
	assert.True(t, table.Schema.HasBirthYear)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Sunday", table.Records[0].Weekday)
	assert.Equal(t, models.Some(839.0), table.Records[0].TripDuration)
	assert.Equal(t, models.Some(1980.0), table.Records[0].BirthYear)
	assert.False(t, table.Records[1].BirthYear.Valid)
	assert.Equal(t, "", table.Records[1].Gender)
	assert.Equal(t, 16, table.Records[1].Hour)
}

func TestSourceResolveFormat(t *testing.T) {
	tests := []struct {
		src     Source
		want    string
		wantErr bool
	}{
		{Source{Path: "a.csv"}, FormatCSV, false},
		{Source{Path: "a.CSV"}, FormatCSV, false},
		{Source{Path: "a.parquet"}, FormatParquet, false},
		{Source{Path: "a.sqlite3"}, FormatSQLite, false},
		{Source{Path: "a.dat", Format: "csv"}, FormatCSV, false},
		{Source{Path: "a.xlsx"}, "", true},
		{Source{Path: "a.csv", Format: "xml"}, "", true},
	}

	for _, tt := range tests {
		got, err := tt.src.ResolveFormat()
		if tt.wantErr {
			assert.Error(t, err, tt.src.Path)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2017, time.January, 2, 9, 15, 0, 0, time.UTC)
	inputs := []any{
		"2017-01-02 09:15:00",
		"2017-01-02T09:15:00",
		"2017-01-02T09:15:00Z",
		"2017-01-02 09:15",
		"1/2/2017 09:15",
		[]byte("2017-01-02 09:15:00"),
		want,
	}
	for _, in := range inputs {
		got, err := parseTimestamp(in)
		require.NoError(t, err, "%v", in)
		assert.True(t, want.Equal(got), "%v parsed as %v", in, got)
	}

	for _, in := range []any{nil, "", "2017-13-45 99:00:00", 12345} {
		_, err := parseTimestamp(in)
		assert.Error(t, err, "%v", in)
	}
}
