package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/bikestats/internal/models"
	"github.com/rewired-gh/bikestats/internal/report"
	"github.com/rewired-gh/bikestats/internal/stats"
	"github.com/rewired-gh/bikestats/internal/storage"
)

const chicagoCSV = `,Start Time,End Time,Trip Duration,Start Station,End Station,User Type,Gender,Birth Year
1423854,2017-06-23 15:09:32,2017-06-23 15:14:53,321,Wood St & Hubbard St,Damen Ave & Chicago Ave,Subscriber,Male,1992.0
955915,2017-05-25 18:19:03,2017-05-25 18:45:53,1610,Theater on the Lake,Sheffield Ave & Waveland Ave,Subscriber,Female,1992.0
9031,2017-01-04 08:27:49,2017-01-04 08:34:45,416,May St & Taylor St,Wood St & Taylor St,Subscriber,Male,1981.0
`

func newTestApp(t *testing.T, format string, pageSize int) (*app, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chicago.csv")
	require.NoError(t, os.WriteFile(path, []byte(chicagoCSV), 0o644))

	renderer, err := report.New(format)
	require.NoError(t, err)

	var out bytes.Buffer
	return &app{
		loader:   storage.NewLoader(map[models.DatasetID]storage.Source{models.Chicago: {Path: path}}),
		engine:   stats.New(),
		renderer: renderer,
		pageSize: pageSize,
		out:      &out,
	}, &out
}

func TestInteractive_RepromptsAndPages(t *testing.T) {
	a, out := newTestApp(t, "text", 5)
	input := strings.Join([]string{"boston", "Chicago", "june", "someday", "friday", "maybe", "yes", "no"}, "\n") + "\n"
	var prompts bytes.Buffer
	p := newPrompter(strings.NewReader(input), &prompts)

	require.NoError(t, a.interactive(context.Background(), p, "", ""))

	assert.Contains(t, prompts.String(), "Invalid input. Please enter 'Chicago', 'New York City', or 'Washington'.")
	assert.Contains(t, prompts.String(), "Invalid input. Please enter a valid day or 'all'.")
	assert.Contains(t, prompts.String(), "Invalid input. Please enter 'yes' or 'no'.")
	assert.Contains(t, prompts.String(), "Would you like to see 5 rows of raw data?")

	assert.Contains(t, out.String(), "Dataset: Chicago | month: june | day: friday | trips: 1")
	assert.Contains(t, out.String(), "Most Common Start Hour: 15")
	assert.Contains(t, out.String(), "Rows 1-1 of 1")
	assert.Contains(t, out.String(), "No more data to display.")
}

func TestInteractive_Restart(t *testing.T) {
	a, out := newTestApp(t, "text", 2)
	input := strings.Join([]string{
		"chicago", "all", "all", "no", "yes",
		"chicago", "january", "all", "y", "n",
	}, "\n") + "\n"
	p := newPrompter(strings.NewReader(input), &bytes.Buffer{})

	require.NoError(t, a.interactive(context.Background(), p, "", ""))

	assert.Contains(t, out.String(), "trips: 3")
	assert.Contains(t, out.String(), "month: january | day: all | trips: 1")
	assert.Equal(t, 1, strings.Count(out.String(), "Rows "))
}

func TestInteractive_UnconfiguredDatasetStartsOver(t *testing.T) {
	a, out := newTestApp(t, "text", 5)
	var prompts bytes.Buffer
	input := strings.Join([]string{"washington", "all", "all", "no"}, "\n") + "\n"
	p := newPrompter(strings.NewReader(input), &prompts)

	require.NoError(t, a.interactive(context.Background(), p, "", ""))

	assert.Contains(t, prompts.String(), "Could not analyze Washington")
	assert.Empty(t, out.String())
}

func TestInteractive_EndOfInput(t *testing.T) {
	a, _ := newTestApp(t, "text", 5)
	p := newPrompter(strings.NewReader("chicago\n"), &bytes.Buffer{})

	err := a.interactive(context.Background(), p, "", "")
	assert.ErrorIs(t, err, io.EOF)
}

func TestRunOnce_RawJSON(t *testing.T) {
	a, out := newTestApp(t, "json", 2)

	require.NoError(t, a.runOnce(context.Background(), "chicago", "all", "all", true))

	assert.Contains(t, out.String(), `"run_id"`)
	assert.Equal(t, 2, strings.Count(out.String(), `"state"`))
	assert.Contains(t, out.String(), `"state": "exhausted"`)
}

func TestRunOnce_InvalidSelection(t *testing.T) {
	a, _ := newTestApp(t, "text", 5)

	err := a.runOnce(context.Background(), "chicago", "december", "all", false)
	assert.ErrorIs(t, err, models.ErrInvalidSelection)
}

func TestInteractive_PresetFiltersApplyToFirstPassOnly(t *testing.T) {
	a, out := newTestApp(t, "text", 5)
	input := strings.Join([]string{
		"chicago", "no", "yes",
		"chicago", "january", "all", "no", "no",
	}, "\n") + "\n"
	var prompts bytes.Buffer
	p := newPrompter(strings.NewReader(input), &prompts)

	require.NoError(t, a.interactive(context.Background(), p, "june", "friday"))

	assert.Contains(t, out.String(), "month: june | day: friday | trips: 1")
	assert.Contains(t, out.String(), "month: january | day: all | trips: 1")
	assert.Equal(t, 1, strings.Count(prompts.String(), "filter by month"))
	assert.Equal(t, 1, strings.Count(prompts.String(), "filter by day"))
}

func TestInteractive_InvalidPresetIsAskedAgain(t *testing.T) {
	a, out := newTestApp(t, "text", 5)
	input := strings.Join([]string{"chicago", "may", "no", "no"}, "\n") + "\n"
	var prompts bytes.Buffer
	p := newPrompter(strings.NewReader(input), &prompts)

	require.NoError(t, a.interactive(context.Background(), p, "july", "thursday"))

	assert.Contains(t, prompts.String(), `Ignoring invalid month "july".`)
	assert.Contains(t, out.String(), "month: may | day: thursday | trips: 1")
}
