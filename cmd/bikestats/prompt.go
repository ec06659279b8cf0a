package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rewired-gh/bikestats/internal/models"
	"github.com/rewired-gh/bikestats/internal/pager"
)

// prompter asks questions on out and reads answers line by line from in.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask prints question and returns the trimmed, lower-cased answer.
// It returns io.EOF when input is exhausted.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.ToLower(strings.TrimSpace(p.in.Text())), nil
}

// askUntil repeats question until valid accepts the answer.
func (p *prompter) askUntil(question, retry string, valid func(string) bool) (string, error) {
	for {
		answer, err := p.ask(question)
		if err != nil {
			return "", err
		}
		if valid(answer) {
			return answer, nil
		}
		fmt.Fprintln(p.out, retry)
	}
}

func oneOf(options ...string) func(string) bool {
	return func(s string) bool {
		for _, o := range options {
			if s == o {
				return true
			}
		}
		return false
	}
}

var (
	validMonth = oneOf(append([]string{models.All}, models.Months...)...)
	validDay   = oneOf(append([]string{models.All}, models.Weekdays...)...)
)

// selection fills in whichever of city, month and day are empty by asking.
// A preset month or day that is not accepted is reported and asked for again.
func (p *prompter) selection(city, month, day string) (models.Selection, error) {
	var err error
	month, day = strings.ToLower(strings.TrimSpace(month)), strings.ToLower(strings.TrimSpace(day))
	if month != "" && !validMonth(month) {
		fmt.Fprintf(p.out, "Ignoring invalid month %q.\n", month)
		month = ""
	}
	if day != "" && !validDay(day) {
		fmt.Fprintf(p.out, "Ignoring invalid day %q.\n", day)
		day = ""
	}
	if city == "" {
		fmt.Fprintln(p.out, "Hello! Let's explore some US bikeshare data!")
		city, err = p.askUntil(
			"Would you like to see data for Chicago, New York City, or Washington? ",
			"Invalid input. Please enter 'Chicago', 'New York City', or 'Washington'.",
			func(s string) bool { return models.DatasetID(s).Valid() },
		)
		if err != nil {
			return models.Selection{}, err
		}
	}
	if month == "" {
		month, err = p.askUntil(
			"Would you like to filter by month (January to June) or 'all'? ",
			"Invalid input. Please enter a valid month or 'all'.",
			validMonth,
		)
		if err != nil {
			return models.Selection{}, err
		}
	}
	if day == "" {
		day, err = p.askUntil(
			"Would you like to filter by day or 'all'? ",
			"Invalid input. Please enter a valid day or 'all'.",
			validDay,
		)
		if err != nil {
			return models.Selection{}, err
		}
	}
	fmt.Fprintln(p.out, strings.Repeat("-", 40))
	return models.ParseSelection(city, month, day)
}

// page drives pg from yes/no answers, calling show for every window.
func (p *prompter) page(pg *pager.Pager, size int, show func(pager.Window) error) error {
	question := fmt.Sprintf("Would you like to see %d rows of raw data? Enter yes or no: ", size)
	for {
		answer, err := p.ask(question)
		if err != nil {
			return err
		}
		win, err := pg.Handle(answer)
		if errors.Is(err, pager.ErrInvalidRequest) {
			fmt.Fprintln(p.out, "Invalid input. Please enter 'yes' or 'no'.")
			continue
		}
		if answer == "no" || answer == "n" {
			return nil
		}
		if err := show(win); err != nil {
			return err
		}
		if win.Done {
			return nil
		}
	}
}

func (p *prompter) restart() (bool, error) {
	answer, err := p.ask("\nWould you like to restart? Enter yes or no.\n")
	if err != nil {
		return false, err
	}
	return answer == "yes" || answer == "y", nil
}
