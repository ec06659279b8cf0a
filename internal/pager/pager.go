// Package pager exposes a filtered trip view as fixed-size windows of raw
// records, handed out one at a time on request.
//
// A Pager starts Idle at the first row. Each Advance emits the next window
// and moves the cursor; once the cursor reaches the end the pager is
// Exhausted. Stop ends paging early. Both terminal states emit nothing
// further, and a pager never wraps around: build a new one per run.
package pager

import (
	"errors"
	"strings"

	"github.com/rewired-gh/bikestats/internal/models"
)

// DefaultSize is the number of rows per window.
const DefaultSize = 5

// ErrInvalidRequest is returned by Handle for input other than yes or no.
// The pager state is unchanged and the caller should ask again.
var ErrInvalidRequest = errors.New("invalid request: enter yes or no")

// State is the pager's position in its lifecycle.
type State int

const (
	Idle State = iota
	Exhausted
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Exhausted:
		return "exhausted"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Window is one page of raw records.
// Start is the view offset of the first record; Done is set when no further
// windows will be emitted.
type Window struct {
	Start   int                 `json:"start"`
	Records []models.TripRecord `json:"records"`
	Total   int                 `json:"total"`
	Done    bool                `json:"done"`
	State   State               `json:"-"`
}

// Empty reports whether the window holds no records.
func (w Window) Empty() bool {
	return len(w.Records) == 0
}

// Pager walks a view in fixed-size windows.
type Pager struct {
	view   *models.Table
	size   int
	cursor int
	state  State
}

// New creates a pager over view. A size <= 0 selects DefaultSize.
// An empty view starts Exhausted.
func New(view *models.Table, size int) *Pager {
	if size <= 0 {
		size = DefaultSize
	}
	p := &Pager{view: view, size: size}
	if view.Empty() {
		p.state = Exhausted
	}
	return p
}

// State returns the current state.
func (p *Pager) State() State {
	return p.state
}

// Cursor returns the offset of the next row to be emitted.
func (p *Pager) Cursor() int {
	return p.cursor
}

// Advance emits the next window. In a terminal state it returns an empty
// window with Done set.
func (p *Pager) Advance() Window {
	total := p.view.Len()
	if p.state != Idle {
		return Window{Start: p.cursor, Total: total, Done: true, State: p.state}
	}

	end := min(p.cursor+p.size, total)
	w := Window{
		Start:   p.cursor,
		Records: p.view.Records[p.cursor:end:end],
		Total:   total,
	}

	p.cursor = end
	if p.cursor >= total {
		p.state = Exhausted
		w.Done = true
	}
	w.State = p.state
	return w
}

// Stop ends paging. It has no effect once the pager is Exhausted.
func (p *Pager) Stop() {
	if p.state == Idle {
		p.state = Stopped
	}
}

// Handle applies a textual request: "yes"/"y" advances, "no"/"n" stops.
// Anything else returns ErrInvalidRequest and leaves the state unchanged.
func (p *Pager) Handle(input string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "yes", "y":
		return p.Advance(), nil
	case "no", "n":
		p.Stop()
		return Window{Start: p.cursor, Total: p.view.Len(), Done: true, State: p.state}, nil
	}
	return Window{Start: p.cursor, Total: p.view.Len(), Done: p.state != Idle, State: p.state}, ErrInvalidRequest
}
