// Package report renders statistics summaries and raw data windows for
// display. The text renderer reproduces the classic console layout of the
// bikeshare explorer; the JSON renderer emits the structured values.
package report

import (
	"fmt"
	"io"

	"github.com/rewired-gh/bikestats/internal/models"
	"github.com/rewired-gh/bikestats/internal/pager"
	"github.com/rewired-gh/bikestats/internal/stats"
)

// Renderer writes reports to an output stream.
type Renderer interface {
	Summary(w io.Writer, s *stats.Summary) error
	Window(w io.Writer, win pager.Window, schema models.Schema) error
}

// New returns the renderer for format ("text" or "json").
func New(format string) (Renderer, error) {
	switch format {
	case "text", "":
		return NewTextRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}
