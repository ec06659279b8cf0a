package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rewired-gh/bikestats/internal/models"
	"github.com/rewired-gh/bikestats/internal/pager"
	"github.com/rewired-gh/bikestats/internal/stats"
)

// JSONRenderer writes reports as indented JSON documents.
type JSONRenderer struct{}

// NewJSONRenderer creates a new JSONRenderer
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Summary writes the summary as one JSON document.
func (r *JSONRenderer) Summary(w io.Writer, s *stats.Summary) error {
	return encode(w, s)
}

// Window writes the window records together with the schema flags.
func (r *JSONRenderer) Window(w io.Writer, win pager.Window, schema models.Schema) error {
	return encode(w, struct {
		pager.Window
		State  string        `json:"state"`
		Schema models.Schema `json:"schema"`
	}{win, win.State.String(), schema})
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
