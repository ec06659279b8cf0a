package models

import (
	"fmt"
	"strings"
)

// DatasetID names one of the city trip-record tables that can be analyzed.
type DatasetID string

const (
	Chicago     DatasetID = "chicago"
	NewYorkCity DatasetID = "new york city"
	Washington  DatasetID = "washington"
)

// Datasets lists every known dataset in prompt order.
var Datasets = []DatasetID{Chicago, NewYorkCity, Washington}

// ParseDatasetID resolves free-form user input to a DatasetID.
// Matching ignores case and surrounding whitespace.
func ParseDatasetID(s string) (DatasetID, error) {
	id := DatasetID(strings.ToLower(strings.TrimSpace(s)))
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDataset, s)
	}
	return id, nil
}

// Valid reports whether the identifier is a member of Datasets.
func (d DatasetID) Valid() bool {
	for _, known := range Datasets {
		if d == known {
			return true
		}
	}
	return false
}

// Title returns the display name, e.g. "New York City".
func (d DatasetID) Title() string {
	words := strings.Fields(string(d))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
