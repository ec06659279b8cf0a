package models

// Optional holds a value that may be absent, e.g. the mode of an empty column.
type Optional[T any] struct {
	Value T    `json:"value"`
	Valid bool `json:"valid"`
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// Mode is the most frequent value of a column together with its frequency.
type Mode[T any] struct {
	Value T   `json:"value"`
	Count int `json:"count"`
}

// Count is one entry of a frequency distribution.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}
