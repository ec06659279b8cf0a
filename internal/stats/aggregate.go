package stats

import (
	"cmp"
	"sort"

	"github.com/rewired-gh/bikestats/internal/models"
)

// mostCommon returns the value with the highest count. Among tied values the
// one ordered first by less wins, so the result does not depend on map order.
// An empty counts map yields an absent result.
func mostCommon[T comparable](counts map[T]int, less func(a, b T) bool) models.Optional[models.Mode[T]] {
	var best models.Mode[T]
	found := false
	for v, n := range counts {
		if !found || n > best.Count || (n == best.Count && less(v, best.Value)) {
			best = models.Mode[T]{Value: v, Count: n}
			found = true
		}
	}
	if !found {
		return models.None[models.Mode[T]]()
	}
	return models.Some(best)
}

func mostCommonOrdered[T cmp.Ordered](counts map[T]int) models.Optional[models.Mode[T]] {
	return mostCommon(counts, cmp.Less[T])
}

// distribution lists every value with its count, most frequent first.
// Equal counts are ordered by value.
func distribution(counts map[string]int) []models.Count {
	out := make([]models.Count, 0, len(counts))
	for v, n := range counts {
		out = append(out, models.Count{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// floorDiv and floorMod implement integer floor division, so that
// floorDiv(a, b)*b + floorMod(a, b) == a for any sign of a.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
