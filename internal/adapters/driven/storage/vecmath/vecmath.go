// Package vecmath holds the brute-force nearest-neighbour helpers shared by
// the in-process vector stores.
package vecmath

import (
	"errors"
	"math"
	"sort"
)

// ErrDimensionMismatch is returned when two vectors differ in length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// CosineDistance returns 1 - cos(a, b), in [0, 2]. A zero vector is at
// distance 1 from everything.
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1, nil
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// Clamp rounding noise
	sim = math.Max(-1, math.Min(1, sim))
	return 1 - sim, nil
}

// Scored pairs an item index with its distance to the query.
type Scored struct {
	Index    int
	Distance float64
}

// TopK returns the k entries with the smallest distance, ascending.
// Ties keep insertion order.
func TopK(scored []Scored, k int) []Scored {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})
	if k >= 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
