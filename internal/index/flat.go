package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyCorpus       = errors.New("empty corpus: nothing to index")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Neighbor is one search hit: the chunk position and its Euclidean distance to the query.
type Neighbor struct {
	Position int     `json:"position"`
	Distance float64 `json:"distance"`
}

// Flat is an exact brute-force L2 index. Vectors are append-only during the build
// phase and the index is read-only afterwards, so concurrent searches need no locking.
type Flat struct {
	dim     int
	vectors [][]float32
}

// NewFlat builds an index from vectors where vectors[i] belongs to chunk i.
// The first vector fixes the dimension.
func NewFlat(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyCorpus
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: position 0 has zero length", ErrDimensionMismatch)
	}

	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: position %d has %d values, expected %d", ErrDimensionMismatch, i, len(v), dim)
		}
		stored[i] = append([]float32(nil), v...)
	}

	return &Flat{dim: dim, vectors: stored}, nil
}

func (f *Flat) Dim() int {
	return f.dim
}

func (f *Flat) Len() int {
	return len(f.vectors)
}

// Vector returns a copy of the stored vector at position.
func (f *Flat) Vector(position int) []float32 {
	return append([]float32(nil), f.vectors[position]...)
}

// Search returns up to k nearest positions ordered by ascending distance.
// Equal distances keep ascending position order.
func (f *Flat) Search(query []float32, k int) ([]Neighbor, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has %d values, index has %d", ErrDimensionMismatch, len(query), f.dim)
	}
	if k <= 0 {
		return []Neighbor{}, nil
	}

	neighbors := make([]Neighbor, len(f.vectors))
	for i, v := range f.vectors {
		neighbors[i] = Neighbor{Position: i, Distance: euclidean(query, v)}
	}

	sort.SliceStable(neighbors, func(a, b int) bool {
		return neighbors[a].Distance < neighbors[b].Distance
	})

	if k > len(neighbors) {
		k = len(neighbors)
	}

	return neighbors[:k], nil
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
