// Package index builds and searches a flat L2 vector index with positionally
// aligned chunk metadata.
package index

import (
	"fmt"
	"sort"
)

// Flat is a brute-force nearest-neighbour index over L2 distance. Vectors
// are stored contiguously; position i in the index corresponds to entry i of
// the metadata written alongside it. A built index is immutable during
// serving and safe for concurrent readers.
type Flat struct {
	dim     int
	vectors []float32
}

// NewFlat creates an empty index for vectors of the given dimension.
func NewFlat(dim int) (*Flat, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", dim)
	}
	return &Flat{dim: dim}, nil
}

// Dim returns the vector dimension.
func (f *Flat) Dim() int { return f.dim }

// Len returns the number of stored vectors.
func (f *Flat) Len() int { return len(f.vectors) / f.dim }

// Add appends a vector. Dimension mismatches are rejected so a bad embedding
// can never shift the alignment of later vectors.
func (f *Flat) Add(vec []float32) error {
	if len(vec) != f.dim {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vec), f.dim)
	}
	f.vectors = append(f.vectors, vec...)
	return nil
}

// SearchResult is one ranked hit from a Search call.
type SearchResult struct {
	Position int
	Distance float32 // squared L2 distance
}

// Search returns the topK nearest vectors to query, nearest first. Ties keep
// insertion order. Fewer than topK results are returned when the index holds
// fewer vectors.
func (f *Flat) Search(query []float32, topK int) ([]SearchResult, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), f.dim)
	}
	if topK <= 0 {
		return nil, nil
	}

	n := f.Len()
	results := make([]SearchResult, n)
	for i := 0; i < n; i++ {
		results[i] = SearchResult{
			Position: i,
			Distance: l2Squared(query, f.vectors[i*f.dim:(i+1)*f.dim]),
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Distance < results[b].Distance
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func l2Squared(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
