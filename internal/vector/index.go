package vector

import (
	"fmt"
	"sort"
)

// Index is a flat in-memory nearest-neighbor index over a small, static set
// of vectors. Search is exhaustive squared-L2; fine for a corpus of dozens
// of documents, built once at startup and read-only afterwards.
type Index struct {
	dim     int
	vectors [][]float32
}

type Match struct {
	// Position of the vector in insertion order.
	Index    int
	Distance float32
}

func NewIndex(dim int) *Index {
	return &Index{dim: dim}
}

func (idx *Index) Len() int {
	return len(idx.vectors)
}

func (idx *Index) Add(vec []float32) error {
	if len(vec) != idx.dim {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vec), idx.dim)
	}
	idx.vectors = append(idx.vectors, vec)
	return nil
}

// Search returns the k nearest vectors by squared Euclidean distance,
// closest first.
func (idx *Index) Search(query []float32, k int) ([]Match, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), idx.dim)
	}

	matches := make([]Match, 0, len(idx.vectors))
	for i, vec := range idx.vectors {
		matches = append(matches, Match{Index: i, Distance: squaredL2(query, vec)})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Distance < matches[b].Distance
	})

	if k < len(matches) {
		matches = matches[:k]
	}

	return matches, nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
