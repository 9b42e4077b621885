package matrix

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	denominator := floats.Norm(a, 2) * floats.Norm(b, 2)
	if denominator == 0 {
		return 0
	}

	return math.Max(-1, math.Min(1, floats.Dot(a, b)/denominator))
}

// Similarity returns the pairwise cosine similarity matrix of the set,
// labelled on both axes with the entity labels.
func (e *EmbeddingSet) Similarity() *Matrix {
	n := e.Len()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, e.Data)
	}

	sim := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sim.SetSym(i, j, CosineSimilarity(rows[i], rows[j]))
		}
	}

	data := mat.DenseCopyOf(sim)
	return &Matrix{RowLabels: e.Labels, ColLabels: e.Labels, Data: data}
}
