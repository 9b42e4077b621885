// Package matrix loads labelled similarity matrices and embedding sets from CSV.
package matrix

import (
	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense numeric table with named rows and columns.
// Similarity matrices are square, but nothing here requires it.
type Matrix struct {
	RowLabels []string
	ColLabels []string
	Data      *mat.Dense
}

// New creates a Matrix, checking that the label counts match the data shape.
func New(rowLabels, colLabels []string, data *mat.Dense) (*Matrix, error) {
	r, c := data.Dims()
	if len(rowLabels) != r {
		return nil, &ValidationError{Field: "row labels", Got: len(rowLabels), Want: r}
	}
	if len(colLabels) != c {
		return nil, &ValidationError{Field: "column labels", Got: len(colLabels), Want: c}
	}
	return &Matrix{RowLabels: rowLabels, ColLabels: colLabels, Data: data}, nil
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (rows, cols int) {
	return m.Data.Dims()
}

// Cells returns rows × cols.
func (m *Matrix) Cells() int {
	r, c := m.Dims()
	return r * c
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.Data.At(i, j)
}

// Range returns the smallest and largest value in the matrix.
func (m *Matrix) Range() (lo, hi float64) {
	return mat.Min(m.Data), mat.Max(m.Data)
}

// EmbeddingSet is a set of entities, one embedding vector per row.
type EmbeddingSet struct {
	Labels []string
	Data   *mat.Dense
}

// NewEmbeddingSet pairs an n×d matrix with n labels.
// Returns a *ValidationError when the row count and label count differ.
func NewEmbeddingSet(data *mat.Dense, labels []string) (*EmbeddingSet, error) {
	rows, _ := data.Dims()
	if rows != len(labels) {
		return nil, &ValidationError{Field: "embedding labels", Got: len(labels), Want: rows}
	}
	return &EmbeddingSet{Labels: labels, Data: data}, nil
}

// Len returns the number of entities.
func (e *EmbeddingSet) Len() int {
	r, _ := e.Data.Dims()
	return r
}

// Dimensions returns the embedding width.
func (e *EmbeddingSet) Dimensions() int {
	_, c := e.Data.Dims()
	return c
}
