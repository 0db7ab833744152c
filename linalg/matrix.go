// Package linalg provides the dense-matrix and vector primitives used by the
// network package: matrix-vector products, transposition, elementwise
// (Hadamard) products and randomized initialization.
package linalg

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform range for randomized matrix entries and neuron biases.
const (
	WeightMin = -1.0
	WeightMax = 1.0
)

// ErrShapeMismatch is returned when operand dimensions disagree.
var ErrShapeMismatch = errors.New("shape mismatch")

// Matrix is a fixed-shape dense matrix of float64. Entry (j, i) of a weight
// matrix holds the connection weight from unit i in one layer to unit j in
// the next.
type Matrix struct {
	d *mat.Dense
}

// New returns a zero-filled rows×cols matrix.
func New(rows, cols int) (*Matrix, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("linalg: invalid matrix shape %dx%d", rows, cols)
	}
	return &Matrix{d: mat.NewDense(rows, cols, nil)}, nil
}

// NewRandom returns a rows×cols matrix with every entry drawn independently
// from U[WeightMin, WeightMax). A nil src falls back to the process-global
// source; tests pass a seeded source for determinism.
func NewRandom(rows, cols int, src rand.Source) (*Matrix, error) {
	m, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	dist := distuv.Uniform{Min: WeightMin, Max: WeightMax, Src: src}
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			m.d.Set(j, i, dist.Rand())
		}
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	r, _ := m.d.Dims()
	return r
}

// Cols returns the number of columns.
func (m *Matrix) Cols() int {
	_, c := m.d.Dims()
	return c
}

// At returns entry (row, col). Panics if the indices are out of range.
func (m *Matrix) At(row, col int) float64 {
	return m.d.At(row, col)
}

// Set writes entry (row, col). Panics if the indices are out of range.
func (m *Matrix) Set(row, col int, v float64) {
	m.d.Set(row, col, v)
}

// MulVec returns m·x. The vector length must equal the column count.
func (m *Matrix) MulVec(x []float64) ([]float64, error) {
	r, c := m.d.Dims()
	if len(x) != c {
		return nil, fmt.Errorf("linalg: multiplying %dx%d matrix by vector of length %d: %w", r, c, len(x), ErrShapeMismatch)
	}
	var y mat.VecDense
	y.MulVec(m.d, mat.NewVecDense(c, x))
	out := make([]float64, r)
	for i := range out {
		out[i] = y.AtVec(i)
	}
	return out, nil
}

// Transpose returns a freshly materialized cols×rows copy with
// (i, j) = m(j, i).
func (m *Matrix) Transpose() *Matrix {
	var t mat.Dense
	t.CloneFrom(m.d.T())
	return &Matrix{d: &t}
}

// HadamardProduct returns the elementwise product of two equal-length
// vectors.
func HadamardProduct(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("linalg: hadamard product of vectors with lengths %d and %d: %w", len(a), len(b), ErrShapeMismatch)
	}
	out := make([]float64, len(a))
	floats.MulTo(out, a, b)
	return out, nil
}

// Fprint writes a human-readable rendering of v to w, one line.
func Fprint(w io.Writer, v []float64) {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	fmt.Fprintf(w, " %s\n", strings.Join(parts, ", "))
}
