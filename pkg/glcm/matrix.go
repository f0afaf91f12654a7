// Package glcm builds Gray-Level Co-occurrence Matrices from 8-bit intensity
// buffers and derives Haralick texture features from them.
//
// All functions are pure: they read their inputs, allocate their outputs and
// keep no state between calls, so they may be called concurrently.
package glcm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Levels is the number of gray levels of an 8-bit sample.
const Levels = 256

// sumTolerance is the largest deviation from 1 accepted by NewMatrix.
const sumTolerance = 1e-9

// Matrix is a normalised, symmetric co-occurrence table. Cell (a, b) holds
// the probability of observing intensities a and b as a neighbour pair.
type Matrix struct {
	// cells is the full row-major table, both triangles populated.
	cells []float64
	sym   *mat.SymDense
	pairs int
}

// Build computes the co-occurrence matrix of a row-major width x height
// buffer for neighbours step pixels away along dir.
//
// Every observed pair (a, b) is recorded in both (a, b) and (b, a) and adds
// 2 to the pair count, which is then used to normalise the table so that its
// cells sum to 1.
//
// Errors:
//   - ErrInvalidDimensions if width, height or step is not positive, or pix
//     holds fewer than width*height samples
//   - ErrInvalidDirection if dir is not one of the four grid directions
//   - ErrDegenerateRegion if no pair fits in the image (step too large)
func Build(pix []byte, width, height int, dir Direction, step int) (*Matrix, error) {
	if width <= 0 || height <= 0 || step <= 0 {
		return nil, fmt.Errorf("%w: width=%d height=%d step=%d", ErrInvalidDimensions, width, height, step)
	}
	if len(pix) < width*height {
		return nil, fmt.Errorf("%w: buffer holds %d samples, %dx%d needs %d",
			ErrInvalidDimensions, len(pix), width, height, width*height)
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}

	cells := make([]float64, Levels*Levels)
	x0, x1, y0, y1 := dir.scanWindow(width, height, step)
	dx, dy := dir.Offset(step)

	pairs := 0
	for y := y0; y < y1; y++ {
		ref := y * width
		nbr := (y+dy)*width + dx
		for x := x0; x < x1; x++ {
			a := int(pix[ref+x])
			b := int(pix[nbr+x])
			cells[a*Levels+b]++
			cells[b*Levels+a]++
			pairs += 2
		}
	}

	if pairs == 0 {
		return nil, fmt.Errorf("%w: %dx%d buffer has no pairs at %s, step %d",
			ErrDegenerateRegion, width, height, dir, step)
	}

	// Divide instead of scaling by the reciprocal so probabilities are
	// exactly count/pairs.
	n := float64(pairs)
	for i := range cells {
		cells[i] /= n
	}

	return &Matrix{
		cells: cells,
		sym:   mat.NewSymDense(Levels, cells),
		pairs: pairs,
	}, nil
}

// NewMatrix wraps an existing Levels x Levels symmetric probability table.
// The table is copied. The pair count of the result is 0, since it was not
// built from pixels.
//
// Every cell must be finite and non-negative and the cells must sum to 1
// within 1e-9, otherwise ErrNotNormalized is returned.
func NewMatrix(p mat.Symmetric) (*Matrix, error) {
	if n := p.SymmetricDim(); n != Levels {
		return nil, fmt.Errorf("%w: matrix is %dx%d, want %dx%d", ErrInvalidDimensions, n, n, Levels, Levels)
	}
	cells := make([]float64, Levels*Levels)
	for a := 0; a < Levels; a++ {
		for b := a; b < Levels; b++ {
			v := p.At(a, b)
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, fmt.Errorf("%w: cell (%d,%d) is %g", ErrNotNormalized, a, b, v)
			}
			cells[a*Levels+b] = v
			cells[b*Levels+a] = v
		}
	}
	if sum := floats.Sum(cells); math.Abs(sum-1) > sumTolerance {
		return nil, fmt.Errorf("%w: cells sum to %g", ErrNotNormalized, sum)
	}
	return &Matrix{
		cells: cells,
		sym:   mat.NewSymDense(Levels, cells),
	}, nil
}

// At returns the probability of the ordered pair (a, b).
func (m *Matrix) At(a, b int) float64 {
	return m.cells[a*Levels+b]
}

// Pairs returns the number of ordered pairs recorded while building.
func (m *Matrix) Pairs() int {
	return m.pairs
}

// Levels returns the side length of the table.
func (m *Matrix) Levels() int {
	return Levels
}

// Sum returns the total probability mass, 1 within rounding for a built matrix.
func (m *Matrix) Sum() float64 {
	return floats.Sum(m.cells)
}

// Raw exposes the table as a gonum symmetric matrix. It must not be modified.
func (m *Matrix) Raw() mat.Symmetric {
	return m.sym
}

// Row returns row a of the table. It must not be modified.
func (m *Matrix) Row(a int) []float64 {
	return m.cells[a*Levels : (a+1)*Levels]
}
