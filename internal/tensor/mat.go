package tensor

import "math/rand"

// Mat represents a dense row-major matrix of float64 values.
//
// R and C are the number of rows and columns. Data holds the flattened
// values; row i occupies Data[i*C : (i+1)*C]. Training math in genovae runs
// in float64 so that gradient checks against analytic formulas stay tight.
//
// Mat does not perform any memory safety beyond the checks performed by Go's
// slice types; out-of-range indices will panic.
type Mat struct {
	R, C int
	Data []float64
}

// New allocates a zero-initialised matrix with the given dimensions.
func New(r, c int) Mat {
	if r < 0 || c < 0 {
		panic("negative dimension for matrix")
	}
	return Mat{R: r, C: c, Data: make([]float64, r*c)}
}

// FromData creates a matrix from existing data. It panics if the data
// length does not match r*c.
func FromData(r, c int, data []float64) Mat {
	if r*c != len(data) {
		panic("data length mismatch")
	}
	return Mat{R: r, C: c, Data: data}
}

// Row returns a view of the i-th row. Modifications to the returned slice
// update the underlying matrix values.
func (m *Mat) Row(i int) []float64 {
	if i < 0 || i >= m.R {
		panic("row index out of range")
	}
	return m.Data[i*m.C : (i+1)*m.C]
}

// At returns the element at row i, column j.
func (m *Mat) At(i, j int) float64 {
	if j < 0 || j >= m.C {
		panic("column index out of range")
	}
	return m.Row(i)[j]
}

// Set assigns the element at row i, column j.
func (m *Mat) Set(i, j int, v float64) {
	if j < 0 || j >= m.C {
		panic("column index out of range")
	}
	m.Row(i)[j] = v
}

// Clone returns a deep copy of the matrix.
func (m *Mat) Clone() Mat {
	out := New(m.R, m.C)
	copy(out.Data, m.Data)
	return out
}

// Zero resets all elements to zero.
func (m *Mat) Zero() {
	for i := range m.Data {
		m.Data[i] = 0
	}
}

// Fill sets all elements to v.
func (m *Mat) Fill(v float64) {
	for i := range m.Data {
		m.Data[i] = v
	}
}

// Transpose returns a new matrix that is the transpose of m.
func (m *Mat) Transpose() Mat {
	out := New(m.C, m.R)
	for i := 0; i < m.R; i++ {
		row := m.Row(i)
		for j := 0; j < m.C; j++ {
			out.Data[j*out.C+i] = row[j]
		}
	}
	return out
}

// FillRandn fills m with draws from N(0, std^2) using the provided source.
func FillRandn(m *Mat, rng *rand.Rand, std float64) {
	for i := range m.Data {
		m.Data[i] = rng.NormFloat64() * std
	}
}
