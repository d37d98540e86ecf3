package tensor

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestNewZeroed(t *testing.T) {
	m := New(3, 4)
	if m.R != 3 || m.C != 4 || len(m.Data) != 12 {
		t.Fatalf("unexpected shape: %dx%d len=%d", m.R, m.C, len(m.Data))
	}
	for i, v := range m.Data {
		if v != 0 {
			t.Fatalf("element %d not zero: %v", i, v)
		}
	}
}

func TestRowIsView(t *testing.T) {
	m := New(2, 3)
	m.Row(1)[2] = 7
	if m.At(1, 2) != 7 {
		t.Fatal("Row did not return a view")
	}
}

func TestFromDataPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for length mismatch")
		}
	}()
	FromData(2, 3, []float64{1, 2, 3})
}

func TestTranspose(t *testing.T) {
	m := FromData(2, 3, []float64{1, 2, 3, 4, 5, 6})
	mt := m.Transpose()
	if mt.R != 3 || mt.C != 2 {
		t.Fatalf("unexpected transpose shape: %dx%d", mt.R, mt.C)
	}
	want := []float64{1, 4, 2, 5, 3, 6}
	if !floats.Equal(mt.Data, want) {
		t.Fatalf("transpose mismatch: got %v want %v", mt.Data, want)
	}
}

func TestMatMul(t *testing.T) {
	a := FromData(2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := FromData(3, 2, []float64{7, 8, 9, 10, 11, 12})
	dst := New(2, 2)
	MatMul(&dst, &a, &b)
	want := []float64{58, 64, 139, 154}
	if !floats.EqualApprox(dst.Data, want, 1e-12) {
		t.Fatalf("matmul mismatch: got %v want %v", dst.Data, want)
	}
}

func TestMatMulTMatchesExplicitTranspose(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := New(4, 5)
	b := New(6, 5)
	FillRandn(&a, rng, 1)
	FillRandn(&b, rng, 1)

	direct := New(4, 6)
	MatMulT(&direct, &a, &b)

	bt := b.Transpose()
	viaTranspose := New(4, 6)
	MatMul(&viaTranspose, &a, &bt)

	if !floats.EqualApprox(direct.Data, viaTranspose.Data, 1e-12) {
		t.Fatalf("MatMulT disagrees with MatMul against transpose")
	}
}

func TestSoftplus(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{0, math.Log(2)},
		{0.5, math.Log1p(math.Exp(0.5))},
		{100, 100},  // stable for large positive x
		{-100, 0.0}, // underflows to ~0, never negative
	}
	for _, tc := range tests {
		got := Softplus(tc.x)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Softplus(%v): got %v want %v", tc.x, got, tc.want)
		}
		if got < 0 {
			t.Errorf("Softplus(%v) negative: %v", tc.x, got)
		}
	}
}

func TestSigmoidIsSoftplusDerivative(t *testing.T) {
	const h = 1e-6
	for _, x := range []float64{-3, -0.5, 0, 0.5, 3} {
		numeric := (Softplus(x+h) - Softplus(x-h)) / (2 * h)
		if math.Abs(numeric-Sigmoid(x)) > 1e-6 {
			t.Errorf("sigmoid(%v) != d/dx softplus: %v vs %v", x, Sigmoid(x), numeric)
		}
	}
}

func BenchmarkMatMulT(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	u := New(256, 16)
	v := New(512, 16)
	FillRandn(&u, rng, 1)
	FillRandn(&v, rng, 1)
	dst := New(256, 512)

	for b.Loop() {
		MatMulT(&dst, &u, &v)
	}
}
