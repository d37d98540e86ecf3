package tensor

import "math"

// MatMul computes dst = a @ b. dst must be a.R x b.C and a.C must equal b.R.
func MatMul(dst, a, b *Mat) {
	if a.C != b.R || dst.R != a.R || dst.C != b.C {
		panic("matmul shape mismatch")
	}
	for i := 0; i < a.R; i++ {
		arow := a.Row(i)
		drow := dst.Row(i)
		for j := range drow {
			drow[j] = 0
		}
		for k := 0; k < a.C; k++ {
			av := arow[k]
			if av == 0 {
				continue
			}
			brow := b.Row(k)
			for j := 0; j < b.C; j++ {
				drow[j] += av * brow[j]
			}
		}
	}
}

// MatMulT computes dst = a @ b^T. dst must be a.R x b.R and a.C must equal b.C.
func MatMulT(dst, a, b *Mat) {
	if a.C != b.C || dst.R != a.R || dst.C != b.R {
		panic("matmul shape mismatch")
	}
	for i := 0; i < a.R; i++ {
		arow := a.Row(i)
		drow := dst.Row(i)
		for j := 0; j < b.R; j++ {
			brow := b.Row(j)
			var sum float64
			for k := 0; k < a.C; k++ {
				sum += arow[k] * brow[k]
			}
			drow[j] = sum
		}
	}
}

// Add adds src to dst element-wise.
func Add(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}

// Dot computes the dot product of a and b.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Sum returns the sum of all elements.
func Sum(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum
}

// Sigmoid computes the logistic sigmoid.
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Softplus computes log(1 + e^x) in a numerically stable form: for large x
// the naive expression overflows, so the identity softplus(x) = x +
// softplus(-x) is used.
func Softplus(x float64) float64 {
	if x > 30 {
		return x
	}
	if x < -30 {
		return math.Exp(x)
	}
	return math.Log1p(math.Exp(x))
}
