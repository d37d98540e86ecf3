package autodiff

import (
	"math"

	"github.com/genotools/genovae/internal/tensor"
)

func sameShape(a, b *Tensor) {
	if a.Data.R != b.Data.R || a.Data.C != b.Data.C {
		panic("elementwise op shape mismatch")
	}
}

// Add returns a + b element-wise.
func Add(a, b *Tensor) *Tensor {
	sameShape(a, b)
	data := a.Data.Clone()
	tensor.Add(data.Data, b.Data.Data)
	out := newNode(data, a, b)
	if out.requires {
		out.back = func() {
			if a.requires {
				tensor.Add(a.Grad.Data, out.Grad.Data)
			}
			if b.requires {
				tensor.Add(b.Grad.Data, out.Grad.Data)
			}
		}
	}
	return out
}

// Sub returns a - b element-wise.
func Sub(a, b *Tensor) *Tensor {
	sameShape(a, b)
	data := a.Data.Clone()
	for i, v := range b.Data.Data {
		data.Data[i] -= v
	}
	out := newNode(data, a, b)
	if out.requires {
		out.back = func() {
			if a.requires {
				tensor.Add(a.Grad.Data, out.Grad.Data)
			}
			if b.requires {
				for i, g := range out.Grad.Data {
					b.Grad.Data[i] -= g
				}
			}
		}
	}
	return out
}

// Mul returns a * b element-wise (Hadamard product).
func Mul(a, b *Tensor) *Tensor {
	sameShape(a, b)
	data := tensor.New(a.Data.R, a.Data.C)
	for i := range data.Data {
		data.Data[i] = a.Data.Data[i] * b.Data.Data[i]
	}
	out := newNode(data, a, b)
	if out.requires {
		out.back = func() {
			for i, g := range out.Grad.Data {
				if a.requires {
					a.Grad.Data[i] += g * b.Data.Data[i]
				}
				if b.requires {
					b.Grad.Data[i] += g * a.Data.Data[i]
				}
			}
		}
	}
	return out
}

// Div returns a / b element-wise. Division by zero follows IEEE semantics;
// the result propagates as Inf/NaN rather than being clamped.
func Div(a, b *Tensor) *Tensor {
	sameShape(a, b)
	data := tensor.New(a.Data.R, a.Data.C)
	for i := range data.Data {
		data.Data[i] = a.Data.Data[i] / b.Data.Data[i]
	}
	out := newNode(data, a, b)
	if out.requires {
		out.back = func() {
			for i, g := range out.Grad.Data {
				bv := b.Data.Data[i]
				if a.requires {
					a.Grad.Data[i] += g / bv
				}
				if b.requires {
					b.Grad.Data[i] -= g * a.Data.Data[i] / (bv * bv)
				}
			}
		}
	}
	return out
}

// Scale returns k * a.
func Scale(a *Tensor, k float64) *Tensor {
	data := tensor.New(a.Data.R, a.Data.C)
	for i, v := range a.Data.Data {
		data.Data[i] = k * v
	}
	out := newNode(data, a)
	if out.requires {
		out.back = func() {
			for i, g := range out.Grad.Data {
				a.Grad.Data[i] += k * g
			}
		}
	}
	return out
}

// Neg returns -a.
func Neg(a *Tensor) *Tensor { return Scale(a, -1) }

// Shift returns a + k element-wise.
func Shift(a *Tensor, k float64) *Tensor {
	data := tensor.New(a.Data.R, a.Data.C)
	for i, v := range a.Data.Data {
		data.Data[i] = v + k
	}
	out := newNode(data, a)
	if out.requires {
		out.back = func() {
			tensor.Add(a.Grad.Data, out.Grad.Data)
		}
	}
	return out
}

// MatMul returns a @ b.
func MatMul(a, b *Tensor) *Tensor {
	data := tensor.New(a.Data.R, b.Data.C)
	tensor.MatMul(&data, &a.Data, &b.Data)
	out := newNode(data, a, b)
	if out.requires {
		out.back = func() {
			if a.requires {
				// dA += g @ B^T
				ga := tensor.New(a.Data.R, a.Data.C)
				tensor.MatMulT(&ga, &out.Grad, &b.Data)
				tensor.Add(a.Grad.Data, ga.Data)
			}
			if b.requires {
				// dB += A^T @ g
				at := a.Data.Transpose()
				gb := tensor.New(b.Data.R, b.Data.C)
				tensor.MatMul(&gb, &at, &out.Grad)
				tensor.Add(b.Grad.Data, gb.Data)
			}
		}
	}
	return out
}

// MatMulT returns a @ b^T, the bilinear interaction of two row-major factor
// matrices sharing a feature dimension.
func MatMulT(a, b *Tensor) *Tensor {
	data := tensor.New(a.Data.R, b.Data.R)
	tensor.MatMulT(&data, &a.Data, &b.Data)
	out := newNode(data, a, b)
	if out.requires {
		out.back = func() {
			if a.requires {
				// dA += g @ B
				ga := tensor.New(a.Data.R, a.Data.C)
				tensor.MatMul(&ga, &out.Grad, &b.Data)
				tensor.Add(a.Grad.Data, ga.Data)
			}
			if b.requires {
				// dB += g^T @ A
				gt := out.Grad.Transpose()
				gb := tensor.New(b.Data.R, b.Data.C)
				tensor.MatMul(&gb, &gt, &a.Data)
				tensor.Add(b.Grad.Data, gb.Data)
			}
		}
	}
	return out
}

// AddRow adds the 1xC row vector b to every row of a.
func AddRow(a, b *Tensor) *Tensor {
	if b.Data.R != 1 || b.Data.C != a.Data.C {
		panic("AddRow requires a 1xC bias matching a's columns")
	}
	data := a.Data.Clone()
	for i := 0; i < data.R; i++ {
		tensor.Add(data.Row(i), b.Data.Data)
	}
	out := newNode(data, a, b)
	if out.requires {
		out.back = func() {
			if a.requires {
				tensor.Add(a.Grad.Data, out.Grad.Data)
			}
			if b.requires {
				for i := 0; i < out.Grad.R; i++ {
					tensor.Add(b.Grad.Data, out.Grad.Row(i))
				}
			}
		}
	}
	return out
}

// Sigmoid applies the logistic function element-wise.
func Sigmoid(a *Tensor) *Tensor {
	data := tensor.New(a.Data.R, a.Data.C)
	for i, v := range a.Data.Data {
		data.Data[i] = tensor.Sigmoid(v)
	}
	out := newNode(data, a)
	if out.requires {
		out.back = func() {
			for i, g := range out.Grad.Data {
				s := out.Data.Data[i]
				a.Grad.Data[i] += g * s * (1 - s)
			}
		}
	}
	return out
}

// Softplus applies log(1+e^x) element-wise. Its derivative is the sigmoid.
func Softplus(a *Tensor) *Tensor {
	data := tensor.New(a.Data.R, a.Data.C)
	for i, v := range a.Data.Data {
		data.Data[i] = tensor.Softplus(v)
	}
	out := newNode(data, a)
	if out.requires {
		out.back = func() {
			for i, g := range out.Grad.Data {
				a.Grad.Data[i] += g * tensor.Sigmoid(a.Data.Data[i])
			}
		}
	}
	return out
}

// Log applies the natural logarithm element-wise. Non-positive inputs yield
// -Inf/NaN which propagate through the graph unclamped.
func Log(a *Tensor) *Tensor {
	data := tensor.New(a.Data.R, a.Data.C)
	for i, v := range a.Data.Data {
		data.Data[i] = math.Log(v)
	}
	out := newNode(data, a)
	if out.requires {
		out.back = func() {
			for i, g := range out.Grad.Data {
				a.Grad.Data[i] += g / a.Data.Data[i]
			}
		}
	}
	return out
}

// Square returns a*a element-wise.
func Square(a *Tensor) *Tensor {
	data := tensor.New(a.Data.R, a.Data.C)
	for i, v := range a.Data.Data {
		data.Data[i] = v * v
	}
	out := newNode(data, a)
	if out.requires {
		out.back = func() {
			for i, g := range out.Grad.Data {
				a.Grad.Data[i] += 2 * g * a.Data.Data[i]
			}
		}
	}
	return out
}

// Sum reduces all elements to a 1x1 scalar.
func Sum(a *Tensor) *Tensor {
	data := tensor.New(1, 1)
	data.Data[0] = tensor.Sum(a.Data.Data)
	out := newNode(data, a)
	if out.requires {
		out.back = func() {
			g := out.Grad.Data[0]
			for i := range a.Grad.Data {
				a.Grad.Data[i] += g
			}
		}
	}
	return out
}

// SumRows reduces each row to a single column, producing an Rx1 result.
func SumRows(a *Tensor) *Tensor {
	data := tensor.New(a.Data.R, 1)
	for i := 0; i < a.Data.R; i++ {
		data.Data[i] = tensor.Sum(a.Data.Row(i))
	}
	out := newNode(data, a)
	if out.requires {
		out.back = func() {
			for i := 0; i < a.Data.R; i++ {
				g := out.Grad.Data[i]
				row := a.Grad.Row(i)
				for j := range row {
					row[j] += g
				}
			}
		}
	}
	return out
}

// SliceCols returns the column range [from, to) of a as a new node.
func SliceCols(a *Tensor, from, to int) *Tensor {
	if from < 0 || to > a.Data.C || from >= to {
		panic("SliceCols range out of bounds")
	}
	w := to - from
	data := tensor.New(a.Data.R, w)
	for i := 0; i < a.Data.R; i++ {
		copy(data.Row(i), a.Data.Row(i)[from:to])
	}
	out := newNode(data, a)
	if out.requires {
		out.back = func() {
			for i := 0; i < a.Data.R; i++ {
				tensor.Add(a.Grad.Row(i)[from:to], out.Grad.Row(i))
			}
		}
	}
	return out
}

// Flatten reshapes a to a single row of length R*C, in row-major order.
func Flatten(a *Tensor) *Tensor {
	data := tensor.New(1, a.Data.R*a.Data.C)
	copy(data.Data, a.Data.Data)
	out := newNode(data, a)
	if out.requires {
		out.back = func() {
			tensor.Add(a.Grad.Data, out.Grad.Data)
		}
	}
	return out
}
