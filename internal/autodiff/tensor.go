// Package autodiff implements reverse-mode automatic differentiation over
// dense float64 matrices. Operations build a computation graph as they
// execute; calling Backward on a scalar result walks the graph in reverse
// topological order and accumulates gradients into every leaf created with
// Var.
//
// Shape mismatches are programmer errors and panic, matching the tensor
// package. Model-level configuration is validated before any graph is built.
package autodiff

import (
	"github.com/genotools/genovae/internal/tensor"
)

// Tensor is a node in the computation graph. Data holds the forward value.
// Grad is allocated only for nodes that participate in differentiation and
// accumulates d(output)/d(node) during Backward.
type Tensor struct {
	Data tensor.Mat
	Grad tensor.Mat

	requires bool
	back     func()
	prev     []*Tensor
}

// Var creates a differentiable leaf holding m. The tape takes ownership of m.
func Var(m tensor.Mat) *Tensor {
	return &Tensor{
		Data:     m,
		Grad:     tensor.New(m.R, m.C),
		requires: true,
	}
}

// Const creates a non-differentiable leaf holding m. Gradients never flow
// into constants.
func Const(m tensor.Mat) *Tensor {
	return &Tensor{Data: m}
}

// Rows returns the number of rows of the node's value.
func (t *Tensor) Rows() int { return t.Data.R }

// Cols returns the number of columns of the node's value.
func (t *Tensor) Cols() int { return t.Data.C }

// Scalar returns the single element of a 1x1 node. It panics for any other
// shape.
func (t *Tensor) Scalar() float64 {
	if t.Data.R != 1 || t.Data.C != 1 {
		panic("Scalar called on non-scalar tensor")
	}
	return t.Data.Data[0]
}

// RequiresGrad reports whether gradients flow into this node.
func (t *Tensor) RequiresGrad() bool { return t.requires }

// ZeroGrad clears the accumulated gradient.
func (t *Tensor) ZeroGrad() {
	if t.requires {
		t.Grad.Zero()
	}
}

// newNode builds an interior node. It requires grad iff any input does, and
// only then allocates the gradient buffer and keeps the backward closure.
func newNode(data tensor.Mat, inputs ...*Tensor) *Tensor {
	n := &Tensor{Data: data}
	for _, in := range inputs {
		if in.requires {
			n.requires = true
			break
		}
	}
	if n.requires {
		n.Grad = tensor.New(data.R, data.C)
		n.prev = inputs
	}
	return n
}

// Backward computes gradients of t with respect to every Var reachable from
// it. t must be scalar (1x1); its seed gradient is 1.
func (t *Tensor) Backward() {
	if t.Data.R != 1 || t.Data.C != 1 {
		panic("Backward called on non-scalar tensor")
	}
	if !t.requires {
		return
	}

	order := topoSort(t)
	t.Grad.Data[0] = 1
	for i := len(order) - 1; i >= 0; i-- {
		if order[i].back != nil {
			order[i].back()
		}
	}
}

func topoSort(root *Tensor) []*Tensor {
	var order []*Tensor
	seen := make(map[*Tensor]bool)

	var visit func(*Tensor)
	visit = func(n *Tensor) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, p := range n.prev {
			if p.requires {
				visit(p)
			}
		}
		order = append(order, n)
	}
	visit(root)
	return order
}
