// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package poisson assembles multigrid operators for the one-dimensional
// Poisson equation with Dirichlet boundary conditions, and for its upwinded
// convection-diffusion variant. It stands in for a hierarchy builder in tests
// and examples.
package poisson

import (
	"math"

	"github.com/vladimir-ch/amg/sparse"
)

// Laplace returns the n×n matrix tridiag(-1, 2, -1).
func Laplace(n int) *sparse.Matrix[float64, int] {
	m := sparse.NewTriplet[float64](n, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			m.Append(i, i-1, -1)
		}
		m.Append(i, i, 2)
		if i < n-1 {
			m.Append(i, i+1, -1)
		}
	}
	return m.CSR()
}

// ConvectionDiffusion returns the n×n first-order upwind discretization of
// -u'' + c u' scaled by h², the non-symmetric matrix
// tridiag(-1-c, 2+c, -1) for c >= 0.
func ConvectionDiffusion(n int, c float64) *sparse.Matrix[float64, int] {
	m := sparse.NewTriplet[float64](n, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			m.Append(i, i-1, -1-c)
		}
		m.Append(i, i, 2+c)
		if i < n-1 {
			m.Append(i, i+1, -1)
		}
	}
	return m.CSR()
}

// Interpolation returns the (2*nc+1)×nc linear interpolation from a grid with
// nc interior points to the grid with twice the resolution.
func Interpolation(nc int) *sparse.Matrix[float64, int] {
	n := 2*nc + 1
	m := sparse.NewTriplet[float64](n, nc)
	for j := 0; j < nc; j++ {
		m.Append(2*j, j, 0.5)
		m.Append(2*j+1, j, 1)
		m.Append(2*j+2, j, 0.5)
	}
	return m.CSR()
}

// Operators holds the matrices of a hierarchy, finest first. P[k] and R[k]
// connect level k with level k+1, Ai is the inverse of the last A.
type Operators struct {
	A  []*sparse.Matrix[float64, int]
	P  []*sparse.Matrix[float64, int]
	R  []*sparse.Matrix[float64, int]
	Ai *sparse.Matrix[float64, int]
}

// Sizes returns the level sizes of a hierarchy with the given depth whose
// finest level has n unknowns. n must be of the form 2^m - 1 with m >= depth.
func Sizes(n, depth int) []int {
	sizes := make([]int, depth)
	for k := range sizes {
		if n < 1 || n%2 == 0 && k < depth-1 {
			panic("poisson: size cannot be coarsened")
		}
		sizes[k] = n
		n = (n - 1) / 2
	}
	return sizes
}

// Hierarchy builds the Galerkin hierarchy of Laplace(n).
func Hierarchy(n, depth int) Operators {
	return Galerkin(Laplace(n), depth)
}

// Galerkin builds the hierarchy A[k+1] = R[k]*A[k]*P[k] with A[0] = a, P[k]
// the linear interpolation and R[k] its transpose. a must have 2^m - 1 rows
// with m >= depth.
func Galerkin(a *sparse.Matrix[float64, int], depth int) Operators {
	sizes := Sizes(int(a.Rows), depth)
	var ops Operators
	for k := 0; k < depth-1; k++ {
		p := Interpolation(sizes[k+1])
		r := p.Transpose()
		ops.A = append(ops.A, a)
		ops.P = append(ops.P, p)
		ops.R = append(ops.R, r)
		a = sparse.Mul(r, sparse.Mul(a, p))
	}
	ops.A = append(ops.A, a)
	ai, err := sparse.Inverse(a)
	if err != nil {
		panic(err)
	}
	ops.Ai = ai
	return ops
}

// RHS returns the right-hand side A*want for want_i = sin(i+1) + 1.
func RHS(a *sparse.Matrix[float64, int]) (rhs, want []float64) {
	n := int(a.Rows)
	want = make([]float64, n)
	for i := range want {
		want[i] = math.Sin(float64(i+1)) + 1
	}
	rhs = make([]float64, n)
	a.MulVec(rhs, want)
	return rhs, want
}
