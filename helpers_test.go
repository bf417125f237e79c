// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amg

import (
	"math/rand"

	"github.com/vladimir-ch/amg/internal/poisson"
	"github.com/vladimir-ch/amg/sparse"
)

// poissonLevels returns the levels of the Poisson hierarchy with n unknowns
// on the finest of depth levels.
func poissonLevels(n, depth int) []*Level[float64, int] {
	ops := poisson.Hierarchy(n, depth)
	levels := make([]*Level[float64, int], depth)
	for k := 0; k < depth-1; k++ {
		levels[k] = NewLevel(ops.A[k], ops.P[k], ops.R[k], k > 0)
	}
	levels[depth-1] = NewCoarsestLevel(ops.A[depth-1], ops.Ai)
	return levels
}

func identity(n int) *sparse.Matrix[float64, int] {
	m := sparse.NewTriplet[float64](n, n)
	for i := 0; i < n; i++ {
		m.Append(i, i, 1)
	}
	return m.CSR()
}

func dense(rows [][]float64) *sparse.Matrix[float64, int] {
	m := sparse.NewTriplet[float64](len(rows), len(rows[0]))
	for i, row := range rows {
		for j, v := range row {
			if v != 0 {
				m.Append(i, j, v)
			}
		}
	}
	return m.CSR()
}

func randomVec(n int, rnd *rand.Rand) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rnd.NormFloat64()
	}
	return v
}

// jacobi is a sequential reference for one relaxation sweep computed only
// from the incoming x.
func jacobi(a *sparse.Matrix[float64, int], rhs, x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		temp := rhs[i]
		diag := 0.0
		for k := a.Ptr[i]; k < a.Ptr[i+1]; k++ {
			temp -= a.Val[k] * x[a.Col[k]]
			if a.Col[k] == i {
				diag = a.Val[k]
			}
		}
		out[i] = x[i] + Damping*(temp/diag)
	}
	return out
}
