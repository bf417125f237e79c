// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amg

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladimir-ch/amg/internal/parallel"
	"github.com/vladimir-ch/amg/internal/poisson"
	"github.com/vladimir-ch/amg/sparse"
)

func threeByThree() *sparse.Matrix[float64, int] {
	return dense([][]float64{
		{4, -1, 0},
		{-2, 5, 1},
		{0, -1, 3},
	})
}

func TestRelaxJacobiIndependence(t *testing.T) {
	a := threeByThree()
	ai, err := sparse.Inverse(a)
	require.NoError(t, err)
	l := NewCoarsestLevel(a, ai)

	rhs := []float64{1, 1, 1}
	x := []float64{1, 2, 3}
	l.Relax(rhs, x)

	// Every row uses x = (1, 2, 3). A Gauss-Seidel sweep would feed the
	// updated first entry into the second row.
	require.InDeltaSlice(t, []float64{0.82, 0.56, 1.56}, x, 1e-15)
	require.Equal(t, []float64{1, 1, 1}, rhs)
}

func TestRelaxMatchesReference(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	ops := poisson.Hierarchy(4095, 6)
	ref := poisson.Laplace(4095)
	l := NewLevel(ops.A[0], ops.P[0], ops.R[0], false)

	rhs := randomVec(4095, rnd)
	x := randomVec(4095, rnd)
	want := jacobi(ref, rhs, x)
	l.Relax(rhs, x)
	require.InDeltaSlice(t, want, x, 1e-12)
}

func TestRelaxReducesResidual(t *testing.T) {
	const n = 100
	a := poisson.Laplace(n)
	rhs, _ := poisson.RHS(a)
	ai, err := sparse.Inverse(a)
	require.NoError(t, err)
	l := NewCoarsestLevel(a, ai)

	x := make([]float64, n)
	prev := l.Resid(rhs, x)
	first := prev
	for i := 0; i < 500; i++ {
		l.Relax(rhs, x)
		r := l.Resid(rhs, x)
		require.LessOrEqual(t, r, prev, "sweep %d", i)
		prev = r
	}
	require.Less(t, prev, first/2)
}

func TestRelaxOwnedSwapsBuffers(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	levels := poissonLevels(31, 2)
	l := levels[1]

	rhs := randomVec(l.Size(), rnd)
	copy(l.f, rhs)
	copy(l.u, randomVec(l.Size(), rnd))
	want := slices.Clone(l.u)
	l.Relax(rhs, want)

	oldT := &l.t[0]
	oldU := &l.u[0]
	l.relax(l.f, owned(&l.u))
	require.Equal(t, want, l.u)
	require.Same(t, oldT, &l.u[0])
	require.Same(t, oldU, &l.t[0])
}

func TestResidIsPure(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	levels := poissonLevels(8191, 8)
	l := levels[0]
	rhs := randomVec(l.Size(), rnd)
	x := randomVec(l.Size(), rnd)
	rhs0, x0 := slices.Clone(rhs), slices.Clone(x)

	r1 := l.Resid(rhs, x)
	r2 := l.Resid(rhs, x)
	require.Equal(t, r1, r2)
	require.Equal(t, rhs0, rhs)
	require.Equal(t, x0, x)

	prev := parallel.SetWorkers(1)
	defer parallel.SetWorkers(prev)
	require.Equal(t, r1, l.Resid(rhs, x))
	parallel.SetWorkers(7)
	require.Equal(t, r1, l.Resid(rhs, x))
}

func TestResidOfExactSolution(t *testing.T) {
	a := poisson.Laplace(50)
	rhs, want := poisson.RHS(a)
	ai, err := sparse.Inverse(a)
	require.NoError(t, err)
	l := NewCoarsestLevel(a, ai)
	require.InDelta(t, 0, l.Resid(rhs, want), 1e-12)
}

func TestNewLevelTakesOwnership(t *testing.T) {
	ops := poisson.Hierarchy(15, 2)
	a, p, r := ops.A[0], ops.P[0], ops.R[0]
	l := NewLevel(a, p, r, false)
	require.True(t, a.Empty())
	require.True(t, p.Empty())
	require.True(t, r.Empty())
	require.Equal(t, 15, l.Size())
	require.False(t, l.Coarsest())
	require.Nil(t, l.u)
	require.Nil(t, l.f)
	require.Len(t, l.t, 15)
	require.Equal(t, 15, int(l.A().Rows))

	c := NewCoarsestLevel(ops.A[1], ops.Ai)
	require.True(t, ops.A[1].Empty())
	require.True(t, ops.Ai.Empty())
	require.True(t, c.Coarsest())
	require.Len(t, c.u, 7)
	require.Len(t, c.f, 7)
}

// badColumn returns a 2×2 matrix built without sparse.New whose second row
// refers to a column outside the matrix.
func badColumn() *sparse.Matrix[float64, int] {
	return &sparse.Matrix[float64, int]{
		Rows: 2,
		Cols: 2,
		Ptr:  []int{0, 1, 2},
		Col:  []int{0, 5},
		Val:  []float64{1, 1},
	}
}

func TestNewLevelRejectsBadLayout(t *testing.T) {
	require.PanicsWithValue(t,
		"amg: system matrix: sparse: invalid compressed-row layout: column index 5 out of range at entry 1",
		func() { NewCoarsestLevel(badColumn(), identity(2)) })
}

func TestNewLevelPanics(t *testing.T) {
	noDiag := func() *sparse.Matrix[float64, int] {
		return dense([][]float64{{1, 1}, {1, 0}})
	}
	zeroDiag := func() *sparse.Matrix[float64, int] {
		m := sparse.NewTriplet[float64](2, 2)
		m.Append(0, 0, 1)
		m.Append(1, 1, 0)
		return m.CSR()
	}
	p := func() *sparse.Matrix[float64, int] { return poisson.Interpolation(3) }
	r := func() *sparse.Matrix[float64, int] { return poisson.Interpolation(3).Transpose() }

	for name, f := range map[string]func(){
		"missing diagonal": func() { NewLevel(noDiag(), identity(2), identity(2), false) },
		"zero diagonal":    func() { NewLevel(zeroDiag(), identity(2), identity(2), false) },
		"non-square A": func() {
			NewLevel(poisson.Interpolation(2), identity(5), identity(5), false)
		},
		"empty A":         func() { NewLevel(&sparse.Matrix[float64, int]{}, p(), r(), false) },
		"empty P":         func() { NewLevel(poisson.Laplace(7), &sparse.Matrix[float64, int]{}, r(), false) },
		"P rows":          func() { NewLevel(poisson.Laplace(6), p(), r(), false) },
		"R cols":          func() { NewLevel(poisson.Laplace(7), p(), poisson.Interpolation(2).Transpose(), false) },
		"coarse size":     func() { NewLevel(poisson.Laplace(7), p(), dense([][]float64{{1, 0, 0, 0, 0, 0, 0}}), false) },
		"inverse size":    func() { NewCoarsestLevel(poisson.Laplace(3), identity(2)) },
		"empty inverse":   func() { NewCoarsestLevel(poisson.Laplace(3), &sparse.Matrix[float64, int]{}) },
		"coarsest noDiag": func() { NewCoarsestLevel(noDiag(), identity(2)) },
		"A column":        func() { NewCoarsestLevel(badColumn(), identity(2)) },
		"P column": func() {
			bad := p()
			bad.Col[0] = 3
			NewLevel(poisson.Laplace(7), bad, r(), false)
		},
		"inverse pointer": func() {
			bad := identity(2)
			bad.Ptr[1] = 3
			NewCoarsestLevel(identity(2), bad)
		},
	} {
		require.Panics(t, f, name)
	}
}

func TestRelaxPanicsOnLength(t *testing.T) {
	levels := poissonLevels(15, 2)
	require.Panics(t, func() { levels[0].Relax(make([]float64, 15), make([]float64, 14)) })
	require.Panics(t, func() { levels[0].Resid(make([]float64, 14), make([]float64, 15)) })
}

func TestRelaxFloat32(t *testing.T) {
	m := sparse.NewTriplet[float32, int32](3, 3)
	for i, row := range [][]float32{{4, -1, 0}, {-2, 5, 1}, {0, -1, 3}} {
		for j, v := range row {
			if v != 0 {
				m.Append(int32(i), int32(j), v)
			}
		}
	}
	a := m.CSR()
	ai, err := sparse.Inverse(a)
	require.NoError(t, err)
	l := NewCoarsestLevel(a, ai)
	x := []float32{1, 2, 3}
	l.Relax([]float32{1, 1, 1}, x)
	require.InDeltaSlice(t, []float32{0.82, 0.56, 1.56}, x, 1e-6)
}
