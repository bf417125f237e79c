// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amg

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/vladimir-ch/amg/internal/parallel"
	"github.com/vladimir-ch/amg/sparse"
)

// Level is one level of a multigrid hierarchy.
//
// An interior level holds the system matrix A, the prolongation P from the
// next coarser level and the restriction R to it. The coarsest level holds A
// and its inverse Ai. The operators are owned by the level and never change.
// The scratch vectors are overwritten by every cycle.
type Level[T constraints.Float, I constraints.Integer] struct {
	a, p, r sparse.Matrix[T, I]
	ai      sparse.Matrix[T, I]

	dia []T

	u, f []T
	t    []T
}

// NewLevel returns an interior level built from the system matrix a, the
// prolongation p and the restriction r. The level takes the matrices over and
// leaves a, p and r empty. hasParent must be true for every level except the
// finest, whose solution and right-hand side are supplied by the caller.
//
// NewLevel panics if a matrix is not a valid compressed-row matrix, the
// dimensions do not match or a row of a has no nonzero diagonal entry.
func NewLevel[T constraints.Float, I constraints.Integer](a, p, r *sparse.Matrix[T, I], hasParent bool) *Level[T, I] {
	l := &Level[T, I]{
		a: a.Take(),
		p: p.Take(),
		r: r.Take(),
	}
	l.checkA()
	n := l.a.Rows
	if l.p.Empty() || l.r.Empty() {
		panic("amg: interior level without transfer operators")
	}
	checkLayout("prolongation", &l.p)
	checkLayout("restriction", &l.r)
	switch {
	case l.p.Rows != n:
		panic("amg: prolongation rows do not match level size")
	case l.r.Cols != n:
		panic("amg: restriction columns do not match level size")
	case l.p.Cols != l.r.Rows:
		panic("amg: prolongation and restriction disagree on coarse size")
	}
	l.dia = diagonal(&l.a)
	if hasParent {
		l.u = make([]T, n)
		l.f = make([]T, n)
	}
	l.t = make([]T, n)
	return l
}

// NewCoarsestLevel returns the last level of a hierarchy, built from the
// system matrix a and its inverse ai. The level takes the matrices over and
// leaves a and ai empty.
//
// NewCoarsestLevel panics if ai is not a square matrix of the size of a, or
// under the conditions of NewLevel that apply to a.
func NewCoarsestLevel[T constraints.Float, I constraints.Integer](a, ai *sparse.Matrix[T, I]) *Level[T, I] {
	l := &Level[T, I]{
		a:  a.Take(),
		ai: ai.Take(),
	}
	l.checkA()
	n := l.a.Rows
	if l.ai.Empty() {
		panic("amg: coarsest level without inverse")
	}
	checkLayout("inverse", &l.ai)
	if l.ai.Rows != n || l.ai.Cols != n {
		panic("amg: inverse does not match coarsest level size")
	}
	l.dia = diagonal(&l.a)
	l.u = make([]T, n)
	l.f = make([]T, n)
	l.t = make([]T, n)
	return l
}

func (l *Level[T, I]) checkA() {
	if l.a.Empty() || l.a.Rows == 0 {
		panic("amg: empty system matrix")
	}
	checkLayout("system matrix", &l.a)
	if l.a.Rows != l.a.Cols {
		panic("amg: system matrix is not square")
	}
}

// checkLayout panics if m does not describe a compressed-row matrix, as may
// happen when its fields were set by hand.
func checkLayout[T constraints.Float, I constraints.Integer](what string, m *sparse.Matrix[T, I]) {
	if err := m.Validate(); err != nil {
		panic(fmt.Sprintf("amg: %s: %v", what, err))
	}
}

// diagonal returns the diagonal of a. It panics if a row has no diagonal
// entry or the entry is zero.
func diagonal[T constraints.Float, I constraints.Integer](a *sparse.Matrix[T, I]) []T {
	dia := make([]T, a.Rows)
	for i := I(0); i < a.Rows; i++ {
		d, ok := a.Diagonal(i)
		if !ok || d == 0 {
			panic(fmt.Sprintf("amg: zero or missing diagonal in row %d", i))
		}
		dia[i] = d
	}
	return dia
}

// Size returns the number of unknowns of the level.
func (l *Level[T, I]) Size() int {
	return int(l.a.Rows)
}

// Coarsest reports whether l is a coarsest level.
func (l *Level[T, I]) Coarsest() bool {
	return !l.ai.Empty()
}

// A returns the system matrix of the level. It must not be modified.
func (l *Level[T, I]) A() *sparse.Matrix[T, I] {
	return &l.a
}

// vec is a solution vector handed to a level. A vec that owns its storage
// receives the result of a relaxation sweep by exchanging buffers with the
// level, a view is copied into.
type vec[T constraints.Float] struct {
	p   *[]T
	own bool
}

func view[T constraints.Float](x []T) vec[T] {
	return vec[T]{p: &x}
}

func owned[T constraints.Float](p *[]T) vec[T] {
	return vec[T]{p: p, own: true}
}

func (v vec[T]) get() []T {
	return *v.p
}

// commit stores the sweep result held in t into x.
func (l *Level[T, I]) commit(x vec[T]) {
	if x.own {
		*x.p, l.t = l.t, *x.p
		return
	}
	copy(*x.p, l.t)
}

func (l *Level[T, I]) checkVec(rhs, x []T) {
	n := l.Size()
	if len(rhs) != n || len(x) != n {
		panic("amg: vector length does not match level size")
	}
}

// Relax performs one damped Jacobi sweep on A*x = rhs,
//
//	x_i += ω (rhs_i - (A*x)_i) / A_ii,
//
// with ω = Damping. Every row is computed from x as it was before the sweep.
// rhs is not modified.
func (l *Level[T, I]) Relax(rhs, x []T) {
	l.checkVec(rhs, x)
	l.relax(rhs, view(x))
}

func (l *Level[T, I]) relax(rhs []T, x vec[T]) {
	xv := x.get()
	a := &l.a
	parallel.For(len(l.t), func(lo, hi int) {
		for i := I(lo); i < I(hi); i++ {
			temp := rhs[i] - a.RowDot(i, xv)
			l.t[i] = xv[i] + T(Damping)*(temp/l.dia[i])
		}
	})
	l.commit(x)
}

// Resid returns the Euclidean norm of rhs - A*x. It modifies neither rhs
// nor x and its result does not depend on the number of workers.
func (l *Level[T, I]) Resid(rhs, x []T) T {
	l.checkVec(rhs, x)
	a := &l.a
	norm := parallel.Sum(l.Size(), func(lo, hi int) T {
		var s T
		for i := I(lo); i < I(hi); i++ {
			temp := rhs[i] - a.RowDot(i, x)
			s += temp * temp
		}
		return s
	})
	return T(math.Sqrt(float64(norm)))
}

// defect stores rhs - A*x into t.
func (l *Level[T, I]) defect(rhs, x []T) {
	a := &l.a
	parallel.For(len(l.t), func(lo, hi int) {
		for i := I(lo); i < I(hi); i++ {
			l.t[i] = rhs[i] - a.RowDot(i, x)
		}
	})
}

// solve computes x = Ai*rhs.
func (l *Level[T, I]) solve(rhs, x []T) {
	l.ai.MulVec(x, rhs)
}
