// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package amg implements the solve phase of an algebraic multigrid method.
//
// A hierarchy is an ordered sequence of levels, finest first. Every level but
// the last holds the system matrix A of the level together with the
// prolongation P and restriction R connecting it to the next coarser level.
// The last level holds its system matrix and the explicit inverse Ai. The
// package smooths with damped Jacobi relaxation and traverses the hierarchy
// with recursive V- or W-cycles. How the hierarchy is built is up to the
// caller.
//
// All kernels are generic over the floating-point element type T and the
// integer index type I of the compressed-row matrices in package sparse.
// Rows are processed in parallel; matrices are only read.
package amg

import "errors"

// Damping is the relaxation factor of the Jacobi smoother.
const Damping = 0.72

var (
	// ErrEmptyHierarchy is returned for a hierarchy without levels.
	ErrEmptyHierarchy = errors.New("amg: empty hierarchy")

	// ErrStructure is returned when the levels of a hierarchy do not fit
	// together.
	ErrStructure = errors.New("amg: inconsistent hierarchy")

	// ErrNotConverged is returned by Hierarchy.Solve when the iteration
	// limit is reached.
	ErrNotConverged = errors.New("amg: iteration limit reached")
)

// Params controls the shape of a multigrid cycle.
type Params struct {
	// NCycle is the number of coarse-grid corrections done on each level
	// before returning to the finer level. Zero means one, the V-cycle.
	// Values greater than one give W-cycles.
	NCycle int

	// NPre is the number of relaxation sweeps before restriction.
	NPre int

	// NPost is the number of relaxation sweeps after prolongation.
	NPost int
}

// DefaultParams returns a V-cycle with one pre- and one post-smoothing
// sweep.
func DefaultParams() Params {
	return Params{
		NCycle: 1,
		NPre:   1,
		NPost:  1,
	}
}

func (p Params) cycles() int {
	if p.NCycle == 0 {
		return 1
	}
	return p.NCycle
}

func (p Params) check() {
	switch {
	case p.NCycle < 0:
		panic("amg: negative NCycle")
	case p.NPre < 0:
		panic("amg: negative NPre")
	case p.NPost < 0:
		panic("amg: negative NPost")
	}
}
