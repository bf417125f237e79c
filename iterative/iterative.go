// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package iterative provides Krylov subspace methods that drive a multigrid
// hierarchy as their preconditioner.
package iterative

// Operation specifies the type of operation.
type Operation uint64

// Operations commanded by Method.Iterate.
const (
	NoOperation Operation = 0

	// Multiply A*x where x is stored in Context.Src and the result will be
	// stored in Context.Dst.
	MatVec Operation = 1 << (iota - 1)

	// Do the preconditioner solve
	//
	//	M z = r,
	//
	// where r is stored in Context.Src, and store the solution z in
	// Context.Dst.
	PSolve

	// Compute b - A*x where x is stored in Context.X and store the result
	// into Context.Residual.
	ComputeResidual

	// Check convergence using the residual norm in Context.ResidualNorm.
	// If convergence is detected, Context.Converged must be set to true
	// before calling Method.Iterate again.
	CheckResidualNorm

	// EndIteration indicates that Method has finished what it considers
	// to be one iteration. If Context.Converged is true, the iterative
	// process must be terminated, and Method.Init must be called before
	// calling Method.Iterate again.
	EndIteration
)

// Method is an iterative method that produces a sequence of vectors
// converging to the vector x satisfying a system of linear equations
//
//	A x = b,
//
// where A is non-singular dim×dim matrix, and x and b are vectors of
// dimension dim.
//
// Method uses a reverse-communication interface between the iterative
// algorithm and the caller. Method commands the caller to perform needed
// operations via Operation returned from Iterate. This keeps Method
// independent of the representation of A and of the preconditioner.
type Method interface {
	// Init initializes the method for solving a dim×dim linear system.
	Init(dim int)

	// Iterate retrieves data from Context, updates it, and returns the
	// next operation. The caller must perform the Operation using data in
	// Context, and depending on the state call Iterate again.
	Iterate(*Context) (Operation, error)
}

// Context mediates the communication between a Method and the caller. It
// must not be modified or accessed apart from the commanded Operations.
type Context struct {
	// X is the current approximate solution. On the first call to
	// Method.Iterate, X must contain the initial estimate.
	X []float64
	// Residual is the current residual b-A*x. On the first call to
	// Method.Iterate, Residual must contain the initial residual.
	Residual []float64
	// ResidualNorm is the norm of the current residual. Method must
	// update it when it commands CheckResidualNorm.
	ResidualNorm float64
	// Converged indicates to Method that ResidualNorm satisfies the
	// stopping criterion as a result of CheckResidualNorm.
	Converged bool

	// Src and Dst are the source and destination vectors for MatVec and
	// PSolve.
	Src, Dst []float64
}
