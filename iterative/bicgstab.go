// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrRhoBreakdown is returned by BiCGSTAB when the residual becomes
	// orthogonal to the shadow residual.
	ErrRhoBreakdown = errors.New("iterative: BiCGSTAB rho breakdown")

	// ErrOmegaBreakdown is returned by BiCGSTAB when the stabilizing step
	// vanishes.
	ErrOmegaBreakdown = errors.New("iterative: BiCGSTAB omega breakdown")
)

// BiCGSTAB implements the right-preconditioned BiConjugate Gradient
// STABilized method for solving
//
//	Ax = b,
//
// where A is a general non-singular matrix. Neither A nor the preconditioner
// need to be symmetric, so it pairs with multigrid hierarchies whose
// restriction is not the transpose of the prolongation, whose smoothing is
// unbalanced, or whose operator is non-symmetric.
//
// BiCGSTAB needs MatVec and PSolve matrix operations. Each iteration
// commands two of each.
type BiCGSTAB struct {
	first  bool
	resume int

	rho, rhoPrev float64
	alpha, omega float64

	rt     []float64 // shadow residual
	p, v   []float64
	s, t   []float64
	ph, sh []float64 // preconditioned p and s
}

// Init implements the Method interface.
func (b *BiCGSTAB) Init(dim int) {
	if dim <= 0 {
		panic("iterative: dimension not positive")
	}
	b.rt = reuse(b.rt, dim)
	b.p = reuse(b.p, dim)
	b.v = reuse(b.v, dim)
	b.s = reuse(b.s, dim)
	b.t = reuse(b.t, dim)
	b.ph = reuse(b.ph, dim)
	b.sh = reuse(b.sh, dim)
	b.first = true
	b.resume = 1
}

// Iterate implements the Method interface.
func (b *BiCGSTAB) Iterate(ctx *Context) (Operation, error) {
	switch b.resume {
	case 1:
		if b.first {
			copy(b.rt, ctx.Residual)
		}
		b.rho = floats.Dot(b.rt, ctx.Residual) // ρ_i = r~ · r_{i-1}
		if math.Abs(b.rho) < dlamchE*dlamchE {
			b.resume = 0
			return NoOperation, ErrRhoBreakdown
		}
		if b.first {
			copy(b.p, ctx.Residual)
		} else {
			beta := (b.rho / b.rhoPrev) * (b.alpha / b.omega)
			floats.AddScaled(b.p, -b.omega, b.v) // p = p - ω v
			floats.Scale(beta, b.p)              // p = β p
			floats.Add(b.p, ctx.Residual)        // p = p + r_{i-1}
		}
		ctx.Src = b.p
		ctx.Dst = b.ph
		b.resume = 2
		return PSolve, nil
		// Solve M p^ = p
	case 2:
		ctx.Src = b.ph
		ctx.Dst = b.v
		b.resume = 3
		return MatVec, nil
		// Compute v = A p^
	case 3:
		// α = ρ_i / (r~ · v), s = r_{i-1} - α v
		b.alpha = b.rho / floats.Dot(b.rt, b.v)
		floats.AddScaledTo(b.s, ctx.Residual, -b.alpha, b.v)
		copy(ctx.Residual, b.s)
		ctx.ResidualNorm = floats.Norm(b.s, 2)
		ctx.Src = nil
		ctx.Dst = nil
		ctx.Converged = false
		b.resume = 4
		return CheckResidualNorm, nil
	case 4:
		if ctx.Converged {
			floats.AddScaled(ctx.X, b.alpha, b.ph) // x_i = x_{i-1} + α p^
			b.resume = 0
			return EndIteration, nil
		}
		ctx.Src = b.s
		ctx.Dst = b.sh
		b.resume = 5
		return PSolve, nil
		// Solve M s^ = s
	case 5:
		ctx.Src = b.sh
		ctx.Dst = b.t
		b.resume = 6
		return MatVec, nil
		// Compute t = A s^
	case 6:
		tt := floats.Dot(b.t, b.t)
		if tt == 0 {
			b.resume = 0
			return NoOperation, ErrOmegaBreakdown
		}
		b.omega = floats.Dot(b.t, b.s) / tt    // ω = (t · s) / (t · t)
		floats.AddScaled(ctx.X, b.alpha, b.ph) // x_i = x_{i-1} + α p^ + ω s^
		floats.AddScaled(ctx.X, b.omega, b.sh)
		floats.AddScaled(ctx.Residual, -b.omega, b.t) // r_i = s - ω t
		ctx.ResidualNorm = floats.Norm(ctx.Residual, 2)
		ctx.Src = nil
		ctx.Dst = nil
		ctx.Converged = false
		b.resume = 7
		return CheckResidualNorm, nil
	case 7:
		if ctx.Converged {
			b.resume = 0
			return EndIteration, nil
		}
		if math.Abs(b.omega) < dlamchE*dlamchE {
			b.resume = 0
			return NoOperation, ErrOmegaBreakdown
		}
		b.rhoPrev = b.rho
		b.first = false
		b.resume = 1
		return EndIteration, nil

	default:
		panic("iterative: BiCGSTAB.Init not called")
	}
}
