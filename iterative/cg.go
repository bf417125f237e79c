// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

// CG implements the preconditioned Conjugate Gradient method for solving
//
//	Ax = b,
//
// where A is symmetric positive definite. The preconditioner must be
// symmetric positive definite as well; a multigrid cycle with R = Pᵀ and
// equal numbers of pre- and post-smoothing sweeps is. For other systems use
// BiCGSTAB.
//
// CG needs MatVec and PSolve matrix operations.
type CG struct {
	first        bool
	rho, rhoPrev float64
	resume       int

	r, z, p, ap []float64
}

// Init implements the Method interface.
func (cg *CG) Init(dim int) {
	if dim <= 0 {
		panic("iterative: dimension not positive")
	}
	cg.r = reuse(cg.r, dim)
	cg.z = reuse(cg.z, dim)
	cg.p = reuse(cg.p, dim)
	cg.ap = reuse(cg.ap, dim)
	cg.first = true
	cg.resume = 1
}

// Iterate implements the Method interface.
func (cg *CG) Iterate(ctx *Context) (Operation, error) {
	switch cg.resume {
	case 1:
		if cg.first {
			copy(cg.r, ctx.Residual)
		}
		ctx.Src = cg.r
		ctx.Dst = cg.z
		cg.resume = 2
		return PSolve, nil
		// Solve M z = r_{i-1}
	case 2:
		cg.rho = floats.Dot(cg.r, cg.z) // ρ_i = r_{i-1} · z
		if !cg.first {
			beta := cg.rho / cg.rhoPrev        // β = ρ_i / ρ_{i-1}
			floats.AddScaled(cg.z, beta, cg.p) // z = z + β p_{i-1}
		}
		copy(cg.p, cg.z) // p_i = z
		ctx.Src = cg.p
		ctx.Dst = cg.ap
		cg.resume = 3
		return MatVec, nil
		// Compute Ap_i
	case 3:
		pap := floats.Dot(cg.p, cg.ap)
		if pap <= 0 {
			cg.resume = 0
			return NoOperation, errors.New("iterative: matrix or preconditioner not positive definite")
		}
		alpha := cg.rho / pap                // α = ρ_i / (p_i · Ap_i)
		floats.AddScaled(cg.r, -alpha, cg.ap) // r_i = r_{i-1} - α Ap_i
		floats.AddScaled(ctx.X, alpha, cg.p)  // x_i = x_{i-1} + α p_i
		copy(ctx.Residual, cg.r)
		ctx.ResidualNorm = floats.Norm(cg.r, 2)
		ctx.Src = nil
		ctx.Dst = nil
		ctx.Converged = false
		cg.resume = 4
		return CheckResidualNorm, nil
	case 4:
		if ctx.Converged {
			cg.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		cg.rhoPrev = cg.rho
		cg.first = false
		cg.resume = 1
		return EndIteration, nil

	default:
		panic("iterative: CG.Init not called")
	}
}
