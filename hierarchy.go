// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amg

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/exp/constraints"

	"github.com/vladimir-ch/amg/internal/parallel"
)

// Option configures a Hierarchy.
type Option func(*options)

type options struct {
	params        Params
	logger        *slog.Logger
	meterProvider metric.MeterProvider
}

// WithParams sets the cycle parameters. The default is DefaultParams().
func WithParams(p Params) Option {
	p.check()
	return func(o *options) {
		o.params = p
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMeterProvider sets the provider of the cycle metrics. The default is
// the global provider of go.opentelemetry.io/otel.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// Hierarchy is a validated sequence of levels, finest first, together with
// the cycle parameters.
type Hierarchy[T constraints.Float, I constraints.Integer] struct {
	levels  []*Level[T, I]
	params  Params
	logger  *slog.Logger
	metrics *instruments
}

// NewHierarchy checks that levels form a multigrid hierarchy and returns it.
// The returned error wraps ErrEmptyHierarchy or ErrStructure, or reports
// that the instruments of a provider set by WithMeterProvider could not be
// created.
func NewHierarchy[T constraints.Float, I constraints.Integer](levels []*Level[T, I], opts ...Option) (*Hierarchy[T, I], error) {
	o := options{
		params: DefaultParams(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if len(levels) == 0 {
		return nil, ErrEmptyHierarchy
	}
	for k, l := range levels {
		if l == nil {
			return nil, fmt.Errorf("%w: level %d is nil", ErrStructure, k)
		}
	}
	last := len(levels) - 1
	for k, l := range levels {
		switch {
		case k < last && l.Coarsest():
			return nil, fmt.Errorf("%w: level %d of %d is a coarsest level", ErrStructure, k, len(levels))
		case k == last && !l.Coarsest():
			return nil, fmt.Errorf("%w: last level %d has no inverse", ErrStructure, k)
		case k > 0 && (len(l.u) != l.Size() || len(l.f) != l.Size()):
			return nil, fmt.Errorf("%w: level %d has no scratch vectors", ErrStructure, k)
		}
		if k < last {
			nc := I(levels[k+1].Size())
			if l.p.Cols != nc || l.r.Rows != nc {
				return nil, fmt.Errorf("%w: transfer operators of level %d do not match size %d of level %d",
					ErrStructure, k, nc, k+1)
			}
		}
	}

	h := &Hierarchy[T, I]{
		levels: levels,
		params: o.params,
		logger: o.logger,
	}
	if o.meterProvider != nil {
		inst, err := newInstruments(o.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("amg: metrics: %w", err)
		}
		h.metrics = inst
	} else if inst, err := defaultInstruments(); err != nil {
		h.logger.Warn("amg: metrics disabled", slog.Any("error", err))
	} else {
		h.metrics = inst
	}
	if h.logger.Enabled(context.Background(), slog.LevelDebug) {
		for k, l := range levels {
			h.logger.Debug("amg: level",
				slog.Int("depth", k),
				slog.Int("rows", l.Size()),
				slog.Int("nnz", l.a.NNZ()),
				slog.Bool("coarsest", l.Coarsest()))
		}
	}
	return h, nil
}

// Levels returns the levels of h, finest first. They must not be modified.
func (h *Hierarchy[T, I]) Levels() []*Level[T, I] {
	return h.levels
}

// Depth returns the number of levels.
func (h *Hierarchy[T, I]) Depth() int {
	return len(h.levels)
}

// Size returns the number of unknowns on the finest level.
func (h *Hierarchy[T, I]) Size() int {
	return h.levels[0].Size()
}

// Params returns the cycle parameters.
func (h *Hierarchy[T, I]) Params() Params {
	return h.params
}

// Cycle performs one multigrid cycle on the finest level. See the Cycle
// function.
func (h *Hierarchy[T, I]) Cycle(rhs, x []T) Stats {
	start := time.Now()
	st := Cycle(h.levels, h.params, rhs, x)
	h.metrics.record(len(h.levels), st, time.Since(start))
	return st
}

// Resid returns the norm of rhs - A*x on the finest level.
func (h *Hierarchy[T, I]) Resid(rhs, x []T) T {
	return h.levels[0].Resid(rhs, x)
}

// Apply approximates the solution of A*dst = rhs by one cycle started from
// zero. It is the preconditioner form of the hierarchy.
func (h *Hierarchy[T, I]) Apply(dst, rhs []T) {
	clear(dst)
	h.Cycle(rhs, dst)
}

// Result holds the outcome of Hierarchy.Solve.
type Result[T constraints.Float] struct {
	// Iterations is the number of cycles performed.
	Iterations int
	// Residual is the final norm of rhs - A*x.
	Residual T
	// Runtime is the duration of the solve.
	Runtime time.Duration
	// Stats accumulates the work of all cycles.
	Stats Stats
}

// Solve repeats cycles on A*x = rhs until
//
//	|rhs - A*x| < tol * |rhs|
//
// or maxIter cycles have been done. x holds the initial guess. Zero tol means
// 1e-8 and zero maxIter means 100. When the limit is reached, the returned
// error is ErrNotConverged and the result describes the last iterate. A NaN
// residual never satisfies the test.
func (h *Hierarchy[T, I]) Solve(rhs, x []T, tol T, maxIter int) (Result[T], error) {
	start := time.Now()
	if tol == 0 {
		tol = 1e-8
	}
	if maxIter == 0 {
		maxIter = 100
	}
	if !(0 < tol && tol < 1) {
		panic("amg: invalid tolerance")
	}
	if maxIter < 0 {
		panic("amg: negative iteration limit")
	}

	bnorm := norm(rhs)
	if bnorm == 0 {
		bnorm = 1
	}

	var res Result[T]
	res.Residual = h.Resid(rhs, x)
	var err error
	for !(res.Residual/bnorm < tol) {
		if res.Iterations == maxIter {
			err = ErrNotConverged
			break
		}
		res.Stats.add(h.Cycle(rhs, x))
		res.Iterations++
		res.Residual = h.Resid(rhs, x)
		h.logger.Debug("amg: cycle",
			slog.Int("iteration", res.Iterations),
			slog.Float64("residual", float64(res.Residual)))
	}
	res.Runtime = time.Since(start)
	return res, err
}

func norm[T constraints.Float](v []T) T {
	s := parallel.Sum(len(v), func(lo, hi int) T {
		var acc T
		for _, x := range v[lo:hi] {
			acc += x * x
		}
		return acc
	})
	return T(math.Sqrt(float64(s)))
}
