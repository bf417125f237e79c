// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amg

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/vladimir-ch/amg"

// instruments record the work done by the cycles of a hierarchy.
type instruments struct {
	cycles       metric.Int64Counter
	latency      metric.Float64Histogram
	directSolves metric.Int64Counter
}

var (
	defaultOnce sync.Once
	defaultInst *instruments
	defaultErr  error
)

// defaultInstruments returns the instruments of the global meter provider.
// Safe to call multiple times.
func defaultInstruments() (*instruments, error) {
	defaultOnce.Do(func() {
		defaultInst, defaultErr = newInstruments(otel.GetMeterProvider())
	})
	return defaultInst, defaultErr
}

func newInstruments(mp metric.MeterProvider) (*instruments, error) {
	meter := mp.Meter(meterName)
	var (
		inst instruments
		err  error
	)

	inst.cycles, err = meter.Int64Counter(
		"amg_cycles_total",
		metric.WithDescription("Number of multigrid cycles started on the finest level"),
	)
	if err != nil {
		return nil, err
	}

	inst.latency, err = meter.Float64Histogram(
		"amg_cycle_duration_seconds",
		metric.WithDescription("Duration of one multigrid cycle"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	inst.directSolves, err = meter.Int64Counter(
		"amg_direct_solves_total",
		metric.WithDescription("Number of coarsest-level direct solves"),
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// record adds one cycle over depth levels. A nil receiver records nothing.
func (m *instruments) record(depth int, st Stats, d time.Duration) {
	if m == nil {
		return
	}
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.Int("levels", depth))
	m.cycles.Add(ctx, 1, attrs)
	m.latency.Record(ctx, d.Seconds(), attrs)
	m.directSolves.Add(ctx, int64(st.DirectSolves), attrs)
}
