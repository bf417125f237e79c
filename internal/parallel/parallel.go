// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parallel provides the row-partitioned loops used by the multigrid
// kernels.
//
// An index range [0, n) is cut into chunks of consecutive indices. Chunks are
// handed out dynamically to a fixed number of workers, so rows with uneven
// work are balanced across workers. Every chunk is processed by exactly one
// worker, which makes writes to disjoint output slots race-free.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"

	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"
)

// Chunk is the default number of consecutive indices assigned to a worker
// at a time.
const Chunk = 1024

// WorkersEnv names the environment variable that overrides the default
// number of workers.
const WorkersEnv = "AMG_NUM_WORKERS"

var workers atomic.Int64

func init() {
	n := runtime.GOMAXPROCS(0)
	if s := os.Getenv(WorkersEnv); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			n = v
		}
	}
	workers.Store(int64(n))
}

// Workers returns the number of workers used by For and Sum.
func Workers() int {
	return int(workers.Load())
}

// SetWorkers sets the number of workers used by For and Sum and returns the
// previous value. n must be positive.
func SetWorkers(n int) int {
	if n <= 0 {
		panic("parallel: non-positive number of workers")
	}
	return int(workers.Swap(int64(n)))
}

// For calls body for disjoint subranges [lo, hi) that together cover [0, n).
// It returns when all calls have returned. If body panics, For panics with
// the same value on the calling goroutine.
func For(n int, body func(lo, hi int)) {
	ForChunk(n, Chunk, body)
}

// ForChunk is like For with an explicit chunk size. The subranges passed to
// body are always [k*chunk, min((k+1)*chunk, n)), independent of the number
// of workers.
func ForChunk(n, chunk int, body func(lo, hi int)) {
	if chunk <= 0 {
		panic("parallel: non-positive chunk size")
	}
	if n <= 0 {
		return
	}
	nchunks := (n + chunk - 1) / chunk
	w := min(Workers(), nchunks)
	if w == 1 {
		for lo := 0; lo < n; lo += chunk {
			body(lo, min(lo+chunk, n))
		}
		return
	}

	var next atomic.Int64
	g, ctx := errgroup.WithContext(context.Background())
	for range w {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &workerPanic{value: r}
				}
			}()
			for ctx.Err() == nil {
				c := int(next.Add(1) - 1)
				if c >= nchunks {
					return nil
				}
				lo := c * chunk
				body(lo, min(lo+chunk, n))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var p *workerPanic
		if errors.As(err, &p) {
			panic(p.value)
		}
		panic(err)
	}
}

// workerPanic carries a panic raised by body out of a worker goroutine, so
// that it is raised again on the goroutine that called For. The first panic
// stops the hand-out of further chunks.
type workerPanic struct {
	value any
}

func (p *workerPanic) Error() string {
	return fmt.Sprintf("parallel: worker panic: %v", p.value)
}

// Sum returns the sum of term over the chunks of [0, n). Partial sums are
// kept per chunk and added in chunk order, so the result does not depend on
// the number of workers or on scheduling.
func Sum[T constraints.Float](n int, term func(lo, hi int) T) T {
	return SumChunk(n, Chunk, term)
}

// SumChunk is like Sum with an explicit chunk size.
func SumChunk[T constraints.Float](n, chunk int, term func(lo, hi int) T) T {
	if chunk <= 0 {
		panic("parallel: non-positive chunk size")
	}
	if n <= 0 {
		return 0
	}
	partial := make([]T, (n+chunk-1)/chunk)
	ForChunk(n, chunk, func(lo, hi int) {
		partial[lo/chunk] = term(lo, hi)
	})
	var s T
	for _, v := range partial {
		s += v
	}
	return s
}
