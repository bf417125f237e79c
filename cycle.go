// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amg

import "golang.org/x/exp/constraints"

// Stats counts the work done by a cycle.
type Stats struct {
	// Visits[k] is the number of times the cycle was entered on level k.
	// The entry of the coarsest level equals the number of direct solves.
	Visits []int

	Relaxations   int
	Restrictions  int
	Prolongations int
	DirectSolves  int
}

func (s *Stats) visit(k int) {
	for len(s.Visits) <= k {
		s.Visits = append(s.Visits, 0)
	}
	s.Visits[k]++
}

func (s *Stats) add(o Stats) {
	for k, v := range o.Visits {
		if v > 0 {
			for len(s.Visits) <= k {
				s.Visits = append(s.Visits, 0)
			}
			s.Visits[k] += v
		}
	}
	s.Relaxations += o.Relaxations
	s.Restrictions += o.Restrictions
	s.Prolongations += o.Prolongations
	s.DirectSolves += o.DirectSolves
}

// Cycle performs one multigrid cycle on A*x = rhs, where A is the system
// matrix of levels[0]. x holds the initial guess on entry and is updated in
// place. Coarser levels are cycled recursively and the last level is solved
// directly.
//
// Cycle panics if levels is empty, if the vectors do not match the size of
// the finest level, if rhs and x share storage, or if the levels do not form
// a hierarchy.
func Cycle[T constraints.Float, I constraints.Integer](levels []*Level[T, I], prm Params, rhs, x []T) Stats {
	if len(levels) == 0 {
		panic("amg: empty hierarchy")
	}
	prm.check()
	levels[0].checkVec(rhs, x)
	if len(x) > 0 && &rhs[0] == &x[0] {
		panic("amg: rhs and x share storage")
	}
	var st Stats
	cycle(levels, 0, prm, rhs, view(x), &st)
	return st
}

// cycle runs on levels[k:]. The recursion descends by one level per call and
// stops at the last level.
func cycle[T constraints.Float, I constraints.Integer](levels []*Level[T, I], k int, prm Params, rhs []T, x vec[T], st *Stats) {
	lvl := levels[k]
	st.visit(k)

	if k == len(levels)-1 {
		if !lvl.Coarsest() {
			panic("amg: last level has no inverse")
		}
		lvl.solve(rhs, x.get())
		st.DirectSolves++
		return
	}

	if lvl.Coarsest() {
		panic("amg: coarsest level is not last")
	}
	nxt := levels[k+1]
	if nxt.u == nil || nxt.f == nil {
		panic("amg: coarse level has no scratch vectors")
	}

	for range prm.cycles() {
		for range prm.NPre {
			lvl.relax(rhs, x)
			st.Relaxations++
		}

		lvl.defect(rhs, x.get())
		lvl.r.MulVec(nxt.f, lvl.t)
		st.Restrictions++

		clear(nxt.u)
		cycle(levels, k+1, prm, nxt.f, owned(&nxt.u), st)

		lvl.p.MulVecAdd(x.get(), nxt.u)
		st.Prolongations++

		for range prm.NPost {
			lvl.relax(rhs, x)
			st.Relaxations++
		}
	}
}
