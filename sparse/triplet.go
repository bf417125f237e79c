// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import (
	"cmp"
	"slices"

	"golang.org/x/exp/constraints"
)

type triplet[T constraints.Float, I constraints.Integer] struct {
	i, j I
	v    T
}

// Triplet accumulates matrix entries in coordinate form and converts them to
// a compressed-row Matrix.
type Triplet[T constraints.Float, I constraints.Integer] struct {
	r, c I
	data []triplet[T, I]
}

// NewTriplet returns an empty r×c coordinate matrix.
func NewTriplet[T constraints.Float, I constraints.Integer](r, c I) *Triplet[T, I] {
	if r < 0 || c < 0 {
		panic("sparse: negative dimension")
	}
	return &Triplet[T, I]{
		r: r,
		c: c,
	}
}

func (m *Triplet[T, I]) Dims() (r, c int) {
	return int(m.r), int(m.c)
}

// Append adds v to the entry (i, j).
func (m *Triplet[T, I]) Append(i, j I, v T) {
	if i < 0 || m.r <= i {
		panic("sparse: row index out of range")
	}
	if j < 0 || m.c <= j {
		panic("sparse: column index out of range")
	}
	m.data = append(m.data, triplet[T, I]{i, j, v})
}

// MulVec computes dst = M*x directly from the coordinate entries.
func (m *Triplet[T, I]) MulVec(dst, x []T) {
	if int(m.c) != len(x) {
		panic("sparse: dimension mismatch")
	}
	if int(m.r) != len(dst) {
		panic("sparse: dimension mismatch")
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, aij := range m.data {
		dst[aij.i] += aij.v * x[aij.j]
	}
}

// CSR returns the compressed-row form of m. Entries within a row are sorted
// by column and entries appended more than once for the same position are
// summed.
func (m *Triplet[T, I]) CSR() *Matrix[T, I] {
	data := slices.Clone(m.data)
	slices.SortStableFunc(data, func(a, b triplet[T, I]) int {
		if c := cmp.Compare(a.i, b.i); c != 0 {
			return c
		}
		return cmp.Compare(a.j, b.j)
	})

	ptr := make([]I, m.r+1)
	col := make([]I, 0, len(data))
	val := make([]T, 0, len(data))
	for k, aij := range data {
		if k > 0 && data[k-1].i == aij.i && data[k-1].j == aij.j {
			val[len(val)-1] += aij.v
			continue
		}
		col = append(col, aij.j)
		val = append(val, aij.v)
		ptr[aij.i+1]++
	}
	for i := I(0); i < m.r; i++ {
		ptr[i+1] += ptr[i]
	}
	return New(m.r, m.c, ptr, col, val)
}
