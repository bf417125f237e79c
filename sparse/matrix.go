// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparse provides the compressed-row matrices consumed by the
// multigrid levels.
package sparse

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/vladimir-ch/amg/internal/parallel"
)

// Matrix is a sparse matrix in compressed-row form. The entries of row i are
//
//	(Col[k], Val[k]) for Ptr[i] <= k < Ptr[i+1].
//
// A row holds at most one entry per column. Columns within a row need not be
// sorted.
//
// A Matrix is not modified by any function in this module after it has been
// constructed. The zero value is an empty matrix.
type Matrix[T constraints.Float, I constraints.Integer] struct {
	Rows, Cols I

	Ptr []I
	Col []I
	Val []T
}

// ErrLayout is returned by Validate for arrays that do not describe a
// compressed-row matrix.
var ErrLayout = errors.New("sparse: invalid compressed-row layout")

// New returns a rows×cols matrix that takes ownership of ptr, col and val.
// It panics if the arrays do not describe a valid compressed-row layout.
func New[T constraints.Float, I constraints.Integer](rows, cols I, ptr, col []I, val []T) *Matrix[T, I] {
	m := &Matrix[T, I]{
		Rows: rows,
		Cols: cols,
		Ptr:  ptr,
		Col:  col,
		Val:  val,
	}
	if err := m.Validate(); err != nil {
		panic(err.Error())
	}
	return m
}

// Validate checks that the fields of m describe a compressed-row matrix.
// The returned error wraps ErrLayout.
func (m *Matrix[T, I]) Validate() error {
	switch {
	case m.Rows < 0 || m.Cols < 0:
		return fmt.Errorf("%w: negative dimension", ErrLayout)
	case len(m.Ptr) != int(m.Rows)+1:
		return fmt.Errorf("%w: bad row pointer length", ErrLayout)
	case m.Ptr[0] != 0:
		return fmt.Errorf("%w: row pointer does not start at zero", ErrLayout)
	case int(m.Ptr[m.Rows]) != len(m.Col) || len(m.Col) != len(m.Val):
		return fmt.Errorf("%w: mismatched number of entries", ErrLayout)
	}
	for i := I(0); i < m.Rows; i++ {
		if m.Ptr[i+1] < m.Ptr[i] {
			return fmt.Errorf("%w: decreasing row pointer at row %d", ErrLayout, i)
		}
	}
	for k, c := range m.Col {
		if c < 0 || m.Cols <= c {
			return fmt.Errorf("%w: column index %d out of range at entry %d", ErrLayout, c, k)
		}
	}
	return nil
}

// Dims returns the dimensions of the matrix.
func (m *Matrix[T, I]) Dims() (r, c int) {
	return int(m.Rows), int(m.Cols)
}

// NNZ returns the number of stored entries.
func (m *Matrix[T, I]) NNZ() int {
	return len(m.Val)
}

// Empty reports whether m holds no row structure at all. A matrix left
// behind by Take is empty.
func (m *Matrix[T, I]) Empty() bool {
	return m == nil || len(m.Ptr) == 0
}

// Take moves the contents out of m and leaves m empty.
func (m *Matrix[T, I]) Take() Matrix[T, I] {
	v := *m
	*m = Matrix[T, I]{}
	return v
}

// Diagonal returns the entry in row i whose column equals i. The second
// result is false if row i stores no such entry.
func (m *Matrix[T, I]) Diagonal(i I) (T, bool) {
	for k := m.Ptr[i]; k < m.Ptr[i+1]; k++ {
		if m.Col[k] == i {
			return m.Val[k], true
		}
	}
	return 0, false
}

// RowDot returns the product of row i with x.
func (m *Matrix[T, I]) RowDot(i I, x []T) T {
	var s T
	for k, e := m.Ptr[i], m.Ptr[i+1]; k < e; k++ {
		s += m.Val[k] * x[m.Col[k]]
	}
	return s
}

// MulVec computes
//
//	dst = M * x.
//
// Rows are computed in parallel.
func (m *Matrix[T, I]) MulVec(dst, x []T) {
	m.checkMulVec(dst, x)
	parallel.For(int(m.Rows), func(lo, hi int) {
		for i := I(lo); i < I(hi); i++ {
			dst[i] = m.RowDot(i, x)
		}
	})
}

// MulVecAdd computes
//
//	dst += M * x.
//
// Rows are computed in parallel.
func (m *Matrix[T, I]) MulVecAdd(dst, x []T) {
	m.checkMulVec(dst, x)
	parallel.For(int(m.Rows), func(lo, hi int) {
		for i := I(lo); i < I(hi); i++ {
			dst[i] += m.RowDot(i, x)
		}
	})
}

func (m *Matrix[T, I]) checkMulVec(dst, x []T) {
	if int(m.Cols) != len(x) {
		panic("sparse: dimension mismatch")
	}
	if int(m.Rows) != len(dst) {
		panic("sparse: dimension mismatch")
	}
}

// Transpose returns the transpose of m as a new matrix with rows sorted by
// column.
func (m *Matrix[T, I]) Transpose() *Matrix[T, I] {
	ptr := make([]I, m.Cols+1)
	for _, c := range m.Col {
		ptr[c+1]++
	}
	for j := I(0); j < m.Cols; j++ {
		ptr[j+1] += ptr[j]
	}
	next := make([]I, m.Cols)
	copy(next, ptr[:m.Cols])
	col := make([]I, len(m.Col))
	val := make([]T, len(m.Val))
	for i := I(0); i < m.Rows; i++ {
		for k := m.Ptr[i]; k < m.Ptr[i+1]; k++ {
			c := m.Col[k]
			col[next[c]] = i
			val[next[c]] = m.Val[k]
			next[c]++
		}
	}
	return &Matrix[T, I]{
		Rows: m.Cols,
		Cols: m.Rows,
		Ptr:  ptr,
		Col:  col,
		Val:  val,
	}
}
