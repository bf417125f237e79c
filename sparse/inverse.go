// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShape is returned when a square, non-empty matrix is required.
	ErrShape = errors.New("sparse: matrix is not square or is empty")

	// ErrSingular is returned when a matrix cannot be inverted.
	ErrSingular = errors.New("sparse: singular matrix")
)

// Dense returns m as a dense gonum matrix. It panics if m has a zero
// dimension.
func (m *Matrix[T, I]) Dense() *mat.Dense {
	r, c := m.Dims()
	d := mat.NewDense(r, c, nil)
	for i := I(0); i < m.Rows; i++ {
		for k := m.Ptr[i]; k < m.Ptr[i+1]; k++ {
			j := int(m.Col[k])
			d.Set(int(i), j, d.At(int(i), j)+float64(m.Val[k]))
		}
	}
	return d
}

// FromDense returns a compressed-row copy of d that stores every entry,
// including zeros.
func FromDense[T constraints.Float, I constraints.Integer](d mat.Matrix) *Matrix[T, I] {
	r, c := d.Dims()
	ptr := make([]I, r+1)
	col := make([]I, 0, r*c)
	val := make([]T, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			col = append(col, I(j))
			val = append(val, T(d.At(i, j)))
		}
		ptr[i+1] = I(len(col))
	}
	return New(I(r), I(c), ptr, col, val)
}

// Inverse returns the inverse of the square matrix a stored densely in
// compressed-row form. It is meant for the small matrix of the coarsest
// multigrid level.
func Inverse[T constraints.Float, I constraints.Integer](a *Matrix[T, I]) (*Matrix[T, I], error) {
	if a.Empty() || a.Rows == 0 || a.Rows != a.Cols {
		return nil, ErrShape
	}
	var inv mat.Dense
	if err := inv.Inverse(a.Dense()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return FromDense[T, I](&inv), nil
}
