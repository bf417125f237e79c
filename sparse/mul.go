// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import "golang.org/x/exp/constraints"

// Mul returns the product a*b. Entries that cancel to zero are kept.
func Mul[T constraints.Float, I constraints.Integer](a, b *Matrix[T, I]) *Matrix[T, I] {
	if a.Cols != b.Rows {
		panic("sparse: dimension mismatch")
	}
	c := NewTriplet[T](a.Rows, b.Cols)
	for i := I(0); i < a.Rows; i++ {
		for ka := a.Ptr[i]; ka < a.Ptr[i+1]; ka++ {
			k, v := a.Col[ka], a.Val[ka]
			for kb := b.Ptr[k]; kb < b.Ptr[k+1]; kb++ {
				c.Append(i, b.Col[kb], v*b.Val[kb])
			}
		}
	}
	return c.CSR()
}
