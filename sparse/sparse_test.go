// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func randomTriplet(r, c int, density float64, rnd *rand.Rand) *Triplet[float64, int] {
	m := NewTriplet[float64, int](r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if rnd.Float64() < density {
				m.Append(i, j, rnd.NormFloat64())
			}
		}
	}
	return m
}

func TestTripletCSR(t *testing.T) {
	m := NewTriplet[float64, int32](3, 4)
	m.Append(2, 3, 1)
	m.Append(0, 2, 5)
	m.Append(0, 0, 2)
	m.Append(2, 3, 0.5)
	m.Append(1, 1, -1)

	a := m.CSR()
	require.Equal(t, []int32{0, 2, 3, 4}, a.Ptr)
	require.Equal(t, []int32{0, 2, 1, 3}, a.Col)
	require.Equal(t, []float64{2, 5, -1, 1.5}, a.Val)
	r, c := a.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 4, c)
	require.Equal(t, 4, a.NNZ())
}

func TestMulVecMatchesTriplet(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, tc := range []struct{ r, c int }{{1, 1}, {3, 5}, {40, 17}, {3000, 2000}} {
		tr := randomTriplet(tc.r, tc.c, 0.01+5/float64(tc.c), rnd)
		a := tr.CSR()
		x := make([]float64, tc.c)
		for i := range x {
			x[i] = rnd.NormFloat64()
		}
		want := make([]float64, tc.r)
		tr.MulVec(want, x)

		got := make([]float64, tc.r)
		a.MulVec(got, x)
		require.True(t, floats.EqualApprox(want, got, 1e-12), "r=%d c=%d", tc.r, tc.c)

		a.MulVecAdd(got, x)
		floats.Scale(2, want)
		require.True(t, floats.EqualApprox(want, got, 1e-12), "r=%d c=%d", tc.r, tc.c)
	}
}

func TestNewPanics(t *testing.T) {
	for name, f := range map[string]func(){
		"negative":   func() { New[float64, int](-1, 2, []int{0}, nil, nil) },
		"ptr length": func() { New[float64, int](2, 2, []int{0, 1}, []int{0}, []float64{1}) },
		"ptr start":  func() { New[float64, int](1, 2, []int{1, 1}, []int{0}, []float64{1}) },
		"entries":    func() { New[float64, int](1, 2, []int{0, 2}, []int{0}, []float64{1}) },
		"decreasing": func() { New[float64, int](2, 2, []int{0, 2, 1}, []int{0}, []float64{1}) },
		"column":     func() { New[float64, int](1, 2, []int{0, 1}, []int{2}, []float64{1}) },
	} {
		require.Panics(t, f, name)
	}
}

func TestValidate(t *testing.T) {
	m := &Matrix[float64, int]{Rows: 2, Cols: 2, Ptr: []int{0, 1, 2}, Col: []int{0, 1}, Val: []float64{1, 1}}
	require.NoError(t, m.Validate())

	m.Col[1] = 5
	require.ErrorIs(t, m.Validate(), ErrLayout)

	m.Col[1] = 1
	m.Ptr = m.Ptr[:2]
	require.ErrorIs(t, m.Validate(), ErrLayout)
}

func TestTakeLeavesSourceEmpty(t *testing.T) {
	m := NewTriplet[float32, uint16](2, 2)
	m.Append(0, 0, 1)
	m.Append(1, 1, 2)
	a := m.CSR()
	require.False(t, a.Empty())

	b := a.Take()
	require.True(t, a.Empty())
	require.Zero(t, a.NNZ())
	require.False(t, b.Empty())
	d, ok := b.Diagonal(1)
	require.True(t, ok)
	require.Equal(t, float32(2), d)

	var nilMatrix *Matrix[float32, uint16]
	require.True(t, nilMatrix.Empty())
}

func TestDiagonal(t *testing.T) {
	m := NewTriplet[float64, int](2, 2)
	m.Append(0, 1, 3)
	m.Append(1, 1, 4)
	a := m.CSR()
	_, ok := a.Diagonal(0)
	require.False(t, ok)
	d, ok := a.Diagonal(1)
	require.True(t, ok)
	require.Equal(t, 4.0, d)
}

func TestTranspose(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	a := randomTriplet(13, 7, 0.3, rnd).CSR()
	at := a.Transpose()
	r, c := at.Dims()
	require.Equal(t, 7, r)
	require.Equal(t, 13, c)
	require.True(t, mat.Equal(a.Dense().T(), at.Dense()))
}

func TestInverse(t *testing.T) {
	m := NewTriplet[float64, int](3, 3)
	for i := 0; i < 3; i++ {
		m.Append(i, i, 4)
		if i > 0 {
			m.Append(i, i-1, -1)
			m.Append(i-1, i, -1)
		}
	}
	a := m.CSR()
	ai, err := Inverse(a)
	require.NoError(t, err)
	require.Equal(t, 9, ai.NNZ())

	var prod mat.Dense
	prod.Mul(a.Dense(), ai.Dense())
	require.True(t, mat.EqualApprox(&prod, eye(3), 1e-14))
}

func TestInverseErrors(t *testing.T) {
	m := NewTriplet[float64, int](2, 2)
	m.Append(0, 0, 1)
	m.Append(0, 1, 2)
	m.Append(1, 0, 2)
	m.Append(1, 1, 4)
	_, err := Inverse(m.CSR())
	require.ErrorIs(t, err, ErrSingular)

	_, err = Inverse(NewTriplet[float64, int](2, 3).CSR())
	require.ErrorIs(t, err, ErrShape)

	_, err = Inverse(&Matrix[float64, int]{})
	require.ErrorIs(t, err, ErrShape)
}

func TestFromDense(t *testing.T) {
	d := mat.NewDense(2, 2, []float64{1, 0, math.Pi, 2})
	a := FromDense[float32, int64](d)
	require.Equal(t, []int64{0, 2, 4}, a.Ptr)
	require.Equal(t, []float32{1, 0, float32(math.Pi), 2}, a.Val)
}

func eye(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}
