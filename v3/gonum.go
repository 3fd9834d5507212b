/*
 * gonum.go, part of gobem.
 *
 * Copyright 2024 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//gonum.go contains what is needed for handling the gonum/mat types.
//Within the package it is understood that a "vector" is a row vector, i.e. the
//cartesian coordinates of a point in 3D space.

package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const cols int = 3

//Matrix is a set of vectors in 3D space, stored as the rows of a gonum Dense.
type Matrix struct {
	*mat.Dense
}

//Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	if vecs <= 0 {
		panic(ErrNotEnoughElements)
	}
	return &Matrix{mat.NewDense(vecs, cols, nil)}
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
//data is used as the backing slice.
func NewMatrix(data []float64) (*Matrix, error) {
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d or empty", l, cols), &[]string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

//NVecs returns the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != cols {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//Len is the same as NVecs, it is here so a Matrix can be used where
//only a length is needed.
func (F *Matrix) Len() int {
	return F.NVecs()
}

//View returns a view of F starting from vector i and spanning r vectors.
//Changes in the view are reflected in F and vice-versa.
func (F *Matrix) View(i, r int) *Matrix {
	ret := F.Dense.Slice(i, i+r, 0, cols).(*mat.Dense)
	return &Matrix{ret}
}

//Stack puts A stacked over B in F. F must have enough vectors.
func (F *Matrix) Stack(A, B *Matrix) {
	ar := A.NVecs()
	br := B.NVecs()
	if F.NVecs() < ar+br {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		F.SetVec(i, A.Vec(i))
	}
	for i := ar; i < ar+br; i++ {
		F.SetVec(i, B.Vec(i-ar))
	}
}

//String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r := F.NVecs()
	s := "\n["
	for i := 0; i < r; i++ {
		v := F.Vec(i)
		s += fmt.Sprintf(" %9.4f %9.4f %9.4f", v.X, v.Y, v.Z)
		if i < r-1 {
			s += "\n"
		}
	}
	return s + " ]"
}

//Errors

type Error struct {
	message  string
	deco     *[]string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if err.deco == nil {
		return nil
	}
	if dec != "" {
		*err.deco = append(*err.deco, dec)
	}
	return *err.deco
}

//Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix      = PanicMsg("gobem/v3: A Matrix should have 3 columns")
	ErrNotEnoughElements = PanicMsg("gobem/v3: not enough elements in Matrix")
	ErrShape             = PanicMsg("gobem/v3: Dimension mismatch")
)
