/*
 * gocoords.go, part of gobem.
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

package v3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

//FromVecs builds a Matrix with one vector per element of vecs.
func FromVecs(vecs []r3.Vec) *Matrix {
	F := Zeros(len(vecs))
	for i, v := range vecs {
		F.SetVec(i, v)
	}
	return F
}

//Vec returns the ith vector of F as a r3.Vec (a copy).
func (F *Matrix) Vec(i int) r3.Vec {
	return r3.Vec{X: F.At(i, 0), Y: F.At(i, 1), Z: F.At(i, 2)}
}

//SetVec sets the ith vector of F to v.
func (F *Matrix) SetVec(i int, v r3.Vec) {
	F.Set(i, 0, v.X)
	F.Set(i, 1, v.Y)
	F.Set(i, 2, v.Z)
}

//Vecs returns all the vectors in F as a slice of r3.Vec
func (F *Matrix) Vecs() []r3.Vec {
	ret := make([]r3.Vec, F.NVecs())
	for i := range ret {
		ret[i] = F.Vec(i)
	}
	return ret
}

//AddVec adds the vector vec to each vector of the matrix A, putting
//the result on the receiver.
func (F *Matrix) AddVec(A *Matrix, vec r3.Vec) {
	if F.NVecs() != A.NVecs() {
		panic(ErrShape)
	}
	for i := 0; i < A.NVecs(); i++ {
		F.SetVec(i, r3.Add(A.Vec(i), vec))
	}
}

//SubVec subtracts the vector vec to each vector of the matrix A, putting
//the result on the receiver.
func (F *Matrix) SubVec(A *Matrix, vec r3.Vec) {
	F.AddVec(A, r3.Scale(-1, vec))
}

//Centroid returns the geometric center of the vectors in F.
func (F *Matrix) Centroid() r3.Vec {
	var c r3.Vec
	n := F.NVecs()
	for i := 0; i < n; i++ {
		c = r3.Add(c, F.Vec(i))
	}
	return r3.Scale(1/float64(n), c)
}

//MaxDistance returns the largest distance between the point ref and
//any vector in F, and the index of that vector.
func (F *Matrix) MaxDistance(ref r3.Vec) (float64, int) {
	maxd := -1.0
	index := -1
	for i := 0; i < F.NVecs(); i++ {
		d := r3.Norm(r3.Sub(F.Vec(i), ref))
		if d > maxd {
			maxd = d
			index = i
		}
	}
	return maxd, index
}

//Distance returns the euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}
