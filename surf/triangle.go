/*
 * triangle.go, part of gobem.
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

package surf

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

//Triangle is a flat triangle of a surface. Its vertices are handles into the vertex
//slice of the surface. The midpoint, normal and area are computed when the
//triangle is built.
type Triangle struct {
	v        [3]int
	midpoint r3.Vec
	normal   r3.Vec
	area     float64
}

//NewTriangle builds the triangle with the vertices a, b and c of the vertices slice, in that order.
func NewTriangle(vertices []Vertex, a, b, c int) (Triangle, error) {
	for _, i := range [3]int{a, b, c} {
		if !validHandle(vertices, i) {
			return Triangle{}, Error{ErrBadHandle, "", &[]string{"NewTriangle"}, true}
		}
	}
	t := Triangle{v: [3]int{a, b, c}}
	t.compute(vertices)
	return t, nil
}

//compute sets the derived quantities of the triangle.
func (t *Triangle) compute(vertices []Vertex) {
	p1 := vertices[t.v[0]].pos
	p2 := vertices[t.v[1]].pos
	p3 := vertices[t.v[2]].pos
	t.midpoint = r3.Scale(1.0/3.0, r3.Add(r3.Add(p1, p2), p3))
	t.area = heronTriangleArea(p1, p2, p3)
	cross := r3.Cross(r3.Sub(p2, p1), r3.Sub(p3, p1))
	n := r3.Norm(cross)
	if n <= appzero {
		//degenerate triangle, we use the average of the vertex normals.
		mean := t.meanVertexNormal(vertices)
		if mn := r3.Norm(mean); mn > appzero {
			t.normal = r3.Scale(1/mn, mean)
		} else {
			t.normal = vertices[t.v[0]].normal
		}
		return
	}
	t.normal = r3.Scale(1/n, cross)
}

func (t *Triangle) meanVertexNormal(vertices []Vertex) r3.Vec {
	s := r3.Add(r3.Add(vertices[t.v[0]].normal, vertices[t.v[1]].normal), vertices[t.v[2]].normal)
	return r3.Scale(1.0/3.0, s)
}

//flip swaps the second and third vertices, which reverses the normal.
func (t *Triangle) flip(vertices []Vertex) {
	t.v[1], t.v[2] = t.v[2], t.v[1]
	t.compute(vertices)
}

//orient flips the triangle if its normal doesn't point in the same
//general direction as the normals of its vertices. It returns true if the triangle was flipped.
func (t *Triangle) orient(vertices []Vertex) bool {
	if r3.Dot(t.normal, t.meanVertexNormal(vertices)) < 0 {
		t.flip(vertices)
		return true
	}
	return false
}

//Vertices returns the handles of the 3 vertices of the triangle.
func (t Triangle) Vertices() [3]int { return t.v }

//Midpoint returns the centroid of the triangle.
func (t Triangle) Midpoint() r3.Vec { return t.midpoint }

//Normal returns the unit normal of the triangle.
func (t Triangle) Normal() r3.Vec { return t.normal }

//Area returns the area of the triangle.
func (t Triangle) Area() float64 { return t.area }

func heronTriangleArea(p1, p2, o r3.Vec) float64 {
	a := r3.Norm(r3.Sub(o, p1))
	b := r3.Norm(r3.Sub(p1, p2))
	c := r3.Norm(r3.Sub(p2, o))
	s := (a + b + c) / 2.0
	prod := s * (s - a) * (s - b) * (s - c)
	if prod <= 0 { //collinear points, or rounding errors
		return 0
	}
	return math.Sqrt(prod)
}
