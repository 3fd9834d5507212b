/*
 * edge.go, part of gobem.
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
	"gonum.org/v1/gonum/spatial/r3"
)

//Edge joins two vertices of a surface. The vertices are kept as
//handles into the vertex slice of the surface. An edge has no direction.
type Edge struct {
	v      [2]int
	length float64
}

func newEdge(vertices []Vertex, a, b int) (Edge, error) {
	if !validHandle(vertices, a) || !validHandle(vertices, b) {
		return Edge{}, Error{ErrBadHandle, "", &[]string{"newEdge"}, true}
	}
	if a > b {
		a, b = b, a
	}
	return Edge{v: [2]int{a, b}, length: r3.Norm(r3.Sub(vertices[a].pos, vertices[b].pos))}, nil
}

//Vertices returns the handles of the two vertices of the edge, the smaller first.
func (e Edge) Vertices() (int, int) { return e.v[0], e.v[1] }

//Length returns the length of the edge.
func (e Edge) Length() float64 { return e.length }

func validHandle(vertices []Vertex, i int) bool {
	return i >= 0 && i < len(vertices)
}

//edgeKey is a key for an unordered pair of vertex handles.
type edgeKey [2]int

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}
