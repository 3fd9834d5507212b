/*
 * vertex.go, part of gobem.
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
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r3"
)

const appzero = 1e-12

//Every vertex ever built gets the next value of this counter as its id.
var vertexCounter atomic.Int64

//Vertex is a point of a triangulated surface, together with the outward
//normal of the surface at that point. Vertices are values and are not modified
//after construction: "moving" a vertex means building a new one.
type Vertex struct {
	id     int64
	pos    r3.Vec
	normal r3.Vec
}

//NewVertex returns a vertex at pos, with the normal taken as the direction of pos
//(i.e. the surface is assumed to be centered at the origin).
func NewVertex(pos r3.Vec) (Vertex, error) {
	v, err := NewVertexWithNormal(pos, pos)
	if err != nil {
		return v, errDecorate(err, "NewVertex")
	}
	return v, nil
}

//NewVertexWithNormal returns a vertex at pos with the normal given by the
//direction of normal, which is normalized.
func NewVertexWithNormal(pos, normal r3.Vec) (Vertex, error) {
	n := r3.Norm(normal)
	if n <= appzero {
		return Vertex{}, Error{ErrZeroNormal, "", &[]string{"NewVertexWithNormal"}, true}
	}
	return Vertex{id: vertexCounter.Add(1), pos: pos, normal: r3.Scale(1/n, normal)}, nil
}

//ID returns the unique identifier of the vertex.
func (v Vertex) ID() int64 { return v.id }

//Position returns the position of the vertex.
func (v Vertex) Position() r3.Vec { return v.pos }

//Normal returns the unit normal at the vertex.
func (v Vertex) Normal() r3.Vec { return v.normal }
