/*
 * tetra.go, part of gobem.
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
	"fmt"

	v3 "github.com/rmera/gobem/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//TetrahedronTriangulator builds the surface of a tetrahedron from exactly 4 points.
//It is mostly useful for testing.
type TetrahedronTriangulator struct{}

//Generate returns the 4-triangle surface whose vertices are points.
func (T TetrahedronTriangulator) Generate(points *v3.Matrix) (*TriangulatedSurface, error) {
	if points == nil || points.NVecs() != 4 {
		n := 0
		if points != nil {
			n = points.NVecs()
		}
		return nil, Error{fmt.Sprintf("%s, %d given", ErrNotFourPoints, n), "", &[]string{"TetrahedronTriangulator.Generate"}, true}
	}
	c := points.Centroid()
	vertices := make([]Vertex, 4)
	var err error
	for i := range vertices {
		p := points.Vec(i)
		vertices[i], err = NewVertexWithNormal(p, r3.Sub(p, c))
		if err != nil {
			return nil, errDecorate(err, "TetrahedronTriangulator.Generate")
		}
	}
	tris := [][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
	ts, err := NewTriangulatedSurface(vertices, tris)
	if err != nil {
		return nil, errDecorate(err, "TetrahedronTriangulator.Generate")
	}
	return ts, nil
}
