/*
 * trisurface.go, part of gobem.
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
	"log"
	"math"

	v3 "github.com/rmera/gobem/v3"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

//TriangulatedSurface is a closed surface made of flat triangles. It is not modified
//after construction, so it can be shared among goroutines.
type TriangulatedSurface struct {
	vertices  []Vertex
	triangles []Triangle
	edges     []Edge
}

//NewTriangulatedSurface builds a surface from the vertices and the triangles given as
//triples of handles into vertices. Each triangle is oriented so its normal points in the
//same direction as the (average) normals of its vertices, and the edges are
//obtained from the triangles. The Euler characteristic of the result is checked, and a warning
//is logged if it isn't 2.
func NewTriangulatedSurface(vertices []Vertex, tris [][3]int) (*TriangulatedSurface, error) {
	if len(vertices) == 0 || len(tris) == 0 {
		return nil, Error{ErrNoPoints, "", &[]string{"NewTriangulatedSurface"}, true}
	}
	S := &TriangulatedSurface{vertices: vertices, triangles: make([]Triangle, 0, len(tris))}
	seen := make(map[edgeKey]bool, len(tris)*3/2)
	for _, t := range tris {
		tri, err := NewTriangle(vertices, t[0], t[1], t[2])
		if err != nil {
			return nil, errDecorate(err, "NewTriangulatedSurface")
		}
		tri.orient(vertices)
		S.triangles = append(S.triangles, tri)
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			key := makeEdgeKey(a, b)
			if seen[key] {
				continue
			}
			seen[key] = true
			e, err := newEdge(vertices, a, b)
			if err != nil {
				return nil, errDecorate(err, "NewTriangulatedSurface")
			}
			S.edges = append(S.edges, e)
		}
	}
	S.checkEuler()
	return S, nil
}

//newFromParts builds a surface with explicitly given triangles and edges. The triangles
//are taken in the given order, and not re-oriented.
func newFromParts(vertices []Vertex, tris [][3]int, edges [][2]int) (*TriangulatedSurface, error) {
	S := &TriangulatedSurface{vertices: vertices, triangles: make([]Triangle, 0, len(tris)), edges: make([]Edge, 0, len(edges))}
	for _, t := range tris {
		tri, err := NewTriangle(vertices, t[0], t[1], t[2])
		if err != nil {
			return nil, errDecorate(err, "newFromParts")
		}
		S.triangles = append(S.triangles, tri)
	}
	for _, e := range edges {
		ed, err := newEdge(vertices, e[0], e[1])
		if err != nil {
			return nil, errDecorate(err, "newFromParts")
		}
		S.edges = append(S.edges, ed)
	}
	S.checkEuler()
	return S, nil
}

//Euler returns V+F-E for the surface. It is 2 for a closed surface with no holes.
func (S *TriangulatedSurface) Euler() int {
	return len(S.vertices) + len(S.triangles) - len(S.edges)
}

func (S *TriangulatedSurface) checkEuler() {
	if e := S.Euler(); e != 2 {
		log.Printf("WARNING: Euler characteristic of the triangulated surface is %d, not 2 (V=%d F=%d E=%d). The surface may not be closed", e, len(S.vertices), len(S.triangles), len(S.edges))
	}
}

//Vertices returns the vertices of the surface. The slice must not be modified.
func (S *TriangulatedSurface) Vertices() []Vertex { return S.vertices }

//Triangles returns the triangles of the surface. The slice must not be modified.
func (S *TriangulatedSurface) Triangles() []Triangle { return S.triangles }

//Edges returns the edges of the surface. The slice must not be modified.
func (S *TriangulatedSurface) Edges() []Edge { return S.edges }

//NVertices returns the number of vertices
func (S *TriangulatedSurface) NVertices() int { return len(S.vertices) }

//NTriangles returns the number of triangles
func (S *TriangulatedSurface) NTriangles() int { return len(S.triangles) }

//NEdges returns the number of edges
func (S *TriangulatedSurface) NEdges() int { return len(S.edges) }

//Vertex returns the vertex with the handle i. It panics if i is out of range.
func (S *TriangulatedSurface) Vertex(i int) Vertex { return S.vertices[i] }

//Area returns the total area of the surface.
func (S *TriangulatedSurface) Area() float64 {
	var a float64
	for _, t := range S.triangles {
		a += t.area
	}
	return a
}

//Volume returns the volume enclosed by the surface, from the divergence theorem:
//V = 1/3 sum_t A_t (m_t . n_t), which is exact for flat triangles.
func (S *TriangulatedSurface) Volume() float64 {
	var v float64
	for _, t := range S.triangles {
		v += t.area * r3.Dot(t.midpoint, t.normal)
	}
	return v / 3
}

//Centroid returns the geometric center of the vertices.
func (S *TriangulatedSurface) Centroid() r3.Vec {
	return S.Positions().Centroid()
}

//Positions returns the positions of all the vertices, in order.
func (S *TriangulatedSurface) Positions() *v3.Matrix {
	ret := v3.Zeros(len(S.vertices))
	for i, v := range S.vertices {
		ret.SetVec(i, v.pos)
	}
	return ret
}

//Midpoints returns the midpoints of all the triangles, in order.
func (S *TriangulatedSurface) Midpoints() *v3.Matrix {
	ret := v3.Zeros(len(S.triangles))
	for i, t := range S.triangles {
		ret.SetVec(i, t.midpoint)
	}
	return ret
}

//DegenerateTriangles returns the number of triangles with zero area, which appear when
//two or more vertices are mapped onto the same point.
func (S *TriangulatedSurface) DegenerateTriangles() int {
	n := 0
	for _, t := range S.triangles {
		if t.area <= appzero {
			n++
		}
	}
	return n
}

//SolidAngle returns the solid angle subtended by the surface at p, added over the triangles
//with the formula of Van Oosterom and Strackee. For a closed, outward-oriented surface it
//is 4 pi for points inside and 0 for points outside.
func (S *TriangulatedSurface) SolidAngle(p r3.Vec) float64 {
	var omega float64
	for _, t := range S.triangles {
		a := r3.Sub(S.vertices[t.v[0]].pos, p)
		b := r3.Sub(S.vertices[t.v[1]].pos, p)
		c := r3.Sub(S.vertices[t.v[2]].pos, p)
		la, lb, lc := r3.Norm(a), r3.Norm(b), r3.Norm(c)
		num := r3.Dot(a, r3.Cross(b, c))
		den := la*lb*lc + r3.Dot(a, b)*lc + r3.Dot(a, c)*lb + r3.Dot(b, c)*la
		omega += 2 * math.Atan2(num, den)
	}
	return omega
}

//Contains returns true if p is enclosed by the surface.
func (S *TriangulatedSurface) Contains(p r3.Vec) bool {
	return math.Abs(S.SolidAngle(p)) > 2*math.Pi
}

//Outside returns the indexes of the points that are not enclosed by the surface.
func (S *TriangulatedSurface) Outside(points *v3.Matrix) []int {
	var ret []int
	for i := 0; i < points.NVecs(); i++ {
		if !S.Contains(points.Vec(i)) {
			ret = append(ret, i)
		}
	}
	return ret
}

//EdgeStats returns the mean and standard deviation of the edge lengths, which
//is a measure of the quality of the triangulation.
func (S *TriangulatedSurface) EdgeStats() (mean, std float64) {
	l := make([]float64, len(S.edges))
	for i, e := range S.edges {
		l[i] = e.length
	}
	return stat.MeanStdDev(l, nil)
}

//String returns a short summary of the surface.
func (S *TriangulatedSurface) String() string {
	mean, std := S.EdgeStats()
	return fmt.Sprintf("triangulated surface: %d vertices, %d triangles, %d edges, area %.4f nm^2, volume %.4f nm^3, edge length %.4f +/- %.4f nm",
		S.NVertices(), S.NTriangles(), S.NEdges(), S.Area(), S.Volume(), mean, std)
}
