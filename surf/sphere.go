/*
 * sphere.go, part of gobem.
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
	"context"
	"fmt"
	"log"
	"math"
	"runtime"

	v3 "github.com/rmera/gobem/v3"
	"github.com/rmera/gobem/metrics"
	"github.com/rmera/gobem/pool"
	"gonum.org/v1/gonum/spatial/r3"
)

//Triangulator builds a closed triangulated surface from a set of points.
type Triangulator interface {
	Generate(points *v3.Matrix) (*TriangulatedSurface, error)
}

//cosine of the largest angle between a vertex direction and a point that
//can be mapped to it.
var cosMaxAngle = math.Cos(math.Pi / 4)

//SphereOptions controls a SphereTriangulator.
type SphereOptions struct {
	target    int
	spherical bool
	radius    float64
	center    r3.Vec
	hascenter bool
	workers   int
	reg       *metrics.Registry
}

//DefaultSphereOptions returns the default options: at least 960 triangles, the vertices
//are mapped onto the points, and as many workers as CPUs.
func DefaultSphereOptions() *SphereOptions {
	return &SphereOptions{target: 960, workers: runtime.NumCPU()}
}

//Target returns the minimum number of triangles in the surface and sets it, if
//a value is given.
func (o *SphereOptions) Target(t ...int) int {
	ret := o.target
	if len(t) > 0 {
		o.target = t[0]
	}
	return ret
}

//Spherical returns whether the surface is kept as a sphere (i.e. the vertices are not mapped onto the points)
//and sets it, if a value is given.
func (o *SphereOptions) Spherical(s ...bool) bool {
	ret := o.spherical
	if len(s) > 0 {
		o.spherical = s[0]
	}
	return ret
}

//Radius returns the radius of the sphere, and sets it if a value is given. A radius of 0 (the default)
//means the radius is obtained from the points. Positive radii are only used in spherical mode.
func (o *SphereOptions) Radius(r ...float64) float64 {
	ret := o.radius
	if len(r) > 0 && r[0] >= 0 {
		o.radius = r[0]
	}
	return ret
}

//Center returns the center of the sphere, and sets it if a value is given. If the center is
//never set, the centroid of the points is used.
func (o *SphereOptions) Center(c ...r3.Vec) r3.Vec {
	ret := o.center
	if len(c) > 0 {
		o.center = c[0]
		o.hascenter = true
	}
	return ret
}

//Workers returns the current number of gorutines to use in the mapping,
//and sets it, if a valid value is given
func (o *SphereOptions) Workers(w ...int) int {
	ret := o.workers
	if len(w) > 0 && w[0] > 0 {
		o.workers = w[0]
	}
	return ret
}

//Metrics sets the metrics registry. nil disables metrics.
func (o *SphereOptions) Metrics(r *metrics.Registry) {
	o.reg = r
}

//SphereTriangulator triangulates a set of points by starting from a regular
//dodecahedron around them. The dodecahedron is turned into a 60-triangle polyhedron, which
//is refined until the target number of triangles is reached, and finally
//each vertex is moved to the point closest to the ray from the center through it.
type SphereTriangulator struct {
	o *SphereOptions
}

//NewSphereTriangulator returns a triangulator with the options o (or the default ones,
//if o is nil). It returns an error if the target number of triangles is less than 60.
func NewSphereTriangulator(o *SphereOptions) (*SphereTriangulator, error) {
	if o == nil {
		o = DefaultSphereOptions()
	}
	if o.target < 60 {
		return nil, Error{fmt.Sprintf("%s (%d requested)", ErrTargetTooLow, o.target), "", &[]string{"NewSphereTriangulator"}, true}
	}
	return &SphereTriangulator{o: o}, nil
}

//Generate builds the triangulated surface for points.
func (S *SphereTriangulator) Generate(points *v3.Matrix) (ts *TriangulatedSurface, err error) {
	done := S.o.reg.Timer(metrics.StageTriangulate)
	defer func() { done(err) }()
	if points == nil || points.NVecs() == 0 {
		return nil, Error{ErrNoPoints, "", &[]string{"SphereTriangulator.Generate"}, true}
	}
	c := points.Centroid()
	if S.o.hascenter {
		c = S.o.center
	}
	radius, _ := points.MaxDistance(c)
	radius += RWater
	if S.o.spherical && S.o.radius > 0 {
		radius = S.o.radius
	}
	dirs, faces := Dodecahedron()
	dirs, tris := Make60(dirs, faces)
	for len(tris) < S.o.target {
		dirs, tris = Refine(dirs, tris)
	}
	pos := make([]r3.Vec, len(dirs))
	for i, u := range dirs {
		pos[i] = r3.Add(c, r3.Scale(radius, u))
	}
	if !S.o.spherical {
		unmapped, err := S.mapVertices(pos, dirs, points, c)
		if err != nil {
			return nil, errDecorate(err, "SphereTriangulator.Generate")
		}
		if unmapped > 0 {
			log.Printf("WARNING: %d of %d vertices could not be mapped onto the surface points, they keep their spherical positions", unmapped, len(pos))
			S.o.reg.AddUnmapped(unmapped)
		}
	}
	vertices := make([]Vertex, len(pos))
	for i, p := range pos {
		//The normal is always the radial direction, even for mapped vertices.
		normal := r3.Sub(p, c)
		if r3.Norm(normal) <= appzero {
			normal = dirs[i]
		}
		vertices[i], err = NewVertexWithNormal(p, normal)
		if err != nil {
			return nil, errDecorate(err, "SphereTriangulator.Generate")
		}
	}
	ts, err = NewTriangulatedSurface(vertices, tris)
	if err != nil {
		return nil, errDecorate(err, "SphereTriangulator.Generate")
	}
	if z := ts.DegenerateTriangles(); z > 0 && !S.o.spherical {
		log.Printf("WARNING: %d of %d triangles have zero area after mapping the vertices onto the points. The points may not be star-shaped around their centroid", z, ts.NTriangles())
	}
	S.o.reg.SetSurface(ts.NVertices(), ts.NTriangles(), ts.NEdges())
	S.o.reg.SetGeometry(ts.Area(), ts.Volume())
	log.Printf("Sphere triangulation: %s", ts)
	return ts, nil
}

//mapping is the result of mapping one range of vertices.
type mapping struct {
	pos   []r3.Vec
	found []bool
}

//mapVertices moves each vertex to the point with the smallest distance to the ray
//from c along dirs[i], among the points that are within 45 degrees of the ray. The vertices are
//split in contiguous ranges, mapped concurrently. It returns the number of vertices
//for which no point was found.
func (S *SphereTriangulator) mapVertices(pos, dirs []r3.Vec, points *v3.Matrix, c r3.Vec) (int, error) {
	var err error
	done := S.o.reg.Timer(metrics.StageMap)
	defer func() { done(err) }()
	centered := v3.Zeros(points.NVecs())
	centered.SubVec(points, c)
	rel := make([]r3.Vec, 0, centered.NVecs())
	for _, d := range centered.Vecs() {
		if r3.Norm(d) > appzero {
			rel = append(rel, d)
		}
	}
	ranges := pool.Ranges(len(dirs), S.o.workers)
	unmapped := 0
	work := func(ctx context.Context, k int) (mapping, error) {
		r := ranges[k]
		ret := mapping{pos: make([]r3.Vec, r.Len()), found: make([]bool, r.Len())}
		for i := r.Start; i < r.End; i++ {
			p, ok := closestToRay(dirs[i], rel)
			if ok {
				ret.pos[i-r.Start] = r3.Add(c, p)
				ret.found[i-r.Start] = true
			}
		}
		return ret, nil
	}
	merge := func(k int, m mapping) {
		r := ranges[k]
		for i, f := range m.found {
			if f {
				pos[r.Start+i] = m.pos[i]
			} else {
				unmapped++
			}
		}
	}
	err = pool.ScatterGather(context.Background(), S.o.workers, len(ranges), work, merge)
	return unmapped, err
}

//closestToRay returns, among the points within 45 degrees of the unit vector u, the one with
//the smallest perpendicular distance to the ray along u. The second returned value
//is false if no point is within 45 degrees.
func closestToRay(u r3.Vec, points []r3.Vec) (r3.Vec, bool) {
	best := math.Inf(1)
	var ret r3.Vec
	found := false
	for _, p := range points {
		n := r3.Norm(p)
		cos := r3.Dot(u, p) / n
		if cos < cosMaxAngle {
			continue
		}
		d := r3.Norm(r3.Cross(u, p)) //|p| sin(theta)
		if d < best {
			best = d
			ret = p
			found = true
		}
	}
	return ret, found
}

//Dodecahedron returns the 20 vertices (on the unit sphere) and the 12 pentagonal
//faces of a regular dodecahedron.
func Dodecahedron() ([]r3.Vec, [][5]int) {
	a := 2.0 / math.Sqrt(3)
	b := 4.0 / ((1 + math.Sqrt(5)) * math.Sqrt(3))
	d := b * math.Sqrt((3-math.Sqrt(5))/8)
	h := a / 2
	hb := b / 2
	v := []r3.Vec{
		{X: h - d, Y: 0, Z: h + hb},
		{X: h, Y: h, Z: h},
		{X: 0, Y: h + hb, Z: h - d},
		{X: -h, Y: h, Z: h},
		{X: -h + d, Y: 0, Z: h + hb},
		{X: 0, Y: h + hb, Z: -h + d},
		{X: h, Y: h, Z: -h},
		{X: h - d, Y: 0, Z: -h - hb},
		{X: -h + d, Y: 0, Z: -h - hb},
		{X: -h, Y: h, Z: -h},
		{X: h, Y: -h, Z: -h},
		{X: -h, Y: -h, Z: -h},
		{X: 0, Y: -h - hb, Z: -h + d},
		{X: h, Y: -h, Z: h},
		{X: 0, Y: -h - hb, Z: h - d},
		{X: -h, Y: -h, Z: h},
		{X: h + hb, Y: -h + d, Z: 0},
		{X: h + hb, Y: h - d, Z: 0},
		{X: -h - hb, Y: -h + d, Z: 0},
		{X: -h - hb, Y: h - d, Z: 0},
	}
	f := [][5]int{
		{0, 1, 2, 3, 4},
		{4, 3, 19, 18, 15},
		{4, 15, 14, 13, 0},
		{0, 13, 16, 17, 1},
		{7, 6, 5, 9, 8},
		{8, 9, 19, 18, 11},
		{8, 11, 12, 10, 7},
		{7, 10, 16, 17, 6},
		{17, 6, 5, 2, 1},
		{5, 9, 19, 3, 2},
		{16, 13, 14, 12, 10},
		{12, 11, 18, 15, 14},
	}
	return v, f
}

//Make60 splits each pentagon in faces in 5 triangles that share the centroid of the pentagon,
//projected on the unit sphere. dirs must be unit vectors. It returns the new set of unit vectors
//(the dodecahedron vertices followed by the pentagon centroids) and the triangles.
func Make60(dirs []r3.Vec, faces [][5]int) ([]r3.Vec, [][3]int) {
	nd := make([]r3.Vec, len(dirs), len(dirs)+len(faces))
	copy(nd, dirs)
	tris := make([][3]int, 0, 5*len(faces))
	for _, f := range faces {
		var cen r3.Vec
		for _, i := range f {
			cen = r3.Add(cen, dirs[i])
		}
		nd = append(nd, r3.Unit(cen))
		ci := len(nd) - 1
		for k := 0; k < 5; k++ {
			tris = append(tris, [3]int{ci, f[k], f[(k+1)%5]})
		}
	}
	return nd, tris
}

//Refine splits each triangle in 4, by adding a vertex at the midpoint of each edge,
//projected on the unit sphere. Each edge shared by two triangles gets only one new vertex.
func Refine(dirs []r3.Vec, tris [][3]int) ([]r3.Vec, [][3]int) {
	nd := make([]r3.Vec, len(dirs), len(dirs)+3*len(tris)/2)
	copy(nd, dirs)
	mid := make(map[edgeKey]int, 3*len(tris)/2)
	midpoint := func(a, b int) int {
		k := makeEdgeKey(a, b)
		if i, ok := mid[k]; ok {
			return i
		}
		nd = append(nd, r3.Unit(r3.Add(dirs[a], dirs[b])))
		mid[k] = len(nd) - 1
		return mid[k]
	}
	ret := make([][3]int, 0, 4*len(tris))
	for _, t := range tris {
		i0, i1, i2 := t[0], t[1], t[2]
		i01 := midpoint(i0, i1)
		i12 := midpoint(i1, i2)
		i20 := midpoint(i2, i0)
		ret = append(ret, [3]int{i0, i01, i20}, [3]int{i1, i12, i01}, [3]int{i2, i20, i12}, [3]int{i01, i12, i20})
	}
	return nd, ret
}
