/*
 * dots.go, part of gobem.
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

	chem "github.com/rmera/gobem"
	v3 "github.com/rmera/gobem/v3"
	"github.com/rmera/gobem/metrics"
	"gonum.org/v1/gonum/spatial/r3"
)

//Surface is a dotted surface: a set of points on the surface of a molecule, together
//with the area of that surface and the volume it encloses.
type Surface struct {
	Points *v3.Matrix
	Area   float64
	Volume float64
}

//NPoints returns the number of points in the surface.
func (s *Surface) NPoints() int {
	if s == nil || s.Points == nil {
		return 0
	}
	return s.Points.NVecs()
}

//DotOptions controls the generation of dotted surfaces.
type DotOptions struct {
	nod     int
	solvent float64
	reg     *metrics.Registry
}

//DefaultDotOptions returns the default options: 100 dots per atom and no solvent radius.
func DefaultDotOptions() *DotOptions {
	return &DotOptions{nod: 100}
}

//Dots returns the number of dots on a fully exposed atomic sphere
//and sets it to the given value, if any.
func (o *DotOptions) Dots(nod ...int) int {
	ret := o.nod
	if len(nod) > 0 {
		o.nod = nod[0]
	}
	return ret
}

//Solvent returns the radius of the solvent molecule (in nm) that is added to each atomic radius
//and sets it to the given value, if any.
func (o *DotOptions) Solvent(solvent ...float64) float64 {
	ret := o.solvent
	if len(solvent) > 0 {
		o.solvent = solvent[0]
	}
	return ret
}

//Metrics sets the metrics registry used to record the dot generation. nil disables it.
func (o *DotOptions) Metrics(r *metrics.Registry) {
	o.reg = r
}

//DottedSurfaceGenerator builds dotted surfaces in the manner of the numerical
//surface calculation (NSC) of Eisenhaber et al. (J. Comput. Chem 16, 273, 1995):
//each atomic sphere gets a quasi-uniform set of dots, and only the dots that are not inside
//other spheres are kept.
type DottedSurfaceGenerator struct {
	o *DotOptions
}

//NewDottedSurfaceGenerator returns a generator with the given options (or the
//default ones if o is nil). It returns an error if less than 10 dots per
//sphere are requested, or if the solvent radius is negative.
func NewDottedSurfaceGenerator(o *DotOptions) (*DottedSurfaceGenerator, error) {
	if o == nil {
		o = DefaultDotOptions()
	}
	if o.nod < 10 {
		return nil, Error{fmt.Sprintf("at least 10 dots per sphere are needed, %d requested", o.nod), "", &[]string{"NewDottedSurfaceGenerator"}, true}
	}
	if o.solvent < 0 {
		return nil, Error{fmt.Sprintf("negative solvent radius %f", o.solvent), "", &[]string{"NewDottedSurfaceGenerator"}, true}
	}
	return &DottedSurfaceGenerator{o: o}, nil
}

//FromMolecule generates the dotted surface of the molecule mol, using the van der Waals radii
//of its atoms.
func (G *DottedSurfaceGenerator) FromMolecule(mol *chem.Molecule) (*Surface, error) {
	s, err := G.Generate(mol.Coords, mol.Radii())
	if err != nil {
		return nil, errDecorate(err, "FromMolecule")
	}
	return s, nil
}

//Generate builds the dotted surface for spheres centered in coords, with the given radii.
func (G *DottedSurfaceGenerator) Generate(coords *v3.Matrix, radii []float64) (surface *Surface, err error) {
	done := G.o.reg.Timer(metrics.StageDots)
	defer func() { done(err) }()
	if coords == nil || coords.NVecs() == 0 {
		return nil, Error{ErrNoPoints, "", &[]string{"Generate"}, true}
	}
	n := coords.NVecs()
	if len(radii) != n {
		return nil, Error{fmt.Sprintf("%d radii for %d atoms", len(radii), n), "", &[]string{"Generate"}, true}
	}
	centers := coords.Vecs()
	r := make([]float64, n)
	for i, v := range radii {
		if v <= 0 {
			return nil, Error{fmt.Sprintf("non-positive radius %f for atom %d", v, i), "", &[]string{"Generate"}, true}
		}
		r[i] = v + G.o.solvent
	}
	unit := spherePoints(G.o.nod)
	c := coords.Centroid()
	neigh := neighbors(centers, r)
	dots := make([]r3.Vec, 0, n*G.o.nod/2)
	var area, volume float64
	for i := 0; i < n; i++ {
		dotarea := 4 * math.Pi * r[i] * r[i] / float64(G.o.nod)
		exposed := 0
		for _, u := range unit {
			p := r3.Add(centers[i], r3.Scale(r[i], u))
			if buried(p, neigh[i], centers, r) {
				continue
			}
			exposed++
			dots = append(dots, p)
			volume += r3.Dot(r3.Sub(p, c), u) * dotarea
		}
		area += float64(exposed) * dotarea
	}
	if len(dots) == 0 {
		return nil, Error{"no exposed dots", "", &[]string{"Generate"}, true}
	}
	volume /= 3
	log.Printf("Dotted surface: %d dots, area %.4f nm^2, volume %.4f nm^3", len(dots), area, volume)
	G.o.reg.SetGeometry(area, volume)
	return &Surface{Points: v3.FromVecs(dots), Area: area, Volume: volume}, nil
}

//spherePoints returns n quasi-uniformly distributed points on the unit sphere (golden section spiral).
func spherePoints(n int) []r3.Vec {
	ret := make([]r3.Vec, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	for k := 0; k < n; k++ {
		z := 1 - (2*float64(k)+1)/float64(n)
		rho := math.Sqrt(1 - z*z)
		phi := float64(k) * golden
		ret[k] = r3.Vec{X: rho * math.Cos(phi), Y: rho * math.Sin(phi), Z: z}
	}
	return ret
}

//neighbors returns, for each sphere, the indexes of the spheres that intersect it.
func neighbors(centers []r3.Vec, r []float64) [][]int {
	ret := make([][]int, len(centers))
	for i := range centers {
		for j := i + 1; j < len(centers); j++ {
			if r3.Norm(r3.Sub(centers[i], centers[j])) < r[i]+r[j] {
				ret[i] = append(ret[i], j)
				ret[j] = append(ret[j], i)
			}
		}
	}
	return ret
}

//buried returns true if p is strictly inside any of the spheres in neigh.
func buried(p r3.Vec, neigh []int, centers []r3.Vec, r []float64) bool {
	for _, j := range neigh {
		d := r3.Sub(p, centers[j])
		if r3.Dot(d, d) < r[j]*r[j] {
			return true
		}
	}
	return false
}
