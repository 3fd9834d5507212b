/*
 * green.go, part of gobem.
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

package bem

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

//green holds the free-space Green function F=1/(4 pi R) and the screened
//one P=exp(-kappa R)/(4 pi R), with their normal derivatives, for a collocation point r0 with the normal n0
//and a surface point s with the normal n. d=r0-s, R=|d|. Derivatives with respect to n are
//taken on s, and those with respect to n0 on r0.
type green struct {
	F, P         float64
	DFdn, DPdn   float64
	DFdn0, DPdn0 float64
	D2Fdn0dn     float64
	D2Pdn0dn     float64
	R            float64
}

//newGreen computes all the Green function terms. kappa can be 0, in which case P==F.
func newGreen(r0, n0, s, n r3.Vec, kappa float64) green {
	var g green
	d := r3.Sub(r0, s)
	R := r3.Norm(d)
	g.R = R
	dn := r3.Dot(d, n)
	dn0 := r3.Dot(d, n0)
	nn := r3.Dot(n, n0)
	c := 4 * math.Pi * R * R * R
	e := math.Exp(-kappa * R)
	kR := kappa * R
	g.F = 1 / (4 * math.Pi * R)
	g.P = e * g.F
	g.DFdn = dn / c
	g.DPdn = e * (1 + kR) * dn / c
	g.DFdn0 = -dn0 / c
	g.DPdn0 = -e * (1 + kR) * dn0 / c
	g.D2Fdn0dn = (nn - 3*dn0*dn/(R*R)) / c
	g.D2Pdn0dn = e * ((1+kR)*nn - (3+3*kR+kR*kR)*dn0*dn/(R*R)) / c
	return g
}

//dFdn returns only the normal derivative of F, d.n/(4 pi R^3) with d=r-s, for
//the unscreened case.
func dFdn(r, s, n r3.Vec) (float64, float64) {
	d := r3.Sub(r, s)
	R := r3.Norm(d)
	return r3.Dot(d, n) / (4 * math.Pi * R * R * R), R
}

//selfPminusF is the integral of P-F over a disc of radius a centered on the collocation point.
func selfPminusF(a, kappa float64) float64 {
	return 0.5 * ((1-math.Exp(-kappa*a))/kappa - a)
}

//selfD2FminusD2P is the integral of d2F/dn0dn-d2P/dn0dn over a flat disc of radius a
//centered on the collocation point.
func selfD2FminusD2P(a, kappa float64) float64 {
	return 0.5 * ((math.Exp(-kappa*a)-1)/a + kappa)
}

//discRadius is the radius of the disc with the area A.
func discRadius(A float64) float64 {
	return math.Sqrt(A / math.Pi)
}
