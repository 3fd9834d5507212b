/*
 * flattriangles.go, part of gobem.
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
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	chem "github.com/rmera/gobem"
	v3 "github.com/rmera/gobem/v3"
	"github.com/rmera/gobem/metrics"
	"github.com/rmera/gobem/pool"
	"github.com/rmera/gobem/surf"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const appzero = 1e-12

//FlatTrianglesBEM solves the boundary element equations on a surface made of flat
//triangles, with the midpoint of each triangle as collocation point.
//
//Without ions, the unknown is one value per triangle (the surface potential, scaled). With ions,
//the unknowns are the surface potential and its normal derivative on the solvent side, so
//the system has twice the size. The kernel matrix is built and factorized once by Kernels, and the factorization is
//reused for any number of charge sets. A FlatTrianglesBEM must not be used from
//several goroutines while Kernels runs.
type FlatTrianglesBEM struct {
	o     *Options
	eps   float64 //epsO/epsI
	kappa float64
	n     int //number of triangles
	qr    *mat.QR
	cond  float64
}

//NewFlatTrianglesBEM returns a solver with the options o (or the default ones if o is nil).
//It returns an error if the dielectric constants or the temperature are not positive,
//or the ionic strength is negative.
func NewFlatTrianglesBEM(o *Options) (*FlatTrianglesBEM, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if err := o.check(); err != nil {
		return nil, errDecorate(err, "NewFlatTrianglesBEM")
	}
	kappa, err := DebyeKappa(o.ionic, o.epsO, o.temp)
	if err != nil {
		return nil, errDecorate(err, "NewFlatTrianglesBEM")
	}
	return &FlatTrianglesBEM{o: o, eps: o.epsO / o.epsI, kappa: kappa}, nil
}

//Kappa returns the inverse Debye length (nm^-1) used by the solver.
func (B *FlatTrianglesBEM) Kappa() float64 { return B.kappa }

//Ionic returns true if the solvent contains ions.
func (B *FlatTrianglesBEM) Ionic() bool { return B.kappa > 0 }

//Size returns the size of the linear system, 0 if the kernels have not been computed.
func (B *FlatTrianglesBEM) Size() int {
	if B.qr == nil {
		return 0
	}
	if B.Ionic() {
		return 2 * B.n
	}
	return B.n
}

//Cond returns the condition number of the factorized kernel matrix.
func (B *FlatTrianglesBEM) Cond() float64 { return B.cond }

//Kernels builds the kernel matrix for the surface ts and factorizes it. Any previous
//factorization is discarded.
func (B *FlatTrianglesBEM) Kernels(ctx context.Context, ts *surf.TriangulatedSurface) (err error) {
	done := B.o.reg.Timer(metrics.StageKernels)
	defer func() { done(err) }()
	if ts == nil || ts.NTriangles() == 0 {
		return Error{"empty surface", &[]string{"Kernels"}, true}
	}
	B.qr = nil
	tris := ts.Triangles()
	var S *mat.Dense
	if B.Ionic() {
		S, err = B.ionicKernels(ctx, tris)
	} else {
		S, err = B.dielectricKernels(ctx, tris)
	}
	if err != nil {
		return errDecorate(err, "Kernels")
	}
	qr := new(mat.QR)
	qr.Factorize(S)
	B.qr = qr
	B.n = len(tris)
	B.cond = qr.Cond()
	log.Printf("BEM kernels: %d triangles, system size %d, condition number %.3g", B.n, B.Size(), B.cond)
	return nil
}

//dielectricKernels builds the NxN matrix for a solvent without ions:
//L(i,i)=1, L(i,j)=-2(eps-1)/(1+eps) dF/dn(r_i; j) A_j. The rows are split in blocks built concurrently.
func (B *FlatTrianglesBEM) dielectricKernels(ctx context.Context, tris []surf.Triangle) (*mat.Dense, error) {
	N := len(tris)
	S := mat.NewDense(N, N, nil)
	f := -2 * (B.eps - 1) / (1 + B.eps)
	ranges := pool.Ranges(N, B.o.workers)
	work := func(ctx context.Context, k int) (struct{}, error) {
		r := ranges[k]
		for i := r.Start; i < r.End; i++ {
			if err := ctx.Err(); err != nil {
				return struct{}{}, err
			}
			row := S.RawRowView(i) //each task writes only its own rows.
			r0 := tris[i].Midpoint()
			for j, t := range tris {
				if i == j {
					row[j] = 1
					continue
				}
				g, R := dFdn(r0, t.Midpoint(), t.Normal())
				if R <= appzero {
					continue
				}
				row[j] = f * g * t.Area()
			}
		}
		return struct{}{}, nil
	}
	if err := pool.ScatterGather(ctx, B.o.workers, len(ranges), work, nil); err != nil {
		return nil, errDecorate(err, "dielectricKernels")
	}
	return S, nil
}

//the four blocks of the kernel matrix with ions.
const (
	blockL1 = iota
	blockL2
	blockL3
	blockL4
)

//ionicKernels builds the 2Nx2N matrix [[L1,L2],[L3,L4]] for a solvent with ions. L1, L2 and L3 are built
//as concurrent tasks, while L4 is built on the calling goroutine.
func (B *FlatTrianglesBEM) ionicKernels(ctx context.Context, tris []surf.Triangle) (*mat.Dense, error) {
	N := len(tris)
	var blocks [4]*mat.Dense
	work := func(ctx context.Context, k int) (*mat.Dense, error) {
		return B.block(ctx, k, tris)
	}
	merge := func(k int, d *mat.Dense) {
		blocks[k] = d
	}
	errc := make(chan error, 1)
	go func() {
		errc <- pool.ScatterGather(ctx, B.o.workers, 3, work, merge)
	}()
	L4, err4 := B.block(ctx, blockL4, tris)
	if err := <-errc; err != nil {
		return nil, errDecorate(err, "ionicKernels")
	}
	if err4 != nil {
		return nil, errDecorate(err4, "ionicKernels")
	}
	blocks[blockL4] = L4
	S := mat.NewDense(2*N, 2*N, nil)
	offsets := [4][2]int{{0, 0}, {0, N}, {N, 0}, {N, N}}
	for k, b := range blocks {
		o := offsets[k]
		S.Slice(o[0], o[0]+N, o[1], o[1]+N).(*mat.Dense).Copy(b)
	}
	return S, nil
}

//block computes one of the NxN blocks of the kernel matrix with ions:
//	L1 = delta + 2/(1+eps) (dF/dn - eps dP/dn) A
//	L2 = 2eps/(1+eps) (P - F) A
//	L3 = 2/(1+eps) (d2F/dn0dn - d2P/dn0dn) A
//	L4 = delta + 2/(1+eps) (dP/dn0 - eps dF/dn0) A
//The normal derivatives vanish on the diagonal (flat triangles), and the weakly singular
//diagonal terms of L2 and L3 are integrated over a disc with the area of the triangle.
func (B *FlatTrianglesBEM) block(ctx context.Context, which int, tris []surf.Triangle) (*mat.Dense, error) {
	N := len(tris)
	eps, kappa := B.eps, B.kappa
	f := 2 / (1 + eps)
	L := mat.NewDense(N, N, nil)
	for i, ti := range tris {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := L.RawRowView(i)
		r0, n0 := ti.Midpoint(), ti.Normal()
		for j, tj := range tris {
			A := tj.Area()
			if i == j {
				a := discRadius(A)
				switch which {
				case blockL1, blockL4:
					row[j] = 1
				case blockL2:
					row[j] = eps * f * selfPminusF(a, kappa)
				case blockL3:
					row[j] = f * selfD2FminusD2P(a, kappa)
				}
				continue
			}
			g := newGreen(r0, n0, tj.Midpoint(), tj.Normal(), kappa)
			if g.R <= appzero {
				continue
			}
			switch which {
			case blockL1:
				row[j] = f * (g.DFdn - eps*g.DPdn) * A
			case blockL2:
				row[j] = eps * f * (g.P - g.F) * A
			case blockL3:
				row[j] = f * (g.D2Fdn0dn - g.D2Pdn0dn) * A
			case blockL4:
				row[j] = f * (g.DPdn0 - eps*g.DFdn0) * A
			default:
				return nil, Error{fmt.Sprintf("unknown block %d", which), &[]string{"block"}, true}
			}
		}
	}
	return L, nil
}

//checkSurface verifies that the kernels are there, and that they were computed for a surface of the size of ts.
func (B *FlatTrianglesBEM) checkSurface(ts *surf.TriangulatedSurface, caller string) error {
	if B.qr == nil {
		return Error{ErrNoKernels, &[]string{caller}, true}
	}
	if ts == nil || ts.NTriangles() != B.n {
		n := 0
		if ts != nil {
			n = ts.NTriangles()
		}
		return Error{fmt.Sprintf("%s: kernels computed for %d triangles, surface has %d", ErrMismatch, B.n, n), &[]string{caller}, true}
	}
	return nil
}

//RHS returns the right-hand side of the system for the charges of mol enclosed by ts:
//b_i = 2/(1+eps) phi_coul(r_i), where phi_coul is the potential of the charges in the inner dielectric
//and r_i the midpoint of the triangle i. With ions, b_{N+i} = 2/(1+eps) dphi_coul/dn(r_i).
//Atoms outside ts are not an error, but a warning is logged.
func (B *FlatTrianglesBEM) RHS(mol *chem.Molecule, ts *surf.TriangulatedSurface) (b *mat.VecDense, err error) {
	done := B.o.reg.Timer(metrics.StageRHS)
	defer func() { done(err) }()
	if err := B.checkSurface(ts, "RHS"); err != nil {
		return nil, err
	}
	if mol == nil || mol.Len() == 0 {
		return nil, Error{ErrNoAtoms, &[]string{"RHS"}, true}
	}
	if out := ts.Outside(mol.Coords); len(out) > 0 {
		log.Printf("WARNING: %d of %d atoms are outside the surface (first: %d). The reaction potential will be meaningless", len(out), mol.Len(), out[0])
	}
	N := B.n
	f := 2 / (1 + B.eps) * K / B.o.epsI
	b = mat.NewVecDense(B.Size(), nil)
	q := mol.Charges()
	pos := mol.Coords.Vecs()
	for i, t := range ts.Triangles() {
		r0, n0 := t.Midpoint(), t.Normal()
		var phi, dphi float64
		for k, rq := range pos {
			if q[k] == 0 {
				continue
			}
			d := r3.Sub(r0, rq)
			R := r3.Norm(d)
			if R <= appzero {
				return nil, Error{fmt.Sprintf("atom %d lies on the midpoint of triangle %d", k, i), &[]string{"RHS"}, true}
			}
			phi += q[k] / R
			dphi -= q[k] * r3.Dot(d, n0) / (R * R * R)
		}
		b.SetVec(i, f*phi)
		if B.Ionic() {
			b.SetVec(N+i, f*dphi)
		}
	}
	return b, nil
}

//Solve solves the system S x = b, using the factorization obtained in Kernels. The solution is
//put in b. An ill-conditioned system is not an error, but a warning is logged.
func (B *FlatTrianglesBEM) Solve(b *mat.VecDense) (err error) {
	done := B.o.reg.Timer(metrics.StageSolve)
	defer func() { done(err) }()
	if B.qr == nil {
		return Error{ErrNoKernels, &[]string{"Solve"}, true}
	}
	if b == nil || b.Len() != B.Size() {
		l := 0
		if b != nil {
			l = b.Len()
		}
		return Error{fmt.Sprintf("%s: right-hand side of length %d for a system of size %d", ErrMismatch, l, B.Size()), &[]string{"Solve"}, true}
	}
	rhs := mat.VecDenseCopyOf(b)
	err = B.qr.SolveVecTo(b, false, rhs)
	var cond mat.Condition
	if errors.As(err, &cond) {
		log.Printf("WARNING: the BEM system is ill-conditioned (condition number %.3g). Results may be inaccurate", float64(cond))
		err = nil
	}
	if err != nil {
		return Error{err.Error(), &[]string{"Solve"}, true}
	}
	B.o.reg.IncSolves()
	return nil
}

//Integrate returns the reaction potential at each of the given positions (which should be inside the
//surface), from the solution x of the system for the surface ts. Without ions the reaction potential is
//	phi(r) = (eps-1) sum_j dF/dn(r; j) x_j A_j
//and with ions
//	phi(r) = sum_j (eps F(r; j) x_{N+j} - dF/dn(r; j) x_j) A_j.
//Terms for which a position coincides with a triangle midpoint are skipped.
func (B *FlatTrianglesBEM) Integrate(ts *surf.TriangulatedSurface, x *mat.VecDense, positions *v3.Matrix) (phi []float64, err error) {
	done := B.o.reg.Timer(metrics.StageIntegrate)
	defer func() { done(err) }()
	if err := B.checkSurface(ts, "Integrate"); err != nil {
		return nil, err
	}
	if x == nil || x.Len() != B.Size() {
		return nil, Error{fmt.Sprintf("%s: solution vector doesn't match the system size %d", ErrMismatch, B.Size()), &[]string{"Integrate"}, true}
	}
	if positions == nil {
		return nil, Error{"no positions given", &[]string{"Integrate"}, true}
	}
	N := B.n
	tris := ts.Triangles()
	phi = make([]float64, positions.NVecs())
	for p := range phi {
		r := positions.Vec(p)
		var sum float64
		for j, t := range tris {
			s := t.Midpoint()
			dfdn, R := dFdn(r, s, t.Normal())
			if R <= appzero {
				continue
			}
			A := t.Area()
			if B.Ionic() {
				F := 1 / (4 * math.Pi * R)
				sum += (B.eps*F*x.AtVec(N+j) - dfdn*x.AtVec(j)) * A
			} else {
				sum += dfdn * x.AtVec(j) * A
			}
		}
		if !B.Ionic() {
			sum *= B.eps - 1
		}
		phi[p] = sum
	}
	return phi, nil
}

//Potentials computes the reaction potential at positions due to the charges in mol, by building
//the right-hand side, solving the system and integrating the solution. Kernels must have been
//called for ts before.
func (B *FlatTrianglesBEM) Potentials(mol *chem.Molecule, ts *surf.TriangulatedSurface, positions *v3.Matrix) ([]float64, error) {
	b, err := B.RHS(mol, ts)
	if err != nil {
		return nil, errDecorate(err, "Potentials")
	}
	if err = B.Solve(b); err != nil {
		return nil, errDecorate(err, "Potentials")
	}
	phi, err := B.Integrate(ts, b, positions)
	if err != nil {
		return nil, errDecorate(err, "Potentials")
	}
	return phi, nil
}

//errDecorate is a helper function that asserts that the error
//implements chem.Error and decorates the error with the caller's name before returning it.
//Errors that don't implement chem.Error are returned unchanged.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	err2, ok := err.(chem.Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}
