/*
 * bem_test.go, part of gobem.
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
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"os"
	"strings"
	"testing"

	chem "github.com/rmera/gobem"
	"github.com/rmera/gobem/metrics"
	"github.com/rmera/gobem/surf"
	v3 "github.com/rmera/gobem/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func sphere(Te *testing.T, target int, radius float64) *surf.TriangulatedSurface {
	o := surf.DefaultSphereOptions()
	o.Target(target)
	o.Spherical(true)
	o.Radius(radius)
	o.Center(r3.Vec{})
	st, err := surf.NewSphereTriangulator(o)
	require.NoError(Te, err)
	ts, err := st.Generate(v3.FromVecs([]r3.Vec{{}}))
	require.NoError(Te, err)
	return ts
}

func charges(Te *testing.T, q []float64, pos []r3.Vec) *chem.Molecule {
	ats := make([]*chem.Atom, len(q))
	for i, v := range q {
		ats[i] = &chem.Atom{Name: "X", Symbol: "X", Charge: v, Vdw: 0.15}
	}
	mol, err := chem.NewMolecule(ats, v3.FromVecs(pos))
	require.NoError(Te, err)
	return mol
}

//centerPotential returns the reaction potential at the center of a sphere of radius 1
//with a unit charge in its center, and the analytic value.
func centerPotential(Te *testing.T, target int, ionic float64) (float64, float64) {
	const R = 1.0
	o := DefaultOptions()
	o.Ionic(ionic)
	B, err := NewFlatTrianglesBEM(o)
	require.NoError(Te, err)
	ts := sphere(Te, target, R)
	require.NoError(Te, B.Kernels(context.Background(), ts))
	mol := charges(Te, []float64{1}, []r3.Vec{{}})
	phi, err := B.Potentials(mol, ts, mol.Coords)
	require.NoError(Te, err)
	require.Len(Te, phi, 1)
	k := B.Kappa()
	exact := K * (1/(DefaultEpsO*R*(1+k*R)) - 1/(DefaultEpsI*R))
	return phi[0], exact
}

func TestBorn(Te *testing.T) {
	phi960, exact := centerPotential(Te, 960, 0)
	err960 := math.Abs((phi960 - exact) / exact)
	assert.Less(Te, err960, 0.05)
	phi60, _ := centerPotential(Te, 60, 0)
	err60 := math.Abs((phi60 - exact) / exact)
	assert.Less(Te, err960, err60, "the result should improve with the number of triangles")
	assert.Less(Te, phi960, 0.0)

	G, err := SolvationEnergy([]float64{1}, []float64{phi960})
	require.NoError(Te, err)
	born := -K / 2 * (1/DefaultEpsI - 1/DefaultEpsO) //R=1, q=1
	assert.InEpsilon(Te, born, G, 0.05)
}

func TestDebyeHuckelSphere(Te *testing.T) {
	phi, exact := centerPotential(Te, 960, 0.1)
	assert.InEpsilon(Te, exact, phi, 0.05)
	phi0, _ := centerPotential(Te, 960, 0)
	assert.Less(Te, phi, phi0, "ions should make the reaction potential more negative")
}

func TestDebyeKappa(Te *testing.T) {
	k, err := DebyeKappa(0.1, 78.5, 298.15)
	require.NoError(Te, err)
	assert.InDelta(Te, 1.0395, k, 1e-3) //Debye length of ~0.96 nm
	k, err = DebyeKappa(0, 78.5, 298.15)
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, k)
	k4, _ := DebyeKappa(0.4, 78.5, 298.15)
	assert.InDelta(Te, 2*1.0395, k4, 2e-3)
	_, err = DebyeKappa(-1, 78.5, 298.15)
	assert.Error(Te, err)
	_, err = DebyeKappa(0.1, 78.5, 0)
	assert.Error(Te, err)
}

func TestDielectricKernels(Te *testing.T) {
	B, err := NewFlatTrianglesBEM(nil)
	require.NoError(Te, err)
	ts := sphere(Te, 60, 1.0)
	tris := ts.Triangles()
	S, err := B.dielectricKernels(context.Background(), tris)
	require.NoError(Te, err)
	eps := DefaultEpsO / DefaultEpsI
	f := -2 * (eps - 1) / (1 + eps)
	for i := range tris {
		assert.Equal(Te, 1.0, S.At(i, i))
		for j := range tris {
			if i == j {
				continue
			}
			g, _ := dFdn(tris[i].Midpoint(), tris[j].Midpoint(), tris[j].Normal())
			assert.InDelta(Te, f*g*tris[j].Area(), S.At(i, j), 1e-12)
			assert.LessOrEqual(Te, math.Abs(S.At(i, j)), 2*math.Abs(eps-1)/(1+eps))
		}
	}
}

func TestIonicKernels(Te *testing.T) {
	o := DefaultOptions()
	o.Ionic(0.15)
	o.Workers(2)
	B, err := NewFlatTrianglesBEM(o)
	require.NoError(Te, err)
	ts := sphere(Te, 60, 1.0)
	tris := ts.Triangles()
	N := len(tris)
	S, err := B.ionicKernels(context.Background(), tris)
	require.NoError(Te, err)
	r, c := S.Dims()
	require.Equal(Te, 2*N, r)
	require.Equal(Te, 2*N, c)
	eps, f := B.eps, 2/(1+B.eps)
	for i := 0; i < N; i++ {
		assert.Equal(Te, 1.0, S.At(i, i))
		assert.Equal(Te, 1.0, S.At(N+i, N+i))
		a := discRadius(tris[i].Area())
		assert.InDelta(Te, eps*f*selfPminusF(a, B.kappa), S.At(i, N+i), 1e-12)
		assert.InDelta(Te, f*selfD2FminusD2P(a, B.kappa), S.At(N+i, i), 1e-12)
	}
	i, j := 3, 17
	ti, tj := tris[i], tris[j]
	g := newGreen(ti.Midpoint(), ti.Normal(), tj.Midpoint(), tj.Normal(), B.kappa)
	A := tj.Area()
	assert.InDelta(Te, f*(g.DFdn-eps*g.DPdn)*A, S.At(i, j), 1e-12)
	assert.InDelta(Te, eps*f*(g.P-g.F)*A, S.At(i, N+j), 1e-12)
	assert.InDelta(Te, f*(g.D2Fdn0dn-g.D2Pdn0dn)*A, S.At(N+i, j), 1e-12)
	assert.InDelta(Te, f*(g.DPdn0-eps*g.DFdn0)*A, S.At(N+i, N+j), 1e-12)
}

func TestKernelsCancelled(Te *testing.T) {
	B, err := NewFlatTrianglesBEM(nil)
	require.NoError(Te, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = B.Kernels(ctx, sphere(Te, 60, 1.0))
	assert.ErrorIs(Te, err, context.Canceled)
	assert.Equal(Te, 0, B.Size())
}

//The reaction potential of two opposite charges outside a sphere decays faster than their
//Coulomb interaction as they are taken apart.
func TestOppositeChargesDecay(Te *testing.T) {
	B, err := NewFlatTrianglesBEM(nil)
	require.NoError(Te, err)
	ts := sphere(Te, 240, 0.5)
	require.NoError(Te, B.Kernels(context.Background(), ts))
	C, err := NewCoulomb(DefaultEpsI)
	require.NoError(Te, err)
	var ratios []float64
	for _, s := range []float64{2, 4, 8, 16} {
		mol := charges(Te, []float64{1, -1}, []r3.Vec{{X: s / 2}, {X: -s / 2}})
		reac, err := B.Potentials(mol, ts, mol.Coords)
		require.NoError(Te, err)
		coul, err := C.Potentials(mol, mol.Coords)
		require.NoError(Te, err)
		assert.InDelta(Te, -K/(DefaultEpsI*s), coul[0], 1e-9)
		ratios = append(ratios, math.Abs(reac[0]/coul[0]))
	}
	for i := 1; i < len(ratios); i++ {
		assert.Less(Te, ratios[i], ratios[i-1]/4, "ratios: %v", ratios)
	}
}

func TestSolverErrors(Te *testing.T) {
	o := DefaultOptions()
	o.EpsI(0)
	_, err := NewFlatTrianglesBEM(o)
	var berr Error
	require.True(Te, errors.As(err, &berr))
	assert.True(Te, berr.Critical())
	o = DefaultOptions()
	o.Ionic(-0.1)
	_, err = NewFlatTrianglesBEM(o)
	assert.Error(Te, err)
	o = DefaultOptions()
	o.Temp(-3)
	_, err = NewFlatTrianglesBEM(o)
	assert.Error(Te, err)

	B, err := NewFlatTrianglesBEM(nil)
	require.NoError(Te, err)
	ts := sphere(Te, 60, 1.0)
	mol := charges(Te, []float64{1}, []r3.Vec{{}})
	_, err = B.RHS(mol, ts)
	require.Error(Te, err)
	assert.True(Te, strings.Contains(err.Error(), ErrNoKernels))
	assert.Error(Te, B.Solve(mat.NewVecDense(60, nil)))
	_, err = B.Integrate(ts, mat.NewVecDense(60, nil), mol.Coords)
	assert.Error(Te, err)

	reg := metrics.NewRegistry()
	B.o.Metrics(reg)
	require.NoError(Te, B.Kernels(context.Background(), ts))
	assert.Equal(Te, 60, B.Size())
	_, err = B.RHS(mol, sphere(Te, 240, 1.0))
	assert.True(Te, strings.Contains(err.Error(), ErrMismatch))
	_, err = B.RHS(&chem.Molecule{Topology: &chem.Topology{}}, ts)
	assert.Error(Te, err)
	assert.Error(Te, B.Solve(mat.NewVecDense(61, nil)))
	_, err = B.Integrate(ts, mat.NewVecDense(59, nil), mol.Coords)
	assert.Error(Te, err)
	b, err := B.RHS(mol, ts)
	require.NoError(Te, err)
	require.NoError(Te, B.Solve(b))
	require.NoError(Te, B.Solve(b)) //the factorization can be reused
}

func TestCoulombAndEnergy(Te *testing.T) {
	_, err := NewCoulomb(-1)
	assert.Error(Te, err)
	C, err := NewCoulomb(2)
	require.NoError(Te, err)
	mol := charges(Te, []float64{1, 2}, []r3.Vec{{}, {X: 1}})
	phi, err := C.Potentials(mol, v3.FromVecs([]r3.Vec{{}, {X: 1}, {X: 2}}))
	require.NoError(Te, err)
	assert.InDelta(Te, K, phi[0], 1e-9, "no self term")
	assert.InDelta(Te, K/2, phi[1], 1e-9)
	assert.InDelta(Te, K*(1.0/2+2)/2, phi[2], 1e-9)
	_, err = C.Potentials(nil, mol.Coords)
	assert.Error(Te, err)

	G, err := SolvationEnergy([]float64{1, -2}, []float64{-10, 4})
	require.NoError(Te, err)
	assert.InDelta(Te, -9.0, G, 1e-12)
	_, err = SolvationEnergy([]float64{1}, nil)
	assert.Error(Te, err)
}

func TestRHSWarnsOutsideAtoms(Te *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	B, err := NewFlatTrianglesBEM(nil)
	require.NoError(Te, err)
	ts := sphere(Te, 60, 1.0)
	require.NoError(Te, B.Kernels(context.Background(), ts))
	buf.Reset()
	_, err = B.RHS(charges(Te, []float64{1, -1}, []r3.Vec{{X: 0.2}, {X: -0.3}}), ts)
	require.NoError(Te, err)
	assert.NotContains(Te, buf.String(), "outside the surface")
	_, err = B.RHS(charges(Te, []float64{1, -1, 1}, []r3.Vec{{X: 0.2}, {X: 2}, {Y: -3}}), ts)
	require.NoError(Te, err)
	assert.Contains(Te, buf.String(), "2 of 3 atoms are outside the surface (first: 1)")
}

func TestErrorTrail(Te *testing.T) {
	_, err := surf.ReadTriangulated("missing.srf")
	err = errDecorate(errDecorate(err, "Kernels"), "caller")
	e, ok := err.(chem.Error)
	require.True(Te, ok)
	assert.Equal(Te, []string{"openFile", "ReadTriangulated", "Kernels", "caller"}, e.Decorate(""))
	assert.Equal(Te, []string{"openFile", "ReadTriangulated", "Kernels", "caller", "more"}, e.Decorate("more"))
}
