/*
 * coulomb.go, part of gobem.
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
	"fmt"

	chem "github.com/rmera/gobem"
	v3 "github.com/rmera/gobem/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//Coulomb computes direct (unscreened) potentials of point charges in a homogeneous dielectric.
type Coulomb struct {
	epsI float64
}

//NewCoulomb returns a Coulomb for the dielectric constant eps, which must be positive.
func NewCoulomb(eps float64) (*Coulomb, error) {
	if eps <= 0 {
		return nil, Error{fmt.Sprintf("non-positive dielectric constant %f", eps), &[]string{"NewCoulomb"}, true}
	}
	return &Coulomb{epsI: eps}, nil
}

//Potentials returns the potential created by the charges of mol at each of the positions,
//in kJ/(mol e). A charge at the same place as a position doesn't contribute to the
//potential there, so the potentials at the atom positions don't include self terms.
func (C *Coulomb) Potentials(mol *chem.Molecule, positions *v3.Matrix) ([]float64, error) {
	if mol == nil || mol.Len() == 0 {
		return nil, Error{ErrNoAtoms, &[]string{"Coulomb.Potentials"}, true}
	}
	if positions == nil {
		return nil, Error{"no positions given", &[]string{"Coulomb.Potentials"}, true}
	}
	q := mol.Charges()
	atoms := mol.Coords.Vecs()
	ret := make([]float64, positions.NVecs())
	for i := range ret {
		r := positions.Vec(i)
		for k, a := range atoms {
			R := r3.Norm(r3.Sub(r, a))
			if R <= appzero {
				continue
			}
			ret[i] += q[k] / R
		}
		ret[i] *= K / C.epsI
	}
	return ret, nil
}
