/*
 * chem.go, part of gobem.
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

package chem

import (
	"fmt"

	v3 "github.com/rmera/gobem/v3"
	"gonum.org/v1/gonum/floats"
)

/**Note: Many functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

//Atom contains the information of an atom, except for the coordinates, which will be in a matrix.
//Lengths (Vdw) are in nm and charges in elementary charges.
type Atom struct {
	Name    string
	ID      int
	Molname string
	Molid   int
	Chain   string
	Mass    float64
	Vdw     float64
	Charge  float64
	Symbol  string
	Het     bool // is hetatm in the pdb file?
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	ret := *A
	return &ret
}

/*****Topology type***/

//Topology contains the information about a molecule which is not expected to change
//(i.e. everything except for the coordinates).
type Topology struct {
	Atoms []*Atom
}

//NewTopology returns a topology with the given atoms. It returns an error
//if ats is nil or has nil elements.
func NewTopology(ats []*Atom) (*Topology, error) {
	if ats == nil {
		return nil, CError{"Supplied a nil atom slice", &[]string{"NewTopology"}}
	}
	for i, v := range ats {
		if v == nil {
			return nil, CError{fmt.Sprintf("Atom %d is nil", i), &[]string{"NewTopology"}}
		}
	}
	return &Topology{Atoms: ats}, nil
}

//Atom returns the Atom corresponding to the index i
//of the Atom slice in the Topology. Panics if
//out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

//SetAtom sets the (i+1)th Atom of the topology to at.
//Panics if out of range
func (T *Topology) SetAtom(i int, at *Atom) {
	if i >= T.Len() {
		panic("Topology: Tried to set Atom out of bounds")
	}
	T.Atoms[i] = at
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//Charges returns the partial charges of all atoms, in order.
func (T *Topology) Charges() []float64 {
	ret := make([]float64, T.Len())
	for i, v := range T.Atoms {
		ret[i] = v.Charge
	}
	return ret
}

//Radii returns the van der Waals radii of all atoms, in order.
func (T *Topology) Radii() []float64 {
	ret := make([]float64, T.Len())
	for i, v := range T.Atoms {
		ret[i] = v.Vdw
	}
	return ret
}

//TotalCharge returns the sum of all the partial charges
func (T *Topology) TotalCharge() float64 {
	return floats.Sum(T.Charges())
}

/**Molecule type**/

//Molecule is a Topology plus the cartesian coordinates (in nm) of each atom.
type Molecule struct {
	*Topology
	Coords *v3.Matrix
}

//NewMolecule returns a molecule with the atoms ats and the coordinates coords.
//It returns an error if the number of atoms and coordinates don't match.
func NewMolecule(ats []*Atom, coords *v3.Matrix) (*Molecule, error) {
	top, err := NewTopology(ats)
	if err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	if coords == nil {
		return nil, CError{"Supplied nil coordinates", &[]string{"NewMolecule"}}
	}
	if coords.NVecs() != top.Len() {
		return nil, CError{fmt.Sprintf("Mismatched number of atoms (%d) and coordinates (%d)", top.Len(), coords.NVecs()), &[]string{"NewMolecule"}}
	}
	return &Molecule{Topology: top, Coords: coords}, nil
}

//Copy returns a deep copy of the molecule.
func (M *Molecule) Copy() *Molecule {
	ats := make([]*Atom, M.Len())
	for i, v := range M.Atoms {
		ats[i] = v.Copy()
	}
	c := v3.Zeros(M.Coords.NVecs())
	c.Copy(M.Coords)
	return &Molecule{Topology: &Topology{Atoms: ats}, Coords: c}
}

//Errors

//CError is the error type of the chem package.
type CError struct {
	msg  string
	deco *[]string
}

func (err CError) Error() string { return err.msg }

//Decorate adds dec to the decoration slice of the error and returns the resulting slice.
func (err CError) Decorate(dec string) []string {
	if err.deco == nil {
		return nil
	}
	if dec != "" {
		*err.deco = append(*err.deco, dec)
	}
	return *err.deco
}

//errDecorate is a helper function that asserts that the error
//implements chem.Error and decorates the error with the caller's name before returning it.
//if used with a non-chem.Error error, it returns the error unchanged.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	err2, ok := err.(Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}
