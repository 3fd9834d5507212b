/*
 * files.go, part of gobem.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	v3 "github.com/rmera/gobem/v3"
)

//A2nm converts Angstroms to nm.
const A2nm = 0.1

//ReadFile reads a molecule from the file name, in the given format ("pqr", "pdb", "xyz" or "gro").
//If format is the empty string, it is guessed from the file extension.
//The catalog is used to assign radii and masses where the file doesn't give them. It can be nil
//for PQR files.
func ReadFile(name, format string, cat *Catalog) (*Molecule, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{fmt.Sprintf("Unable to open %s: %s", name, err.Error()), &[]string{"ReadFile"}}
	}
	defer f.Close()
	var mol *Molecule
	switch format {
	case "pqr":
		mol, err = PQRFromReader(f)
	case "pdb":
		mol, err = PDBFromReader(f, cat)
	case "xyz":
		mol, err = XYZFromReader(f, cat)
	case "gro":
		mol, err = GroFromReader(f, cat)
	default:
		return nil, CError{fmt.Sprintf("Unknown format %q for %s", format, name), &[]string{"ReadFile"}}
	}
	if err != nil {
		return nil, errDecorate(err, "ReadFile "+name)
	}
	return mol, nil
}

//The catalog can't be nil when radii are needed.
func needCatalog(cat *Catalog, caller string) error {
	if cat == nil {
		return CError{"A catalog is needed to assign radii", &[]string{caller}}
	}
	return nil
}

/**PQR**/

//PQRFromReader reads atoms from a PQR stream. PQR files are whitespace-delimited:
//ATOM serial name resname [chain] resid x y z charge radius
//Coordinates and radii are converted from Angstrom to nm.
func PQRFromReader(r io.Reader) (*Molecule, error) {
	ats := make([]*Atom, 0, 100)
	coords := make([]float64, 0, 300)
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 10 {
			return nil, CError{fmt.Sprintf("Line %d: too few fields in PQR record", lineno), &[]string{"PQRFromReader"}}
		}
		at := new(Atom)
		at.Het = fields[0] == "HETATM"
		var err error
		errs := make([]error, 7)
		at.ID, errs[0] = strconv.Atoi(fields[1])
		at.Name = fields[2]
		at.Molname = fields[3]
		n := len(fields)
		idpos := 4
		if n >= 11 {
			at.Chain = fields[4]
			idpos = 5
		}
		at.Molid, errs[1] = strconv.Atoi(fields[idpos])
		var c [3]float64
		for i := 0; i < 3; i++ {
			c[i], errs[2+i] = strconv.ParseFloat(fields[n-5+i], 64)
		}
		at.Charge, errs[5] = strconv.ParseFloat(fields[n-2], 64)
		at.Vdw, errs[6] = strconv.ParseFloat(fields[n-1], 64)
		for _, e := range errs {
			if e != nil {
				err = e
				break
			}
		}
		if err != nil {
			return nil, CError{fmt.Sprintf("Line %d: %s", lineno, err.Error()), &[]string{"PQRFromReader"}}
		}
		at.Vdw *= A2nm
		at.Symbol, _ = symbolFromName(at.Name)
		if at.Symbol != "" {
			at.Mass = symbolMass[at.Symbol]
		}
		ats = append(ats, at)
		coords = append(coords, c[0]*A2nm, c[1]*A2nm, c[2]*A2nm)
	}
	if err := scanner.Err(); err != nil {
		return nil, CError{err.Error(), &[]string{"PQRFromReader"}}
	}
	return buildMolecule(ats, coords, "PQRFromReader")
}

//PQRWrite writes mol to the file name in PQR format.
func PQRWrite(mol *Molecule, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return CError{err.Error(), &[]string{"PQRWrite"}}
	}
	defer f.Close()
	if err := PQRToWriter(mol, f); err != nil {
		return errDecorate(err, "PQRWrite")
	}
	return nil
}

//PQRToWriter writes mol in PQR format to w. Lengths are written in Angstrom.
func PQRToWriter(mol *Molecule, w io.Writer) error {
	out := bufio.NewWriter(w)
	for i, at := range mol.Atoms {
		c := mol.Coords.Vec(i)
		chain := at.Chain
		if chain == "" {
			chain = "A"
		}
		molname := at.Molname
		if molname == "" {
			molname = "UNK"
		}
		rec := "ATOM  "
		if at.Het {
			rec = "HETATM"
		}
		_, err := fmt.Fprintf(out, "%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f %8.4f %7.4f\n", rec, at.ID, at.Name, molname, chain, at.Molid,
			c.X/A2nm, c.Y/A2nm, c.Z/A2nm, at.Charge, at.Vdw/A2nm)
		if err != nil {
			return CError{err.Error(), &[]string{"PQRToWriter"}}
		}
	}
	fmt.Fprintln(out, "END")
	if err := out.Flush(); err != nil {
		return CError{err.Error(), &[]string{"PQRToWriter"}}
	}
	return nil
}

/**PDB**/

//This tries to guess a chemical element symbol from a PDB atom name. Mostly based on AMBER names.
//It only deals with some common bio-elements.
func symbolFromName(name string) (string, error) {
	symbol := ""
	if len(name) == 0 {
		return symbol, CError{"Empty atom name", &[]string{"symbolFromName"}}
	}
	name = strings.ToUpper(name)
	if len(name) == 4 || name[0] == 'H' { //Only Hs have 4-char names in amber.
		symbol = "H"
	} else if name[0] == 'C' { //Ca is not considered here
		switch name {
		case "CU":
			symbol = "Cu"
		case "CL":
			symbol = "Cl"
		default:
			symbol = "C"
		}
	} else if name[0] == 'N' {
		if name == "NA" {
			symbol = "Na"
		} else {
			symbol = "N"
		}
	} else if name[0] == 'O' {
		symbol = "O"
	} else if name[0] == 'P' {
		symbol = "P"
	} else if name[0] == 'S' {
		if name == "SE" {
			symbol = "Se"
		} else {
			symbol = "S"
		}
	} else if strings.HasPrefix(name, "ZN") {
		symbol = "Zn"
	} else if strings.HasPrefix(name, "FE") {
		symbol = "Fe"
	}
	if symbol == "" {
		return symbol, CError{fmt.Sprintf("Couldn't guess symbol from PDB name %s", name), &[]string{"symbolFromName"}}
	}
	return symbol, nil
}

//pdbCharge parses the charge columns (79-80) of a PDB line, i.e. "2+" or "1-".
func pdbCharge(s string) float64 {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0
	}
	q, err := strconv.ParseFloat(s[:len(s)-1], 64)
	if err != nil {
		return 0
	}
	if s[len(s)-1] == '-' {
		q = -q
	}
	return q
}

//Parses a valid ATOM or HETATM line of a PDB file, returns an Atom
//and its coordinates (in Angstrom).
func readPDBLine(line string, lineno int) (*Atom, [3]float64, error) {
	var coords [3]float64
	if len(line) < 54 {
		return nil, coords, CError{fmt.Sprintf("Line %d: too short for an ATOM record", lineno), &[]string{"readPDBLine"}}
	}
	errs := make([]error, 5) //accumulate errors to check at the end of the read line.
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.ID, errs[0] = strconv.Atoi(strings.TrimSpace(line[6:11]))
	atom.Name = strings.TrimSpace(line[12:16])
	atom.Molname = strings.TrimSpace(line[17:20])
	atom.Chain = strings.TrimSpace(line[21:22])
	atom.Molid, errs[1] = strconv.Atoi(strings.TrimSpace(line[22:26]))
	coords[0], errs[2] = strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	coords[1], errs[3] = strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	coords[2], errs[4] = strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	if len(line) >= 78 {
		atom.Symbol = normSymbol(line[76:78])
	}
	if len(line) >= 80 {
		atom.Charge = pdbCharge(line[78:80])
	}
	//We try to guess the symbol from the atom name, if it has not been read
	if len(atom.Symbol) == 0 {
		atom.Symbol, _ = symbolFromName(atom.Name)
	}
	for _, e := range errs {
		if e != nil {
			return nil, coords, CError{fmt.Sprintf("Line %d: %s", lineno, e.Error()), &[]string{"readPDBLine"}}
		}
	}
	return atom, coords, nil
}

//PDBFromReader reads the first model of a PDB stream. Radii and masses are taken
//from cat, and charges from the columns 79-80 of each ATOM/HETATM record.
func PDBFromReader(r io.Reader, cat *Catalog) (*Molecule, error) {
	if err := needCatalog(cat, "PDBFromReader"); err != nil {
		return nil, err
	}
	ats := make([]*Atom, 0, 100)
	coords := make([]float64, 0, 300)
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if strings.HasPrefix(line, "ENDMDL") {
			break //only the first model is read.
		}
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			continue
		}
		at, c, err := readPDBLine(line, lineno)
		if err != nil {
			return nil, errDecorate(err, "PDBFromReader")
		}
		ats = append(ats, at)
		coords = append(coords, c[0]*A2nm, c[1]*A2nm, c[2]*A2nm)
	}
	if err := scanner.Err(); err != nil {
		return nil, CError{err.Error(), &[]string{"PDBFromReader"}}
	}
	mol, err := buildMolecule(ats, coords, "PDBFromReader")
	if err != nil {
		return nil, err
	}
	if err := cat.Assign(mol); err != nil {
		return nil, errDecorate(err, "PDBFromReader")
	}
	return mol, nil
}

/**XYZ**/

//XYZFromReader reads an XYZ stream (natoms, comment line, then "symbol x y z [charge]" lines,
//in Angstrom). Radii and masses are taken from cat.
func XYZFromReader(r io.Reader, cat *Catalog) (*Molecule, error) {
	if err := needCatalog(cat, "XYZFromReader"); err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, CError{"Empty XYZ file", &[]string{"XYZFromReader"}}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || natoms <= 0 {
		return nil, CError{fmt.Sprintf("Invalid number of atoms in XYZ file: %q", scanner.Text()), &[]string{"XYZFromReader"}}
	}
	scanner.Scan() //comment
	ats := make([]*Atom, 0, natoms)
	coords := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		if !scanner.Scan() {
			return nil, CError{fmt.Sprintf("Expected %d atoms, found %d", natoms, i), &[]string{"XYZFromReader"}}
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, CError{fmt.Sprintf("Line %d: too few fields", i+3), &[]string{"XYZFromReader"}}
		}
		at := &Atom{ID: i + 1, Name: fields[0], Symbol: normSymbol(fields[0]), Molid: 1}
		var c [3]float64
		for j := 0; j < 3; j++ {
			c[j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, CError{fmt.Sprintf("Line %d: %s", i+3, err.Error()), &[]string{"XYZFromReader"}}
			}
		}
		if len(fields) >= 5 {
			at.Charge, err = strconv.ParseFloat(fields[4], 64)
			if err != nil {
				return nil, CError{fmt.Sprintf("Line %d: %s", i+3, err.Error()), &[]string{"XYZFromReader"}}
			}
		}
		ats = append(ats, at)
		coords = append(coords, c[0]*A2nm, c[1]*A2nm, c[2]*A2nm)
	}
	mol, err := buildMolecule(ats, coords, "XYZFromReader")
	if err != nil {
		return nil, err
	}
	if err := cat.Assign(mol); err != nil {
		return nil, errDecorate(err, "XYZFromReader")
	}
	return mol, nil
}

/**GRO**/

//GroFromReader reads a Gromacs gro stream. Coordinates in gro files are already in nm.
//Gro files have no charges, so all of them are set to 0.
func GroFromReader(r io.Reader, cat *Catalog) (*Molecule, error) {
	if err := needCatalog(cat, "GroFromReader"); err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(r)
	scanner.Scan() //title
	if !scanner.Scan() {
		return nil, CError{"Gro file too short", &[]string{"GroFromReader"}}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || natoms <= 0 {
		return nil, CError{fmt.Sprintf("Invalid number of atoms in gro file: %q", scanner.Text()), &[]string{"GroFromReader"}}
	}
	ats := make([]*Atom, 0, natoms)
	coords := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		if !scanner.Scan() {
			return nil, CError{fmt.Sprintf("Expected %d atoms, found %d", natoms, i), &[]string{"GroFromReader"}}
		}
		line := scanner.Text()
		if len(line) < 44 {
			return nil, CError{fmt.Sprintf("Line %d: too short", i+3), &[]string{"GroFromReader"}}
		}
		errs := make([]error, 5)
		at := new(Atom)
		at.Molid, errs[0] = strconv.Atoi(strings.TrimSpace(line[0:5]))
		at.Molname = strings.TrimSpace(line[5:10])
		at.Name = strings.TrimSpace(line[10:15])
		at.ID, errs[1] = strconv.Atoi(strings.TrimSpace(line[15:20]))
		var c [3]float64
		for j := 0; j < 3; j++ {
			c[j], errs[2+j] = strconv.ParseFloat(strings.TrimSpace(line[20+8*j:28+8*j]), 64)
		}
		for _, e := range errs {
			if e != nil {
				return nil, CError{fmt.Sprintf("Line %d: %s", i+3, e.Error()), &[]string{"GroFromReader"}}
			}
		}
		at.Symbol, _ = symbolFromName(at.Name)
		ats = append(ats, at)
		coords = append(coords, c[0], c[1], c[2])
	}
	mol, err := buildMolecule(ats, coords, "GroFromReader")
	if err != nil {
		return nil, err
	}
	if err := cat.Assign(mol); err != nil {
		return nil, errDecorate(err, "GroFromReader")
	}
	return mol, nil
}

func buildMolecule(ats []*Atom, coords []float64, caller string) (*Molecule, error) {
	if len(ats) == 0 {
		return nil, CError{"No atoms found", &[]string{caller}}
	}
	c, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, CError{err.Error(), &[]string{caller}}
	}
	mol, err := NewMolecule(ats, c)
	if err != nil {
		return nil, errDecorate(err, caller)
	}
	return mol, nil
}
