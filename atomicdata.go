/*
 * atomicdata.go, part of gobem.
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
	"strings"
)

//A map for assigning mass to elements.
//Note that just common "bio-elements" are present
var symbolMass = map[string]float64{
	"H":  1.0,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Fe": 55.84,
	"F":  18.998,
	"Br": 79.904,
	"I":  126.90,
}

//van der Waals radii, in nm.
//Values from 10.1021/j100785a001 and 10.1021/jp8111556
//metal radii from 10.1023/A:1011625728803
//Note that just common "bio-elements" are present
var symbolVdwrad = map[string]float64{
	"H":  0.110,
	"C":  0.170,
	"O":  0.152,
	"N":  0.155,
	"P":  0.180,
	"S":  0.180,
	"Se": 0.190,
	"K":  0.275,
	"Ca": 0.231,
	"Mg": 0.173,
	"Cl": 0.175,
	"Na": 0.227,
	"Cu": 0.200,
	"Zn": 0.202,
	"Fe": 0.196,
	"F":  0.147,
	"Br": 0.183,
	"I":  0.198,
}

//Catalog is a repository of per-element data (van der Waals radius in nm, mass in amu).
//It is owned by the caller, so different calculations can use different radii sets.
//A Catalog is not safe for concurrent modification.
type Catalog struct {
	vdw  map[string]float64
	mass map[string]float64
}

//NewCatalog returns a Catalog filled with the default radii and masses.
func NewCatalog() *Catalog {
	c := &Catalog{vdw: make(map[string]float64, len(symbolVdwrad)), mass: make(map[string]float64, len(symbolMass))}
	for k, v := range symbolVdwrad {
		c.vdw[k] = v
	}
	for k, v := range symbolMass {
		c.mass[k] = v
	}
	return c
}

//normSymbol puts a symbol in the usual capitalization (i.e. "CL"->"Cl")
func normSymbol(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

//Radius returns the van der Waals radius for the element symbol.
//If the symbol is not known, the first letter of it is tried, as it is often
//the case that atom names are given instead of symbols.
func (c *Catalog) Radius(symbol string) (float64, error) {
	s := normSymbol(symbol)
	if r, ok := c.vdw[s]; ok {
		return r, nil
	}
	if len(s) > 1 {
		if r, ok := c.vdw[s[:1]]; ok {
			return r, nil
		}
	}
	return 0, CError{fmt.Sprintf("No radius for symbol %q", symbol), &[]string{"Catalog.Radius"}}
}

//SetRadius sets the radius for symbol, in nm. Non-positive radii are rejected.
func (c *Catalog) SetRadius(symbol string, r float64) error {
	if r <= 0 {
		return CError{fmt.Sprintf("Invalid radius %f for %s", r, symbol), &[]string{"Catalog.SetRadius"}}
	}
	c.vdw[normSymbol(symbol)] = r
	return nil
}

//Mass returns the mass of the element, or 0 and an error if not known.
func (c *Catalog) Mass(symbol string) (float64, error) {
	if m, ok := c.mass[normSymbol(symbol)]; ok {
		return m, nil
	}
	return 0, CError{fmt.Sprintf("No mass for symbol %q", symbol), &[]string{"Catalog.Mass"}}
}

//SetMass sets the mass for symbol.
func (c *Catalog) SetMass(symbol string, m float64) {
	c.mass[normSymbol(symbol)] = m
}

//Assign fills the radius and mass of each atom in T that doesn't have them yet.
//It returns an error (after processing every atom) if some radius could not be assigned.
//Missing masses are not an error.
func (c *Catalog) Assign(T Atomer) error {
	var missing []string
	for i := 0; i < T.Len(); i++ {
		at := T.Atom(i)
		s := at.Symbol
		if s == "" {
			s = at.Name
		}
		if at.Vdw <= 0 {
			r, err := c.Radius(s)
			if err != nil {
				missing = append(missing, at.Name)
			} else {
				at.Vdw = r
			}
		}
		if at.Mass <= 0 {
			at.Mass, _ = c.Mass(s)
		}
	}
	if len(missing) > 0 {
		return CError{fmt.Sprintf("Couldn't assign radii to %d atoms: %s", len(missing), strings.Join(missing, " ")), &[]string{"Catalog.Assign"}}
	}
	return nil
}
