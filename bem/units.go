/*
 * units.go, part of gobem.
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
	"math"
)

//Physical constants, in SI units.
const (
	Avogadro    = 6.02214076e23    //mol^-1
	ElemCharge  = 1.602176634e-19  //C
	Eps0        = 8.8541878128e-12 //F m^-1
	Boltzmann   = 1.380649e-23     //J K^-1
	nmPerM      = 1e9
	litersPerM3 = 1000
)

//Defaults for the calculation parameters
const (
	DefaultTemp  = 298.15 //K
	DefaultEpsI  = 4.0
	DefaultEpsO  = 78.5
	DefaultIonic = 0.0 //mol/L
)

//K is 1/(4 pi eps0) in molecular units (kJ mol^-1 nm e^-2). With it, the
//potential of a charge q (in e) at a distance r (in nm) in a medium with dielectric
//constant eps is K*q/(eps*r), in kJ mol^-1 e^-1.
const K = 138.935458

//DebyeKappa returns the inverse Debye screening length (in nm^-1) for an
//ionic strength I (in mol/L), in a solvent with the dielectric constant epsO at the temperature T (K).
func DebyeKappa(I, epsO, T float64) (float64, error) {
	if I < 0 || epsO <= 0 || T <= 0 {
		return 0, Error{fmt.Sprintf("invalid parameters for the Debye length: I=%f epsO=%f T=%f", I, epsO, T), &[]string{"DebyeKappa"}, true}
	}
	if I == 0 {
		return 0, nil
	}
	//kappa^2 = 2 NA e^2 I / (eps0 epsO kB T), with I in mol/m^3
	k2 := 2 * Avogadro * ElemCharge * ElemCharge * I * litersPerM3 / (Eps0 * epsO * Boltzmann * T)
	return math.Sqrt(k2) / nmPerM, nil
}
