/*
 * energy.go, part of gobem.
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

	"gonum.org/v1/gonum/floats"
)

//SolvationEnergy returns the electrostatic solvation energy, 1/2 sum_i q_i phi_i (kJ/mol), for
//the charges q and the reaction potentials phi at the position of each charge.
func SolvationEnergy(q, phi []float64) (float64, error) {
	if len(q) != len(phi) {
		return 0, Error{fmt.Sprintf("%s: %d charges and %d potentials", ErrMismatch, len(q), len(phi)), &[]string{"SolvationEnergy"}, true}
	}
	return 0.5 * floats.Dot(q, phi), nil
}
