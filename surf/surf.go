/*
 * surf.go, part of gobem.
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

//Package surf builds the surfaces used in the boundary element calculations:
//dotted surfaces (point clouds on the molecular surface) and closed triangulated
//surfaces.
//
//A TriangulatedSurface owns its vertices. Triangles and edges refer to them by
//their (0-based) position in the surface's vertex slice, so they are only meaningful
//together with the surface (or vertex slice) they were built from.
//
//All lengths are in nm.
package surf

import (
	"fmt"

	chem "github.com/rmera/gobem"
)

//RWater is the radius of a water molecule, in nm. It is added to the
//radius of the sphere that starts the triangulation of a molecule.
const RWater = 0.14

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

//Error is the general structure for errors in the surf package. It fullfills chem.Error.
//Errors with Critical()==true come from invalid input (domain errors).
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     *[]string
	critical bool
}

func (err Error) Error() string {
	if err.filename != "" {
		return fmt.Sprintf("gobem/surf: file %s: %s", err.filename, err.message)
	}
	return fmt.Sprintf("gobem/surf: %s", err.message)
}

//Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if E.deco == nil {
		return nil
	}
	if deco != "" {
		*E.deco = append(*E.deco, deco)
	}
	return *E.deco
}

//FileName returns the file to which the error is associated, if any.
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	ErrNoPoints      = "no points given"
	ErrZeroNormal    = "a normal can't be derived from a zero vector"
	ErrBadHandle     = "vertex handle out of range"
	ErrTargetTooLow  = "the target number of triangles must be at least 60"
	ErrWrongFormat   = "wrong format in surface file"
	ErrNotFourPoints = "exactly 4 points are needed"
)
