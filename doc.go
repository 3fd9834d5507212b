/*
 * doc.go, part of gobem.
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

/*
Package chem is the main package of the goBEM library. It provides atom and molecule structures,
a catalog for atomic radii and masses, and facilities for reading and writing the structure
files used as input for boundary-element electrostatics calculations.

	**goBEM capabilities**

	Reads PQR, PDB, XYZ and Gromacs gro files, writes PQR files.
	All lengths are kept in nm, charges in elementary charges.

	Builds dotted molecular surfaces and closed triangulated surfaces (package surf).

	Computes reaction potentials with a boundary element method, for pure
	dielectric and for ionic (Debye-Huckel) solvents (package bem).

	Plots potential profiles (package bemplot).

The bulk of the work is in the subpackages. The program in cmd/gobem puts the whole
pipeline together.
*/
package chem
