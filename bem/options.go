/*
 * options.go, part of gobem.
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

//Package bem computes reaction potentials for a set of point charges enclosed by a closed
//triangulated surface, with a boundary element method. The inside of the surface
//is a dielectric continuum, and the outside a solvent, which may contain ions
//(treated with the linearized Poisson-Boltzmann, or Debye-Huckel, equation).
//
//Units are nm, elementary charges, kJ/mol for energies and kJ/(mol e) for potentials.
package bem

import (
	"fmt"
	"runtime"

	"github.com/rmera/gobem/metrics"
)

//Options contains the parameters for a boundary element calculation.
type Options struct {
	epsI    float64
	epsO    float64
	ionic   float64
	temp    float64
	workers int
	reg     *metrics.Registry
}

//DefaultOptions returns the default options: inner dielectric 4, outer dielectric 78.5
//(water), no ions, 298.15 K, and as many workers as CPUs.
func DefaultOptions() *Options {
	return &Options{
		epsI:    DefaultEpsI,
		epsO:    DefaultEpsO,
		ionic:   DefaultIonic,
		temp:    DefaultTemp,
		workers: runtime.NumCPU(),
	}
}

//EpsI returns the dielectric constant inside the surface, and sets it, if a value is given.
func (o *Options) EpsI(e ...float64) float64 {
	ret := o.epsI
	if len(e) > 0 {
		o.epsI = e[0]
	}
	return ret
}

//EpsO returns the dielectric constant of the solvent, and sets it, if a value is given.
func (o *Options) EpsO(e ...float64) float64 {
	ret := o.epsO
	if len(e) > 0 {
		o.epsO = e[0]
	}
	return ret
}

//Ionic returns the ionic strength of the solvent (mol/L), and sets it, if a value is given.
func (o *Options) Ionic(i ...float64) float64 {
	ret := o.ionic
	if len(i) > 0 {
		o.ionic = i[0]
	}
	return ret
}

//Temp returns the temperature (K), and sets it, if a value is given.
func (o *Options) Temp(t ...float64) float64 {
	ret := o.temp
	if len(t) > 0 {
		o.temp = t[0]
	}
	return ret
}

//Workers returns the current number of gorutines to use in the
//kernel assembly, and sets it, if a valid value is given
func (o *Options) Workers(w ...int) int {
	ret := o.workers
	if len(w) > 0 && w[0] > 0 {
		o.workers = w[0]
	}
	return ret
}

//Metrics sets the metrics registry. nil disables metrics.
func (o *Options) Metrics(r *metrics.Registry) {
	o.reg = r
}

func (o *Options) check() error {
	if o.epsI <= 0 || o.epsO <= 0 {
		return Error{fmt.Sprintf("dielectric constants must be positive, got epsI=%f epsO=%f", o.epsI, o.epsO), &[]string{"Options.check"}, true}
	}
	if o.ionic < 0 {
		return Error{fmt.Sprintf("negative ionic strength %f", o.ionic), &[]string{"Options.check"}, true}
	}
	if o.temp <= 0 {
		return Error{fmt.Sprintf("non-positive temperature %f", o.temp), &[]string{"Options.check"}, true}
	}
	return nil
}

//Errors

//Error is the general structure for errors in the bem package. It fullfills chem.Error.
type Error struct {
	message  string
	deco     *[]string
	critical bool
}

func (err Error) Error() string { return "gobem/bem: " + err.message }

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

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	ErrNoKernels = "the kernels have not been computed"
	ErrNoAtoms   = "no atoms given"
	ErrMismatch  = "size mismatch"
)
