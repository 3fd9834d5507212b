/*
 * main.go, part of gobem.
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

//gobem computes the electrostatic reaction potential and solvation energy of a molecule
//with a boundary element method. Run gobem -h for the options.
//
//The pipeline is: read the structure, build its dotted surface, triangulate the surface,
//build and factorize the BEM kernels, solve for the charges of the structure and
//integrate the solution at the atom positions (and, optionally, along a line).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	chem "github.com/rmera/gobem"
	"github.com/rmera/gobem/bem"
	"github.com/rmera/gobem/bemplot"
	"github.com/rmera/gobem/metrics"
	"github.com/rmera/gobem/surf"
	v3 "github.com/rmera/gobem/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

func main() {
	os.Exit(gobem(os.Args[1:]))
}

//gobem runs the program with the command-line arguments args, and returns the exit
//code: 0 on success, 1 if the calculation failed and 2 for bad arguments.
func gobem(args []string) (code int) {
	log.SetPrefix("gobem: ")
	log.SetFlags(log.Ltime)
	cfg, err := parseArgs(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		log.Println(err)
		return 2
	}
	if cfg.Output.Log != "" {
		f, err := os.Create(cfg.Output.Log)
		if err != nil {
			log.Println(err)
			return 1
		}
		log.SetOutput(f)
		defer func() {
			log.SetOutput(os.Stderr)
			if err := f.Close(); err != nil {
				log.Println(err)
				code = 1
			}
		}()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var out io.Writer = os.Stdout
	if cfg.Output.Potentials != "" {
		f, err := os.Create(cfg.Output.Potentials)
		if err != nil {
			log.Println(err)
			return 1
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Println(err)
				code = 1
			}
		}()
		out = f
	}
	if err := run(ctx, cfg, out); err != nil {
		log.Println(err)
		return 1
	}
	return 0
}

//Result contains the outputs of a run.
type Result struct {
	Mol       *chem.Molecule
	Dots      *surf.Surface
	Surface   *surf.TriangulatedSurface
	Kappa     float64
	Reaction  []float64 //reaction potential at each atom
	Coulomb   []float64 //direct potential at each atom, from the other atoms
	Energy    float64   //solvation energy
	Profile   *bemplot.Profile
	Condition float64
}

//compute runs the whole calculation for the configuration cfg.
func compute(ctx context.Context, cfg *Config, reg *metrics.Registry) (*Result, error) {
	cat := chem.NewCatalog()
	for k, v := range cfg.Radii {
		if err := cat.SetRadius(k, v); err != nil {
			return nil, err
		}
	}
	mol, err := chem.ReadFile(cfg.Input, cfg.Format, cat)
	if err != nil {
		return nil, err
	}
	log.Printf("Read %d atoms from %s, total charge %.3f e", mol.Len(), cfg.Input, mol.TotalCharge())
	res := &Result{Mol: mol}

	do := surf.DefaultDotOptions()
	do.Dots(cfg.Dots)
	do.Solvent(cfg.Solvent)
	do.Metrics(reg)
	dg, err := surf.NewDottedSurfaceGenerator(do)
	if err != nil {
		return nil, err
	}
	if res.Dots, err = dg.FromMolecule(mol); err != nil {
		return nil, err
	}

	so := surf.DefaultSphereOptions()
	so.Target(cfg.Triangles)
	so.Spherical(cfg.Spherical)
	so.Radius(cfg.Radius)
	so.Workers(cfg.Workers)
	so.Metrics(reg)
	var tri surf.Triangulator
	if tri, err = surf.NewSphereTriangulator(so); err != nil {
		return nil, err
	}
	if res.Surface, err = tri.Generate(res.Dots.Points); err != nil {
		return nil, err
	}
	mean, std := res.Surface.EdgeStats()
	log.Printf("Surface area %.4f nm^2 (dots: %.4f), volume %.4f nm^3 (dots: %.4f), edge length %.4f +/- %.4f nm",
		res.Surface.Area(), res.Dots.Area, res.Surface.Volume(), res.Dots.Volume, mean, std)

	bo := bem.DefaultOptions()
	bo.EpsI(cfg.EpsI)
	bo.EpsO(cfg.EpsO)
	bo.Ionic(cfg.Ionic)
	bo.Temp(cfg.Temperature)
	bo.Workers(cfg.Workers)
	bo.Metrics(reg)
	B, err := bem.NewFlatTrianglesBEM(bo)
	if err != nil {
		return nil, err
	}
	res.Kappa = B.Kappa()
	if err = B.Kernels(ctx, res.Surface); err != nil {
		return nil, err
	}
	res.Condition = B.Cond()
	b, err := B.RHS(mol, res.Surface)
	if err != nil {
		return nil, err
	}
	if err = B.Solve(b); err != nil {
		return nil, err
	}
	//The reaction potential is integrated in one go for the atoms and the profile points, if any.
	field := mol.Coords
	var line *v3.Matrix
	if p := cfg.Profile; p != nil {
		line, err = bemplot.Line(r3.Vec{X: p.From[0], Y: p.From[1], Z: p.From[2]}, r3.Vec{X: p.To[0], Y: p.To[1], Z: p.To[2]}, p.Points)
		if err != nil {
			return nil, err
		}
		field = v3.Zeros(mol.Len() + line.NVecs())
		field.Stack(mol.Coords, line)
	}
	phi, err := B.Integrate(res.Surface, b, field)
	if err != nil {
		return nil, err
	}
	res.Reaction = phi[:mol.Len()]
	if line != nil {
		if res.Profile, err = bemplot.NewProfile("reaction", field.View(mol.Len(), line.NVecs()), phi[mol.Len():]); err != nil {
			return nil, err
		}
	}
	if res.Energy, err = bem.SolvationEnergy(mol.Charges(), res.Reaction); err != nil {
		return nil, err
	}
	C, err := bem.NewCoulomb(cfg.EpsI)
	if err != nil {
		return nil, err
	}
	if res.Coulomb, err = C.Potentials(mol, mol.Coords); err != nil {
		return nil, err
	}
	log.Printf("Solvation energy: %.4f kJ/mol", res.Energy)
	return res, nil
}

//run computes and writes all the results requested in cfg. The atomic potentials go to out.
func run(ctx context.Context, cfg *Config, out io.Writer) error {
	reg := metrics.NewRegistry()
	res, err := compute(ctx, cfg, reg)
	if err != nil {
		return err
	}
	if err := writePotentials(out, res); err != nil {
		return err
	}
	o := cfg.Output
	if o.Surface != "" {
		if err := surf.WriteTriangulated(res.Surface, o.Surface); err != nil {
			return err
		}
	}
	if o.Dots != "" {
		if err := surf.WriteDotted(res.Dots, o.Dots); err != nil {
			return err
		}
	}
	if o.Plot != "" {
		if res.Profile == nil {
			log.Println("WARNING: a plot was requested, but no profile was defined. No plot will be produced")
		} else if err := bemplot.Save(o.Plot, "Reaction potential", res.Profile); err != nil {
			return err
		}
	}
	if o.Metrics != "" {
		if err := reg.WriteToTextfile(o.Metrics); err != nil {
			return err
		}
	}
	return nil
}

func writePotentials(w io.Writer, res *Result) error {
	if _, err := fmt.Fprintf(w, "# kappa %.6f nm^-1 solvation_energy %.6f kJ/mol\n# atom name charge reaction coulomb\n", res.Kappa, res.Energy); err != nil {
		return err
	}
	for i := 0; i < res.Mol.Len(); i++ {
		at := res.Mol.Atom(i)
		if _, err := fmt.Fprintf(w, "%d %s %.4f %.6f %.6f\n", i+1, at.Name, at.Charge, res.Reaction[i], res.Coulomb[i]); err != nil {
			return err
		}
	}
	if res.Profile != nil {
		if _, err := fmt.Fprintln(w, "# profile: distance reaction"); err != nil {
			return err
		}
		for i, d := range res.Profile.Distances {
			if _, err := fmt.Fprintf(w, "%.5f %.6f\n", d, res.Profile.Values[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
