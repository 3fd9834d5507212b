/*
 * config.go, part of gobem.
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

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rmera/gobem/bem"
	"github.com/rmera/gobem/surf"
	"gopkg.in/yaml.v3"
)

//Config contains all the parameters of a gobem run. It can be read from a YAML file,
//and then modified with command-line flags.
type Config struct {
	Input  string             `yaml:"input" validate:"required"`
	Format string             `yaml:"format" validate:"omitempty,oneof=pqr pdb xyz gro"`
	Radii  map[string]float64 `yaml:"radii" validate:"omitempty,dive,gt=0"`

	EpsI        float64 `yaml:"eps_in" validate:"gt=0"`
	EpsO        float64 `yaml:"eps_out" validate:"gt=0"`
	Ionic       float64 `yaml:"ionic_strength" validate:"gte=0"`
	Temperature float64 `yaml:"temperature" validate:"gt=0"`

	Dots      int     `yaml:"dots" validate:"min=10"`
	Solvent   float64 `yaml:"solvent" validate:"gte=0"`
	Triangles int     `yaml:"triangles" validate:"min=60"`
	Spherical bool    `yaml:"spherical"`
	Radius    float64 `yaml:"radius" validate:"gte=0"`
	Workers   int     `yaml:"workers" validate:"gte=0"`

	Profile *ProfileConfig `yaml:"profile" validate:"omitempty"`
	Output  OutputConfig   `yaml:"output"`
}

//ProfileConfig defines a straight line on which the reaction potential is computed and plotted.
type ProfileConfig struct {
	From   [3]float64 `yaml:"from"`
	To     [3]float64 `yaml:"to"`
	Points int        `yaml:"points" validate:"min=2"`
}

//OutputConfig contains the names of the output files. Empty names mean no output,
//except for Potentials, where it means the standard output.
type OutputConfig struct {
	Potentials string `yaml:"potentials"`
	Surface    string `yaml:"surface"`
	Dots       string `yaml:"dots"`
	Metrics    string `yaml:"metrics"`
	Plot       string `yaml:"plot"`
	Log        string `yaml:"log"`
}

//DefaultConfig returns a configuration with the default values of the library.
func DefaultConfig() *Config {
	return &Config{
		EpsI:        bem.DefaultEpsI,
		EpsO:        bem.DefaultEpsO,
		Ionic:       bem.DefaultIonic,
		Temperature: bem.DefaultTemp,
		Dots:        surf.DefaultDotOptions().Dots(),
		Triangles:   surf.DefaultSphereOptions().Target(),
	}
}

//LoadConfig reads the YAML file name on top of the default configuration.
func LoadConfig(name string) (*Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", name, err)
	}
	return c, nil
}

var validate = validator.New()

//Validate checks the configuration, returning the first problem found.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", e.Namespace())
		case "oneof":
			return fmt.Errorf("%s: must be one of %s, got %v", e.Namespace(), e.Param(), e.Value())
		case "min", "gt", "gte":
			return fmt.Errorf("%s: must be %s %s, got %v", e.Namespace(), e.Tag(), e.Param(), e.Value())
		default:
			return fmt.Errorf("%s: failed validation %q", e.Namespace(), e.Tag())
		}
	}
	return err
}

//flagOverrides registers in fs a flag for each scalar parameter of the configuration, and
//returns a function that, after fs is parsed, copies the explicitly set flags into a Config.
func flagOverrides(fs *flag.FlagSet) func(c *Config) {
	input := fs.String("input", "", "Input structure file")
	format := fs.String("format", "", "Format of the input (pqr, pdb, xyz or gro). Taken from the extension if not given")
	epsi := fs.Float64("epsin", bem.DefaultEpsI, "Dielectric constant inside the surface")
	epso := fs.Float64("epsout", bem.DefaultEpsO, "Dielectric constant of the solvent")
	ionic := fs.Float64("ionic", bem.DefaultIonic, "Ionic strength of the solvent, mol/L")
	temp := fs.Float64("temp", bem.DefaultTemp, "Temperature, K")
	dots := fs.Int("dots", 100, "Dots per atom sphere in the dotted surface")
	solvent := fs.Float64("solvent", 0, "Solvent radius added to the atomic radii, nm")
	tris := fs.Int("triangles", 960, "Minimum number of triangles in the surface")
	spherical := fs.Bool("spherical", false, "Use a spherical surface instead of mapping it on the molecule")
	radius := fs.Float64("radius", 0, "Radius of the spherical surface, nm. 0 means automatic")
	workers := fs.Int("workers", 0, "Number of concurrent workers. 0 means one per CPU")
	pot := fs.String("potentials", "", "Output file for the atomic potentials (default: standard output)")
	srf := fs.String("surface", "", "Output file for the triangulated surface (.gz or .zst for compression)")
	dotf := fs.String("dotsout", "", "Output file for the dotted surface")
	met := fs.String("metrics", "", "Output file for the metrics, in the Prometheus text format")
	plt := fs.String("plot", "", "Output file for the potential profile plot")
	logf := fs.String("log", "", "Log file (default: standard error)")
	return func(c *Config) {
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "input":
				c.Input = *input
			case "format":
				c.Format = *format
			case "epsin":
				c.EpsI = *epsi
			case "epsout":
				c.EpsO = *epso
			case "ionic":
				c.Ionic = *ionic
			case "temp":
				c.Temperature = *temp
			case "dots":
				c.Dots = *dots
			case "solvent":
				c.Solvent = *solvent
			case "triangles":
				c.Triangles = *tris
			case "spherical":
				c.Spherical = *spherical
			case "radius":
				c.Radius = *radius
			case "workers":
				c.Workers = *workers
			case "potentials":
				c.Output.Potentials = *pot
			case "surface":
				c.Output.Surface = *srf
			case "dotsout":
				c.Output.Dots = *dotf
			case "metrics":
				c.Output.Metrics = *met
			case "plot":
				c.Output.Plot = *plt
			case "log":
				c.Output.Log = *logf
			}
		})
	}
}

//parseArgs builds the configuration from the command line: an optional -config YAML file,
//overridden by any other flag given.
func parseArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("gobem", flag.ContinueOnError)
	cfgfile := fs.String("config", "", "YAML configuration file")
	override := flagOverrides(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c := DefaultConfig()
	if *cfgfile != "" {
		var err error
		if c, err = LoadConfig(*cfgfile); err != nil {
			return nil, err
		}
	}
	override(c)
	if c.Input == "" && fs.NArg() > 0 {
		c.Input = fs.Arg(0)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
