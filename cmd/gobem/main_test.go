/*
 * main_test.go, part of gobem.
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
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/gobem/bem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//a single ion with a 2 A radius.
const ionPQR = "ATOM      1  NA  ION     1       0.000   0.000   0.000  1.0000 2.0000\n"

func writeTemp(Te *testing.T, name, content string) string {
	name = filepath.Join(Te.TempDir(), name)
	require.NoError(Te, os.WriteFile(name, []byte(content), 0o644))
	return name
}

func TestParseArgs(Te *testing.T) {
	yml := "input: mol.pqr\neps_in: 2\nionic_strength: 0.15\ntriangles: 240\nradii:\n  C: 0.19\nprofile:\n  from: [0, 0, 0]\n  to: [1, 0, 0]\n  points: 11\noutput:\n  surface: out.srf.gz\n"
	name := writeTemp(Te, "gobem.yaml", yml)
	cfg, err := parseArgs([]string{"-config", name, "-triangles", "960", "-epsout", "80"})
	require.NoError(Te, err)
	assert.Equal(Te, "mol.pqr", cfg.Input)
	assert.Equal(Te, 2.0, cfg.EpsI)
	assert.Equal(Te, 80.0, cfg.EpsO, "flags override the file")
	assert.Equal(Te, 960, cfg.Triangles)
	assert.Equal(Te, 0.15, cfg.Ionic)
	assert.Equal(Te, bem.DefaultTemp, cfg.Temperature, "defaults are kept")
	assert.Equal(Te, 100, cfg.Dots)
	assert.Equal(Te, 0.19, cfg.Radii["C"])
	require.NotNil(Te, cfg.Profile)
	assert.Equal(Te, 11, cfg.Profile.Points)
	assert.Equal(Te, "out.srf.gz", cfg.Output.Surface)

	cfg, err = parseArgs([]string{"-ionic", "0.1", "other.pdb"})
	require.NoError(Te, err)
	assert.Equal(Te, "other.pdb", cfg.Input)
	assert.Equal(Te, 0.1, cfg.Ionic)
}

func TestValidate(Te *testing.T) {
	bad := map[string][]string{
		"Input":          {"-epsin", "2"},
		"Format":         {"-format", "mol2", "a.mol2"},
		"EpsI":           {"-epsin", "0", "a.pqr"},
		"Ionic":          {"-ionic", "-1", "a.pqr"},
		"Triangles":      {"-triangles", "30", "a.pqr"},
		"Dots":           {"-dots", "5", "a.pqr"},
		"Temperature":    {"-temp", "0", "a.pqr"},
		"Config.Workers": {"-workers", "-2", "a.pqr"},
	}
	for field, args := range bad {
		_, err := parseArgs(args)
		if assert.Error(Te, err, field) {
			assert.Contains(Te, err.Error(), field)
		}
	}
	name := writeTemp(Te, "bad.yaml", "input: a.pqr\nradii:\n  C: -1\n")
	_, err := parseArgs([]string{"-config", name})
	assert.Error(Te, err)
	name = writeTemp(Te, "bad2.yaml", "input: a.pqr\nprofile:\n  points: 1\n")
	_, err = parseArgs([]string{"-config", name})
	assert.Error(Te, err)
	_, err = parseArgs([]string{"-config", filepath.Join(Te.TempDir(), "nothere.yaml")})
	assert.Error(Te, err)
}

func TestRunIon(Te *testing.T) {
	dir := Te.TempDir()
	cfg := DefaultConfig()
	cfg.Input = writeTemp(Te, "ion.pqr", ionPQR)
	cfg.Dots = 1000
	cfg.Triangles = 240
	cfg.Profile = &ProfileConfig{From: [3]float64{0, 0, 0}, To: [3]float64{0.1, 0, 0}, Points: 5}
	cfg.Output = OutputConfig{
		Surface: filepath.Join(dir, "ion.srf.zst"),
		Dots:    filepath.Join(dir, "ion.dots"),
		Metrics: filepath.Join(dir, "ion.prom"),
		Plot:    filepath.Join(dir, "ion.png"),
	}
	require.NoError(Te, cfg.Validate())
	res, err := compute(context.Background(), cfg, nil)
	require.NoError(Te, err)
	born := bem.K * (1/cfg.EpsO - 1/cfg.EpsI) / 0.2
	require.Len(Te, res.Reaction, 1)
	assert.InEpsilon(Te, born, res.Reaction[0], 0.15)
	assert.InDelta(Te, 0.5*res.Reaction[0], res.Energy, 1e-9)
	assert.Equal(Te, 0.0, res.Coulomb[0], "no self term")
	assert.Equal(Te, 0.0, res.Kappa)
	require.NotNil(Te, res.Profile)
	assert.Len(Te, res.Profile.Values, 5)
	assert.InDelta(Te, 0.1, res.Profile.Distances[4], 1e-12)
	//the profile starts at the atom, so both potentials must be the same.
	assert.InDelta(Te, res.Reaction[0], res.Profile.Values[0], 1e-9)

	var buf bytes.Buffer
	require.NoError(Te, run(context.Background(), cfg, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.True(Te, strings.HasPrefix(lines[0], "# kappa"))
	assert.True(Te, strings.HasPrefix(lines[2], "1 NA 1.0000"))
	assert.Len(Te, lines, 3+1+5)
	for _, f := range []string{cfg.Output.Surface, cfg.Output.Dots, cfg.Output.Metrics, cfg.Output.Plot} {
		info, err := os.Stat(f)
		if assert.NoError(Te, err) {
			assert.Greater(Te, info.Size(), int64(0), f)
		}
	}
	prom, err := os.ReadFile(cfg.Output.Metrics)
	require.NoError(Te, err)
	assert.Contains(Te, string(prom), "gobem_solves_total 1")
}

func TestExitCodesAndFiles(Te *testing.T) {
	defer log.SetOutput(os.Stderr)
	dir := Te.TempDir()
	in := writeTemp(Te, "ion.pqr", ionPQR)
	logname := filepath.Join(dir, "gobem.log")
	potname := filepath.Join(dir, "pot.dat")
	code := gobem([]string{"-log", logname, "-potentials", potname, "-triangles", "60", "-dots", "200", in})
	assert.Equal(Te, 0, code)
	logdata, err := os.ReadFile(logname)
	require.NoError(Te, err)
	assert.Contains(Te, string(logdata), "Solvation energy")
	pot, err := os.ReadFile(potname)
	require.NoError(Te, err)
	assert.True(Te, strings.HasPrefix(string(pot), "# kappa"))

	assert.Equal(Te, 2, gobem([]string{"-triangles", "10", in}))
	assert.Equal(Te, 0, gobem([]string{"-h"}))

	//a failed calculation still leaves its error in the log file.
	code = gobem([]string{"-log", logname, filepath.Join(dir, "missing.pqr")})
	assert.Equal(Te, 1, code)
	logdata, err = os.ReadFile(logname)
	require.NoError(Te, err)
	assert.Contains(Te, string(logdata), "missing.pqr")
}
