/*
 * profile_test.go, part of gobem.
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

package bemplot

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	v3 "github.com/rmera/gobem/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func coulombProfile(Te *testing.T, name string, q float64) *Profile {
	pts, err := Line(r3.Vec{X: 0.2}, r3.Vec{X: 2.2}, 21)
	require.NoError(Te, err)
	vals := make([]float64, pts.NVecs())
	for i := range vals {
		vals[i] = 138.935458 * q / r3.Norm(pts.Vec(i))
	}
	p, err := NewProfile(name, pts, vals)
	require.NoError(Te, err)
	return p
}

func TestLine(Te *testing.T) {
	l, err := Line(r3.Vec{}, r3.Vec{X: 1, Y: 1}, 3)
	require.NoError(Te, err)
	require.Equal(Te, 3, l.NVecs())
	assert.InDelta(Te, 0.5, l.At(1, 0), 1e-12)
	assert.InDelta(Te, 1.0, l.At(2, 1), 1e-12)
	_, err = Line(r3.Vec{}, r3.Vec{X: 1}, 1)
	assert.Error(Te, err)
}

func TestProfile(Te *testing.T) {
	p := coulombProfile(Te, "q=1", 1)
	assert.InDelta(Te, 2.0, p.Distances[len(p.Distances)-1], 1e-12)
	xys := p.XYs()
	assert.Len(Te, xys, 21)
	assert.InDelta(Te, 0.1, xys[1].X, 1e-12)
	_, err := NewProfile("bad", v3.Zeros(2), []float64{1})
	assert.Error(Te, err)
}

func TestPlotOutput(Te *testing.T) {
	p1 := coulombProfile(Te, "q=1", 1)
	p2 := coulombProfile(Te, "q=-1", -1)
	_, err := Plot("empty", false)
	assert.Error(Te, err)
	pl, err := Plot("marked", true, p1, p2)
	require.NoError(Te, err)
	assert.Equal(Te, "Distance (nm)", pl.X.Label.Text)

	var buf bytes.Buffer
	require.NoError(Te, WriteTo(&buf, "png", "Coulomb", p1, p2))
	assert.True(Te, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	name := filepath.Join(Te.TempDir(), "profile.svg")
	require.NoError(Te, Save(name, "Coulomb", p1))
	info, err := os.Stat(name)
	require.NoError(Te, err)
	assert.Greater(Te, info.Size(), int64(0))
	assert.Equal(Te, "svg", Format(name))
	assert.Equal(Te, "png", Format("profile"))
}

func TestColors(Te *testing.T) {
	r, g, b := hsv2RGB(0, 1, 1)
	assert.Equal(Te, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})
	r, g, b = hsv2RGB(240, 1, 1)
	assert.Equal(Te, [3]uint8{0, 0, 255}, [3]uint8{r, g, b})
	r, g, b = hsv2RGB(math.Pi, 0, 0.5)
	assert.Equal(Te, r, g)
	assert.Equal(Te, g, b)
	seen := make(map[[3]uint8]bool)
	for k := 0; k < 5; k++ {
		r, g, b := colors(k, 5)
		seen[[3]uint8{r, g, b}] = true
	}
	assert.Len(Te, seen, 5)
}
