/*
 * srfio_test.go, part of gobem.
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

package surf

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

//sameSurface checks that b has the same geometry and connectivity as a.
func sameSurface(Te *testing.T, a, b *TriangulatedSurface) bool {
	if a.NVertices() != b.NVertices() || a.NTriangles() != b.NTriangles() || a.NEdges() != b.NEdges() {
		return false
	}
	for i, v := range a.Vertices() {
		w := b.Vertex(i)
		if r3.Norm(r3.Sub(v.Position(), w.Position())) > 1e-12 || r3.Norm(r3.Sub(v.Normal(), w.Normal())) > 1e-12 {
			return false
		}
	}
	for i, t := range a.Triangles() {
		if t.Vertices() != b.Triangles()[i].Vertices() {
			return false
		}
	}
	for i, e := range a.Edges() {
		a1, a2 := e.Vertices()
		b1, b2 := b.Edges()[i].Vertices()
		if a1 != b1 || a2 != b2 {
			return false
		}
	}
	return true
}

func TestTriangulatedRoundTrip(Te *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)
	properties.Property("write then read gives back the same surface", prop.ForAll(
		func(target int, radius float64) bool {
			ts := sphereSurface(Te, target, radius, r3.Vec{X: radius, Y: 1})
			var buf bytes.Buffer
			if _, err := ts.WriteTo(&buf); err != nil {
				return false
			}
			ts2, err := TriangulatedFromReader(&buf)
			if err != nil {
				return false
			}
			return sameSurface(Te, ts, ts2)
		},
		gen.OneConstOf(60, 240),
		gen.Float64Range(0.1, 10),
	))
	properties.TestingRun(Te)
}

func TestCompressedFiles(Te *testing.T) {
	ts := sphereSurface(Te, 240, 1.5, r3.Vec{})
	dir := Te.TempDir()
	for _, name := range []string{"s.tri", "s.tri.gz", "s.tri.zst"} {
		fname := filepath.Join(dir, name)
		require.NoError(Te, WriteTriangulated(ts, fname))
		ts2, err := ReadTriangulated(fname)
		require.NoError(Te, err, name)
		assert.True(Te, sameSurface(Te, ts, ts2), name)
	}
	g, err := NewDottedSurfaceGenerator(nil)
	require.NoError(Te, err)
	dots, err := g.Generate(ts.Positions(), make3(ts.NVertices(), 0.2))
	require.NoError(Te, err)
	for _, name := range []string{"s.dots", "s.dots.zst"} {
		fname := filepath.Join(dir, name)
		require.NoError(Te, WriteDotted(dots, fname))
		d2, err := ReadDotted(fname)
		require.NoError(Te, err, name)
		assert.Equal(Te, dots.NPoints(), d2.NPoints())
		assert.InDelta(Te, dots.Area, d2.Area, 1e-12)
		assert.InDelta(Te, dots.Volume, d2.Volume, 1e-12)
		assert.True(Te, mat.Equal(dots.Points, d2.Points))
	}
}

func make3(n int, v float64) []float64 {
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = v
	}
	return ret
}

func TestReadBadSurfaces(Te *testing.T) {
	bad := []string{
		"",
		"1\n1 0 0 1 0 0 1\n1\n1 1 2\n0\n",      //vertex id out of range
		"1\n2 0 0 1 0 0 1\n0\n0\n",             //id out of sequence
		"1\n1 0 0 1 0 0 0\n0\n0\n",             //zero normal
		"2\n1 0 0 1 0 0 1\n2 0 1 0 0 1 0\n1\n", //missing triangle
		"x\n",
	}
	for i, b := range bad {
		_, err := TriangulatedFromReader(strings.NewReader(b))
		assert.Error(Te, err, "case %d", i)
	}
	_, err := ReadTriangulated(filepath.Join(Te.TempDir(), "nonexistent.tri"))
	assert.Error(Te, err)
	_, err = DottedFromReader(strings.NewReader("2 1 1\n0 0 0\n"))
	assert.Error(Te, err)
}

func TestErrorTrail(Te *testing.T) {
	_, err := ReadTriangulated(filepath.Join(Te.TempDir(), "missing.srf"))
	require.Error(Te, err)
	e, ok := err.(Error)
	require.True(Te, ok)
	assert.Equal(Te, []string{"openFile", "ReadTriangulated"}, e.Decorate(""))
	assert.True(Te, e.Critical())
}
