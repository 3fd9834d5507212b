/*
 * trisurface_test.go, part of gobem.
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
	"log"
	"math"
	"os"
	"strings"
	"testing"

	v3 "github.com/rmera/gobem/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestContains(Te *testing.T) {
	c := r3.Vec{X: 0.5, Y: -0.2}
	ts := sphereSurface(Te, 240, 1.0, c)
	assert.InDelta(Te, 4*math.Pi, ts.SolidAngle(c), 1e-9)
	assert.InDelta(Te, 0.0, ts.SolidAngle(r3.Vec{X: 3}), 1e-9)
	assert.True(Te, ts.Contains(r3.Add(c, r3.Vec{Z: 0.9})))
	assert.False(Te, ts.Contains(r3.Add(c, r3.Vec{Z: 1.1})))
	pts := v3.FromVecs([]r3.Vec{c, {X: 3}, r3.Add(c, r3.Vec{X: -0.5, Y: 0.5}), {Y: -5, Z: 5}})
	assert.Equal(Te, []int{1, 3}, ts.Outside(pts))
	assert.Equal(Te, 0, ts.DegenerateTriangles())
}

func TestDegenerateTriangles(Te *testing.T) {
	//two coincident points give two zero-area faces.
	pts := v3.FromVecs([]r3.Vec{{X: 1}, {X: 1}, {Y: 1}, {Z: 1}})
	ts, err := TetrahedronTriangulator{}.Generate(pts)
	require.NoError(Te, err)
	assert.Equal(Te, 2, ts.DegenerateTriangles())
}

//A cloud that is far from star-shaped (six isolated points) makes many vertices
//collapse onto the same point. That has to be reported.
func TestCollapsedMappingWarning(Te *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	pts := v3.FromVecs([]r3.Vec{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1}})
	o := DefaultSphereOptions()
	o.Target(240)
	st, err := NewSphereTriangulator(o)
	require.NoError(Te, err)
	ts, err := st.Generate(pts)
	require.NoError(Te, err)
	z := ts.DegenerateTriangles()
	assert.Greater(Te, z, 0)
	assert.True(Te, strings.Contains(buf.String(), "zero area after mapping"), buf.String())

	buf.Reset()
	o.Spherical(true)
	_, err = st.Generate(pts)
	require.NoError(Te, err)
	assert.False(Te, strings.Contains(buf.String(), "zero area"))
}
