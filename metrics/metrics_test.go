/*
 * metrics_test.go, part of gobem.
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

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilRegistry(Te *testing.T) {
	var r *Registry
	r.RecordStage(StageSolve, time.Second, nil)
	r.SetSurface(1, 2, 3)
	r.IncSolves()
	r.AddUnmapped(4)
	r.Timer(StageRHS)(nil)
	assert.Nil(Te, r.Prometheus())
	assert.NoError(Te, r.WriteToTextfile(filepath.Join(Te.TempDir(), "nothing.prom")))
}

func TestRecordStage(Te *testing.T) {
	r := NewRegistry()
	r.RecordStage(StageKernels, 10*time.Millisecond, nil)
	r.RecordStage(StageKernels, 20*time.Millisecond, errors.New("failed"))
	c, err := r.StageErrors.GetMetricWithLabelValues(StageKernels)
	require.NoError(Te, err)
	var m dto.Metric
	require.NoError(Te, c.Write(&m))
	assert.Equal(Te, 1.0, m.Counter.GetValue())

	families, err := r.Prometheus().Gather()
	require.NoError(Te, err)
	found := false
	for _, f := range families {
		if f.GetName() == "gobem_stage_duration_seconds" {
			found = true
			assert.Equal(Te, uint64(2), f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
	assert.True(Te, found, "stage duration histogram not gathered")
}

func TestSurfaceAndSolves(Te *testing.T) {
	r := NewRegistry()
	r.SetSurface(32, 60, 90)
	r.IncSolves()
	r.IncSolves()
	r.AddUnmapped(3)
	g, err := r.SurfaceSize.GetMetricWithLabelValues("edges")
	require.NoError(Te, err)
	var m dto.Metric
	require.NoError(Te, g.Write(&m))
	assert.Equal(Te, 90.0, m.Gauge.GetValue())
	var s dto.Metric
	require.NoError(Te, r.Solves.Write(&s))
	assert.Equal(Te, 2.0, s.Counter.GetValue())

	name := filepath.Join(Te.TempDir(), "gobem.prom")
	require.NoError(Te, r.WriteToTextfile(name))
	data, err := os.ReadFile(name)
	require.NoError(Te, err)
	assert.True(Te, strings.Contains(string(data), "gobem_unmapped_vertices_total 3"))
}
