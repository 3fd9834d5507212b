/*
 * metrics.go, part of gobem.
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

//Package metrics keeps prometheus metrics for the different stages of a
//gobem calculation. All the methods of a nil *Registry are no-ops, so
//the calculation code can record metrics unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//Stage names
const (
	StageDots        = "dots"
	StageTriangulate = "triangulate"
	StageMap         = "map"
	StageKernels     = "kernels"
	StageRHS         = "rhs"
	StageSolve       = "solve"
	StageIntegrate   = "integrate"
)

//Registry holds the metrics of a calculation in its own prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	StageDuration  *prometheus.HistogramVec
	StageErrors    *prometheus.CounterVec
	SurfaceSize    *prometheus.GaugeVec
	SurfaceArea    prometheus.Gauge
	SurfaceVolume  prometheus.Gauge
	Solves         prometheus.Counter
	UnmappedVertex prometheus.Counter
}

//NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	f := promauto.With(r.registry)
	r.StageDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gobem_stage_duration_seconds",
			Help:    "Duration of each stage of the calculation",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"stage"},
	)
	r.StageErrors = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobem_stage_errors_total",
			Help: "Number of failed stages",
		},
		[]string{"stage"},
	)
	r.SurfaceSize = f.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gobem_surface_elements",
			Help: "Number of vertices, triangles and edges of the last triangulated surface",
		},
		[]string{"element"},
	)
	r.SurfaceArea = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "gobem_surface_area_nm2",
			Help: "Area of the last surface built",
		},
	)
	r.SurfaceVolume = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "gobem_surface_volume_nm3",
			Help: "Volume enclosed by the last surface built",
		},
	)
	r.Solves = f.NewCounter(
		prometheus.CounterOpts{
			Name: "gobem_solves_total",
			Help: "Number of linear systems solved",
		},
	)
	r.UnmappedVertex = f.NewCounter(
		prometheus.CounterOpts{
			Name: "gobem_unmapped_vertices_total",
			Help: "Vertices that kept their spherical position because no surface point was found for them",
		},
	)
	return r
}

//Prometheus returns the underlying prometheus registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

//RecordStage records the duration of a stage, and whether it failed.
func (r *Registry) RecordStage(stage string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		r.StageErrors.WithLabelValues(stage).Inc()
	}
}

//Timer returns a function that, when called, records the time elapsed
//since Timer was called as the duration of stage. Use as:
//	done := r.Timer(metrics.StageSolve)
//	...
//	done(err)
func (r *Registry) Timer(stage string) func(err error) {
	start := time.Now()
	return func(err error) {
		r.RecordStage(stage, time.Since(start), err)
	}
}

//SetSurface records the sizes of a triangulated surface.
func (r *Registry) SetSurface(vertices, triangles, edges int) {
	if r == nil {
		return
	}
	r.SurfaceSize.WithLabelValues("vertices").Set(float64(vertices))
	r.SurfaceSize.WithLabelValues("triangles").Set(float64(triangles))
	r.SurfaceSize.WithLabelValues("edges").Set(float64(edges))
}

//SetGeometry records area and volume of a surface.
func (r *Registry) SetGeometry(area, volume float64) {
	if r == nil {
		return
	}
	r.SurfaceArea.Set(area)
	r.SurfaceVolume.Set(volume)
}

//IncSolves counts a linear solve.
func (r *Registry) IncSolves() {
	if r == nil {
		return
	}
	r.Solves.Inc()
}

//AddUnmapped adds n to the count of unmapped vertices.
func (r *Registry) AddUnmapped(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.UnmappedVertex.Add(float64(n))
}

//WriteToTextfile writes the metrics in the prometheus text format to the file name,
//so it can be collected by the node exporter.
func (r *Registry) WriteToTextfile(name string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(name, r.registry)
}
