/*
 * profile.go, part of gobem.
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

//Package bemplot produces plots of potential profiles, that is, potentials
//computed on points along a path (usually a straight line through the molecule).
package bemplot

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	v3 "github.com/rmera/gobem/v3"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

//Line returns n points evenly spaced on the segment from a to b, both included.
func Line(a, b r3.Vec, n int) (*v3.Matrix, error) {
	if n < 2 {
		return nil, Error{fmt.Sprintf("need at least 2 points for a line, got %d", n), &[]string{"Line"}}
	}
	ret := v3.Zeros(n)
	step := r3.Scale(1/float64(n-1), r3.Sub(b, a))
	for i := 0; i < n; i++ {
		ret.SetVec(i, r3.Add(a, r3.Scale(float64(i), step)))
	}
	return ret, nil
}

//Profile is a set of values along a path. Distances are measured along the path, from its first point.
type Profile struct {
	Name      string
	Distances []float64
	Values    []float64
}

//NewProfile returns a profile with the values on the given points, in order.
func NewProfile(name string, points *v3.Matrix, values []float64) (*Profile, error) {
	if points == nil || points.NVecs() != len(values) {
		return nil, Error{fmt.Sprintf("profile %s: points and values don't match", name), &[]string{"NewProfile"}}
	}
	p := &Profile{Name: name, Distances: make([]float64, len(values)), Values: values}
	for i := 1; i < len(values); i++ {
		p.Distances[i] = p.Distances[i-1] + v3.Distance(points.Vec(i), points.Vec(i-1))
	}
	return p, nil
}

//XYs returns the profile in the form gonum/plot plotters use.
func (P *Profile) XYs() plotter.XYs {
	ret := make(plotter.XYs, len(P.Values))
	for i, v := range P.Values {
		ret[i].X = P.Distances[i]
		ret[i].Y = v
	}
	return ret
}

//Plot returns a plot with one line per profile, each in a different color. If marks is true, each
//point of the profiles gets a glyph, too.
func Plot(title string, marks bool, profiles ...*Profile) (*plot.Plot, error) {
	if len(profiles) == 0 {
		return nil, Error{"no profiles to plot", &[]string{"Plot"}}
	}
	p := plot.New()
	p.Title.Padding = vg.Millimeter * 3
	p.Title.Text = title
	p.X.Label.Text = "Distance (nm)"
	p.Y.Label.Text = "Potential (kJ/mol/e)"
	p.Add(plotter.NewGrid())
	for k, pr := range profiles {
		if pr == nil {
			return nil, Error{fmt.Sprintf("profile %d is nil", k), &[]string{"Plot"}}
		}
		r, g, b := colors(k, len(profiles))
		c := color.RGBA{R: r, G: g, B: b, A: 255}
		xys := pr.XYs()
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, Error{err.Error(), &[]string{"plotter.NewLine", "Plot"}}
		}
		l.LineStyle.Color = c
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		if pr.Name != "" {
			p.Legend.Add(pr.Name, l)
		}
		if !marks {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, Error{err.Error(), &[]string{"plotter.NewScatter", "Plot"}}
		}
		s.GlyphStyle.Shape = shape(k)
		s.GlyphStyle.Color = c
		p.Add(s)
	}
	return p, nil
}

//Save plots the profiles and writes the plot to filename. The format (png, svg, pdf...)
//is taken from the extension of the name.
func Save(filename, title string, profiles ...*Profile) error {
	p, err := Plot(title, false, profiles...)
	if err != nil {
		return errDecorate(err, "Save")
	}
	if err := p.Save(5*vg.Inch, 4*vg.Inch, filename); err != nil {
		return Error{err.Error(), &[]string{"plot.Save", "Save"}}
	}
	return nil
}

//WriteTo plots the profiles and writes the plot to w in the given format ("png", "svg"...).
func WriteTo(w io.Writer, format, title string, profiles ...*Profile) error {
	p, err := Plot(title, false, profiles...)
	if err != nil {
		return errDecorate(err, "WriteTo")
	}
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(5*vg.Inch, 4*vg.Inch, format)
	if err != nil {
		return Error{err.Error(), &[]string{"plot.WriterTo", "WriteTo"}}
	}
	if _, err = wt.WriteTo(w); err != nil {
		return Error{err.Error(), &[]string{"WriteTo"}}
	}
	return nil
}

//Format returns the plot format for a file name, png if there is no extension.
func Format(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "png"
	}
	return ext
}

func shape(k int) draw.GlyphDrawer {
	switch k % 4 {
	case 0:
		return draw.CircleGlyph{}
	case 1:
		return draw.SquareGlyph{}
	case 2:
		return draw.PyramidGlyph{}
	default:
		return draw.CrossGlyph{}
	}
}

//Error is the error type of the bemplot package.
type Error struct {
	message string
	deco    *[]string
}

func (err Error) Error() string { return "gobem/bemplot: " + err.message }

//Decorate adds information to the error
func (err Error) Decorate(deco string) []string {
	if err.deco == nil {
		return nil
	}
	if deco != "" {
		*err.deco = append(*err.deco, deco)
	}
	return *err.deco
}

func errDecorate(err error, caller string) error {
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
		return e
	}
	return err
}
