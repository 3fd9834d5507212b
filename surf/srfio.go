/*
 * srfio.go, part of gobem.
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
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/gobem/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//Surfaces are written in plain text. Files with names ending in .zst are compressed with zstd,
//and those ending in .gz with gzip.

//stdql adapts a zstd.Decoder, whose Close method returns nothing, to io.ReadCloser.
type stdql struct {
	*zstd.Decoder
}

func (s stdql) Close() error {
	s.Decoder.Close()
	return nil
}

//fileWriter is a (maybe compressed) writer to a file
type fileWriter struct {
	f *os.File
	c io.WriteCloser //nil if no compression
	w *bufio.Writer
}

func (F *fileWriter) Write(p []byte) (int, error) { return F.w.Write(p) }

//Close flushes everything and closes the file.
func (F *fileWriter) Close() error {
	err := F.w.Flush()
	if F.c != nil {
		if err2 := F.c.Close(); err == nil {
			err = err2
		}
	}
	if err2 := F.f.Close(); err == nil {
		err = err2
	}
	return err
}

func createFile(name string) (*fileWriter, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, &[]string{"createFile"}, true}
	}
	F := &fileWriter{f: f}
	lname := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lname, ".zst"):
		F.c, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	case strings.HasSuffix(lname, ".gz"):
		F.c, err = gzip.NewWriterLevel(f, gzip.BestCompression)
	}
	if err != nil {
		f.Close()
		return nil, Error{"can't create compressor " + err.Error(), name, &[]string{"createFile"}, true}
	}
	if F.c != nil {
		F.w = bufio.NewWriter(F.c)
	} else {
		F.w = bufio.NewWriter(f)
	}
	return F, nil
}

//fileReader is a (maybe compressed) reader from a file.
type fileReader struct {
	f *os.File
	c io.ReadCloser
}

func (F *fileReader) Read(p []byte) (int, error) {
	if F.c != nil {
		return F.c.Read(p)
	}
	return F.f.Read(p)
}

func (F *fileReader) Close() error {
	if F.c != nil {
		F.c.Close()
	}
	return F.f.Close()
}

func openFile(name string) (*fileReader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, &[]string{"openFile"}, true}
	}
	F := &fileReader{f: f}
	lname := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lname, ".zst"):
		var d *zstd.Decoder
		d, err = zstd.NewReader(f)
		if err == nil {
			F.c = stdql{d}
		}
	case strings.HasSuffix(lname, ".gz"):
		F.c, err = gzip.NewReader(f)
	}
	if err != nil {
		f.Close()
		return nil, Error{"can't create decompressor " + err.Error(), name, &[]string{"openFile"}, true}
	}
	return F, nil
}

/****Triangulated surfaces****/

//WriteTo writes the surface to w, in the following format:
//	<n_vertices>
//	<id> <x> <y> <z> <nx> <ny> <nz>
//	<n_triangles>
//	<v1_id> <v2_id> <v3_id>
//	<n_edges>
//	<v1_id> <v2_id>
//where the ids are the 1-based positions of the vertices.
func (S *TriangulatedSurface) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	write := func(format string, a ...any) error {
		n, err := fmt.Fprintf(bw, format, a...)
		total += int64(n)
		return err
	}
	errs := make([]error, 0, 3)
	errs = append(errs, write("%d\n", len(S.vertices)))
	for i, v := range S.vertices {
		errs = append(errs, write("%d %g %g %g %g %g %g\n", i+1, v.pos.X, v.pos.Y, v.pos.Z, v.normal.X, v.normal.Y, v.normal.Z))
	}
	errs = append(errs, write("%d\n", len(S.triangles)))
	for _, t := range S.triangles {
		errs = append(errs, write("%d %d %d\n", t.v[0]+1, t.v[1]+1, t.v[2]+1))
	}
	errs = append(errs, write("%d\n", len(S.edges)))
	for _, e := range S.edges {
		errs = append(errs, write("%d %d\n", e.v[0]+1, e.v[1]+1))
	}
	errs = append(errs, bw.Flush())
	for _, err := range errs {
		if err != nil {
			return total, Error{err.Error(), "", &[]string{"TriangulatedSurface.WriteTo"}, true}
		}
	}
	return total, nil
}

//WriteTriangulated writes S to the file name. See TriangulatedSurface.WriteTo for the format.
func WriteTriangulated(S *TriangulatedSurface, name string) error {
	F, err := createFile(name)
	if err != nil {
		return errDecorate(err, "WriteTriangulated")
	}
	_, err = S.WriteTo(F)
	if err2 := F.Close(); err == nil && err2 != nil {
		err = Error{err2.Error(), name, &[]string{"WriteTriangulated"}, true}
	}
	return errDecorate(err, "WriteTriangulated")
}

//ReadTriangulated reads a triangulated surface from the file name. See TriangulatedSurface.WriteTo
//for the format.
func ReadTriangulated(name string) (*TriangulatedSurface, error) {
	F, err := openFile(name)
	if err != nil {
		return nil, errDecorate(err, "ReadTriangulated")
	}
	defer F.Close()
	S, err := TriangulatedFromReader(F)
	if err != nil {
		if e, ok := err.(Error); ok {
			e.filename = name
			err = e
		}
		return nil, errDecorate(err, "ReadTriangulated")
	}
	return S, nil
}

//lineReader reads lines of whitespace-separated fields, skipping empty lines.
type lineReader struct {
	s      *bufio.Scanner
	lineno int
}

func (l *lineReader) next(caller string) ([]string, error) {
	for l.s.Scan() {
		l.lineno++
		f := strings.Fields(l.s.Text())
		if len(f) > 0 {
			return f, nil
		}
	}
	if err := l.s.Err(); err != nil {
		return nil, Error{err.Error(), "", &[]string{caller}, true}
	}
	return nil, Error{fmt.Sprintf("%s: unexpected end of file after line %d", ErrWrongFormat, l.lineno), "", &[]string{caller}, true}
}

//count reads a line with a single non-negative integer.
func (l *lineReader) count(caller string) (int, error) {
	f, err := l.next(caller)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(f[0])
	if err != nil || n < 0 || len(f) != 1 {
		return 0, Error{fmt.Sprintf("%s: line %d: expected a count", ErrWrongFormat, l.lineno), "", &[]string{caller}, true}
	}
	return n, nil
}

//floats reads a line with exactly len(dst) numbers.
func (l *lineReader) floats(dst []float64, caller string) error {
	f, err := l.next(caller)
	if err != nil {
		return err
	}
	if len(f) != len(dst) {
		return Error{fmt.Sprintf("%s: line %d: expected %d fields, found %d", ErrWrongFormat, l.lineno, len(dst), len(f)), "", &[]string{caller}, true}
	}
	for i, s := range f {
		dst[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			return Error{fmt.Sprintf("%s: line %d: %s", ErrWrongFormat, l.lineno, err.Error()), "", &[]string{caller}, true}
		}
	}
	return nil
}

//ids reads a line with exactly len(dst) vertex ids, between 1 and nv, and puts the corresponding
//0-based handles in dst.
func (l *lineReader) ids(dst []int, nv int, caller string) error {
	f, err := l.next(caller)
	if err != nil {
		return err
	}
	if len(f) != len(dst) {
		return Error{fmt.Sprintf("%s: line %d: expected %d ids, found %d", ErrWrongFormat, l.lineno, len(dst), len(f)), "", &[]string{caller}, true}
	}
	for i, s := range f {
		id, err := strconv.Atoi(s)
		if err != nil || id < 1 || id > nv {
			return Error{fmt.Sprintf("%s: line %d: invalid vertex id %q", ErrWrongFormat, l.lineno, s), "", &[]string{caller}, true}
		}
		dst[i] = id - 1
	}
	return nil
}

//TriangulatedFromReader reads a triangulated surface from r. The vertices get new unique ids.
func TriangulatedFromReader(r io.Reader) (*TriangulatedSurface, error) {
	const caller = "TriangulatedFromReader"
	l := &lineReader{s: bufio.NewScanner(r)}
	nv, err := l.count(caller)
	if err != nil {
		return nil, err
	}
	if nv == 0 {
		return nil, Error{ErrNoPoints, "", &[]string{caller}, true}
	}
	vertices := make([]Vertex, nv)
	fl := make([]float64, 7)
	for i := 0; i < nv; i++ {
		if err := l.floats(fl, caller); err != nil {
			return nil, err
		}
		if int(fl[0]) != i+1 {
			return nil, Error{fmt.Sprintf("%s: line %d: vertex id %v out of sequence", ErrWrongFormat, l.lineno, fl[0]), "", &[]string{caller}, true}
		}
		vertices[i], err = NewVertexWithNormal(r3.Vec{X: fl[1], Y: fl[2], Z: fl[3]}, r3.Vec{X: fl[4], Y: fl[5], Z: fl[6]})
		if err != nil {
			return nil, errDecorate(err, caller)
		}
	}
	nt, err := l.count(caller)
	if err != nil {
		return nil, err
	}
	tris := make([][3]int, nt)
	for i := range tris {
		if err := l.ids(tris[i][:], nv, caller); err != nil {
			return nil, err
		}
	}
	ne, err := l.count(caller)
	if err != nil {
		return nil, err
	}
	edges := make([][2]int, ne)
	for i := range edges {
		if err := l.ids(edges[i][:], nv, caller); err != nil {
			return nil, err
		}
	}
	S, err := newFromParts(vertices, tris, edges)
	if err != nil {
		return nil, errDecorate(err, caller)
	}
	return S, nil
}

/****Dotted surfaces****/

//WriteTo writes the dotted surface to w. The first line contains the number of points, the area and
//the volume, and the following ones the coordinates of each point.
func (s *Surface) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	n, err := fmt.Fprintf(bw, "%d %g %g\n", s.NPoints(), s.Area, s.Volume)
	total += int64(n)
	for i := 0; i < s.NPoints() && err == nil; i++ {
		p := s.Points.Vec(i)
		n, err = fmt.Fprintf(bw, "%g %g %g\n", p.X, p.Y, p.Z)
		total += int64(n)
	}
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		return total, Error{err.Error(), "", &[]string{"Surface.WriteTo"}, true}
	}
	return total, nil
}

//WriteDotted writes the dotted surface s to the file name.
func WriteDotted(s *Surface, name string) error {
	F, err := createFile(name)
	if err != nil {
		return errDecorate(err, "WriteDotted")
	}
	_, err = s.WriteTo(F)
	if err2 := F.Close(); err == nil && err2 != nil {
		err = Error{err2.Error(), name, &[]string{"WriteDotted"}, true}
	}
	return errDecorate(err, "WriteDotted")
}

//ReadDotted reads a dotted surface from the file name.
func ReadDotted(name string) (*Surface, error) {
	F, err := openFile(name)
	if err != nil {
		return nil, errDecorate(err, "ReadDotted")
	}
	defer F.Close()
	s, err := DottedFromReader(F)
	if err != nil {
		return nil, errDecorate(err, "ReadDotted "+name)
	}
	return s, nil
}

//DottedFromReader reads a dotted surface from r.
func DottedFromReader(r io.Reader) (*Surface, error) {
	const caller = "DottedFromReader"
	l := &lineReader{s: bufio.NewScanner(r)}
	head := make([]float64, 3)
	if err := l.floats(head, caller); err != nil {
		return nil, err
	}
	n := int(head[0])
	if n <= 0 || float64(n) != head[0] {
		return nil, Error{fmt.Sprintf("%s: invalid number of points %v", ErrWrongFormat, head[0]), "", &[]string{caller}, true}
	}
	data := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		if err := l.floats(data[3*i:3*i+3], caller); err != nil {
			return nil, err
		}
	}
	pts, err := v3.NewMatrix(data)
	if err != nil {
		return nil, Error{err.Error(), "", &[]string{caller}, true}
	}
	return &Surface{Points: pts, Area: head[1], Volume: head[2]}, nil
}
