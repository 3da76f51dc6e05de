// seehuhn.de/go/plates - colour proofs from 1-bit separation plates
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package plates combines 1-bit separation plates into colour proofs.
//
// A [Set] holds an ordered list of plates.  Each plate is a
// [bitonal.Raster] together with the colour of its ink, a label, and a flag
// which says whether the plate takes part in compositing:
//
//	var s plates.Set
//	defer s.Close()
//	if err := s.Add("cyan.tif", "cyan"); err != nil {
//	    log.Fatal(err)
//	}
//	s.SetColor(0, color.RGBA{0, 174, 239, 255})
//	...
//	proof, err := s.Composite(300)
//
// [Set.Composite] scales all active plates to a common physical size and
// multiplies their ink colours into a white canvas, in plate order.
package plates

import (
	"image"
	"image/color"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"seehuhn.de/go/plates/bitonal"
)

// Set is an ordered collection of plates.
//
// The zero value is an empty set, ready to use.  A Set owns its rasters and
// closes them when plates are removed.  Plates are identified by their
// position; indices change when plates are removed.  Methods taking a plate
// index panic with an [*IndexError] if the index is out of range.
//
// A Set is not safe for concurrent use.
type Set struct {
	// Workers is the maximal number of plates scaled concurrently by
	// [Set.Composite].  If this is zero or negative, GOMAXPROCS is used.
	Workers int

	// Logger, if not nil, receives a warning when a plate cannot be scaled.
	Logger *zap.Logger

	plates []plate
}

type plate struct {
	raster *bitonal.Raster
	color  color.RGBA
	label  string
	active bool
}

// Add opens the raster file at path and appends it as an active plate.
// The new plate is black.  If the file cannot be loaded, the set is not
// changed and the error is a [*bitonal.LoadError].
func (s *Set) Add(path, label string) error {
	r, err := bitonal.Open(path)
	if err != nil {
		return err
	}
	s.AddRaster(r, label)
	return nil
}

// AddRaster appends r as an active, black plate.
// The set takes ownership of r.
func (s *Set) AddRaster(r *bitonal.Raster, label string) {
	s.plates = append(s.plates, plate{
		raster: r,
		color:  color.RGBA{A: 255},
		label:  label,
		active: true,
	})
}

// Len returns the number of plates.
func (s *Set) Len() int {
	return len(s.plates)
}

// Remove closes the raster of plate i and removes the plate from the set.
// The plate is removed even if closing fails.
func (s *Set) Remove(i int) error {
	s.check(i)
	err := s.plates[i].raster.Close()
	s.plates = slices.Delete(s.plates, i, i+1)
	return err
}

// RemoveAll closes all rasters and empties the set.
func (s *Set) RemoveAll() error {
	var err error
	for _, p := range s.plates {
		err = multierr.Append(err, p.raster.Close())
	}
	s.plates = nil
	return err
}

// Close releases all resources held by the set.
// This is the same as [Set.RemoveAll].
func (s *Set) Close() error {
	return s.RemoveAll()
}

// Raster returns the raster of plate i.
// The raster remains owned by the set.
func (s *Set) Raster(i int) *bitonal.Raster {
	s.check(i)
	return s.plates[i].raster
}

// Label returns the label of plate i.
func (s *Set) Label(i int) string {
	s.check(i)
	return s.plates[i].label
}

// SetActive sets whether plate i takes part in compositing.
func (s *Set) SetActive(i int, active bool) {
	s.check(i)
	s.plates[i].active = active
}

// IsActive reports whether plate i takes part in compositing.
func (s *Set) IsActive(i int) bool {
	s.check(i)
	return s.plates[i].active
}

// SetColor sets the ink colour of plate i.  The alpha channel is ignored.
func (s *Set) SetColor(i int, c color.RGBA) {
	s.check(i)
	c.A = 255
	s.plates[i].color = c
}

// Color returns the ink colour of plate i.
func (s *Set) Color(i int) color.RGBA {
	s.check(i)
	return s.plates[i].color
}

// MaxWidth returns the largest width, in pixels, of all plates.
// Inactive plates are included.
func (s *Set) MaxWidth() int {
	w := 0
	for _, p := range s.plates {
		w = max(w, p.raster.Width())
	}
	return w
}

// MaxHeight returns the largest height, in pixels, of all plates.
// Inactive plates are included.
func (s *Set) MaxHeight() int {
	h := 0
	for _, p := range s.plates {
		h = max(h, p.raster.Height())
	}
	return h
}

// PlateSize returns the size in pixels of plate i, when rendered at the
// given resolution in pixels per inch.
func (s *Set) PlateSize(i int, dpi float64) (w, h int) {
	s.check(i)
	r := s.plates[i].raster
	return atDPI(r.Width(), r.XDPI(), dpi), atDPI(r.Height(), r.YDPI(), dpi)
}

// CanvasSize returns the size in pixels of the canvas used by
// [Set.Composite] at the given resolution.  The canvas is large enough for
// every plate, active or not.
func (s *Set) CanvasSize(dpi float64) (w, h int) {
	for i := range s.plates {
		pw, ph := s.PlateSize(i, dpi)
		w = max(w, pw)
		h = max(h, ph)
	}
	return w, h
}

// atDPI converts a length of n pixels at resolution res to resolution dpi.
func atDPI(n int, res, dpi float64) int {
	// The small offset protects against results like 2999.9999999 in
	// place of 3000, caused by centimetre conversion.
	v := math.Floor(dpi*float64(n)/res + 1e-6)
	return int(min(v, math.MaxInt32))
}

// ScaleRegion downsamples a region of plate i to a w×h grid of ink levels.
//
// The region is given by two opposite corners, both included in the
// region, in any order.  See [bitonal.Raster.ScaleRegion] for details.
func (s *Set) ScaleRegion(i, x1, y1, x2, y2, w, h int) (*image.Alpha, error) {
	s.check(i)
	return s.plates[i].raster.ScaleRegion(cornerRect(x1, y1, x2, y2), w, h)
}

// Sample returns the ink coverage of a region of plate i, in percent.
//
// The region is given by two opposite corners, both included in the
// region, in any order.
func (s *Set) Sample(i, x1, y1, x2, y2 int) (float64, error) {
	s.check(i)
	return s.plates[i].raster.Sample(cornerRect(x1, y1, x2, y2))
}

// cornerRect returns the rectangle with inclusive corners (x1, y1) and
// (x2, y2).
func cornerRect(x1, y1, x2, y2 int) image.Rectangle {
	return image.Rect(min(x1, x2), min(y1, y2), max(x1, x2)+1, max(y1, y2)+1)
}

func (s *Set) check(i int) {
	if i < 0 || i >= len(s.plates) {
		panic(&IndexError{Index: i, Len: len(s.plates)})
	}
}
