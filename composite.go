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

package plates

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Limits for the canvas of [Set.Composite].
const (
	maxCanvasSide   = 1 << 20
	maxCanvasPixels = 1 << 28
)

// RGB is an opaque image with 8 bits per channel.  The pixel at (x, y)
// starts at Pix[3*(y*Width+x)], followed by its green and blue values.
type RGB struct {
	Width, Height int
	Pix           []uint8
}

// NewRGB returns a white w×h image.
func NewRGB(w, h int) *RGB {
	pix := make([]uint8, 3*w*h)
	for i := range pix {
		pix[i] = 0xFF
	}
	return &RGB{Width: w, Height: h, Pix: pix}
}

// ColorModel implements the [image.Image] interface.
func (img *RGB) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements the [image.Image] interface.
func (img *RGB) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// At implements the [image.Image] interface.
func (img *RGB) At(x, y int) color.Color {
	return img.RGBAAt(x, y)
}

// RGBAAt returns the colour of the pixel at (x, y).
func (img *RGB) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(img.Bounds())) {
		return color.RGBA{}
	}
	i := 3 * (y*img.Width + x)
	p := img.Pix[i : i+3 : i+3]
	return color.RGBA{p[0], p[1], p[2], 0xFF}
}

// Set implements the [draw.Image] interface.  Transparency is blended
// against the existing pixel.
func (img *RGB) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(img.Bounds())) {
		return
	}
	i := 3 * (y*img.Width + x)
	p := img.Pix[i : i+3 : i+3]

	r, g, b, a := c.RGBA()
	if a != 0xFFFF {
		inv := 0xFFFF - a
		r += uint32(p[0]) * 0x101 * inv / 0xFFFF
		g += uint32(p[1]) * 0x101 * inv / 0xFFFF
		b += uint32(p[2]) * 0x101 * inv / 0xFFFF
	}
	p[0] = uint8(r >> 8)
	p[1] = uint8(g >> 8)
	p[2] = uint8(b >> 8)
}

// Composite renders the active plates into one colour image, at the given
// resolution in pixels per inch.
//
// The canvas has size [Set.CanvasSize] and starts out white.  Every active
// plate is scaled to [Set.PlateSize], so that plates of different native
// resolution line up, and then blended into the canvas in plate order,
// aligned at the top left corner:
//
//	c = c * (tint*alpha + (1-alpha))
//
// where alpha is the ink level of the scaled plate and tint is the channel
// value of the plate colour, both as fractions of 255.
//
// If any active plate fails to scale, the returned canvas is entirely white
// and the error is a [*ScaleError].  Callers who prefer a blank proof to no
// proof can use the canvas regardless.  If the canvas itself would be too
// large, no canvas is returned and the error wraps [ErrInvalidDPI].
func (s *Set) Composite(dpi float64) (*RGB, error) {
	if !(dpi > 0) || math.IsInf(dpi, 0) {
		return nil, ErrInvalidDPI
	}

	w, h := s.CanvasSize(dpi)
	if w > maxCanvasSide || h > maxCanvasSide || int64(w)*int64(h) > maxCanvasPixels {
		return nil, fmt.Errorf("%w: %g dpi needs a %d×%d canvas", ErrInvalidDPI, dpi, w, h)
	}
	canvas := NewRGB(w, h)

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Plates are scaled in parallel.  Each goroutine only touches its own
	// plate and its own slot in grids.
	grids := make([]*image.Alpha, len(s.plates))
	g := &errgroup.Group{}
	g.SetLimit(workers)
	for i := range s.plates {
		if !s.plates[i].active {
			continue
		}
		pw, ph := s.PlateSize(i, dpi)
		p := &s.plates[i]
		g.Go(func() error {
			grid, err := p.raster.Scale(pw, ph)
			if err != nil {
				return &ScaleError{Index: i, Label: p.label, Err: err}
			}
			grids[i] = grid
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("plate not scaled, proof left blank",
				zap.Float64("dpi", dpi),
				zap.Error(err))
		}
		return canvas, err
	}

	for i, grid := range grids {
		if grid != nil {
			canvas.blend(grid, s.plates[i].color)
		}
	}
	return canvas, nil
}

// blend multiplies the colour c into the image, weighted by the ink levels
// in grid.  The grid is aligned with the top left corner of the image.
func (img *RGB) blend(grid *image.Alpha, c color.RGBA) {
	tint := [3]float64{
		float64(c.R) / 255,
		float64(c.G) / 255,
		float64(c.B) / 255,
	}

	b := grid.Bounds()
	w := min(b.Dx(), img.Width)
	h := min(b.Dy(), img.Height)
	for y := range h {
		src := grid.Pix[y*grid.Stride : y*grid.Stride+w]
		dst := img.Pix[3*y*img.Width : 3*(y*img.Width+w)]
		for x, v := range src {
			if v == 0 {
				continue
			}
			alpha := float64(v) / 255
			p := dst[3*x : 3*x+3 : 3*x+3]
			for k := range p {
				f := tint[k]*alpha + (1 - alpha)
				p[k] = uint8(math.Round(float64(p[k]) * f))
			}
		}
	}
}
