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

package proof

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// drawText draws s onto dst, using Go Regular at the given size in pixels.
// The text is rotated counter-clockwise by angle degrees about its centre,
// and the centre is placed at (cx, cy).
func drawText(dst draw.Image, s string, size float64, c color.Color, angle, cx, cy float64) error {
	if s == "" {
		return nil
	}

	f, err := goRegular()
	if err != nil {
		return err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return err
	}
	defer face.Close()

	d := &font.Drawer{
		Src:  image.NewUniform(c),
		Face: face,
	}
	m := face.Metrics()
	w := d.MeasureString(s).Ceil()
	h := (m.Ascent + m.Descent).Ceil()
	if w <= 0 || h <= 0 {
		return nil
	}
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	d.Dst = tmp
	d.Dot = fixed.Point26_6{Y: m.Ascent}
	d.DrawString(s)

	// With y pointing down, a counter-clockwise rotation maps the offset
	// (dx, dy) to (cos*dx + sin*dy, -sin*dx + cos*dy).
	theta := angle * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	tx, ty := float64(w)/2, float64(h)/2
	s2d := f64.Aff3{
		cos, sin, cx - cos*tx - sin*ty,
		-sin, cos, cy + sin*tx - cos*ty,
	}
	xdraw.BiLinear.Transform(dst, s2d, tmp, tmp.Bounds(), draw.Over, nil)
	return nil
}
