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
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"seehuhn.de/go/plates"
)

// Swatch is one ink of a job, as shown in the swatch strip.
type Swatch struct {
	Code  string
	Color color.RGBA
}

// Geometry of the swatch strip, in inches.
const (
	stripWidth   = 0.9
	swatchLeft   = 0.25
	swatchTop    = 1.0
	swatchWidth  = 0.5
	swatchHeight = 1.0
	swatchStep   = 1.5
	labelPoints  = 10.0
)

// DieCode is the code of the die line plate.  The die line is not an ink
// and gets no swatch.
const DieCode = "die"

// Swatches draws a strip of colour swatches, dpi pixels per inch, with the
// given height in pixels.  The strip is white, with one labelled swatch per
// entry of list, from top to bottom.  Entries with code [DieCode] are
// skipped.  Swatches which do not fit into the height are clipped.
func Swatches(list []Swatch, dpi float64, height int) (*image.RGBA, error) {
	if err := checkDPI(dpi); err != nil {
		return nil, err
	}
	width := inches(stripWidth, dpi)
	img := image.NewRGBA(image.Rect(0, 0, width, max(height, 0)))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	n := 0
	for _, sw := range list {
		if strings.EqualFold(sw.Code, DieCode) {
			continue
		}
		x0 := inches(swatchLeft, dpi)
		y0 := inches(swatchTop+swatchStep*float64(n), dpi)
		box := image.Rect(x0, y0, x0+inches(swatchWidth, dpi), y0+inches(swatchHeight, dpi))
		n++

		c := sw.Color
		c.A = 0xFF
		draw.Draw(img, box, image.NewUniform(c), image.Point{}, draw.Src)

		cx := float64(box.Min.X+box.Max.X) / 2
		cy := float64(box.Min.Y+box.Max.Y) / 2
		err := drawText(img, sw.Code, labelPoints*dpi/72, color.White, 90, cx, cy)
		if err != nil {
			return nil, err
		}
	}
	return img, nil
}

// inches converts a length in inches to pixels.
// MaxDPI is the highest resolution accepted for proofs and swatches.
const MaxDPI = 9600

func checkDPI(dpi float64) error {
	if !(dpi > 0) || dpi > MaxDPI {
		return fmt.Errorf("%w: %g dpi", plates.ErrInvalidDPI, dpi)
	}
	return nil
}

func inches(x, dpi float64) int {
	return int(math.Round(x * dpi))
}
