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

package bitonal

import (
	"image"
	"image/color"
)

// Bitmap is a 1-bit image held in memory.
//
// Rows are packed most significant bit first, each row starting on a new
// byte.  A set bit always represents ink.  Bits past the right edge of a row
// are zero.
type Bitmap struct {
	Width, Height int
	Stride        int
	Pix           []byte
}

// NewBitmap allocates a w×h bitmap without ink.
func NewBitmap(w, h int) *Bitmap {
	stride := (w + 7) / 8
	return &Bitmap{
		Width:  w,
		Height: h,
		Stride: stride,
		Pix:    make([]byte, stride*h),
	}
}

// Ink reports whether the pixel at (x, y) is inked.
// Pixels outside the bitmap are never inked.
func (b *Bitmap) Ink(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Pix[y*b.Stride+x/8]&(0x80>>(x%8)) != 0
}

// SetInk sets or clears the pixel at (x, y).
// Coordinates outside the bitmap are ignored.
func (b *Bitmap) SetInk(x, y int, ink bool) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	idx := y*b.Stride + x/8
	mask := byte(0x80 >> (x % 8))
	if ink {
		b.Pix[idx] |= mask
	} else {
		b.Pix[idx] &^= mask
	}
}

// Fill inks all pixels inside rect.
func (b *Bitmap) Fill(rect image.Rectangle) {
	rect = rect.Intersect(b.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			b.SetInk(x, y, true)
		}
	}
}

// Coverage returns the percentage of inked pixels in the bitmap.
func (b *Bitmap) Coverage() float64 {
	if b.Width == 0 || b.Height == 0 {
		return 0
	}
	n := 0
	for _, v := range b.Pix {
		n += int(onesInByte[v])
	}
	return 100 * float64(n) / float64(b.Width*b.Height)
}

// ColorModel implements the [image.Image] interface.
func (b *Bitmap) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements the [image.Image] interface.
func (b *Bitmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At implements the [image.Image] interface.  Ink is black, everything else
// is white.
func (b *Bitmap) At(x, y int) color.Color {
	if b.Ink(x, y) {
		return color.Gray{Y: 0}
	}
	return color.Gray{Y: 255}
}

// clearPadding zeroes the bits past the right edge of every row.
func (b *Bitmap) clearPadding() {
	extra := b.Width % 8
	if extra == 0 || b.Stride == 0 {
		return
	}
	mask := byte(0xFF << (8 - extra))
	for y := range b.Height {
		b.Pix[y*b.Stride+b.Stride-1] &= mask
	}
}

// Bitmap returns a copy of the raster in which set bits represent ink.
func (r *Raster) Bitmap() (*Bitmap, error) {
	buf, n, err := r.ReadRawStrips()
	if err != nil {
		return nil, err
	}

	b := NewBitmap(r.width, r.height)
	copy(b.Pix, buf[:n])
	if !r.zeroWhite {
		for i, v := range b.Pix {
			b.Pix[i] = ^v
		}
	}
	b.clearPadding()
	return b, nil
}
