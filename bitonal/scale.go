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
)

// onesInByte[b] is the number of set bits in b.
var onesInByte = func() (t [256]uint8) {
	for i := 1; i < 256; i++ {
		t[i] = t[i>>1] + uint8(i&1)
	}
	return t
}()

// span describes a run of pixels within a packed row.
//
// The run covers the bits selected by lead in byte first, whole complete
// bytes after that, and the bits selected by trail in the byte after the
// complete bytes.  Spans for adjacent pixel runs never select the same bit.
type span struct {
	first int
	lead  byte
	whole int
	trail byte

	pixels int
}

// makeSpan returns the span for the pixels x0, ..., x1-1.
func makeSpan(x0, x1 int) span {
	if x1 <= x0 {
		return span{}
	}

	first := x0 / 8
	last := (x1 - 1) / 8
	s := span{
		first:  first,
		lead:   0xFF >> (x0 % 8),
		pixels: x1 - x0,
	}
	if first == last {
		s.lead &= 0xFF << (7 - (x1-1)%8)
		return s
	}

	if e := x1 % 8; e == 0 {
		s.whole = last - first
	} else {
		s.whole = last - first - 1
		s.trail = 0xFF << (8 - e)
	}
	return s
}

// count returns the number of set bits of row inside the span.
func (s *span) count(row []byte) int {
	if s.pixels == 0 {
		return 0
	}

	p := row[s.first:]
	n := int(onesInByte[p[0]&s.lead])
	for _, b := range p[1 : 1+s.whole] {
		n += int(onesInByte[b])
	}
	if s.trail != 0 {
		n += int(onesInByte[p[1+s.whole]&s.trail])
	}
	return n
}

// blockSizes splits n input units into out blocks.
//
// If out < n, the blocks have size n/out or n/out+1, and the larger blocks
// are spread evenly.  Otherwise every block has size 1 and the blocks past
// the first n are left without input.
func blockSizes(n, out int) []int {
	inc, rem := 1, 0
	if n > out {
		inc, rem = n/out, n%out
	}

	res := make([]int, out)
	acc := 0
	for i := range res {
		acc += rem
		if acc >= out {
			acc -= out
			res[i] = inc + 1
		} else {
			res[i] = inc
		}
	}
	return res
}

// inkLevel converts the number of set bits in a block of the given area
// into an ink level in the range 0 (no ink) to 255 (fully inked).
func (r *Raster) inkLevel(set, area int) uint8 {
	ink := set
	if !r.zeroWhite {
		ink = area - set
	}
	return uint8((255*ink + area/2) / area)
}

// Scale downsamples the whole raster to a w×h grid of ink levels.
// See [Raster.ScaleRegion].
func (r *Raster) Scale(w, h int) (*image.Alpha, error) {
	return r.ScaleRegion(r.Bounds(), w, h)
}

// ScaleRegion downsamples a region of the raster to a w×h grid, using a box
// filter.
//
// Each sample of the result gives the ink coverage of its block of input
// pixels: 0 means no ink and 255 means fully inked, independent of the bit
// convention used by the file.  The region is canonicalized and clipped to
// the bounds of the raster.  If the region is narrower than w (or shorter
// than h), every input column (row) maps to one output column (row), and the
// remaining samples are 0.
func (r *Raster) ScaleRegion(region image.Rectangle, w, h int) (*image.Alpha, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if w <= 0 || h <= 0 || w > maxDimension || h > maxDimension ||
		int64(w)*int64(h) > maxOutputPixels {
		return nil, ErrInvalidSize
	}
	region = region.Canon().Intersect(r.Bounds())
	if region.Empty() {
		return nil, ErrEmptyRegion
	}

	spans := make([]span, w)
	x := region.Min.X
	for i, n := range blockSizes(region.Dx(), w) {
		end := min(x+n, region.Max.X)
		spans[i] = makeSpan(x, end)
		x = end
	}

	res := image.NewAlpha(image.Rect(0, 0, w, h))
	counts := make([]int, w)
	y := region.Min.Y
	for j, n := range blockSizes(region.Dy(), h) {
		n = min(n, region.Max.Y-y)
		if n <= 0 {
			break
		}

		clear(counts)
		for range n {
			row, err := r.row(y)
			if err != nil {
				return nil, err
			}
			for i := range spans {
				counts[i] += spans[i].count(row)
			}
			y++
		}

		out := res.Pix[j*res.Stride : j*res.Stride+w]
		for i := range spans {
			if area := spans[i].pixels * n; area > 0 {
				out[i] = r.inkLevel(counts[i], area)
			}
		}
	}
	return res, nil
}

// Sample returns the percentage of inked pixels inside a region.
//
// The region is canonicalized and clipped to the bounds of the raster.
// The result is in the range 0 to 100.
func (r *Raster) Sample(region image.Rectangle) (float64, error) {
	if r.closed {
		return 0, ErrClosed
	}
	region = region.Canon().Intersect(r.Bounds())
	if region.Empty() {
		return 0, ErrEmptyRegion
	}

	s := makeSpan(region.Min.X, region.Max.X)
	set := 0
	for y := region.Min.Y; y < region.Max.Y; y++ {
		row, err := r.row(y)
		if err != nil {
			return 0, err
		}
		set += s.count(row)
	}

	area := region.Dx() * region.Dy()
	ink := set
	if !r.zeroWhite {
		ink = area - set
	}
	return 100 * float64(ink) / float64(area), nil
}
