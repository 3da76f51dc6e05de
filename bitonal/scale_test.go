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
	"errors"
	"fmt"
	"image"
	"math"
	"math/bits"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOnesInByte(t *testing.T) {
	for i := range 256 {
		if int(onesInByte[i]) != bits.OnesCount8(uint8(i)) {
			t.Errorf("onesInByte[%d] = %d", i, onesInByte[i])
		}
	}
}

func TestBlockSizes(t *testing.T) {
	testCases := []struct {
		n, out int
		want   []int
	}{
		{10, 3, []int{3, 3, 4}},
		{10, 5, []int{2, 2, 2, 2, 2}},
		{7, 4, []int{1, 2, 2, 2}},
		{3, 5, []int{1, 1, 1, 1, 1}},
		{4, 4, []int{1, 1, 1, 1}},
		{1, 1, []int{1}},
	}
	for _, tc := range testCases {
		got := blockSizes(tc.n, tc.out)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("blockSizes(%d, %d) (-want +got):\n%s", tc.n, tc.out, diff)
		}
	}

	for n := 1; n < 60; n++ {
		for out := 1; out <= n; out++ {
			sizes := blockSizes(n, out)
			total := 0
			for _, k := range sizes {
				if k != n/out && k != n/out+1 {
					t.Fatalf("blockSizes(%d, %d): block of size %d", n, out, k)
				}
				total += k
			}
			if total != n {
				t.Fatalf("blockSizes(%d, %d) covers %d units", n, out, total)
			}
		}
	}
}

// TestSpanPartition checks that spans count every bit exactly once.
func TestSpanPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	row := make([]byte, 6)
	rng.Read(row)
	const width = 45

	bitCount := func(x0, x1 int) int {
		n := 0
		for x := x0; x < x1; x++ {
			if row[x/8]&(0x80>>(x%8)) != 0 {
				n++
			}
		}
		return n
	}

	for x0 := 0; x0 <= width; x0++ {
		for x1 := x0; x1 <= width; x1++ {
			s := makeSpan(x0, x1)
			if got, want := s.count(row), bitCount(x0, x1); got != want {
				t.Fatalf("span [%d,%d): counted %d bits, want %d", x0, x1, got, want)
			}
			if s.pixels != x1-x0 {
				t.Fatalf("span [%d,%d): %d pixels", x0, x1, s.pixels)
			}
		}
	}

	// neighbouring spans sharing a byte use disjoint masks
	a := makeSpan(0, 11)
	b := makeSpan(11, 13)
	c := makeSpan(13, 30)
	if a.trail&b.lead != 0 || b.lead&c.lead != 0 {
		t.Errorf("overlapping masks %08b %08b %08b", a.trail, b.lead, c.lead)
	}
}

// TestScaleIdentity checks that scaling a raster to its own size reproduces
// the individual pixels.
func TestScaleIdentity(t *testing.T) {
	b := randomBitmap(8, 29, 13)
	for _, inkIsZero := range []bool{false, true} {
		t.Run(fmt.Sprint(inkIsZero), func(t *testing.T) {
			r := openBytes(t, encodeBitmap(t, b, &EncodeOptions{
				RowsPerStrip: 3,
				InkIsZero:    inkIsZero,
			}))
			grid, err := r.Scale(b.Width, b.Height)
			if err != nil {
				t.Fatal(err)
			}
			for y := range b.Height {
				for x := range b.Width {
					want := uint8(0)
					if b.Ink(x, y) {
						want = 255
					}
					if got := grid.AlphaAt(x, y).A; got != want {
						t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestScaleBlocks(t *testing.T) {
	b := NewBitmap(16, 8)
	b.Fill(image.Rect(8, 0, 16, 8)) // right half
	b.Fill(image.Rect(0, 4, 4, 8))  // bottom left quarter of the left half
	r := openBytes(t, encodeBitmap(t, b, nil))

	grid, err := r.Scale(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{0, 255, 128, 255}
	if diff := cmp.Diff(want, grid.Pix); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
}

// TestScaleAgreesWithSample checks that the average of a scaled grid matches
// the direct coverage measurement of the same region.
func TestScaleAgreesWithSample(t *testing.T) {
	b := randomBitmap(9, 120, 90)
	b.Fill(image.Rect(30, 20, 70, 50))
	r := openBytes(t, encodeBitmap(t, b, &EncodeOptions{RowsPerStrip: 7}))

	testCases := []struct {
		region image.Rectangle
		w, h   int
	}{
		{image.Rect(0, 0, 120, 90), 12, 9},
		{image.Rect(3, 5, 63, 45), 6, 4},
		{image.Rect(17, 11, 97, 71), 10, 20},
		{image.Rect(25, 15, 75, 55), 50, 40},
	}
	for _, tc := range testCases {
		grid, err := r.ScaleRegion(tc.region, tc.w, tc.h)
		if err != nil {
			t.Fatal(err)
		}
		sum := 0.0
		for _, v := range grid.Pix {
			sum += float64(v)
		}
		avg := 100 * sum / 255 / float64(len(grid.Pix))

		direct, err := r.Sample(tc.region)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(avg-direct) > 0.5 {
			t.Errorf("%v: grid average %.3f, direct sample %.3f", tc.region, avg, direct)
		}
	}
}

func TestScaleUpsample(t *testing.T) {
	b := NewBitmap(10, 10)
	b.Fill(image.Rect(2, 2, 4, 4))
	r := openBytes(t, encodeBitmap(t, b, nil))

	grid, err := r.ScaleRegion(image.Rect(2, 2, 5, 5), 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{
		255, 255, 0, 0,
		255, 255, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}
	if diff := cmp.Diff(want, grid.Pix); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
}

func TestScaleErrors(t *testing.T) {
	r := openBytes(t, encodeBitmap(t, NewBitmap(10, 10), nil))

	sizes := [][2]int{
		{0, 5}, {5, 0}, {-1, 3},
		{maxDimension + 1, 1}, {1, math.MaxInt32}, {1 << 15, 1 << 15},
	}
	for _, size := range sizes {
		if _, err := r.Scale(size[0], size[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Scale(%d, %d): expected ErrInvalidSize, got %v", size[0], size[1], err)
		}
	}
	if _, err := r.ScaleRegion(image.Rect(20, 20, 30, 30), 2, 2); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("expected ErrEmptyRegion, got %v", err)
	}
	if _, err := r.Sample(image.Rect(-5, -5, 0, 0)); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("expected ErrEmptyRegion, got %v", err)
	}
}

func TestSample(t *testing.T) {
	b := NewBitmap(40, 30)
	b.Fill(image.Rect(10, 10, 20, 20))
	for _, inkIsZero := range []bool{false, true} {
		r := openBytes(t, encodeBitmap(t, b, &EncodeOptions{
			RowsPerStrip: 4,
			InkIsZero:    inkIsZero,
		}))

		testCases := []struct {
			region image.Rectangle
			want   float64
		}{
			{image.Rect(10, 10, 20, 20), 100},
			{image.Rect(0, 0, 10, 10), 0},
			{image.Rect(10, 10, 30, 20), 50},
			{image.Rect(15, 15, 25, 25), 25},
			{image.Rect(0, 0, 40, 30), 100 * 100.0 / 1200},
			{image.Rect(11, 12, 12, 13), 100},
			// corners given in reverse order
			{image.Rectangle{Min: image.Pt(20, 20), Max: image.Pt(10, 15)}, 100},
			// partly outside the raster
			{image.Rect(10, 10, 100, 20), 100.0 * 100 / 300},
		}
		for _, tc := range testCases {
			got, err := r.Sample(tc.region)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("%t: Sample(%v) = %g, want %g", inkIsZero, tc.region, got, tc.want)
			}
		}
	}
}

// TestSampleRange checks that coverage values stay within [0, 100].
func TestSampleRange(t *testing.T) {
	b := randomBitmap(10, 50, 50)
	r := openBytes(t, encodeBitmap(t, b, &EncodeOptions{
		RowsPerStrip: 6,
		InkIsZero:    true,
	}))
	rng := rand.New(rand.NewSource(11))
	for range 200 {
		region := image.Rect(rng.Intn(60)-5, rng.Intn(60)-5, rng.Intn(60)-5, rng.Intn(60)-5)
		cov, err := r.Sample(region)
		if errors.Is(err, ErrEmptyRegion) {
			continue
		} else if err != nil {
			t.Fatal(err)
		}
		if cov < 0 || cov > 100 {
			t.Fatalf("Sample(%v) = %g", region, cov)
		}
	}

	cov, err := r.Sample(r.Bounds())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(cov-b.Coverage()) > 1e-9 {
		t.Errorf("raster coverage %g, bitmap coverage %g", cov, b.Coverage())
	}
}
