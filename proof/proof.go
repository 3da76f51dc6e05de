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

// Package proof assembles customer proofs from a set of plates.
//
// Two proofs are made for every job.  The high resolution proof is the
// composite of all plates, with a strip of colour swatches over its left
// edge.  The low resolution proof puts an optional approval box next to a
// (possibly cropped) composite, and prints the date and job details
// diagonally across the approval box.
package proof

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"time"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/plates"
)

// Options control the layout of the proofs.
type Options struct {
	// HighDPI and LowDPI give the resolution of the two proofs, in pixels
	// per inch.
	HighDPI float64
	LowDPI  float64

	// Crop, if non-zero, selects the part of the low resolution proof to
	// show.  Coordinates are in inches, measured from the top left corner
	// of the plates with y pointing down, so that LLx, LLy is the top left
	// corner of the crop and URx, URy the bottom right corner.
	Crop rect.Rect

	// Approval, if not nil, is drawn at the left of the low resolution
	// proof.
	Approval image.Image

	// Swatches enables the swatch strip.
	Swatches bool

	// JobInfo is printed after the date across the approval box.
	JobInfo string

	// Date is printed across the approval box.  If this is zero, the
	// current time is used.
	Date time.Time
}

// ErrEmptyCrop is returned by [Low] if the crop rectangle does not overlap
// the proof.
var ErrEmptyCrop = errors.New("crop rectangle outside the proof")

// Text on the approval box.
const (
	jobTextSize  = 36
	jobTextAngle = 45
	dateFormat   = "01-02-2006"
)

// High renders the high resolution proof.  The resolution must not exceed
// [MaxDPI].
//
// If a plate cannot be scaled, the proof is still returned, without any
// plates, together with the [*plates.ScaleError].
func High(set *plates.Set, swatches []Swatch, opt *Options) (*plates.RGB, error) {
	if err := checkDPI(opt.HighDPI); err != nil {
		return nil, err
	}
	img, err := set.Composite(opt.HighDPI)
	if img == nil {
		return nil, err
	}

	if opt.Swatches {
		strip, err := Swatches(swatches, opt.HighDPI, img.Height)
		if err != nil {
			return nil, err
		}
		draw.Draw(img, strip.Bounds(), strip, image.Point{}, draw.Src)
	}
	return img, err
}

// Low renders the low resolution proof.  If the two resolutions in opt
// agree, the composite is taken from high, which must be the result of
// [High] for the same set and options.
//
// Errors from compositing are handled as for [High].
func Low(set *plates.Set, high *plates.RGB, swatches []Swatch, opt *Options) (*image.RGBA, error) {
	if err := checkDPI(opt.LowDPI); err != nil {
		return nil, err
	}
	sameDPI := opt.LowDPI == opt.HighDPI

	var proof *plates.RGB
	var compErr error
	if sameDPI && high != nil {
		proof = high
	} else {
		proof, compErr = set.Composite(opt.LowDPI)
		if proof == nil {
			return nil, compErr
		}
	}

	src := proof.Bounds()
	cropped := !opt.Crop.IsZero()
	if cropped {
		src = image.Rect(
			inches(opt.Crop.LLx, opt.LowDPI), inches(opt.Crop.LLy, opt.LowDPI),
			inches(opt.Crop.URx, opt.LowDPI), inches(opt.Crop.URy, opt.LowDPI),
		).Intersect(proof.Bounds())
		if src.Empty() {
			return nil, ErrEmptyCrop
		}
	}

	var box image.Rectangle
	if opt.Approval != nil {
		box = opt.Approval.Bounds().Sub(opt.Approval.Bounds().Min)
	}

	w := src.Dx() + box.Dx()
	h := max(src.Dy(), box.Dy())
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	if opt.Approval != nil {
		draw.Draw(img, box, opt.Approval, opt.Approval.Bounds().Min, draw.Over)
	}

	// The proof is right aligned and centred vertically.
	dst := image.Rect(w-src.Dx(), (h-src.Dy())/2, w, (h-src.Dy())/2+src.Dy())
	draw.Draw(img, dst, proof, src.Min, draw.Src)

	// Unless the composite is reused from the high resolution proof with
	// its left edge intact, the swatches are missing.
	atOrigin := !cropped || (inches(opt.Crop.LLx, opt.LowDPI) == 0 && inches(opt.Crop.LLy, opt.LowDPI) == 0)
	if opt.Swatches && (!sameDPI || !atOrigin || high == nil) {
		strip, err := Swatches(swatches, opt.LowDPI, proof.Height)
		if err != nil {
			return nil, err
		}
		r := strip.Bounds().Add(image.Pt(box.Dx(), 0))
		draw.Draw(img, r, strip, image.Point{}, draw.Src)
	}

	if opt.Approval != nil {
		date := opt.Date
		if date.IsZero() {
			date = time.Now()
		}
		text := date.Format(dateFormat)
		if opt.JobInfo != "" {
			text += "    " + opt.JobInfo
		}
		cx := float64(box.Dx()) / 2
		cy := float64(box.Dy()) / 2
		err := drawText(img, text, jobTextSize, color.Black, jobTextAngle, cx, cy)
		if err != nil {
			return nil, err
		}
	}

	return img, compErr
}
