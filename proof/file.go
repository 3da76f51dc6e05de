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
	"bufio"
	"fmt"
	"image"
	_ "image/gif" // approval boxes
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"go.uber.org/multierr"
	_ "golang.org/x/image/bmp" // approval boxes
	"golang.org/x/image/tiff"
)

// Format is an output file format.
type Format int

// These are the supported output formats.
const (
	JPEG Format = iota
	PNG
	TIFF
)

// DefaultQuality is the JPEG quality used for proofs.
const DefaultQuality = 75

// ParseFormat converts a format name like "jpeg" to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "tiff", "tif":
		return TIFF, nil
	}
	return 0, fmt.Errorf("unknown image format %q", name)
}

func (f Format) String() string {
	switch f {
	case JPEG:
		return "jpeg"
	case PNG:
		return "png"
	case TIFF:
		return "tiff"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the file name extension for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case PNG:
		return ".png"
	case TIFF:
		return ".tif"
	default:
		return ".jpg"
	}
}

// Write stores img in a new file.  The quality is only used for JPEG
// output; zero selects [DefaultQuality].
func Write(path string, img image.Image, format Format, quality int) (err error) {
	if quality <= 0 {
		quality = DefaultQuality
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	w := bufio.NewWriter(f)
	switch format {
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case PNG:
		err = png.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = fmt.Errorf("unknown image format %d", int(format))
	}
	if err != nil {
		return err
	}
	return w.Flush()
}

// LoadImage reads an approval box image.  PNG, JPEG, GIF, BMP and TIFF
// files are supported.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
