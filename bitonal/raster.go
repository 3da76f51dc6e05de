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

// Package bitonal gives access to 1-bit separation plates stored as strip
// organised TIFF files.
//
// A [Raster] is opened with [Open] and gives access to the packed pixel
// data.  The methods [Raster.ScaleRegion] and [Raster.Sample] measure ink
// coverage, either as a grid of 8-bit values or as a single percentage.
//
// The PhotometricInterpretation tag of plate files is not reliable.
// Instead, the polarity of a raster is determined from its top left pixel,
// which is assumed to be white.  All coverage values reported by this
// package refer to ink, independent of the bit convention used in the file.
package bitonal

import (
	"fmt"
	"image"
	"io"
	"os"
)

// Unit is the unit of the resolution values of a raster.
type Unit uint16

// These are the resolution units defined by TIFF.
const (
	Inch       Unit = 2
	Centimeter Unit = 3
)

func (u Unit) String() string {
	switch u {
	case Inch:
		return "inch"
	case Centimeter:
		return "cm"
	default:
		return fmt.Sprintf("Unit(%d)", uint16(u))
	}
}

// Compression is a TIFF compression scheme.
type Compression uint16

// These are the compression schemes known to this package.
const (
	CompressionNone       Compression = 1
	CompressionCCITTRLE   Compression = 2
	CompressionG3         Compression = 3
	CompressionG4         Compression = 4
	CompressionLZW        Compression = 5
	CompressionDeflate    Compression = 8
	CompressionPackBits   Compression = 32773
	CompressionDeflateOld Compression = 32946
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionCCITTRLE:
		return "CCITT RLE"
	case CompressionG3:
		return "CCITT G3"
	case CompressionG4:
		return "CCITT G4"
	case CompressionLZW:
		return "LZW"
	case CompressionDeflate, CompressionDeflateOld:
		return "Deflate"
	case CompressionPackBits:
		return "PackBits"
	default:
		return fmt.Sprintf("Compression(%d)", uint16(c))
	}
}

// Raster is a 1-bit image, read strip by strip from a TIFF file.
//
// A Raster is not safe for concurrent use.
type Raster struct {
	r      io.ReaderAt
	closer io.Closer
	closed bool

	width, height int
	xRes, yRes    float64
	unit          Unit

	stride       int
	rowsPerStrip int
	offsets      []uint64
	counts       []uint64

	compression Compression
	photometric uint64
	fillOrder   uint64

	zeroWhite bool

	cache stripCache
	raw   []byte
}

// Open opens the TIFF file at path.
// Any error is of type *LoadError.
func Open(path string) (*Raster, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	r, err := NewRaster(fd)
	if err != nil {
		fd.Close()
		return nil, &LoadError{Path: path, Err: err}
	}
	r.closer = fd
	return r, nil
}

// NewRaster reads the first image of a TIFF file from src.
//
// If src implements io.Closer, it is not closed by [Raster.Close].
func NewRaster(src io.ReaderAt) (*Raster, error) {
	d, err := readIFD(src)
	if err != nil {
		return nil, err
	}

	r := &Raster{r: src}
	if err := r.setup(d); err != nil {
		return nil, err
	}

	// The top left pixel of a plate is always white.  This fixes the
	// meaning of the bits for the whole raster.
	row, err := r.row(0)
	if err != nil {
		return nil, err
	}
	r.zeroWhite = row[0]&0x80 == 0

	return r, nil
}

func (r *Raster) setup(d *ifd) error {
	if d.has(tagTileWidth) {
		return unsupported("tiled images")
	}

	width, err := d.int(tagImageWidth, 0)
	if err != nil {
		return err
	}
	height, err := d.int(tagImageLength, 0)
	if err != nil {
		return err
	}
	if width == 0 || height == 0 {
		return malformed(0, "missing image dimensions")
	}
	if width > maxDimension || height > maxDimension {
		return unsupported("image size %dx%d", width, height)
	}
	r.width = int(width)
	r.height = int(height)
	r.stride = (r.width + 7) / 8

	bps, err := d.ints(tagBitsPerSample)
	if err != nil {
		return err
	}
	for _, b := range bps {
		if b != 1 {
			return unsupported("%d bits per sample", b)
		}
	}
	spp, err := d.int(tagSamplesPerPixel, 1)
	if err != nil {
		return err
	}
	if spp != 1 {
		return unsupported("%d samples per pixel", spp)
	}
	if pred, err := d.int(tagPredictor, 1); err != nil {
		return err
	} else if pred != 1 {
		return unsupported("predictor %d", pred)
	}
	// With one sample per pixel both layouts store the same bytes.
	if pc, err := d.int(tagPlanarConfiguration, 1); err != nil {
		return err
	} else if pc != 1 && pc != 2 {
		return malformed(0, "invalid PlanarConfiguration")
	}

	comp, err := d.int(tagCompression, uint64(CompressionNone))
	if err != nil {
		return err
	}
	r.compression = Compression(comp)
	switch r.compression {
	case CompressionNone, CompressionG4, CompressionLZW,
		CompressionDeflate, CompressionDeflateOld, CompressionPackBits:
		// pass
	case CompressionG3:
		opt, err := d.int(tagT4Options, 0)
		if err != nil {
			return err
		}
		if opt&1 != 0 {
			return unsupported("two-dimensional CCITT G3 coding")
		}
	default:
		return unsupported("compression %s", r.compression)
	}

	r.photometric, err = d.int(tagPhotometricInterpretation, 0)
	if err != nil {
		return err
	}
	if r.photometric > 1 {
		return unsupported("photometric interpretation %d", r.photometric)
	}
	r.fillOrder, err = d.int(tagFillOrder, 1)
	if err != nil {
		return err
	}
	if r.fillOrder != 1 && r.fillOrder != 2 {
		return malformed(0, "invalid fill order")
	}

	if err := r.setupResolution(d); err != nil {
		return err
	}
	return r.setupStrips(d)
}

func (r *Raster) setupResolution(d *ifd) error {
	unit, err := d.int(tagResolutionUnit, uint64(Inch))
	if err != nil {
		return err
	}
	switch Unit(unit) {
	case Centimeter:
		r.unit = Centimeter
	default:
		// "no absolute unit" is treated like inches
		r.unit = Inch
	}

	r.xRes, err = d.rational(tagXResolution, 72)
	if err != nil {
		return err
	}
	r.yRes, err = d.rational(tagYResolution, r.xRes)
	if err != nil {
		return err
	}
	if !positive(r.xRes) || !positive(r.yRes) {
		return malformed(0, "invalid resolution")
	}
	return nil
}

func (r *Raster) setupStrips(d *ifd) error {
	rps, err := d.int(tagRowsPerStrip, uint64(r.height))
	if err != nil {
		return err
	}
	if rps == 0 {
		return malformed(0, "invalid RowsPerStrip")
	}
	r.rowsPerStrip = int(min(rps, uint64(r.height)))
	if r.rowsPerStrip*r.stride > maxStripBytes {
		return unsupported("strips of %d rows", r.rowsPerStrip)
	}

	numStrips := (r.height + r.rowsPerStrip - 1) / r.rowsPerStrip
	if numStrips > maxStrips {
		return unsupported("%d strips", numStrips)
	}

	r.offsets, err = d.ints(tagStripOffsets)
	if err != nil {
		return err
	}
	r.counts, err = d.ints(tagStripByteCounts)
	if err != nil {
		return err
	}
	if len(r.offsets) < numStrips {
		return malformed(0, "missing strip offsets")
	}
	if r.counts == nil && r.compression == CompressionNone {
		// Some writers omit the byte counts of uncompressed images.
		r.counts = make([]uint64, numStrips)
		for i := range r.counts {
			r.counts[i] = uint64(r.stripRows(i) * r.stride)
		}
	}
	if len(r.counts) < numStrips {
		return malformed(0, "missing strip byte counts")
	}
	r.offsets = r.offsets[:numStrips]
	r.counts = r.counts[:numStrips]

	r.cache.index = -1
	return nil
}

// Close releases the file opened by [Open].
// After Close, all pixel access fails with [ErrClosed].
func (r *Raster) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.cache = stripCache{index: -1}
	r.raw = nil
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Width returns the width of the raster in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the height of the raster in pixels.
func (r *Raster) Height() int { return r.height }

// Bounds returns the rectangle covered by the raster.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// XResolution returns the horizontal resolution, in pixels per [Raster.Unit].
func (r *Raster) XResolution() float64 { return r.xRes }

// YResolution returns the vertical resolution, in pixels per [Raster.Unit].
func (r *Raster) YResolution() float64 { return r.yRes }

// Unit returns the unit of the resolution values.
func (r *Raster) Unit() Unit { return r.unit }

// IsInches reports whether the resolution is given in pixels per inch.
func (r *Raster) IsInches() bool { return r.unit == Inch }

// XDPI returns the horizontal resolution in pixels per inch.
func (r *Raster) XDPI() float64 { return r.perInch(r.xRes) }

// YDPI returns the vertical resolution in pixels per inch.
func (r *Raster) YDPI() float64 { return r.perInch(r.yRes) }

func (r *Raster) perInch(res float64) float64 {
	if r.unit == Centimeter {
		return res * 2.54
	}
	return res
}

// AspectRatio returns width/height of the raster in pixels.
func (r *Raster) AspectRatio() float64 {
	return float64(r.width) / float64(r.height)
}

// ZeroWhite reports whether cleared bits represent white.
func (r *Raster) ZeroWhite() bool { return r.zeroWhite }

// Stride returns the number of bytes per row.
func (r *Raster) Stride() int { return r.stride }

// RowsPerStrip returns the number of rows in each strip.
// The last strip may contain fewer rows.
func (r *Raster) RowsPerStrip() int { return r.rowsPerStrip }

// NumStrips returns the number of strips.
func (r *Raster) NumStrips() int { return len(r.offsets) }

// StripSize returns the number of bytes in a full strip.
func (r *Raster) StripSize() int { return r.rowsPerStrip * r.stride }

// Compression returns the compression scheme used in the file.
func (r *Raster) Compression() Compression { return r.compression }

// stripRows returns the number of rows in strip i.
func (r *Raster) stripRows(i int) int {
	return min(r.rowsPerStrip, r.height-i*r.rowsPerStrip)
}
