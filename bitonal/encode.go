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
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"seehuhn.de/go/plates/internal/packbits"
)

// EncodeOptions control how [Encode] writes a bitmap.
type EncodeOptions struct {
	// Compression is one of CompressionNone (the default),
	// CompressionPackBits or CompressionDeflate.
	Compression Compression

	// RowsPerStrip is the number of rows in each strip.  If this is zero,
	// strips of about 8kB are used.
	RowsPerStrip int

	// XDPI and YDPI give the resolution in pixels per inch.  The default
	// is 72 for XDPI, and the value of XDPI for YDPI.
	XDPI, YDPI float64

	// InkIsZero stores ink as cleared bits.  The PhotometricInterpretation
	// tag is set to match.
	InkIsZero bool

	// BigEndian selects the "MM" byte order.
	BigEndian bool
}

// layout describes the image file directory written by writeFile.
type layout struct {
	order        binary.AppendByteOrder
	width        int
	height       int
	rowsPerStrip int
	compression  Compression
	photometric  uint16
	fillOrder    uint16 // 0 omits the tag
	xDPI, yDPI   float64
	unit         Unit
}

// Encode writes b as a 1-bit, strip organised TIFF file.
func Encode(w io.Writer, b *Bitmap, opt *EncodeOptions) error {
	if opt == nil {
		opt = &EncodeOptions{}
	}
	if b.Width <= 0 || b.Height <= 0 {
		return errors.New("cannot encode an empty bitmap")
	}

	l := &layout{
		order:        binary.LittleEndian,
		width:        b.Width,
		height:       b.Height,
		rowsPerStrip: opt.RowsPerStrip,
		compression:  opt.Compression,
		xDPI:         opt.XDPI,
		yDPI:         opt.YDPI,
		unit:         Inch,
	}
	if opt.BigEndian {
		l.order = binary.BigEndian
	}
	if l.compression == 0 {
		l.compression = CompressionNone
	}
	if l.rowsPerStrip <= 0 {
		l.rowsPerStrip = max(8192/b.Stride, 1)
	}
	l.rowsPerStrip = min(l.rowsPerStrip, b.Height)
	if l.xDPI <= 0 {
		l.xDPI = 72
	}
	if l.yDPI <= 0 {
		l.yDPI = l.xDPI
	}
	if opt.InkIsZero {
		l.photometric = 1 // BlackIsZero
	}

	row := make([]byte, b.Stride)
	var strips [][]byte
	for y0 := 0; y0 < b.Height; y0 += l.rowsPerStrip {
		y1 := min(y0+l.rowsPerStrip, b.Height)

		buf := &bytes.Buffer{}
		var enc io.Writer = buf
		var flush func() error
		switch l.compression {
		case CompressionNone:
			// pass
		case CompressionPackBits:
			pw := packbits.NewWriter(buf)
			enc, flush = pw, pw.Flush
		case CompressionDeflate:
			zw := zlib.NewWriter(buf)
			enc, flush = zw, zw.Close
		default:
			return unsupported("encoding with compression %s", l.compression)
		}

		for y := y0; y < y1; y++ {
			copy(row, b.Pix[y*b.Stride:(y+1)*b.Stride])
			if opt.InkIsZero {
				for i, v := range row {
					row[i] = ^v
				}
			}
			if _, err := enc.Write(row); err != nil {
				return err
			}
			// PackBits runs must not cross row boundaries.
			if l.compression == CompressionPackBits {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if flush != nil {
			if err := flush(); err != nil {
				return err
			}
		}
		strips = append(strips, buf.Bytes())
	}

	return writeFile(w, l, strips)
}

// ifdEntry is one field of an image file directory, before encoding.
type ifdEntry struct {
	tag  uint16
	typ  uint16
	vals []uint32 // for RATIONAL: numerator, denominator pairs
}

// writeFile writes a TIFF file with the given strips.  The strip data
// follows the header, the directory and its out-of-line values come last.
func writeFile(w io.Writer, l *layout, strips [][]byte) error {
	o := l.order

	buf := make([]byte, 0, 8)
	if o == binary.BigEndian {
		buf = append(buf, "MM"...)
	} else {
		buf = append(buf, "II"...)
	}
	buf = o.AppendUint16(buf, 42)
	buf = o.AppendUint32(buf, 0) // directory offset, filled in below

	offsets := make([]uint32, len(strips))
	counts := make([]uint32, len(strips))
	for i, s := range strips {
		offsets[i] = uint32(len(buf))
		counts[i] = uint32(len(s))
		buf = append(buf, s...)
		if len(buf)%2 == 1 {
			buf = append(buf, 0)
		}
		if len(buf) > math.MaxUint32/2 {
			return errors.New("TIFF file too large")
		}
	}

	entries := []ifdEntry{
		{tagImageWidth, dtLong, []uint32{uint32(l.width)}},
		{tagImageLength, dtLong, []uint32{uint32(l.height)}},
		{tagBitsPerSample, dtShort, []uint32{1}},
		{tagCompression, dtShort, []uint32{uint32(l.compression)}},
		{tagPhotometricInterpretation, dtShort, []uint32{uint32(l.photometric)}},
	}
	if l.fillOrder != 0 {
		entries = append(entries, ifdEntry{tagFillOrder, dtShort, []uint32{uint32(l.fillOrder)}})
	}
	entries = append(entries,
		ifdEntry{tagStripOffsets, dtLong, offsets},
		ifdEntry{tagSamplesPerPixel, dtShort, []uint32{1}},
		ifdEntry{tagRowsPerStrip, dtLong, []uint32{uint32(l.rowsPerStrip)}},
		ifdEntry{tagStripByteCounts, dtLong, counts},
		ifdEntry{tagXResolution, dtRational, rational(l.xDPI)},
		ifdEntry{tagYResolution, dtRational, rational(l.yDPI)},
		ifdEntry{tagResolutionUnit, dtShort, []uint32{uint32(l.unit)}},
	)

	ifdPos := len(buf)
	copy(buf[4:8], o.AppendUint32(nil, uint32(ifdPos)))
	extraPos := ifdPos + 2 + 12*len(entries) + 4
	var extra []byte

	buf = o.AppendUint16(buf, uint16(len(entries)))
	for _, e := range entries {
		var data []byte
		for _, v := range e.vals {
			if e.typ == dtShort {
				data = o.AppendUint16(data, uint16(v))
			} else {
				data = o.AppendUint32(data, v)
			}
		}
		count := len(e.vals)
		if e.typ == dtRational {
			count /= 2
		}

		buf = o.AppendUint16(buf, e.tag)
		buf = o.AppendUint16(buf, e.typ)
		buf = o.AppendUint32(buf, uint32(count))
		if len(data) <= 4 {
			var inline [4]byte
			copy(inline[:], data)
			buf = append(buf, inline[:]...)
		} else {
			buf = o.AppendUint32(buf, uint32(extraPos+len(extra)))
			extra = append(extra, data...)
		}
	}
	buf = o.AppendUint32(buf, 0) // no further directories
	buf = append(buf, extra...)

	_, err := w.Write(buf)
	return err
}

// rational approximates x as a TIFF RATIONAL value.
func rational(x float64) []uint32 {
	if x == math.Trunc(x) && x < math.MaxUint32 {
		return []uint32{uint32(x), 1}
	}
	const den = 10000
	return []uint32{uint32(math.Round(x * den)), den}
}
