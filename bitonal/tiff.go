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
	"encoding/binary"
	"io"
	"math"
)

// TIFF tags used by this package.
const (
	tagImageWidth                = 256
	tagImageLength               = 257
	tagBitsPerSample             = 258
	tagCompression               = 259
	tagPhotometricInterpretation = 262
	tagFillOrder                 = 266
	tagStripOffsets              = 273
	tagSamplesPerPixel           = 277
	tagRowsPerStrip              = 278
	tagStripByteCounts           = 279
	tagXResolution               = 282
	tagYResolution               = 283
	tagPlanarConfiguration       = 284
	tagT4Options                 = 292
	tagResolutionUnit            = 296
	tagPredictor                 = 317
	tagTileWidth                 = 322
)

// TIFF field types.
const (
	dtByte     = 1
	dtShort    = 3
	dtLong     = 4
	dtRational = 5
)

var typeSize = [...]int{
	1:  1, // BYTE
	2:  1, // ASCII
	3:  2, // SHORT
	4:  4, // LONG
	5:  8, // RATIONAL
	6:  1, // SBYTE
	7:  1, // UNDEFINED
	8:  2, // SSHORT
	9:  4, // SLONG
	10: 8, // SRATIONAL
	11: 4, // FLOAT
	12: 8, // DOUBLE
}

// Limits which protect against files claiming absurd sizes.
const (
	maxDimension = 1 << 20
	maxStrips    = 1 << 20
	maxIFDCount  = 1 << 12

	// maxOutputPixels limits the number of samples in a scaled grid.
	maxOutputPixels = 1 << 28
)

// field is one entry of an image file directory.
type field struct {
	typ   uint16
	count uint32
	data  []byte
	pos   int64
}

// ifd holds the fields of the first image file directory of a TIFF file.
type ifd struct {
	order  binary.ByteOrder
	fields map[uint16]*field
}

// readIFD reads the TIFF header and the first image file directory.
func readIFD(r io.ReaderAt) (*ifd, error) {
	var hdr [8]byte
	if err := readAt(r, hdr[:], 0); err != nil {
		return nil, &MalformedFileError{Err: err}
	}

	var order binary.ByteOrder
	switch string(hdr[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, malformed(0, "missing byte order mark")
	}
	switch order.Uint16(hdr[2:4]) {
	case 42:
	case 43:
		return nil, unsupported("BigTIFF")
	default:
		return nil, malformed(2, "wrong magic number")
	}

	pos := int64(order.Uint32(hdr[4:8]))
	var buf [2]byte
	if err := readAt(r, buf[:], pos); err != nil {
		return nil, &MalformedFileError{Pos: pos, Err: err}
	}
	n := int(order.Uint16(buf[:]))
	if n == 0 || n > maxIFDCount {
		return nil, malformed(pos, "invalid number of directory entries")
	}

	entries := make([]byte, 12*n)
	if err := readAt(r, entries, pos+2); err != nil {
		return nil, &MalformedFileError{Pos: pos + 2, Err: err}
	}

	d := &ifd{order: order, fields: make(map[uint16]*field, n)}
	for i := range n {
		e := entries[12*i : 12*i+12]
		entryPos := pos + 2 + int64(12*i)
		tag := order.Uint16(e[0:2])
		f := &field{
			typ:   order.Uint16(e[2:4]),
			count: order.Uint32(e[4:8]),
			pos:   entryPos,
		}
		if int(f.typ) >= len(typeSize) || typeSize[f.typ] == 0 {
			// Readers must ignore fields of unknown type.
			continue
		}

		size := int64(typeSize[f.typ]) * int64(f.count)
		if size <= 4 {
			f.data = e[8 : 8+size]
		} else {
			if size > 8*maxStrips {
				return nil, malformed(entryPos, "field too large")
			}
			off := int64(order.Uint32(e[8:12]))
			f.data = make([]byte, size)
			if err := readAt(r, f.data, off); err != nil {
				return nil, &MalformedFileError{Pos: off, Err: err}
			}
		}
		d.fields[tag] = f
	}
	return d, nil
}

// has reports whether the directory contains the given tag.
func (d *ifd) has(tag uint16) bool {
	_, ok := d.fields[tag]
	return ok
}

// ints returns the values of an integer valued field.
func (d *ifd) ints(tag uint16) ([]uint64, error) {
	f, ok := d.fields[tag]
	if !ok {
		return nil, nil
	}

	res := make([]uint64, f.count)
	switch f.typ {
	case dtByte:
		for i := range res {
			res[i] = uint64(f.data[i])
		}
	case dtShort:
		for i := range res {
			res[i] = uint64(d.order.Uint16(f.data[2*i:]))
		}
	case dtLong:
		for i := range res {
			res[i] = uint64(d.order.Uint32(f.data[4*i:]))
		}
	default:
		return nil, malformed(f.pos, "unexpected field type")
	}
	return res, nil
}

// int returns the first value of an integer field, or def if the field
// is absent.
func (d *ifd) int(tag uint16, def uint64) (uint64, error) {
	vals, err := d.ints(tag)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return def, nil
	}
	return vals[0], nil
}

// rational returns the first value of a RATIONAL field, or def if the
// field is absent.  Integer fields are accepted as well.
func (d *ifd) rational(tag uint16, def float64) (float64, error) {
	f, ok := d.fields[tag]
	if !ok || f.count == 0 {
		return def, nil
	}
	switch f.typ {
	case dtRational:
		num := d.order.Uint32(f.data[0:4])
		den := d.order.Uint32(f.data[4:8])
		if den == 0 {
			return 0, malformed(f.pos, "zero denominator")
		}
		return float64(num) / float64(den), nil
	case dtShort, dtLong:
		v, err := d.int(tag, 0)
		return float64(v), err
	default:
		return 0, malformed(f.pos, "unexpected field type")
	}
}

// readAt fills buf from r at offset off.
func readAt(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// positive checks that a resolution value can be used for scaling.
func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}
