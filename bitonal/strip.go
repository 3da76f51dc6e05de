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
	"fmt"
	"io"
	"math/bits"

	"golang.org/x/image/ccitt"
	"golang.org/x/image/tiff/lzw"

	"seehuhn.de/go/plates/internal/packbits"
)

const (
	// maxStripBytes limits the size of a single encoded or decoded strip.
	maxStripBytes = 1 << 30

	// maxImageBytes limits the decoded size of a whole raster held in
	// memory at once.
	maxImageBytes = 1 << 30
)

// stripCache holds the most recently decoded strip.
type stripCache struct {
	index int
	buf   []byte
}

// ReadStrip decodes strip i into buf and returns the number of bytes
// written.  All strips except for the last one fill [Raster.StripSize]
// bytes; the last strip may be shorter.
func (r *Raster) ReadStrip(i int, buf []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if i < 0 || i >= len(r.offsets) {
		return 0, fmt.Errorf("strip %d out of range [0, %d)", i, len(r.offsets))
	}

	n := r.stripRows(i) * r.stride
	if len(buf) < n {
		return 0, io.ErrShortBuffer
	}
	if err := r.decodeStrip(i, buf[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// ReadRawStrips returns the packed pixel data of all strips, back to back.
//
// The buffer has room for [Raster.NumStrips] full strips.  Only the first n
// bytes are valid, since the last strip may be short.
func (r *Raster) ReadRawStrips() (buf []byte, n int, err error) {
	if r.closed {
		return nil, 0, ErrClosed
	}

	size := r.StripSize()
	total := int64(r.NumStrips()) * int64(size)
	if total > maxImageBytes {
		return nil, 0, unsupported("%d bytes of image data", total)
	}
	buf = make([]byte, total)
	for i := range r.NumStrips() {
		k, err := r.ReadStrip(i, buf[n:])
		if err != nil {
			return nil, 0, err
		}
		n += k
	}
	return buf, n, nil
}

// row returns the packed bits of row y.  The returned slice is only valid
// until the next call to row.
func (r *Raster) row(y int) ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}

	i := y / r.rowsPerStrip
	if r.cache.index != i {
		if r.cache.buf == nil {
			r.cache.buf = make([]byte, r.StripSize())
		}
		if _, err := r.ReadStrip(i, r.cache.buf); err != nil {
			r.cache.index = -1
			return nil, err
		}
		r.cache.index = i
	}

	start := (y - i*r.rowsPerStrip) * r.stride
	return r.cache.buf[start : start+r.stride], nil
}

// decodeStrip fills out with the decoded pixel data of strip i.
func (r *Raster) decodeStrip(i int, out []byte) error {
	pos := int64(r.offsets[i])
	count := r.counts[i]
	if count > maxStripBytes {
		return malformed(pos, "strip too large")
	}

	if uint64(cap(r.raw)) < count {
		r.raw = make([]byte, count)
	}
	raw := r.raw[:count]
	if err := readAt(r.r, raw, pos); err != nil {
		return &MalformedFileError{Pos: pos, Err: err}
	}

	ccittCoded := r.compression == CompressionG3 || r.compression == CompressionG4
	if r.fillOrder == 2 && !ccittCoded {
		for k, b := range raw {
			raw[k] = bits.Reverse8(b)
		}
	}

	src := bytes.NewReader(raw)
	var dec io.Reader
	switch r.compression {
	case CompressionNone:
		dec = src
	case CompressionPackBits:
		dec = packbits.NewReader(src)
	case CompressionLZW:
		lz := lzw.NewReader(src, lzw.MSB, 8)
		defer lz.Close()
		dec = lz
	case CompressionDeflate, CompressionDeflateOld:
		zr, err := zlib.NewReader(src)
		if err != nil {
			return &MalformedFileError{Pos: pos, Err: err}
		}
		defer zr.Close()
		dec = zr
	case CompressionG3, CompressionG4:
		order := ccitt.MSB
		if r.fillOrder == 2 {
			order = ccitt.LSB
		}
		sf := ccitt.Group3
		if r.compression == CompressionG4 {
			sf = ccitt.Group4
		}
		dec = ccitt.NewReader(src, order, sf, r.width, r.stripRows(i),
			&ccitt.Options{Invert: true})
	default:
		return unsupported("compression %s", r.compression)
	}

	if _, err := io.ReadFull(dec, out); err != nil {
		return &MalformedFileError{
			Pos: pos,
			Err: fmt.Errorf("strip %d: %w", i, err),
		}
	}
	return nil
}
