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

// Package packbits implements the PackBits run-length scheme used for
// TIFF strips (compression tag 32773).
//
// Each run starts with a header byte n.  For 0 <= n <= 127 the next n+1
// bytes are copied literally.  For 129 <= n <= 255 the next byte is
// repeated 257-n times.  The header 128 is a no-op.  Unlike the PDF
// RunLengthDecode filter there is no end-of-data marker: a strip ends
// where its byte count ends.
package packbits

import (
	"bufio"
	"errors"
	"io"
)

// ErrTruncated is returned when the input ends inside a run.
var ErrTruncated = errors.New("packbits: truncated run")

// NewReader returns a reader which decodes PackBits data from r.
func NewReader(r io.Reader) io.Reader {
	src, ok := r.(byteReader)
	if !ok {
		src = bufio.NewReader(r)
	}
	return &reader{src: src}
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

type reader struct {
	src     byteReader
	err     error
	literal bool
	count   int
	value   byte
}

// Read implements the io.Reader interface.
func (r *reader) Read(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		if r.err != nil {
			break
		}

		if r.count == 0 {
			r.err = r.nextRun()
			continue
		}

		k := min(r.count, len(p))
		if r.literal {
			m, err := io.ReadFull(r.src, p[:k])
			n += m
			r.count -= m
			p = p[m:]
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				err = ErrTruncated
			}
			r.err = err
		} else {
			for i := range k {
				p[i] = r.value
			}
			n += k
			r.count -= k
			p = p[k:]
		}
	}

	if n > 0 {
		return n, nil
	}
	return 0, r.err
}

// nextRun reads a run header.  Clean end of input is reported as io.EOF.
func (r *reader) nextRun() error {
	for {
		h, err := r.src.ReadByte()
		if err != nil {
			return err
		}

		switch {
		case h < 128:
			r.count = int(h) + 1
			r.literal = true
			return nil
		case h > 128:
			v, err := r.src.ReadByte()
			if err == io.EOF {
				return ErrTruncated
			} else if err != nil {
				return err
			}
			r.count = 257 - int(h)
			r.value = v
			r.literal = false
			return nil
		}
		// h == 128: skip
	}
}
