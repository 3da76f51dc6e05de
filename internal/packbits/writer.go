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

package packbits

import "io"

// Writer encodes data in PackBits format.
//
// Runs never extend across a call to Flush.  TIFF requires each row of a
// strip to be packed separately, so callers encoding images call Flush
// after every row.
type Writer struct {
	w           io.Writer
	buf         [129]byte
	used        int
	repeatCount int
	repeatVal   byte
}

// NewWriter returns a new Writer which writes encoded data to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write implements the io.Writer interface.
func (w *Writer) Write(p []byte) (int, error) {
	for n, b := range p {
		if w.repeatCount > 0 {
			if b == w.repeatVal && w.repeatCount < 128 {
				w.repeatCount++
				continue
			}
			if err := w.flushRepeat(); err != nil {
				return n, err
			}
		}

		w.buf[1+w.used] = b
		w.used++

		if w.used >= 3 {
			idx := w.used - 2
			if w.buf[idx] == b && w.buf[idx+1] == b {
				if lit := w.used - 3; lit > 0 {
					if err := w.flushLiteral(lit); err != nil {
						return n, err
					}
				}
				w.used = 0
				w.repeatCount = 3
				w.repeatVal = b
				continue
			}
		}

		if w.used == 128 {
			if err := w.flushLiteral(128); err != nil {
				return n, err
			}
		}
	}
	return len(p), nil
}

// Flush writes out any pending run.
func (w *Writer) Flush() error {
	if w.repeatCount > 0 {
		if err := w.flushRepeat(); err != nil {
			return err
		}
	}
	if w.used > 0 {
		return w.flushLiteral(w.used)
	}
	return nil
}

func (w *Writer) flushLiteral(count int) error {
	w.buf[0] = byte(count - 1)
	_, err := w.w.Write(w.buf[:count+1])
	w.used = 0
	return err
}

func (w *Writer) flushRepeat() error {
	hdr := [2]byte{byte(257 - w.repeatCount), w.repeatVal}
	_, err := w.w.Write(hdr[:])
	w.repeatCount = 0
	return err
}
