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

package plates

import (
	"errors"
	"strconv"
)

// ErrInvalidDPI is returned by [Set.Composite] if the target resolution is
// not a positive, finite number, or if it is too high for the plates.
var ErrInvalidDPI = errors.New("invalid target resolution")

// IndexError is the panic value used when a plate index is out of range.
type IndexError struct {
	Index int
	Len   int
}

func (err *IndexError) Error() string {
	return "plate index " + strconv.Itoa(err.Index) +
		" out of range [0:" + strconv.Itoa(err.Len) + "]"
}

// ScaleError indicates that a plate could not be scaled for compositing.
type ScaleError struct {
	Index int
	Label string
	Err   error
}

func (err *ScaleError) Error() string {
	return "plate " + strconv.Itoa(err.Index) + " (" + strconv.Quote(err.Label) +
		"): " + err.Err.Error()
}

func (err *ScaleError) Unwrap() error {
	return err.Err
}
