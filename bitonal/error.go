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
	"strconv"
)

var (
	// ErrClosed is returned by data operations on a closed Raster.
	ErrClosed = errors.New("raster is closed")

	// ErrInvalidSize is returned when a requested output width or height
	// is not positive, or when the output would be too large.
	ErrInvalidSize = errors.New("invalid output size")

	// ErrEmptyRegion is returned when a region does not contain any pixels
	// of the raster.
	ErrEmptyRegion = errors.New("empty region")
)

// LoadError is returned by [Open] when a raster file cannot be used.
type LoadError struct {
	Path string
	Err  error
}

func (err *LoadError) Error() string {
	return "cannot load " + strconv.Quote(err.Path) + ": " + err.Err.Error()
}

func (err *LoadError) Unwrap() error {
	return err.Err
}

// MalformedFileError indicates that a file could not be parsed as TIFF.
type MalformedFileError struct {
	Pos int64
	Err error
}

func (err *MalformedFileError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	tail := ""
	if err.Pos > 0 {
		tail = " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return "not a valid TIFF file" + middle + tail
}

func (err *MalformedFileError) Unwrap() error {
	return err.Err
}

// UnsupportedError indicates a valid TIFF file which uses a feature
// outside the 1-bit strip subset handled by this package.
type UnsupportedError struct {
	Feature string
}

func (err *UnsupportedError) Error() string {
	return "unsupported TIFF feature: " + err.Feature
}

func malformed(pos int64, msg string) error {
	return &MalformedFileError{Pos: pos, Err: errors.New(msg)}
}

func unsupported(format string, args ...any) error {
	return &UnsupportedError{Feature: fmt.Sprintf(format, args...)}
}
