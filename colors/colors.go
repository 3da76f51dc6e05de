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

// Package colors maps ink codes to display colours.
//
// A catalog file has one entry per line, in the form
//
//	code=rrggbb
//
// where rrggbb is the colour in hexadecimal notation.  Codes may contain
// spaces, for example "cool gray 11=53565a".  Blank lines and lines starting
// with "#" are ignored.  Codes are matched without regard to case.
package colors

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
)

// Fallback is the colour used for codes which are not in the catalog.
// The neon pink makes missing entries easy to spot on a proof.
var Fallback = color.RGBA{0xFF, 0x6E, 0xC7, 0xFF}

// Catalog maps ink codes to colours.
// The zero value is not usable; use [New] to create a catalog.
// A Catalog is not safe for concurrent use.
type Catalog struct {
	m    map[string]entry
	fold cases.Caser
}

type entry struct {
	code string // as given in the file
	c    color.RGBA
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		m:    make(map[string]entry),
		fold: cases.Fold(),
	}
}

// Load reads a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cat, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Read reads a catalog from r.
// Syntax errors are reported as [*SyntaxError].
func Read(r io.Reader) (*Catalog, error) {
	cat := New()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code, value, ok := strings.Cut(line, "=")
		code = strings.TrimSpace(code)
		if !ok || code == "" {
			return nil, &SyntaxError{Line: lineNo, Err: errMissingCode}
		}
		c, err := parseHex(strings.TrimSpace(value))
		if err != nil {
			return nil, &SyntaxError{Line: lineNo, Err: err}
		}
		cat.Set(code, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cat, nil
}

func parseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	var rgb [3]byte
	if _, err := hex.Decode(rgb[:], []byte(s)); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.RGBA{rgb[0], rgb[1], rgb[2], 0xFF}, nil
}

// Set adds or replaces the colour for code.  The alpha value of c is
// ignored.
func (cat *Catalog) Set(code string, c color.RGBA) {
	c.A = 0xFF
	cat.m[cat.fold.String(code)] = entry{code: code, c: c}
}

// Lookup returns the colour for code, and whether the code is known.
func (cat *Catalog) Lookup(code string) (color.RGBA, bool) {
	e, ok := cat.m[cat.fold.String(code)]
	return e.c, ok
}

// Color returns the colour for code.  Unknown codes give [Fallback].
func (cat *Catalog) Color(code string) color.RGBA {
	if c, ok := cat.Lookup(code); ok {
		return c
	}
	return Fallback
}

// Len returns the number of codes in the catalog.
func (cat *Catalog) Len() int {
	return len(cat.m)
}

// Codes returns all codes in the catalog, in sorted order.  Each code is
// spelled as in the most recent call to [Catalog.Set] for it.
func (cat *Catalog) Codes() []string {
	codes := make([]string, 0, len(cat.m))
	for _, e := range cat.m {
		codes = append(codes, e.code)
	}
	slices.Sort(codes)
	return codes
}

// SyntaxError reports a malformed line in a catalog file.
type SyntaxError struct {
	Line int
	Err  error
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %v", err.Line, err.Err)
}

func (err *SyntaxError) Unwrap() error {
	return err.Err
}

var errMissingCode = errors.New("expected code=rrggbb")
