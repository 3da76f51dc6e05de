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

package colors

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testCatalog = `# inks used in the tests
Black=000000
process cyan = 00aeef
Cool Gray 11=53565a

die=ff0000
STRASSE=112233
`

func TestRead(t *testing.T) {
	cat, err := Read(strings.NewReader(testCatalog))
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		code string
		want color.RGBA
		ok   bool
	}{
		{"black", color.RGBA{0, 0, 0, 255}, true},
		{"BLACK", color.RGBA{0, 0, 0, 255}, true},
		{"Process Cyan", color.RGBA{0x00, 0xAE, 0xEF, 255}, true},
		{"cool gray 11", color.RGBA{0x53, 0x56, 0x5A, 255}, true},
		{"Die", color.RGBA{0xFF, 0, 0, 255}, true},
		{"straße", color.RGBA{0x11, 0x22, 0x33, 255}, true},
		{"cool gray 10", color.RGBA{}, false},
		{"", color.RGBA{}, false},
	}
	for _, c := range cases {
		got, ok := cat.Lookup(c.code)
		if ok != c.ok || got != c.want {
			t.Errorf("Lookup(%q) = %v, %t, want %v, %t", c.code, got, ok, c.want, c.ok)
		}
	}

	if cat.Len() != 5 {
		t.Errorf("catalog has %d entries, want 5", cat.Len())
	}
}

func TestFallback(t *testing.T) {
	cat := New()
	cat.Set("red 032", color.RGBA{0xEF, 0x33, 0x40, 0})

	if got := cat.Color("RED 032"); got != (color.RGBA{0xEF, 0x33, 0x40, 255}) {
		t.Errorf("known code: got %v", got)
	}
	if got := cat.Color("warm red"); got != (color.RGBA{0xFF, 0x6E, 0xC7, 0xFF}) {
		t.Errorf("unknown code: got %v", got)
	}
}

func TestCodes(t *testing.T) {
	cat, err := Read(strings.NewReader(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	cat.Set("black", color.RGBA{1, 2, 3, 255})

	want := []string{"Cool Gray 11", "STRASSE", "black", "die", "process cyan"}
	if diff := cmp.Diff(want, cat.Codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestSyntaxErrors(t *testing.T) {
	cases := []struct {
		in   string
		line int
	}{
		{"black", 1},
		{"=000000", 1},
		{"ok=000000\n\nblack=00000", 3},
		{"black=00000g", 1},
		{"# comment\nblack=0000000", 2},
	}
	for _, c := range cases {
		_, err := Read(strings.NewReader(c.in))
		var synErr *SyntaxError
		if !errors.As(err, &synErr) {
			t.Errorf("%q: expected *SyntaxError, got %v", c.in, err)
			continue
		}
		if synErr.Line != c.line {
			t.Errorf("%q: error on line %d, want %d", c.in, synErr.Line, c.line)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "colors.txt")
	err := os.WriteFile(fname, []byte("#ink\nyellow=#fff200\r\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	cat, err := Load(fname)
	if err != nil {
		t.Fatal(err)
	}
	if got := cat.Color("Yellow"); got != (color.RGBA{0xFF, 0xF2, 0x00, 255}) {
		t.Errorf("got %v", got)
	}

	_, err = Load(filepath.Join(dir, "missing.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
