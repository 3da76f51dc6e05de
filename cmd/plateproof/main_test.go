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

package main

import (
	"bytes"
	"errors"
	"flag"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/plates"
	"seehuhn.de/go/plates/bitonal"
	"seehuhn.de/go/plates/proof"
)

func TestParseArgs(t *testing.T) {
	args := strings.Fields("-o job -low-dpi 72 -crop 8.5,11 -crop-origin 0.5,1" +
		" -side-panel-type CARTON -format png -workers 2 -strict" +
		" c.tif cyan k.tif black")
	cfg, err := parseArgs(args, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	want := &config{
		Out: "job",
		Plates: []plateArg{
			{Path: "c.tif", Code: "cyan"},
			{Path: "k.tif", Code: "black"},
		},
		Proof: proof.Options{
			HighDPI:  300,
			LowDPI:   72,
			Crop:     rect.Rect{LLx: 0.5, LLy: 1, URx: 8.5, URy: 11},
			Swatches: true,
		},
		Format:  proof.PNG,
		Quality: 75,
		Strict:  true,
		Workers: 2,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := parseArgs([]string{"-o", "x", "a.tif", "die"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Proof.Crop.IsZero() || !cfg.Proof.Swatches || cfg.Format != proof.JPEG {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	cfg, err = parseArgs([]string{"-side-panel-type", "bag", "-o", "x", "a.tif", "die"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Proof.Swatches {
		t.Error("swatches enabled for a bag")
	}

	cfg, err = parseArgs([]string{"-version"}, io.Discard)
	if err != nil || !cfg.Version {
		t.Errorf("-version: %v, %v", cfg, err)
	}
}

func TestParseArgsErrors(t *testing.T) {
	cases := []string{
		"-o x",
		"-o x a.tif",
		"a.tif black",
		"-o x -high-dpi 0 a.tif black",
		"-o x -low-dpi -3 a.tif black",
		"-o x -high-dpi 1e9 a.tif black",
		"-o x -crop 1 a.tif black",
		"-o x -crop -1,2 a.tif black",
		"-o x -crop 2,2 -crop-origin 3,1 a.tif black",
		"-o x -crop 2,2 -crop-origin 1,2 a.tif black",
		"-o x -crop-origin 1,1 a.tif black",
		"-o x -format pdf a.tif black",
		"-o x -quality 0 a.tif black",
		"-o x -quality 101 a.tif black",
		"-o x -no-such-flag a.tif black",
	}
	for _, c := range cases {
		_, err := parseArgs(strings.Fields(c), io.Discard)
		if err == nil {
			t.Errorf("%q: expected an error", c)
		}
	}

	_, err := parseArgs([]string{"-h"}, io.Discard)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("-h: got %v", err)
	}
}

func TestCheckComposite(t *testing.T) {
	scaleErr := &plates.ScaleError{Index: 1, Label: "x", Err: bitonal.ErrInvalidSize}
	other := errors.New("disk full")

	cases := []struct {
		strict bool
		in     error
		fatal  bool
	}{
		{false, nil, false},
		{false, scaleErr, false},
		{true, scaleErr, true},
		{false, other, true},
		{true, other, true},
	}
	for _, c := range cases {
		err := checkComposite(&config{Strict: c.strict}, c.in)
		if (err != nil) != c.fatal {
			t.Errorf("strict=%t, %v: got %v", c.strict, c.in, err)
		}
	}
}

func writePlate(t *testing.T, fname string, ink image.Rectangle) {
	t.Helper()
	b := bitonal.NewBitmap(144, 216)
	b.Fill(ink)
	buf := &bytes.Buffer{}
	err := bitonal.Encode(buf, b, &bitonal.EncodeOptions{
		Compression: bitonal.CompressionDeflate,
		XDPI:        144,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fname, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cyan := filepath.Join(dir, "cyan.tif")
	die := filepath.Join(dir, "die.tif")
	writePlate(t, cyan, image.Rect(10, 10, 100, 200))
	writePlate(t, die, image.Rect(5, 5, 6, 210))

	colorsPath := filepath.Join(dir, "colors.txt")
	err := os.WriteFile(colorsPath, []byte("cyan=00aeef\ndie=000000\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "job")
	args := []string{
		"-o", out, "-colors", colorsPath,
		"-high-dpi", "144", "-low-dpi", "72", "-format", "png",
		cyan, "cyan", die, "die",
	}
	cfg, err := parseArgs(args, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if err := run(cfg, zap.NewNop()); err != nil {
		t.Fatal(err)
	}

	sizes := map[string]image.Point{
		"-h.png": {144, 216},
		"-l.png": {72, 108},
	}
	for suffix, want := range sizes {
		img, err := proof.LoadImage(out + suffix)
		if err != nil {
			t.Fatal(err)
		}
		if got := img.Bounds().Size(); got != want {
			t.Errorf("%s: size %v, want %v", suffix, got, want)
		}
	}

	// missing catalog
	cfg.ColorsPath = filepath.Join(dir, "missing.txt")
	if err := run(cfg, zap.NewNop()); err == nil {
		t.Error("missing catalog not reported")
	}
}
