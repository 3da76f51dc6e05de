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
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/plates/proof"
)

// plateArg is one plate given on the command line.
type plateArg struct {
	Path string
	Code string
}

// config holds the validated command line.
type config struct {
	Out    string
	Plates []plateArg

	Proof        proof.Options
	ApprovalPath string
	ColorsPath   string

	Format  proof.Format
	Quality int
	Strict  bool
	Workers int
	Verbose bool

	CPUProfile string
	MemProfile string
	Version    bool
}

// parseArgs parses and validates the command line.  Usage information is
// written to usage.  No files are opened.
func parseArgs(args []string, usage io.Writer) (*config, error) {
	cfg := &config{}

	fs := flag.NewFlagSet("plateproof", flag.ContinueOnError)
	fs.SetOutput(usage)
	fs.Usage = func() { printUsage(fs) }

	fs.StringVar(&cfg.Out, "o", "", "write proofs to `base`-h.ext and base-l.ext")
	fs.Float64Var(&cfg.Proof.HighDPI, "high-dpi", 300, "resolution of the high resolution proof")
	fs.Float64Var(&cfg.Proof.LowDPI, "low-dpi", 300, "resolution of the low resolution proof")
	crop := fs.String("crop", "", "bottom right corner `x,y` of the crop, in inches")
	cropOrigin := fs.String("crop-origin", "", "top left corner `x,y` of the crop, in inches")
	fs.StringVar(&cfg.ApprovalPath, "approval", "", "approval box image `file`")
	sidePanel := fs.String("side-panel-type", "carton", "side panel `type`; swatches are only drawn for cartons")
	fs.StringVar(&cfg.Proof.JobInfo, "job-info", "", "job `text` for the approval box")
	fs.StringVar(&cfg.ColorsPath, "colors", "", "colour catalog `file` (default colors.txt next to the executable)")
	format := fs.String("format", "jpeg", "output `format`: jpeg, png or tiff")
	fs.IntVar(&cfg.Quality, "quality", proof.DefaultQuality, "JPEG quality, 1 to 100")
	fs.BoolVar(&cfg.Strict, "strict", false, "fail if a plate cannot be scaled")
	fs.IntVar(&cfg.Workers, "workers", 0, "number of plates scaled concurrently (default GOMAXPROCS)")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose logging")
	fs.StringVar(&cfg.CPUProfile, "cpuprofile", "", "write cpu profile to `file`")
	fs.StringVar(&cfg.MemProfile, "memprofile", "", "write memory profile to `file`")
	fs.BoolVar(&cfg.Version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.Version {
		return cfg, nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return nil, errors.New("no plates given")
	}
	if len(rest)%2 != 0 {
		return nil, errors.New("every plate needs a colour code")
	}
	for i := 0; i < len(rest); i += 2 {
		cfg.Plates = append(cfg.Plates, plateArg{Path: rest[i], Code: rest[i+1]})
	}

	if cfg.Out == "" {
		return nil, errors.New("missing output name (-o)")
	}
	for _, dpi := range []float64{cfg.Proof.HighDPI, cfg.Proof.LowDPI} {
		if !(dpi > 0) || dpi > proof.MaxDPI {
			return nil, fmt.Errorf("resolution %g outside (0, %d]", dpi, proof.MaxDPI)
		}
	}

	if *crop != "" {
		x, y, err := parsePoint(*crop)
		if err != nil {
			return nil, fmt.Errorf("-crop: %w", err)
		}
		var ox, oy float64
		if *cropOrigin != "" {
			ox, oy, err = parsePoint(*cropOrigin)
			if err != nil {
				return nil, fmt.Errorf("-crop-origin: %w", err)
			}
		}
		if ox < 0 || oy < 0 || x <= ox || y <= oy {
			return nil, errors.New("crop origin must be above and left of the crop corner")
		}
		cfg.Proof.Crop = rect.Rect{LLx: ox, LLy: oy, URx: x, URy: y}
	} else if *cropOrigin != "" {
		return nil, errors.New("-crop-origin needs -crop")
	}

	cfg.Proof.Swatches = strings.EqualFold(*sidePanel, "carton")

	f, err := proof.ParseFormat(*format)
	if err != nil {
		return nil, err
	}
	cfg.Format = f
	if cfg.Quality < 1 || cfg.Quality > 100 {
		return nil, fmt.Errorf("invalid JPEG quality %d", cfg.Quality)
	}

	return cfg, nil
}

// parsePoint parses a pair "x,y" of non-negative numbers.
func parsePoint(s string) (x, y float64, err error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("expected x,y, got %q", s)
	}
	x, err = strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, err
	}
	y, err = strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, err
	}
	if x < 0 || y < 0 {
		return 0, 0, fmt.Errorf("negative coordinate in %q", s)
	}
	return x, y, nil
}
