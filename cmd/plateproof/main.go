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

// Plateproof makes customer proofs from 1-bit separation plates.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"seehuhn.de/go/plates"
	"seehuhn.de/go/plates/colors"
	"seehuhn.de/go/plates/internal/buildinfo"
	"seehuhn.de/go/plates/internal/profile"
	"seehuhn.de/go/plates/proof"
)

func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "plateproof \u2014 make colour proofs from separation plates\n")
	fmt.Fprintf(w, "%s\n\n", buildinfo.Short("plateproof"))
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  plateproof [options] -o base plate.tif code [plate.tif code ...]\n\n")
	fmt.Fprintf(w, "Arguments:\n")
	fmt.Fprintf(w, "  plate.tif  a 1-bit TIFF plate\n")
	fmt.Fprintf(w, "  code       the ink code of the plate, looked up in the colour catalog\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  plateproof -o job1234 cyan.tif \"process cyan\" black.tif black die.tif die\n")
	fmt.Fprintf(w, "  plateproof -low-dpi 72 -crop 8.5,11 -approval box.png -o job1234 k.tif black\n")
}

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, "plateproof:", err)
		fmt.Fprintln(os.Stderr, "Try 'plateproof -help' for more information.")
		os.Exit(2)
	}
	if cfg.Version {
		fmt.Println(buildinfo.Short("plateproof"))
		return
	}

	log, err := newLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "plateproof: init logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Error("proof failed", zap.Error(err))
		log.Sync() //nolint:errcheck
		os.Exit(1)
	}
}

// newLogger returns a development logger for interactive use and with -v,
// and a production logger otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose || term.IsTerminal(int(os.Stderr.Fd())) {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config, log *zap.Logger) (err error) {
	stop, err := profile.Start(cfg.CPUProfile, cfg.MemProfile)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(stop))

	colorsPath := cfg.ColorsPath
	if colorsPath == "" {
		exe, err := os.Executable()
		if err != nil {
			return err
		}
		colorsPath = filepath.Join(filepath.Dir(exe), "colors.txt")
	}
	cat, err := colors.Load(colorsPath)
	if err != nil {
		return fmt.Errorf("cannot load colour catalog: %w", err)
	}
	log.Debug("colour catalog loaded",
		zap.String("path", colorsPath),
		zap.Int("codes", cat.Len()))

	opt := cfg.Proof
	if cfg.ApprovalPath != "" {
		opt.Approval, err = proof.LoadImage(cfg.ApprovalPath)
		if err != nil {
			return err
		}
	}

	set := &plates.Set{Workers: cfg.Workers, Logger: log}
	defer multierr.AppendInvoke(&err, multierr.Invoke(set.Close))

	var swatches []proof.Swatch
	for i, p := range cfg.Plates {
		if err := set.Add(p.Path, p.Code); err != nil {
			return err
		}
		c, ok := cat.Lookup(p.Code)
		if !ok {
			c = colors.Fallback
			log.Warn("unknown colour code", zap.String("code", p.Code))
		}
		set.SetColor(i, c)
		swatches = append(swatches, proof.Swatch{Code: p.Code, Color: c})

		r := set.Raster(i)
		log.Info("plate loaded",
			zap.String("path", p.Path),
			zap.String("code", p.Code),
			zap.Int("width", r.Width()),
			zap.Int("height", r.Height()),
			zap.Float64("xdpi", r.XDPI()),
			zap.Float64("ydpi", r.YDPI()))
	}

	high, err := proof.High(set, swatches, &opt)
	if err := checkComposite(cfg, err); err != nil {
		return err
	}
	if err := write(cfg, log, "-h", high); err != nil {
		return err
	}

	low, err := proof.Low(set, high, swatches, &opt)
	if err := checkComposite(cfg, err); err != nil {
		return err
	}
	return write(cfg, log, "-l", low)
}

// checkComposite decides whether an error from proof generation is fatal.
// Plates which cannot be scaled leave the proof blank, and this is only an
// error in strict mode.  The warning is logged by the plate set.
func checkComposite(cfg *config, err error) error {
	var scaleErr *plates.ScaleError
	if errors.As(err, &scaleErr) && !cfg.Strict {
		return nil
	}
	return err
}

func write(cfg *config, log *zap.Logger, suffix string, img image.Image) error {
	fname := cfg.Out + suffix + cfg.Format.Ext()
	if err := proof.Write(fname, img, cfg.Format, cfg.Quality); err != nil {
		return err
	}
	b := img.Bounds()
	log.Info("proof written",
		zap.String("path", fname),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))
	return nil
}
