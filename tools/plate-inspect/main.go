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
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"seehuhn.de/go/plates"
	"seehuhn.de/go/plates/bitonal"
	"seehuhn.de/go/plates/internal/buildinfo"
	"seehuhn.de/go/plates/internal/profile"
)

var (
	regionArg    = flag.String("region", "", "print the coverage of the pixel region `x1,y1,x2,y2` (corners included)")
	gridArg      = flag.String("grid", "", "print a coverage grid of size `WxH`")
	normalizeArg = flag.String("normalize", "", "write a polarity-normalised copy of the plate to `file`")
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile   = flag.String("memprofile", "", "write memory profile to `file`")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "plate-inspect \u2014 show information about 1-bit TIFF plates\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", buildinfo.Short("plate-inspect"))
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  plate-inspect [options] <plate.tif>...\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  plate.tif  one or more plates to inspect\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  plate-inspect cyan.tif magenta.tif\n")
		fmt.Fprintf(os.Stderr, "  plate-inspect -region 0,0,599,599 -grid 8x10 cyan.tif\n")
		fmt.Fprintf(os.Stderr, "  plate-inspect -normalize fixed.tif scanned.tif\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	stop, err := profile.Start(*cpuprofile, *memprofile)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(stop))

	var req request
	if *regionArg != "" {
		req.region, err = parseRegion(*regionArg)
		if err != nil {
			return err
		}
	}
	if *gridArg != "" {
		req.grid, err = parseGrid(*gridArg)
		if err != nil {
			return err
		}
	}
	if *normalizeArg != "" && flag.NArg() != 1 {
		return errors.New("-normalize needs exactly one input file")
	}

	set := &plates.Set{}
	defer multierr.AppendInvoke(&err, multierr.Invoke(set.Close))

	for _, fname := range flag.Args() {
		if err := set.Add(fname, fname); err != nil {
			return err
		}
	}
	for i := range set.Len() {
		if err := inspect(os.Stdout, set, i, &req); err != nil {
			return err
		}
	}

	if *normalizeArg != "" {
		return normalize(*normalizeArg, set.Raster(0))
	}
	return nil
}

type request struct {
	region []int // x1, y1, x2, y2
	grid   []int // w, h
}

func inspect(w io.Writer, set *plates.Set, i int, req *request) error {
	r := set.Raster(i)

	polarity := "ink is 1"
	if !r.ZeroWhite() {
		polarity = "ink is 0"
	}

	fmt.Fprintf(w, "%s:\n", set.Label(i))
	fmt.Fprintf(w, "  size:        %d×%d pixels\n", r.Width(), r.Height())
	fmt.Fprintf(w, "  resolution:  %g×%g per %s (%g×%g dpi)\n",
		r.XResolution(), r.YResolution(), r.Unit(), r.XDPI(), r.YDPI())
	fmt.Fprintf(w, "  physical:    %.3f×%.3f in\n",
		float64(r.Width())/r.XDPI(), float64(r.Height())/r.YDPI())
	fmt.Fprintf(w, "  compression: %s\n", r.Compression())
	fmt.Fprintf(w, "  strips:      %d of %d rows\n", r.NumStrips(), r.RowsPerStrip())
	fmt.Fprintf(w, "  polarity:    %s\n", polarity)

	total, err := set.Sample(i, 0, 0, r.Width()-1, r.Height()-1)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  coverage:    %.2f%%\n", total)

	if req.region != nil {
		c := req.region
		cov, err := set.Sample(i, c[0], c[1], c[2], c[3])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  region:      %.2f%% in (%d,%d)-(%d,%d)\n", cov, c[0], c[1], c[2], c[3])
	}

	if req.grid != nil {
		gw, gh := req.grid[0], req.grid[1]
		grid, err := set.ScaleRegion(i, 0, 0, r.Width()-1, r.Height()-1, gw, gh)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  grid (percent ink):\n")
		for y := range gh {
			row := grid.Pix[y*grid.Stride : y*grid.Stride+gw]
			fmt.Fprint(w, "   ")
			for _, v := range row {
				fmt.Fprintf(w, " %3d", (int(v)*100+127)/255)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

// normalize writes a PackBits compressed copy of r, with ink stored as set
// bits and the resolution given in pixels per inch.
func normalize(fname string, r *bitonal.Raster) (err error) {
	b, err := r.Bitmap()
	if err != nil {
		return err
	}

	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	return bitonal.Encode(f, b, &bitonal.EncodeOptions{
		Compression: bitonal.CompressionPackBits,
		XDPI:        r.XDPI(),
		YDPI:        r.YDPI(),
	})
}

func parseRegion(s string) ([]int, error) {
	c, err := parseInts(s, ",", 4)
	if err != nil {
		return nil, fmt.Errorf("-region: %w", err)
	}
	return c, nil
}

func parseGrid(s string) ([]int, error) {
	c, err := parseInts(strings.ToLower(s), "x", 2)
	if err != nil {
		return nil, fmt.Errorf("-grid: %w", err)
	}
	if c[0] <= 0 || c[1] <= 0 {
		return nil, fmt.Errorf("-grid: invalid size %q", s)
	}
	return c, nil
}

func parseInts(s, sep string, n int) ([]int, error) {
	parts := strings.Split(s, sep)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d numbers, got %q", n, s)
	}
	res := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}
