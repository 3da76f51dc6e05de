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

// Package profile implements the -cpuprofile and -memprofile options of
// the command line tools.
package profile

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"go.uber.org/multierr"
)

// Start starts CPU profiling if cpuprofile is not empty.  The returned
// function stops the CPU profile and, if memprofile is not empty, writes an
// allocation profile.  Callers should arrange for stop to be called before
// the program exits.
func Start(cpuprofile, memprofile string) (stop func() error, err error) {
	var cpuFile *os.File
	if cpuprofile != "" {
		cpuFile, err = os.Create(cpuprofile)
		if err != nil {
			return nil, fmt.Errorf("cannot create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			cpuFile.Close()
			return nil, fmt.Errorf("cannot start CPU profile: %w", err)
		}
	}

	stop = func() error {
		var err error
		if cpuFile != nil {
			pprof.StopCPUProfile()
			err = multierr.Append(err, cpuFile.Close())
		}
		if memprofile != "" {
			err = multierr.Append(err, writeAllocs(memprofile))
		}
		return err
	}
	return stop, nil
}

func writeAllocs(fname string) (err error) {
	allocs := pprof.Lookup("allocs")
	if allocs == nil {
		return errors.New("allocation profile not available")
	}

	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("cannot create memory profile: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	runtime.GC()
	return allocs.WriteTo(f, 0)
}
