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

package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestFormat(t *testing.T) {
	vcs := func(rev, modified string) []debug.BuildSetting {
		return []debug.BuildSetting{
			{Key: "vcs", Value: "git"},
			{Key: "vcs.revision", Value: rev},
			{Key: "vcs.modified", Value: modified},
		}
	}

	cases := []struct {
		version  string
		settings []debug.BuildSetting
		want     string
	}{
		{"v0.2.0", vcs("0123456789abcdef", "true"), "plateproof (seehuhn.de/go/plates v0.2.0)"},
		{"(devel)", vcs("0123456789abcdef", "false"), "plateproof (seehuhn.de/go/plates 01234567)"},
		{"", vcs("0123456789abcdef", "true"), "plateproof (seehuhn.de/go/plates 01234567+dirty)"},
		{"(devel)", vcs("abc", "true"), "plateproof (seehuhn.de/go/plates abc+dirty)"},
		{"(devel)", nil, "plateproof"},
	}
	for _, c := range cases {
		info := &debug.BuildInfo{
			Main:     debug.Module{Path: "seehuhn.de/go/plates", Version: c.version},
			Settings: c.settings,
		}
		if got := format("plateproof", info); got != c.want {
			t.Errorf("format(%q) = %q, want %q", c.version, got, c.want)
		}
	}
}
