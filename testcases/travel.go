// seehuhn.de/go/dropfill - droplet infill for machine programs
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

package testcases

var travelCases = []Program{
	crossing(),
	hops(),
}

// crossing has fill lines which run through a 10 mm wide band in the
// middle of a 40 mm square, entering and leaving it on every line.
func crossing() Program {
	b := newBuilder(0.04)
	for i := range 2 {
		b.layer(0.25*float64(i+1), false)
		b.feature("fill")
		b.zigzag(-20, -5, 20, 5, 1)
		b.feature("inner perimeter")
		b.loop(-20.5, -5.5, 20.5, 5.5)
	}
	return b.program("crossing")
}

// hops consists of short fill islands connected by long travel moves.
func hops() Program {
	b := newBuilder(0.05)
	b.layer(0.2, false)
	b.feature("travel")
	b.travel(-30, 0)
	for _, x := range []float64{-20, 0, 20} {
		b.feature("travel")
		b.travel(x, -2)
		b.travel(x, 0)
		b.feature("fill")
		b.zigzag(x, 0, x+4, 2, 0.5)
	}
	b.feature("outer perimeter")
	b.loop(-25, -5, 25, 5)
	return b.program("hops")
}
