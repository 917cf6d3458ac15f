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

// Square options.
type squareOptions struct {
	layers int
	pulse  bool
	reset  bool // start every layer with M1
}

// Square returns a program printing a 20 mm square block of 0.2 mm
// layers: an outer and an inner perimeter and a zig-zag infill with
// 0.5 mm line spacing.
func Square(layers int) Program {
	return square("square", squareOptions{layers: layers})
}

func square(name string, opt squareOptions) Program {
	b := newBuilder(0.05)
	b.pulse = opt.pulse
	b.line("; generated sample program")
	b.line("G17")
	for i := range opt.layers {
		b.layer(0.2*float64(i+1), opt.reset)

		b.feature("outer perimeter")
		b.loop(0, 0, 20, 20)
		b.feature("inner perimeter")
		b.loop(0.5, 0.5, 19.5, 19.5)

		b.feature("travel")
		b.travel(1, 1)
		b.feature("fill")
		b.zigzag(1, 1, 19, 19, 0.5)
		if b.pulse {
			b.line("PRIO_OFF")
		}
	}
	b.feature("travel")
	b.travel(0, 0)
	b.line("M30")
	return b.program(name)
}

var squareCases = []Program{
	square("plain", squareOptions{layers: 3}),
	square("pulsed", squareOptions{layers: 3, pulse: true}),
	square("reset", squareOptions{layers: 3, reset: true}),
	square("single_layer", squareOptions{layers: 1}),
}
