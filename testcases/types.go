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

// Package testcases provides sample machine programs.
package testcases

import (
	"fmt"
	"math"
	"strings"
)

// Program is a sample machine program.
type Program struct {
	Name   string   // lowercase a-z and _ only
	Layers int      // number of layer changes
	Lines  []string // program text, without line terminators
}

// String returns the program text.
func (p *Program) String() string {
	return strings.Join(p.Lines, "\n") + "\n"
}

// Reader returns a reader for the program text.
func (p *Program) Reader() *strings.Reader {
	return strings.NewReader(p.String())
}

// builder writes programs with absolute coordinates.
type builder struct {
	lines  []string
	x, y   float64
	e      float64
	rate   float64 // extrusion per mm
	pulse  bool    // bracket extrusions with pulse markers
	layers int
}

func newBuilder(rate float64) *builder {
	return &builder{rate: rate}
}

func (b *builder) line(format string, args ...any) {
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

func (b *builder) feature(name string) {
	b.line("; feature %s", name)
}

// layer starts a new layer at height z.
func (b *builder) layer(z float64, reset bool) {
	b.feature("plane change")
	if reset {
		b.line("M1 ")
		b.e = 0
	}
	b.line("G0 Z%.3f F600", z)
	b.layers++
}

func (b *builder) travel(x, y float64) {
	if b.pulse {
		b.line("PRIO_OFF")
	}
	b.line("G0 X%.3f Y%.3f F3000", x, y)
	b.x, b.y = x, y
}

func (b *builder) extrude(x, y float64) {
	if b.pulse {
		b.line("PRIO_ON")
	}
	b.e += math.Hypot(x-b.x, y-b.y) * b.rate
	b.line("G1 X%.3f Y%.3f E%.5f F1200", x, y, b.e)
	b.x, b.y = x, y
}

// loop extrudes the outline of a rectangle, starting at its lower left
// corner.
func (b *builder) loop(x0, y0, x1, y1 float64) {
	b.travel(x0, y0)
	b.extrude(x1, y0)
	b.extrude(x1, y1)
	b.extrude(x0, y1)
	b.extrude(x0, y0)
}

// zigzag fills a rectangle with lines parallel to the X axis.
func (b *builder) zigzag(x0, y0, x1, y1, spacing float64) {
	n := int(math.Floor((y1-y0)/spacing + 1e-9))
	b.travel(x0, y0)
	for i := 0; i <= n; i++ {
		y := y0 + float64(i)*spacing
		if i > 0 {
			b.extrude(b.x, y)
		}
		if i%2 == 0 {
			b.extrude(x1, y)
		} else {
			b.extrude(x0, y)
		}
	}
}

func (b *builder) program(name string) Program {
	return Program{Name: name, Layers: b.layers, Lines: b.lines}
}
