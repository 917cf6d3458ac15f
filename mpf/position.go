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

// Package mpf reads and writes the line-oriented motion programs ("MPF",
// a G-code dialect) produced by slicers for droplet extrusion machines.
//
// Only absolute coordinates are supported. A program is a sequence of
// lines; the package recognises G0/G1 motion lines, feature announcement
// comments and the M1 layer reset. All other lines are opaque.
package mpf

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// Position is the state of the machine at a point of the program.
type Position struct {
	X, Y, Z float64 // absolute coordinates in mm
	E       float64 // absolute extrusion coordinate
	F       float64 // last feedrate
	FTravel float64 // feedrate of the last move without extrusion

	// Comment is the trailing comment of the line which produced this
	// position, without the leading semicolon.
	Comment string
}

// Equal reports whether p and q describe the same machine location.
// Feedrates and comments are ignored.
func (p Position) Equal(q Position) bool {
	return p.X == q.X && p.Y == q.Y && p.Z == q.Z && p.E == q.E
}

// XY returns the horizontal coordinates of p.
func (p Position) XY() vec.Vec2 {
	return vec.Vec2{X: p.X, Y: p.Y}
}

// WithXY returns a copy of p moved to the horizontal location v.
func (p Position) WithXY(v vec.Vec2) Position {
	p.X = v.X
	p.Y = v.Y
	return p
}

// Distance returns the horizontal distance between p and q.
func Distance(p, q Position) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// IsFinite reports whether all coordinates of p are finite numbers.
func (p Position) IsFinite() bool {
	for _, v := range [...]float64{p.X, p.Y, p.Z, p.E, p.F, p.FTravel} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
