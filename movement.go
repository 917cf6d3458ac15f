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

package dropfill

import (
	"seehuhn.de/go/dropfill/mpf"
	"seehuhn.de/go/dropfill/volume"
)

// Movement is a queued motion, or a queued line which is copied verbatim.
type Movement struct {
	// Start is the position before the motion.  It is nil for verbatim
	// lines.
	Start *mpf.Position

	// End is the position after the motion.
	End mpf.Position

	// Volume is set on the part of a motion which lies inside a bounding
	// volume.
	Volume *volume.Volume

	// Original is the source line of verbatim movements.
	Original string

	// Verbatim marks lines which are copied to the output unchanged.
	Verbatim bool

	// Feature is the feature which was active when the line was read.
	Feature *mpf.Feature

	// DropletE is the extrusion of a single droplet placed on this motion.
	DropletE float64

	// Droplets replaces an in-volume motion once the droplets have been
	// placed.
	Droplets []Movement

	// Sites lists the candidate sites, found on the layer below, for
	// droplets on this motion.
	Sites []Site

	required int
}

// Site is a supported droplet position.
type Site struct {
	// Index is the step along the motion at which the site was found, and
	// Side tells whether the site lies on the motion (0) or is offset to
	// the left (1) or right (2).  Accepted sites are emitted in this order.
	Index, Side int

	Pos mpf.Position
}

// RenderKind says how a movement is written to the output.
type RenderKind int

// These are the possible render kinds.
const (
	PassThrough RenderKind = iota
	InVolume
	PlainExtrusion
	PlainTravel
)

// Kind returns the render kind of m.
func (m *Movement) Kind() RenderKind {
	switch {
	case m.Verbatim || m.Start == nil:
		return PassThrough
	case m.Volume != nil:
		return InVolume
	case m.Start.E != m.End.E:
		return PlainExtrusion
	default:
		return PlainTravel
	}
}

// Increment returns the extrusion consumed by the motion.
func (m *Movement) Increment() float64 {
	if m.Start == nil {
		return 0
	}
	return m.End.E - m.Start.E
}

// Length returns the XY length of the motion.
func (m *Movement) Length() float64 {
	if m.Start == nil {
		return 0
	}
	return mpf.Distance(*m.Start, m.End)
}
