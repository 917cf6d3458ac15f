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
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/dropfill/mpf"
	"seehuhn.de/go/dropfill/volume"
)

// pointTolerance is the distance below which two intersection points are
// considered equal.
const pointTolerance = 1e-9

// ClipToVolume splits the motion m at the walls of the effective rectangle
// of v at the height of m.End.  The pieces inside the rectangle are tagged
// with v.  The extrusion of m is distributed over the pieces in proportion
// to their length.
//
// If m does not reach into v, the result holds m unchanged.  The second
// return value reports a grazing motion for which more than two distinct
// wall intersections were found; the additional points are ignored.
func ClipToVolume(m Movement, v *volume.Volume) ([]Movement, bool) {
	z := m.End.Z
	if m.Start == nil || !v.ContainsZ(z) {
		return []Movement{m}, false
	}
	a, b := m.Start.XY(), m.End.XY()
	length := mpf.Distance(*m.Start, m.End)
	if length == 0 {
		return []Movement{m}, false
	}

	r := v.RectAt(z)
	if volume.Inside(a, r) && volume.Inside(b, r) {
		m.Volume = v
		return []Movement{m}, false
	}

	var hits []vec.Vec2
	degenerate := false
edges:
	for _, e := range volume.Edges(r) {
		p, ok := volume.SegmentIntersect(a, b, e[0], e[1])
		if !ok {
			continue
		}
		for _, q := range hits {
			if p.Sub(q).Length() < pointTolerance {
				continue edges
			}
		}
		if len(hits) == 2 {
			degenerate = true
			continue
		}
		hits = append(hits, p)
	}
	if len(hits) == 0 {
		return []Movement{m}, degenerate
	}
	if len(hits) == 2 && hits[1].Sub(a).Length() < hits[0].Sub(a).Length() {
		hits[0], hits[1] = hits[1], hits[0]
	}

	dE := m.End.E - m.Start.E
	points := make([]mpf.Position, 0, 4)
	points = append(points, *m.Start)
	for _, h := range hits {
		p := m.End.WithXY(h)
		p.E = m.Start.E + dE*h.Sub(a).Length()/length
		p.Comment = ""
		points = append(points, p)
	}
	points = append(points, m.End)

	var pieces []Movement
	tagged := false
	for i := 1; i < len(points); i++ {
		start, end := points[i-1], points[i]
		if mpf.Distance(start, end) == 0 {
			continue
		}
		piece := Movement{
			Start:   &start,
			End:     end,
			Feature: m.Feature,
		}
		mid := start.XY().Add(end.XY()).Mul(0.5)
		if volume.Inside(mid, r) {
			piece.Volume = v
			tagged = true
		}
		pieces = append(pieces, piece)
	}
	if !tagged {
		return []Movement{m}, degenerate
	}
	return pieces, degenerate
}
