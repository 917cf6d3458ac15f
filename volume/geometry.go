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

package volume

import (
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// SegmentIntersect returns the intersection point of the segments a-b and
// c-d.  Parallel and collinear segments have no usable intersection.
func SegmentIntersect(a, b, c, d vec.Vec2) (vec.Vec2, bool) {
	ab := b.Sub(a)
	cd := d.Sub(c)
	den := ab.X*cd.Y - ab.Y*cd.X
	if den == 0 {
		return vec.Vec2{}, false
	}

	ac := c.Sub(a)
	t := (ac.X*cd.Y - ac.Y*cd.X) / den
	u := (ac.X*ab.Y - ac.Y*ab.X) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return vec.Vec2{}, false
	}
	return a.Add(ab.Mul(t)), true
}

// Inside reports whether p lies strictly inside r.
func Inside(p vec.Vec2, r rect.Rect) bool {
	return p.X > r.LLx && p.X < r.URx && p.Y > r.LLy && p.Y < r.URy
}

// Edges returns the left, right, top and bottom edges of r, in this
// order.
func Edges(r rect.Rect) [4][2]vec.Vec2 {
	ll := vec.Vec2{X: r.LLx, Y: r.LLy}
	lr := vec.Vec2{X: r.URx, Y: r.LLy}
	ul := vec.Vec2{X: r.LLx, Y: r.URy}
	ur := vec.Vec2{X: r.URx, Y: r.URy}
	return [4][2]vec.Vec2{
		{ll, ul},
		{lr, ur},
		{ul, ur},
		{ll, lr},
	}
}

// Crosses reports whether the segment a-b touches the closed rectangle r.
func Crosses(a, b vec.Vec2, r rect.Rect) bool {
	if Inside(a, r) || Inside(b, r) {
		return true
	}
	for _, e := range Edges(r) {
		if _, ok := SegmentIntersect(a, b, e[0], e[1]); ok {
			return true
		}
	}
	return false
}
