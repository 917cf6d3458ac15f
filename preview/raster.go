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

package preview

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// segment is a path edge in device coordinates, oriented so that y0 < y1.
type segment struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64
	dir    float32 // +1 if the original edge pointed down, -1 otherwise
}

// Rasteriser computes anti-aliased pixel coverage of filled paths, using
// the nonzero winding rule.  A Rasteriser can be reused for many paths;
// its buffers are kept between calls.
type Rasteriser struct {
	// CTM maps user space to device space.
	CTM matrix.Matrix

	// Clip is the device space region which receives coverage.  The
	// coordinates must be integers.
	Clip rect.Rect

	// Flatness is the tolerance, in device pixels, used for flattening
	// curves.
	Flatness float64

	segs   []segment
	active []int
	cover  []float32
	area   []float32

	xMin, xMax, yMin, yMax float64 // device space bounding box of segs
}

// NewRasteriser returns a rasteriser with identity transformation.
func NewRasteriser(clip rect.Rect) *Rasteriser {
	return &Rasteriser{
		CTM:      matrix.Identity,
		Clip:     clip,
		Flatness: defaultFlatness,
	}
}

// Reset prepares r for a new output region, keeping its buffers.
func (r *Rasteriser) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.segs = r.segs[:0]
	r.active = r.active[:0]
}

// Fill computes the coverage of p.  For every device row touched by the
// path, emit is called with the row number, the first column and the
// coverage values in [0, 1] of consecutive pixels.  The coverage slice is
// only valid during the call.
func (r *Rasteriser) Fill(p *path.Data, emit func(y, x int, coverage []float32)) {
	r.collect(p)
	if len(r.segs) == 0 {
		return
	}

	x0 := max(int(math.Floor(r.xMin)), int(r.Clip.LLx))
	x1 := min(int(math.Floor(r.xMax))+1, int(r.Clip.URx))
	y0 := max(int(math.Floor(r.yMin)), int(r.Clip.LLy))
	y1 := min(int(math.Floor(r.yMax))+1, int(r.Clip.URy))
	if x0 >= x1 || y0 >= y1 {
		return
	}
	width := x1 - x0
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.segs, func(a, b segment) int {
		return cmp.Compare(a.y0, b.y0)
	})
	r.active = r.active[:0]
	next := 0
	for y := y0; y < y1; y++ {
		top, bottom := float64(y), float64(y+1)
		for next < len(r.segs) && r.segs[next].y0 < bottom {
			r.active = append(r.active, next)
			next++
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.active); {
			s := &r.segs[r.active[i]]
			if s.y1 <= top {
				last := len(r.active) - 1
				r.active[i] = r.active[last]
				r.active = r.active[:last]
				continue
			}
			if r.accumulate(s, y, x0) {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		integrate(r.cover, r.area)
		lo, hi := 0, width
		for lo < hi && r.cover[lo] == 0 {
			lo++
		}
		for hi > lo && r.cover[hi-1] == 0 {
			hi--
		}
		if lo < hi {
			emit(y, x0+lo, r.cover[lo:hi])
		}
	}
}

// collect flattens p into device space segments.
func (r *Rasteriser) collect(p *path.Data) {
	r.segs = r.segs[:0]
	r.xMin, r.yMin = math.Inf(1), math.Inf(1)
	r.xMax, r.yMax = math.Inf(-1), math.Inf(-1)

	var cur, start vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			cur = p.Coords[k]
			start = cur
			k++
		case path.CmdLineTo:
			r.line(cur, p.Coords[k])
			cur = p.Coords[k]
			k++
		case path.CmdQuadTo:
			c, q := p.Coords[k], p.Coords[k+1]
			r.curve(func(t float64) vec.Vec2 {
				s := 1 - t
				return cur.Mul(s * s).Add(c.Mul(2 * s * t)).Add(q.Mul(t * t))
			}, cur.Sub(c.Mul(2)).Add(q).Length())
			cur = q
			k += 2
		case path.CmdCubeTo:
			c1, c2, q := p.Coords[k], p.Coords[k+1], p.Coords[k+2]
			d := max(cur.Sub(c1.Mul(2)).Add(c2).Length(), c1.Sub(c2.Mul(2)).Add(q).Length())
			r.curve(func(t float64) vec.Vec2 {
				s := 1 - t
				return cur.Mul(s * s * s).Add(c1.Mul(3 * s * s * t)).
					Add(c2.Mul(3 * s * t * t)).Add(q.Mul(t * t * t))
			}, 3*d)
			cur = q
			k += 3
		case path.CmdClose:
			if cur != start {
				r.line(cur, start)
			}
			cur = start
		}
	}
}

// curve flattens the curve b, whose second differences are bounded by dev
// in user space, into line segments.
func (r *Rasteriser) curve(b func(t float64) vec.Vec2, dev float64) {
	scale := math.Sqrt(math.Abs(r.CTM[0]*r.CTM[3] - r.CTM[1]*r.CTM[2]))
	n := 1
	if e := dev * scale / 4; e > r.Flatness {
		n = int(math.Ceil(math.Sqrt(e / r.Flatness)))
	}
	prev := b(0)
	for i := 1; i <= n; i++ {
		pt := b(float64(i) / float64(n))
		r.line(prev, pt)
		prev = pt
	}
}

// line adds the user space segment a-b.
func (r *Rasteriser) line(a, b vec.Vec2) {
	m := r.CTM
	ax := m[0]*a.X + m[2]*a.Y + m[4]
	ay := m[1]*a.X + m[3]*a.Y + m[5]
	bx := m[0]*b.X + m[2]*b.Y + m[4]
	by := m[1]*b.X + m[3]*b.Y + m[5]
	if math.Abs(by-ay) < horizontalThreshold {
		return
	}

	s := segment{x0: ax, y0: ay, x1: bx, y1: by, dir: 1}
	if by < ay {
		s = segment{x0: bx, y0: by, x1: ax, y1: ay, dir: -1}
	}
	s.dxdy = (s.x1 - s.x0) / (s.y1 - s.y0)
	r.segs = append(r.segs, s)

	r.xMin = min(r.xMin, ax, bx)
	r.xMax = max(r.xMax, ax, bx)
	r.yMin = min(r.yMin, s.y0)
	r.yMax = max(r.yMax, s.y1)
}

// accumulate adds the part of s inside row y to the cover and area
// buffers, whose first entry corresponds to column x0.  Coverage left of
// the buffer is carried in the first entry.
func (r *Rasteriser) accumulate(s *segment, y, x0 int) bool {
	ya := max(s.y0, float64(y))
	yb := min(s.y1, float64(y+1))
	if yb <= ya {
		return false
	}
	xa := s.x0 + s.dxdy*(ya-s.y0) - float64(x0)
	xb := s.x0 + s.dxdy*(yb-s.y0) - float64(x0)

	// walk through the pixel columns crossed by the segment
	for ya < yb {
		xn, yn := xb, yb
		switch {
		case xb > xa:
			if bound := math.Floor(xa) + 1; bound < xb {
				xn, yn = bound, ya+(bound-xa)/s.dxdy
			}
		case xb < xa:
			if bound := math.Ceil(xa) - 1; bound > xb {
				xn, yn = bound, ya+(bound-xa)/s.dxdy
			}
		}
		yn = min(max(yn, ya), yb)
		r.deposit(s.dir*float32(yn-ya), (xa+xn)/2)
		if xn == xb {
			break
		}
		xa, ya = xn, yn
	}
	return true
}

// deposit records a vertical extent c at horizontal position x.
func (r *Rasteriser) deposit(c float32, x float64) {
	pix := int(math.Floor(x))
	switch {
	case pix < 0:
		r.cover[0] += c
		r.area[0] += c
	case pix < len(r.cover):
		r.cover[pix] += c
		r.area[pix] += c * float32(1-(x-float64(pix)))
	}
}

// integrate turns accumulated cover and area values into coverage, in
// place.
func integrate(cover, area []float32) {
	var acc float32
	for i := range cover {
		v := acc + area[i]
		acc += cover[i]
		if v < 0 {
			v = -v
		}
		cover[i] = min(v, 1)
	}
}

const (
	defaultFlatness     = 0.25
	horizontalThreshold = 1e-10
)
