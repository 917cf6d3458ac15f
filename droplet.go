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
	"math"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/dropfill/mpf"
	"seehuhn.de/go/dropfill/volume"
)

// splitEpsilon absorbs rounding errors when a length is divided by a pitch
// which divides it exactly.
const splitEpsilon = 1e-9

// splitToDroplets divides m into n = ceil(length/pitch) equal intervals and
// returns a candidate droplet at the centre of each.  Every candidate
// carries the extrusion of its interval, scaled by multiplier.  The droplet
// extrusion is also stored in m.DropletE.
func splitToDroplets(m *Movement, pitch, multiplier float64) []Movement {
	if m.Start == nil || !(pitch > 0) {
		return nil
	}
	length := m.Length()
	if length == 0 {
		return nil
	}
	n := max(int(math.Ceil(length/pitch-splitEpsilon)), 1)

	a := m.Start.XY()
	step := m.End.XY().Sub(a).Mul(1 / float64(n))
	dE := m.Increment() / float64(n)
	m.DropletE = dE * multiplier

	res := make([]Movement, n)
	for i := range res {
		start := m.End.WithXY(a.Add(step.Mul(float64(i) + 0.5)))
		start.E = m.Start.E + dE*float64(i)
		start.Comment = ""
		end := start
		end.E += m.DropletE
		res[i] = Movement{
			Start:    &start,
			End:      end,
			Volume:   m.Volume,
			Feature:  m.Feature,
			DropletE: m.DropletE,
		}
	}
	return res
}

// densityIndices selects, out of n candidates, the indices of the droplets
// to keep for density d.  The number of kept droplets is round(n*d),
// clamped to [1, n], and is non-decreasing in d.  Where possible, the kept
// droplets are spread evenly over the candidates, keeping inset candidates
// at each end free.  Otherwise a centred block of candidates is used.
func densityIndices(n int, d, inset float64) []int {
	if n == 0 || !(d > 0) {
		return nil
	}
	steps := int(math.Round(float64(n)*d)) - 1
	if steps+1 >= n {
		return seq(0, n)
	}

	switch {
	case steps > 1:
		span := float64(n) - 1 - 2*inset
		if span < float64(steps) {
			off := (n - (steps + 1)) / 2
			return seq(off, off+steps+1)
		}
		first := int(math.Floor(inset))
		res := make([]int, steps+1)
		for i := range res {
			res[i] = first + int(math.Round(float64(i)*span/float64(steps)))
		}
		return res
	case steps == 1:
		third := n / 3
		first := third - 1
		if float64(n)/3 > 1.5 {
			first = third
		}
		return []int{max(first, 0), 2 * n / 3}
	default:
		return []int{n / 2}
	}
}

func seq(from, to int) []int {
	res := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		res = append(res, i)
	}
	return res
}

// reduceDropletsToDensity returns the subset of droplets selected by
// densityIndices.
func reduceDropletsToDensity(droplets []Movement, d, inset float64) []Movement {
	idx := densityIndices(len(droplets), d, inset)
	res := make([]Movement, len(idx))
	for i, k := range idx {
		res[i] = droplets[k]
	}
	return res
}

// sites searches the previous raster generation of m.Volume for droplet
// positions on or next to m which are supported from below.  The motion is
// sampled at the raster pitch; at every sample the point itself and the
// points one cell to the left and right are tested.  Samples closer to the
// wall than the inset are skipped, where the inset shrinks through the ramp
// zone of the volume.  Only sites which fall on the current raster
// generation are returned.
func (c *Config) sites(m *Movement) []Site {
	v := m.Volume
	prev := v.Grid(volume.Previous)
	if prev == nil || m.Start == nil {
		return nil
	}
	length := m.Length()
	if length == 0 {
		return nil
	}
	z := m.End.Z
	cur := v.CurrentGrid(z)
	res := v.Pitch

	a := m.Start.XY()
	step := m.End.XY().Sub(a).Mul(res / length)
	normal := vec.Vec2{X: -step.Y, Y: step.X}
	n := int(math.Ceil(length/res - splitEpsilon))

	w := c.Droplet.Width
	insetCells := int(math.Floor(c.Inset.Minimum(w)/res +
		c.Inset.Inset(w)/res*(1-v.RampFraction(z))))

	var sites []Site
	for i := range n {
		p := a.Add(step.Mul(float64(i)))
		cell := prev.CellIndex(p)
		if cell.X < insetCells || cell.X >= prev.Width-insetCells ||
			cell.Y < insetCells || cell.Y >= prev.Height-insetCells {
			continue
		}
		for side, q := range [3]vec.Vec2{p, p.Add(normal), p.Sub(normal)} {
			if !cur.In(cur.CellIndex(q)) {
				continue
			}
			if prev.Occupied(q, c.Raster.SupportWindow, c.Raster.SupportCorner) == 0 {
				continue
			}
			pos := m.End.WithXY(q)
			pos.Comment = ""
			sites = append(sites, Site{Index: i, Side: side, Pos: pos})
		}
	}
	return sites
}

// dropletAt returns a droplet at the given position.
func dropletAt(pos mpf.Position, m *Movement) Movement {
	start := pos
	end := pos
	end.E += m.DropletE
	return Movement{
		Start:    &start,
		End:      end,
		Volume:   m.Volume,
		Feature:  m.Feature,
		DropletE: m.DropletE,
	}
}
