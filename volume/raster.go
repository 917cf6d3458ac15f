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
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Raster generations of a volume.
const (
	Previous = 0 // finalised occupancy of the layer below
	Current  = 1 // occupancy of the layer being placed
)

// Cell addresses a raster cell.  Cells outside the grid are valid values;
// lookups treat them as unoccupied.
type Cell struct {
	X, Y int
}

// Grid is one generation of the occupancy raster of a volume.  Cell (0, 0)
// is centred on the lower left corner of Bounds.
type Grid struct {
	// Bounds is the effective rectangle of the volume at the height where
	// the grid was allocated.
	Bounds rect.Rect

	// Pitch is the cell size in mm.
	Pitch float64

	// Width and Height give the number of cells in x and y direction.
	Width, Height int

	cells    []uint32 // row-major, x varies fastest
	occupied int
}

// NewGrid allocates an unoccupied grid covering r.
func NewGrid(r rect.Rect, pitch float64) *Grid {
	w := int(math.Ceil((r.URx-r.LLx)/pitch)) + 1
	h := int(math.Ceil((r.URy-r.LLy)/pitch)) + 1
	w = max(w, 1)
	h = max(h, 1)
	return &Grid{
		Bounds: r,
		Pitch:  pitch,
		Width:  w,
		Height: h,
		cells:  make([]uint32, w*h),
	}
}

// CellIndex returns the cell containing p.
func (g *Grid) CellIndex(p vec.Vec2) Cell {
	return Cell{
		X: int(math.Round((p.X - g.Bounds.LLx) / g.Pitch)),
		Y: int(math.Round((p.Y - g.Bounds.LLy) / g.Pitch)),
	}
}

// In reports whether c lies inside the grid.
func (g *Grid) In(c Cell) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// At returns the occupancy of c.  Cells outside the grid are unoccupied.
func (g *Grid) At(c Cell) uint32 {
	if !g.In(c) {
		return 0
	}
	return g.cells[c.Y*g.Width+c.X]
}

// Mark records a droplet at p.  It reports false, and changes nothing, if
// p lies outside the grid.
func (g *Grid) Mark(p vec.Vec2) bool {
	c := g.CellIndex(p)
	if !g.In(c) {
		return false
	}
	idx := c.Y*g.Width + c.X
	if g.cells[idx] == 0 {
		g.occupied++
	}
	g.cells[idx] = 1
	return true
}

// Occupied scans the window x window neighbourhood of the cell containing
// p and returns the first non-zero occupancy found, or 0.  A diamond shaped
// region of the given radius is cut from each corner of the window.
//
// The window size must be odd and the corner radius must not exceed
// (window-1)/2.
func (g *Grid) Occupied(p vec.Vec2, window, corner int) uint32 {
	center := g.CellIndex(p)
	side := (window - 1) / 2
	corner = min(corner, side)

	for i := center.X - side; i <= center.X+side; i++ {
		if i < 0 || i >= g.Width {
			continue
		}
		cut := max(0, corner-(side-abs(center.X-i)))
		for j := center.Y - side + cut; j <= center.Y+side-cut; j++ {
			if v := g.At(Cell{i, j}); v != 0 {
				return v
			}
		}
	}
	return 0
}

// Count returns the number of occupied cells.
func (g *Grid) Count() int {
	return g.occupied
}

// OccupiedCells returns the centres of all occupied cells.
func (g *Grid) OccupiedCells() []vec.Vec2 {
	res := make([]vec.Vec2, 0, g.occupied)
	for idx, v := range g.cells {
		if v == 0 {
			continue
		}
		x, y := idx%g.Width, idx/g.Width
		res = append(res, vec.Vec2{
			X: g.Bounds.LLx + float64(x)*g.Pitch,
			Y: g.Bounds.LLy + float64(y)*g.Pitch,
		})
	}
	return res
}

// Grid returns the given raster generation, or nil if it has not been
// allocated.
func (v *Volume) Grid(generation int) *Grid {
	return v.gen[generation]
}

// HasPrevious reports whether the layer below holds any droplets inside
// the volume.
func (v *Volume) HasPrevious() bool {
	g := v.gen[Previous]
	return g != nil && g.occupied > 0
}

// CurrentGrid returns the occupancy grid of the current layer.  The grid is
// allocated on first use in a layer, sized for the effective rectangle at
// height z.
func (v *Volume) CurrentGrid(z float64) *Grid {
	if v.gen[Current] == nil {
		v.gen[Current] = NewGrid(v.RectAt(z), v.Pitch)
	}
	return v.gen[Current]
}

// Advance starts a new layer.  The current generation becomes the previous
// one and the current generation is released; it is allocated again, at
// the height of the new layer, by the next call to CurrentGrid.
func (v *Volume) Advance() {
	v.gen[Previous] = v.gen[Current]
	v.gen[Current] = nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
