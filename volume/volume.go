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

// Package volume implements the bounding volumes inside which infill is
// replaced by droplets.
//
// A volume is an axis-aligned rectangle extruded through a Z range.  Near
// the top of the range, inside the ramp zone, the rectangle shrinks
// towards its centre and the target density moves towards the ramp
// density.  Callers must therefore always ask for the rectangle at a given
// height.  Each volume owns a two-generation occupancy raster which
// records where droplets were placed on the previous and on the current
// layer.
package volume

import (
	"fmt"

	"seehuhn.de/go/geom/rect"
)

// Volume is a bounding volume together with its occupancy raster.
//
// A Volume is not safe for concurrent use.
type Volume struct {
	// Rect is the untapered footprint in the XY plane.
	Rect rect.Rect

	// ZMin and ZMax give the height range of the volume.  Both ends are
	// included.
	ZMin, ZMax float64

	// Density is the fraction of the original extrusion which is
	// deposited as droplets below the ramp zone.  It lies in [0, 1].
	Density float64

	// RampDensity is the density reached at ZMax.  It is only used if
	// RampHeight is positive.
	RampDensity float64

	// RampHeight is the height of the zone at the top of the volume in
	// which the density ramps and the rectangle tapers.
	RampHeight float64

	// TaperInset is the distance by which each side of the rectangle is
	// moved inwards at ZMax.
	TaperInset float64

	// ZLift is added to the Z coordinate of travel moves which cross the
	// volume.
	ZLift float64

	// Pitch is the size of a raster cell in mm.
	Pitch float64

	gen [2]*Grid
}

// ContainsZ reports whether the height z lies in the Z range of v.
func (v *Volume) ContainsZ(z float64) bool {
	return z >= v.ZMin && z <= v.ZMax
}

// RampFraction returns how far z lies inside the ramp zone, from 0 at the
// bottom of the zone (and below) to 1 at ZMax (and above).
func (v *Volume) RampFraction(z float64) float64 {
	if v.RampHeight <= 0 {
		return 0
	}
	f := (z - (v.ZMax - v.RampHeight)) / v.RampHeight
	return min(max(f, 0), 1)
}

// DensityAt returns the target density at height z.
func (v *Volume) DensityAt(z float64) float64 {
	if v.RampHeight <= 0 {
		return v.Density
	}
	return v.Density + (v.RampDensity-v.Density)*v.RampFraction(z)
}

// RectAt returns the effective rectangle at height z.  Inside the ramp
// zone the rectangle is inset on all sides, keeping its centre fixed.
func (v *Volume) RectAt(z float64) rect.Rect {
	inset := v.TaperInset * v.RampFraction(z)
	if inset <= 0 {
		return v.Rect
	}
	halfW := (v.Rect.URx - v.Rect.LLx) / 2
	halfH := (v.Rect.URy - v.Rect.LLy) / 2
	inset = min(inset, halfW, halfH)
	return rect.Rect{
		LLx: v.Rect.LLx + inset,
		LLy: v.Rect.LLy + inset,
		URx: v.Rect.URx - inset,
		URy: v.Rect.URy - inset,
	}
}

// Check reports an error if the parameters of v are inconsistent.
func (v *Volume) Check() error {
	w := v.Rect.URx - v.Rect.LLx
	h := v.Rect.URy - v.Rect.LLy
	switch {
	case w <= 0 || h <= 0:
		return fmt.Errorf("empty footprint %gx%g", w, h)
	case v.ZMax < v.ZMin:
		return fmt.Errorf("Z range [%g, %g] is empty", v.ZMin, v.ZMax)
	case v.Density < 0 || v.Density > 1:
		return fmt.Errorf("density %g outside [0, 1]", v.Density)
	case v.RampHeight < 0 || v.RampHeight > v.ZMax-v.ZMin:
		return fmt.Errorf("ramp height %g outside the Z range", v.RampHeight)
	case v.RampHeight > 0 && (v.RampDensity < 0 || v.RampDensity > 1):
		return fmt.Errorf("ramp density %g outside [0, 1]", v.RampDensity)
	case v.TaperInset < 0 || 2*v.TaperInset >= min(w, h):
		return fmt.Errorf("taper inset %g does not fit a %gx%g footprint", v.TaperInset, w, h)
	case v.ZLift < 0:
		return fmt.Errorf("negative Z lift %g", v.ZLift)
	case v.Pitch <= 0:
		return fmt.Errorf("raster pitch %g is not positive", v.Pitch)
	}
	return nil
}
