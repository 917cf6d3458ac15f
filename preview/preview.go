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

// Package preview draws the droplets placed on a layer.
//
// For every layer and bounding volume, a grey-scale PNG image shows the
// effective rectangle of the volume, the droplets of the layer below and
// the droplets of the layer itself.  Optionally, the same picture is
// written as a vector PDF file.
package preview

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Grey levels of the picture elements.
const (
	levelFrame   = 128
	levelSupport = 72
	levelDroplet = 255
)

// margin is the space, in mm, around the effective rectangle.
const margin = 1.0

// dropletScale is the diameter of a drawn droplet relative to the droplet
// width, so that neighbouring droplets stay distinguishable.
const dropletScale = 0.8

// kappa places the control points of a cubic Bézier quarter circle.
const kappa = 0.5522847498307936

// Layer holds the droplets of one layer inside one volume.
type Layer struct {
	Index  int // layer number
	Volume int // volume number
	Z      float64

	// Bounds is the effective rectangle of the volume at height Z.
	Bounds rect.Rect

	// Droplets are the centres of the droplets placed on this layer, and
	// Support the occupied raster cells of the layer below.
	Droplets []vec.Vec2
	Support  []vec.Vec2

	// Diameter is the droplet width in mm.
	Diameter float64
}

// Name returns the base name of the preview files of l.
func (l *Layer) Name() string {
	return fmt.Sprintf("layer-%04d-v%d", l.Index, l.Volume)
}

// Writer writes preview files into a directory.
type Writer struct {
	Dir   string
	Scale float64 // pixels per mm
	PDF   bool

	rast *Rasteriser
}

// NewWriter creates dir, if needed, and returns a Writer for it.
func NewWriter(dir string, scale float64, withPDF bool) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Writer{
		Dir:   dir,
		Scale: scale,
		PDF:   withPDF,
		rast:  NewRasteriser(rect.Rect{}),
	}, nil
}

// WriteLayer writes the preview image of l, and the PDF version if
// enabled.
func (w *Writer) WriteLayer(l *Layer) error {
	base := filepath.Join(w.Dir, l.Name())

	img := l.Image(w.Scale, w.rast)
	fd, err := os.Create(base + ".png")
	if err != nil {
		return err
	}
	err = png.Encode(fd, img)
	if err2 := fd.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return err
	}

	if w.PDF {
		return l.WritePDF(base + ".pdf")
	}
	return nil
}

// Image draws l at the given resolution in pixels per mm.  If r is nil, a
// new rasteriser is used.
func (l *Layer) Image(scale float64, r *Rasteriser) *image.Gray {
	b := l.Bounds
	width := int(math.Ceil((b.URx - b.LLx + 2*margin) * scale))
	height := int(math.Ceil((b.URy - b.LLy + 2*margin) * scale))
	img := image.NewGray(image.Rect(0, 0, width, height))

	clip := rect.Rect{URx: float64(width), URy: float64(height)}
	if r == nil {
		r = NewRasteriser(clip)
	} else {
		r.Reset(clip)
	}
	// device y grows downwards, user space y upwards
	r.CTM = matrix.Matrix{scale, 0, 0, -scale, (margin - b.LLx) * scale, (b.URy + margin) * scale}

	paint := func(p *path.Data, level uint8) {
		r.Fill(p, func(y, x int, coverage []float32) {
			row := img.Pix[y*img.Stride+x:]
			for i, c := range coverage {
				v := uint8(math.Round(float64(c) * float64(level)))
				row[i] = max(row[i], v)
			}
		})
	}

	paint(frame(b, 1/scale), levelFrame)
	radius := dropletScale * l.Diameter / 2
	if len(l.Support) > 0 {
		paint(discs(l.Support, radius), levelSupport)
	}
	if len(l.Droplets) > 0 {
		paint(discs(l.Droplets, radius), levelDroplet)
	}
	return img
}

// frame returns the outline of b as a closed band of width w inside b.
func frame(b rect.Rect, w float64) *path.Data {
	p := &path.Data{}
	p.MoveTo(vec.Vec2{X: b.LLx, Y: b.LLy}).
		LineTo(vec.Vec2{X: b.URx, Y: b.LLy}).
		LineTo(vec.Vec2{X: b.URx, Y: b.URy}).
		LineTo(vec.Vec2{X: b.LLx, Y: b.URy}).
		Close()
	p.MoveTo(vec.Vec2{X: b.LLx + w, Y: b.LLy + w}).
		LineTo(vec.Vec2{X: b.LLx + w, Y: b.URy - w}).
		LineTo(vec.Vec2{X: b.URx - w, Y: b.URy - w}).
		LineTo(vec.Vec2{X: b.URx - w, Y: b.LLy + w}).
		Close()
	return p
}

// discs returns a path made of one circle of radius r around every
// centre.  All circles run counter-clockwise.
func discs(centres []vec.Vec2, r float64) *path.Data {
	p := &path.Data{}
	k := kappa * r
	for _, c := range centres {
		p.MoveTo(vec.Vec2{X: c.X + r, Y: c.Y}).
			CubeTo(vec.Vec2{X: c.X + r, Y: c.Y + k}, vec.Vec2{X: c.X + k, Y: c.Y + r}, vec.Vec2{X: c.X, Y: c.Y + r}).
			CubeTo(vec.Vec2{X: c.X - k, Y: c.Y + r}, vec.Vec2{X: c.X - r, Y: c.Y + k}, vec.Vec2{X: c.X - r, Y: c.Y}).
			CubeTo(vec.Vec2{X: c.X - r, Y: c.Y - k}, vec.Vec2{X: c.X - k, Y: c.Y - r}, vec.Vec2{X: c.X, Y: c.Y - r}).
			CubeTo(vec.Vec2{X: c.X + k, Y: c.Y - r}, vec.Vec2{X: c.X + r, Y: c.Y - k}, vec.Vec2{X: c.X + r, Y: c.Y}).
			Close()
	}
	return p
}
