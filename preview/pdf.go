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
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/graphics/color"
)

// ptPerMM converts millimetres to PDF points.
const ptPerMM = 72 / 25.4

// WritePDF writes l as a single page PDF file, at a scale of 1:1.
func (l *Layer) WritePDF(fname string) error {
	b := l.Bounds
	paper := &pdf.Rectangle{
		URx: (b.URx - b.LLx + 2*margin) * ptPerMM,
		URy: (b.URy - b.LLy + 2*margin) * ptPerMM,
	}
	page, err := document.CreateSinglePage(fname, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	page.Transform(matrix.Matrix{ptPerMM, 0, 0, ptPerMM,
		(margin - b.LLx) * ptPerMM, (margin - b.LLy) * ptPerMM})

	page.SetStrokeColor(color.DeviceGray(0.5))
	page.SetLineWidth(0.1)
	page.SetLineJoin(graphics.LineJoinMiter)
	page.Rectangle(b.LLx, b.LLy, b.URx-b.LLx, b.URy-b.LLy)
	page.Stroke()

	radius := dropletScale * l.Diameter / 2
	if len(l.Support) > 0 {
		page.SetFillColor(color.DeviceGray(0.75))
		drawPath(page, discs(l.Support, radius))
		page.Fill()
	}
	if len(l.Droplets) > 0 {
		page.SetFillColor(color.DeviceGray(0))
		drawPath(page, discs(l.Droplets, radius))
		page.Fill()
	}

	return page.Close()
}

// pathBuilder is the part of a PDF page used for path construction.
type pathBuilder interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CurveTo(x1, y1, x2, y2, x3, y3 float64)
	ClosePath()
}

// drawPath adds p to the current path of the page.
func drawPath(page pathBuilder, p *path.Data) {
	for cmd, pts := range p.Iter().ToCubic() {
		switch cmd {
		case path.CmdMoveTo:
			page.MoveTo(pts[0].X, pts[0].Y)
		case path.CmdLineTo:
			page.LineTo(pts[0].X, pts[0].Y)
		case path.CmdCubeTo:
			page.CurveTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
		case path.CmdClose:
			page.ClosePath()
		}
	}
}
