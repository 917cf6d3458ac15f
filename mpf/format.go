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

package mpf

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// DefaultDecimals is the number of decimal places used for coordinates.
const DefaultDecimals = 5

// Writer writes program lines.  Errors are sticky: after the first
// failed write all further output is discarded and Flush returns the
// error.
type Writer struct {
	w        *bufio.Writer
	decimals int
	lines    int
	err      error
}

// NewWriter returns a Writer which formats numbers with the given number
// of decimal places.
func NewWriter(w io.Writer, decimals int) *Writer {
	if decimals < 0 {
		decimals = DefaultDecimals
	}
	return &Writer{
		w:        bufio.NewWriter(w),
		decimals: decimals,
	}
}

// Line writes a single line of text.  The line terminator is added.
func (w *Writer) Line(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.w.WriteString(s); err != nil {
		w.err = err
		return
	}
	if err := w.w.WriteByte('\n'); err != nil {
		w.err = err
		return
	}
	w.lines++
}

// Comment writes a comment line.
func (w *Writer) Comment(s string) {
	w.Line("; " + s)
}

// Travel writes a rapid move to p, using the travel feedrate of p.
func (w *Writer) Travel(p Position) {
	b := w.start("G0")
	w.axis(b, 'X', p.X)
	w.axis(b, 'Y', p.Y)
	w.axis(b, 'Z', p.Z)
	if p.FTravel > 0 {
		w.axis(b, 'F', p.FTravel)
	}
	w.Line(b.String())
}

// TravelZ writes a rapid move of the Z axis only.
func (w *Writer) TravelZ(z, feed float64) {
	b := w.start("G0")
	w.axis(b, 'Z', z)
	if feed > 0 {
		w.axis(b, 'F', feed)
	}
	w.Line(b.String())
}

// Extrude writes a linear move to p with extrusion, using the feedrate
// of p.
func (w *Writer) Extrude(p Position) {
	b := w.start("G1")
	w.axis(b, 'X', p.X)
	w.axis(b, 'Y', p.Y)
	w.axis(b, 'E', p.E)
	if p.F > 0 {
		w.axis(b, 'F', p.F)
	}
	w.Line(b.String())
}

// ExtrudeZ writes a linear move to p with extrusion which also moves the
// Z axis.
func (w *Writer) ExtrudeZ(p Position) {
	b := w.start("G1")
	w.axis(b, 'X', p.X)
	w.axis(b, 'Y', p.Y)
	w.axis(b, 'Z', p.Z)
	w.axis(b, 'E', p.E)
	if p.F > 0 {
		w.axis(b, 'F', p.F)
	}
	w.Line(b.String())
}

// ExtrudeInPlace writes an extrusion without horizontal motion.
func (w *Writer) ExtrudeInPlace(p Position) {
	b := w.start("G1")
	w.axis(b, 'E', p.E)
	if p.F > 0 {
		w.axis(b, 'F', p.F)
	}
	w.Line(b.String())
}

// Dwell writes a pause of the given duration in seconds.
func (w *Writer) Dwell(seconds float64) {
	w.Line("G4 F" + formatNumber(seconds, w.decimals))
}

// Pulse writes the marker which switches the pulse generator on or off.
func (w *Writer) Pulse(on bool) {
	if on {
		w.Line(PulseOnMarker)
	} else {
		w.Line(PulseOffMarker)
	}
}

// Lines returns the number of lines written so far.
func (w *Writer) Lines() int {
	return w.lines
}

// Decimals returns the number of decimal places used for numbers.
func (w *Writer) Decimals() int {
	return w.decimals
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

func (w *Writer) start(verb string) *strings.Builder {
	b := &strings.Builder{}
	b.WriteString(verb)
	return b
}

func (w *Writer) axis(b *strings.Builder, name byte, v float64) {
	b.WriteByte(' ')
	b.WriteByte(name)
	b.WriteString(formatNumber(v, w.decimals))
}

// formatNumber formats v with a fixed number of decimals and never
// produces a negative zero.
func formatNumber(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if strings.HasPrefix(s, "-") && strings.Trim(s[1:], "0.") == "" {
		s = s[1:]
	}
	return s
}
