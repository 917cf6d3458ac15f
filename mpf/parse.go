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
	"regexp"
	"strconv"
	"strings"
)

// LineKind classifies a program line.
type LineKind int

// These are the line kinds recognised by ParseLine.
const (
	Opaque LineKind = iota
	Motion
	FeatureStart
	LayerReset
	PulseOn
	PulseOff
)

// Markers which switch the droplet pulse generator on and off.
const (
	PulseOnMarker  = "PRIO_ON"
	PulseOffMarker = "PRIO_OFF"
)

var (
	featurePattern    = regexp.MustCompile(`^;\s?feature\s?(.*)$`)
	layerResetPattern = regexp.MustCompile(`^M1(?:\s|$)`)
	eTokenPattern     = regexp.MustCompile(`(^|\s)[Ee][^\s;]*`)
)

// Axis is a single axis word of a motion line, for example "X12.5".
type Axis struct {
	Name  byte // one of 'X', 'Y', 'Z', 'E', 'F'
	Value float64
}

// Line is a parsed program line.
type Line struct {
	Text string
	Kind LineKind

	// Feature is the announced feature text, for FeatureStart lines.
	Feature string

	// The remaining fields are only set for Motion lines.
	Verb       string // "G0" or "G1"
	Axes       []Axis
	Comment    string
	HasComment bool

	// Invalid lists the words of a motion line which could not be
	// interpreted.  They are ignored by Apply.
	Invalid []string
}

// ParseLine classifies a single program line.  The line must not contain
// the line terminator; a trailing carriage return is ignored.
func ParseLine(text string) Line {
	text = strings.TrimSuffix(text, "\r")
	l := Line{Text: text}

	if m := featurePattern.FindStringSubmatch(text); m != nil {
		l.Kind = FeatureStart
		l.Feature = strings.TrimSpace(m[1])
		return l
	}
	if layerResetPattern.MatchString(text) {
		l.Kind = LayerReset
		return l
	}

	trimmed := strings.TrimSpace(text)
	switch trimmed {
	case PulseOnMarker:
		l.Kind = PulseOn
		return l
	case PulseOffMarker:
		l.Kind = PulseOff
		return l
	}

	body := trimmed
	if idx := strings.IndexByte(body, ';'); idx >= 0 {
		l.Comment = body[idx+1:]
		l.HasComment = true
		body = body[:idx]
	}
	words := strings.Fields(body)
	if len(words) == 0 {
		return Line{Text: text}
	}
	switch strings.ToUpper(words[0]) {
	case "G0", "G00":
		l.Verb = "G0"
	case "G1", "G01":
		l.Verb = "G1"
	default:
		return Line{Text: text}
	}
	l.Kind = Motion

	for _, w := range words[1:] {
		name := w[0]
		if 'a' <= name && name <= 'z' {
			name -= 'a' - 'A'
		}
		switch name {
		case 'X', 'Y', 'Z', 'E', 'F':
		default:
			l.Invalid = append(l.Invalid, w)
			continue
		}
		v, err := strconv.ParseFloat(w[1:], 64)
		if err != nil {
			l.Invalid = append(l.Invalid, w)
			continue
		}
		l.Axes = append(l.Axes, Axis{Name: name, Value: v})
	}
	return l
}

// Apply updates p with the axis words of a motion line and reports
// whether the line set the extrusion coordinate.  A motion without an E
// word records its feedrate as the travel feedrate.
func (l *Line) Apply(p *Position) (extrusion bool) {
	if l.Kind != Motion {
		return false
	}
	for _, a := range l.Axes {
		switch a.Name {
		case 'X':
			p.X = a.Value
		case 'Y':
			p.Y = a.Value
		case 'Z':
			p.Z = a.Value
		case 'E':
			p.E = a.Value
			extrusion = true
		case 'F':
			p.F = a.Value
		}
	}
	p.Comment = l.Comment
	if !extrusion {
		p.FTravel = p.F
	}
	return extrusion
}

// HasAxis reports whether the line contains a word for the given axis.
func (l *Line) HasAxis(name byte) bool {
	for _, a := range l.Axes {
		if a.Name == name {
			return true
		}
	}
	return false
}

// ReplaceE returns the text of a motion line with the value of its first
// E word replaced.  Everything else, including the comment, is kept.
func ReplaceE(text string, e float64, decimals int) string {
	body, comment := text, ""
	if idx := strings.IndexByte(text, ';'); idx >= 0 {
		body, comment = text[:idx], text[idx:]
	}
	done := false
	body = eTokenPattern.ReplaceAllStringFunc(body, func(tok string) string {
		if done {
			return tok
		}
		done = true
		lead := tok[:len(tok)-len(strings.TrimLeft(tok, " \t"))]
		return lead + "E" + formatNumber(e, decimals)
	})
	return body + comment
}
