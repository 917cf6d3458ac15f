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

import "strings"

// FeatureKind identifies what kind of motion follows a feature announcement.
type FeatureKind int

// These are the feature kinds written by the slicer.
const (
	Unknown FeatureKind = iota
	LayerChange
	Travel
	Infill
	OuterPerimeter
	InnerPerimeter
)

var featureNames = [...]string{
	Unknown:        "unknown",
	LayerChange:    "plane change",
	Travel:         "travel",
	Infill:         "fill",
	OuterPerimeter: "outer perimeter",
	InnerPerimeter: "inner perimeter",
}

// String returns the name used for k in feature announcement comments.
func (k FeatureKind) String() string {
	if k < 0 || int(k) >= len(featureNames) {
		return featureNames[Unknown]
	}
	return featureNames[k]
}

// ParseFeatureKind maps the text of a feature announcement to a kind.
// Unrecognised text maps to Unknown.
func ParseFeatureKind(s string) FeatureKind {
	s = strings.TrimSpace(s)
	for k, name := range featureNames {
		if s == name {
			return FeatureKind(k)
		}
	}
	return Unknown
}

// Rewritten reports whether motions of this kind are collected and
// rewritten into droplets.
func (k FeatureKind) Rewritten() bool {
	return k == Infill || k == Travel
}

// Feature is a span of program lines announced by a feature comment.
// Start and End are line numbers; End is zero while the feature is open.
type Feature struct {
	Kind  FeatureKind
	Name  string // the announced text, which may be unknown to FeatureKind
	Start int
	End   int
}
