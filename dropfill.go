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

// Package dropfill rewrites the infill of machine programs into metered
// droplets.
//
// A [Processor] reads a line-oriented, absolute-coordinate machine program
// (MPF/G-code) in a single forward pass.  Infill and travel motions which
// lie inside one of the configured bounding volumes are replaced by
// droplets: short extrusion pulses at fixed XY sites, chosen to reach the
// target density of the volume and, from the second layer on, to sit on
// top of droplets of the layer below.  All other lines are copied, with
// their extrusion coordinate corrected so that the rewritten program stays
// extrusion-consistent with the original.
package dropfill

//go:generate go run ./testcases/export

// AppName and Version identify the program in the summary comment written
// at the end of every output file.
const (
	AppName = "dropfill"
	Version = "0.4.0"
)
