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

import "fmt"

// Stats summarises a run.
type Stats struct {
	LinesIn  int // lines read
	LinesOut int // lines written, including the summary
	Layers   int // layer changes seen

	Flushes    int // queues of infill and travel moves processed
	Candidates int // candidate droplets on in-volume motions
	Required   int // droplets needed to reach the target densities
	Sites      int // supported sites found on the layers below
	Placed     int // droplets written
	Shortfall  int // required droplets for which no site was left
	Degenerate int // motions grazing a volume wall
}

// Summary returns a one-line description of s, used as the final comment
// of the output.
func (s *Stats) Summary() string {
	return fmt.Sprintf("%s %s: layers=%d candidates=%d required=%d placed=%d supported=%d shortfall=%d",
		AppName, Version, s.Layers, s.Candidates, s.Required, s.Placed, s.Sites, s.Shortfall)
}
