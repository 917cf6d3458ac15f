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
	"log/slog"
	"slices"

	"cogentcore.org/core/base/randx"
)

// engine places the droplets of a flushed queue.
type engine struct {
	cfg   *Config
	rng   randx.Rand
	log   *slog.Logger
	stats *Stats
}

// fill replaces every in-volume movement of the queue by its droplets.
//
// On volumes without droplets on the layer below, the droplets are taken
// evenly from candidates at the raster pitch.  Otherwise droplets are
// placed on randomly chosen supported sites, movements with the fewest
// sites first, such that no two droplets of a layer collide.
func (e *engine) fill(queue []*Movement) {
	var supported []*Movement
	for _, m := range queue {
		if m.Kind() != InVolume {
			continue
		}
		v := m.Volume
		z := m.End.Z
		d := v.DensityAt(z)

		if v.HasPrevious() {
			candidates := splitToDroplets(m, e.cfg.Droplet.Width, e.cfg.Droplet.ExtrusionMultiplier)
			m.required = len(densityIndices(len(candidates), d, e.cfg.Inset.Diagonal()))
			m.Sites = e.cfg.sites(m)
			e.stats.Candidates += len(candidates)
			e.stats.Required += m.required
			e.stats.Sites += len(m.Sites)
			supported = append(supported, m)
			continue
		}

		candidates := splitToDroplets(m, v.Pitch, e.cfg.Droplet.ExtrusionMultiplier)
		inset := e.cfg.Inset.Diagonal() * e.cfg.Droplet.Width / v.Pitch
		m.Droplets = reduceDropletsToDensity(candidates, d, inset)
		cur := v.CurrentGrid(z)
		for i := range m.Droplets {
			cur.Mark(m.Droplets[i].End.XY())
		}
		e.stats.Candidates += len(candidates)
		e.stats.Required += len(m.Droplets)
		e.stats.Placed += len(m.Droplets)
	}

	if len(supported) > 0 {
		e.place(supported)
	}
}

// place distributes droplets over the supported sites of the given
// movements.
func (e *engine) place(queue []*Movement) {
	slices.SortStableFunc(queue, func(a, b *Movement) int {
		return len(a.Sites) - len(b.Sites)
	})

	accepted := make([][]Site, len(queue))
	remaining := 0
	for _, m := range queue {
		remaining += m.required
	}

	win := e.cfg.Raster.CollisionWindow
	corner := e.cfg.Raster.CollisionCorner
	for remaining > 0 {
		progress := false
		for k, m := range queue {
			if m.required == 0 {
				continue
			}
			cur := m.Volume.CurrentGrid(m.End.Z)
			for len(m.Sites) > 0 {
				i := e.rng.Intn(len(m.Sites))
				site := m.Sites[i]
				last := len(m.Sites) - 1
				m.Sites[i] = m.Sites[last]
				m.Sites = m.Sites[:last]

				p := site.Pos.XY()
				if cur.Occupied(p, win, corner) != 0 {
					continue
				}
				cur.Mark(p)
				accepted[k] = append(accepted[k], site)
				m.required--
				remaining--
				progress = true
				break
			}
		}
		if !progress {
			break
		}
	}
	if remaining > 0 {
		e.log.Warn("ran out of support positions", "missing", remaining)
		e.stats.Shortfall += remaining
	}

	for k, m := range queue {
		sites := accepted[k]
		slices.SortFunc(sites, func(a, b Site) int {
			if a.Index != b.Index {
				return a.Index - b.Index
			}
			return a.Side - b.Side
		})
		m.Droplets = make([]Movement, len(sites))
		for i, s := range sites {
			m.Droplets[i] = dropletAt(s.Pos, m)
		}
		m.Sites = nil
		m.required = 0
		e.stats.Placed += len(sites)
	}
}
