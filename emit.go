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
	"fmt"

	"seehuhn.de/go/dropfill/mpf"
	"seehuhn.de/go/dropfill/volume"
)

// previewOffset is the distance between a preview move and the droplet
// site it announces.
const previewOffset = 0.001

// emitter writes the movements of a flushed queue.  It keeps the running
// extrusion coordinate of the output and the pulse state of the machine.
type emitter struct {
	w       *mpf.Writer
	cfg     *Config
	volumes []*volume.Volume

	cursor float64      // extrusion coordinate of the output
	at     mpf.Position // last position reached in the output
	pulse  bool

	pending *mpf.Position // travel which has not been written yet

	err error
}

// render writes a single movement.
func (em *emitter) render(m *Movement) {
	switch m.Kind() {
	case PassThrough:
		if !isComment(m.Original) {
			em.flushTravel()
		}
		em.w.Line(m.Original)
	case InVolume:
		if len(m.Droplets) == 0 {
			em.queueTravel(m.End)
			return
		}
		for i := range m.Droplets {
			em.droplet(&m.Droplets[i], m)
		}
	case PlainExtrusion:
		em.extrude(m)
	case PlainTravel:
		em.queueTravel(m.End)
	}
}

// droplet writes the travel to a droplet site followed by the extrusion of
// the droplet.  The extrusion coordinates of d are taken from the running
// cursor.
func (em *emitter) droplet(d *Movement, m *Movement) {
	site := *d.Start
	site.F = m.End.F
	site.FTravel = m.End.FTravel

	if em.cfg.Output.PreviewMoves {
		em.setPulse(false)
		em.w.Comment("preview move")
		near := site
		near.X += previewOffset
		em.travelTo(near)
	}
	em.travelTo(site)
	if em.cfg.Output.DwellBefore {
		em.w.Dwell(em.cfg.Droplet.Dwell)
	}
	em.setPulse(true)

	inc := d.End.E - d.Start.E
	d.Start.E = em.cursor
	d.End.E = em.cursor + inc
	em.cursor = d.End.E

	out := d.End
	out.F = m.End.F
	em.check(out)
	if d.End.X == site.X && d.End.Y == site.Y {
		em.w.ExtrudeInPlace(out)
	} else {
		em.w.Extrude(out)
		em.at = em.at.WithXY(out.XY())
	}

	em.setPulse(false)
	if em.cfg.Output.DwellAfter {
		em.w.Dwell(em.cfg.Droplet.Dwell)
	}
}

// extrude writes an extrusion move which was not replaced by droplets.
func (em *emitter) extrude(m *Movement) {
	out := m.End
	out.E = em.cursor + m.Increment()
	em.cursor = out.E
	em.check(out)

	if m.Start.Z != m.End.Z {
		em.travelTo(*m.Start)
		em.setPulse(true)
		em.w.ExtrudeZ(out)
		em.at = out
		return
	}
	if m.Start.X == m.End.X && m.Start.Y == m.End.Y {
		em.flushTravel()
		em.setPulse(true)
		em.w.ExtrudeInPlace(out)
		return
	}

	em.travelTo(*m.Start)
	em.setPulse(true)
	em.w.Extrude(out)
	em.at = out
}

// queueTravel records a travel move.  Consecutive travels are merged into
// the last one, which is written once the next site is known.
func (em *emitter) queueTravel(target mpf.Position) {
	em.pending = &target
}

// flushTravel writes the pending travel move, if any.
func (em *emitter) flushTravel() {
	if em.pending == nil {
		return
	}
	target := *em.pending
	em.pending = nil

	lift := em.liftFor(em.at, target)
	if lift == 0 && em.at.X == target.X && em.at.Y == target.Y && em.at.Z == target.Z {
		return
	}
	em.check(target)
	em.setPulse(false)
	if lift > 0 {
		top := max(em.at.Z, target.Z) + lift
		em.w.TravelZ(top, target.FTravel)
		hop := target
		hop.Z = top
		em.w.Travel(hop)
		em.w.TravelZ(target.Z, target.FTravel)
	} else {
		em.w.Travel(target)
	}
	em.at.X, em.at.Y, em.at.Z = target.X, target.Y, target.Z
}

// travelTo moves to target without extrusion, replacing any pending
// travel.
func (em *emitter) travelTo(target mpf.Position) {
	em.queueTravel(target)
	em.flushTravel()
}

// liftFor returns the Z lift required for a travel from a to b.  Travels
// which enter or cross a volume with a lift are raised; travels which stay
// inside the volume are not.
func (em *emitter) liftFor(a, b mpf.Position) float64 {
	lift := 0.0
	p, q := a.XY(), b.XY()
	for _, v := range em.volumes {
		if v.ZLift <= lift || !v.ContainsZ(b.Z) {
			continue
		}
		r := v.RectAt(b.Z)
		if volume.Inside(p, r) && volume.Inside(q, r) {
			continue
		}
		if volume.Crosses(p, q, r) {
			lift = v.ZLift
		}
	}
	return lift
}

// setPulse writes a pulse marker if the state changes.
func (em *emitter) setPulse(on bool) {
	if em.pulse != on {
		em.w.Pulse(on)
		em.pulse = on
	}
}

func (em *emitter) check(p mpf.Position) {
	if em.err == nil && !p.IsFinite() {
		em.err = fmt.Errorf("%w: X%g Y%g Z%g E%g", ErrNonFinite, p.X, p.Y, p.Z, p.E)
	}
}

func isComment(line string) bool {
	for _, c := range line {
		switch c {
		case ' ', '\t', '\r':
			continue
		case ';':
			return true
		default:
			return false
		}
	}
	return true
}
