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
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cogentcore.org/core/base/randx"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/dropfill/mpf"
	"seehuhn.de/go/dropfill/preview"
	"seehuhn.de/go/dropfill/volume"
)

// maxLineLength is the longest input line accepted.
const maxLineLength = 1 << 20

// Processor rewrites machine programs.  A Processor can be used for
// several programs, one at a time; every call to [Processor.Process]
// starts with empty rasters.
type Processor struct {
	// Logger receives warnings about unusual input and per-layer
	// summaries.
	Logger *slog.Logger

	// Rand is the random source used for droplet placement.  If it is nil,
	// every run uses a fresh source seeded from Config.Seed.
	Rand randx.Rand

	cfg *Config

	// state of the current run
	w          *mpf.Writer
	volumes    []*volume.Volume
	pos        mpf.Position
	deltaE     float64
	features   []*mpf.Feature
	queue      []*Movement
	queueOpen  bool
	queueStart mpf.Position
	pulse      bool // pulse state of the input
	queuePulse bool // pulse state of the output when the queue was opened
	lineNo     int
	layer      int
	stats      Stats
	eng        engine
	previews   *preview.Writer
	layerDrops [][]vec.Vec2
	layerZ     []float64
}

// NewProcessor validates cfg and returns a processor for it.
func NewProcessor(cfg *Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Processor{
		Logger: slog.Default(),
		cfg:    cfg,
	}, nil
}

// Volumes returns the bounding volumes of the last run.
func (p *Processor) Volumes() []*volume.Volume {
	return p.volumes
}

// ProcessFile rewrites the program in the file inName and writes the result
// to outName.
func (p *Processor) ProcessFile(inName, outName string) (*Stats, error) {
	in, err := os.Open(inName)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	out, err := os.Create(outName)
	if err != nil {
		return nil, err
	}
	stats, err := p.Process(in, out)
	if err2 := out.Close(); err == nil && err2 != nil {
		err = err2
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inName, err)
	}
	return stats, nil
}

// Process reads a program from r and writes the rewritten program to w.
func (p *Processor) Process(r io.Reader, w io.Writer) (*Stats, error) {
	if err := p.reset(w); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		p.lineNo++
		if err := p.handle(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if err := p.flush(); err != nil {
		return nil, err
	}
	if err := p.finishLayer(); err != nil {
		return nil, err
	}
	p.closeFeature()

	p.stats.LinesIn = p.lineNo
	p.w.Comment("Post Processed with " + p.stats.Summary())
	if err := p.w.Flush(); err != nil {
		return nil, err
	}
	p.stats.LinesOut = p.w.Lines()

	stats := p.stats
	return &stats, nil
}

func (p *Processor) reset(w io.Writer) error {
	p.w = mpf.NewWriter(w, p.cfg.Output.Decimals)
	p.volumes = nil
	for i := range p.cfg.Volumes {
		p.volumes = append(p.volumes, p.cfg.Volumes[i].Volume(p.cfg.Droplet))
	}
	p.pos = mpf.Position{}
	p.deltaE = 0
	p.features = nil
	p.queue = nil
	p.queueOpen = false
	p.pulse = false
	p.lineNo = 0
	p.layer = 0
	p.stats = Stats{}
	rng := p.Rand
	if rng == nil {
		rng = randx.NewSysRand(p.cfg.Seed)
	}
	p.eng = engine{
		cfg:   p.cfg,
		rng:   rng,
		log:   p.Logger,
		stats: &p.stats,
	}
	p.layerDrops = make([][]vec.Vec2, len(p.volumes))
	p.layerZ = make([]float64, len(p.volumes))

	p.previews = nil
	if dir := p.cfg.Output.PreviewDir; dir != "" {
		pw, err := preview.NewWriter(dir, p.cfg.Output.PreviewScale, p.cfg.Output.PreviewPDF)
		if err != nil {
			return err
		}
		p.previews = pw
	}
	return nil
}

// handle processes a single input line.
func (p *Processor) handle(text string) error {
	l := mpf.ParseLine(text)
	switch l.Kind {
	case mpf.FeatureStart:
		return p.feature(&l)
	case mpf.LayerReset:
		if err := p.flush(); err != nil {
			return err
		}
		p.pos.E = 0
		p.deltaE = 0
		p.w.Line(l.Text)
	case mpf.PulseOn, mpf.PulseOff:
		p.pulse = l.Kind == mpf.PulseOn
		if !p.queueOpen {
			p.w.Line(l.Text)
		}
	case mpf.Motion:
		p.motion(&l)
	default:
		p.pass(l.Text)
	}
	return nil
}

// feature handles a feature announcement.
func (p *Processor) feature(l *mpf.Line) error {
	kind := mpf.ParseFeatureKind(l.Feature)
	p.closeFeature()
	if !kind.Rewritten() {
		if err := p.flush(); err != nil {
			return err
		}
	}
	if kind == mpf.LayerChange {
		if err := p.finishLayer(); err != nil {
			return err
		}
		p.features = p.features[:0]
		for _, v := range p.volumes {
			v.Advance()
		}
		p.layer++
		p.stats.Layers++
	}
	p.features = append(p.features, &mpf.Feature{
		Kind:  kind,
		Name:  l.Feature,
		Start: p.lineNo,
	})

	text := l.Text
	if kind == mpf.OuterPerimeter && p.cfg.Output.RenameOuterPerimeter != "" {
		text = "; feature " + p.cfg.Output.RenameOuterPerimeter
	}
	if kind.Rewritten() {
		p.openQueue(p.pos)
	}
	p.pass(text)
	return nil
}

func (p *Processor) closeFeature() {
	if n := len(p.features); n > 0 && p.features[n-1].End == 0 {
		p.features[n-1].End = p.lineNo
	}
}

func (p *Processor) currentFeature() *mpf.Feature {
	if n := len(p.features); n > 0 {
		return p.features[n-1]
	}
	return nil
}

// motion handles a G0/G1 line.
func (p *Processor) motion(l *mpf.Line) {
	for _, word := range l.Invalid {
		p.Logger.Warn("ignoring unknown axis word", "line", p.lineNo, "word", word)
	}

	prev := p.pos
	l.Apply(&p.pos)

	f := p.currentFeature()
	if f == nil || !f.Kind.Rewritten() {
		p.w.Line(p.corrected(l))
		return
	}

	p.openQueue(prev)
	start := prev
	m := Movement{Start: &start, End: p.pos, Feature: f}
	if m.Increment() == 0 || m.Length() == 0 {
		p.enqueue(m)
		return
	}

	pieces := []Movement{m}
	for _, v := range p.volumes {
		var next []Movement
		for _, piece := range pieces {
			if piece.Volume != nil {
				next = append(next, piece)
				continue
			}
			split, degenerate := ClipToVolume(piece, v)
			if degenerate {
				p.stats.Degenerate++
				p.Logger.Warn("motion grazes a volume wall", "line", p.lineNo)
			}
			next = append(next, split...)
		}
		pieces = next
	}
	for _, piece := range pieces {
		p.enqueue(piece)
	}
}

// corrected returns the text of a motion line outside of a queue, with the
// extrusion coordinate shifted by the correction of the current layer.
func (p *Processor) corrected(l *mpf.Line) string {
	if p.deltaE == 0 || !l.HasAxis('E') {
		return l.Text
	}
	return mpf.ReplaceE(l.Text, p.pos.E+p.deltaE, p.w.Decimals())
}

// pass copies a line which is not a motion.  While a queue is open, the
// line is queued to keep its place relative to the queued motions.
func (p *Processor) pass(text string) {
	if !p.queueOpen {
		p.w.Line(text)
		return
	}
	p.enqueue(Movement{End: p.pos, Original: text, Verbatim: true, Feature: p.currentFeature()})
}

func (p *Processor) openQueue(baseline mpf.Position) {
	if p.queueOpen {
		return
	}
	p.queueOpen = true
	p.queueStart = baseline
	p.queuePulse = p.pulse
}

func (p *Processor) enqueue(m Movement) {
	p.queue = append(p.queue, &m)
}

// flush places the droplets of the open queue, writes the queue and
// updates the extrusion correction.
func (p *Processor) flush() error {
	if !p.queueOpen {
		return nil
	}
	queue := p.queue
	p.queue = nil
	p.queueOpen = false
	p.stats.Flushes++

	p.eng.fill(queue)

	em := &emitter{
		w:       p.w,
		cfg:     p.cfg,
		volumes: p.volumes,
		cursor:  p.queueStart.E + p.deltaE,
		at:      p.queueStart,
		pulse:   p.queuePulse,
	}
	start := em.cursor
	for _, m := range queue {
		em.render(m)
		if em.err != nil {
			return em.err
		}
	}
	// return to the position the input program expects
	em.queueTravel(p.pos)
	em.flushTravel()
	em.setPulse(p.pulse)
	if em.err != nil {
		return em.err
	}

	emitted := em.cursor - start
	original := p.pos.E - p.queueStart.E
	p.deltaE += emitted - original

	for _, m := range queue {
		if m.Kind() != InVolume || len(m.Droplets) == 0 {
			continue
		}
		k := p.volumeIndex(m.Volume)
		p.layerZ[k] = m.End.Z
		for i := range m.Droplets {
			p.layerDrops[k] = append(p.layerDrops[k], m.Droplets[i].End.XY())
		}
	}
	return nil
}

func (p *Processor) volumeIndex(v *volume.Volume) int {
	for i, w := range p.volumes {
		if w == v {
			return i
		}
	}
	panic("unknown volume")
}

// finishLayer logs the droplets of the layer which just ended and writes
// its previews.
func (p *Processor) finishLayer() error {
	for k, v := range p.volumes {
		drops := p.layerDrops[k]
		p.layerDrops[k] = nil
		if len(drops) == 0 {
			continue
		}
		p.Logger.Debug("layer done", "layer", p.layer, "volume", k,
			"z", p.layerZ[k], "droplets", len(drops))
		if p.previews == nil {
			continue
		}

		layer := &preview.Layer{
			Index:    p.layer,
			Volume:   k,
			Z:        p.layerZ[k],
			Bounds:   v.RectAt(p.layerZ[k]),
			Droplets: drops,
			Diameter: p.cfg.Droplet.Width,
		}
		if g := v.Grid(volume.Previous); g != nil {
			layer.Support = g.OccupiedCells()
		}
		if err := p.previews.WriteLayer(layer); err != nil {
			return err
		}
	}
	return nil
}
