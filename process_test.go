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
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seehuhn.de/go/dropfill/mpf"
	"seehuhn.de/go/dropfill/testcases"
)

// singleLine has one fill line of length 10 along the X axis, followed by
// a perimeter move.
const singleLine = `; feature plane change
G0 Z0.2 F600
; feature fill
G0 X0 Y0 F3000
G1 X10 Y0 E5 F1200
; feature outer perimeter
G1 X10 Y5 E6 F1200
`

func singleLineConfig(density float64) *Config {
	cfg := testConfig()
	cfg.Volumes = []VolumeConfig{{
		Origin:  [3]float64{-1, -1, 0},
		Size:    [3]float64{12, 2, 1},
		Density: density,
	}}
	return cfg
}

func process(t *testing.T, cfg *Config, input string) ([]string, *Stats) {
	t.Helper()
	p, err := NewProcessor(cfg)
	require.NoError(t, err)
	p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	buf := &bytes.Buffer{}
	stats, err := p.Process(strings.NewReader(input), buf)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n"), stats
}

func count(lines []string, pred func(string) bool) int {
	n := 0
	for _, l := range lines {
		if pred(l) {
			n++
		}
	}
	return n
}

func isDroplet(line string) bool {
	return strings.HasPrefix(line, "G1 E")
}

func TestProcessFullDensity(t *testing.T) {
	lines, stats := process(t, singleLineConfig(1), singleLine)

	assert.Equal(t, 80, count(lines, isDroplet))
	assert.Equal(t, 80, stats.Placed)
	assert.Equal(t, 1, stats.Layers)
	assert.Equal(t, 7, stats.LinesIn)
	assert.Equal(t, len(lines), stats.LinesOut)

	assert.Contains(t, lines, "G0 X0.06250 Y0.00000 Z0.20000 F3000.00000")
	assert.Contains(t, lines, "G1 E0.06250 F1200.00000")
	assert.Contains(t, lines, "G1 E5.00000 F1200.00000")

	// the extrusion is unchanged, so the perimeter is copied as it is
	assert.Equal(t, "G1 X10 Y5 E6 F1200", lines[len(lines)-2])
	assert.True(t, strings.HasPrefix(lines[len(lines)-1],
		"; Post Processed with "+AppName+" "+Version+": layers=1"))
}

func TestProcessHalfDensity(t *testing.T) {
	lines, stats := process(t, singleLineConfig(0.5), singleLine)

	assert.Equal(t, 40, count(lines, isDroplet))
	assert.Equal(t, 40, stats.Placed)
	assert.Contains(t, lines, "G0 X0.06250 Y0.00000 Z0.20000 F3000.00000")
	assert.Contains(t, lines, "G0 X9.93750 Y0.00000 Z0.20000 F3000.00000")
	assert.Contains(t, lines, "G1 E2.50000 F1200.00000")

	// later extrusions are shifted by the extrusion which was left out
	assert.Equal(t, "G1 X10 Y5 E3.50000 F1200", lines[len(lines)-2])
}

func TestProcessPulseBracketing(t *testing.T) {
	cfg := singleLineConfig(1)
	cfg.Output.DwellBefore = true
	cfg.Output.DwellAfter = true
	lines, _ := process(t, cfg, singleLine)

	n := 0
	for i, l := range lines {
		if !isDroplet(l) {
			continue
		}
		n++
		require.Greater(t, i, 2)
		require.Less(t, i, len(lines)-2)
		assert.Equal(t, "G4 F0.20000", lines[i-2])
		assert.Equal(t, "PRIO_ON", lines[i-1])
		assert.Equal(t, "PRIO_OFF", lines[i+1])
		assert.Equal(t, "G4 F0.20000", lines[i+2])
		assert.True(t, strings.HasPrefix(lines[i-3], "G0 "))
	}
	assert.Equal(t, 80, n)
}

func TestProcessPreviewMoves(t *testing.T) {
	cfg := singleLineConfig(1)
	cfg.Output.PreviewMoves = true
	lines, _ := process(t, cfg, singleLine)

	assert.Equal(t, 80, count(lines, func(l string) bool { return l == "; preview move" }))
	assert.Contains(t, lines, "G0 X0.06350 Y0.00000 Z0.20000 F3000.00000")
}

func TestProcessZLift(t *testing.T) {
	const input = `; feature plane change
G0 Z0.2 F600
; feature fill
G0 X3 Y0 F3000
G1 X9 Y0 E3 F1200
G0 X12 Y0 F3000
; feature outer perimeter
`
	cfg := testConfig()
	cfg.Volumes = []VolumeConfig{{
		Origin:  [3]float64{2, -1, 0},
		Size:    [3]float64{8, 2, 1},
		Density: 1,
		ZLift:   1,
	}}
	lines, stats := process(t, cfg, input)
	require.Equal(t, 48, stats.Placed)

	// entering and leaving the volume are lifted, hops between droplets
	// are not
	up := count(lines, func(l string) bool { return l == "G0 Z1.20000 F3000.00000" })
	down := count(lines, func(l string) bool { return l == "G0 Z0.20000 F3000.00000" })
	assert.Equal(t, 2, up)
	assert.Equal(t, 2, down)
	assert.Contains(t, lines, "G0 X3.06250 Y0.00000 Z1.20000 F3000.00000")
	assert.Contains(t, lines, "G0 X12.00000 Y0.00000 Z1.20000 F3000.00000")

	cfg.Volumes[0].ZLift = 0
	lines, _ = process(t, cfg, input)
	assert.Zero(t, count(lines, func(l string) bool { return strings.HasPrefix(l, "G0 Z1") }))
}

func TestProcessRenameOuterPerimeter(t *testing.T) {
	cfg := singleLineConfig(1)
	cfg.Output.RenameOuterPerimeter = "outer wall"
	lines, _ := process(t, cfg, singleLine)
	assert.Contains(t, lines, "; feature outer wall")
	assert.NotContains(t, lines, "; feature outer perimeter")
}

func TestProcessZeroExtrusion(t *testing.T) {
	const input = `; feature fill
G1 X5 Y0 E0 F1200
; feature outer perimeter
`
	lines, _ := process(t, testConfig(), input)
	assert.Equal(t, []string{
		"; feature fill",
		"G0 X5.00000 Y0.00000 Z0.00000",
		"; feature outer perimeter",
	}, lines[:3])
}

func TestProcessNonFinite(t *testing.T) {
	p, err := NewProcessor(testConfig())
	require.NoError(t, err)
	p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err = p.Process(strings.NewReader("; feature fill\nG1 XNaN Y0 E1 F1200\n"), io.Discard)
	assert.True(t, errors.Is(err, ErrNonFinite))
}

func TestProcessUnknownAxis(t *testing.T) {
	p, err := NewProcessor(testConfig())
	require.NoError(t, err)
	logs := &bytes.Buffer{}
	p.Logger = slog.New(slog.NewTextHandler(logs, nil))

	out := &bytes.Buffer{}
	_, err = p.Process(strings.NewReader("G1 X1 Q7 E1\n"), out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "G1 X1 Q7 E1\n"))
	assert.Contains(t, logs.String(), "ignoring unknown axis word")
	assert.Contains(t, logs.String(), "Q7")
}

// sampleConfig returns a configuration with a volume suitable for the
// given sample program.
func sampleConfig(category string) *Config {
	cfg := testConfig()
	switch category {
	case "square":
		cfg.Volumes = []VolumeConfig{{
			Origin:      [3]float64{4, 4, 0},
			Size:        [3]float64{12, 12, 0.6},
			Density:     0.5,
			RampDensity: 1,
			RampHeight:  0.4,
			TaperInset:  1,
		}}
	default:
		cfg.Volumes = []VolumeConfig{{
			Origin:  [3]float64{-5, -6, 0},
			Size:    [3]float64{10, 12, 1},
			Density: 0.5,
			ZLift:   0.5,
		}}
	}
	return cfg
}

type block struct {
	feature string
	inc     float64
}

// blocks splits a program at feature announcements and sums the
// extrusion of every part.  It also reports whether the extrusion
// coordinate ever decreases, other than at M1.
func blocks(lines []string) ([]block, bool) {
	var res []block
	cur := block{}
	e := 0.0
	monotone := true
	for _, line := range lines {
		l := mpf.ParseLine(line)
		switch l.Kind {
		case mpf.FeatureStart:
			res = append(res, cur)
			cur = block{feature: l.Feature}
		case mpf.LayerReset:
			e = 0
		case mpf.Motion:
			for _, a := range l.Axes {
				if a.Name != 'E' {
					continue
				}
				if a.Value < e-1e-9 {
					monotone = false
				}
				cur.inc += a.Value - e
				e = a.Value
			}
		}
	}
	return append(res, cur), monotone
}

func TestExtrusionContinuity(t *testing.T) {
	for category, programs := range testcases.All {
		for _, prog := range programs {
			t.Run(category+"_"+prog.Name, func(t *testing.T) {
				lines, stats := process(t, sampleConfig(category), prog.String())
				assert.Equal(t, prog.Layers, stats.Layers)
				assert.Positive(t, stats.Placed)
				assert.Equal(t, stats.Required, stats.Placed+stats.Shortfall)

				in, _ := blocks(prog.Lines)
				out, monotone := blocks(lines)
				assert.True(t, monotone)
				require.Equal(t, len(in), len(out))
				for i := range in {
					require.Equal(t, in[i].feature, out[i].feature)
					if mpf.ParseFeatureKind(in[i].feature).Rewritten() {
						assert.LessOrEqual(t, out[i].inc, in[i].inc+1e-6)
					} else {
						assert.InDelta(t, in[i].inc, out[i].inc, 1e-4, "block %d (%s)", i, in[i].feature)
					}
				}
			})
		}
	}
}

func TestPulseState(t *testing.T) {
	prog := testcases.All["square"][1]
	require.Equal(t, "pulsed", prog.Name)
	lines, _ := process(t, sampleConfig("square"), prog.String())

	on := false
	for i, line := range lines {
		l := mpf.ParseLine(line)
		switch l.Kind {
		case mpf.PulseOn:
			on = true
		case mpf.PulseOff:
			on = false
		case mpf.Motion:
			if l.HasAxis('E') {
				assert.True(t, on, "line %d: %s", i+1, line)
			} else {
				assert.False(t, on, "line %d: %s", i+1, line)
			}
		}
	}
}

func TestLayerReset(t *testing.T) {
	prog := testcases.All["square"][2]
	require.Equal(t, "reset", prog.Name)
	lines, _ := process(t, sampleConfig("square"), prog.String())

	assert.Equal(t, 3, count(lines, func(l string) bool { return l == "M1 " }))

	// the extrusion restarts from zero after every reset
	e := -1.0
	for _, line := range lines {
		l := mpf.ParseLine(line)
		if l.Kind == mpf.LayerReset {
			e = 0
			continue
		}
		if e != 0 || l.Kind != mpf.Motion || !l.HasAxis('E') {
			continue
		}
		for _, a := range l.Axes {
			if a.Name == 'E' {
				assert.Less(t, a.Value, 5.0)
				e = a.Value
			}
		}
	}
}

func TestProcessReproducible(t *testing.T) {
	prog := testcases.Square(3)
	cfg := sampleConfig("square")
	cfg.Seed = 7
	a, _ := process(t, cfg, prog.String())
	b, _ := process(t, cfg, prog.String())
	assert.Equal(t, a, b)

	// a processor used for several runs starts every run afresh
	p, err := NewProcessor(cfg)
	require.NoError(t, err)
	p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	var outs [2]bytes.Buffer
	for i := range outs {
		_, err := p.Process(prog.Reader(), &outs[i])
		require.NoError(t, err)
	}
	assert.Equal(t, outs[0].String(), outs[1].String())
	assert.Equal(t, strings.Join(a, "\n")+"\n", outs[0].String())
}

func TestProcessZChange(t *testing.T) {
	const input = `; feature plane change
G0 Z0.2 F600
; feature fill
G0 X0 Y0 F3000
G1 X5 Y0 Z0.4 E2 F1200
G1 X10 Y0 E4 F1200
; feature outer perimeter
G1 X10 Y5 E5 F1200
`
	lines, _ := process(t, testConfig(), input)
	assert.Equal(t, []string{
		"; feature plane change",
		"G0 Z0.2 F600",
		"; feature fill",
		"PRIO_ON",
		"G1 X5.00000 Y0.00000 Z0.40000 E2.00000 F1200.00000",
		"G1 X10.00000 Y0.00000 E4.00000 F1200.00000",
		"PRIO_OFF",
		"; feature outer perimeter",
		"G1 X10 Y5 E5 F1200",
	}, lines[:len(lines)-1])
}

func TestProcessFileWithPreviews(t *testing.T) {
	dir := t.TempDir()
	prog := testcases.Square(2)
	in := filepath.Join(dir, "square.mpf")
	out := filepath.Join(dir, "square_droplets.mpf")
	require.NoError(t, os.WriteFile(in, []byte(prog.String()), 0o644))

	cfg := sampleConfig("square")
	cfg.Output.PreviewDir = filepath.Join(dir, "preview")
	cfg.Output.PreviewPDF = true
	p, err := NewProcessor(cfg)
	require.NoError(t, err)
	p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	stats, err := p.ProcessFile(in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Layers)
	assert.Len(t, p.Volumes(), 1)

	for _, name := range []string{"layer-0001-v0.png", "layer-0001-v0.pdf", "layer-0002-v0.png"} {
		assert.FileExists(t, filepath.Join(cfg.Output.PreviewDir, name))
	}
	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), "; Post Processed with ")

	_, err = p.ProcessFile(filepath.Join(dir, "missing.mpf"), out)
	assert.Error(t, err)
}
