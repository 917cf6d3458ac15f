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

// Command export writes the sample programs to testdata/*.mpf, together
// with a configuration file which places a bounding volume in the middle
// of the square samples.  Run it from the module root directory.
package main

import (
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"seehuhn.de/go/dropfill"
	"seehuhn.de/go/dropfill/testcases"
)

const outDir = "testdata"

func main() {
	if err := run(); err != nil {
		slog.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, p := range testcases.All[category] {
			fname := filepath.Join(outDir, category+"_"+p.Name+".mpf")
			if err := os.WriteFile(fname, []byte(p.String()), 0o644); err != nil {
				return err
			}
			slog.Info("wrote sample", "file", fname, "lines", len(p.Lines), "layers", p.Layers)
		}
	}

	cfg := dropfill.DefaultConfig()
	cfg.Seed = 1
	cfg.Volumes = []dropfill.VolumeConfig{{
		Origin:      [3]float64{2, 2, 0},
		Size:        [3]float64{16, 16, 1},
		Density:     0.5,
		RampDensity: 1,
		RampHeight:  0.4,
		TaperInset:  2,
	}}
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "dropfill.toml"), data, 0o644)
}
