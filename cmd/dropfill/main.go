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

// Command dropfill rewrites the infill of a machine program into droplets.
//
// Usage:
//
//	dropfill [flags] -config volumes.toml input.mpf
//
// The bounding volumes and droplet parameters are read from the TOML or
// YAML configuration file.  The output is written to the file given by -o,
// or next to the input with "_droplets" added to the name.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"seehuhn.de/go/dropfill"
)

func main() {
	configFile := flag.String("config", "", "configuration file (.toml, .yaml)")
	outFile := flag.String("o", "", "output file")
	seed := flag.Int64("seed", 0, "random seed, overrides the configuration if non-zero")
	previewDir := flag.String("preview", "", "write layer previews into this directory")
	verbose := flag.Bool("v", false, "log per-layer details")
	quiet := flag.Bool("q", false, "only log warnings and errors")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] input.mpf\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	switch {
	case *verbose:
		level = slog.LevelDebug
	case *quiet:
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flag.NArg() != 1 || *configFile == "" {
		flag.Usage()
		os.Exit(2)
	}
	in := flag.Arg(0)
	out := *outFile
	if out == "" {
		ext := filepath.Ext(in)
		out = strings.TrimSuffix(in, ext) + "_droplets" + ext
	}

	if err := run(logger, *configFile, in, out, *seed, *previewDir); err != nil {
		logger.Error("dropfill failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configFile, in, out string, seed int64, previewDir string) error {
	cfg, err := dropfill.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if previewDir != "" {
		cfg.Output.PreviewDir = previewDir
	}

	p, err := dropfill.NewProcessor(cfg)
	if err != nil {
		return err
	}
	p.Logger = logger

	stats, err := p.ProcessFile(in, out)
	if err != nil {
		return err
	}
	logger.Info("done",
		"output", out,
		"lines", stats.LinesOut,
		"layers", stats.Layers,
		"required", stats.Required,
		"placed", stats.Placed,
		"shortfall", stats.Shortfall)
	return nil
}
