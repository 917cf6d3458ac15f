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
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/dropfill/mpf"
	"seehuhn.de/go/dropfill/volume"
)

var (
	// ErrInvalidConfig is returned, wrapped, when a configuration fails
	// validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNonFinite is returned, wrapped, when a coordinate which is about to
	// be written is NaN or infinite.
	ErrNonFinite = errors.New("non-finite coordinate")
)

// Config holds all parameters of a run.  A Config must not be modified
// once it has been passed to [NewProcessor].
type Config struct {
	Droplet DropletConfig  `toml:"droplet" yaml:"droplet"`
	Inset   InsetConfig    `toml:"inset" yaml:"inset"`
	Raster  RasterConfig   `toml:"raster" yaml:"raster"`
	Output  OutputConfig   `toml:"output" yaml:"output"`
	Volumes []VolumeConfig `toml:"volume" yaml:"volumes"`

	// Seed initialises the random source used for droplet placement.
	// Runs with the same seed and input produce identical output.
	Seed int64 `toml:"seed" yaml:"seed"`
}

// DropletConfig describes a single droplet.
type DropletConfig struct {
	// Width is the diameter of a droplet in mm.  Droplets on layers with
	// support below are spaced at this pitch.
	Width float64 `toml:"width" yaml:"width"`

	// Resolution is the raster cell size as a fraction of Width.  It is
	// also the candidate pitch, as a fraction of Width, on layers without
	// support below.
	Resolution float64 `toml:"resolution" yaml:"resolution"`

	// ExtrusionMultiplier scales the extrusion of every droplet.
	ExtrusionMultiplier float64 `toml:"extrusion_multiplier" yaml:"extrusion_multiplier"`

	// Dwell is the duration of the optional dwell commands, in seconds.
	Dwell float64 `toml:"dwell" yaml:"dwell"`
}

// InsetConfig gives the margins, in droplet widths, kept free of droplets
// along the walls of a volume.
type InsetConfig struct {
	MinimumWidths float64 `toml:"minimum_widths" yaml:"minimum_widths"`
	Widths        float64 `toml:"widths" yaml:"widths"`
}

// Minimum returns the minimum inset in mm.
func (c InsetConfig) Minimum(width float64) float64 {
	return c.MinimumWidths * width
}

// Inset returns the inset in mm which applies below the ramp zone.
func (c InsetConfig) Inset(width float64) float64 {
	return c.Widths * width
}

// Diagonal returns the number of droplet widths covered by both insets
// along a line crossing the walls at 45 degrees.
func (c InsetConfig) Diagonal() float64 {
	return (c.MinimumWidths + c.Widths) * math.Sqrt2
}

// RasterConfig sets the neighbourhoods used for occupancy queries.  Window
// sizes are odd cell counts; the corner values give the radius of the
// diamond cut from each corner of the window.
type RasterConfig struct {
	SupportWindow   int `toml:"support_window" yaml:"support_window"`
	SupportCorner   int `toml:"support_corner" yaml:"support_corner"`
	CollisionWindow int `toml:"collision_window" yaml:"collision_window"`
	CollisionCorner int `toml:"collision_corner" yaml:"collision_corner"`
}

// OutputConfig controls the shape of the generated program.
type OutputConfig struct {
	// Decimals is the number of digits written after the decimal point.
	Decimals int `toml:"decimals" yaml:"decimals"`

	// PreviewMoves adds a travel move close to every droplet site, for
	// viewers which only show the path between moves.
	PreviewMoves bool `toml:"preview_moves" yaml:"preview_moves"`

	DwellBefore bool `toml:"dwell_before" yaml:"dwell_before"`
	DwellAfter  bool `toml:"dwell_after" yaml:"dwell_after"`

	// RenameOuterPerimeter, if set, replaces the feature name of outer
	// perimeters in the output.
	RenameOuterPerimeter string `toml:"rename_outer_perimeter" yaml:"rename_outer_perimeter"`

	// PreviewDir, if set, is the directory where per-layer images of the
	// placed droplets are written.
	PreviewDir string `toml:"preview_dir" yaml:"preview_dir"`

	// PreviewPDF adds a PDF file next to every preview image.
	PreviewPDF bool `toml:"preview_pdf" yaml:"preview_pdf"`

	// PreviewScale is the resolution of preview images in pixels per mm.
	PreviewScale float64 `toml:"preview_scale" yaml:"preview_scale"`
}

// VolumeConfig describes one bounding volume.
type VolumeConfig struct {
	// Origin is the lower corner and Size the extent of the volume, both as
	// X, Y, Z in mm.
	Origin [3]float64 `toml:"origin" yaml:"origin"`
	Size   [3]float64 `toml:"size" yaml:"size"`

	Density     float64 `toml:"density" yaml:"density"`
	RampDensity float64 `toml:"ramp_density" yaml:"ramp_density"`
	RampHeight  float64 `toml:"ramp_height" yaml:"ramp_height"`
	TaperInset  float64 `toml:"taper_inset" yaml:"taper_inset"`
	ZLift       float64 `toml:"z_lift" yaml:"z_lift"`

	// Resolution overrides Droplet.Resolution for this volume if non-zero.
	Resolution float64 `toml:"resolution" yaml:"resolution"`
}

// DefaultConfig returns a configuration with the standard droplet and
// raster parameters and no volumes.
func DefaultConfig() *Config {
	return &Config{
		Droplet: DropletConfig{
			Width:               0.51,
			Resolution:          0.25,
			ExtrusionMultiplier: 0.75,
			Dwell:               0.2,
		},
		Inset: InsetConfig{
			MinimumWidths: 2.5,
			Widths:        3,
		},
		Raster: RasterConfig{
			SupportWindow:   5,
			SupportCorner:   1,
			CollisionWindow: 5,
			CollisionCorner: 1,
		},
		Output: OutputConfig{
			Decimals:     mpf.DefaultDecimals,
			PreviewScale: 20,
		},
	}
}

// Volume creates the bounding volume described by vc.
func (vc *VolumeConfig) Volume(d DropletConfig) *volume.Volume {
	res := vc.Resolution
	if res == 0 {
		res = d.Resolution
	}
	return &volume.Volume{
		Rect: rect.Rect{
			LLx: vc.Origin[0],
			LLy: vc.Origin[1],
			URx: vc.Origin[0] + vc.Size[0],
			URy: vc.Origin[1] + vc.Size[1],
		},
		ZMin:        vc.Origin[2],
		ZMax:        vc.Origin[2] + vc.Size[2],
		Density:     vc.Density,
		RampDensity: vc.RampDensity,
		RampHeight:  vc.RampHeight,
		TaperInset:  vc.TaperInset,
		ZLift:       vc.ZLift,
		Pitch:       d.Width * res,
	}
}

// Validate checks the configuration for consistency.  All errors wrap
// [ErrInvalidConfig].
func (c *Config) Validate() error {
	var msg string
	d := c.Droplet
	r := c.Raster
	switch {
	case !(d.Width > 0):
		msg = fmt.Sprintf("droplet width %g is not positive", d.Width)
	case !(d.Resolution > 0 && d.Resolution <= 1):
		msg = fmt.Sprintf("droplet resolution %g outside (0, 1]", d.Resolution)
	case !(d.ExtrusionMultiplier > 0):
		msg = fmt.Sprintf("extrusion multiplier %g is not positive", d.ExtrusionMultiplier)
	case d.Dwell < 0:
		msg = fmt.Sprintf("negative dwell %g", d.Dwell)
	case c.Inset.MinimumWidths < 0 || c.Inset.Widths < 0:
		msg = "negative inset"
	case !validWindow(r.SupportWindow, r.SupportCorner):
		msg = fmt.Sprintf("support window %d/%d", r.SupportWindow, r.SupportCorner)
	case !validWindow(r.CollisionWindow, r.CollisionCorner):
		msg = fmt.Sprintf("collision window %d/%d", r.CollisionWindow, r.CollisionCorner)
	case c.Output.Decimals < 0 || c.Output.Decimals > 12:
		msg = fmt.Sprintf("%d output decimals", c.Output.Decimals)
	case c.Output.PreviewDir != "" && !(c.Output.PreviewScale > 0):
		msg = fmt.Sprintf("preview scale %g is not positive", c.Output.PreviewScale)
	}
	if msg != "" {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
	}

	for i := range c.Volumes {
		vc := &c.Volumes[i]
		if vc.Resolution < 0 || vc.Resolution > 1 {
			return fmt.Errorf("%w: volume %d: resolution %g outside (0, 1]",
				ErrInvalidConfig, i, vc.Resolution)
		}
		if vc.Size[2] < 0 {
			return fmt.Errorf("%w: volume %d: negative height", ErrInvalidConfig, i)
		}
		if err := vc.Volume(d).Check(); err != nil {
			return fmt.Errorf("%w: volume %d: %w", ErrInvalidConfig, i, err)
		}
	}
	return nil
}

func validWindow(size, corner int) bool {
	return size >= 1 && size%2 == 1 && corner >= 0 && corner <= (size-1)/2
}

// LoadConfig reads a configuration file.  The format is chosen by the file
// name extension: ".toml", ".yaml" or ".yml".  Values missing from the file
// keep their defaults.
func LoadConfig(fname string) (*Config, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(fname)), ".")

	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	cfg, err := ReadConfig(fd, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return cfg, nil
}

// ReadConfig decodes a configuration in the given format, "toml" or
// "yaml", on top of [DefaultConfig] and validates the result.  Unknown keys
// are rejected.
func ReadConfig(r io.Reader, format string) (*Config, error) {
	cfg := DefaultConfig()
	switch format {
	case "toml":
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown configuration format %q", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
