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

package preview

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

func testLayer() *Layer {
	return &Layer{
		Index:    3,
		Volume:   1,
		Z:        0.6,
		Bounds:   rect.Rect{URx: 10, URy: 5},
		Droplets: []vec.Vec2{{X: 5, Y: 2.5}},
		Support:  []vec.Vec2{{X: 2, Y: 2}},
		Diameter: 0.5,
	}
}

func TestLayerImage(t *testing.T) {
	l := testLayer()
	img := l.Image(10, nil)

	require.Equal(t, 120, img.Bounds().Dx())
	require.Equal(t, 70, img.Bounds().Dy())

	assert.Equal(t, uint8(levelDroplet), img.GrayAt(60, 35).Y)
	assert.Equal(t, uint8(levelSupport), img.GrayAt(30, 40).Y)
	assert.Equal(t, uint8(levelFrame), img.GrayAt(10, 30).Y)
	assert.Equal(t, uint8(levelFrame), img.GrayAt(50, 10).Y)
	assert.Zero(t, img.GrayAt(5, 5).Y)
	assert.Zero(t, img.GrayAt(80, 30).Y)
}

func TestLayerImageReusesRasteriser(t *testing.T) {
	l := testLayer()
	r := NewRasteriser(rect.Rect{})
	a := l.Image(10, r)
	b := l.Image(10, r)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestWriteLayer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "previews")
	w, err := NewWriter(dir, 10, true)
	require.NoError(t, err)

	l := testLayer()
	require.NoError(t, w.WriteLayer(l))
	assert.Equal(t, "layer-0003-v1", l.Name())

	fd, err := os.Open(filepath.Join(dir, "layer-0003-v1.png"))
	require.NoError(t, err)
	defer fd.Close()
	img, err := png.Decode(fd)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())

	data, err := os.ReadFile(filepath.Join(dir, "layer-0003-v1.pdf"))
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:5]) == "%PDF-")
}
