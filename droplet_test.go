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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitToDroplets(t *testing.T) {
	v := clipVolume()
	for _, pitch := range []float64{0.125, 0.5, 0.51, 3} {
		m := motion(0, 0, 0, 10, 0, 5, 0.2)
		m.Volume = v
		droplets := splitToDroplets(&m, pitch, 1)
		require.Len(t, droplets, int(math.Ceil(10/pitch)))

		sum := 0.0
		for i := range droplets {
			d := &droplets[i]
			sum += d.Increment()
			assert.Equal(t, d.Start.XY(), d.End.XY())
			assert.Same(t, v, d.Volume)
			assert.Equal(t, 0.2, d.End.Z)
			if i > 0 {
				assert.Greater(t, d.End.X, droplets[i-1].End.X)
			}
		}
		assert.InDelta(t, 5, sum, 1e-9)
	}

	m := motion(0, 0, 0, 10, 0, 5, 0.2)
	droplets := splitToDroplets(&m, 1, 0.75)
	require.Len(t, droplets, 10)
	assert.InDelta(t, 0.375, m.DropletE, 1e-12)
	assert.InDelta(t, 0.5, droplets[0].End.X, 1e-12)
	assert.InDelta(t, 9.5, droplets[9].End.X, 1e-12)

	zero := motion(1, 1, 0, 1, 1, 5, 0.2)
	assert.Empty(t, splitToDroplets(&zero, 1, 1))
}

func TestDensityIndicesCount(t *testing.T) {
	for _, inset := range []float64{0, 2.5, 7.78} {
		for n := 1; n <= 60; n++ {
			// full density keeps every candidate
			assert.Equal(t, seq(0, n), densityIndices(n, 1, inset))

			last := 0
			for k := 1; k <= 100; k++ {
				d := float64(k) / 100
				idx := densityIndices(n, d, inset)
				want := min(max(int(math.Round(float64(n)*d)), 1), n)
				require.Len(t, idx, want, "n=%d d=%g", n, d)
				assert.GreaterOrEqual(t, len(idx), last)
				last = len(idx)

				for i, j := range idx {
					require.True(t, j >= 0 && j < n, "n=%d d=%g idx=%v", n, d, idx)
					if i > 0 {
						require.Greater(t, j, idx[i-1], "n=%d d=%g idx=%v", n, d, idx)
					}
				}
			}
		}
	}
	assert.Empty(t, densityIndices(0, 0.5, 0))
	assert.Empty(t, densityIndices(10, 0, 0))
}

func TestDensityIndicesSpacing(t *testing.T) {
	// without inset, the endpoints are included and the gaps are even
	assert.Equal(t, []int{0, 2, 4, 6, 8}, densityIndices(9, 5.0/9, 0))
	idx := densityIndices(80, 0.5, 0)
	require.Len(t, idx, 40)
	assert.Equal(t, 0, idx[0])
	assert.Equal(t, 79, idx[39])
	for i := 1; i < len(idx); i++ {
		gap := idx[i] - idx[i-1]
		assert.True(t, gap == 2 || gap == 3, "gap %d", gap)
	}

	// the inset keeps candidates at both ends free
	idx = densityIndices(40, 0.25, 3)
	assert.Equal(t, 3, idx[0])
	assert.Equal(t, 36, idx[len(idx)-1])

	// if the inset leaves too few candidates, a centred block is used
	assert.Equal(t, []int{2, 3, 4, 5, 6}, densityIndices(10, 0.5, 3))

	// two and one droplets
	assert.Equal(t, []int{2, 4}, densityIndices(7, 0.3, 0))
	assert.Equal(t, []int{0, 2}, densityIndices(4, 0.5, 0))
	assert.Equal(t, []int{5}, densityIndices(10, 0.1, 0))
}

func TestReduceDropletsToDensity(t *testing.T) {
	m := motion(0, 0, 0, 10, 0, 5, 0.2)
	droplets := splitToDroplets(&m, 0.5, 1)
	require.Len(t, droplets, 20)

	full := reduceDropletsToDensity(droplets, 1, 0)
	assert.Len(t, full, 20)
	half := reduceDropletsToDensity(droplets, 0.5, 0)
	require.Len(t, half, 10)
	assert.Equal(t, droplets[0].End, half[0].End)
	assert.Equal(t, droplets[19].End, half[9].End)
}

func TestSites(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Droplet.Width = 0.5
	cfg.Inset.MinimumWidths = 1
	cfg.Inset.Widths = 0
	v := clipVolume()
	v.Pitch = 0.125

	// support only in the left half of the volume
	g := v.CurrentGrid(0.2)
	for x := 0.0; x <= 5; x += v.Pitch {
		for y := 0.0; y <= 10; y += v.Pitch {
			g.Mark(pt(x, y))
		}
	}
	v.Advance()

	m := motion(0.5, 5, 0, 9.5, 5, 1, 0.4)
	m.Volume = v
	sites := cfg.sites(&m)
	require.NotEmpty(t, sites)

	// the inset is 4 cells, the support window reaches 2 cells beyond the
	// supported region
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, s := range sites {
		minX = min(minX, s.Pos.X)
		maxX = max(maxX, s.Pos.X)
		assert.Equal(t, 0.4, s.Pos.Z)
		if s.Side == 0 {
			assert.Equal(t, 5.0, s.Pos.Y)
		} else {
			assert.InDelta(t, 0.125, math.Abs(s.Pos.Y-5), 1e-12)
		}
	}
	assert.InDelta(t, 0.5, minX, 1e-12)
	assert.InDelta(t, 5.25, maxX, 1e-12)

	// sites of one step come in the order centre, left, right
	assert.Equal(t, 0, sites[0].Index)
	assert.Equal(t, []int{0, 1, 2}, []int{sites[0].Side, sites[1].Side, sites[2].Side})
}
