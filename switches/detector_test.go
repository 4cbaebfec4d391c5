// frame-review - review and transform frames captured by an SoC camera
//  Copyright (C) 2026, The Cacophony Project
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
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package switches

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdges(t *testing.T) {
	assert.Equal(t, EdgeSet{}, Edges(0, 0))
	assert.Equal(t, EdgeSet{}, Edges(0xf, 0xf))
	assert.Equal(t, EdgeSet{true, false, false, false}, Edges(0, 1))
	assert.Equal(t, EdgeSet{true, false, false, false}, Edges(1, 0))
	assert.Equal(t, EdgeSet{false, true, false, true}, Edges(0x2, 0x8))
	assert.Equal(t, EdgeSet{true, true, true, true}, Edges(0x0, 0xf))
}

func TestEdgesIgnoresHigherSwitches(t *testing.T) {
	edges := Edges(0x000, 0x3f0)
	assert.False(t, edges.Any())
}

func TestFirstSampleSetsBaseline(t *testing.T) {
	var d Detector
	pressed, edges := d.Update(true, 0xf)
	assert.False(t, pressed)
	assert.False(t, edges.Any())
	assert.Equal(t, uint32(0xf), d.Switches())

	// Still held, still no press.
	pressed, _ = d.Update(true, 0xf)
	assert.False(t, pressed)
}

func TestKeyPressEdge(t *testing.T) {
	var d Detector
	d.Update(false, 0)

	pressed, _ := d.Update(true, 0)
	assert.True(t, pressed)

	pressed, _ = d.Update(true, 0)
	assert.False(t, pressed, "held key is a single press")

	pressed, _ = d.Update(false, 0)
	assert.False(t, pressed, "release is not a press")

	pressed, _ = d.Update(true, 0)
	assert.True(t, pressed)
}

func TestSwitchEdges(t *testing.T) {
	var d Detector
	d.Update(false, 0)

	_, edges := d.Update(false, 0x1)
	assert.Equal(t, EdgeSet{true, false, false, false}, edges)

	_, edges = d.Update(false, 0x1)
	assert.False(t, edges.Any())

	// Switching back is an edge too.
	_, edges = d.Update(false, 0x0)
	assert.Equal(t, EdgeSet{true, false, false, false}, edges)

	_, edges = d.Update(false, 0x6)
	assert.Equal(t, EdgeSet{false, true, true, false}, edges)
}
