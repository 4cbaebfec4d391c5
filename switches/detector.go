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

// Package switches turns sampled pushbutton and slide switch levels into
// edges.
package switches

// Count is the number of slide switches that drive frame transforms.
const Count = 4

// EdgeSet holds one flag per slide switch, set when that switch changed
// position since the previous sample. Switches are independent; any
// combination may be set at once.
type EdgeSet [Count]bool

// Edges compares two switch bitmasks. Bit i of each mask is switch i.
func Edges(prev, cur uint32) EdgeSet {
	var edges EdgeSet
	changed := prev ^ cur
	for i := range edges {
		edges[i] = changed&(1<<uint(i)) != 0
	}
	return edges
}

// Any reports whether any switch changed.
func (e EdgeSet) Any() bool {
	for _, edge := range e {
		if edge {
			return true
		}
	}
	return false
}

// Detector remembers the previous sample so each tick only reports what
// changed. The zero value is ready to use; its first sample sets the
// baseline and reports nothing, so switches left up at startup don't
// fire.
type Detector struct {
	primed   bool
	key      bool
	switches uint32
}

// Update records a new sample. pressed is true on the released to pressed
// transition of the key only; holding the key down reports a single press.
func (d *Detector) Update(key bool, switches uint32) (pressed bool, edges EdgeSet) {
	if d.primed {
		pressed = key && !d.key
		edges = Edges(d.switches, switches)
	}
	d.primed = true
	d.key = key
	d.switches = switches
	return pressed, edges
}

// Switches returns the last sampled switch bitmask.
func (d *Detector) Switches() uint32 {
	return d.switches
}
