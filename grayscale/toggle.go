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

// Package grayscale provides a reversible grayscale toggle for a frame
// buffer. Grayscale conversion loses information, so the toggle keeps a
// backup of the colour frame and restores from it verbatim.
package grayscale

import (
	"errors"
	"fmt"

	"github.com/TheCacophonyProject/frame-review/framebuffer"
	"github.com/TheCacophonyProject/frame-review/transform"
)

// State is the colour state of the frame a Toggle is managing.
type State int

const (
	Color State = iota
	Grayscale
)

func (s State) String() string {
	switch s {
	case Color:
		return "color"
	case Grayscale:
		return "grayscale"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrStateMisuse is returned when a transition is requested that does
// not start from the current state.
var ErrStateMisuse = errors.New("grayscale state misuse")

// Toggle switches a frame between colour and grayscale. The zero value
// is ready to use and starts in the Color state.
//
// The backup is only meaningful while in the Grayscale state.
type Toggle struct {
	state  State
	backup *framebuffer.FrameBuffer
}

// State returns the current state.
func (t *Toggle) State() State {
	return t.state
}

// Reset returns the toggle to Color. Call it whenever a new frame is
// captured; any backup is stale from then on.
func (t *Toggle) Reset() {
	t.state = Color
}

// Apply copies fb into the backup and converts fb to grayscale.
func (t *Toggle) Apply(fb *framebuffer.FrameBuffer) error {
	if t.state != Color {
		return fmt.Errorf("%w: apply requested while in %v", ErrStateMisuse, t.state)
	}
	if err := fb.Validate(); err != nil {
		return err
	}
	if t.backup == nil || !t.backup.SameGeometry(fb) {
		backup, err := framebuffer.New(fb.Width, fb.Height, fb.Stride)
		if err != nil {
			return err
		}
		t.backup = backup
	}
	if err := t.backup.CopyFrom(fb); err != nil {
		return err
	}
	if err := transform.ConvertToGrayscale(fb); err != nil {
		return err
	}
	t.state = Grayscale
	return nil
}

// Restore writes the backed up colour frame into fb.
func (t *Toggle) Restore(fb *framebuffer.FrameBuffer) error {
	if t.state != Grayscale {
		return fmt.Errorf("%w: restore requested while in %v", ErrStateMisuse, t.state)
	}
	if err := fb.CopyFrom(t.backup); err != nil {
		return err
	}
	t.state = Color
	return nil
}

// Toggle performs whichever transition the current state calls for and
// returns the new state.
func (t *Toggle) Toggle(fb *framebuffer.FrameBuffer) (State, error) {
	var err error
	if t.state == Color {
		err = t.Apply(fb)
	} else {
		err = t.Restore(fb)
	}
	return t.state, err
}
