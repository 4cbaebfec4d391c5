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

package overlay

import "fmt"

const (
	frameLine  = 0
	statusLine = 1
)

// Overlay shows review status on a character buffer. A nil *Overlay is
// valid and does nothing.
type Overlay struct {
	buf *CharBuffer
}

func New(buf *CharBuffer) *Overlay {
	return &Overlay{buf: buf}
}

// ShowFrame announces that frame n is being reviewed.
func (o *Overlay) ShowFrame(n int) error {
	if o == nil {
		return nil
	}
	o.buf.Clear()
	return o.buf.Print(0, frameLine, fmt.Sprintf("frame %d", n))
}

// ShowStatus replaces the status line.
func (o *Overlay) ShowStatus(format string, v ...interface{}) error {
	if o == nil {
		return nil
	}
	o.buf.ClearLine(statusLine)
	return o.buf.Print(0, statusLine, fmt.Sprintf(format, v...))
}

// Clear removes all overlay text.
func (o *Overlay) Clear() {
	if o == nil {
		return
	}
	o.buf.Clear()
}
