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

// Package sim is an in-memory stand-in for the camera board. A simulated
// DMA writes moving colour bars into the frame buffer while capture is
// enabled, and the keys and switches are set from code.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/TheCacophonyProject/frame-review/framebuffer"
	"github.com/TheCacophonyProject/frame-review/overlay"
)

// Bars are the test pattern colours, left to right.
var Bars = []framebuffer.RGB565{
	0xffff, // white
	0xffe0, // yellow
	0x07ff, // cyan
	0x07e0, // green
	0xf81f, // magenta
	0xf800, // red
	0x001f, // blue
	0x0000, // black
}

type Board struct {
	mu        sync.Mutex
	fb        *framebuffer.FrameBuffer
	cb        *overlay.CharBuffer
	capturing bool
	frames    int
	key       bool
	switches  uint32
}

// New returns a board with capture disabled and a blank frame.
func New(width, height, stride int) (*Board, error) {
	fb, err := framebuffer.New(width, height, stride)
	if err != nil {
		return nil, err
	}
	cb, err := overlay.NewCharBuffer(overlay.DefaultCols, overlay.DefaultRows, overlay.DefaultStride)
	if err != nil {
		return nil, err
	}
	return &Board{fb: fb, cb: cb}, nil
}

func (b *Board) FrameBuffer() *framebuffer.FrameBuffer {
	return b.fb
}

func (b *Board) CharBuffer() *overlay.CharBuffer {
	return b.cb
}

// SetCaptureEnabled starts or stops frame writes. Once it returns false
// no further writes happen until capture is enabled again.
func (b *Board) SetCaptureEnabled(enabled bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.capturing = enabled
	return nil
}

func (b *Board) CaptureEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capturing
}

// Frames returns how many frames have been written.
func (b *Board) Frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// Advance writes the next frame if capture is enabled.
func (b *Board) Advance() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.capturing {
		return
	}
	DrawBars(b.fb, b.frames)
	b.frames++
}

// Run advances the camera every interval until ctx is done.
func (b *Board) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Advance()
		}
	}
}

// DrawBars fills fb with vertical colour bars scrolled left by shift
// pixels.
func DrawBars(fb *framebuffer.FrameBuffer, shift int) {
	barWidth := fb.Width / len(Bars)
	if barWidth == 0 {
		barWidth = 1
	}
	for y := 0; y < fb.Height; y++ {
		row, err := fb.Row(y)
		if err != nil {
			return
		}
		for x := range row {
			bar := ((x + shift) / barWidth) % len(Bars)
			row[x] = uint16(Bars[bar])
		}
	}
}

func (b *Board) SetKey(pressed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.key = pressed
}

// Press presses and holds the key; release it with SetKey(false).
func (b *Board) Press() {
	b.SetKey(true)
}

func (b *Board) SetSwitches(v uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.switches = v
}

// FlipSwitch moves switch i to its other position.
func (b *Board) FlipSwitch(i int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.switches ^= 1 << uint(i)
}

func (b *Board) KeyPressed() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key, nil
}

func (b *Board) Switches() (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.switches, nil
}
