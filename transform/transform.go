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

// Package transform implements in-place pixel transforms over a frame
// buffer. Every transform validates the buffer before touching a pixel,
// so a failed call leaves the frame unchanged.
package transform

import (
	"fmt"
	"strings"

	"github.com/TheCacophonyProject/frame-review/framebuffer"
)

// Kind identifies one of the frame transforms.
type Kind int

const (
	FlipHorizontal Kind = iota
	MirrorVertical
	Grayscale
	InvertColors
)

// Kinds lists every transform in switch order.
var Kinds = []Kind{FlipHorizontal, MirrorVertical, Grayscale, InvertColors}

var kindNames = map[Kind]string{
	FlipHorizontal: "flip",
	MirrorVertical: "mirror",
	Grayscale:      "grayscale",
	InvertColors:   "invert",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the Kind with the given name (case insensitive).
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown transform %q", name)
}

// Func is an in-place frame transform.
type Func func(*framebuffer.FrameBuffer) error

var funcs = map[Kind]Func{
	FlipHorizontal: FlipHorizontalFrame,
	MirrorVertical: MirrorVerticalFrame,
	Grayscale:      ConvertToGrayscale,
	InvertColors:   InvertFrame,
}

// Apply runs the transform identified by kind on fb.
func Apply(kind Kind, fb *framebuffer.FrameBuffer) error {
	f, ok := funcs[kind]
	if !ok {
		return fmt.Errorf("unknown transform %v", kind)
	}
	return f(fb)
}

// FlipHorizontalFrame reflects every row left to right. Applying it
// twice restores the frame.
func FlipHorizontalFrame(fb *framebuffer.FrameBuffer) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	for y := 0; y < fb.Height; y++ {
		row, err := fb.Row(y)
		if err != nil {
			return err
		}
		for x, opp := 0, fb.Width-1; x < opp; x, opp = x+1, opp-1 {
			row[x], row[opp] = row[opp], row[x]
		}
	}
	return nil
}

// MirrorVerticalFrame reflects every column top to bottom. Applying it
// twice restores the frame.
func MirrorVerticalFrame(fb *framebuffer.FrameBuffer) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	for y := 0; y < fb.Height/2; y++ {
		top, err := fb.Row(y)
		if err != nil {
			return err
		}
		bottom, err := fb.Row(fb.Height - 1 - y)
		if err != nil {
			return err
		}
		for x := range top {
			top[x], bottom[x] = bottom[x], top[x]
		}
	}
	return nil
}

// InvertFrame inverts the colour of every pixel. Applying it twice
// restores the frame exactly.
func InvertFrame(fb *framebuffer.FrameBuffer) error {
	return mapPixels(fb, Invert)
}

// ConvertToGrayscale replaces every pixel with its grayscale
// equivalent. This cannot be undone; keep a copy of the frame to get
// the colours back.
func ConvertToGrayscale(fb *framebuffer.FrameBuffer) error {
	return mapPixels(fb, Gray)
}

func mapPixels(fb *framebuffer.FrameBuffer, f func(framebuffer.RGB565) framebuffer.RGB565) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	for y := 0; y < fb.Height; y++ {
		row, err := fb.Row(y)
		if err != nil {
			return err
		}
		for x, v := range row {
			row[x] = uint16(f(framebuffer.RGB565(v)))
		}
	}
	return nil
}
