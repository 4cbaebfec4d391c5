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

// Package framebuffer provides bounds checked access to a row padded
// RGB565 frame buffer such as the on-chip video memory written by the
// camera DMA.
package framebuffer

import (
	"image"
	"image/color"
)

// Geometry of the video-in core's on-chip buffer.
const (
	DefaultWidth  = 320
	DefaultHeight = 240
	DefaultStride = 512
)

// FrameBuffer is a rectangular grid of RGB565 pixels stored row by row
// with Stride elements per row. Elements at or beyond Width in each row
// are padding and are never accessed.
//
// Pix may be owned by the FrameBuffer or be a view over memory written
// by a capture device. The caller must make sure the device is not
// writing while the buffer is being read or modified.
type FrameBuffer struct {
	Pix    []uint16
	Width  int
	Height int
	Stride int
}

// New allocates a zeroed frame buffer.
func New(width, height, stride int) (*FrameBuffer, error) {
	if err := checkGeometry(width, height, stride, -1); err != nil {
		return nil, err
	}
	return &FrameBuffer{
		Pix:    make([]uint16, minLen(height, stride, width)),
		Width:  width,
		Height: height,
		Stride: stride,
	}, nil
}

// NewDefault allocates a 320x240 frame buffer with a 512 element stride.
func NewDefault() *FrameBuffer {
	fb, err := New(DefaultWidth, DefaultHeight, DefaultStride)
	if err != nil {
		panic(err)
	}
	return fb
}

// Wrap creates a frame buffer over existing pixel memory.
func Wrap(pix []uint16, width, height, stride int) (*FrameBuffer, error) {
	if err := checkGeometry(width, height, stride, len(pix)); err != nil {
		return nil, err
	}
	return &FrameBuffer{Pix: pix, Width: width, Height: height, Stride: stride}, nil
}

// Validate checks that the geometry is addressable.
func (fb *FrameBuffer) Validate() error {
	return checkGeometry(fb.Width, fb.Height, fb.Stride, len(fb.Pix))
}

func checkGeometry(width, height, stride, n int) error {
	fail := func(reason string) error {
		return &DimensionError{Width: width, Height: height, Stride: stride, Len: n, Reason: reason}
	}
	if width <= 0 || height <= 0 {
		return fail("width and height must be positive")
	}
	if width > stride {
		return fail("width exceeds stride")
	}
	if n >= 0 && n < minLen(height, stride, width) {
		return fail("pixel memory too short")
	}
	return nil
}

// minLen is the number of elements needed to hold the last row's
// logical pixels; trailing padding of the last row is optional.
func minLen(height, stride, width int) int {
	return (height-1)*stride + width
}

// Offset maps (x, y) to an index into Pix. It fails if the buffer's
// geometry is not addressable or (x, y) lies outside the logical image.
func (fb *FrameBuffer) Offset(x, y int) (int, error) {
	if err := fb.Validate(); err != nil {
		return 0, err
	}
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0, &CoordinateError{X: x, Y: y, Width: fb.Width, Height: fb.Height}
	}
	return y*fb.Stride + x, nil
}

// Pixel returns the pixel at (x, y).
func (fb *FrameBuffer) Pixel(x, y int) (RGB565, error) {
	i, err := fb.Offset(x, y)
	if err != nil {
		return 0, err
	}
	return RGB565(fb.Pix[i]), nil
}

// SetPixel writes the pixel at (x, y).
func (fb *FrameBuffer) SetPixel(x, y int, p RGB565) error {
	i, err := fb.Offset(x, y)
	if err != nil {
		return err
	}
	fb.Pix[i] = uint16(p)
	return nil
}

// Row returns the logical pixels of row y, without padding. The slice
// aliases Pix.
func (fb *FrameBuffer) Row(y int) ([]uint16, error) {
	i, err := fb.Offset(0, y)
	if err != nil {
		return nil, err
	}
	return fb.Pix[i : i+fb.Width], nil
}

// SameGeometry reports whether both buffers have the same width, height
// and stride.
func (fb *FrameBuffer) SameGeometry(other *FrameBuffer) bool {
	return fb.Width == other.Width && fb.Height == other.Height && fb.Stride == other.Stride
}

// CopyFrom copies the logical pixels of src into fb. Both buffers must
// share the same geometry; padding is left untouched.
func (fb *FrameBuffer) CopyFrom(src *FrameBuffer) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	if err := src.Validate(); err != nil {
		return err
	}
	if !fb.SameGeometry(src) {
		return &DimensionError{
			Width: src.Width, Height: src.Height, Stride: src.Stride, Len: len(src.Pix),
			Reason: "geometry differs from destination",
		}
	}
	for y := 0; y < fb.Height; y++ {
		dst, err := fb.Row(y)
		if err != nil {
			return err
		}
		row, err := src.Row(y)
		if err != nil {
			return err
		}
		copy(dst, row)
	}
	return nil
}

// Clone returns a copy of fb backed by newly allocated memory.
func (fb *FrameBuffer) Clone() (*FrameBuffer, error) {
	out, err := New(fb.Width, fb.Height, fb.Stride)
	if err != nil {
		return nil, err
	}
	if err := out.CopyFrom(fb); err != nil {
		return nil, err
	}
	return out, nil
}

// Equal reports whether the logical pixels of both buffers match.
// Padding is ignored. A buffer with invalid geometry equals nothing.
func (fb *FrameBuffer) Equal(other *FrameBuffer) bool {
	if fb.Width != other.Width || fb.Height != other.Height {
		return false
	}
	for y := 0; y < fb.Height; y++ {
		a, err := fb.Row(y)
		if err != nil {
			return false
		}
		b, err := other.Row(y)
		if err != nil {
			return false
		}
		for x := range a {
			if a[x] != b[x] {
				return false
			}
		}
	}
	return true
}

// Fill sets every logical pixel to p.
func (fb *FrameBuffer) Fill(p RGB565) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	for y := 0; y < fb.Height; y++ {
		row, err := fb.Row(y)
		if err != nil {
			return err
		}
		for x := range row {
			row[x] = uint16(p)
		}
	}
	return nil
}

// ColorModel implements image.Image.
func (fb *FrameBuffer) ColorModel() color.Model {
	return RGB565Model
}

// Bounds implements image.Image.
func (fb *FrameBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// At implements image.Image. Points outside the frame are black.
func (fb *FrameBuffer) At(x, y int) color.Color {
	p, err := fb.Pixel(x, y)
	if err != nil {
		return RGB565(0)
	}
	return p
}

// Set implements draw.Image. Points outside the frame are ignored.
func (fb *FrameBuffer) Set(x, y int, c color.Color) {
	fb.SetPixel(x, y, RGB565Model.Convert(c).(RGB565))
}
