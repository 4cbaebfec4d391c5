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

package framebuffer

import (
	"fmt"
	"image/color"
)

// Channel maximums for RGB565.
const (
	MaxRed   = 31
	MaxGreen = 63
	MaxBlue  = 31
)

// RGB565 is a 16 bit pixel packed as [R:5][G:6][B:5], most significant
// bits first.
type RGB565 uint16

// Pack builds a pixel from red (0-31), green (0-63) and blue (0-31)
// channel values. Out of range bits are masked off.
func Pack(r, g, b uint8) RGB565 {
	return RGB565(uint16(r&MaxRed)<<11 | uint16(g&MaxGreen)<<5 | uint16(b&MaxBlue))
}

// Channels unpacks the pixel into its red, green and blue values.
func (p RGB565) Channels() (r, g, b uint8) {
	return uint8(p >> 11 & MaxRed), uint8(p >> 5 & MaxGreen), uint8(p & MaxBlue)
}

// RGBA implements color.Color. Channels are widened to 16 bits by bit
// replication so that full intensity maps to 0xffff.
func (p RGB565) RGBA() (r, g, b, a uint32) {
	r5, g6, b5 := p.Channels()
	r8 := uint32(r5<<3 | r5>>2)
	g8 := uint32(g6<<2 | g6>>4)
	b8 := uint32(b5<<3 | b5>>2)
	return r8 | r8<<8, g8 | g8<<8, b8 | b8<<8, 0xffff
}

func (p RGB565) String() string {
	return fmt.Sprintf("RGB565(%#04x)", uint16(p))
}

// RGB565Model converts any colour to RGB565 by truncating each channel.
var RGB565Model = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	if p, ok := c.(RGB565); ok {
		return p
	}
	r, g, b, _ := c.RGBA()
	return Pack(uint8(r>>11), uint8(g>>10), uint8(b>>11))
}
