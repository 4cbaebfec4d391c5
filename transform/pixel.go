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

package transform

import "github.com/TheCacophonyProject/frame-review/framebuffer"

// Invert inverts each channel relative to its maximum.
func Invert(p framebuffer.RGB565) framebuffer.RGB565 {
	r, g, b := p.Channels()
	return framebuffer.Pack(framebuffer.MaxRed-r, framebuffer.MaxGreen-g, framebuffer.MaxBlue-b)
}

// Luminance returns the 8 bit luma of p. Channels are first scaled to 8
// bits and then weighted 299/587/114 per mille, truncating at every
// division.
func Luminance(p framebuffer.RGB565) uint8 {
	r, g, b := p.Channels()
	r8 := uint32(r) * 255 / framebuffer.MaxRed
	g8 := uint32(g) * 255 / framebuffer.MaxGreen
	b8 := uint32(b) * 255 / framebuffer.MaxBlue
	return uint8((r8*299 + g8*587 + b8*114) / 1000)
}

// GrayFromLuminance packs an 8 bit luma back into RGB565.
func GrayFromLuminance(l uint8) framebuffer.RGB565 {
	l32 := uint32(l)
	return framebuffer.Pack(
		uint8(l32*framebuffer.MaxRed/255),
		uint8(l32*framebuffer.MaxGreen/255),
		uint8(l32*framebuffer.MaxBlue/255),
	)
}

// Gray maps p to its grayscale equivalent. The mapping is lossy, so
// the original colour cannot be recovered from the result.
func Gray(p framebuffer.RGB565) framebuffer.RGB565 {
	return GrayFromLuminance(Luminance(p))
}
