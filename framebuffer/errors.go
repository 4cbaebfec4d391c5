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
	"errors"
	"fmt"
)

var (
	// ErrInvalidCoordinate is returned when a pixel address falls
	// outside the logical image.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidDimension is returned for unusable frame geometry.
	ErrInvalidDimension = errors.New("invalid dimension")
)

// CoordinateError describes an out of bounds pixel address.
type CoordinateError struct {
	X, Y          int
	Width, Height int
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%v: (%d, %d) outside %dx%d", ErrInvalidCoordinate, e.X, e.Y, e.Width, e.Height)
}

func (e *CoordinateError) Unwrap() error {
	return ErrInvalidCoordinate
}

// DimensionError describes frame geometry that cannot be addressed.
type DimensionError struct {
	Width, Height, Stride int
	Len                   int
	Reason                string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%v: %dx%d stride %d (%d elements): %s",
		ErrInvalidDimension, e.Width, e.Height, e.Stride, e.Len, e.Reason)
}

func (e *DimensionError) Unwrap() error {
	return ErrInvalidDimension
}
