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

// Package overlay writes status text to the video character buffer that
// the display controller draws over the frame. The pixel buffer itself is
// never touched.
package overlay

import (
	"fmt"
	"strings"
)

// Geometry of the DE1-SoC character buffer.
const (
	DefaultCols   = 80
	DefaultRows   = 60
	DefaultStride = 128
)

// CharBuffer is a grid of ASCII cells, Stride bytes per row.
type CharBuffer struct {
	Chars  []byte
	Cols   int
	Rows   int
	Stride int
}

// NewCharBuffer allocates a blank character buffer.
func NewCharBuffer(cols, rows, stride int) (*CharBuffer, error) {
	if err := checkGeometry(cols, rows, stride, -1); err != nil {
		return nil, err
	}
	cb := &CharBuffer{
		Chars:  make([]byte, (rows-1)*stride+cols),
		Cols:   cols,
		Rows:   rows,
		Stride: stride,
	}
	cb.Clear()
	return cb, nil
}

// WrapCharBuffer creates a character buffer over existing memory.
func WrapCharBuffer(mem []byte, cols, rows, stride int) (*CharBuffer, error) {
	if err := checkGeometry(cols, rows, stride, len(mem)); err != nil {
		return nil, err
	}
	return &CharBuffer{Chars: mem, Cols: cols, Rows: rows, Stride: stride}, nil
}

func checkGeometry(cols, rows, stride, n int) error {
	if cols <= 0 || rows <= 0 || cols > stride {
		return fmt.Errorf("invalid character buffer geometry %dx%d stride %d", cols, rows, stride)
	}
	if n >= 0 && n < (rows-1)*stride+cols {
		return fmt.Errorf("character buffer memory too short: %d bytes", n)
	}
	return nil
}

// Print writes s starting at column x of row y. Text past the right edge
// is dropped and bytes outside printable ASCII are shown as '?'.
func (cb *CharBuffer) Print(x, y int, s string) error {
	if x < 0 || x >= cb.Cols || y < 0 || y >= cb.Rows {
		return fmt.Errorf("character position (%d, %d) outside %dx%d", x, y, cb.Cols, cb.Rows)
	}
	row := cb.row(y)
	for i := 0; i < len(s) && x+i < cb.Cols; i++ {
		c := s[i]
		if c < ' ' || c > '~' {
			c = '?'
		}
		row[x+i] = c
	}
	return nil
}

// ClearLine blanks row y.
func (cb *CharBuffer) ClearLine(y int) {
	if y < 0 || y >= cb.Rows {
		return
	}
	row := cb.row(y)
	for i := range row {
		row[i] = ' '
	}
}

func (cb *CharBuffer) Clear() {
	for y := 0; y < cb.Rows; y++ {
		cb.ClearLine(y)
	}
}

// Line returns row y with trailing blanks removed.
func (cb *CharBuffer) Line(y int) string {
	if y < 0 || y >= cb.Rows {
		return ""
	}
	return strings.TrimRight(string(cb.row(y)), " ")
}

func (cb *CharBuffer) row(y int) []byte {
	return cb.Chars[y*cb.Stride : y*cb.Stride+cb.Cols]
}
