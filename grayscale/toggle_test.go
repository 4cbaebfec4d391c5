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

package grayscale

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/frame-review/framebuffer"
	"github.com/TheCacophonyProject/frame-review/transform"
)

func makeFrame(t *testing.T, seed int64) *framebuffer.FrameBuffer {
	fb := framebuffer.NewDefault()
	r := rand.New(rand.NewSource(seed))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			require.NoError(t, fb.SetPixel(x, y, framebuffer.RGB565(r.Intn(0x10000))))
		}
	}
	return fb
}

func cloneFrame(t *testing.T, fb *framebuffer.FrameBuffer) *framebuffer.FrameBuffer {
	c, err := fb.Clone()
	require.NoError(t, err)
	return c
}

func TestStartsInColor(t *testing.T) {
	var toggle Toggle
	assert.Equal(t, Color, toggle.State())
	assert.Equal(t, "color", Color.String())
	assert.Equal(t, "grayscale", Grayscale.String())
}

func TestApplyThenRestoreIsExact(t *testing.T) {
	fb := makeFrame(t, 1)
	orig := cloneFrame(t, fb)

	var toggle Toggle
	require.NoError(t, toggle.Apply(fb))
	assert.Equal(t, Grayscale, toggle.State())

	gray := cloneFrame(t, orig)
	require.NoError(t, transform.ConvertToGrayscale(gray))
	assert.True(t, fb.Equal(gray))

	require.NoError(t, toggle.Restore(fb))
	assert.Equal(t, Color, toggle.State())
	assert.True(t, fb.Equal(orig))
}

func TestToggleAlternates(t *testing.T) {
	fb := makeFrame(t, 2)
	orig := cloneFrame(t, fb)

	var toggle Toggle
	for i := 0; i < 4; i++ {
		state, err := toggle.Toggle(fb)
		require.NoError(t, err)
		assert.Equal(t, Grayscale, state)
		assert.False(t, fb.Equal(orig))

		state, err = toggle.Toggle(fb)
		require.NoError(t, err)
		assert.Equal(t, Color, state)
		assert.True(t, fb.Equal(orig))
	}
}

func TestRestoreInColorIsMisuse(t *testing.T) {
	fb := makeFrame(t, 3)
	orig := cloneFrame(t, fb)

	var toggle Toggle
	err := toggle.Restore(fb)
	assert.True(t, errors.Is(err, ErrStateMisuse))
	assert.True(t, fb.Equal(orig))
	assert.Equal(t, Color, toggle.State())
}

func TestApplyTwiceIsMisuse(t *testing.T) {
	fb := makeFrame(t, 4)
	orig := cloneFrame(t, fb)

	var toggle Toggle
	require.NoError(t, toggle.Apply(fb))
	gray := cloneFrame(t, fb)

	err := toggle.Apply(fb)
	assert.True(t, errors.Is(err, ErrStateMisuse))
	assert.True(t, fb.Equal(gray))

	// The backup was not overwritten with gray pixels.
	require.NoError(t, toggle.Restore(fb))
	assert.True(t, fb.Equal(orig))
}

func TestTransformsWhileGrayAreRestoredAway(t *testing.T) {
	fb := makeFrame(t, 5)
	orig := cloneFrame(t, fb)

	var toggle Toggle
	require.NoError(t, toggle.Apply(fb))
	require.NoError(t, transform.FlipHorizontalFrame(fb))

	// Restore brings back the frame as it was when grayscale was applied.
	require.NoError(t, toggle.Restore(fb))
	assert.True(t, fb.Equal(orig))
}

func TestResetStartsNewFrame(t *testing.T) {
	first := makeFrame(t, 6)

	var toggle Toggle
	require.NoError(t, toggle.Apply(first))
	toggle.Reset()
	assert.Equal(t, Color, toggle.State())
	assert.True(t, errors.Is(toggle.Restore(first), ErrStateMisuse))

	second := makeFrame(t, 7)
	orig := cloneFrame(t, second)
	require.NoError(t, toggle.Apply(second))
	require.NoError(t, toggle.Restore(second))
	assert.True(t, second.Equal(orig))
}

func TestRestoreIntoDifferentGeometryFails(t *testing.T) {
	fb := makeFrame(t, 8)

	var toggle Toggle
	require.NoError(t, toggle.Apply(fb))

	other, err := framebuffer.New(320, 240, 320)
	require.NoError(t, err)
	err = toggle.Restore(other)
	assert.True(t, errors.Is(err, framebuffer.ErrInvalidDimension))
	assert.Equal(t, Grayscale, toggle.State())
}

func TestApplyInvalidFrame(t *testing.T) {
	var toggle Toggle
	fb := &framebuffer.FrameBuffer{Pix: make([]uint16, 10), Width: 320, Height: 240, Stride: 512}
	err := toggle.Apply(fb)
	assert.True(t, errors.Is(err, framebuffer.ErrInvalidDimension))
	assert.Equal(t, Color, toggle.State())
}

func TestBackupFollowsGeometry(t *testing.T) {
	var toggle Toggle

	small, err := framebuffer.New(4, 2, 8)
	require.NoError(t, err)
	require.NoError(t, small.Fill(0xf800))
	require.NoError(t, toggle.Apply(small))
	require.NoError(t, toggle.Restore(small))

	fb := makeFrame(t, 9)
	orig := cloneFrame(t, fb)
	require.NoError(t, toggle.Apply(fb))
	require.NoError(t, toggle.Restore(fb))
	assert.True(t, fb.Equal(orig))
}
