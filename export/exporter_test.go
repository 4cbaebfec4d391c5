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

package export

import (
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"

	"github.com/TheCacophonyProject/frame-review/framebuffer"
	"github.com/TheCacophonyProject/frame-review/transform"
)

func testFrame(t *testing.T) *framebuffer.FrameBuffer {
	fb, err := framebuffer.New(8, 4, 16)
	require.NoError(t, err)
	for i := range fb.Pix {
		fb.Pix[i] = 0x1234 // padding must not leak into the files
	}
	require.NoError(t, fb.Fill(0))
	require.NoError(t, fb.SetPixel(0, 0, 0xf800))
	require.NoError(t, fb.SetPixel(7, 3, 0xffff))
	require.NoError(t, fb.SetPixel(3, 1, framebuffer.Pack(10, 20, 30)))
	return fb
}

func colorAndGrayConfig() Config {
	return Config{When: OnResume, Color: true, Grayscale: true}
}

func TestExportWritesColorAndGrayscale(t *testing.T) {
	dir := t.TempDir()
	fb := testFrame(t)

	exporter := NewFileExporter(dir, colorAndGrayConfig(), zap.NewNop())
	require.NoError(t, exporter.Export(fb, 3))

	f, err := os.Open(filepath.Join(dir, "final_image_color_3.bmp"))
	require.NoError(t, err)
	defer f.Close()
	img, err := bmp.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, fb.Bounds(), img.Bounds())
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			want, _ := fb.Pixel(x, y)
			assert.Equal(t, want, framebuffer.RGB565Model.Convert(img.At(x, y)), "(%d, %d)", x, y)
		}
	}

	g, err := os.Open(filepath.Join(dir, "final_image_bw_3.bmp"))
	require.NoError(t, err)
	defer g.Close()
	grayImg, err := bmp.Decode(g)
	require.NoError(t, err)
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			p, _ := fb.Pixel(x, y)
			want := color.Gray{Y: transform.Luminance(p)}
			assert.Equal(t, want, color.GrayModel.Convert(grayImg.At(x, y)), "(%d, %d)", x, y)
		}
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*."+tempExt))
	assert.Empty(t, matches)
	_, err = os.Stat(filepath.Join(dir, SnapshotName))
	assert.True(t, os.IsNotExist(err))
}

func TestExportOnlyColor(t *testing.T) {
	dir := t.TempDir()
	config := colorAndGrayConfig()
	config.Grayscale = false

	require.NoError(t, NewFileExporter(dir, config, zap.NewNop()).Export(testFrame(t), 1))
	assert.FileExists(t, filepath.Join(dir, ColorName(1)))
	_, err := os.Stat(filepath.Join(dir, GrayscaleName(1)))
	assert.True(t, os.IsNotExist(err))
}

func TestExportInvalidFrame(t *testing.T) {
	dir := t.TempDir()
	fb := &framebuffer.FrameBuffer{Pix: make([]uint16, 4), Width: 8, Height: 4, Stride: 16}

	err := NewFileExporter(dir, colorAndGrayConfig(), zap.NewNop()).Export(fb, 1)
	assert.True(t, errors.Is(err, framebuffer.ErrInvalidDimension))
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestExportMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	err := NewFileExporter(dir, colorAndGrayConfig(), zap.NewNop()).Export(testFrame(t), 1)
	assert.Error(t, err)
}

func TestExportNeedsDiskSpace(t *testing.T) {
	dir := t.TempDir()
	config := colorAndGrayConfig()
	config.MinDiskSpace = 1 << 40

	err := NewFileExporter(dir, config, zap.NewNop()).Export(testFrame(t), 1)
	assert.EqualError(t, err, "not enough free disk space to export frame")
}

func TestDeleteTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bmp.temp"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.bmp"), nil, 0644))

	require.NoError(t, DeleteTempFiles(dir))
	assert.NoFileExists(t, filepath.Join(dir, "a.bmp.temp"))
	assert.FileExists(t, filepath.Join(dir, "b.bmp"))
}

func TestFinalName(t *testing.T) {
	assert.Equal(t, "/x/still.png", finalName("/x/still.png.temp"))
	assert.Equal(t, "/x/still.png", finalName("/x/still.png"))
}

func TestConfigValidate(t *testing.T) {
	config := DefaultConfig()
	assert.NoError(t, config.Validate())
	config.When = "sometimes"
	assert.Error(t, config.Validate())
}

func TestSnapshot(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	dir := t.TempDir()
	fb := testFrame(t)
	require.NoError(t, Snapshot(dir, fb))

	f, err := os.Open(filepath.Join(dir, SnapshotName))
	require.NoError(t, err)
	img, err := png.Decode(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, framebuffer.RGB565(0xf800), framebuffer.RGB565Model.Convert(img.At(0, 0)))

	// A second request straight away is ignored.
	require.NoError(t, os.Remove(filepath.Join(dir, SnapshotName)))
	require.NoError(t, Snapshot(dir, fb))
	assert.NoFileExists(t, filepath.Join(dir, SnapshotName))

	now = now.Add(time.Second)
	require.NoError(t, Snapshot(dir, fb))
	assert.FileExists(t, filepath.Join(dir, SnapshotName))

	require.NoError(t, DeleteSnapshot(dir))
	assert.NoFileExists(t, filepath.Join(dir, SnapshotName))
	require.NoError(t, DeleteSnapshot(dir))
}
