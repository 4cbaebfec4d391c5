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

// Package export writes reviewed frames to disk: a 24 bit colour BMP, an
// 8 bit grayscale BMP and a PNG still for previews.
package export

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/sys/unix"

	"github.com/TheCacophonyProject/frame-review/framebuffer"
	"github.com/TheCacophonyProject/frame-review/transform"
)

const tempExt = "temp"

// Config selects which files are written for each exported frame.
type Config struct {
	When         string `yaml:"when"`
	Color        bool   `yaml:"color"`
	Grayscale    bool   `yaml:"grayscale"`
	Snapshot     bool   `yaml:"snapshot"`
	MinDiskSpace uint64 `yaml:"min-disk-space-mb"`
}

// When to export, relative to the review of a frame.
const (
	OnCapture = "capture"
	OnResume  = "resume"
	OnNever   = "never"
)

func DefaultConfig() Config {
	return Config{
		When:         OnResume,
		Color:        true,
		Grayscale:    true,
		Snapshot:     true,
		MinDiskSpace: 50,
	}
}

func (c *Config) Validate() error {
	switch c.When {
	case OnCapture, OnResume, OnNever:
	default:
		return fmt.Errorf("export when must be one of %q, %q or %q, not %q", OnCapture, OnResume, OnNever, c.When)
	}
	return nil
}

// FileExporter writes frames into a directory.
type FileExporter struct {
	dir    string
	config Config
	logger *zap.Logger
}

func NewFileExporter(dir string, config Config, logger *zap.Logger) *FileExporter {
	return &FileExporter{dir: dir, config: config, logger: logger}
}

// ColorName and GrayscaleName are the file names used for frame n.
func ColorName(n int) string {
	return fmt.Sprintf("final_image_color_%d.bmp", n)
}

func GrayscaleName(n int) string {
	return fmt.Sprintf("final_image_bw_%d.bmp", n)
}

// Export writes the configured files for frame n. Each file appears
// complete or not at all.
func (fe *FileExporter) Export(fb *framebuffer.FrameBuffer, n int) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	if err := fe.checkCanExport(); err != nil {
		return err
	}
	if fe.config.Color {
		if err := writeFile(filepath.Join(fe.dir, ColorName(n)), func(w io.Writer) error {
			return bmp.Encode(w, fb)
		}); err != nil {
			return err
		}
	}
	if fe.config.Grayscale {
		gray, err := LuminanceImage(fb)
		if err != nil {
			return err
		}
		if err := writeFile(filepath.Join(fe.dir, GrayscaleName(n)), func(w io.Writer) error {
			return bmp.Encode(w, gray)
		}); err != nil {
			return err
		}
	}
	if fe.config.Snapshot {
		if err := Snapshot(fe.dir, fb); err != nil {
			return err
		}
	}
	fe.logger.Info("frame exported", zap.Int("frame", n), zap.String("dir", fe.dir))
	return nil
}

func (fe *FileExporter) checkCanExport() error {
	if fe.config.MinDiskSpace == 0 {
		return nil
	}
	enoughSpace, err := checkDiskSpace(fe.config.MinDiskSpace, fe.dir)
	if err != nil {
		return fmt.Errorf("problem with checking disk space: %w", err)
	} else if !enoughSpace {
		return errors.New("not enough free disk space to export frame")
	}
	return nil
}

// LuminanceImage returns the 8 bit luminance of every pixel of fb.
func LuminanceImage(fb *framebuffer.FrameBuffer) (*image.Gray, error) {
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	gray := image.NewGray(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		row, err := fb.Row(y)
		if err != nil {
			return nil, err
		}
		out := gray.Pix[y*gray.Stride : y*gray.Stride+fb.Width]
		for x, v := range row {
			out[x] = transform.Luminance(framebuffer.RGB565(v))
		}
	}
	return gray, nil
}

// writeFile writes to a temp file next to filename and renames it into
// place once encode succeeds.
func writeFile(filename string, encode func(io.Writer) error) error {
	tempName := filename + "." + tempExt
	f, err := os.Create(tempName)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		os.Remove(tempName)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tempName)
		return err
	}
	return os.Rename(tempName, finalName(tempName))
}

var reTempName = regexp.MustCompile(`(.+)\.` + tempExt + `$`)

func finalName(filename string) string {
	return reTempName.ReplaceAllString(filename, `$1`)
}

// DeleteTempFiles removes partial exports left behind by a crash.
func DeleteTempFiles(directory string) error {
	matches, _ := filepath.Glob(filepath.Join(directory, "*."+tempExt))
	for _, filename := range matches {
		if err := os.Remove(filename); err != nil {
			return err
		}
	}
	return nil
}

func checkDiskSpace(mb uint64, dir string) (bool, error) {
	var fs unix.Statfs_t
	if err := unix.Statfs(dir, &fs); err != nil {
		return false, err
	}
	return fs.Bavail*uint64(fs.Bsize)/1024/1024 >= mb, nil
}
