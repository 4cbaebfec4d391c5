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
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/TheCacophonyProject/frame-review/framebuffer"
)

const (
	SnapshotName          = "still.png"
	allowedSnapshotPeriod = 500 * time.Millisecond
)

var (
	previousSnapshotTime time.Time
	mu                   sync.Mutex
	nowFunc              = time.Now
)

// Snapshot writes fb to still.png in dir. Requests arriving within half a
// second of the last successful snapshot are ignored.
func Snapshot(dir string, fb *framebuffer.FrameBuffer) error {
	mu.Lock()
	defer mu.Unlock()

	if nowFunc().Sub(previousSnapshotTime) < allowedSnapshotPeriod {
		return nil
	}
	if err := fb.Validate(); err != nil {
		return err
	}
	err := writeFile(filepath.Join(dir, SnapshotName), func(w io.Writer) error {
		return png.Encode(w, fb)
	})
	if err != nil {
		return err
	}

	// the time will be changed only if the attempt is successful
	previousSnapshotTime = nowFunc()
	return nil
}

// DeleteSnapshot removes any still left from a previous run.
func DeleteSnapshot(dir string) error {
	if err := os.Remove(filepath.Join(dir, SnapshotName)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
