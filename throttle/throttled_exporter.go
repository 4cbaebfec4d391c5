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

package throttle

import (
	"errors"
	"time"

	"github.com/juju/ratelimit"
	"go.uber.org/zap"

	"github.com/TheCacophonyProject/frame-review/framebuffer"
	"github.com/TheCacophonyProject/frame-review/loglimiter"
)

const throttledLogInterval = time.Minute

// ErrThrottled is returned when an export was skipped because too many
// exports were made recently.
var ErrThrottled = errors.New("export throttled")

// Exporter writes a frame out under its frame number.
type Exporter interface {
	Export(fb *framebuffer.FrameBuffer, frame int) error
}

// ThrottledEventListener is told about every export that gets throttled.
type ThrottledEventListener interface {
	WhenThrottled(frame int)
}

type nullListener struct{}

func (nullListener) WhenThrottled(int) {}

// ThrottledExporter wraps an Exporter so that it stops exporting (ie gets
// throttled) if asked to export too often, for example when someone is
// holding a key down or a switch is bouncing.
type ThrottledExporter struct {
	exporter Exporter
	listener ThrottledEventListener
	bucket   *ratelimit.Bucket
	limiter  *loglimiter.LogLimiter
}

func NewThrottledExporter(
	exporter Exporter,
	config *Config,
	listener ThrottledEventListener,
	logger *zap.Logger,
) Exporter {
	return NewThrottledExporterWithClock(exporter, config, listener, logger, new(realClock))
}

// NewThrottledExporterWithClock is NewThrottledExporter with an explicit
// clock for the token bucket. If throttling is disabled exporter is
// returned as is.
func NewThrottledExporterWithClock(
	exporter Exporter,
	config *Config,
	listener ThrottledEventListener,
	logger *zap.Logger,
	clock ratelimit.Clock,
) Exporter {
	if !config.ApplyThrottling {
		return exporter
	}
	if listener == nil {
		listener = nullListener{}
	}
	size := config.BucketSize
	if size < 1 {
		size = 1
	}
	refillRate := 1 / config.MinRefill.Seconds()
	return &ThrottledExporter{
		exporter: exporter,
		listener: listener,
		bucket:   ratelimit.NewBucketWithRateAndClock(refillRate, size, clock),
		limiter:  loglimiter.New(logger, throttledLogInterval),
	}
}

func (throttler *ThrottledExporter) Export(fb *framebuffer.FrameBuffer, frame int) error {
	if throttler.bucket.TakeAvailable(1) > 0 {
		return throttler.exporter.Export(fb, frame)
	}
	throttler.limiter.Print("export throttled", zap.Int("frame", frame))
	throttler.listener.WhenThrottled(frame)
	return ErrThrottled
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
