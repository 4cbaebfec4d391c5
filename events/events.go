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

// Package events queues frame-review events with the Cacophony events
// service over D-Bus.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/godbus/dbus"
	"go.uber.org/zap"
)

const (
	FrameCaptured   = "frameCaptured"
	ExportThrottled = "exportThrottled"
)

// QueueFunc hands a JSON encoded event to the events service.
type QueueFunc func(details []byte, ts time.Time) error

// Recorder queues events in the background, retrying with exponential
// backoff while the events service is unavailable.
type Recorder struct {
	// DeviceName is added to event details when set.
	DeviceName string

	queue      QueueFunc
	logger     *zap.Logger
	nowFunc    func() time.Time
	newBackOff func() backoff.BackOff
	wg         sync.WaitGroup
}

// New returns a Recorder that queues events on the system bus.
func New(logger *zap.Logger) *Recorder {
	return NewWithQueue(queueOverDbus, logger)
}

// NewWithQueue returns a Recorder that queues events with queue.
func NewWithQueue(queue QueueFunc, logger *zap.Logger) *Recorder {
	return &Recorder{
		queue:   queue,
		logger:  logger,
		nowFunc: time.Now,
		newBackOff: func() backoff.BackOff {
			return &backoff.ExponentialBackOff{
				InitialInterval:     250 * time.Millisecond,
				RandomizationFactor: 0.5,
				Multiplier:          2.,
				MaxInterval:         5 * time.Second,
				MaxElapsedTime:      30 * time.Second,
				Clock:               backoff.SystemClock,
			}
		},
	}
}

// FrameCaptured records that frame was frozen for review.
func (r *Recorder) FrameCaptured(frame int) {
	r.queueAsync(FrameCaptured, r.frameDetails(frame))
}

// WhenThrottled records that exporting frame was throttled.
func (r *Recorder) WhenThrottled(frame int) {
	r.queueAsync(ExportThrottled, r.frameDetails(frame))
}

func (r *Recorder) frameDetails(frame int) map[string]interface{} {
	details := map[string]interface{}{"frame": frame}
	if r.DeviceName != "" {
		details["device"] = r.DeviceName
	}
	return details
}

// Wait blocks until every event handed to the Recorder has been queued
// or given up on.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) queueAsync(eventType string, details map[string]interface{}) {
	ts := r.nowFunc()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.Queue(eventType, details, ts); err != nil {
			r.logger.Warn("could not record event", zap.String("type", eventType), zap.Error(err))
		}
	}()
}

// Queue encodes and queues a single event, retrying until the backoff
// gives up.
func (r *Recorder) Queue(eventType string, details map[string]interface{}, ts time.Time) error {
	eventDetails := map[string]interface{}{
		"description": map[string]interface{}{
			"type":    eventType,
			"details": details,
		},
	}
	detailsJSON, err := json.Marshal(&eventDetails)
	if err != nil {
		return err
	}
	op := func() error {
		return r.queue(detailsJSON, ts)
	}
	return backoff.Retry(op, r.newBackOff())
}

func queueOverDbus(details []byte, ts time.Time) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return err
	}
	obj := conn.Object("org.cacophony.Events", "/org/cacophony/Events")
	call := obj.Call("org.cacophony.Events.Queue", 0, details, ts.UnixNano())
	if call.Err != nil {
		return fmt.Errorf("queue call failed: %w", call.Err)
	}
	return nil
}
