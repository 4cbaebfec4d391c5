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

// Package review runs the capture and review cycle: a key press freezes
// the camera frame, switch flips transform it in place, and the next key
// press exports it and goes back to live capture.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TheCacophonyProject/window"
	"github.com/coreos/go-systemd/daemon"
	"go.uber.org/zap"

	"github.com/TheCacophonyProject/frame-review/export"
	"github.com/TheCacophonyProject/frame-review/framebuffer"
	"github.com/TheCacophonyProject/frame-review/grayscale"
	"github.com/TheCacophonyProject/frame-review/loglimiter"
	"github.com/TheCacophonyProject/frame-review/overlay"
	"github.com/TheCacophonyProject/frame-review/switches"
	"github.com/TheCacophonyProject/frame-review/transform"
)

var (
	// ErrCaptureActive is returned for frame operations requested while
	// the camera is still writing to the frame buffer.
	ErrCaptureActive = errors.New("no frame frozen for review")

	ErrUnknownKind = errors.New("unknown transform")
)

// Mode is the state of the review cycle.
type Mode int

const (
	// Idle: outside the operating window, capture disabled.
	Idle Mode = iota
	// Live: the camera is writing frames.
	Live
	// Review: capture disabled, the frame is frozen and may be transformed.
	Review
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Live:
		return "live"
	case Review:
		return "review"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Capture turns the camera DMA on and off.
type Capture interface {
	SetCaptureEnabled(enabled bool) error
}

// Controls samples the review key and the transform switches.
type Controls interface {
	KeyPressed() (bool, error)
	Switches() (uint32, error)
}

type Exporter interface {
	Export(fb *framebuffer.FrameBuffer, frame int) error
}

type EventListener interface {
	FrameCaptured(frame int)
}

// Options holds the optional collaborators of a Reviewer. Nil fields are
// skipped.
type Options struct {
	Exporter Exporter
	// ExportOn is one of export.OnCapture, export.OnResume or
	// export.OnNever (the default).
	ExportOn string
	Snapshot func(fb *framebuffer.FrameBuffer) error
	Overlay  *overlay.Overlay
	Events   EventListener
	// Window limits live capture to part of the day.
	Window *window.Window
	Logger *zap.Logger
}

// Status is a point in time view of the reviewer.
type Status struct {
	Mode      Mode
	Grayscale grayscale.State
	Frame     int
}

// request states
const (
	requestPending int32 = iota
	requestRunning
	requestAbandoned
)

type request struct {
	ctx   context.Context
	fn    func() error
	reply chan error
	// state moves from pending to either running or abandoned, once.
	state int32
}

// Reviewer owns the frame buffer. Only the goroutine calling Tick (or
// Run) reads or writes it; other goroutines go through the request
// methods.
type Reviewer struct {
	fb       *framebuffer.FrameBuffer
	capture  Capture
	controls Controls
	opts     Options
	logger   *zap.Logger
	limiter  *loglimiter.LogLimiter

	mode     Mode
	frame    int
	toggle   grayscale.Toggle
	detector switches.Detector
	requests chan *request
}

func New(fb *framebuffer.FrameBuffer, capture Capture, controls Controls, opts Options) *Reviewer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reviewer{
		fb:       fb,
		capture:  capture,
		controls: controls,
		opts:     opts,
		logger:   logger,
		limiter:  loglimiter.New(logger, 10*time.Second),
		mode:     Idle,
		requests: make(chan *request, 8),
	}
}

// Mode returns the current mode. Only call it from the loop goroutine;
// use Status elsewhere.
func (r *Reviewer) Mode() Mode {
	return r.mode
}

// Start puts the camera into the mode the operating window calls for.
func (r *Reviewer) Start() error {
	if r.windowActive() {
		return r.goLive()
	}
	return r.goIdle()
}

// Run calls Tick every interval until ctx is cancelled. Tick errors are
// logged and the loop carries on.
func (r *Reviewer) Run(ctx context.Context, interval time.Duration) error {
	if err := r.Start(); err != nil {
		return err
	}
	daemon.SdNotify(false, "READY=1")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Tick(); err != nil {
				r.limiter.Error("review tick failed", err)
			}
			daemon.SdNotify(false, "WATCHDOG=1")
		}
	}
}

// Tick serves queued requests, samples the controls once and acts on any
// edges. Only errors reading the controls or driving the capture hardware
// are returned; failed transforms are logged.
func (r *Reviewer) Tick() error {
	r.serveRequests()

	key, err := r.controls.KeyPressed()
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}
	sw, err := r.controls.Switches()
	if err != nil {
		return fmt.Errorf("failed to read switches: %w", err)
	}
	pressed, edges := r.detector.Update(key, sw)

	switch r.mode {
	case Idle:
		if r.windowActive() {
			return r.goLive()
		}
	case Live:
		if !r.windowActive() {
			return r.goIdle()
		}
		if pressed {
			return r.freeze()
		}
	case Review:
		for i, edge := range edges {
			if edge {
				r.dispatch(i)
			}
		}
		if pressed {
			return r.resume()
		}
	}
	return nil
}

func (r *Reviewer) windowActive() bool {
	return r.opts.Window == nil || r.opts.Window.Active()
}

func (r *Reviewer) goLive() error {
	if err := r.capture.SetCaptureEnabled(true); err != nil {
		return fmt.Errorf("failed to enable capture: %w", err)
	}
	r.mode = Live
	r.logger.Info("capture enabled")
	return nil
}

func (r *Reviewer) goIdle() error {
	if err := r.capture.SetCaptureEnabled(false); err != nil {
		return fmt.Errorf("failed to disable capture: %w", err)
	}
	r.mode = Idle
	r.logger.Info("outside of operating window, capture disabled")
	return nil
}

// freeze stops the camera so the frame can be reviewed.
func (r *Reviewer) freeze() error {
	if err := r.capture.SetCaptureEnabled(false); err != nil {
		return fmt.Errorf("failed to disable capture: %w", err)
	}
	r.frame++
	r.toggle.Reset()
	r.mode = Review
	r.logger.Info("frame captured", zap.Int("frame", r.frame))
	r.showOverlay(r.opts.Overlay.ShowFrame(r.frame))
	if r.opts.Events != nil {
		r.opts.Events.FrameCaptured(r.frame)
	}
	if r.opts.ExportOn == export.OnCapture {
		r.exportLogged()
	}
	return nil
}

// resume releases the frame and goes back to live capture.
func (r *Reviewer) resume() error {
	if r.opts.ExportOn == export.OnResume {
		r.exportLogged()
	}
	r.opts.Overlay.Clear()
	return r.goLive()
}

// dispatch applies the transform wired to switch i.
func (r *Reviewer) dispatch(i int) {
	kind := transform.Kinds[i]
	if err := r.apply(kind); err != nil {
		r.limiter.Error("transform failed", err, zap.Stringer("transform", kind), zap.Int("switch", i))
	}
}

func (r *Reviewer) apply(kind transform.Kind) error {
	if kind == transform.Grayscale {
		_, err := r.toggleGrayscale()
		return err
	}
	if err := transform.Apply(kind, r.fb); err != nil {
		return err
	}
	r.logger.Debug("transform applied", zap.Stringer("transform", kind), zap.Int("frame", r.frame))
	r.showOverlay(r.opts.Overlay.ShowStatus("%s", kind))
	return nil
}

func (r *Reviewer) toggleGrayscale() (grayscale.State, error) {
	state, err := r.toggle.Toggle(r.fb)
	if err != nil {
		return state, err
	}
	r.logger.Debug("grayscale toggled", zap.Stringer("state", state), zap.Int("frame", r.frame))
	r.showOverlay(r.opts.Overlay.ShowStatus("%s", state))
	return state, nil
}

// showOverlay logs a failed overlay update. The overlay is informational
// so the frame operation that triggered it still stands.
func (r *Reviewer) showOverlay(err error) {
	if err != nil {
		r.limiter.Error("overlay update failed", err)
	}
}

func (r *Reviewer) export() error {
	if r.opts.Exporter == nil {
		return errors.New("exporting is not configured")
	}
	return r.opts.Exporter.Export(r.fb, r.frame)
}

func (r *Reviewer) exportLogged() {
	if err := r.export(); err != nil {
		r.limiter.Error("export failed", err, zap.Int("frame", r.frame))
	}
}
