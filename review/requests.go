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

package review

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/TheCacophonyProject/frame-review/grayscale"
	"github.com/TheCacophonyProject/frame-review/transform"
)

// The methods below may be called from any goroutine. Each queues its
// work for the loop goroutine, which serves the queue at the start of the
// next tick, and waits for the result. A request whose context is done
// before the loop gets to it is dropped without touching the frame; once
// the loop has started it, the caller gets its real result.

// Apply runs the transform kind on the frozen frame. The grayscale kind
// toggles grayscale.
func (r *Reviewer) Apply(ctx context.Context, kind transform.Kind) error {
	return r.do(ctx, func() error {
		if err := r.checkFrozen(); err != nil {
			return err
		}
		if !validKind(kind) {
			return fmt.Errorf("%w: %v", ErrUnknownKind, kind)
		}
		return r.apply(kind)
	})
}

func (r *Reviewer) ToggleGrayscale(ctx context.Context) (grayscale.State, error) {
	var state grayscale.State
	err := r.do(ctx, func() error {
		if err := r.checkFrozen(); err != nil {
			return err
		}
		var err error
		state, err = r.toggleGrayscale()
		return err
	})
	if err != nil {
		return 0, err
	}
	return state, nil
}

// Export writes the frozen frame out now, regardless of the export
// policy.
func (r *Reviewer) Export(ctx context.Context) error {
	return r.do(ctx, func() error {
		if err := r.checkFrozen(); err != nil {
			return err
		}
		return r.export()
	})
}

// TakeSnapshot writes a still of the frozen frame.
func (r *Reviewer) TakeSnapshot(ctx context.Context) error {
	return r.do(ctx, func() error {
		if err := r.checkFrozen(); err != nil {
			return err
		}
		if r.opts.Snapshot == nil {
			return fmt.Errorf("snapshots are not configured")
		}
		return r.opts.Snapshot(r.fb)
	})
}

func (r *Reviewer) Status(ctx context.Context) (Status, error) {
	var status Status
	err := r.do(ctx, func() error {
		status = Status{
			Mode:      r.mode,
			Grayscale: r.toggle.State(),
			Frame:     r.frame,
		}
		return nil
	})
	if err != nil {
		return Status{}, err
	}
	return status, nil
}

func (r *Reviewer) checkFrozen() error {
	if r.mode != Review {
		return fmt.Errorf("%w: reviewer is %v", ErrCaptureActive, r.mode)
	}
	return nil
}

func validKind(kind transform.Kind) bool {
	for _, k := range transform.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (r *Reviewer) do(ctx context.Context, fn func() error) error {
	req := &request{ctx: ctx, fn: fn, reply: make(chan error, 1)}
	select {
	case r.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		if atomic.CompareAndSwapInt32(&req.state, requestPending, requestAbandoned) {
			return ctx.Err()
		}
		return <-req.reply
	}
}

func (r *Reviewer) serveRequests() {
	for {
		select {
		case req := <-r.requests:
			r.serve(req)
		default:
			return
		}
	}
}

func (r *Reviewer) serve(req *request) {
	if err := req.ctx.Err(); err != nil {
		if atomic.CompareAndSwapInt32(&req.state, requestPending, requestAbandoned) {
			req.reply <- err
		}
		return
	}
	if !atomic.CompareAndSwapInt32(&req.state, requestPending, requestRunning) {
		return
	}
	req.reply <- req.fn()
}
