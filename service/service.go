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

// Package service exposes the reviewer on the system D-Bus so other
// processes can transform, export and query the frozen frame.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/godbus/dbus"
	"github.com/godbus/dbus/introspect"

	"github.com/TheCacophonyProject/frame-review/grayscale"
	"github.com/TheCacophonyProject/frame-review/review"
	"github.com/TheCacophonyProject/frame-review/transform"
)

const (
	DbusName = "org.cacophony.framereview"
	DbusPath = "/org/cacophony/framereview"

	requestTimeout = 5 * time.Second
)

// Reviewer is the part of *review.Reviewer the service calls.
type Reviewer interface {
	Apply(ctx context.Context, kind transform.Kind) error
	ToggleGrayscale(ctx context.Context) (grayscale.State, error)
	Export(ctx context.Context) error
	TakeSnapshot(ctx context.Context) error
	Status(ctx context.Context) (review.Status, error)
}

// Service holds the exported D-Bus methods. Every exported method of this
// type is callable over the bus.
type Service struct {
	reviewer Reviewer
	timeout  time.Duration
}

// Start claims the service name on the system bus and exports the
// reviewer's methods.
func Start(reviewer Reviewer) (*Service, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	reply, err := conn.RequestName(DbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, errors.New("name already taken")
	}

	s := New(reviewer)
	if err := conn.Export(s, DbusPath, DbusName); err != nil {
		return nil, err
	}
	if err := conn.Export(genIntrospectable(s), DbusPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return nil, err
	}
	return s, nil
}

// New returns a Service that is not attached to a bus.
func New(reviewer Reviewer) *Service {
	return &Service{reviewer: reviewer, timeout: requestTimeout}
}

func genIntrospectable(v interface{}) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{{
			Name:    DbusName,
			Methods: introspect.Methods(v),
		}},
	}
	return introspect.NewIntrospectable(node)
}

// Apply runs the named transform (flip, mirror, grayscale or invert).
func (s *Service) Apply(kind string) *dbus.Error {
	k, err := transform.ParseKind(kind)
	if err != nil {
		return makeDbusError("Apply", err)
	}
	ctx, cancel := s.context()
	defer cancel()
	if err := s.reviewer.Apply(ctx, k); err != nil {
		return makeDbusError("Apply", err)
	}
	return nil
}

// ToggleGrayscale returns the new state, "color" or "grayscale".
func (s *Service) ToggleGrayscale() (string, *dbus.Error) {
	ctx, cancel := s.context()
	defer cancel()
	state, err := s.reviewer.ToggleGrayscale(ctx)
	if err != nil {
		return "", makeDbusError("ToggleGrayscale", err)
	}
	return state.String(), nil
}

func (s *Service) Export() *dbus.Error {
	ctx, cancel := s.context()
	defer cancel()
	if err := s.reviewer.Export(ctx); err != nil {
		return makeDbusError("Export", err)
	}
	return nil
}

func (s *Service) TakeSnapshot() *dbus.Error {
	ctx, cancel := s.context()
	defer cancel()
	if err := s.reviewer.TakeSnapshot(ctx); err != nil {
		return makeDbusError("TakeSnapshot", err)
	}
	return nil
}

// Status returns the review mode, the grayscale state and the number of
// the last captured frame.
func (s *Service) Status() (string, string, int32, *dbus.Error) {
	ctx, cancel := s.context()
	defer cancel()
	status, err := s.reviewer.Status(ctx)
	if err != nil {
		return "", "", 0, makeDbusError("Status", err)
	}
	return status.Mode.String(), status.Grayscale.String(), int32(status.Frame), nil
}

func (s *Service) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func makeDbusError(name string, err error) *dbus.Error {
	return &dbus.Error{
		Name: DbusName + "." + name,
		Body: []interface{}{err.Error()},
	}
}
