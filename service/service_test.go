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

package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/frame-review/grayscale"
	"github.com/TheCacophonyProject/frame-review/review"
	"github.com/TheCacophonyProject/frame-review/transform"
)

type fakeReviewer struct {
	applied []transform.Kind
	state   grayscale.State
	exports int
	err     error
}

func (f *fakeReviewer) Apply(ctx context.Context, kind transform.Kind) error {
	if f.err != nil {
		return f.err
	}
	f.applied = append(f.applied, kind)
	return nil
}

func (f *fakeReviewer) ToggleGrayscale(ctx context.Context) (grayscale.State, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.state == grayscale.Color {
		f.state = grayscale.Grayscale
	} else {
		f.state = grayscale.Color
	}
	return f.state, nil
}

func (f *fakeReviewer) Export(ctx context.Context) error {
	f.exports++
	return f.err
}

func (f *fakeReviewer) TakeSnapshot(ctx context.Context) error {
	return f.err
}

func (f *fakeReviewer) Status(ctx context.Context) (review.Status, error) {
	return review.Status{Mode: review.Review, Grayscale: f.state, Frame: 12}, f.err
}

func TestApply(t *testing.T) {
	f := new(fakeReviewer)
	s := New(f)

	require.Nil(t, s.Apply("flip"))
	require.Nil(t, s.Apply("Invert"))
	assert.Equal(t, []transform.Kind{transform.FlipHorizontal, transform.InvertColors}, f.applied)

	dbusErr := s.Apply("rotate")
	require.NotNil(t, dbusErr)
	assert.Equal(t, "org.cacophony.framereview.Apply", dbusErr.Name)
	assert.Equal(t, []interface{}{`unknown transform "rotate"`}, dbusErr.Body)
}

func TestToggleGrayscale(t *testing.T) {
	s := New(new(fakeReviewer))

	state, dbusErr := s.ToggleGrayscale()
	require.Nil(t, dbusErr)
	assert.Equal(t, "grayscale", state)

	state, dbusErr = s.ToggleGrayscale()
	require.Nil(t, dbusErr)
	assert.Equal(t, "color", state)
}

func TestErrorsArePassedBack(t *testing.T) {
	f := &fakeReviewer{err: fmt.Errorf("%w: reviewer is live", review.ErrCaptureActive)}
	s := New(f)

	dbusErr := s.Export()
	require.NotNil(t, dbusErr)
	assert.Equal(t, "org.cacophony.framereview.Export", dbusErr.Name)
	assert.Equal(t, []interface{}{"no frame frozen for review: reviewer is live"}, dbusErr.Body)

	assert.NotNil(t, s.TakeSnapshot())
	_, dbusErr = s.ToggleGrayscale()
	assert.NotNil(t, dbusErr)
	_, _, _, dbusErr = s.Status()
	assert.Equal(t, "org.cacophony.framereview.Status", dbusErr.Name)
}

func TestStatus(t *testing.T) {
	s := New(&fakeReviewer{state: grayscale.Grayscale})
	mode, gray, frame, dbusErr := s.Status()
	require.Nil(t, dbusErr)
	assert.Equal(t, "review", mode)
	assert.Equal(t, "grayscale", gray)
	assert.Equal(t, int32(12), frame)
}

func TestIntrospection(t *testing.T) {
	s := New(new(fakeReviewer))
	xml, dbusErr := genIntrospectable(s).Introspect()
	require.Nil(t, dbusErr)
	for _, method := range []string{"Apply", "ToggleGrayscale", "Export", "TakeSnapshot", "Status"} {
		assert.Contains(t, xml, `<method name="`+method+`">`)
	}
}

var _ Reviewer = (*review.Reviewer)(nil)
