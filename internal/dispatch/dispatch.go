// Package dispatch maps a global frame number to a scene and a local step,
// then asks that scene for its descriptor.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/ivlev/aconitase/internal/choreo"
	"github.com/ivlev/aconitase/internal/scene"
	"github.com/ivlev/aconitase/internal/timeline"
)

var (
	ErrFrameOutOfRange = errors.New("frame outside the timeline")
	ErrNoCast          = errors.New("dispatcher needs a cast")
	ErrNoRender        = errors.New("scene has no render function")
	ErrSceneCount      = errors.New("wrong number of end frames")
)

// Scene is one row of the scene table: a named procedure running until End
type Scene struct {
	Name   string
	End    int
	Render choreo.SceneFunc
}

type Dispatcher struct {
	scenes   []Scene
	timeline *timeline.Timeline
	cast     *choreo.Cast
	clamp    bool
}

type Option func(*Dispatcher)

// WithClamp maps frames past the final end frame onto the last step of the
// final scene instead of rejecting them.
func WithClamp() Option {
	return func(d *Dispatcher) {
		d.clamp = true
	}
}

// New validates the scene table and builds a dispatcher. Timeline errors are
// returned as is so callers can test them with errors.Is.
func New(scenes []Scene, fps int, cast *choreo.Cast, opts ...Option) (*Dispatcher, error) {
	if cast == nil {
		return nil, ErrNoCast
	}

	ends := make([]int, len(scenes))
	for i, s := range scenes {
		if s.Render == nil {
			return nil, fmt.Errorf("scene %d (%s): %w", i+1, s.Name, ErrNoRender)
		}
		ends[i] = s.End
	}

	tl, err := timeline.New(ends, fps)
	if err != nil {
		return nil, fmt.Errorf("invalid timeline: %w", err)
	}

	d := &Dispatcher{
		scenes:   append([]Scene(nil), scenes...),
		timeline: tl,
		cast:     cast,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Default builds the reference six-scene dispatcher ending on the given frames
func Default(cast *choreo.Cast, fps int, ends []int, opts ...Option) (*Dispatcher, error) {
	if len(ends) != len(choreo.Reference) {
		return nil, fmt.Errorf("need %d end frames, got %d: %w", len(choreo.Reference), len(ends), ErrSceneCount)
	}
	scenes := make([]Scene, len(ends))
	for i, e := range choreo.Reference {
		scenes[i] = Scene{Name: e.Name, End: ends[i], Render: e.Render}
	}
	return New(scenes, fps, cast, opts...)
}

// Timeline returns the planned timeline
func (d *Dispatcher) Timeline() *timeline.Timeline {
	return d.timeline
}

// Scenes returns the scene table
func (d *Dispatcher) Scenes() []Scene {
	return append([]Scene(nil), d.scenes...)
}

// Locate returns the 0-based scene index for frame and the step within it.
// The first scene runs from frame 0 to End[0] inclusive, every later scene
// from End[i-1]+1 to End[i].
func (d *Dispatcher) Locate(frame int) (index, step int, err error) {
	last := d.timeline.LastFrame()
	if frame < 0 {
		return 0, 0, fmt.Errorf("frame %d: %w", frame, ErrFrameOutOfRange)
	}
	if frame > last {
		if !d.clamp {
			return 0, 0, fmt.Errorf("frame %d past final frame %d: %w", frame, last, ErrFrameOutOfRange)
		}
		frame = last
	}

	for i, end := range d.timeline.End {
		if frame <= end {
			return i, frame - d.timeline.Start[i], nil
		}
	}
	// Unreachable: frame <= last was checked above
	return 0, 0, fmt.Errorf("frame %d: %w", frame, ErrFrameOutOfRange)
}

// Timing returns the timing handed to scene i
func (d *Dispatcher) Timing(i int) choreo.Timing {
	return choreo.Timing{
		Frames:  d.timeline.Frames[i],
		Seconds: d.timeline.Seconds(i),
		FPS:     d.timeline.FPS,
	}
}

// Dispatch produces the descriptor for a global frame
func (d *Dispatcher) Dispatch(frame int) (scene.Descriptor, error) {
	i, step, err := d.Locate(frame)
	if err != nil {
		return scene.Descriptor{}, err
	}

	s := d.scenes[i]
	desc, err := s.Render(d.cast, d.Timing(i), step)
	if err != nil {
		return scene.Descriptor{}, fmt.Errorf("frame %d, scene %d (%s), step %d: %w", frame, i+1, s.Name, step, err)
	}

	desc.Frame = frame
	desc.Scene = i + 1
	desc.Name = s.Name
	desc.Step = step
	return desc, nil
}
