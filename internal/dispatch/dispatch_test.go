package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/aconitase/internal/choreo"
	"github.com/ivlev/aconitase/internal/scene"
	"github.com/ivlev/aconitase/internal/timeline"
)

var reference = []int{120, 240, 420, 690, 870, 1050}

func newDefault(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	cast, err := choreo.LoadCast("", "")
	require.NoError(t, err)
	d, err := Default(cast, 30, reference, opts...)
	require.NoError(t, err)
	return d
}

func TestLocate(t *testing.T) {
	d := newDefault(t)

	tests := []struct {
		frame int
		index int
		step  int
	}{
		{0, 0, 0},
		{120, 0, 120},
		{121, 1, 1},
		{240, 1, 120},
		{241, 2, 1},
		{420, 2, 180},
		{510, 3, 90}, // switching, last step of phase A
		{511, 3, 91}, // switching, first step of phase B
		{690, 3, 270},
		{691, 4, 1},
		{871, 5, 1},
		{1050, 5, 180},
	}

	for _, tt := range tests {
		index, step, err := d.Locate(tt.frame)
		require.NoError(t, err, "frame %d", tt.frame)
		assert.Equal(t, tt.index, index, "frame %d", tt.frame)
		assert.Equal(t, tt.step, step, "frame %d", tt.frame)
	}
}

func TestLocatePartitionsTimeline(t *testing.T) {
	d := newDefault(t)
	tl := d.Timeline()

	counts := make([]int, tl.Len())
	prevIndex, prevStep := 0, -1
	for frame := 0; frame <= tl.LastFrame(); frame++ {
		index, step, err := d.Locate(frame)
		require.NoError(t, err)
		counts[index]++

		// Scenes never go backwards; steps count up inside a scene
		require.GreaterOrEqual(t, index, prevIndex)
		if index == prevIndex {
			require.Equal(t, prevStep+1, step, "frame %d", frame)
		} else {
			require.Equal(t, 1, step, "frame %d", frame)
		}
		prevIndex, prevStep = index, step
	}

	// Scene 1 includes frame 0
	assert.Equal(t, []int{121, 120, 180, 270, 180, 180}, counts)
}

func TestOutOfRange(t *testing.T) {
	d := newDefault(t)

	_, _, err := d.Locate(1051)
	assert.ErrorIs(t, err, ErrFrameOutOfRange)
	_, err = d.Dispatch(-1)
	assert.ErrorIs(t, err, ErrFrameOutOfRange)

	clamped := newDefault(t, WithClamp())
	index, step, err := clamped.Locate(5000)
	require.NoError(t, err)
	assert.Equal(t, 5, index)
	assert.Equal(t, 180, step)

	_, _, err = clamped.Locate(-3)
	assert.ErrorIs(t, err, ErrFrameOutOfRange)
}

func TestDispatchLabels(t *testing.T) {
	d := newDefault(t)

	desc, err := d.Dispatch(511)
	require.NoError(t, err)
	assert.Equal(t, 511, desc.Frame)
	assert.Equal(t, 4, desc.Scene)
	assert.Equal(t, "switching", desc.Name)
	assert.Equal(t, 91, desc.Step)
}

func TestDispatchMatchesScene(t *testing.T) {
	d := newDefault(t)
	cast, err := choreo.LoadCast("", "")
	require.NoError(t, err)

	for _, frame := range []int{0, 120, 121, 300, 510, 511, 700, 871, 1050} {
		got, err := d.Dispatch(frame)
		require.NoError(t, err)

		index, step, err := d.Locate(frame)
		require.NoError(t, err)
		want, err := choreo.Reference[index].Render(cast, d.Timing(index), step)
		require.NoError(t, err)

		assert.Equal(t, want.Camera, got.Camera, "frame %d", frame)
		assert.Equal(t, want.Lights, got.Lights, "frame %d", frame)
		assert.Equal(t, want.Spheres, got.Spheres, "frame %d", frame)
	}
}

func TestDispatchOrderIndependent(t *testing.T) {
	d := newDefault(t)

	first, err := d.Dispatch(600)
	require.NoError(t, err)
	for _, f := range []int{1000, 10, 300, 599, 601} {
		_, err := d.Dispatch(f)
		require.NoError(t, err)
	}
	again, err := d.Dispatch(600)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestTiming(t *testing.T) {
	d := newDefault(t)

	tm := d.Timing(3)
	assert.Equal(t, 270, tm.Frames)
	assert.InDelta(t, 9.0, tm.Seconds, 1e-12)
	assert.Equal(t, 30, tm.FPS)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cast, err := choreo.LoadCast("", "")
	require.NoError(t, err)

	noop := func(*choreo.Cast, choreo.Timing, int) (scene.Descriptor, error) {
		return scene.Descriptor{}, nil
	}

	tests := []struct {
		name   string
		scenes []Scene
		cast   *choreo.Cast
		fps    int
		want   error
	}{
		{"empty", nil, cast, 30, timeline.ErrEmpty},
		{"not increasing", []Scene{{"a", 20, noop}, {"b", 10, noop}}, cast, 30, timeline.ErrNotIncreasing},
		{"zero duration", []Scene{{"a", 20, noop}, {"b", 20, noop}}, cast, 30, timeline.ErrZeroDuration},
		{"bad fps", []Scene{{"a", 20, noop}}, cast, 0, timeline.ErrFPS},
		{"missing render", []Scene{{"a", 20, nil}}, cast, 30, ErrNoRender},
		{"no cast", []Scene{{"a", 20, noop}}, nil, 30, ErrNoCast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.scenes, tt.fps, tt.cast)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = Default(cast, 30, []int{1, 2, 3})
	assert.ErrorIs(t, err, ErrSceneCount)
}

func TestCustomSceneTable(t *testing.T) {
	cast, err := choreo.LoadCast("", "")
	require.NoError(t, err)

	var seen []choreo.Timing
	record := func(_ *choreo.Cast, tm choreo.Timing, step int) (scene.Descriptor, error) {
		seen = append(seen, tm)
		return scene.Descriptor{}, nil
	}

	d, err := New([]Scene{{"one", 10, record}, {"two", 40, record}}, 10, cast)
	require.NoError(t, err)

	desc, err := d.Dispatch(25)
	require.NoError(t, err)
	assert.Equal(t, 2, desc.Scene)
	assert.Equal(t, 15, desc.Step)
	assert.Equal(t, choreo.Timing{Frames: 30, Seconds: 3, FPS: 10}, seen[0])
}
