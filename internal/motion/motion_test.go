package motion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivlev/aconitase/internal/geom"
)

func TestLinearProgressReachesTargetOnLastFrame(t *testing.T) {
	tests := []struct {
		fps      int
		duration float64
		target   geom.Vec3
	}{
		{30, 4, geom.V(31, 0, 0)},
		{30, 3, geom.V(0, 2, -0.55)},
		{24, 2.5, geom.V(-9.5, 1, 7)},
		{1, 1, geom.V(1, 1, 1)},
	}

	for _, tt := range tests {
		frames := int(float64(tt.fps) * tt.duration)
		got := LinearProgress(frames-1, tt.duration, tt.target, tt.fps, 0)
		assert.Equal(t, tt.target, got)
	}
}

func TestLinearProgress(t *testing.T) {
	target := geom.V(3, 0, 0)

	assert.InDelta(t, 3.0/90, LinearProgress(0, 3, target, 30, 0).X, 1e-12)
	assert.InDelta(t, 1.5, LinearProgress(44, 3, target, 30, 0).X, 1e-12)

	// Before the delay elapses the progress is negative
	delayed := LinearProgress(10, 3, target, 30, 3)
	assert.Less(t, delayed.X, 0.0)
	assert.InDelta(t, 3*(11.0-90)/90, delayed.X, 1e-12)

	// The delayed ramp completes on the last frame of its window
	assert.InDelta(t, 3.0, LinearProgress(179, 3, target, 30, 3).X, 1e-12)
}

func TestAngularProgress(t *testing.T) {
	for _, total := range []float64{0.5, 2, -1, 10} {
		for _, frames := range []float64{1, 90, 120} {
			assert.Equal(t, 0.0, AngularProgress(total, frames, 0))
		}
	}

	assert.InDelta(t, 2*math.Pi, AngularProgress(2, 120, 120), 1e-12)
	assert.InDelta(t, math.Pi/4, AngularProgress(0.5, 90, 45), 1e-12)
}

func TestFade(t *testing.T) {
	const fps = 30
	const duration = 6.0
	total := int(fps * duration)

	prev := 1.0
	for step := 0; step < total; step++ {
		f := Fade(step, duration, fps, 0)
		assert.GreaterOrEqual(t, f, 0.0, "step %d", step)
		assert.LessOrEqual(t, f, prev, "step %d", step)
		prev = f
	}
	assert.Equal(t, 0.0, Fade(total-1, duration, fps, 0))

	// Clamped past the end of the ramp and before its start
	assert.Equal(t, 0.0, Fade(total+20, duration, fps, 0))
	assert.Equal(t, 1.0, Fade(0, duration, fps, 2))
}

func TestFadeMatchesShiftedNegativeRamp(t *testing.T) {
	for step := 0; step < 180; step++ {
		shifted := LinearProgress(step, 6, geom.V(-1, -1, -1), 30, 0).Add(geom.V(1, 1, 1))
		c := FadeColor(step, 6, 30, 0)
		assert.InDelta(t, shifted.X, c.R, 1e-12)
		assert.InDelta(t, shifted.Y, c.G, 1e-12)
		assert.InDelta(t, shifted.Z, c.B, 1e-12)
	}
}
