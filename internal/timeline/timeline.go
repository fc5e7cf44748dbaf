// Package timeline turns an ordered list of scene end frames into start
// frames and durations.
package timeline

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty         = errors.New("timeline has no scenes")
	ErrNotIncreasing = errors.New("scene end frames are not strictly increasing")
	ErrZeroDuration  = errors.New("scene has zero duration")
	ErrFPS           = errors.New("frame rate must be positive")
)

// Timeline holds the derived per-scene frame ranges. Scene i covers local
// steps relative to Start[i] and ends on End[i].
type Timeline struct {
	End    []int
	Start  []int
	Frames []int // Duration of each scene in frames
	FPS    int
}

// Validate checks that ends describe at least one scene of positive length
// and that end frames strictly increase.
func Validate(ends []int) error {
	if len(ends) == 0 {
		return ErrEmpty
	}
	if ends[0] <= 0 {
		return fmt.Errorf("scene 1 ends on frame %d: %w", ends[0], ErrZeroDuration)
	}
	for i := 1; i < len(ends); i++ {
		if ends[i] == ends[i-1] {
			return fmt.Errorf("scene %d ends on frame %d like scene %d: %w", i+1, ends[i], i, ErrZeroDuration)
		}
		if ends[i] < ends[i-1] {
			return fmt.Errorf("scene %d ends on frame %d before frame %d: %w", i+1, ends[i], ends[i-1], ErrNotIncreasing)
		}
	}
	return nil
}

// Plan derives start frames and frame durations from end frames.
// start[0] is 0 and start[i] is ends[i-1].
func Plan(ends []int) (start, frames []int, err error) {
	if err := Validate(ends); err != nil {
		return nil, nil, err
	}

	start = make([]int, len(ends))
	frames = make([]int, len(ends))
	point := 0
	for i, end := range ends {
		start[i] = point
		frames[i] = end - point
		point = end
	}
	return start, frames, nil
}

// New validates and plans a timeline rendered at fps frames per second
func New(ends []int, fps int) (*Timeline, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("%d: %w", fps, ErrFPS)
	}
	start, frames, err := Plan(ends)
	if err != nil {
		return nil, err
	}
	end := make([]int, len(ends))
	copy(end, ends)
	return &Timeline{End: end, Start: start, Frames: frames, FPS: fps}, nil
}

// Len returns the number of scenes
func (t *Timeline) Len() int {
	return len(t.End)
}

// Seconds returns the duration of scene i in seconds
func (t *Timeline) Seconds(i int) float64 {
	return float64(t.Frames[i]) / float64(t.FPS)
}

// LastFrame is the final frame index covered by the timeline
func (t *Timeline) LastFrame() int {
	return t.End[len(t.End)-1]
}

// TotalSeconds is the length of the whole animation
func (t *Timeline) TotalSeconds() float64 {
	return float64(t.LastFrame()) / float64(t.FPS)
}

// TotalFrames counts the frames a full render produces. Frame 0 belongs to
// the first scene, so it is one more than LastFrame.
func (t *Timeline) TotalFrames() int {
	return t.LastFrame() + 1
}
