package engine

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/aconitase/internal/choreo"
	"github.com/ivlev/aconitase/internal/config"
	"github.com/ivlev/aconitase/internal/dispatch"
	"github.com/ivlev/aconitase/internal/renderer"
	"github.com/ivlev/aconitase/internal/scene"
	"github.com/ivlev/aconitase/internal/video"
)

type fakeEncoder struct {
	jobs []video.Job
	err  error
}

func (f *fakeEncoder) Encode(_ context.Context, job video.Job) error {
	f.jobs = append(f.jobs, job)
	return f.err
}

// flatRenderer skips tracing and records which descriptors it saw
type flatRenderer struct {
	mu   sync.Mutex
	seen []int
	fail int
}

func (f *flatRenderer) Render(_ context.Context, d scene.Descriptor) (*image.RGBA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.Frame == f.fail {
		return nil, errors.New("boom")
	}
	f.seen = append(f.seen, d.Frame)
	return image.NewRGBA(image.Rect(0, 0, 4, 2)), nil
}

func testProject(t *testing.T, mutate func(*config.Config), r FrameRenderer, ve video.VideoEncoder) *RenderProject {
	t.Helper()
	cfg := config.Default()
	cfg.FramesDir = filepath.Join(t.TempDir(), "frames")
	cfg.Workers = 2
	mutate(cfg)
	require.NoError(t, cfg.Validate())

	cast, err := choreo.LoadCast(cfg.Citrate, cfg.Isocitrate)
	require.NoError(t, err)

	var opts []dispatch.Option
	if cfg.Clamp {
		opts = append(opts, dispatch.WithClamp())
	}
	d, err := dispatch.Default(cast, cfg.FPS, cfg.SceneEnds, opts...)
	require.NoError(t, err)

	return NewRenderProject(cfg, d, r, ve)
}

func TestRunRendersRange(t *testing.T) {
	r := &flatRenderer{fail: -1}
	ve := &fakeEncoder{}
	p := testProject(t, func(c *config.Config) {
		c.FrameFrom, c.FrameTo = 119, 123
		c.OutputVideo = filepath.Join(t.TempDir(), "out.mp4")
	}, r, ve)

	require.NoError(t, p.Run(context.Background()))

	assert.ElementsMatch(t, []int{119, 120, 121, 122, 123}, r.seen)
	for f := 119; f <= 123; f++ {
		assert.FileExists(t, p.FramePath(f))
	}
	assert.NoFileExists(t, p.FramePath(124))

	require.Len(t, ve.jobs, 1)
	job := ve.jobs[0]
	assert.Equal(t, 119, job.StartFrame)
	assert.Equal(t, 5, job.Count)
	assert.Equal(t, 30, job.FPS)
	assert.Equal(t, "libx264", job.Encoder)
	assert.Equal(t, 23, job.Quality)
	assert.Equal(t, filepath.Join(p.Config.FramesDir, "frame_%05d.png"), job.Pattern)
}

func TestRunNoVideo(t *testing.T) {
	ve := &fakeEncoder{}
	p := testProject(t, func(c *config.Config) {
		c.FrameFrom, c.FrameTo = 0, 0
		c.OutputVideo = "unused.mp4"
		c.NoVideo = true
	}, &flatRenderer{fail: -1}, ve)

	require.NoError(t, p.Run(context.Background()))
	assert.Empty(t, ve.jobs)
}

func TestRunFrameFailureAborts(t *testing.T) {
	ve := &fakeEncoder{}
	p := testProject(t, func(c *config.Config) {
		c.FrameFrom, c.FrameTo = 0, 10
		c.OutputVideo = "out.mp4"
	}, &flatRenderer{fail: 5}, ve)

	err := p.Run(context.Background())
	assert.ErrorContains(t, err, "render frame 5")
	assert.Empty(t, ve.jobs, "broken runs are never encoded")
}

func TestRunEncodeError(t *testing.T) {
	ve := &fakeEncoder{err: errors.New("no ffmpeg")}
	p := testProject(t, func(c *config.Config) {
		c.FrameFrom, c.FrameTo = 0, 1
		c.OutputVideo = "out.mp4"
	}, &flatRenderer{fail: -1}, ve)

	assert.ErrorContains(t, p.Run(context.Background()), "no ffmpeg")
}

func TestRunRejectsOutOfRange(t *testing.T) {
	r := &flatRenderer{fail: -1}
	p := testProject(t, func(c *config.Config) {
		c.FrameFrom, c.FrameTo = 1040, 1100
		c.NoVideo = true
	}, r, nil)

	err := p.Run(context.Background())
	assert.ErrorIs(t, err, dispatch.ErrFrameOutOfRange)
	assert.Empty(t, r.seen, "nothing rendered before the range is checked")
}

func TestRunClampsPastEnd(t *testing.T) {
	r := &flatRenderer{fail: -1}
	p := testProject(t, func(c *config.Config) {
		c.FrameFrom, c.FrameTo = 1050, 1052
		c.Clamp = true
		c.NoVideo = true
	}, r, nil)

	require.NoError(t, p.Run(context.Background()))
	assert.ElementsMatch(t, []int{1050, 1051, 1052}, r.seen)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := testProject(t, func(c *config.Config) {
		c.Width, c.Height, c.Supersample = 8, 6, 1
		c.FrameFrom, c.FrameTo = 0, 3
		c.NoVideo = true
	}, nil, nil)
	p.Renderer = renderer.New(8, 6, 1)

	assert.ErrorIs(t, p.Run(ctx), context.Canceled)
}

func TestRunRealRenderer(t *testing.T) {
	p := testProject(t, func(c *config.Config) {
		c.Width, c.Height, c.Supersample = 16, 10, 1
		c.FrameFrom, c.FrameTo = 600, 601
		c.NoVideo = true
		c.Debug = true
	}, nil, nil)
	p.Renderer = renderer.New(16, 10, 1)

	require.NoError(t, p.Run(context.Background()))

	f, err := os.Open(p.FramePath(600))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 10), img.Bounds())
}

func TestDump(t *testing.T) {
	r := &flatRenderer{fail: -1}
	path := filepath.Join(t.TempDir(), "dump", "frames.yaml")
	p := testProject(t, func(c *config.Config) {
		c.FrameFrom, c.FrameTo = 509, 512
		c.DumpPath = path
	}, r, nil)

	require.NoError(t, p.Run(context.Background()))
	assert.Empty(t, r.seen, "dump mode does not render")

	dump, err := scene.ReadDump(path)
	require.NoError(t, err)
	require.Len(t, dump.Frames, 4)
	assert.Equal(t, 30, dump.FPS)
	for i, d := range dump.Frames {
		assert.Equal(t, 509+i, d.Frame)
		assert.Equal(t, 4, d.Scene)
		assert.Equal(t, "switching", d.Name)
	}
	assert.Equal(t, 89, dump.Frames[0].Step)
	assert.Equal(t, 92, dump.Frames[3].Step)

	// Round trip keeps the geometry
	want, err := p.Dispatcher.Dispatch(511)
	require.NoError(t, err)
	assert.Equal(t, len(want.Spheres), len(dump.Frames[2].Spheres))
	assert.InDelta(t, want.Spheres[0].Center.X, dump.Frames[2].Spheres[0].Center.X, 1e-9)
}
