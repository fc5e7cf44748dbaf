package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/aconitase/internal/config"
	"github.com/ivlev/aconitase/internal/dispatch"
	"github.com/ivlev/aconitase/internal/overlay"
	"github.com/ivlev/aconitase/internal/scene"
	"github.com/ivlev/aconitase/internal/system"
	"github.com/ivlev/aconitase/internal/video"
)

// FrameRenderer turns a descriptor into pixels
type FrameRenderer interface {
	Render(ctx context.Context, d scene.Descriptor) (*image.RGBA, error)
}

// RenderProject renders a frame range of the animation to PNG files and
// optionally encodes them into a video.
type RenderProject struct {
	Config     *config.Config
	Dispatcher *dispatch.Dispatcher
	Renderer   FrameRenderer
	Encoder    video.VideoEncoder
	RunID      string

	overlay *overlay.Overlay
}

func NewRenderProject(cfg *config.Config, d *dispatch.Dispatcher, r FrameRenderer, ve video.VideoEncoder) *RenderProject {
	return &RenderProject{
		Config:     cfg,
		Dispatcher: d,
		Renderer:   r,
		Encoder:    ve,
		RunID:      uuid.New().String(),
	}
}

// FramePath is where frame n is written
func (p *RenderProject) FramePath(n int) string {
	return filepath.Join(p.Config.FramesDir, fmt.Sprintf(video.FramePattern, n))
}

// Range resolves the configured frame range and checks both ends against
// the dispatcher, so a bad range fails before anything is rendered.
func (p *RenderProject) Range() (first, last int, err error) {
	first, last = p.Config.FrameFrom, p.Config.LastFrame()
	if last < first {
		return 0, 0, fmt.Errorf("%w: to %d before from %d", config.ErrInvalid, last, first)
	}
	for _, f := range []int{first, last} {
		if _, _, err := p.Dispatcher.Locate(f); err != nil {
			return 0, 0, err
		}
	}
	return first, last, nil
}

func (p *RenderProject) Run(ctx context.Context) error {
	startTime := time.Now()

	first, last, err := p.Range()
	if err != nil {
		return err
	}
	frameCount := last - first + 1

	if p.Config.DumpPath != "" {
		return p.dump(first, last)
	}

	tl := p.Dispatcher.Timeline()
	fmt.Println("--- [PROJECT: ACONITASE] ---")
	fmt.Printf("[*] Run: %s\n", p.RunID)
	fmt.Printf("[*] Scenes: %d | Timeline: 0..%d (%.1fs)\n", tl.Len(), tl.LastFrame(), tl.TotalSeconds())
	fmt.Printf("[*] Frames: %d..%d | Resolution: %dx%d @ %d FPS | Supersample: %dx\n",
		first, last, p.Config.Width, p.Config.Height, p.Config.FPS, p.Config.Supersample)
	fmt.Println("-----------------------------")

	if err := os.MkdirAll(p.Config.FramesDir, 0755); err != nil {
		return fmt.Errorf("frames dir: %w", err)
	}

	if p.Config.Debug {
		p.overlay, err = overlay.New(p.RunID, p.Config.Height)
		if err != nil {
			return fmt.Errorf("debug overlay: %w", err)
		}
	}

	workers := p.Config.Workers
	if workers <= 0 {
		workers = system.DefaultWorkers()
	}
	if workers > frameCount {
		workers = frameCount
	}

	renderStart := time.Now()
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for frame := first; frame <= last; frame++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := p.renderFrame(gctx, frame); err != nil {
				return err
			}
			fmt.Printf("[>] Ready: %d/%d\n", done.Add(1), frameCount)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// errgroup only reports errors from its goroutines
	if err := ctx.Err(); err != nil {
		return err
	}
	renderTime := time.Since(renderStart)

	var encodeTime time.Duration
	if !p.Config.NoVideo {
		if p.Config.OutputVideo == "" || p.Encoder == nil {
			log.Printf("[!] No output video or encoder set, keeping frames only")
		} else {
			fmt.Println("[*] Encoding video...")
			encodeStart := time.Now()
			job := video.Job{
				Pattern:    filepath.Join(p.Config.FramesDir, video.FramePattern),
				StartFrame: first,
				Count:      frameCount,
				FPS:        p.Config.FPS,
				Output:     p.Config.OutputVideo,
				Encoder:    p.Config.VideoEncoder,
				Quality:    p.Config.Quality,
			}
			if job.Encoder == "" {
				job.Encoder = "libx264"
			}
			if job.Quality == 0 {
				job.Quality = system.DefaultQuality(job.Encoder)
			}
			if err := p.Encoder.Encode(ctx, job); err != nil {
				return fmt.Errorf("video encode: %w", err)
			}
			encodeTime = time.Since(encodeStart)
		}
	}

	if p.Config.ShowStats {
		p.report(frameCount, time.Since(startTime), renderTime, encodeTime)
	}
	return nil
}

func (p *RenderProject) renderFrame(ctx context.Context, frame int) error {
	desc, err := p.Dispatcher.Dispatch(frame)
	if err != nil {
		return err
	}

	img, err := p.Renderer.Render(ctx, desc)
	if err != nil {
		return fmt.Errorf("render frame %d: %w", frame, err)
	}

	if p.overlay != nil {
		if err := p.overlay.Apply(img, desc); err != nil {
			return err
		}
	}

	if err := writePNG(p.FramePath(frame), img); err != nil {
		return fmt.Errorf("write frame %d: %w", frame, err)
	}
	return nil
}

// dump writes the descriptors of the range instead of rendering them
func (p *RenderProject) dump(first, last int) error {
	fmt.Printf("[*] Writing descriptors %d..%d\n", first, last)

	d := &scene.Dump{
		Version: "1.0",
		FPS:     p.Config.FPS,
		Frames:  make([]scene.Descriptor, 0, last-first+1),
	}
	for frame := first; frame <= last; frame++ {
		desc, err := p.Dispatcher.Dispatch(frame)
		if err != nil {
			return err
		}
		d.Frames = append(d.Frames, desc)
	}

	if dir := filepath.Dir(p.Config.DumpPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := scene.WriteDump(d, p.Config.DumpPath); err != nil {
		return fmt.Errorf("descriptor dump: %w", err)
	}

	fmt.Printf("[+++] Descriptors written: %s\n", p.Config.DumpPath)
	return nil
}

func (p *RenderProject) report(frames int, total, render, encode time.Duration) {
	fps := float64(frames) / total.Seconds()
	host := system.ReadHostStats()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Run: %s\n"+
			"Frames: %d\n"+
			"Total Time: %.2fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Encoding: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"%s\n"+
			"----------------------------\n",
		p.Config.BuildVersion, p.RunID, frames, total.Seconds(), render.Seconds(), encode.Seconds(), fps, host,
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Run: %s | Frames: %d | Size: %dx%d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		p.RunID,
		frames,
		p.Config.Width, p.Config.Height,
		total.Seconds(),
		render.Seconds(),
		encode.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Could not write benchmark.log: %v\n", err)
	}
}

var encoder = png.Encoder{
	CompressionLevel: png.BestSpeed,
	BufferPool:       &pngPool{},
}

type pngPool struct{ p sync.Pool }

func (b *pngPool) Get() *png.EncoderBuffer {
	buf, _ := b.p.Get().(*png.EncoderBuffer)
	return buf
}

func (b *pngPool) Put(buf *png.EncoderBuffer) { b.p.Put(buf) }

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	w := bufio.NewWriter(f)
	if err := encoder.Encode(w, img); err != nil {
		return err
	}
	return w.Flush()
}
