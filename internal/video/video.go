package video

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// FramePattern is the printf pattern of frame files inside the frames directory
const FramePattern = "frame_%05d.png"

// Job describes one encode of a numbered PNG sequence
type Job struct {
	Pattern    string // path with a printf frame placeholder
	StartFrame int
	Count      int // frames to read, 0 reads until the sequence breaks
	FPS        int
	Output     string
	Encoder    string
	Quality    int
}

type VideoEncoder interface {
	Encode(ctx context.Context, job Job) error
}

// FFmpegEncoder muxes a PNG sequence into an H.264 MP4 with the ffmpeg binary
type FFmpegEncoder struct {
	Binary string // empty means "ffmpeg" from PATH
}

func (e *FFmpegEncoder) Encode(ctx context.Context, job Job) error {
	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, bin, BuildArgs(job)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, out.String())
	}
	return nil
}

// BuildArgs assembles the ffmpeg command line for a job
func BuildArgs(job Job) []string {
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", job.FPS),
		"-start_number", fmt.Sprintf("%d", job.StartFrame),
		"-i", job.Pattern,
	}
	// image2 keeps reading while consecutive files exist, which picks up
	// frames left in the directory by an earlier, longer run
	if job.Count > 0 {
		args = append(args, "-frames:v", fmt.Sprintf("%d", job.Count))
	}
	args = append(args, "-pix_fmt", "yuv420p", "-c:v", job.Encoder)
	args = append(args, QualityArgs(job.Encoder, job.Quality)...)
	args = append(args, "-movflags", "+faststart", job.Output)
	return args
}

// QualityArgs maps a single quality number onto each encoder's own knob
func QualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox does not take -q:v everywhere, use a bitrate instead
		bitrate := quality * 100 // kbit/s, 75 -> 7.5 Mbit/s
		return []string{"-b:v", fmt.Sprintf("%dk", bitrate)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}
