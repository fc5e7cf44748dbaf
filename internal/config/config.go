package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/aconitase/internal/timeline"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is the full set of render settings. Flags override values read
// from a YAML file, which override Default.
type Config struct {
	FPS         int    `yaml:"fps"`
	SceneEnds   []int  `yaml:"scene_ends"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Supersample int    `yaml:"supersample"`
	Workers     int    `yaml:"workers"`
	FrameFrom   int    `yaml:"from"`
	FrameTo     int    `yaml:"to"` // -1 renders through the last frame
	Clamp       bool   `yaml:"clamp"`
	Citrate     string `yaml:"citrate"`    // PDB path, empty for the embedded structure
	Isocitrate  string `yaml:"isocitrate"` // PDB path, empty for the embedded structure
	FramesDir   string `yaml:"frames_dir"`
	OutputVideo string `yaml:"output"`
	NoVideo     bool   `yaml:"no_video"`
	DumpPath    string `yaml:"dump"`
	Debug       bool   `yaml:"debug"`

	VideoEncoder string `yaml:"-"`
	Quality      int    `yaml:"quality"`
	ShowStats    bool   `yaml:"stats"`
	BuildVersion string `yaml:"-"`
}

// Default returns the reference animation: six scenes at 30 FPS
func Default() *Config {
	return &Config{
		FPS:         30,
		SceneEnds:   []int{120, 240, 420, 690, 870, 1050},
		Width:       640,
		Height:      360,
		Supersample: 2,
		Workers:     0,
		FrameFrom:   0,
		FrameTo:     -1,
		FramesDir:   "output/frames",
		OutputVideo: "",
		Quality:     0,
	}
}

// Load reads a YAML file over the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings that cannot render. Timeline problems are
// reported here, before any frame is dispatched.
func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	}
	if err := timeline.Validate(c.SceneEnds); err != nil {
		return fmt.Errorf("%w: scene_ends %v: %w", ErrInvalid, c.SceneEnds, err)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("%w: size %dx%d must be even for yuv420p", ErrInvalid, c.Width, c.Height)
	}
	if c.Supersample < 1 {
		return fmt.Errorf("%w: supersample %d", ErrInvalid, c.Supersample)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	if c.FrameFrom < 0 {
		return fmt.Errorf("%w: from %d", ErrInvalid, c.FrameFrom)
	}
	if c.FrameTo >= 0 && c.FrameTo < c.FrameFrom {
		return fmt.Errorf("%w: to %d before from %d", ErrInvalid, c.FrameTo, c.FrameFrom)
	}
	return nil
}

// LastFrame resolves FrameTo against the timeline
func (c *Config) LastFrame() int {
	if c.FrameTo < 0 {
		return c.SceneEnds[len(c.SceneEnds)-1]
	}
	return c.FrameTo
}
