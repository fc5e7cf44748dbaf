package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ivlev/aconitase/internal/choreo"
	"github.com/ivlev/aconitase/internal/config"
	"github.com/ivlev/aconitase/internal/dispatch"
	"github.com/ivlev/aconitase/internal/engine"
	"github.com/ivlev/aconitase/internal/renderer"
	"github.com/ivlev/aconitase/internal/system"
	"github.com/ivlev/aconitase/internal/video"
)

var buildVersion = "dev"

func main() {
	system.InitResourceLimits()

	configPtr := flag.String("config", "", "YAML file with render settings (flags override it)")
	fromPtr := flag.Int("from", 0, "First frame to render")
	toPtr := flag.Int("to", -1, "Last frame to render (-1: end of the timeline)")
	framePtr := flag.Int("frame", -1, "Render a single frame (overrides -from/-to)")
	outputPtr := flag.String("output", "", "Video path (generated in output/ when empty)")
	framesDirPtr := flag.String("frames-dir", "", "Directory for frame_NNNNN.png files")
	widthPtr := flag.Int("width", 0, "Width")
	heightPtr := flag.Int("height", 0, "Height")
	workersPtr := flag.Int("workers", 0, "Frames rendered at once (0: physical cores)")
	clampPtr := flag.Bool("clamp", false, "Map frames past the end onto the last frame instead of failing")
	debugPtr := flag.Bool("debug", false, "Stamp frame, scene and step label plus a QR code on every frame")
	dumpPtr := flag.String("dump", "", "Write frame descriptors to this YAML file and skip rendering")
	noVideoPtr := flag.Bool("no-video", false, "Keep the PNG frames only")
	qualityPtr := flag.Int("quality", 0, "Video quality (0 - auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")
	statsPtr := flag.Bool("stats", false, "Print a performance report and append it to benchmark.log")

	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		var err error
		cfg, err = config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		fmt.Printf("[*] Config: %s\n", *configPtr)
	}

	// Only flags given on the command line override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "from":
			cfg.FrameFrom = *fromPtr
		case "to":
			cfg.FrameTo = *toPtr
		case "output":
			cfg.OutputVideo = *outputPtr
		case "frames-dir":
			cfg.FramesDir = *framesDirPtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "clamp":
			cfg.Clamp = *clampPtr
		case "debug":
			cfg.Debug = *debugPtr
		case "dump":
			cfg.DumpPath = *dumpPtr
		case "no-video":
			cfg.NoVideo = *noVideoPtr
		case "quality":
			cfg.Quality = *qualityPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		}
	})
	if *framePtr >= 0 {
		cfg.FrameFrom, cfg.FrameTo = *framePtr, *framePtr
		cfg.NoVideo = true
	}
	cfg.BuildVersion = buildVersion

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	if err := prepareOutput(cfg, time.Now()); err != nil {
		log.Fatalf("[-] Output directory error: %v", err)
	}

	encoderName, _ := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Hardware encoder found: %s\n", encoderName)
	}
	cfg.VideoEncoder = encoderName
	if cfg.Quality == 0 {
		cfg.Quality = system.DefaultQuality(encoderName)
	}

	cast, err := choreo.LoadCast(cfg.Citrate, cfg.Isocitrate)
	if err != nil {
		log.Fatalf("[-] Molecule error: %v", err)
	}

	var opts []dispatch.Option
	if cfg.Clamp {
		opts = append(opts, dispatch.WithClamp())
	}
	d, err := dispatch.Default(cast, cfg.FPS, cfg.SceneEnds, opts...)
	if err != nil {
		log.Fatalf("[-] Scene table error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := renderer.New(cfg.Width, cfg.Height, cfg.Supersample)
	ve := &video.FFmpegEncoder{}

	project := engine.NewRenderProject(cfg, d, r, ve)
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Render error: %v", err)
	}

	switch {
	case cfg.DumpPath != "":
	case cfg.NoVideo || cfg.OutputVideo == "":
		fmt.Printf("[+++] Done! Frames: %s\n", cfg.FramesDir)
	default:
		fmt.Printf("[+++] Done! Result: %s\n", cfg.OutputVideo)
	}
}

// prepareOutput names the video when none was given and creates its
// directory, so a bad path fails before any frame is rendered.
func prepareOutput(cfg *config.Config, now time.Time) error {
	if cfg.OutputVideo == "" && !cfg.NoVideo && cfg.DumpPath == "" {
		timestamp := now.Format("2006-01-02_15-04-05")
		cfg.OutputVideo = filepath.Join("output", fmt.Sprintf("aconitase_%s.mp4", timestamp))
	}
	if cfg.OutputVideo == "" || cfg.NoVideo {
		return nil
	}
	return os.MkdirAll(filepath.Dir(cfg.OutputVideo), 0755)
}
