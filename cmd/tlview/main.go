package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/engine"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/scene"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/settings"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/ui"
)

type CLIFlags struct {
	Config  string // INI settings file
	Scale   int
	Title   string
	Mode    string
	Seed    uint64
	Width   int
	Height  int
	Verbose bool

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer CRC32 hex (e.g., "1a2b3c4d")
	Walk     bool   // hold Right while running headless
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.Config, "config", "", "INI settings file (created on first save)")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "tlview", "window title")
	flag.StringVar(&f.Mode, "mode", "plain", "front layer mode: plain, scaled, affine, pixelmap, mosaic")
	flag.Uint64Var(&f.Seed, "seed", 1, "world generation seed")
	flag.IntVar(&f.Width, "width", 320, "framebuffer width")
	flag.IntVar(&f.Height, "height", 240, "framebuffer height")
	flag.BoolVar(&f.Verbose, "v", false, "debug logging")

	// headless options
	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer CRC32 (hex)")
	flag.BoolVar(&f.Walk, "walk", false, "hold Right during headless frames")
	flag.Parse()
	return f
}

// settingsFor merges the INI file with flags given on the command line;
// explicit flags win.
func settingsFor(f CLIFlags) (settings.Config, error) {
	var cfg settings.Config
	if f.Config != "" {
		var err error
		if cfg, err = settings.LoadConfig(f.Config); err != nil {
			return cfg, err
		}
	}
	set := map[string]bool{}
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if f.Config == "" || set["scale"] {
		cfg.Scale = f.Scale
	}
	if f.Config == "" || set["title"] {
		cfg.Title = f.Title
	}
	if f.Config == "" || set["seed"] {
		cfg.Seed = f.Seed
	}
	if f.Config == "" || set["width"] {
		cfg.Width = f.Width
	}
	if f.Config == "" || set["height"] {
		cfg.Height = f.Height
	}
	if f.Config == "" || set["mode"] {
		m, err := scene.ParseMode(f.Mode)
		if err != nil {
			return cfg, err
		}
		cfg.Mode = m
	}
	cfg.Defaults()
	return cfg, nil
}

func runHeadless(w *scene.World, frames int, walk bool, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}
	w.SetButtons(scene.Buttons{Right: walk})

	start := time.Now()
	for i := 0; i < frames; i++ {
		w.StepFrame()
	}
	dur := time.Since(start)

	fb := w.Framebuffer()
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()

	log.Printf("headless: frames=%d mode=%s elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, w.Mode(), dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(w, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expectCRC != "" {
		// normalize expected hex (allow with/without 0x, upper/lowercase)
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(w *scene.World, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, w.Image())
}

func main() {
	f := parseFlags()

	level := slog.LevelInfo
	if f.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	engine.SetLogger(logger)

	cfg, err := settingsFor(f)
	if err != nil {
		log.Fatalf("settings: %v", err)
	}
	w, err := scene.New(scene.Config{
		Width:  cfg.Width,
		Height: cfg.Height,
		Seed:   cfg.Seed,
		Mode:   cfg.Mode,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("scene: %v", err)
	}
	for n, hidden := range cfg.Hidden {
		if hidden {
			if err := w.ToggleLayer(n); err != nil {
				log.Fatalf("layer %d: %v", n, err)
			}
		}
	}

	if f.Headless {
		if err := runHeadless(w, f.Frames, f.Walk, f.PNGOut, f.Expect); err != nil {
			log.Fatal(err)
		}
		return
	}

	app := ui.NewApp(cfg, f.Config, w, logger)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
