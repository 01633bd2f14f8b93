package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/scene"
)

type result struct {
	mode   scene.Mode
	frames int
	total  time.Duration
	worst  time.Duration
	p95    time.Duration
	crc    uint32
}

func parseModes(s string) ([]scene.Mode, error) {
	if s == "" || strings.EqualFold(s, "all") {
		return scene.Modes(), nil
	}
	var out []scene.Mode
	for _, name := range strings.Split(s, ",") {
		m, err := scene.ParseMode(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func main() {
	frames := flag.Int("frames", 600, "frames to render per mode")
	modesFlag := flag.String("modes", "all", "comma separated render modes, or 'all'")
	width := flag.Int("width", 400, "framebuffer width")
	height := flag.Int("height", 240, "framebuffer height")
	seed := flag.Uint64("seed", 1, "world generation seed")
	walk := flag.Bool("walk", true, "scroll the camera by holding Right")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout per mode (e.g. 30s); 0 disables")
	trace := flag.Bool("trace", false, "print every frame time")
	flag.Parse()

	modes, err := parseModes(*modesFlag)
	if err != nil {
		log.Fatal(err)
	}
	if *frames <= 0 {
		log.Fatal("-frames must be positive")
	}

	var results []result
	for _, m := range modes {
		w, err := scene.New(scene.Config{Width: *width, Height: *height, Seed: *seed, Mode: m})
		if err != nil {
			log.Fatalf("scene: %v", err)
		}
		w.SetButtons(scene.Buttons{Right: *walk})

		times := make([]time.Duration, 0, *frames)
		start := time.Now()
		var deadline time.Time
		if *timeout > 0 {
			deadline = start.Add(*timeout)
		}
		for i := 0; i < *frames; i++ {
			t0 := time.Now()
			w.StepFrame()
			d := time.Since(t0)
			times = append(times, d)
			if *trace {
				fmt.Printf("%s frame=%d t=%s\n", m, i, d)
			}
			if !deadline.IsZero() && time.Now().After(deadline) {
				fmt.Printf("\nTimeout in mode %s after %d frames (%s).\n", m, i+1, time.Since(start).Truncate(time.Millisecond))
				os.Exit(2)
			}
		}
		r := result{mode: m, frames: len(times), total: time.Since(start), crc: crc32.ChecksumIEEE(w.Framebuffer())}
		slices.Sort(times)
		r.worst = times[len(times)-1]
		r.p95 = times[len(times)*95/100]
		results = append(results, r)
	}

	fmt.Printf("%-9s %7s %10s %10s %10s %9s\n", "mode", "frames", "ms/frame", "p95", "worst", "crc32")
	for _, r := range results {
		avg := float64(r.total.Microseconds()) / 1000 / float64(r.frames)
		fmt.Printf("%-9s %7d %10.3f %10s %10s %08x\n", r.mode, r.frames, avg,
			r.p95.Truncate(time.Microsecond), r.worst.Truncate(time.Microsecond), r.crc)
	}
}
