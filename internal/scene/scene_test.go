package scene

import (
	"bytes"
	"hash/crc32"
	"path/filepath"
	"testing"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/engine"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"
)

func newWorld(t *testing.T, seed uint64) *World {
	t.Helper()
	w, err := New(Config{Width: 160, Height: 120, Seed: seed})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func run(w *World, b Buttons, frames int) {
	w.SetButtons(b)
	for i := 0; i < frames; i++ {
		w.StepFrame()
	}
}

func TestDeterministicFrames(t *testing.T) {
	a, b := newWorld(t, 7), newWorld(t, 7)
	run(a, Buttons{Right: true}, 40)
	run(b, Buttons{Right: true}, 40)
	ca, cb := crc32.ChecksumIEEE(a.Framebuffer()), crc32.ChecksumIEEE(b.Framebuffer())
	if ca != cb {
		t.Fatalf("same seed rendered crc %08x and %08x", ca, cb)
	}
	if bytes.Equal(a.Framebuffer(), make([]byte, len(a.Framebuffer()))) {
		t.Fatalf("framebuffer is empty")
	}
}

func TestPlayerMovement(t *testing.T) {
	w := newWorld(t, 1)
	x0, y0 := w.PlayerPosition()
	if y0 != groundY {
		t.Fatalf("start y got %d want %d", y0, groundY)
	}
	run(w, Buttons{Right: true}, 10)
	if x, _ := w.PlayerPosition(); x != x0+10*walkSpeed {
		t.Fatalf("walk right got x=%d want %d", x, x0+10*walkSpeed)
	}
	run(w, Buttons{Left: true, B: true}, 5)
	if x, _ := w.PlayerPosition(); x != x0+10*walkSpeed-5*runSpeed {
		t.Fatalf("run left got x=%d want %d", x, x0+10*walkSpeed-5*runSpeed)
	}
	st, _ := w.Engine().SpriteState(sprPlayer)
	if st.Flags&gfx.FlagFlipX == 0 {
		t.Fatalf("player facing left should be flipped, flags %04x", st.Flags)
	}

	run(w, Buttons{A: true}, 1)
	if _, y := w.PlayerPosition(); y >= groundY {
		t.Fatalf("jump got y=%d want above %d", y, groundY)
	}
	run(w, Buttons{}, 30)
	if _, y := w.PlayerPosition(); y != groundY {
		t.Fatalf("landing got y=%d want %d", y, groundY)
	}
}

func TestCameraFollowsPlayer(t *testing.T) {
	w := newWorld(t, 1)
	run(w, Buttons{Right: true, B: true}, 20)
	x, _ := w.PlayerPosition()
	cx, cy := w.Engine().WorldPosition()
	if cx != x-80 {
		t.Fatalf("camera x got %d want %d", cx, x-80)
	}
	if cy != mapRows*tileSize-120 {
		t.Fatalf("camera y got %d want %d", cy, mapRows*tileSize-120)
	}
	// clamped at the right edge
	run(w, Buttons{Right: true, B: true}, 200)
	if cx, _ := w.Engine().WorldPosition(); cx != mapCols*tileSize-160 {
		t.Fatalf("camera clamp got %d want %d", cx, mapCols*tileSize-160)
	}
}

func TestModes(t *testing.T) {
	w := newWorld(t, 3)
	want := map[Mode]engine.Mode{
		ModePlain:    engine.ModePlain,
		ModeScaled:   engine.ModeScaling,
		ModeAffine:   engine.ModeAffine,
		ModePixelMap: engine.ModePixelMap,
		ModeMosaic:   engine.ModePlain,
	}
	for _, m := range Modes() {
		if err := w.SetMode(m); err != nil {
			t.Fatalf("SetMode(%v): %v", m, err)
		}
		w.StepFrame()
		if got := w.Engine().LayerMode(LayerFront); got != want[m] {
			t.Fatalf("%v: layer mode got %v want %v", m, got, want[m])
		}
	}
	if err := w.SetMode(numModes); err == nil {
		t.Fatalf("SetMode out of range should fail")
	}
}

func TestStartCyclesMode(t *testing.T) {
	w := newWorld(t, 1)
	run(w, Buttons{Start: true}, 3)
	if w.Mode() != ModeScaled {
		t.Fatalf("holding start got %v want %v", w.Mode(), ModeScaled)
	}
	run(w, Buttons{}, 1)
	run(w, Buttons{Start: true}, 1)
	if w.Mode() != ModeAffine {
		t.Fatalf("second press got %v want %v", w.Mode(), ModeAffine)
	}
}

func TestSelectTogglesClouds(t *testing.T) {
	w := newWorld(t, 1)
	run(w, Buttons{Select: true}, 2)
	if w.LayerVisible(LayerClouds) || w.Engine().LayerEnabled(LayerClouds) {
		t.Fatalf("clouds still visible after select")
	}
	run(w, Buttons{}, 1)
	run(w, Buttons{Select: true}, 1)
	if !w.Engine().LayerEnabled(LayerClouds) {
		t.Fatalf("clouds not restored")
	}
}

func TestStatusBandColor(t *testing.T) {
	w := newWorld(t, 1)
	for n := 0; n < NumLayers; n++ {
		if err := w.ToggleLayer(n); err != nil {
			t.Fatalf("ToggleLayer(%d): %v", n, err)
		}
	}
	w.StepFrame()
	fb := w.Framebuffer()
	if got := [4]byte(fb[0:4]); got != [4]byte{16, 16, 32, 255} {
		t.Fatalf("status band pixel got %v", got)
	}
	if err := w.ToggleLayer(NumLayers); err == nil {
		t.Fatalf("ToggleLayer out of range should fail")
	}
}

func TestSaveLoadState(t *testing.T) {
	w := newWorld(t, 5)
	run(w, Buttons{Right: true}, 25)
	if err := w.SetMode(ModePixelMap); err != nil {
		t.Fatal(err)
	}
	_ = w.ToggleLayer(LayerObjects)
	path := filepath.Join(t.TempDir(), "slot0.state")
	if err := w.SaveStateToFile(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	x, y := w.PlayerPosition()
	frame := w.Frame()

	r := newWorld(t, 5)
	if err := r.LoadStateFromFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if rx, ry := r.PlayerPosition(); rx != x || ry != y {
		t.Fatalf("player got (%d,%d) want (%d,%d)", rx, ry, x, y)
	}
	if r.Frame() != frame || r.Mode() != ModePixelMap || r.LayerVisible(LayerObjects) {
		t.Fatalf("restored frame=%d mode=%v objects=%v", r.Frame(), r.Mode(), r.LayerVisible(LayerObjects))
	}
	if r.Engine().LayerEnabled(LayerObjects) {
		t.Fatalf("hidden layer re-enabled on load")
	}

	other := newWorld(t, 6)
	if err := other.LoadState(w.SaveState()); err == nil {
		t.Fatalf("loading a state from another seed should fail")
	}
	if err := other.LoadState([]byte("junk")); err == nil {
		t.Fatalf("loading garbage should fail")
	}
}

func TestScaledImage(t *testing.T) {
	w := newWorld(t, 2)
	w.StepFrame()
	img := w.ScaledImage(3)
	if b := img.Bounds(); b.Dx() != 480 || b.Dy() != 360 {
		t.Fatalf("scaled bounds got %v", b)
	}
	src := w.Image()
	for _, p := range [][2]int{{0, 0}, {10, 50}, {159, 119}} {
		got, want := img.RGBAAt(p[0]*3+1, p[1]*3+1), src.RGBAAt(p[0], p[1])
		if got != want {
			t.Fatalf("pixel %v got %v want %v", p, got, want)
		}
	}
	if w.ScaledImage(1).Bounds().Dx() != 160 {
		t.Fatalf("scale 1 should keep size")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Fatalf("ParseMode(%q) got %v, %v", m.String(), got, err)
		}
	}
	if m, err := ParseMode("Mosaic"); err != nil || m != ModeMosaic {
		t.Fatalf("case-insensitive parse got %v, %v", m, err)
	}
	if _, err := ParseMode("sideways"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}
