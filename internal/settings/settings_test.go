package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/scene"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "none.ini"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Title != "tlview" || c.Scale != 3 || c.Width != 320 || c.Height != 240 || c.Seed != 1 {
		t.Fatalf("defaults got %+v", c)
	}
	for n, hidden := range c.Hidden {
		if hidden {
			t.Fatalf("layer %d hidden by default", n)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tlview.ini")
	want := Config{Title: "demo", Scale: 2, Width: 256, Height: 192, Seed: 99, Mode: scene.ModeMosaic, Slot: 3, StateDir: "states"}
	want.Hidden[scene.LayerClouds] = true
	if err := want.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestLoadConfigBadMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ini")
	if err := os.WriteFile(path, []byte("[render]\nmode = sideways\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestConfigClampsSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slot.ini")
	if err := os.WriteFile(path, []byte("[RENDER]\nSlot = 9\nclouds = false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Slot != 0 || !c.Hidden[scene.LayerClouds] {
		t.Fatalf("got slot %d hidden %v", c.Slot, c.Hidden)
	}
}
