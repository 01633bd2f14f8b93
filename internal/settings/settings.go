// Package settings persists the viewer's window and render options as INI.
package settings

import (
	"fmt"
	"strconv"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/scene"
	"gopkg.in/ini.v1"
)

// NumSlots is the number of save state slots.
const NumSlots = 4

// Config contains window and render settings.
type Config struct {
	Title string // window title
	Scale int    // integer upscaling factor
	// Framebuffer size in pixels
	Width  int
	Height int
	Seed   uint64     // world generation seed
	Mode   scene.Mode // front layer transform
	Slot   int        // active save state slot, 0-based
	// Hidden layers by index (scene.LayerFront...)
	Hidden [scene.NumLayers]bool
	// Directory for save states and screenshots
	StateDir string
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "tlview"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
	if c.Width <= 0 {
		c.Width = 320
	}
	if c.Height <= 0 {
		c.Height = 240
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Slot < 0 || c.Slot >= NumSlots {
		c.Slot = 0
	}
	if c.StateDir == "" {
		c.StateDir = "."
	}
}

var layerKeys = [scene.NumLayers]string{"front", "objects", "clouds", "sky"}

// LoadConfig reads path into a Config. A missing file yields defaults.
func LoadConfig(path string) (Config, error) {
	var c Config
	f, err := ini.LoadSources(ini.LoadOptions{Loose: true, Insensitive: true}, path)
	if err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	win := f.Section("window")
	c.Title = win.Key("title").String()
	c.Scale = win.Key("scale").MustInt(0)
	c.StateDir = win.Key("state_dir").String()

	r := f.Section("render")
	c.Width = r.Key("width").MustInt(0)
	c.Height = r.Key("height").MustInt(0)
	c.Seed = r.Key("seed").MustUint64(0)
	c.Slot = r.Key("slot").MustInt(0)
	if s := r.Key("mode").String(); s != "" {
		if c.Mode, err = scene.ParseMode(s); err != nil {
			return c, fmt.Errorf("config %s: %w", path, err)
		}
	}
	for i, k := range layerKeys {
		c.Hidden[i] = !r.Key(k).MustBool(true)
	}
	c.Defaults()
	return c, nil
}

// Save writes the config as INI to path.
func (c *Config) Save(path string) error {
	f := ini.Empty()
	win := f.Section("window")
	win.Key("title").SetValue(c.Title)
	win.Key("scale").SetValue(strconv.Itoa(c.Scale))
	win.Key("state_dir").SetValue(c.StateDir)

	r := f.Section("render")
	r.Key("width").SetValue(strconv.Itoa(c.Width))
	r.Key("height").SetValue(strconv.Itoa(c.Height))
	r.Key("seed").SetValue(strconv.FormatUint(c.Seed, 10))
	r.Key("mode").SetValue(c.Mode.String())
	r.Key("slot").SetValue(strconv.Itoa(c.Slot))
	for i, k := range layerKeys {
		r.Key(k).SetValue(strconv.FormatBool(!c.Hidden[i]))
	}
	return f.SaveTo(path)
}
