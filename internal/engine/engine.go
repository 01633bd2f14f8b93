// Package engine is the scanline compositor: it owns the layer, sprite and
// animation pools and renders them into a framebuffer one line at a time.
//
// An Engine is not safe for concurrent use. Callers that mutate state from
// another goroutine must serialize against whole frames.
package engine

import (
	"log/slog"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/anim"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"
)

// Config sizes the framebuffer and the fixed pools.
type Config struct {
	Width         int
	Height        int
	NumLayers     int
	NumSprites    int
	NumAnimations int
	// Logger overrides the package logger for this engine.
	Logger *slog.Logger
}

// Defaults fills zero fields.
func (c *Config) Defaults() {
	if c.Width == 0 {
		c.Width = 400
	}
	if c.Height == 0 {
		c.Height = 240
	}
	if c.NumLayers == 0 {
		c.NumLayers = 4
	}
	if c.NumSprites == 0 {
		c.NumSprites = 64
	}
	if c.NumAnimations == 0 {
		c.NumAnimations = 32
	}
}

// NumPalettes is the number of global palette slots tiles can select.
const NumPalettes = 8

// Engine is one rendering context.
type Engine struct {
	log     *slog.Logger
	width   int
	height  int
	lastErr Error

	fb        []gfx.Color
	linebuf   []gfx.Color
	priority  []gfx.Color
	collision []int32

	layers  []Layer
	sprites []Sprite
	active  list // enabled sprites in draw order
	anims   []anim.Animation
	running list // enabled palette animations

	palettes [NumPalettes]*gfx.Palette

	bg struct {
		color   gfx.Color
		bitmap  *gfx.Bitmap
		palette *gfx.Palette
	}
	world struct {
		x, y  int
		dirty bool
	}
	mask struct{ top, bottom int }

	line    int
	frame   int
	time    int
	raster  func(line int)
	onFrame func(frame int)
}

// New allocates every pool up front; nothing is allocated per frame.
func New(cfg Config) (*Engine, error) {
	cfg.Defaults()
	if cfg.Width < 0 || cfg.Height < 0 || cfg.NumLayers < 0 || cfg.NumSprites < 0 || cfg.NumAnimations < 0 {
		return nil, ErrWrongSize
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	e := &Engine{
		log:       log,
		width:     cfg.Width,
		height:    cfg.Height,
		fb:        make([]gfx.Color, cfg.Width*cfg.Height),
		linebuf:   make([]gfx.Color, cfg.Width),
		priority:  make([]gfx.Color, cfg.Width),
		collision: make([]int32, cfg.Width),
		layers:    make([]Layer, cfg.NumLayers),
		sprites:   make([]Sprite, cfg.NumSprites),
		active:    newList(cfg.NumSprites),
		anims:     make([]anim.Animation, cfg.NumAnimations),
		running:   newList(cfg.NumAnimations),
	}
	for i := range e.layers {
		e.layers[i].reset(e.width, e.height)
	}
	for i := range e.sprites {
		e.sprites[i].reset()
	}
	e.mask.top, e.mask.bottom = -1, -1
	e.log.Info("engine created",
		slog.Int("width", e.width), slog.Int("height", e.height),
		slog.Int("layers", cfg.NumLayers), slog.Int("sprites", cfg.NumSprites),
		slog.Int("animations", cfg.NumAnimations))
	return e, nil
}

func (e *Engine) Width() int      { return e.width }
func (e *Engine) Height() int     { return e.height }
func (e *Engine) NumLayers() int  { return len(e.layers) }
func (e *Engine) NumSprites() int { return len(e.sprites) }

// Frame returns the number of frames begun so far.
func (e *Engine) Frame() int { return e.frame }

// Line returns the next scanline DrawNextScanline will produce.
func (e *Engine) Line() int { return e.line }

// Framebuffer exposes the packed RGBA output, row-major with no padding.
func (e *Engine) Framebuffer() []gfx.Color { return e.fb }

func (e *Engine) fbLine(line int) []gfx.Color { return e.fb[line*e.width : (line+1)*e.width] }

// CopyRGBA writes the framebuffer as 8-bit RGBA bytes into dst, which must
// hold Width*Height*4 bytes.
func (e *Engine) CopyRGBA(dst []byte) {
	for i, c := range e.fb {
		p := dst[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = c.R(), c.G(), c.B(), c.A()
	}
}

// SetBGColor fills every line with c before layers are drawn.
func (e *Engine) SetBGColor(c gfx.Color) {
	e.bg.color = c
	e.lastErr = ErrOK
}

// SetBGColorFromTilemap uses the background color a tilemap carries.
func (e *Engine) SetBGColorFromTilemap(tm *gfx.Tilemap) error {
	if !tm.Valid() {
		return e.fail("SetBGColorFromTilemap", 0, ErrRefTilemap)
	}
	e.bg.color = tm.BGColor()
	return e.ok()
}

// DisableBGColor stops the solid fill; lines keep their previous contents
// where nothing else draws.
func (e *Engine) DisableBGColor() {
	e.bg.color = 0
	e.lastErr = ErrOK
}

// SetBGBitmap draws bm behind everything, clipped to its own size. nil
// disables it.
func (e *Engine) SetBGBitmap(bm *gfx.Bitmap) error {
	if bm == nil {
		e.bg.bitmap, e.bg.palette = nil, nil
		return e.ok()
	}
	if !bm.Valid() {
		return e.fail("SetBGBitmap", 0, ErrRefBitmap)
	}
	e.bg.bitmap, e.bg.palette = bm, bm.Palette()
	return e.ok()
}

// SetBGPalette overrides the background bitmap's palette.
func (e *Engine) SetBGPalette(pal *gfx.Palette) error {
	if !pal.Valid() {
		return e.fail("SetBGPalette", 0, ErrRefPalette)
	}
	e.bg.palette = pal
	return e.ok()
}

// SetGlobalPalette fills one of the slots a tile's palette selector picks
// from. nil clears the slot.
func (e *Engine) SetGlobalPalette(i int, pal *gfx.Palette) error {
	if i < 0 || i >= NumPalettes {
		return e.fail("SetGlobalPalette", i, ErrIdxPalette)
	}
	if pal != nil && !pal.Valid() {
		return e.fail("SetGlobalPalette", i, ErrRefPalette)
	}
	e.palettes[i] = pal
	return e.ok()
}

// GlobalPalette returns slot i or nil.
func (e *Engine) GlobalPalette(i int) *gfx.Palette {
	if i < 0 || i >= NumPalettes {
		e.lastErr = ErrIdxPalette
		return nil
	}
	e.lastErr = ErrOK
	return e.palettes[i]
}

// SetRasterCallback installs a hook run before each scanline is drawn.
func (e *Engine) SetRasterCallback(fn func(line int)) { e.raster = fn }

// SetFrameCallback installs a hook UpdateFrame runs before each frame.
func (e *Engine) SetFrameCallback(fn func(frame int)) { e.onFrame = fn }

// SetSpritesMaskRegion hides masked sprites on lines top..bottom inclusive.
func (e *Engine) SetSpritesMaskRegion(top, bottom int) {
	e.mask.top, e.mask.bottom = top, bottom
	e.lastErr = ErrOK
}

// SetCustomBlendFunction installs fn behind gfx.BlendCustom and rebinds
// every layer and sprite using it.
func (e *Engine) SetCustomBlendFunction(fn func(src, dst uint8) uint8) {
	gfx.SetCustomBlendFunc(fn)
	t := gfx.Table(gfx.BlendCustom)
	for i := range e.layers {
		if e.layers[i].blendMode == gfx.BlendCustom {
			e.layers[i].blend = t
		}
		if e.layers[i].window.blendMode == gfx.BlendCustom {
			e.layers[i].window.blend = t
		}
	}
	for i := range e.sprites {
		if e.sprites[i].blendMode == gfx.BlendCustom {
			e.sprites[i].blend = t
		}
	}
	e.lastErr = ErrOK
}
