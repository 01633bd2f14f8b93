// Package scene is a procedurally generated side-scrolling world driven
// through the engine: parallax tilemaps, an object layer, a scaled sky
// bitmap, animated and colliding sprites, palette cycling and a raster
// gradient. It is what the viewer and the benchmarks render.
package scene

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"strings"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/engine"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"
	xdraw "golang.org/x/image/draw"
)

type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

// Mode is the transform applied to the front layer.
type Mode int

const (
	ModePlain Mode = iota
	ModeScaled
	ModeAffine
	ModePixelMap
	ModeMosaic
	numModes
)

var modeNames = [...]string{"plain", "scaled", "affine", "pixelmap", "mosaic"}

func (m Mode) String() string {
	if m >= 0 && m < numModes {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode accepts the names String returns.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown render mode %q (want one of %s)", s, strings.Join(modeNames[:], ", "))
}

// Modes lists every render mode in cycling order.
func Modes() []Mode {
	out := make([]Mode, numModes)
	for i := range out {
		out[i] = Mode(i)
	}
	return out
}

// Layers, front to back.
const (
	LayerFront = iota
	LayerObjects
	LayerClouds
	LayerSky
	NumLayers
)

const (
	sprPlayer = iota
	sprSun
	sprEnemy0
)

const (
	numEnemies = 3
	numSprites = sprEnemy0 + numEnemies
)

const (
	groundY    = 24 * tileSize // world y of the grass line
	walkSpeed  = 2
	runSpeed   = 4
	jumpSpeed  = -7
	gravity    = 1
	hudHeight  = 12
	cloudsWave = 3
)

// Config sizes the world's framebuffer.
type Config struct {
	Width  int
	Height int
	Seed   uint64
	Mode   Mode
	Logger *slog.Logger
}

func (c *Config) Defaults() {
	if c.Width <= 0 {
		c.Width = 320
	}
	if c.Height <= 0 {
		c.Height = 240
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Logger == nil {
		c.Logger = engine.Logger()
	}
}

type enemy struct {
	X, Y       int
	DX         int
	MinX, MaxX int
}

// state is everything a save state captures.
type state struct {
	Frame            int
	PlayerX, PlayerY int
	VY               int
	Facing           int
	CamX             int
	Enemies          []enemy
	Mode             Mode
	Hidden           [NumLayers]bool
	Hits             int
}

// World owns one engine and the assets it renders.
type World struct {
	cfg   Config
	log   *slog.Logger
	eng   *engine.Engine
	a     *assets
	st    state
	btn   Buttons
	prev  Buttons
	fb    []byte
	pmap  []engine.PixelMap
	baseY int
	walk  bool
	hit   bool
}

// New generates the world from cfg.Seed and configures every layer and
// sprite.
func New(cfg Config) (*World, error) {
	cfg.Defaults()
	a, err := buildAssets(cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("scene assets: %w", err)
	}
	eng, err := engine.New(engine.Config{
		Width:         cfg.Width,
		Height:        cfg.Height,
		NumLayers:     NumLayers,
		NumSprites:    numSprites,
		NumAnimations: 2,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("scene engine: %w", err)
	}
	w := &World{
		cfg:   cfg,
		log:   cfg.Logger,
		eng:   eng,
		a:     a,
		fb:    make([]byte, cfg.Width*cfg.Height*4),
		baseY: a.fg.Height() - cfg.Height,
	}
	w.st = state{
		PlayerX: cfg.Width / 2,
		PlayerY: groundY,
		Facing:  1,
		Mode:    cfg.Mode,
	}
	for i := 0; i < numEnemies; i++ {
		x := 120 + i*150
		w.st.Enemies = append(w.st.Enemies, enemy{X: x, Y: groundY, DX: 1 + i%2, MinX: x - 40, MaxX: x + 40})
	}
	w.buildPixelMap()
	if err := w.setup(); err != nil {
		return nil, err
	}
	if err := w.applyMode(); err != nil {
		return nil, err
	}
	w.log.Info("scene ready", "width", cfg.Width, "height", cfg.Height, "seed", cfg.Seed, "mode", cfg.Mode.String())
	return w, nil
}

func (w *World) setup() error {
	e, a := w.eng, w.a
	steps := []func() error{
		func() error { return e.SetBGColorFromTilemap(a.fg) },
		func() error { return e.SetGlobalPalette(1, a.night) },

		func() error { return e.SetLayerTilemap(LayerFront, a.fg) },
		func() error { return e.SetLayerParallaxFactor(LayerFront, 1, 1) },

		func() error { return e.SetLayerObjects(LayerObjects, a.objects) },
		func() error { return e.SetLayerParallaxFactor(LayerObjects, 1, 1) },

		func() error { return e.SetLayerTilemap(LayerClouds, a.clouds) },
		func() error { return e.SetLayerParallaxFactor(LayerClouds, 0.5, 0.25) },
		func() error { return e.SetLayerBlendMode(LayerClouds, gfx.BlendMix75) },
		func() error { return e.SetLayerColumnOffset(LayerClouds, w.cloudWave()) },

		func() error { return e.SetLayerBitmap(LayerSky, a.sky) },
		func() error { return e.SetLayerParallaxFactor(LayerSky, 0.25, 0) },
		func() error { return e.SetLayerWorldOffset(LayerSky, 0, 0) },
		func() error {
			return e.SetLayerScaling(LayerSky, 4, float64(w.cfg.Height)/float64(a.sky.Height()))
		},
		func() error { return e.SetLayerBlendMode(LayerSky, gfx.BlendMix50) },

		func() error { return e.ConfigSprite(sprPlayer, a.sprites, gfx.FlagNone) },
		func() error { return e.SetSpritePivot(sprPlayer, 0.5, 1) },
		func() error { return e.EnableSpriteCollision(sprPlayer, true) },

		func() error { return e.ConfigSprite(sprSun, a.sprites, gfx.FlagBackground) },
		func() error { return e.SetSpritePicture(sprSun, picSun) },
		func() error { return e.SetSpriteScaling(sprSun, 2, 2) },
		func() error { return e.SetSpritePosition(sprSun, w.cfg.Width-48, hudHeight+8) },

		func() error { return e.SetPaletteAnimation(0, a.pal, a.seqs.Find("water"), true) },
	}
	for i := 0; i < numEnemies; i++ {
		n := sprEnemy0 + i
		steps = append(steps,
			func() error { return e.ConfigSprite(n, a.sprites, gfx.FlagNone) },
			func() error { return e.SetSpritePictureByName(n, "enemy") },
			func() error { return e.SetSpritePivot(n, 0.5, 1) },
			func() error { return e.EnableSpriteCollision(n, true) },
			func() error { return e.EnableSpriteMasking(n, true) },
		)
	}
	for i, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("scene setup step %d: %w", i, err)
		}
	}
	e.SetSpritesMaskRegion(0, hudHeight-1)
	e.SetRasterCallback(w.raster)
	e.SetFrameCallback(func(frame int) {
		if frame > 0 && frame%600 == 0 {
			w.log.Debug("frame", "n", frame, "hits", w.st.Hits, "mode", w.st.Mode.String())
		}
	})
	w.placeSprites()
	return nil
}

func (w *World) cloudWave() []int {
	cols := w.cfg.Width/tileSize + 2
	off := make([]int, cols)
	for i := range off {
		off[i] = int(math.Round(cloudsWave * math.Sin(float64(i)/3)))
	}
	return off
}

// buildPixelMap makes a horizontal heat-haze ripple.
func (w *World) buildPixelMap() {
	width, height := w.cfg.Width, w.cfg.Height
	w.pmap = make([]engine.PixelMap, width*height)
	for y := 0; y < height; y++ {
		dx := int(math.Round(3 * math.Sin(float64(y)/6)))
		for x := 0; x < width; x++ {
			w.pmap[y*width+x] = engine.PixelMap{DX: int16(x + dx), DY: int16(y)}
		}
	}
}

// raster paints the sky gradient and a dark status band at the top.
func (w *World) raster(line int) {
	if line < hudHeight {
		w.eng.SetBGColor(gfx.RGB(16, 16, 32))
		return
	}
	t := line * 255 / max(w.cfg.Height-1, 1)
	w.eng.SetBGColor(gfx.RGB(uint8(60+t/4), uint8(120+t/3), uint8(230-t/5)))
}

func (w *World) applyMode() error {
	e := w.eng
	if err := e.DisableLayerMosaic(LayerFront); err != nil {
		return err
	}
	switch w.st.Mode {
	case ModePlain:
		return e.ResetLayerMode(LayerFront)
	case ModeScaled:
		return e.SetLayerScaling(LayerFront, 1.5, 1.5)
	case ModeAffine:
		return w.rotate()
	case ModePixelMap:
		return e.SetLayerPixelMapping(LayerFront, w.pmap)
	case ModeMosaic:
		if err := e.ResetLayerMode(LayerFront); err != nil {
			return err
		}
		return e.SetLayerMosaic(LayerFront, 4, 4)
	}
	return fmt.Errorf("render mode %v: %w", w.st.Mode, engine.ErrUnsupported)
}

// rotate sways the front layer around the screen center.
func (w *World) rotate() error {
	angle := 6 * math.Sin(float64(w.st.Frame)/40)
	cx, cy := float64(w.cfg.Width)/2, float64(w.cfg.Height)/2
	return w.eng.SetLayerAffineTransform(LayerFront, angle, cx, cy, 1, 1)
}

// SetMode switches the front layer's transform.
func (w *World) SetMode(m Mode) error {
	if m < 0 || m >= numModes {
		return fmt.Errorf("render mode %d: %w", int(m), engine.ErrUnsupported)
	}
	w.st.Mode = m
	return w.applyMode()
}

func (w *World) Mode() Mode { return w.st.Mode }

// NextMode cycles to the following render mode.
func (w *World) NextMode() error { return w.SetMode((w.st.Mode + 1) % numModes) }

// ToggleLayer shows or hides layer n.
func (w *World) ToggleLayer(n int) error {
	if n < 0 || n >= NumLayers {
		return fmt.Errorf("layer %d: %w", n, engine.ErrIdxLayer)
	}
	w.st.Hidden[n] = !w.st.Hidden[n]
	return w.applyVisibility(n)
}

func (w *World) applyVisibility(n int) error {
	if w.st.Hidden[n] {
		return w.eng.DisableLayer(n)
	}
	return w.eng.EnableLayer(n)
}

// LayerVisible reports whether layer n is drawn.
func (w *World) LayerVisible(n int) bool { return n >= 0 && n < NumLayers && !w.st.Hidden[n] }

func (w *World) SetButtons(b Buttons) { w.btn = b }

// StepFrame advances the simulation one frame and renders it.
func (w *World) StepFrame() {
	w.update()
	w.eng.UpdateFrame(w.st.Frame)
	w.eng.CopyRGBA(w.fb)
	w.st.Frame++
}

func (w *World) update() {
	b, prev := w.btn, w.prev
	w.prev = b
	if b.Start && !prev.Start {
		if err := w.NextMode(); err != nil {
			w.log.Warn("mode switch", "err", err)
		}
	}
	if b.Select && !prev.Select {
		_ = w.ToggleLayer(LayerClouds)
	}

	p := &w.st
	speed := walkSpeed
	if b.B {
		speed = runSpeed
	}
	dx := 0
	if b.Left {
		dx -= speed
	}
	if b.Right {
		dx += speed
	}
	if dx != 0 {
		p.Facing = 1
		if dx < 0 {
			p.Facing = -1
		}
	}
	mapW := w.a.fg.Width()
	p.PlayerX = min(max(p.PlayerX+dx, 8), mapW-8)

	if b.A && !prev.A && p.PlayerY == groundY {
		p.VY = jumpSpeed
	}
	p.PlayerY += p.VY
	if p.PlayerY >= groundY {
		p.PlayerY, p.VY = groundY, 0
	} else {
		p.VY += gravity
	}

	for i := range p.Enemies {
		en := &p.Enemies[i]
		en.X += en.DX
		if en.X < en.MinX || en.X > en.MaxX {
			en.DX = -en.DX
			en.X += 2 * en.DX
		}
	}

	p.CamX = min(max(p.PlayerX-w.cfg.Width/2, 0), max(mapW-w.cfg.Width, 0))
	w.eng.SetWorldPosition(p.CamX, w.baseY)

	if p.Mode == ModeAffine {
		if err := w.rotate(); err != nil {
			w.log.Warn("rotate", "err", err)
		}
	}

	walking := dx != 0 && p.PlayerY == groundY
	if walking != w.walk {
		w.walk = walking
		if walking {
			_ = w.eng.SetSpriteAnimation(sprPlayer, w.a.seqs.Find("walk"), 0)
		} else {
			_ = w.eng.DisableSpriteAnimation(sprPlayer)
			_ = w.eng.SetSpritePicture(sprPlayer, picPlayer0)
		}
	}

	// collision flags describe the frame drawn last
	hit := w.eng.SpriteCollision(sprPlayer)
	if hit && !w.hit {
		p.Hits++
		_ = w.eng.SetSpritePalette(sprPlayer, w.a.hit)
	} else if !hit && w.hit {
		_ = w.eng.SetSpritePalette(sprPlayer, nil)
	}
	w.hit = hit

	w.placeSprites()
}

func (w *World) placeSprites() {
	e, p := w.eng, &w.st
	_ = e.EnableSpriteFlag(sprPlayer, gfx.FlagFlipX, p.Facing < 0)
	_ = e.SetSpriteWorldPosition(sprPlayer, p.PlayerX, p.PlayerY)
	for i, en := range p.Enemies {
		n := sprEnemy0 + i
		_ = e.EnableSpriteFlag(n, gfx.FlagFlipX, en.DX < 0)
		_ = e.SetSpriteWorldPosition(n, en.X, en.Y)
	}
}

// Framebuffer returns the last frame as RGBA bytes.
func (w *World) Framebuffer() []byte { return w.fb }

func (w *World) Size() (int, int)       { return w.cfg.Width, w.cfg.Height }
func (w *World) Engine() *engine.Engine { return w.eng }
func (w *World) Frame() int             { return w.st.Frame }
func (w *World) Hits() int              { return w.st.Hits }

// PlayerPosition is the player's feet in world coordinates.
func (w *World) PlayerPosition() (x, y int) { return w.st.PlayerX, w.st.PlayerY }

// Image wraps a copy of the framebuffer.
func (w *World) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w.cfg.Width, w.cfg.Height))
	copy(img.Pix, w.fb)
	return img
}

// ScaledImage returns the framebuffer enlarged by an integer factor with
// nearest-neighbour sampling.
func (w *World) ScaledImage(scale int) *image.RGBA {
	src := w.Image()
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w.cfg.Width*scale, w.cfg.Height*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
