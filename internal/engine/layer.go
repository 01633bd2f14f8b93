package engine

import (
	"math"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/anim"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"
)

// Mode is the transform a layer or sprite is drawn with.
type Mode int

const (
	ModePlain Mode = iota
	ModeScaling
	ModeAffine
	ModePixelMap
)

func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModeScaling:
		return "scaling"
	case ModeAffine:
		return "affine"
	case ModePixelMap:
		return "pixelmap"
	}
	return "unknown"
}

// PixelMap is one entry of a per-pixel mapping table: the layer pixel,
// relative to the layer scroll, shown at that screen position.
type PixelMap struct {
	DX, DY int16
}

type window struct {
	x1, y1, x2, y2 int // half-open
	invert         bool
	color          gfx.Color
	blendMode      gfx.BlendMode
	blend          *gfx.BlendTable
}

// Layer is one background plane. Exactly one content source is set.
type Layer struct {
	tilemap *gfx.Tilemap
	bitmap  *gfx.Bitmap
	objects *gfx.ObjectList
	palette *gfx.Palette
	width   int
	height  int
	ok      bool
	draw    drawFunc

	mode      Mode
	transform Matrix3
	xfactor   fix
	dx, dy    fix
	pixelMap  []PixelMap
	column    []int

	blendMode gfx.BlendMode
	blend     *gfx.BlendTable
	priority  bool

	worldMode bool
	world     struct {
		offsetx, offsety int
		xfactor, yfactor float64
	}
	dirty bool

	hstart, vstart int
	window         window
	mosaic         struct {
		w, h    int
		buf     []gfx.Color
		prio    []gfx.Color
		hasPrio bool
	}

	tileAnims []anim.Animation
}

func (l *Layer) reset(w, h int) {
	*l = Layer{transform: Identity()}
	l.world.xfactor, l.world.yfactor = 1, 1
	l.window = window{x2: w, y2: h}
}

func (e *Engine) layer(op string, n int) (*Layer, error) {
	if n < 0 || n >= len(e.layers) {
		return nil, e.fail(op, n, ErrIdxLayer)
	}
	return &e.layers[n], nil
}

// setContent swaps the content source, rejecting it when the current mode
// cannot draw it.
func (e *Engine) setContent(op string, n int, l *Layer, tm *gfx.Tilemap, bm *gfx.Bitmap, ol *gfx.ObjectList) error {
	next := *l
	next.tilemap, next.bitmap, next.objects = tm, bm, ol
	next.palette = nil
	next.draw = selectDraw(&next)
	if next.draw == nil {
		return e.fail(op, n, ErrUnsupported)
	}
	switch {
	case tm != nil:
		next.width, next.height = tm.Width(), tm.Height()
	case bm != nil:
		next.width, next.height = bm.Width(), bm.Height()
	default:
		next.width, next.height = max(ol.Width(), 1), max(ol.Height(), 1)
	}
	next.ok = true
	next.dirty = next.worldMode
	next.tileAnims = nil
	*l = next
	if tm != nil {
		e.startTileAnimations(l)
	}
	return e.ok()
}

// startTileAnimations runs the sequences attached to every tileset the
// layer's tilemap uses.
func (e *Engine) startTileAnimations(l *Layer) {
	for i := 0; i < gfx.MaxTilesets; i++ {
		ts := l.tilemap.Tileset(i)
		if ts == nil {
			continue
		}
		for _, seq := range ts.Sequences {
			var a anim.Animation
			if err := a.StartTileset(ts, seq); err != nil {
				e.log.Warn("tile animation skipped", "sequence", seq.Name, "err", err)
				continue
			}
			l.tileAnims = append(l.tileAnims, a)
		}
	}
}

// SetLayerTilemap shows tm on layer n and starts its tile animations.
func (e *Engine) SetLayerTilemap(n int, tm *gfx.Tilemap) error {
	l, err := e.layer("SetLayerTilemap", n)
	if err != nil {
		return err
	}
	if !tm.Valid() {
		return e.fail("SetLayerTilemap", n, ErrRefTilemap)
	}
	return e.setContent("SetLayerTilemap", n, l, tm, nil, nil)
}

// SetLayerBitmap shows a full bitmap on layer n.
func (e *Engine) SetLayerBitmap(n int, bm *gfx.Bitmap) error {
	l, err := e.layer("SetLayerBitmap", n)
	if err != nil {
		return err
	}
	if !bm.Valid() || !bm.Palette().Valid() {
		return e.fail("SetLayerBitmap", n, ErrRefBitmap)
	}
	return e.setContent("SetLayerBitmap", n, l, nil, bm, nil)
}

// SetLayerObjects shows the image objects of ol on layer n.
func (e *Engine) SetLayerObjects(n int, ol *gfx.ObjectList) error {
	l, err := e.layer("SetLayerObjects", n)
	if err != nil {
		return err
	}
	if !ol.Valid() {
		return e.fail("SetLayerObjects", n, ErrRefList)
	}
	return e.setContent("SetLayerObjects", n, l, nil, nil, ol)
}

// SetLayerPalette overrides the palette of every pixel on the layer. nil
// restores per-tile and per-bitmap palettes.
func (e *Engine) SetLayerPalette(n int, pal *gfx.Palette) error {
	l, err := e.layer("SetLayerPalette", n)
	if err != nil {
		return err
	}
	if pal != nil && !pal.Valid() {
		return e.fail("SetLayerPalette", n, ErrRefPalette)
	}
	l.palette = pal
	return e.ok()
}

// SetLayerPosition scrolls layer n so (x, y) of the layer is at the
// top-left of the screen. It leaves world mode.
func (e *Engine) SetLayerPosition(n, x, y int) error {
	l, err := e.layer("SetLayerPosition", n)
	if err != nil {
		return err
	}
	l.hstart, l.vstart = x, y
	l.worldMode = false
	l.dirty = false
	return e.ok()
}

// LayerPosition returns the current scroll of layer n.
func (e *Engine) LayerPosition(n int) (x, y int, err error) {
	l, err := e.layer("LayerPosition", n)
	if err != nil {
		return 0, 0, err
	}
	return l.hstart, l.vstart, e.ok()
}

// LayerWidth returns the content width of layer n in pixels, 0 if empty.
func (e *Engine) LayerWidth(n int) int {
	l, err := e.layer("LayerWidth", n)
	if err != nil {
		return 0
	}
	e.lastErr = ErrOK
	return l.width
}

// LayerHeight returns the content height of layer n in pixels, 0 if empty.
func (e *Engine) LayerHeight(n int) int {
	l, err := e.layer("LayerHeight", n)
	if err != nil {
		return 0
	}
	e.lastErr = ErrOK
	return l.height
}

func (e *Engine) setMode(op string, n int, l *Layer, apply func(*Layer), mode Mode) error {
	next := *l
	next.mode = mode
	apply(&next)
	if next.ok || next.tilemap != nil || next.bitmap != nil || next.objects != nil {
		next.draw = selectDraw(&next)
		if next.draw == nil {
			return e.fail(op, n, ErrUnsupported)
		}
	}
	*l = next
	return e.ok()
}

// SetLayerScaling draws layer n magnified by xf, yf (1 = native size).
func (e *Engine) SetLayerScaling(n int, xf, yf float64) error {
	l, err := e.layer("SetLayerScaling", n)
	if err != nil {
		return err
	}
	if xf <= 0 || yf <= 0 {
		return e.fail("SetLayerScaling", n, ErrWrongSize)
	}
	return e.setMode("SetLayerScaling", n, l, func(l *Layer) {
		l.xfactor = float2fix(xf)
		l.dx = float2fix(1 / xf)
		l.dy = float2fix(1 / yf)
	}, ModeScaling)
}

// SetLayerTransform maps each screen point through m into layer space.
func (e *Engine) SetLayerTransform(n int, m Matrix3) error {
	l, err := e.layer("SetLayerTransform", n)
	if err != nil {
		return err
	}
	return e.setMode("SetLayerTransform", n, l, func(l *Layer) { l.transform = m }, ModeAffine)
}

// SetLayerAffineTransform rotates by angle degrees around screen point
// (dx, dy) and scales by sx, sy.
func (e *Engine) SetLayerAffineTransform(n int, angle, dx, dy, sx, sy float64) error {
	if sx == 0 || sy == 0 {
		if _, err := e.layer("SetLayerAffineTransform", n); err != nil {
			return err
		}
		return e.fail("SetLayerAffineTransform", n, ErrWrongSize)
	}
	m := Translate(dx, dy).
		Mul(Scale(1/sx, 1/sy)).
		Mul(Rotate(-math.Mod(angle, 360))).
		Mul(Translate(-dx, -dy))
	return e.SetLayerTransform(n, m)
}

// SetLayerPixelMapping draws layer n through a Width*Height table of
// source offsets.
func (e *Engine) SetLayerPixelMapping(n int, table []PixelMap) error {
	l, err := e.layer("SetLayerPixelMapping", n)
	if err != nil {
		return err
	}
	if len(table) != e.width*e.height {
		return e.fail("SetLayerPixelMapping", n, ErrWrongSize)
	}
	return e.setMode("SetLayerPixelMapping", n, l, func(l *Layer) { l.pixelMap = table }, ModePixelMap)
}

// ResetLayerMode returns layer n to plain scrolling.
func (e *Engine) ResetLayerMode(n int) error {
	l, err := e.layer("ResetLayerMode", n)
	if err != nil {
		return err
	}
	return e.setMode("ResetLayerMode", n, l, func(l *Layer) {
		l.pixelMap = nil
		l.transform = Identity()
	}, ModePlain)
}

// LayerMode returns the transform mode of layer n.
func (e *Engine) LayerMode(n int) Mode {
	l, err := e.layer("LayerMode", n)
	if err != nil {
		return ModePlain
	}
	e.lastErr = ErrOK
	return l.mode
}

// SetLayerColumnOffset shifts each screen tile column vertically by
// offsets[col]. nil disables it.
func (e *Engine) SetLayerColumnOffset(n int, offsets []int) error {
	l, err := e.layer("SetLayerColumnOffset", n)
	if err != nil {
		return err
	}
	l.column = offsets
	return e.ok()
}

// SetLayerWindow clips layer n to [x1,x2)x[y1,y2) or, inverted, to
// everything outside it.
func (e *Engine) SetLayerWindow(n, x1, y1, x2, y2 int, invert bool) error {
	l, err := e.layer("SetLayerWindow", n)
	if err != nil {
		return err
	}
	x1, x2 = max(x1, 0), min(x2, e.width)
	if x2 < x1 || y2 < y1 {
		return e.fail("SetLayerWindow", n, ErrWrongSize)
	}
	l.window.x1, l.window.y1, l.window.x2, l.window.y2 = x1, y1, x2, y2
	l.window.invert = invert
	return e.ok()
}

// SetLayerWindowColor paints the clipped-out part of the window with c
// (0 leaves it untouched), blended with mode.
func (e *Engine) SetLayerWindowColor(n int, c gfx.Color, mode gfx.BlendMode) error {
	l, err := e.layer("SetLayerWindowColor", n)
	if err != nil {
		return err
	}
	l.window.color = c
	l.window.blendMode = mode
	l.window.blend = gfx.Table(mode)
	return e.ok()
}

// DisableLayerWindow makes the whole screen visible again.
func (e *Engine) DisableLayerWindow(n int) error {
	l, err := e.layer("DisableLayerWindow", n)
	if err != nil {
		return err
	}
	l.window = window{x2: e.width, y2: e.height}
	return e.ok()
}

// SetLayerMosaic pixelates layer n into w x h blocks.
func (e *Engine) SetLayerMosaic(n, w, h int) error {
	l, err := e.layer("SetLayerMosaic", n)
	if err != nil {
		return err
	}
	if w <= 0 || h <= 0 {
		return e.fail("SetLayerMosaic", n, ErrWrongSize)
	}
	l.mosaic.w, l.mosaic.h = w, h
	l.mosaic.hasPrio = false
	if l.mosaic.buf == nil {
		l.mosaic.buf = make([]gfx.Color, e.width)
		l.mosaic.prio = make([]gfx.Color, e.width)
	}
	return e.ok()
}

func (e *Engine) DisableLayerMosaic(n int) error {
	l, err := e.layer("DisableLayerMosaic", n)
	if err != nil {
		return err
	}
	l.mosaic.w, l.mosaic.h = 0, 0
	return e.ok()
}

// SetLayerBlendMode blends layer n onto what is below it.
func (e *Engine) SetLayerBlendMode(n int, mode gfx.BlendMode) error {
	l, err := e.layer("SetLayerBlendMode", n)
	if err != nil {
		return err
	}
	l.blendMode = mode
	l.blend = gfx.Table(mode)
	return e.ok()
}

// SetLayerPriority draws the whole layer above regular sprites.
func (e *Engine) SetLayerPriority(n int, enable bool) error {
	l, err := e.layer("SetLayerPriority", n)
	if err != nil {
		return err
	}
	l.priority = enable
	return e.ok()
}

// SetLayerParallaxFactor scrolls layer n with the world position scaled by
// x, y. It enters world mode.
func (e *Engine) SetLayerParallaxFactor(n int, x, y float64) error {
	l, err := e.layer("SetLayerParallaxFactor", n)
	if err != nil {
		return err
	}
	l.world.xfactor, l.world.yfactor = x, y
	l.worldMode = true
	l.dirty = true
	return e.ok()
}

// SetLayerWorldOffset subtracts (x, y) from the layer's world-derived
// scroll. It enters world mode.
func (e *Engine) SetLayerWorldOffset(n, x, y int) error {
	l, err := e.layer("SetLayerWorldOffset", n)
	if err != nil {
		return err
	}
	l.world.offsetx, l.world.offsety = x, y
	l.worldMode = true
	l.dirty = true
	return e.ok()
}

// EnableLayer re-enables a layer that still has content.
func (e *Engine) EnableLayer(n int) error {
	l, err := e.layer("EnableLayer", n)
	if err != nil {
		return err
	}
	if l.tilemap == nil && l.bitmap == nil && l.objects == nil {
		return e.fail("EnableLayer", n, ErrRefTilemap)
	}
	l.ok = true
	return e.ok()
}

// DisableLayer stops drawing layer n, keeping its configuration.
func (e *Engine) DisableLayer(n int) error {
	l, err := e.layer("DisableLayer", n)
	if err != nil {
		return err
	}
	l.ok = false
	return e.ok()
}

// LayerEnabled reports whether layer n is drawn.
func (e *Engine) LayerEnabled(n int) bool {
	l, err := e.layer("LayerEnabled", n)
	if err != nil {
		return false
	}
	e.lastErr = ErrOK
	return l.ok
}
