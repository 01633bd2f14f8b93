package engine

import (
	"math"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"
)

// drawFunc renders screen columns [tx1, tx2) of one layer line into dst and
// reports whether any pixel went to the priority buffer instead.
type drawFunc func(e *Engine, l *Layer, dst []gfx.Color, blend *gfx.BlendTable, line, tx1, tx2 int) bool

// selectDraw picks the renderer for the layer's content and mode, or nil
// when the combination is not drawable.
func selectDraw(l *Layer) drawFunc {
	switch {
	case l.tilemap != nil:
		switch l.mode {
		case ModePlain:
			return drawTiled
		case ModeScaling:
			return drawTiledScaling
		case ModeAffine:
			return drawTiledAffine
		case ModePixelMap:
			return drawTiledPixelMap
		}
	case l.bitmap != nil:
		switch l.mode {
		case ModePlain:
			return drawBitmap
		case ModeScaling:
			return drawBitmapScaling
		case ModeAffine:
			return drawBitmapAffine
		case ModePixelMap:
			return drawBitmapPixelMap
		}
	case l.objects != nil:
		if l.mode == ModePlain {
			return drawObjects
		}
	}
	return nil
}

// wrap reduces v into [0, n).
func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// transformFlags resolves tile or object flags to a scan transform on a
// w x h source: rotation is dropped for non-square sources.
func transformFlags(f gfx.Flags, w, h int) gfx.Flags {
	f &= gfx.FlagsTransform
	if f&gfx.FlagRotate != 0 && w != h {
		f &^= gfx.FlagRotate
	}
	return f
}

// tilescan is the start position and step of one run through a source
// with the given row stride.
type tilescan struct {
	w, h       int
	srcx, srcy int
	dx         int
	stride     int
}

func (s *tilescan) flip(f gfx.Flags) {
	if f&gfx.FlagRotate != 0 {
		s.srcx, s.srcy = s.srcy, s.srcx
		s.dx *= s.stride
		if f&gfx.FlagFlipX != 0 {
			s.dx = -s.dx
			s.srcy = s.h - s.srcy - 1
		}
		if f&gfx.FlagFlipY != 0 {
			s.srcx = s.w - s.srcx - 1
		}
		return
	}
	if f&gfx.FlagFlipX != 0 {
		s.dx = -s.dx
		s.srcx = s.w - s.srcx - 1
	}
	if f&gfx.FlagFlipY != 0 {
		s.srcy = s.h - s.srcy - 1
	}
}

// flipPoint maps one pixel of a transformed w x h source.
func flipPoint(f gfx.Flags, x, y, w, h int) (int, int) {
	if f&gfx.FlagRotate != 0 {
		x, y = y, x
		if f&gfx.FlagFlipX != 0 {
			y = h - y - 1
		}
		if f&gfx.FlagFlipY != 0 {
			x = w - x - 1
		}
		return x, y
	}
	if f&gfx.FlagFlipX != 0 {
		x = w - x - 1
	}
	if f&gfx.FlagFlipY != 0 {
		y = h - y - 1
	}
	return x, y
}

// tilePalette resolves the palette of one tile: layer override, then the
// global slot the tile selects, then the tileset's own.
func (e *Engine) tilePalette(l *Layer, ts *gfx.Tileset, t gfx.Tile) []gfx.Color {
	if l.palette != nil {
		return l.palette.Entries()
	}
	if p := e.palettes[t.Palette()]; p != nil {
		return p.Entries()
	}
	return ts.Palette().Entries()
}

func (e *Engine) fillBackground(scan []gfx.Color, line int) {
	if bm := e.bg.bitmap; bm != nil && e.bg.palette != nil {
		if line < bm.Height() {
			n := min(len(scan), bm.Width())
			blitOpaque(bm.Row(line)[:n], e.bg.palette.Entries(), scan[:n])
		}
		return
	}
	if e.bg.color != 0 {
		blitColor(scan, e.bg.color, nil)
	}
}

// updateLayer re-derives the scroll of a world-mode layer when it or the
// world moved.
func (e *Engine) updateLayer(l *Layer) {
	if !e.world.dirty && !l.dirty {
		return
	}
	if l.worldMode {
		l.hstart = int(math.Floor(float64(e.world.x)*l.world.xfactor)) - l.world.offsetx
		l.vstart = int(math.Floor(float64(e.world.y)*l.world.yfactor)) - l.world.offsety
	}
	l.dirty = false
}

// drawLayerLine renders one layer line with its window and mosaic.
func (e *Engine) drawLayerLine(l *Layer, line int) bool {
	w := &l.window
	inside := line >= w.y1 && line < w.y2
	fw := e.width
	out := e.fbLine(line)

	// mosaic and transformed layers render into the line buffer first and
	// are blended onto the framebuffer in one pass
	scan, blend := out, l.blend
	build := false
	switch {
	case l.mosaic.h != 0:
		scan = nil
		if line%l.mosaic.h == 0 {
			scan, build = e.linebuf, true
		}
	case l.mode >= ModeAffine:
		scan = e.linebuf
	}

	prio := false
	switch {
	case build:
		clear(scan)
		// priority pixels of the block row are kept with the layer
		saved := e.priority
		e.priority = l.mosaic.prio
		clear(e.priority)
		l.mosaic.hasPrio = e.drawWindowRegion(l, scan, nil, line, inside)
		e.priority = saved
	case scan != nil:
		if l.mode >= ModeAffine {
			clear(scan)
			blend = nil
		}
		prio = e.drawWindowRegion(l, scan, blend, line, inside)
	}

	if build {
		clear(l.mosaic.buf)
		buildMosaic(e.linebuf, l.mosaic.buf, l.mosaic.w)
		if l.mosaic.hasPrio {
			buildMosaic(l.mosaic.prio, l.mosaic.prio, l.mosaic.w)
		}
	}
	switch {
	case l.mosaic.h != 0:
		blitWindow(w, l.mosaic.buf, out, l.blend, inside)
		if l.mosaic.hasPrio {
			blitWindow(w, l.mosaic.prio, e.priority, nil, inside)
			prio = true
		}
	case l.mode >= ModeAffine:
		blitLine(e.linebuf, out, l.blend)
	}

	if w.color != 0 {
		switch {
		case !w.invert && inside:
			blitColor(out[:w.x1], w.color, w.blend)
			blitColor(out[w.x2:fw], w.color, w.blend)
		case !w.invert:
			blitColor(out, w.color, w.blend)
		case inside:
			blitColor(out[w.x1:w.x2], w.color, w.blend)
		}
	}
	return prio
}

// blitWindow copies a full-width line m onto dst where the window shows the
// layer.
func blitWindow(w *window, m, dst []gfx.Color, blend *gfx.BlendTable, inside bool) {
	switch {
	case !w.invert && inside:
		blitLine(m[w.x1:w.x2], dst[w.x1:w.x2], blend)
	case w.invert && inside:
		blitLine(m[:w.x1], dst[:w.x1], blend)
		blitLine(m[w.x2:], dst[w.x2:], blend)
	case w.invert:
		blitLine(m, dst, blend)
	}
}

func (e *Engine) drawWindowRegion(l *Layer, scan []gfx.Color, blend *gfx.BlendTable, line int, inside bool) bool {
	w := &l.window
	span := func(x1, x2 int) bool {
		if x1 >= x2 {
			return false
		}
		return l.draw(e, l, scan, blend, line, x1, x2)
	}
	switch {
	case !w.invert && inside:
		return span(w.x1, w.x2)
	case !w.invert:
		return false
	case inside:
		a := span(0, w.x1)
		b := span(w.x2, e.width)
		return a || b
	default:
		return span(0, e.width)
	}
}

func (e *Engine) drawRegularLayers(line int) bool {
	clear(e.priority)
	prio := false
	for c := len(e.layers) - 1; c >= 0; c-- {
		l := &e.layers[c]
		e.updateLayer(l)
		if l.ok && !l.priority {
			if e.drawLayerLine(l, line) {
				prio = true
			}
		}
	}
	return prio
}

func (e *Engine) drawPriorityLayers(line int) bool {
	prio := false
	for c := len(e.layers) - 1; c >= 0; c-- {
		l := &e.layers[c]
		if l.ok && l.priority && e.drawLayerLine(l, line) {
			prio = true
		}
	}
	return prio
}

func (e *Engine) overlayPriority(scan []gfx.Color) {
	for x, c := range e.priority {
		if c != 0 {
			scan[x] = c
		}
	}
}

func (e *Engine) drawBackgroundSprites(scan []gfx.Color, line int) {
	for i := e.active.first; i != -1; i = e.active.next[i] {
		s := &e.sprites[i]
		e.updateSpriteWorld(s)
		if s.flags&gfx.FlagBackground != 0 && e.spriteCovers(s, line) {
			e.drawSprite(i, scan, line)
		}
	}
}

func (e *Engine) drawRegularSprites(scan []gfx.Color, line int) bool {
	prio := false
	for i := e.active.first; i != -1; i = e.active.next[i] {
		s := &e.sprites[i]
		e.updateSpriteWorld(s)
		if s.flags&gfx.FlagBackground != 0 || !e.spriteCovers(s, line) {
			continue
		}
		if s.flags&gfx.FlagPriority != 0 {
			prio = true
			continue
		}
		e.drawSprite(i, scan, line)
	}
	return prio
}

func (e *Engine) drawPrioritySprites(scan []gfx.Color, line int) {
	for i := e.active.first; i != -1; i = e.active.next[i] {
		s := &e.sprites[i]
		if s.flags&gfx.FlagBackground == 0 && s.flags&gfx.FlagPriority != 0 && e.spriteCovers(s, line) {
			e.drawSprite(i, scan, line)
		}
	}
}

// DrawNextScanline renders the next line of the frame started with
// BeginFrame and reports whether more lines remain. Lines are produced in
// order; there is no random access.
func (e *Engine) DrawNextScanline() bool {
	if e.line >= e.height {
		return false
	}
	line := e.line
	scan := e.fbLine(line)

	if e.raster != nil {
		e.raster(line)
	}
	for x := range e.collision {
		e.collision[x] = -1
	}
	e.fillBackground(scan, line)
	e.drawBackgroundSprites(scan, line)

	layerPrio := e.drawRegularLayers(line)
	spritePrio := e.drawRegularSprites(scan, line)
	if e.drawPriorityLayers(line) {
		layerPrio = true
	}
	if layerPrio {
		e.overlayPriority(scan)
	}
	if spritePrio {
		e.drawPrioritySprites(scan, line)
	}

	e.world.dirty = false
	e.line++
	return e.line < e.height
}
