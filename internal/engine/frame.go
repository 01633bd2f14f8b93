package engine

import "github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"

// SetWorldPosition moves the camera. World-mode layers and world-space
// sprites follow it on the next scanline drawn.
func (e *Engine) SetWorldPosition(x, y int) {
	e.world.x, e.world.y = x, y
	e.world.dirty = true
	e.lastErr = ErrOK
}

// WorldPosition returns the camera position.
func (e *Engine) WorldPosition() (x, y int) { return e.world.x, e.world.y }

// BeginFrame advances every animation to time t, clears the sprite
// collision flags and rewinds to the first scanline.
func (e *Engine) BeginFrame(t int) {
	e.time = t
	e.running.each(func(i int) { e.anims[i].Advance(t) })
	e.active.each(func(i int) {
		e.sprites[i].anim.Advance(t)
		e.sprites[i].collision = false
	})
	for i := range e.layers {
		l := &e.layers[i]
		if !l.ok || l.tilemap == nil {
			continue
		}
		for j := range l.tileAnims {
			l.tileAnims[j].Advance(t)
		}
	}
	e.line = 0
	e.frame++
}

// UpdateFrame renders a whole frame for time t: the frame callback runs
// first, then every scanline in order.
func (e *Engine) UpdateFrame(t int) {
	if e.onFrame != nil {
		e.onFrame(e.frame)
	}
	e.BeginFrame(t)
	for e.DrawNextScanline() {
	}
}

// Time returns the time passed to the last BeginFrame.
func (e *Engine) Time() int { return e.time }

// TileInfo describes the tile under a layer pixel.
type TileInfo struct {
	Index   int
	Flags   gfx.Flags
	Row     int
	Col     int
	XOffset int // pixel inside the tile
	YOffset int
	Color   uint8 // palette index at the pixel, 0 when empty
	Type    uint8
	Empty   bool
}

// GetLayerTile returns the tile of layer n's tilemap at layer pixel (x, y).
// Coordinates wrap like the renderer does.
func (e *Engine) GetLayerTile(n, x, y int) (TileInfo, error) {
	l, err := e.layer("GetLayerTile", n)
	if err != nil {
		return TileInfo{}, err
	}
	if l.tilemap == nil {
		return TileInfo{}, e.fail("GetLayerTile", n, ErrRefTilemap)
	}
	tm := l.tilemap
	ts := tm.Tileset(0)
	x, y = wrap(x, l.width), wrap(y, l.height)
	ti := TileInfo{
		Row:     y >> ts.VShift(),
		Col:     x >> ts.HShift(),
		XOffset: x & ts.HMask(),
		YOffset: y & ts.VMask(),
	}
	t := tm.Tiles()[ti.Row*tm.Cols()+ti.Col]
	ti.Index, ti.Flags, ti.Empty = t.Index(), t.Flags(), t.Empty()
	if !t.Empty() {
		ts2 := tm.Tileset(t.TilesetIndex())
		tw, th := ts2.Width(), ts2.Height()
		sx, sy := flipPoint(transformFlags(t.Flags(), tw, th), ti.XOffset, ti.YOffset, tw, th)
		ti.Color = ts2.Pixel(ts2.Slot(t.Index()), sx, sy)
		ti.Type = ts2.Attributes(t.Index()).Type
	}
	return ti, e.ok()
}
