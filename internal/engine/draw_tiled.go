package engine

import "github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"

func tilePriority(ts *gfx.Tileset, t gfx.Tile) bool {
	return t.Priority() || ts.Attributes(t.Index()).Priority
}

// drawTiled renders a tiled line in runs of whole tiles.
func drawTiled(e *Engine, l *Layer, dst []gfx.Color, blend *gfx.BlendTable, line, tx1, tx2 int) bool {
	tm := l.tilemap
	ts := tm.Tileset(0)
	tw, th := ts.Width(), ts.Height()
	cols, tiles := tm.Cols(), tm.Tiles()
	prio := false

	x := tx1
	xpos := wrap(l.hstart+x, l.width)
	xtile := xpos >> ts.HShift()
	srcx := xpos & ts.HMask()
	column := x >> ts.HShift()
	for x < tx2 {
		ypos := l.vstart + line
		if column < len(l.column) {
			ypos += l.column[column]
		}
		ypos = wrap(ypos, l.height)
		ytile := ypos >> ts.VShift()
		srcy := ypos & ts.VMask()

		width := min(tw-srcx, tx2-x)
		if t := tiles[ytile*cols+xtile]; !t.Empty() {
			ts2 := tm.Tileset(t.TilesetIndex())
			sc := tilescan{w: tw, h: th, srcx: srcx, srcy: srcy, dx: 1, stride: tw}
			if f := transformFlags(t.Flags(), tw, th); f != 0 {
				sc.flip(f)
			}
			target, b := dst, blend
			if tilePriority(ts2, t) {
				target, b = e.priority, nil
				prio = true
			}
			start := ts2.Offset(ts2.Slot(t.Index()), sc.srcx, sc.srcy)
			blit(ts2.Pix(), start, sc.dx, width, e.tilePalette(l, ts2, t), target[x:x+width], b)
		}

		x += width
		xtile = (xtile + 1) % cols
		srcx = 0
		column++
	}
	return prio
}

// drawTiledScaling renders a scaled tiled line. Each tile's on-screen
// width comes from a fixed-point accumulator so rounding never drifts
// across the line.
func drawTiledScaling(e *Engine, l *Layer, dst []gfx.Color, blend *gfx.BlendTable, line, tx1, tx2 int) bool {
	tm := l.tilemap
	ts := tm.Tileset(0)
	tw, th := ts.Width(), ts.Height()
	cols, tiles := tm.Cols(), tm.Tiles()
	prio := false

	x := tx1
	xpos := wrap(l.hstart+fix2int(fix(x)*l.dx), l.width)
	xtile := xpos >> ts.HShift()
	srcx := xpos & ts.HMask()
	fixX := int2fix(x)
	column := x >> ts.HShift()
	for x < tx2 {
		ypos := line
		if column < len(l.column) {
			ypos += l.column[column]
		}
		ypos = wrap(l.vstart+fix2int(fix(ypos)*l.dy), l.height)
		ytile := ypos >> ts.VShift()
		srcy := ypos & ts.VMask()

		tilewidth := tw - srcx
		step := int2fix(tilewidth)
		fixX += fix(tilewidth) * l.xfactor
		x1 := fix2int(fixX)
		if scaled := x1 - x; scaled > 0 {
			step /= fix(scaled)
		} else {
			step = 0
		}
		x1 = min(x1, tx2)
		width := x1 - x

		if t := tiles[ytile*cols+xtile]; width > 0 && !t.Empty() {
			ts2 := tm.Tileset(t.TilesetIndex())
			pos := int2fix(srcx)
			if t.FlipX() {
				pos = int2fix(tw-srcx) - 1
				step = -step
			}
			if t.FlipY() {
				srcy = th - srcy - 1
			}
			target, b := dst, blend
			if tilePriority(ts2, t) {
				target, b = e.priority, nil
				prio = true
			}
			base := ts2.Offset(ts2.Slot(t.Index()), 0, srcy)
			blitScaled(ts2.Pix(), base, pos, step, width, e.tilePalette(l, ts2, t), target[x:x1], b)
		}

		x = x1
		xtile = (xtile + 1) % cols
		srcx = 0
		column++
	}
	return prio
}

// plotTile draws the layer pixel (px, py) at screen column x.
func (e *Engine) plotTile(l *Layer, dst []gfx.Color, blend *gfx.BlendTable, x, px, py int) bool {
	tm := l.tilemap
	ts := tm.Tileset(0)
	t := tm.Tiles()[(py>>ts.VShift())*tm.Cols()+px>>ts.HShift()]
	if t.Empty() {
		return false
	}
	ts2 := tm.Tileset(t.TilesetIndex())
	tw, th := ts.Width(), ts.Height()
	sx, sy := flipPoint(transformFlags(t.Flags(), tw, th), px&ts.HMask(), py&ts.VMask(), tw, th)
	ci := ts2.Pixel(ts2.Slot(t.Index()), sx, sy)
	pal := e.tilePalette(l, ts2, t)
	if tilePriority(ts2, t) {
		plot(ci, pal, e.priority, x, nil)
		return ci != 0
	}
	plot(ci, pal, dst, x, blend)
	return false
}

// affineSpan maps the ends of a line through the layer transform and
// returns the fixed-point start and per-pixel step.
func affineSpan(l *Layer, line, tx1, tx2 int) (x1, y1, dx, dy fix) {
	xpos, ypos := float64(l.hstart), float64(l.vstart+line)
	ax, ay := l.transform.Apply(xpos+float64(tx1), ypos)
	bx, by := l.transform.Apply(xpos+float64(tx2), ypos)
	x1, y1 = float2fix(ax), float2fix(ay)
	n := fix(tx2 - tx1)
	dx = (float2fix(bx) - x1) / n
	dy = (float2fix(by) - y1) / n
	return x1, y1, dx, dy
}

// drawTiledAffine samples one pixel per column along the transformed line.
func drawTiledAffine(e *Engine, l *Layer, dst []gfx.Color, blend *gfx.BlendTable, line, tx1, tx2 int) bool {
	x1, y1, dx, dy := affineSpan(l, line, tx1, tx2)
	prio := false
	for x := tx1; x < tx2; x++ {
		if e.plotTile(l, dst, blend, x, wrap(fix2int(x1), l.width), wrap(fix2int(y1), l.height)) {
			prio = true
		}
		x1 += dx
		y1 += dy
	}
	return prio
}

// drawTiledPixelMap looks every column up in the pixel map.
func drawTiledPixelMap(e *Engine, l *Layer, dst []gfx.Color, blend *gfx.BlendTable, line, tx1, tx2 int) bool {
	pm := l.pixelMap[line*e.width : (line+1)*e.width]
	prio := false
	for x := tx1; x < tx2; x++ {
		px := wrap(l.hstart+int(pm[x].DX), l.width)
		py := wrap(l.vstart+int(pm[x].DY), l.height)
		if e.plotTile(l, dst, blend, x, px, py) {
			prio = true
		}
	}
	return prio
}
