package engine

import "github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"

func bitmapPalette(l *Layer) []gfx.Color {
	if l.palette != nil {
		return l.palette.Entries()
	}
	return l.bitmap.Palette().Entries()
}

func drawBitmap(e *Engine, l *Layer, dst []gfx.Color, blend *gfx.BlendTable, line, tx1, tx2 int) bool {
	bm := l.bitmap
	pal := bitmapPalette(l)
	row := bm.Offset(0, wrap(l.vstart+line, l.height))
	xpos := wrap(l.hstart+tx1, l.width)
	for x := tx1; x < tx2; {
		n := min(l.width-xpos, tx2-x)
		blit(bm.Pix(), row+xpos, 1, n, pal, dst[x:x+n], blend)
		x += n
		xpos = 0
	}
	return false
}

func drawBitmapScaling(e *Engine, l *Layer, dst []gfx.Color, blend *gfx.BlendTable, line, tx1, tx2 int) bool {
	bm := l.bitmap
	pal := bitmapPalette(l)
	row := bm.Offset(0, wrap(l.vstart+fix2int(fix(line)*l.dy), l.height))
	x := tx1
	xpos := wrap(l.hstart+fix2int(fix(x)*l.dx), l.width)
	fixX := int2fix(x)
	for x < tx2 {
		width := l.width - xpos
		step := int2fix(width)
		fixX += fix(width) * l.xfactor
		x1 := fix2int(fixX)
		if scaled := x1 - x; scaled > 0 {
			step /= fix(scaled)
		} else {
			step = 0
		}
		x1 = min(x1, tx2)
		if n := x1 - x; n > 0 {
			blitScaled(bm.Pix(), row+xpos, 0, step, n, pal, dst[x:x1], blend)
		}
		x = x1
		xpos = 0
	}
	return false
}

func drawBitmapAffine(e *Engine, l *Layer, dst []gfx.Color, blend *gfx.BlendTable, line, tx1, tx2 int) bool {
	bm := l.bitmap
	pal := bitmapPalette(l)
	x1, y1, dx, dy := affineSpan(l, line, tx1, tx2)
	for x := tx1; x < tx2; x++ {
		plot(bm.At(wrap(fix2int(x1), l.width), wrap(fix2int(y1), l.height)), pal, dst, x, blend)
		x1 += dx
		y1 += dy
	}
	return false
}

func drawBitmapPixelMap(e *Engine, l *Layer, dst []gfx.Color, blend *gfx.BlendTable, line, tx1, tx2 int) bool {
	bm := l.bitmap
	pal := bitmapPalette(l)
	pm := l.pixelMap[line*e.width : (line+1)*e.width]
	for x := tx1; x < tx2; x++ {
		px := wrap(l.hstart+int(pm[x].DX), l.width)
		py := wrap(l.vstart+int(pm[x].DY), l.height)
		plot(bm.At(px, py), pal, dst, x, blend)
	}
	return false
}

// drawObjects renders the visible image objects crossing this line in
// list order, so later objects cover earlier ones.
func drawObjects(e *Engine, l *Layer, dst []gfx.Color, blend *gfx.BlendTable, line, tx1, tx2 int) bool {
	y := l.vstart + line
	prio := false
	for o := l.objects.First(); o != nil; o = o.Next() {
		bm := o.Bitmap()
		if !o.Visible || bm == nil || !o.InLine(l.hstart+tx1, l.hstart+tx2, y) {
			continue
		}
		// skip objects resized after Add
		if o.Width != bm.Width() || o.Height != bm.Height() {
			continue
		}
		r := o.Bounds()
		sc := tilescan{w: bm.Width(), h: bm.Height(), srcy: y - r.Min.Y, dx: 1, stride: bm.Pitch()}
		dstx1 := r.Min.X - l.hstart
		dstx2 := min(dstx1+r.Dx(), tx2)
		if dstx1 < tx1 {
			sc.srcx = tx1 - dstx1
			dstx1 = tx1
		}
		n := dstx2 - dstx1
		if n <= 0 {
			continue
		}
		if f := o.Flags & gfx.FlagsTransform; f != 0 {
			sc.flip(f)
		}
		pal := bm.Palette().Entries()
		if l.palette != nil {
			pal = l.palette.Entries()
		}
		target, b := dst, blend
		if o.Flags&gfx.FlagPriority != 0 {
			target, b = e.priority, nil
			prio = true
		}
		blit(bm.Pix(), bm.Offset(sc.srcx, sc.srcy), sc.dx, n, pal, target[dstx1:dstx2], b)
	}
	return prio
}
