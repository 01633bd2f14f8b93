package gfx

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestTilePacking(t *testing.T) {
	tl := NewTile(513, FlagFlipX|FlagPriority).WithPalette(5).WithTileset(3)
	if tl.Index() != 513 {
		t.Fatalf("index got %d want 513", tl.Index())
	}
	if !tl.FlipX() || tl.FlipY() || tl.Rotate() || !tl.Priority() {
		t.Fatalf("flags got %016b", tl.Flags())
	}
	if tl.Palette() != 5 || tl.TilesetIndex() != 3 {
		t.Fatalf("palette %d tileset %d", tl.Palette(), tl.TilesetIndex())
	}
	// selectors occupy bits 21-23 and 24-26 of the packed word
	if uint32(tl)>>21&7 != 5 || uint32(tl)>>24&7 != 3 || uint32(tl)>>31 != 1 {
		t.Fatalf("packed layout %032b", uint32(tl))
	}
	if !NewTile(0, FlagFlipY).Empty() {
		t.Fatalf("tile 0 must be empty regardless of flags")
	}
}

func TestTilesetRejectsNonPowerOfTwo(t *testing.T) {
	pal, _ := NewPalette(4)
	if _, err := NewTileset(4, 12, 8, pal, nil); !errors.Is(err, ErrTileSize) {
		t.Fatalf("got %v want ErrTileSize", err)
	}
	ts, err := NewTileset(4, 16, 8, pal, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ts.HShift() != 4 || ts.VShift() != 3 || ts.HMask() != 15 || ts.VMask() != 7 {
		t.Fatalf("shift/mask got %d,%d %d,%d", ts.HShift(), ts.VShift(), ts.HMask(), ts.VMask())
	}
}

func TestTilesetSlots(t *testing.T) {
	pal, _ := NewPalette(4)
	ts, _ := NewTileset(3, 8, 8, pal, nil)
	for id := 1; id <= 3; id++ {
		pix := make([]uint8, 64)
		for i := range pix {
			pix[i] = uint8(id)
		}
		if err := ts.SetTilePixels(id, pix); err != nil {
			t.Fatal(err)
		}
	}
	if got := ts.Pixel(ts.Slot(2), 3, 4); got != 2 {
		t.Fatalf("tile 2 pixel got %d want 2", got)
	}
	if err := ts.SetSlot(2, 3); err != nil {
		t.Fatal(err)
	}
	if got := ts.Pixel(ts.Slot(2), 3, 4); got != 3 {
		t.Fatalf("redirected tile 2 pixel got %d want 3", got)
	}
	if err := ts.SetSlot(0, 1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("slot 0 got %v", err)
	}
	if err := ts.SetTilePixels(4, make([]uint8, 64)); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("tile 4 got %v", err)
	}
}

func TestTilemapValidation(t *testing.T) {
	pal, _ := NewPalette(4)
	a, _ := NewTileset(2, 8, 8, pal, nil)
	b, _ := NewTileset(5, 8, 8, pal, nil)
	small, _ := NewTileset(2, 4, 4, pal, nil)

	if _, err := NewTilemap(2, 2, nil, a, small); !errors.Is(err, ErrTileSize) {
		t.Fatalf("mixed tile sizes got %v", err)
	}
	tiles := []Tile{1, 2, 0, NewTile(5, 0).WithTileset(1)}
	m, err := NewTilemap(2, 2, tiles, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if m.Width() != 16 || m.Height() != 16 {
		t.Fatalf("size got %dx%d", m.Width(), m.Height())
	}
	if err := m.Set(0, 0, NewTile(3, 0)); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("tile 3 of tileset 0 got %v", err)
	}
	if err := m.Set(0, 0, NewTile(1, 0).WithTileset(2)); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("missing tileset 2 got %v", err)
	}
	if _, err := m.At(2, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("row 2 got %v", err)
	}
	got, _ := m.At(1, 1)
	if got.Index() != 5 || got.TilesetIndex() != 1 {
		t.Fatalf("cell 1,1 got %d/%d", got.Index(), got.TilesetIndex())
	}
}

func TestLerpBoundsAndMonotonic(t *testing.T) {
	c0 := RGB(10, 200, 0)
	c1 := RGB(250, 20, 255)
	if got := Lerp(c0, c1, 0); got != c0 {
		t.Fatalf("f=0 got %08x want %08x", got, c0)
	}
	if got := Lerp(c0, c1, 255); got != c1 {
		t.Fatalf("f=255 got %08x want %08x", got, c1)
	}
	prev := c0
	for f := 1; f <= 255; f++ {
		c := Lerp(c0, c1, uint8(f))
		if c.R() < prev.R() || c.G() > prev.G() || c.B() < prev.B() {
			t.Fatalf("f=%d not monotonic: %08x after %08x", f, c, prev)
		}
		prev = c
	}
}

func TestBlendTables(t *testing.T) {
	add := Table(BlendAdd)
	if got := add.Blend(200, 100); got != 255 {
		t.Fatalf("add got %d want 255", got)
	}
	sub := Table(BlendSub)
	if got := sub.Blend(50, 40); got != 0 {
		t.Fatalf("sub got %d want 0", got)
	}
	if got := sub.Blend(40, 50); got != 10 {
		t.Fatalf("sub got %d want 10", got)
	}
	if Table(BlendNone) != nil {
		t.Fatalf("none must have no table")
	}
	if Table(BlendMix50) != Table(BlendMix50) {
		t.Fatalf("tables must be shared")
	}
	SetCustomBlendFunc(func(src, dst uint8) uint8 { return src ^ dst })
	if got := Table(BlendCustom).Blend(0x0F, 0xFF); got != 0xF0 {
		t.Fatalf("custom got %#x", got)
	}
}

func TestPaletteArithmetic(t *testing.T) {
	p, _ := PaletteOf(RGB(100, 100, 100), RGB(250, 10, 0))
	if err := p.AddColor(0, 2, RGB(10, 20, 30)); err != nil {
		t.Fatal(err)
	}
	if got := p.Color(1); got != RGB(255, 30, 30) {
		t.Fatalf("add got %08x", got)
	}
	if err := p.SubColor(0, 1, RGB(200, 0, 10)); err != nil {
		t.Fatal(err)
	}
	if got := p.Color(0); got != RGB(0, 120, 120) {
		t.Fatalf("sub got %08x", got)
	}
	if err := p.AddColor(1, 2, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("range got %v", err)
	}
	c := p.Clone()
	_ = c.SetColor(0, RGB(1, 2, 3))
	if p.Color(0) == c.Color(0) {
		t.Fatalf("clone shares entries")
	}
}

func TestFromPaletted(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 3, 2), color.Palette{color.Black, color.White})
	img.SetColorIndex(2, 1, 1)
	b, err := FromPaletted(img)
	if err != nil {
		t.Fatal(err)
	}
	if b.At(2, 1) != 1 || b.At(0, 0) != 0 {
		t.Fatalf("pixels %v", b.Pix())
	}
	if b.Palette().Color(1) != RGB(255, 255, 255) {
		t.Fatalf("palette entry got %08x", b.Palette().Color(1))
	}
}

func TestObjectListOrderAndLine(t *testing.T) {
	pal, _ := NewPalette(2)
	bm, _ := NewBitmap(16, 8, pal)
	ts, _ := NewImageTileset([]TileImage{{ID: 7, Bitmap: bm}}, pal)
	l := NewObjectList(ts)
	if err := l.AddTileObject(1, 7, FlagRotate, 10, 20); err != nil {
		t.Fatal(err)
	}
	if err := l.Add(Object{ID: 2, X: 0, Y: 0, Width: 4, Height: 4}); err != nil {
		t.Fatal(err)
	}
	if err := l.AddTileObject(3, 9, 0, 0, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("unknown gid got %v", err)
	}
	var ids []int
	l.Each(func(o *Object) bool { ids = append(ids, o.ID); return true })
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("order got %v", ids)
	}
	o := l.First()
	// rotated 16x8 covers 8x16
	if !o.InLine(0, 100, 35) || o.InLine(0, 100, 36) || o.InLine(18, 100, 25) {
		t.Fatalf("rotated bounds %v", o.Bounds())
	}
	if l.Width() != 18 || l.Height() != 36 {
		t.Fatalf("extent got %dx%d", l.Width(), l.Height())
	}
	c := l.Clone()
	c.First().X = 99
	if l.First().X != 10 {
		t.Fatalf("clone shares objects")
	}
}

func TestObjectListRejectsSizeMismatch(t *testing.T) {
	pal, _ := NewPalette(2)
	bm, _ := NewBitmap(4, 4, pal)
	ts, _ := NewImageTileset([]TileImage{{ID: 1, Bitmap: bm}}, pal)
	l := NewObjectList(ts)
	if err := l.Add(Object{ID: 1, GID: 1, Width: 8, Height: 8, Visible: true}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("8x8 object on 4x4 image got %v", err)
	}
	if err := l.Add(Object{ID: 2, GID: 1, Width: 4, Height: 2, Visible: true}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("4x2 object on 4x4 image got %v", err)
	}
	if err := l.Add(Object{ID: 3, GID: 1, Width: 4, Height: 4, Visible: true}); err != nil {
		t.Fatalf("matching size got %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("len got %d want 1", l.Len())
	}
}

func TestSequencePack(t *testing.T) {
	walk, _ := NewSequence("walk", 0, []Frame{{1, 5}, {2, 5}})
	cycle, _ := NewColorSequence("water", []ColorStrip{{First: 4, Count: 3, Delay: 8, Dir: StripForward}})
	p := NewSequencePack()
	_ = p.Add(walk)
	_ = p.Add(cycle)
	if p.Add(walk) == nil {
		t.Fatalf("duplicate name accepted")
	}
	if p.Find("water") != cycle || !cycle.IsColorCycle() || walk.IsColorCycle() {
		t.Fatalf("lookup/kind mismatch")
	}
	if _, err := NewColorSequence("bad", []ColorStrip{{First: 250, Count: 10}}); err == nil {
		t.Fatalf("strip past 256 accepted")
	}
}
