package gfx

import (
	"fmt"
	"math/bits"
)

// TileAttributes carries per-tile semantic data.
type TileAttributes struct {
	Type     uint8
	Priority bool
}

// TileImage is one bitmap-backed tile of an image-based tileset.
type TileImage struct {
	ID     int
	Type   uint8
	Bitmap *Bitmap
}

// Tileset is an atlas of equally sized tiles addressed by id 1..N. Id 0 is
// the empty tile and never has pixels.
//
// Tile pixels are stored contiguously per atlas slot. A slot table maps each
// tile id to the slot actually drawn; tile animations rewrite that table.
type Tileset struct {
	width, height  int
	hshift, vshift int
	numTiles       int
	pix            []uint8
	slots          []uint16
	attrs          []TileAttributes
	images         []TileImage
	palette        *Palette
	deleted        bool

	// Sequences are tile animations started whenever a layer shows a map
	// that uses this tileset. Each sequence's Target is the animated id.
	Sequences []*Sequence
}

func isPow2(v int) bool { return v > 0 && v&(v-1) == 0 }

// NewTileset creates a tileset of numTiles blank tiles. attrs may be nil or
// hold one entry per tile (index 0 = tile id 1).
func NewTileset(numTiles, width, height int, palette *Palette, attrs []TileAttributes) (*Tileset, error) {
	if !isPow2(width) || !isPow2(height) {
		return nil, fmt.Errorf("tileset %dx%d: %w", width, height, ErrTileSize)
	}
	if numTiles <= 0 || numTiles > 0xFFFF {
		return nil, fmt.Errorf("tileset of %d tiles: %w", numTiles, ErrSize)
	}
	if attrs != nil && len(attrs) != numTiles {
		return nil, fmt.Errorf("%d attributes for %d tiles: %w", len(attrs), numTiles, ErrSize)
	}
	t := &Tileset{
		width:    width,
		height:   height,
		hshift:   bits.TrailingZeros(uint(width)),
		vshift:   bits.TrailingZeros(uint(height)),
		numTiles: numTiles,
		pix:      make([]uint8, numTiles*width*height),
		slots:    make([]uint16, numTiles+1),
		attrs:    make([]TileAttributes, numTiles+1),
		palette:  palette,
	}
	for i := range t.slots {
		t.slots[i] = uint16(i)
	}
	copy(t.attrs[1:], attrs)
	return t, nil
}

// NewImageTileset creates a tileset where every tile is its own bitmap.
// Such tilesets serve object layers only.
func NewImageTileset(images []TileImage, palette *Palette) (*Tileset, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("image tileset: %w", ErrSize)
	}
	t := &Tileset{
		numTiles: len(images),
		images:   append([]TileImage(nil), images...),
		attrs:    make([]TileAttributes, len(images)+1),
		palette:  palette,
	}
	for i, img := range images {
		if !img.Bitmap.Valid() {
			return nil, fmt.Errorf("image tile %d: %w", img.ID, ErrDeleted)
		}
		t.attrs[i+1].Type = img.Type
	}
	return t, nil
}

func (t *Tileset) Width() int        { return t.width }
func (t *Tileset) Height() int       { return t.height }
func (t *Tileset) HShift() int       { return t.hshift }
func (t *Tileset) VShift() int       { return t.vshift }
func (t *Tileset) HMask() int        { return t.width - 1 }
func (t *Tileset) VMask() int        { return t.height - 1 }
func (t *Tileset) NumTiles() int     { return t.numTiles }
func (t *Tileset) Palette() *Palette { return t.palette }
func (t *Tileset) Valid() bool       { return t != nil && !t.deleted }
func (t *Tileset) ImageBased() bool  { return t.images != nil }

func (t *Tileset) SetPalette(p *Palette) { t.palette = p }

// Delete releases the atlas; the handle is rejected afterwards.
func (t *Tileset) Delete() {
	t.pix, t.images = nil, nil
	t.deleted = true
}

// Pix exposes the atlas for the renderer.
func (t *Tileset) Pix() []uint8 { return t.pix }

// Slot returns the 0-based atlas slot currently drawn for tile id.
func (t *Tileset) Slot(id int) int { return int(t.slots[id]) - 1 }

// SetSlot makes tile id draw the pixels of tile src. Used by tile
// animations; both ids are 1-based.
func (t *Tileset) SetSlot(id, src int) error {
	if id <= 0 || id > t.numTiles || src <= 0 || src > t.numTiles {
		return fmt.Errorf("tile slot %d<-%d: %w", id, src, ErrOutOfRange)
	}
	t.slots[id] = uint16(src)
	return nil
}

// Offset returns the atlas offset of pixel (x, y) in slot.
func (t *Tileset) Offset(slot, x, y int) int {
	return slot<<(t.hshift+t.vshift) + y<<t.hshift + x
}

// Pixel returns the color index at (x, y) of atlas slot.
func (t *Tileset) Pixel(slot, x, y int) uint8 { return t.pix[t.Offset(slot, x, y)] }

// SetTilePixels copies width*height indices into tile id's own slot.
func (t *Tileset) SetTilePixels(id int, pix []uint8) error {
	if t.ImageBased() || id <= 0 || id > t.numTiles {
		return fmt.Errorf("tile %d: %w", id, ErrOutOfRange)
	}
	n := t.width * t.height
	if len(pix) != n {
		return fmt.Errorf("tile %d: %d pixels, want %d: %w", id, len(pix), n, ErrSize)
	}
	copy(t.pix[(id-1)*n:id*n], pix)
	return nil
}

// Attributes returns the attributes of tile id (zero value for id 0).
func (t *Tileset) Attributes(id int) TileAttributes {
	if id < 0 || id > t.numTiles {
		return TileAttributes{}
	}
	return t.attrs[id]
}

func (t *Tileset) SetAttributes(id int, a TileAttributes) error {
	if id <= 0 || id > t.numTiles {
		return fmt.Errorf("tile %d: %w", id, ErrOutOfRange)
	}
	t.attrs[id] = a
	return nil
}

// Image returns the bitmap tile with the given id, if any.
func (t *Tileset) Image(id int) *TileImage {
	for i := range t.images {
		if t.images[i].ID == id {
			return &t.images[i]
		}
	}
	return nil
}
