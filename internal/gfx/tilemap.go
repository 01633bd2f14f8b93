package gfx

import "fmt"

// Flags is the 16-bit transform/attribute word shared by tiles, sprites and
// objects.
//
//	bit 15    flip x
//	bit 14    flip y
//	bit 13    rotate (transpose, square sources only)
//	bit 12    priority
//	bit 11    masked
//	bits 8-10 tileset selector (tiles) / bit 8 background (sprites)
//	bits 5-7  palette selector
type Flags uint16

const (
	FlagNone       Flags = 0
	FlagFlipX      Flags = 1 << 15
	FlagFlipY      Flags = 1 << 14
	FlagRotate     Flags = 1 << 13
	FlagPriority   Flags = 1 << 12
	FlagMasked     Flags = 1 << 11
	FlagTileset    Flags = 7 << 8
	FlagBackground Flags = 1 << 8
	FlagPalette    Flags = 7 << 5

	// FlagsTransform groups the flags that alter the scan direction.
	FlagsTransform = FlagFlipX | FlagFlipY | FlagRotate
)

// Tile is a packed tilemap cell: tile id in the low 16 bits, Flags in the
// high 16 bits. Id 0 is the empty tile.
type Tile uint32

func NewTile(index int, flags Flags) Tile { return Tile(uint32(uint16(index)) | uint32(flags)<<16) }

func (t Tile) Index() int       { return int(uint16(t)) }
func (t Tile) Flags() Flags     { return Flags(t >> 16) }
func (t Tile) Empty() bool      { return uint16(t) == 0 }
func (t Tile) FlipX() bool      { return t.Flags()&FlagFlipX != 0 }
func (t Tile) FlipY() bool      { return t.Flags()&FlagFlipY != 0 }
func (t Tile) Rotate() bool     { return t.Flags()&FlagRotate != 0 }
func (t Tile) Priority() bool   { return t.Flags()&FlagPriority != 0 }
func (t Tile) Masked() bool     { return t.Flags()&FlagMasked != 0 }
func (t Tile) Palette() int     { return int(t.Flags()&FlagPalette) >> 5 }
func (t Tile) TilesetIndex() int { return int(t.Flags()&FlagTileset) >> 8 }

func (t Tile) WithFlags(f Flags) Tile { return NewTile(t.Index(), t.Flags()|f) }
func (t Tile) WithPalette(p int) Tile {
	return NewTile(t.Index(), t.Flags()&^FlagPalette|Flags(p&7)<<5)
}
func (t Tile) WithTileset(i int) Tile {
	return NewTile(t.Index(), t.Flags()&^FlagTileset|Flags(i&7)<<8)
}

// MaxTilesets is the number of tilesets one map can reference.
const MaxTilesets = 8

// Tilemap is a rows x cols grid of tiles drawn with up to eight tilesets of
// identical tile size.
type Tilemap struct {
	rows, cols int
	tiles      []Tile
	tilesets   [MaxTilesets]*Tileset
	bgColor    Color
	deleted    bool
}

// NewTilemap validates every tile against its tileset. tiles may be nil for
// an empty map.
func NewTilemap(rows, cols int, tiles []Tile, tilesets ...*Tileset) (*Tilemap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("tilemap %dx%d: %w", cols, rows, ErrSize)
	}
	if len(tilesets) == 0 || len(tilesets) > MaxTilesets {
		return nil, fmt.Errorf("tilemap with %d tilesets: %w", len(tilesets), ErrSize)
	}
	m := &Tilemap{rows: rows, cols: cols, tiles: make([]Tile, rows*cols)}
	for i, ts := range tilesets {
		if !ts.Valid() {
			return nil, fmt.Errorf("tileset %d: %w", i, ErrDeleted)
		}
		if ts.ImageBased() || ts.width != tilesets[0].width || ts.height != tilesets[0].height {
			return nil, fmt.Errorf("tileset %d has mismatched tile size: %w", i, ErrTileSize)
		}
		m.tilesets[i] = ts
	}
	if tiles != nil {
		if len(tiles) != rows*cols {
			return nil, fmt.Errorf("%d tiles for %dx%d map: %w", len(tiles), cols, rows, ErrSize)
		}
		for i, t := range tiles {
			if err := m.check(t); err != nil {
				return nil, fmt.Errorf("cell %d,%d: %w", i%cols, i/cols, err)
			}
		}
		copy(m.tiles, tiles)
	}
	return m, nil
}

func (m *Tilemap) check(t Tile) error {
	if t.Empty() {
		return nil
	}
	ts := m.tilesets[t.TilesetIndex()]
	if ts == nil || t.Index() > ts.numTiles {
		return fmt.Errorf("tile %d of tileset %d: %w", t.Index(), t.TilesetIndex(), ErrOutOfRange)
	}
	return nil
}

func (m *Tilemap) Rows() int            { return m.rows }
func (m *Tilemap) Cols() int            { return m.cols }
func (m *Tilemap) Valid() bool          { return m != nil && !m.deleted }
func (m *Tilemap) Tiles() []Tile        { return m.tiles }
func (m *Tilemap) BGColor() Color       { return m.bgColor }
func (m *Tilemap) SetBGColor(c Color)   { m.bgColor = c }
func (m *Tilemap) Tileset(i int) *Tileset { return m.tilesets[i&7] }
func (m *Tilemap) Delete()              { m.tiles, m.deleted = nil, true }

// Width and Height return the map size in pixels.
func (m *Tilemap) Width() int  { return m.cols * m.tilesets[0].width }
func (m *Tilemap) Height() int { return m.rows * m.tilesets[0].height }

func (m *Tilemap) At(row, col int) (Tile, error) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return 0, fmt.Errorf("cell %d,%d: %w", col, row, ErrOutOfRange)
	}
	return m.tiles[row*m.cols+col], nil
}

func (m *Tilemap) Set(row, col int, t Tile) error {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return fmt.Errorf("cell %d,%d: %w", col, row, ErrOutOfRange)
	}
	if err := m.check(t); err != nil {
		return err
	}
	m.tiles[row*m.cols+col] = t
	return nil
}

// CopyTiles copies a rectangular block from src into m at (dstRow, dstCol).
func (m *Tilemap) CopyTiles(src *Tilemap, srcRow, srcCol, rows, cols, dstRow, dstCol int) error {
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			t, err := src.At(srcRow+r, srcCol+c)
			if err != nil {
				return err
			}
			if err := m.Set(dstRow+r, dstCol+c, t); err != nil {
				return err
			}
		}
	}
	return nil
}
