package scene

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"
)

// Palette layout shared by the tileset and the object images.
const (
	ciGround  = 1 // 1..3
	ciGrass   = 4 // 4..5
	ciBrick   = 6 // 6..7
	ciBush    = 8 // 8..9
	ciCloud   = 10
	ciTrunk   = 12
	ciWater   = 16 // 16..19, color cycled
	waterLen  = 4
	paletteSz = 32
)

// Tile ids.
const (
	tileGround = iota + 1
	tileGrass
	tileBrick
	tileWaterA
	tileWaterB
	tileBush
	tileCloud
	tilePillar
	numTiles = tilePillar
)

const tileSize = 8

// Map size in tiles.
const (
	mapCols = 64
	mapRows = 32
)

// Sprite pictures.
const (
	picPlayer0 = iota
	picPlayer1
	picEnemy
	picSun
)

type assets struct {
	pal     *gfx.Palette
	night   *gfx.Palette // tint selected by tiles with palette 1
	tiles   *gfx.Tileset
	fg      *gfx.Tilemap
	clouds  *gfx.Tilemap
	sky     *gfx.Bitmap
	objects *gfx.ObjectList
	sprites *gfx.Spriteset
	hit     *gfx.Palette // player palette while colliding
	seqs    *gfx.SequencePack
}

func buildPalette() *gfx.Palette {
	pal, _ := gfx.NewPalette(paletteSz)
	set := func(i int, c gfx.Color) { _ = pal.SetColor(i, c) }
	set(0, gfx.RGB(0, 0, 0))
	set(ciGround, gfx.RGB(120, 72, 40))
	set(ciGround+1, gfx.RGB(100, 60, 32))
	set(ciGround+2, gfx.RGB(140, 90, 52))
	set(ciGrass, gfx.RGB(60, 170, 60))
	set(ciGrass+1, gfx.RGB(40, 140, 40))
	set(ciBrick, gfx.RGB(170, 60, 40))
	set(ciBrick+1, gfx.RGB(90, 40, 30))
	set(ciBush, gfx.RGB(20, 110, 30))
	set(ciBush+1, gfx.RGB(30, 140, 50))
	set(ciCloud, gfx.RGB(240, 240, 250))
	set(ciCloud+1, gfx.RGB(200, 210, 230))
	set(ciTrunk, gfx.RGB(90, 55, 25))
	set(ciTrunk+1, gfx.RGB(40, 120, 40))
	for i := 0; i < waterLen; i++ {
		set(ciWater+i, gfx.RGB(20, uint8(80+i*30), uint8(160+i*25)))
	}
	return pal
}

// paint fills a tile by calling fn for every pixel.
func paint(fn func(x, y int) uint8) []uint8 {
	pix := make([]uint8, tileSize*tileSize)
	for y := 0; y < tileSize; y++ {
		for x := 0; x < tileSize; x++ {
			pix[y*tileSize+x] = fn(x, y)
		}
	}
	return pix
}

func buildTileset(pal *gfx.Palette) (*gfx.Tileset, error) {
	attrs := make([]gfx.TileAttributes, numTiles)
	attrs[tileBush-1].Priority = true
	attrs[tileWaterA-1].Type = 1
	attrs[tileWaterB-1].Type = 1
	ts, err := gfx.NewTileset(numTiles, tileSize, tileSize, pal, attrs)
	if err != nil {
		return nil, err
	}
	in := func(x, y int, cx, cy, r2 float64) bool {
		dx, dy := float64(x)-cx, float64(y)-cy
		return dx*dx+dy*dy <= r2
	}
	tiles := map[int][]uint8{
		tileGround: paint(func(x, y int) uint8 { return uint8(ciGround + (x*3+y*5)%3) }),
		tileGrass: paint(func(x, y int) uint8 {
			if y < 3 {
				return uint8(ciGrass + (x+y)&1)
			}
			return uint8(ciGround + (x+y)%3)
		}),
		tileBrick: paint(func(x, y int) uint8 {
			if y%4 == 3 || x == (y/4%2)*4 {
				return ciBrick + 1
			}
			return ciBrick
		}),
		tileWaterA: paint(func(x, y int) uint8 { return uint8(ciWater + (x+y)%waterLen) }),
		tileWaterB: paint(func(x, y int) uint8 { return uint8(ciWater + (x-y+tileSize)%waterLen) }),
		tileBush: paint(func(x, y int) uint8 {
			if !in(x, y, 3.5, 4.5, 12) {
				return 0
			}
			return uint8(ciBush + (x^y)&1)
		}),
		tileCloud: paint(func(x, y int) uint8 {
			if !in(x, y*2, 3.5, 8, 14) {
				return 0
			}
			if y > 4 {
				return ciCloud + 1
			}
			return ciCloud
		}),
		tilePillar: paint(func(x, y int) uint8 {
			if x < 4 {
				return uint8(ciBrick + (y/2)&1)
			}
			return 0
		}),
	}
	for id, pix := range tiles {
		if err := ts.SetTilePixels(id, pix); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

// buildForeground lays out ground, a pond, floating brick platforms and
// bushes that stay in front of sprites.
func buildForeground(ts *gfx.Tileset, rng *rand.Rand) (*gfx.Tilemap, error) {
	tm, err := gfx.NewTilemap(mapRows, mapCols, nil, ts)
	if err != nil {
		return nil, err
	}
	const groundRow = 24
	set := func(r, c int, t gfx.Tile) { _ = tm.Set(r, c, t) }
	for c := 0; c < mapCols; c++ {
		pond := c >= 20 && c < 28
		for r := groundRow; r < mapRows; r++ {
			switch {
			case pond && r < groundRow+3:
				set(r, c, gfx.NewTile(tileWaterA, 0))
			case r == groundRow:
				set(r, c, gfx.NewTile(tileGrass, 0))
			default:
				set(r, c, gfx.NewTile(tileGround, 0))
			}
		}
		if !pond && rng.IntN(4) == 0 {
			set(groundRow-1, c, gfx.NewTile(tileBush, 0))
		}
	}
	for p := 0; p < 6; p++ {
		row := 10 + rng.IntN(10)
		col := rng.IntN(mapCols - 8)
		n := 3 + rng.IntN(5)
		for i := 0; i < n; i++ {
			t := gfx.NewTile(tileBrick, 0)
			if i%2 == 1 {
				t = t.WithFlags(gfx.FlagFlipX).WithPalette(1)
			}
			set(row, col+i, t)
		}
		set(row+1, col, gfx.NewTile(tilePillar, gfx.FlagRotate))
		set(row+1, col+n-1, gfx.NewTile(tilePillar, gfx.FlagFlipX))
	}
	tm.SetBGColor(gfx.RGB(90, 150, 220))
	return tm, nil
}

func buildClouds(ts *gfx.Tileset, rng *rand.Rand) (*gfx.Tilemap, error) {
	tm, err := gfx.NewTilemap(mapRows, mapCols, nil, ts)
	if err != nil {
		return nil, err
	}
	for i := 0; i < 40; i++ {
		r, c := rng.IntN(mapRows/2), rng.IntN(mapCols-2)
		_ = tm.Set(r, c, gfx.NewTile(tileCloud, 0))
		_ = tm.Set(r, c+1, gfx.NewTile(tileCloud, gfx.FlagFlipX))
	}
	return tm, nil
}

// buildSky renders a vertical gradient into an in-memory paletted image.
func buildSky() (*gfx.Bitmap, error) {
	const w, h = 64, 32
	pal := make(color.Palette, 1, 1+h/2)
	pal[0] = color.NRGBA{}
	for i := 0; i < h/2; i++ {
		pal = append(pal, color.NRGBA{R: uint8(40 + i*6), G: uint8(90 + i*8), B: uint8(200 + i*3), A: 0xFF})
	}
	img := image.NewPaletted(image.Rect(0, 0, w, h), pal)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetColorIndex(x, y, uint8(1+y/2))
		}
	}
	return gfx.FromPaletted(img)
}

// buildObjects scatters trees and rocks along the ground line.
func buildObjects(pal *gfx.Palette, rng *rand.Rand) (*gfx.ObjectList, error) {
	tree, err := gfx.NewBitmap(16, 32, pal)
	if err != nil {
		return nil, err
	}
	tree.Fill(image.Rect(6, 12, 10, 32), ciTrunk)
	tree.Fill(image.Rect(1, 0, 15, 14), ciTrunk+1)
	rock, err := gfx.NewBitmap(16, 8, pal)
	if err != nil {
		return nil, err
	}
	rock.Fill(image.Rect(2, 2, 14, 8), ciCloud+1)
	rock.Fill(image.Rect(4, 0, 12, 2), ciCloud)

	ts, err := gfx.NewImageTileset([]gfx.TileImage{
		{ID: 1, Type: 1, Bitmap: tree},
		{ID: 2, Type: 2, Bitmap: rock},
	}, pal)
	if err != nil {
		return nil, err
	}
	ol := gfx.NewObjectList(ts)
	ground := 24 * tileSize
	for i := 0; i < 12; i++ {
		x := i*40 + rng.IntN(24)
		var flags gfx.Flags
		if rng.IntN(2) == 0 {
			flags = gfx.FlagFlipX
		}
		gid, h := 1, 32
		if i%3 == 2 {
			gid, h = 2, 8
		}
		if err := ol.AddTileObject(i+1, gid, flags, x, ground-h); err != nil {
			return nil, err
		}
	}
	return ol, nil
}

func buildSprites() (*gfx.Spriteset, *gfx.Palette, error) {
	pal, _ := gfx.PaletteOf(
		gfx.RGB(0, 0, 0),
		gfx.RGB(250, 220, 170), // skin
		gfx.RGB(40, 60, 200),   // clothes
		gfx.RGB(200, 40, 40),   // enemy
		gfx.RGB(255, 230, 60),  // sun
		gfx.RGB(20, 20, 20),    // eyes
	)
	hit, _ := gfx.PaletteOf(
		gfx.RGB(0, 0, 0),
		gfx.RGB(255, 255, 255),
		gfx.RGB(255, 80, 80),
		gfx.RGB(255, 255, 255),
		gfx.RGB(255, 255, 255),
		gfx.RGB(255, 255, 255),
	)
	atlas, err := gfx.NewBitmap(64, 16, pal)
	if err != nil {
		return nil, nil, err
	}
	for f := 0; f < 2; f++ {
		ox := f * 16
		atlas.Fill(image.Rect(ox+5, 0, ox+11, 6), 1)
		atlas.Fill(image.Rect(ox+4, 6, ox+12, 12), 2)
		atlas.Set(ox+6, 2, 5)
		atlas.Set(ox+9, 2, 5)
		if f == 0 {
			atlas.Fill(image.Rect(ox+4, 12, ox+7, 16), 2)
			atlas.Fill(image.Rect(ox+9, 12, ox+12, 16), 2)
		} else {
			atlas.Fill(image.Rect(ox+6, 12, ox+10, 16), 2)
		}
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			dx, dy := x*2-15, y*2-15
			r2 := dx*dx + dy*dy
			if r2 <= 15*15 && y > 3 {
				atlas.Set(32+x, y, 3)
			}
			if r2 <= 13*13 {
				atlas.Set(48+x, y, 4)
			}
		}
	}
	atlas.Set(32+5, 7, 5)
	atlas.Set(32+10, 7, 5)
	ss, err := gfx.NewSpriteset(atlas, []gfx.SpriteEntry{
		{Name: "player0", X: 0, Y: 0, W: 16, H: 16},
		{Name: "player1", X: 16, Y: 0, W: 16, H: 16},
		{Name: "enemy", X: 32, Y: 0, W: 16, H: 16},
		{Name: "sun", X: 48, Y: 0, W: 16, H: 16},
	})
	if err != nil {
		return nil, nil, err
	}
	return ss, hit, nil
}

func buildSequences(ts *gfx.Tileset) (*gfx.SequencePack, error) {
	pack := gfx.NewSequencePack()
	walk, err := gfx.NewSequence("walk", 0, []gfx.Frame{{Index: picPlayer0, Delay: 8}, {Index: picPlayer1, Delay: 8}})
	if err != nil {
		return nil, err
	}
	waves, err := gfx.NewSequence("waves", tileWaterA, []gfx.Frame{{Index: tileWaterA, Delay: 16}, {Index: tileWaterB, Delay: 16}})
	if err != nil {
		return nil, err
	}
	water, err := gfx.NewColorSequence("water", []gfx.ColorStrip{{First: ciWater, Count: waterLen, Delay: 12, Dir: gfx.StripForward}})
	if err != nil {
		return nil, err
	}
	for _, s := range []*gfx.Sequence{walk, waves, water} {
		if err := pack.Add(s); err != nil {
			return nil, err
		}
	}
	ts.Sequences = append(ts.Sequences, waves)
	return pack, nil
}

func buildAssets(seed uint64) (*assets, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	a := &assets{pal: buildPalette()}
	a.night = a.pal.Clone()
	if err := a.night.ModColor(0, a.night.Len(), gfx.RGB(150, 150, 220)); err != nil {
		return nil, err
	}
	var err error
	if a.tiles, err = buildTileset(a.pal); err != nil {
		return nil, fmt.Errorf("tileset: %w", err)
	}
	if a.seqs, err = buildSequences(a.tiles); err != nil {
		return nil, fmt.Errorf("sequences: %w", err)
	}
	if a.fg, err = buildForeground(a.tiles, rng); err != nil {
		return nil, fmt.Errorf("foreground: %w", err)
	}
	if a.clouds, err = buildClouds(a.tiles, rng); err != nil {
		return nil, fmt.Errorf("clouds: %w", err)
	}
	if a.sky, err = buildSky(); err != nil {
		return nil, fmt.Errorf("sky: %w", err)
	}
	if a.objects, err = buildObjects(a.pal, rng); err != nil {
		return nil, fmt.Errorf("objects: %w", err)
	}
	if a.sprites, a.hit, err = buildSprites(); err != nil {
		return nil, fmt.Errorf("sprites: %w", err)
	}
	return a, nil
}
