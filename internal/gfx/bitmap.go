package gfx

import (
	"fmt"
	"image"
)

// Bitmap is an 8-bit color-indexed pixel buffer with its own palette.
type Bitmap struct {
	width   int
	height  int
	pitch   int
	pix     []uint8
	palette *Palette
	deleted bool
}

// NewBitmap creates a blank bitmap. The palette may be nil and set later.
func NewBitmap(width, height int, palette *Palette) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bitmap %dx%d: %w", width, height, ErrSize)
	}
	return &Bitmap{
		width:   width,
		height:  height,
		pitch:   width,
		pix:     make([]uint8, width*height),
		palette: palette,
	}, nil
}

// FromPaletted converts an in-memory paletted image. Palette entries beyond
// 256 are not representable and the conversion fails.
func FromPaletted(img *image.Paletted) (*Bitmap, error) {
	r := img.Bounds()
	pal, err := NewPalette(max(1, len(img.Palette)))
	if err != nil {
		return nil, err
	}
	for i, c := range img.Palette {
		pal.entries[i] = FromColor(c)
	}
	b, err := NewBitmap(r.Dx(), r.Dy(), pal)
	if err != nil {
		return nil, err
	}
	for y := 0; y < r.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+r.Dx()]
		copy(b.Row(y), src)
	}
	return b, nil
}

func (b *Bitmap) Width() int  { return b.width }
func (b *Bitmap) Height() int { return b.height }
func (b *Bitmap) Pitch() int  { return b.pitch }

// Pix exposes the backing pixels for the renderer.
func (b *Bitmap) Pix() []uint8 { return b.pix }

func (b *Bitmap) Palette() *Palette       { return b.palette }
func (b *Bitmap) SetPalette(p *Palette)   { b.palette = p }
func (b *Bitmap) Valid() bool             { return b != nil && !b.deleted }
func (b *Bitmap) Row(y int) []uint8       { return b.pix[y*b.pitch : y*b.pitch+b.width] }
func (b *Bitmap) At(x, y int) uint8       { return b.pix[y*b.pitch+x] }
func (b *Bitmap) Set(x, y int, ci uint8)  { b.pix[y*b.pitch+x] = ci }
func (b *Bitmap) Offset(x, y int) int     { return y*b.pitch + x }
func (b *Bitmap) Delete()                 { b.pix, b.deleted = nil, true }
func (b *Bitmap) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// Fill sets every pixel inside r to ci.
func (b *Bitmap) Fill(r image.Rectangle, ci uint8) {
	r = r.Intersect(b.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.Row(y)
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = ci
		}
	}
}
