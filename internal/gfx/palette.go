package gfx

import "fmt"

// MaxColors is the largest palette size.
const MaxColors = 256

// Palette is an indexed color table. It is mutable in place (color cycling
// writes into it) and may be shared by reference; callers needing a stable
// copy must Clone it.
type Palette struct {
	entries []Color
	deleted bool
}

// NewPalette creates a palette with n black entries (1 <= n <= 256).
func NewPalette(n int) (*Palette, error) {
	if n < 1 || n > MaxColors {
		return nil, fmt.Errorf("palette of %d entries: %w", n, ErrSize)
	}
	p := &Palette{entries: make([]Color, n)}
	for i := range p.entries {
		p.entries[i] = RGB(0, 0, 0)
	}
	return p, nil
}

// PaletteOf builds a palette holding a copy of colors.
func PaletteOf(colors ...Color) (*Palette, error) {
	p, err := NewPalette(len(colors))
	if err != nil {
		return nil, err
	}
	copy(p.entries, colors)
	return p, nil
}

func (p *Palette) Len() int { return len(p.entries) }

// Valid reports whether the palette is a live handle.
func (p *Palette) Valid() bool { return p != nil && !p.deleted }

// Delete releases the entries; the handle is rejected afterwards.
func (p *Palette) Delete() {
	p.entries = nil
	p.deleted = true
}

// Color returns entry i, or 0 when i is out of range.
func (p *Palette) Color(i int) Color {
	if i < 0 || i >= len(p.entries) {
		return 0
	}
	return p.entries[i]
}

func (p *Palette) SetColor(i int, c Color) error {
	if i < 0 || i >= len(p.entries) {
		return fmt.Errorf("palette entry %d: %w", i, ErrOutOfRange)
	}
	p.entries[i] = c
	return nil
}

// Entries exposes the backing slice for the renderer.
func (p *Palette) Entries() []Color { return p.entries }

func (p *Palette) Clone() *Palette {
	c := &Palette{entries: make([]Color, len(p.entries))}
	copy(c.entries, p.entries)
	return c
}

// CopyFrom overwrites the entries with src's. Both palettes must be the
// same size.
func (p *Palette) CopyFrom(src *Palette) error {
	if len(src.entries) != len(p.entries) {
		return fmt.Errorf("copy %d entries into %d: %w", len(src.entries), len(p.entries), ErrSize)
	}
	copy(p.entries, src.entries)
	return nil
}

// MixPalettes writes into dst the linear mix of a and b. factor 0 yields a,
// 255 yields b.
func MixPalettes(dst, a, b *Palette, factor uint8) error {
	n := dst.Len()
	if a.Len() < n || b.Len() < n {
		return fmt.Errorf("mix palettes: %w", ErrSize)
	}
	for i := 0; i < n; i++ {
		dst.entries[i] = Lerp(a.entries[i], b.entries[i], factor)
	}
	return nil
}

// AddColor adds c channel-wise (saturating) to num entries from start.
func (p *Palette) AddColor(start, num int, c Color) error {
	return p.apply(start, num, c, tableFor(BlendAdd))
}

// SubColor subtracts c channel-wise (saturating) from num entries.
func (p *Palette) SubColor(start, num int, c Color) error {
	return p.apply(start, num, c, tableFor(BlendSub))
}

// ModColor multiplies num entries channel-wise by c.
func (p *Palette) ModColor(start, num int, c Color) error {
	return p.apply(start, num, c, tableFor(BlendMod))
}

func (p *Palette) apply(start, num int, c Color, t *BlendTable) error {
	if start < 0 || num < 0 || start+num > len(p.entries) {
		return fmt.Errorf("palette range %d+%d: %w", start, num, ErrOutOfRange)
	}
	for i := start; i < start+num; i++ {
		e := p.entries[i]
		p.entries[i] = RGBA(t.Blend(c.R(), e.R()), t.Blend(c.G(), e.G()), t.Blend(c.B(), e.B()), e.A())
	}
	return nil
}
