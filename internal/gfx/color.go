package gfx

import "image/color"

// Color is a packed 32-bit RGBA value. In memory the bytes are laid out
// R, G, B, A (little-endian), matching image.RGBA pixel order so a scanline
// of Colors can be copied straight into an RGBA byte buffer.
// The zero Color means "no pixel" in the engine's side buffers.
type Color uint32

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color(uint32(r) | uint32(g)<<8 | uint32(b)<<16 | 0xFF<<24)
}

// RGBA returns a color with explicit alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24)
}

func (c Color) R() uint8 { return uint8(c) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c >> 16) }
func (c Color) A() uint8 { return uint8(c >> 24) }

// NRGBA converts to the standard library color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

// FromColor converts any color.Color into a packed Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA(n.R, n.G, n.B, n.A)
}
