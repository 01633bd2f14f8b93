package gfx

import "sync"

// BlendMode selects how a source pixel is combined with the pixel below.
type BlendMode int

const (
	BlendNone BlendMode = iota
	BlendMix25
	BlendMix50
	BlendMix75
	BlendAdd
	BlendSub
	BlendMod
	BlendCustom
)

func (m BlendMode) String() string {
	switch m {
	case BlendNone:
		return "none"
	case BlendMix25:
		return "mix25"
	case BlendMix50:
		return "mix50"
	case BlendMix75:
		return "mix75"
	case BlendAdd:
		return "add"
	case BlendSub:
		return "sub"
	case BlendMod:
		return "mod"
	case BlendCustom:
		return "custom"
	}
	return "unknown"
}

// BlendTable is a 256x256 lookup indexed by (src<<8)|dst.
type BlendTable [256 * 256]uint8

// Blend combines one channel.
func (t *BlendTable) Blend(src, dst uint8) uint8 { return t[int(src)<<8|int(dst)] }

// BlendColor combines the RGB channels of two colors; alpha is kept opaque.
func (t *BlendTable) BlendColor(src, dst Color) Color {
	return RGB(t.Blend(src.R(), dst.R()), t.Blend(src.G(), dst.G()), t.Blend(src.B(), dst.B()))
}

var (
	tablesMu sync.Mutex
	tables   = map[BlendMode]*BlendTable{}
	custom   *BlendTable
)

func build(fn func(a, b int) int) *BlendTable {
	t := new(BlendTable)
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			v := fn(a, b)
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			t[a<<8|b] = uint8(v)
		}
	}
	return t
}

func mixFunc(f int) func(a, b int) int {
	return func(a, b int) int { return (a*f + b*(255-f)) / 255 }
}

func tableFor(mode BlendMode) *BlendTable {
	tablesMu.Lock()
	defer tablesMu.Unlock()
	if mode == BlendCustom {
		return custom
	}
	if t, ok := tables[mode]; ok {
		return t
	}
	var t *BlendTable
	switch mode {
	case BlendMix25:
		t = build(mixFunc(64))
	case BlendMix50:
		t = build(mixFunc(128))
	case BlendMix75:
		t = build(mixFunc(192))
	case BlendAdd:
		t = build(func(a, b int) int { return a + b })
	case BlendSub:
		t = build(func(a, b int) int { return b - a })
	case BlendMod:
		t = build(func(a, b int) int { return a * b / 255 })
	default:
		return nil
	}
	tables[mode] = t
	return t
}

// Table returns the shared lookup table for mode, or nil for BlendNone (and
// for BlendCustom before SetCustomBlendFunc was called).
func Table(mode BlendMode) *BlendTable { return tableFor(mode) }

// MixTable builds a mix table for an arbitrary factor (0 = dst, 255 = src).
func MixTable(factor uint8) *BlendTable { return build(mixFunc(int(factor))) }

// SetCustomBlendFunc installs the function behind BlendCustom.
func SetCustomBlendFunc(fn func(src, dst uint8) uint8) {
	t := build(func(a, b int) int { return int(fn(uint8(a), uint8(b))) })
	tablesMu.Lock()
	custom = t
	tablesMu.Unlock()
}

// Lerp interpolates two colors channel-wise. f1 = 0 returns c0 exactly,
// f1 = 255 returns c1 exactly, and each channel moves monotonically in
// between.
func Lerp(c0, c1 Color, f1 uint8) Color {
	f0 := 255 - int(f1)
	ch := func(a, b uint8) uint8 { return uint8((int(a)*f0 + int(b)*int(f1)) / 255) }
	return RGBA(ch(c0.R(), c1.R()), ch(c0.G(), c1.G()), ch(c0.B(), c1.B()), ch(c0.A(), c1.A()))
}
