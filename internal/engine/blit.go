package engine

import "github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"

// Blitters write palette-resolved pixels into a scanline. Color index 0 is
// transparent in every one except blitOpaque.

// blit draws n pixels read from src starting at i, stepping di (1, -1 or
// a row stride for rotated sources).
func blit(src []uint8, i, di, n int, pal []gfx.Color, dst []gfx.Color, blend *gfx.BlendTable) {
	if blend == nil {
		for x := 0; x < n; x++ {
			if ci := src[i]; ci != 0 && int(ci) < len(pal) {
				dst[x] = pal[ci]
			}
			i += di
		}
		return
	}
	for x := 0; x < n; x++ {
		if ci := src[i]; ci != 0 && int(ci) < len(pal) {
			dst[x] = blend.BlendColor(pal[ci], dst[x])
		}
		i += di
	}
}

// blitScaled draws n pixels from the row starting at base, sampling at the
// fixed-point position pos advanced by step per pixel.
func blitScaled(src []uint8, base int, pos, step fix, n int, pal []gfx.Color, dst []gfx.Color, blend *gfx.BlendTable) {
	for x := 0; x < n; x++ {
		if ci := src[base+fix2int(pos)]; ci != 0 && int(ci) < len(pal) {
			if blend == nil {
				dst[x] = pal[ci]
			} else {
				dst[x] = blend.BlendColor(pal[ci], dst[x])
			}
		}
		pos += step
	}
}

// blitOpaque copies every pixel, index 0 included.
func blitOpaque(src []uint8, pal []gfx.Color, dst []gfx.Color) {
	for x, ci := range src {
		if int(ci) < len(pal) {
			dst[x] = pal[ci]
		}
	}
}

// plot draws one pixel.
func plot(ci uint8, pal []gfx.Color, dst []gfx.Color, x int, blend *gfx.BlendTable) {
	if ci == 0 || int(ci) >= len(pal) {
		return
	}
	if blend == nil {
		dst[x] = pal[ci]
	} else {
		dst[x] = blend.BlendColor(pal[ci], dst[x])
	}
}

func blitColor(dst []gfx.Color, c gfx.Color, blend *gfx.BlendTable) {
	if blend == nil {
		for x := range dst {
			dst[x] = c
		}
		return
	}
	for x := range dst {
		dst[x] = blend.BlendColor(c, dst[x])
	}
}

// blitLine overlays the non-zero pixels of src onto dst.
func blitLine(src, dst []gfx.Color, blend *gfx.BlendTable) {
	for x, c := range src {
		if c == 0 {
			continue
		}
		if blend == nil {
			dst[x] = c
		} else {
			dst[x] = blend.BlendColor(c, dst[x])
		}
	}
}

// buildMosaic replicates the first pixel of every w-wide block of src.
func buildMosaic(src, dst []gfx.Color, w int) {
	for x := 0; x < len(src); x += w {
		c := src[x]
		end := min(x+w, len(dst))
		for i := x; i < end; i++ {
			dst[i] = c
		}
	}
}
