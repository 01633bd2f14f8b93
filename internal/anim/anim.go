// Package anim advances timed sprite, tile and palette animations.
//
// Time is an abstract monotonically increasing integer (usually frames or
// milliseconds); an Animation never reads a clock itself.
package anim

import (
	"errors"
	"fmt"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"
)

// Kind is the target an animation drives.
type Kind int

const (
	KindNone Kind = iota
	KindSprite
	KindTileset
	KindPalette
)

func (k Kind) String() string {
	switch k {
	case KindSprite:
		return "sprite"
	case KindTileset:
		return "tileset"
	case KindPalette:
		return "palette"
	}
	return "none"
}

var (
	ErrWrongKind = errors.New("sequence kind does not match target")
	ErrFrame     = errors.New("frame index out of range")
)

type strip struct {
	gfx.ColorStrip
	pos   int
	timer int
	t0    int
}

// Animation is one running animation slot. The zero value is disabled and
// ready for one of the Start methods.
type Animation struct {
	kind    Kind
	seq     *gfx.Sequence
	pos     int
	timer   int
	loop    int
	enabled bool
	paused  bool

	delays []int
	setter func(int)
	ts     *gfx.Tileset

	blend  bool
	pal    *gfx.Palette
	src    *gfx.Palette
	strips []strip
}

func (a *Animation) reset(seq *gfx.Sequence, kind Kind) {
	a.kind = kind
	a.seq = seq
	a.pos, a.timer, a.loop = 0, 0, 0
	a.enabled, a.paused = true, false
	a.delays = a.delays[:0]
	for _, f := range seq.Frames {
		a.delays = append(a.delays, f.Delay)
	}
	a.setter, a.ts = nil, nil
	a.pal, a.src, a.strips, a.blend = nil, nil, nil, false
}

// StartSprite plays a frame sequence, passing each frame's picture index to
// setter. loop is the number of passes (0 = forever).
func (a *Animation) StartSprite(seq *gfx.Sequence, loop int, setter func(int)) error {
	if seq.IsColorCycle() {
		return ErrWrongKind
	}
	a.reset(seq, KindSprite)
	a.loop = max(loop, 0)
	a.setter = setter
	return nil
}

// StartTileset makes seq.Target show the frames' tiles, looping forever.
func (a *Animation) StartTileset(ts *gfx.Tileset, seq *gfx.Sequence) error {
	if seq.IsColorCycle() {
		return ErrWrongKind
	}
	if seq.Target <= 0 || seq.Target > ts.NumTiles() {
		return fmt.Errorf("target tile %d: %w", seq.Target, ErrFrame)
	}
	for i, f := range seq.Frames {
		if f.Index <= 0 || f.Index > ts.NumTiles() {
			return fmt.Errorf("frame %d tile %d: %w", i, f.Index, ErrFrame)
		}
	}
	a.reset(seq, KindTileset)
	a.ts = ts
	return nil
}

// StartPalette color-cycles pal. The colors pal holds now become the fixed
// source every step is computed from. With blend set, colors fade between
// steps on every Advance.
func (a *Animation) StartPalette(pal *gfx.Palette, seq *gfx.Sequence, blend bool) error {
	if !seq.IsColorCycle() {
		return ErrWrongKind
	}
	for i, s := range seq.Strips {
		if s.First+s.Count > pal.Len() {
			return fmt.Errorf("strip %d [%d+%d] past %d colors: %w", i, s.First, s.Count, pal.Len(), ErrFrame)
		}
	}
	a.reset(seq, KindPalette)
	a.pal = pal
	a.src = pal.Clone()
	a.blend = blend
	a.strips = make([]strip, len(seq.Strips))
	for i, s := range seq.Strips {
		a.strips[i] = strip{ColorStrip: s}
	}
	return nil
}

// SetSource replaces the cycling basis and the live colors with pal.
func (a *Animation) SetSource(pal *gfx.Palette) error {
	if a.kind != KindPalette {
		return ErrWrongKind
	}
	if err := a.pal.CopyFrom(pal); err != nil {
		return err
	}
	return a.src.CopyFrom(pal)
}

// SetDelay overrides the hold time of one frame for this animation only.
func (a *Animation) SetDelay(frame, delay int) error {
	if a.kind == KindNone || a.kind == KindPalette {
		return ErrWrongKind
	}
	if frame < 0 || frame >= len(a.delays) {
		return fmt.Errorf("frame %d of %d: %w", frame, len(a.delays), ErrFrame)
	}
	a.delays[frame] = delay
	return nil
}

func (a *Animation) Kind() Kind              { return a.kind }
func (a *Animation) Sequence() *gfx.Sequence { return a.seq }
func (a *Animation) Enabled() bool           { return a.enabled }
func (a *Animation) Paused() bool            { return a.paused }
func (a *Animation) Pos() int                { return a.pos }
func (a *Animation) Loop() int               { return a.loop }
func (a *Animation) Palette() *gfx.Palette   { return a.pal }
func (a *Animation) Pause()                  { a.paused = true }
func (a *Animation) Resume()                 { a.paused = false }

// Disable stops the animation and detaches it from its target.
func (a *Animation) Disable() {
	a.enabled = false
	a.kind = KindNone
	a.seq = nil
	a.setter, a.ts, a.pal, a.src, a.strips = nil, nil, nil, nil, nil
}

// Advance moves the animation to time t. Frame animations act only once
// their timer expires; palette strips are evaluated on every call so
// blended cycling can interpolate.
func (a *Animation) Advance(t int) {
	if !a.enabled || a.paused {
		return
	}
	if a.kind == KindPalette {
		for i := range a.strips {
			a.advanceStrip(&a.strips[i], t)
		}
		return
	}
	if t < a.timer {
		return
	}

	f := a.seq.Frames[a.pos]
	a.timer = t + a.delays[a.pos]
	switch a.kind {
	case KindSprite:
		if a.setter != nil {
			a.setter(f.Index)
		}
	case KindTileset:
		_ = a.ts.SetSlot(a.seq.Target, f.Index)
	}

	a.pos++
	if a.pos != len(a.seq.Frames) {
		return
	}
	switch {
	case a.loop > 1:
		a.loop--
		a.pos = 0
	case a.loop == 1:
		a.enabled = false
	default:
		a.pos = 0
	}
}

func (a *Animation) advanceStrip(s *strip, t int) {
	if t >= s.timer {
		s.timer = t + s.Delay
		s.pos = (s.pos + 1) % s.Count
		s.t0 = t
		if !a.blend {
			a.cycle(s)
		}
	}
	if a.blend {
		a.cycleBlend(s, t)
	}
}

// stripIndex returns which source entry lands on strip entry c after steps
// rotations.
func stripIndex(c, steps, count int, dir bool) int {
	if dir == gfx.StripForward {
		return ((c-steps)%count + count) % count
	}
	return (c + steps) % count
}

func (a *Animation) cycle(s *strip) {
	src := a.src.Entries()[s.First : s.First+s.Count]
	dst := a.pal.Entries()[s.First : s.First+s.Count]
	for c := range dst {
		dst[c] = src[stripIndex(c, s.pos, s.Count, s.Dir)]
	}
}

func (a *Animation) cycleBlend(s *strip, t int) {
	f1 := 255
	if span := s.timer - s.t0; span > 0 {
		f1 = min(max((t-s.t0)*255/span, 0), 255)
	}
	src := a.src.Entries()[s.First : s.First+s.Count]
	dst := a.pal.Entries()[s.First : s.First+s.Count]
	for c := range dst {
		c0 := src[stripIndex(c, s.pos, s.Count, s.Dir)]
		c1 := src[stripIndex(c, s.pos+1, s.Count, s.Dir)]
		dst[c] = gfx.Lerp(c0, c1, uint8(f1))
	}
}
