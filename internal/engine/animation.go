package engine

import (
	"errors"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/anim"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"
)

func (e *Engine) animation(op string, n int) (*anim.Animation, error) {
	if n < 0 || n >= len(e.anims) {
		return nil, e.fail(op, n, ErrIdxAnimation)
	}
	return &e.anims[n], nil
}

// SetSpriteAnimation plays seq on sprite n, loop times (0 = forever).
// Every frame must name a picture of the sprite's spriteset.
func (e *Engine) SetSpriteAnimation(n int, seq *gfx.Sequence, loop int) error {
	s, err := e.sprite("SetSpriteAnimation", n)
	if err != nil {
		return err
	}
	if seq == nil || seq.IsColorCycle() {
		return e.fail("SetSpriteAnimation", n, ErrRefSequence)
	}
	if !s.spriteset.Valid() {
		return e.fail("SetSpriteAnimation", n, ErrRefSpriteset)
	}
	for _, f := range seq.Frames {
		if f.Index < 0 || f.Index >= s.spriteset.Len() {
			return e.fail("SetSpriteAnimation", n, ErrIdxPicture)
		}
	}
	if err := s.anim.StartSprite(seq, loop, func(pic int) { e.setPicture(s, pic) }); err != nil {
		return e.fail("SetSpriteAnimation", n, ErrRefSequence)
	}
	return e.ok()
}

// AnimationState reports whether sprite n has an animation still running.
func (e *Engine) AnimationState(n int) bool {
	s, err := e.sprite("AnimationState", n)
	if err != nil {
		return false
	}
	e.lastErr = ErrOK
	return s.anim.Enabled()
}

func (e *Engine) PauseSpriteAnimation(n int) error {
	s, err := e.sprite("PauseSpriteAnimation", n)
	if err != nil {
		return err
	}
	s.anim.Pause()
	return e.ok()
}

func (e *Engine) ResumeSpriteAnimation(n int) error {
	s, err := e.sprite("ResumeSpriteAnimation", n)
	if err != nil {
		return err
	}
	s.anim.Resume()
	return e.ok()
}

// DisableSpriteAnimation stops sprite n's animation on its current picture.
func (e *Engine) DisableSpriteAnimation(n int) error {
	s, err := e.sprite("DisableSpriteAnimation", n)
	if err != nil {
		return err
	}
	s.anim.Disable()
	return e.ok()
}

// SetAnimationDelay changes the delay of one frame of sprite n's running
// animation. The sequence itself is not modified.
func (e *Engine) SetAnimationDelay(n, frame, delay int) error {
	s, err := e.sprite("SetAnimationDelay", n)
	if err != nil {
		return err
	}
	if err := s.anim.SetDelay(frame, delay); err != nil {
		return e.fail("SetAnimationDelay", n, ErrIdxAnimation)
	}
	return e.ok()
}

// SetPaletteAnimation color-cycles pal with seq in slot i. Starting the
// sequence already running in that slot is a no-op.
func (e *Engine) SetPaletteAnimation(i int, pal *gfx.Palette, seq *gfx.Sequence, blend bool) error {
	a, err := e.animation("SetPaletteAnimation", i)
	if err != nil {
		return err
	}
	if !pal.Valid() {
		return e.fail("SetPaletteAnimation", i, ErrRefPalette)
	}
	if seq == nil {
		return e.fail("SetPaletteAnimation", i, ErrRefSequence)
	}
	if a.Enabled() && a.Sequence() == seq && a.Palette() == pal {
		return e.ok()
	}
	if err := a.StartPalette(pal, seq, blend); err != nil {
		if errors.Is(err, anim.ErrFrame) {
			return e.fail("SetPaletteAnimation", i, ErrWrongSize)
		}
		return e.fail("SetPaletteAnimation", i, ErrRefSequence)
	}
	e.running.append(i)
	return e.ok()
}

// SetPaletteAnimationSource replaces the colors slot i cycles from.
func (e *Engine) SetPaletteAnimationSource(i int, pal *gfx.Palette) error {
	a, err := e.animation("SetPaletteAnimationSource", i)
	if err != nil {
		return err
	}
	if !pal.Valid() {
		return e.fail("SetPaletteAnimationSource", i, ErrRefPalette)
	}
	if a.Kind() != anim.KindPalette {
		return e.fail("SetPaletteAnimationSource", i, ErrRefSequence)
	}
	if err := a.SetSource(pal); err != nil {
		return e.fail("SetPaletteAnimationSource", i, ErrWrongSize)
	}
	return e.ok()
}

// PaletteAnimationState reports whether slot i is cycling.
func (e *Engine) PaletteAnimationState(i int) bool {
	a, err := e.animation("PaletteAnimationState", i)
	if err != nil {
		return false
	}
	e.lastErr = ErrOK
	return a.Enabled()
}

func (e *Engine) DisablePaletteAnimation(i int) error {
	a, err := e.animation("DisablePaletteAnimation", i)
	if err != nil {
		return err
	}
	a.Disable()
	e.running.unlink(i)
	return e.ok()
}

// GetAvailableAnimation returns the first idle animation slot, or -1.
func (e *Engine) GetAvailableAnimation() int {
	for i := range e.anims {
		if !e.anims[i].Enabled() {
			e.lastErr = ErrOK
			return i
		}
	}
	e.lastErr = ErrOutOfMemory
	return -1
}
