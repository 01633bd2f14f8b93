package engine

import (
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/anim"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"
)

type rect struct{ x1, y1, x2, y2 int }

// Sprite is one slot of the sprite pool.
type Sprite struct {
	spriteset *gfx.Spriteset
	palette   *gfx.Palette
	info      gfx.SpriteEntry
	picture   int

	x, y   int // screen position of the pivot
	wx, wy int // world position of the pivot
	sx, sy float64
	px, py float64 // normalized pivot

	mode       Mode
	incx, incy fix
	src, dst   rect // src is in fixed point when scaling

	flags     gfx.Flags
	blendMode gfx.BlendMode
	blend     *gfx.BlendTable

	ok          bool
	doCollision bool
	collision   bool
	worldSpace  bool
	dirty       bool

	anim anim.Animation
}

func (s *Sprite) reset() {
	*s = Sprite{sx: 1, sy: 1}
}

// SpriteState is a read-only snapshot of one sprite.
type SpriteState struct {
	X, Y      int // top-left on screen after pivot, before clipping
	W, H      int // on-screen size
	Picture   int
	Flags     gfx.Flags
	Enabled   bool
	Collision bool
	Palette   *gfx.Palette
	Spriteset *gfx.Spriteset
}

func (e *Engine) sprite(op string, n int) (*Sprite, error) {
	if n < 0 || n >= len(e.sprites) {
		return nil, e.fail(op, n, ErrIdxSprite)
	}
	return &e.sprites[n], nil
}

// update recomputes the source and destination rectangles.
func (e *Engine) updateSprite(s *Sprite) {
	w, h := s.info.W, s.info.H
	if s.mode == ModeScaling {
		dw := int(float64(w) * s.sx)
		dh := int(float64(h) * s.sy)
		x := s.x - int(float64(dw)*s.px)
		y := s.y - int(float64(dh)*s.py)
		s.dst = rect{x, y, x + dw, y + dh}
		s.src = rect{0, 0, int(int2fix(w)), int(int2fix(h))}
		s.incx, s.incy = 0, 0
		if dw > 0 {
			s.incx = int2fix(w) / fix(dw)
		}
		if dh > 0 {
			s.incy = int2fix(h) / fix(dh)
		}
		if s.dst.x1 < 0 {
			s.src.x1 = int(fix(-s.dst.x1) * s.incx)
			s.dst.x1 = 0
		}
	} else {
		x := s.x - int(float64(w)*s.px)
		y := s.y - int(float64(h)*s.py)
		s.dst = rect{x, y, x + w, y + h}
		s.src = rect{0, 0, w, h}
		if s.dst.x1 < 0 {
			s.src.x1 = -s.dst.x1
			s.dst.x1 = 0
		}
	}
	s.dst.x2 = min(s.dst.x2, e.width)
}

// updateSpriteWorld moves a world-space sprite with the world position.
func (e *Engine) updateSpriteWorld(s *Sprite) {
	if !s.worldSpace || (!s.dirty && !e.world.dirty) {
		return
	}
	s.x = s.wx - e.world.x
	s.y = s.wy - e.world.y
	e.updateSprite(s)
	s.dirty = false
}

func (e *Engine) spriteCovers(s *Sprite, line int) bool {
	if line < s.dst.y1 || line >= s.dst.y2 || s.dst.x2 <= s.dst.x1 {
		return false
	}
	if s.flags&gfx.FlagMasked != 0 && line >= e.mask.top && line <= e.mask.bottom {
		return false
	}
	return true
}

// drawSprite renders sprite n's part of line and records collisions.
func (e *Engine) drawSprite(n int, scan []gfx.Color, line int) {
	s := &e.sprites[n]
	bm := s.spriteset.Bitmap()
	pix := bm.Pix()
	pal := s.palette.Entries()
	w := s.dst.x2 - s.dst.x1
	dst := scan[s.dst.x1:s.dst.x2]
	var coll []int32
	if s.doCollision {
		coll = e.collision[s.dst.x1:s.dst.x2]
	}

	if s.mode == ModeScaling {
		srcx := fix(s.src.x1)
		srcy := fix(s.src.y1) + fix(line-s.dst.y1)*s.incy
		step := s.incx
		if s.flags&gfx.FlagFlipX != 0 {
			srcx = int2fix(s.info.W) - 1 - srcx
			step = -step
		}
		if s.flags&gfx.FlagFlipY != 0 {
			srcy = int2fix(s.info.H) - 1 - srcy
		}
		base := bm.Offset(s.info.X, s.info.Y+fix2int(srcy))
		blitScaled(pix, base, srcx, step, w, pal, dst, s.blend)
		if coll != nil {
			for x := range coll {
				if pix[base+fix2int(srcx)] != 0 {
					e.collide(n, coll, x)
				}
				srcx += step
			}
		}
		return
	}

	sc := tilescan{
		w: s.info.W, h: s.info.H,
		srcx: s.src.x1, srcy: s.src.y1 + line - s.dst.y1,
		dx: 1, stride: bm.Pitch(),
	}
	if f := transformFlags(s.flags, s.info.W, s.info.H); f != 0 {
		sc.flip(f)
	}
	start := bm.Offset(s.info.X+sc.srcx, s.info.Y+sc.srcy)
	blit(pix, start, sc.dx, w, pal, dst, s.blend)
	if coll != nil {
		i := start
		for x := range coll {
			if pix[i] != 0 {
				e.collide(n, coll, x)
			}
			i += sc.dx
		}
	}
}

// collide records sprite n at buffer position x, flagging both sprites when
// another one already drew there on this line.
func (e *Engine) collide(n int, coll []int32, x int) {
	if other := coll[x]; other >= 0 && int(other) != n {
		e.sprites[n].collision = true
		e.sprites[other].collision = true
	}
	coll[x] = int32(n)
}

func (e *Engine) warnRotate(n int, s *Sprite) {
	if s.flags&gfx.FlagRotate != 0 && s.info.W != s.info.H {
		e.log.Warn("rotate ignored on non-square sprite", "sprite", n, "w", s.info.W, "h", s.info.H)
	}
}

// ConfigSprite binds spriteset ss to sprite n, enables it and sets flags.
func (e *Engine) ConfigSprite(n int, ss *gfx.Spriteset, flags gfx.Flags) error {
	if err := e.SetSpriteSet(n, ss); err != nil {
		return err
	}
	return e.SetSpriteFlags(n, flags)
}

// SetSpriteSet binds spriteset ss showing picture 0 with the spriteset
// palette, and enables the sprite.
func (e *Engine) SetSpriteSet(n int, ss *gfx.Spriteset) error {
	s, err := e.sprite("SetSpriteSet", n)
	if err != nil {
		return err
	}
	if !ss.Valid() || !ss.Palette().Valid() {
		return e.fail("SetSpriteSet", n, ErrRefSpriteset)
	}
	s.spriteset = ss
	s.palette = ss.Palette()
	s.picture = 0
	s.info, _ = ss.Entry(0)
	s.ok = true
	s.dirty = s.worldSpace
	e.active.append(n)
	e.updateSprite(s)
	return e.ok()
}

// SetSpriteFlags replaces every flag of sprite n.
func (e *Engine) SetSpriteFlags(n int, flags gfx.Flags) error {
	s, err := e.sprite("SetSpriteFlags", n)
	if err != nil {
		return err
	}
	s.flags = flags
	e.warnRotate(n, s)
	return e.ok()
}

// EnableSpriteFlag sets or clears some flags of sprite n.
func (e *Engine) EnableSpriteFlag(n int, flag gfx.Flags, enable bool) error {
	s, err := e.sprite("EnableSpriteFlag", n)
	if err != nil {
		return err
	}
	if enable {
		s.flags |= flag
	} else {
		s.flags &^= flag
	}
	e.warnRotate(n, s)
	return e.ok()
}

// SetSpritePivot sets the anchor (0..1 of the sprite size) the position
// refers to. The default is the top-left corner.
func (e *Engine) SetSpritePivot(n int, px, py float64) error {
	s, err := e.sprite("SetSpritePivot", n)
	if err != nil {
		return err
	}
	s.px, s.py = px, py
	e.updateSprite(s)
	return e.ok()
}

// SetSpritePosition places sprite n in screen space.
func (e *Engine) SetSpritePosition(n, x, y int) error {
	s, err := e.sprite("SetSpritePosition", n)
	if err != nil {
		return err
	}
	s.x, s.y = x, y
	s.worldSpace = false
	e.updateSprite(s)
	return e.ok()
}

// SetSpriteWorldPosition places sprite n in world space; its screen
// position follows SetWorldPosition.
func (e *Engine) SetSpriteWorldPosition(n, x, y int) error {
	s, err := e.sprite("SetSpriteWorldPosition", n)
	if err != nil {
		return err
	}
	s.wx, s.wy = x, y
	s.worldSpace = true
	s.dirty = true
	return e.ok()
}

// SpritePosition returns the screen position of sprite n's pivot.
func (e *Engine) SpritePosition(n int) (x, y int, err error) {
	s, err := e.sprite("SpritePosition", n)
	if err != nil {
		return 0, 0, err
	}
	e.updateSpriteWorld(s)
	return s.x, s.y, e.ok()
}

func (e *Engine) setPicture(s *Sprite, picture int) bool {
	info, ok := s.spriteset.Entry(picture)
	if !ok {
		return false
	}
	s.picture = picture
	s.info = info
	e.updateSprite(s)
	return true
}

// SetSpritePicture shows picture i of the sprite's spriteset.
func (e *Engine) SetSpritePicture(n, picture int) error {
	s, err := e.sprite("SetSpritePicture", n)
	if err != nil {
		return err
	}
	if !s.spriteset.Valid() {
		return e.fail("SetSpritePicture", n, ErrRefSpriteset)
	}
	if !e.setPicture(s, picture) {
		return e.fail("SetSpritePicture", n, ErrIdxPicture)
	}
	e.warnRotate(n, s)
	return e.ok()
}

// SetSpritePictureByName shows the named picture.
func (e *Engine) SetSpritePictureByName(n int, name string) error {
	s, err := e.sprite("SetSpritePictureByName", n)
	if err != nil {
		return err
	}
	if !s.spriteset.Valid() {
		return e.fail("SetSpritePictureByName", n, ErrRefSpriteset)
	}
	i := s.spriteset.FindSprite(name)
	if i < 0 {
		return e.fail("SetSpritePictureByName", n, ErrIdxPicture)
	}
	return e.SetSpritePicture(n, i)
}

// SpritePicture returns the picture sprite n shows, or -1.
func (e *Engine) SpritePicture(n int) int {
	s, err := e.sprite("SpritePicture", n)
	if err != nil {
		return -1
	}
	e.lastErr = ErrOK
	return s.picture
}

// SetSpritePalette overrides the spriteset palette; nil restores it.
func (e *Engine) SetSpritePalette(n int, pal *gfx.Palette) error {
	s, err := e.sprite("SetSpritePalette", n)
	if err != nil {
		return err
	}
	if pal == nil {
		if !s.spriteset.Valid() {
			return e.fail("SetSpritePalette", n, ErrRefSpriteset)
		}
		pal = s.spriteset.Palette()
	}
	if !pal.Valid() {
		return e.fail("SetSpritePalette", n, ErrRefPalette)
	}
	s.palette = pal
	return e.ok()
}

// SpritePalette returns the palette sprite n draws with.
func (e *Engine) SpritePalette(n int) *gfx.Palette {
	s, err := e.sprite("SpritePalette", n)
	if err != nil {
		return nil
	}
	e.lastErr = ErrOK
	return s.palette
}

func (e *Engine) SetSpriteBlendMode(n int, mode gfx.BlendMode) error {
	s, err := e.sprite("SetSpriteBlendMode", n)
	if err != nil {
		return err
	}
	s.blendMode = mode
	s.blend = gfx.Table(mode)
	return e.ok()
}

// SetSpriteScaling draws sprite n magnified by sx, sy.
func (e *Engine) SetSpriteScaling(n int, sx, sy float64) error {
	s, err := e.sprite("SetSpriteScaling", n)
	if err != nil {
		return err
	}
	if sx <= 0 || sy <= 0 {
		return e.fail("SetSpriteScaling", n, ErrWrongSize)
	}
	s.sx, s.sy = sx, sy
	s.mode = ModeScaling
	e.updateSprite(s)
	return e.ok()
}

func (e *Engine) ResetSpriteScaling(n int) error {
	s, err := e.sprite("ResetSpriteScaling", n)
	if err != nil {
		return err
	}
	s.sx, s.sy = 1, 1
	s.mode = ModePlain
	e.updateSprite(s)
	return e.ok()
}

// EnableSpriteCollision turns per-pixel collision tracking on or off.
func (e *Engine) EnableSpriteCollision(n int, enable bool) error {
	s, err := e.sprite("EnableSpriteCollision", n)
	if err != nil {
		return err
	}
	s.doCollision = enable
	if !enable {
		s.collision = false
	}
	return e.ok()
}

// SpriteCollision reports whether sprite n overlapped another tracked
// sprite since the frame began or the flag was last cleared.
func (e *Engine) SpriteCollision(n int) bool {
	s, err := e.sprite("SpriteCollision", n)
	if err != nil {
		return false
	}
	e.lastErr = ErrOK
	return s.collision
}

func (e *Engine) ClearSpriteCollision(n int) error {
	s, err := e.sprite("ClearSpriteCollision", n)
	if err != nil {
		return err
	}
	s.collision = false
	return e.ok()
}

// EnableSpriteMasking hides sprite n inside the mask region.
func (e *Engine) EnableSpriteMasking(n int, enable bool) error {
	return e.EnableSpriteFlag(n, gfx.FlagMasked, enable)
}

// DisableSprite removes sprite n from drawing and stops its animation.
// The slot keeps its spriteset for a later SetSpriteSet.
func (e *Engine) DisableSprite(n int) error {
	s, err := e.sprite("DisableSprite", n)
	if err != nil {
		return err
	}
	s.ok = false
	s.collision = false
	s.anim.Disable()
	e.active.unlink(n)
	return e.ok()
}

// GetAvailableSprite returns the first disabled sprite slot, or -1.
func (e *Engine) GetAvailableSprite() int {
	for i := range e.sprites {
		if !e.sprites[i].ok {
			e.lastErr = ErrOK
			return i
		}
	}
	e.lastErr = ErrOutOfMemory
	return -1
}

// SetFirstSprite makes sprite n draw first (below all other sprites).
func (e *Engine) SetFirstSprite(n int) error {
	s, err := e.sprite("SetFirstSprite", n)
	if err != nil {
		return err
	}
	if !s.ok {
		return e.fail("SetFirstSprite", n, ErrRefSpriteset)
	}
	e.active.pushFront(n)
	return e.ok()
}

// SetNextSprite makes sprite next draw right after sprite n.
func (e *Engine) SetNextSprite(n, next int) error {
	s, err := e.sprite("SetNextSprite", n)
	if err != nil {
		return err
	}
	t, err := e.sprite("SetNextSprite", next)
	if err != nil {
		return err
	}
	if !s.ok || !t.ok {
		return e.fail("SetNextSprite", next, ErrRefSpriteset)
	}
	e.active.insertAfter(n, next)
	return e.ok()
}

// SpriteOrder returns the enabled sprites in draw order.
func (e *Engine) SpriteOrder() []int {
	var out []int
	e.active.each(func(i int) { out = append(out, i) })
	return out
}

// SpriteState returns a snapshot of sprite n.
func (e *Engine) SpriteState(n int) (SpriteState, error) {
	s, err := e.sprite("SpriteState", n)
	if err != nil {
		return SpriteState{}, err
	}
	e.updateSpriteWorld(s)
	st := SpriteState{
		Picture:   s.picture,
		Flags:     s.flags,
		Enabled:   s.ok,
		Collision: s.collision,
		Palette:   s.palette,
		Spriteset: s.spriteset,
		W:         s.info.W,
		H:         s.info.H,
	}
	if s.mode == ModeScaling {
		st.W, st.H = int(float64(s.info.W)*s.sx), int(float64(s.info.H)*s.sy)
	}
	st.X = s.x - int(float64(st.W)*s.px)
	st.Y = s.y - int(float64(st.H)*s.py)
	return st, e.ok()
}
