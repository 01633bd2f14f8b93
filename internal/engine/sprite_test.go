package engine

import (
	"errors"
	"image"
	"testing"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"
)

// testSpriteset has picture 0 "solid" (8x8 green) and picture 1 "half"
// (8x8, red left half, blue right half).
func testSpriteset(t *testing.T) *gfx.Spriteset {
	t.Helper()
	atlas, err := gfx.NewBitmap(16, 8, testPalette(t))
	if err != nil {
		t.Fatal(err)
	}
	atlas.Fill(image.Rect(0, 0, 8, 8), 3)
	atlas.Fill(image.Rect(8, 0, 12, 8), 1)
	atlas.Fill(image.Rect(12, 0, 16, 8), 2)
	ss, err := gfx.NewSpriteset(atlas, []gfx.SpriteEntry{
		{Name: "solid", X: 0, Y: 0, W: 8, H: 8},
		{Name: "half", X: 8, Y: 0, W: 8, H: 8},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ss
}

func spriteEngine(t *testing.T, n int, picture int) *Engine {
	t.Helper()
	e := newTestEngine(t)
	e.SetBGColor(black)
	ss := testSpriteset(t)
	for i := 0; i < n; i++ {
		if err := e.ConfigSprite(i, ss, gfx.FlagNone); err != nil {
			t.Fatal(err)
		}
		if err := e.SetSpritePicture(i, picture); err != nil {
			t.Fatal(err)
		}
	}
	return e
}

func expectPixels(t *testing.T, e *Engine, y int, want map[int]gfx.Color) {
	t.Helper()
	for x, c := range want {
		if got := px(e, x, y); got != c {
			t.Fatalf("pixel %d,%d got %08x want %08x", x, y, got, c)
		}
	}
}

func TestBackgroundSpriteUnderOpaqueLayer(t *testing.T) {
	e := spriteEngine(t, 1, 0)
	if err := e.EnableSpriteFlag(0, gfx.FlagBackground, true); err != nil {
		t.Fatal(err)
	}
	if err := e.SetSpritePosition(0, 4, 4); err != nil {
		t.Fatal(err)
	}
	if err := e.SetLayerTilemap(0, fillMap(t, testTileset(t), gfx.NewTile(1, 0))); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	if px(e, 5, 5) != red {
		t.Fatalf("got %08x want layer color", px(e, 5, 5))
	}
	if err := e.DisableLayer(0); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	if px(e, 5, 5) != green {
		t.Fatalf("got %08x want sprite once the layer is off", px(e, 5, 5))
	}
}

func TestSpriteFlipAndClip(t *testing.T) {
	e := spriteEngine(t, 1, 1)
	e.UpdateFrame(0)
	expectPixels(t, e, 0, map[int]gfx.Color{0: red, 3: red, 4: blue, 7: blue, 8: black})

	if err := e.SetSpritePosition(0, -2, 0); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	expectPixels(t, e, 3, map[int]gfx.Color{0: red, 1: red, 2: blue, 5: blue, 6: black})

	if err := e.SetSpriteFlags(0, gfx.FlagFlipX); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(2)
	expectPixels(t, e, 3, map[int]gfx.Color{0: blue, 1: blue, 2: red, 5: red, 6: black})

	if err := e.SetSpritePosition(0, 10, 12); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(3)
	expectPixels(t, e, 15, map[int]gfx.Color{9: black, 10: blue, 13: blue, 14: red, 15: red})
}

func TestSpriteRotate(t *testing.T) {
	e := spriteEngine(t, 1, 1)
	if err := e.SetSpriteFlags(0, gfx.FlagRotate); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	// rows of the screen walk columns of the picture
	expectPixels(t, e, 0, map[int]gfx.Color{0: red, 7: red})
	expectPixels(t, e, 5, map[int]gfx.Color{0: blue, 7: blue})
}

func TestSpriteScaling(t *testing.T) {
	e := spriteEngine(t, 1, 1)
	if err := e.SetSpriteScaling(0, 2, 2); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	expectPixels(t, e, 15, map[int]gfx.Color{0: red, 7: red, 8: blue, 15: blue})
	st, err := e.SpriteState(0)
	if err != nil {
		t.Fatal(err)
	}
	if st.W != 16 || st.H != 16 {
		t.Fatalf("scaled size %dx%d", st.W, st.H)
	}

	if err := e.EnableSpriteFlag(0, gfx.FlagFlipX, true); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	expectPixels(t, e, 0, map[int]gfx.Color{0: blue, 7: blue, 8: red, 15: red})

	if err := e.SetSpriteFlags(0, gfx.FlagNone); err != nil {
		t.Fatal(err)
	}
	if err := e.SetSpritePosition(0, -4, 0); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(2)
	expectPixels(t, e, 0, map[int]gfx.Color{0: red, 3: red, 4: blue, 11: blue, 12: black})

	if err := e.ResetSpriteScaling(0); err != nil {
		t.Fatal(err)
	}
	if err := e.SetSpriteScaling(0, 0, 1); !errors.Is(err, ErrWrongSize) {
		t.Fatalf("got %v want ErrWrongSize", err)
	}
}

func TestSpriteBlend(t *testing.T) {
	e := spriteEngine(t, 1, 0)
	e.SetBGColor(blue)
	if err := e.SetSpriteBlendMode(0, gfx.BlendAdd); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	if got, want := px(e, 1, 1), gfx.RGB(0, 255, 255); got != want {
		t.Fatalf("got %08x want %08x", got, want)
	}
}

func TestSpriteCollision(t *testing.T) {
	e := spriteEngine(t, 4, 0)
	place := func(n, x, y int) {
		t.Helper()
		if err := e.SetSpritePosition(n, x, y); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := e.EnableSpriteCollision(i, true); err != nil {
			t.Fatal(err)
		}
	}
	place(0, 0, 0)
	place(1, 4, 0)
	place(2, 0, 8)
	place(3, 2, 2) // overlaps 0 and 1 without tracking
	check := func(want ...bool) {
		t.Helper()
		for i, w := range want {
			if got := e.SpriteCollision(i); got != w {
				t.Fatalf("sprite %d collision got %v want %v", i, got, w)
			}
		}
	}

	e.UpdateFrame(0)
	check(true, true, false, false)

	// the result does not depend on draw order
	if err := e.SetFirstSprite(1); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	check(true, true, false, false)

	if err := e.ClearSpriteCollision(0); err != nil {
		t.Fatal(err)
	}
	check(false, true, false, false)

	// flags only live for the frame that set them
	place(1, 8, 8)
	e.UpdateFrame(2)
	check(false, false, false, false)

	// switching pictures keeps collision tracking
	if err := e.SetSpritePicture(0, 1); err != nil {
		t.Fatal(err)
	}
	place(0, 0, 0)
	place(2, 4, 0)
	e.UpdateFrame(3)
	check(true, false, true, false)
}

func TestBackgroundSpriteCollision(t *testing.T) {
	e := spriteEngine(t, 2, 0)
	for i := 0; i < 2; i++ {
		if err := e.EnableSpriteCollision(i, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.SetSpriteFlags(1, gfx.FlagBackground); err != nil {
		t.Fatal(err)
	}
	// same columns on different lines
	if err := e.SetSpritePosition(1, 0, 8); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	if e.SpriteCollision(0) || e.SpriteCollision(1) {
		t.Fatalf("stacked sprites collided: %v %v", e.SpriteCollision(0), e.SpriteCollision(1))
	}

	if err := e.SetSpritePosition(1, 4, 4); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	if !e.SpriteCollision(0) || !e.SpriteCollision(1) {
		t.Fatalf("overlap missed: %v %v", e.SpriteCollision(0), e.SpriteCollision(1))
	}
}

func TestScaledSpriteCollision(t *testing.T) {
	e := spriteEngine(t, 2, 0)
	for i := 0; i < 2; i++ {
		if err := e.EnableSpriteCollision(i, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.SetSpritePosition(1, 12, 12); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(0)
	if e.SpriteCollision(0) || e.SpriteCollision(1) {
		t.Fatalf("apart got %v %v", e.SpriteCollision(0), e.SpriteCollision(1))
	}

	// doubled, sprite 0 reaches into sprite 1
	if err := e.SetSpriteScaling(0, 2, 2); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	if !e.SpriteCollision(0) || !e.SpriteCollision(1) {
		t.Fatalf("scaled overlap got %v %v", e.SpriteCollision(0), e.SpriteCollision(1))
	}
}

func TestSpriteMasking(t *testing.T) {
	e := spriteEngine(t, 1, 0)
	e.SetBGColor(blue)
	e.SetSpritesMaskRegion(2, 5)
	e.UpdateFrame(0)
	if px(e, 0, 3) != green {
		t.Fatalf("unmasked sprite hidden")
	}
	if err := e.EnableSpriteMasking(0, true); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	for y, want := range map[int]gfx.Color{1: green, 2: blue, 5: blue, 6: green} {
		if got := px(e, 0, y); got != want {
			t.Fatalf("line %d got %08x want %08x", y, got, want)
		}
	}
}

func TestWorldSprite(t *testing.T) {
	e := spriteEngine(t, 1, 0)
	if err := e.SetSpriteWorldPosition(0, 20, 5); err != nil {
		t.Fatal(err)
	}
	e.SetWorldPosition(15, 0)
	e.UpdateFrame(0)
	if x, y, err := e.SpritePosition(0); err != nil || x != 5 || y != 5 {
		t.Fatalf("got %d,%d,%v want 5,5", x, y, err)
	}
	if px(e, 5, 5) != green || px(e, 4, 5) != black {
		t.Fatalf("sprite not drawn at its world position")
	}
	e.SetWorldPosition(16, 0)
	e.UpdateFrame(1)
	if px(e, 4, 5) != green {
		t.Fatalf("sprite did not follow the world")
	}
	// screen addressing leaves world space
	if err := e.SetSpritePosition(0, 0, 0); err != nil {
		t.Fatal(err)
	}
	e.SetWorldPosition(0, 0)
	e.UpdateFrame(2)
	if x, y, _ := e.SpritePosition(0); x != 0 || y != 0 {
		t.Fatalf("got %d,%d want 0,0", x, y)
	}
}

func TestWorldSpriteReenabled(t *testing.T) {
	e := spriteEngine(t, 1, 0)
	if err := e.SetSpriteWorldPosition(0, 20, 5); err != nil {
		t.Fatal(err)
	}
	e.SetWorldPosition(15, 0)
	e.UpdateFrame(0)
	if err := e.DisableSprite(0); err != nil {
		t.Fatal(err)
	}
	e.SetWorldPosition(18, 0)
	e.UpdateFrame(1)

	if err := e.SetSpriteSet(0, testSpriteset(t)); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(2)
	if x, y, err := e.SpritePosition(0); err != nil || x != 2 || y != 5 {
		t.Fatalf("got %d,%d,%v want 2,5", x, y, err)
	}
	expectPixels(t, e, 5, map[int]gfx.Color{1: black, 2: green, 9: green, 10: black})
}

func TestSpriteAnimation(t *testing.T) {
	e := spriteEngine(t, 1, 0)
	seq, err := gfx.NewSequence("walk", 0, []gfx.Frame{{Index: 0, Delay: 10}, {Index: 1, Delay: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetSpriteAnimation(0, seq, 1); err != nil {
		t.Fatal(err)
	}
	e.BeginFrame(0)
	if e.SpritePicture(0) != 0 || !e.AnimationState(0) {
		t.Fatalf("t=0 picture %d", e.SpritePicture(0))
	}
	e.BeginFrame(10)
	if e.SpritePicture(0) != 1 {
		t.Fatalf("t=10 picture %d", e.SpritePicture(0))
	}
	if e.AnimationState(0) {
		t.Fatalf("single pass still running")
	}

	if err := e.SetSpriteAnimation(0, seq, 0); err != nil {
		t.Fatal(err)
	}
	if err := e.SetAnimationDelay(0, 1, 100); err != nil {
		t.Fatal(err)
	}
	e.BeginFrame(20) // frame 0 until 30
	e.BeginFrame(30) // frame 1 until 130
	e.BeginFrame(40)
	if e.SpritePicture(0) != 1 {
		t.Fatalf("t=40 picture %d", e.SpritePicture(0))
	}
	e.BeginFrame(130)
	if e.SpritePicture(0) != 0 {
		t.Fatalf("t=130 picture %d", e.SpritePicture(0))
	}
	if seq.Frames[1].Delay != 10 {
		t.Fatalf("sequence mutated: %d", seq.Frames[1].Delay)
	}

	if err := e.PauseSpriteAnimation(0); err != nil {
		t.Fatal(err)
	}
	e.BeginFrame(500)
	if e.SpritePicture(0) != 0 {
		t.Fatalf("paused animation advanced")
	}
	if err := e.ResumeSpriteAnimation(0); err != nil {
		t.Fatal(err)
	}
	e.BeginFrame(501)
	if e.SpritePicture(0) != 1 {
		t.Fatalf("resumed animation did not advance")
	}
	if err := e.DisableSpriteAnimation(0); err != nil {
		t.Fatal(err)
	}

	bad, _ := gfx.NewSequence("bad", 0, []gfx.Frame{{Index: 5, Delay: 1}})
	if err := e.SetSpriteAnimation(0, bad, 0); !errors.Is(err, ErrIdxPicture) {
		t.Fatalf("got %v want ErrIdxPicture", err)
	}
	cycle, _ := gfx.NewColorSequence("c", []gfx.ColorStrip{{First: 0, Count: 2, Delay: 1}})
	if err := e.SetSpriteAnimation(0, cycle, 0); !errors.Is(err, ErrRefSequence) {
		t.Fatalf("got %v want ErrRefSequence", err)
	}
	if err := e.SetAnimationDelay(0, 0, 1); !errors.Is(err, ErrIdxAnimation) {
		t.Fatalf("delay on disabled animation got %v", err)
	}
}

func TestSpritePoolAndOrder(t *testing.T) {
	e := newTestEngine(t)
	e.SetBGColor(black)
	ss := testSpriteset(t)
	if i := e.GetAvailableSprite(); i != 0 {
		t.Fatalf("available got %d", i)
	}
	for i, pic := range []int{0, 1, 1} {
		if err := e.ConfigSprite(i, ss, gfx.FlagNone); err != nil {
			t.Fatal(err)
		}
		if err := e.SetSpritePicture(i, pic); err != nil {
			t.Fatal(err)
		}
	}
	if i := e.GetAvailableSprite(); i != 3 {
		t.Fatalf("available got %d want 3", i)
	}
	same := func(want ...int) {
		t.Helper()
		got := e.SpriteOrder()
		if len(got) != len(want) {
			t.Fatalf("order %v want %v", got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("order %v want %v", got, want)
			}
		}
	}
	same(0, 1, 2)
	if err := e.SetNextSprite(2, 0); err != nil {
		t.Fatal(err)
	}
	same(1, 2, 0)
	if err := e.SetFirstSprite(0); err != nil {
		t.Fatal(err)
	}
	same(0, 1, 2)
	if err := e.DisableSprite(1); err != nil {
		t.Fatal(err)
	}
	same(0, 2)
	if i := e.GetAvailableSprite(); i != 1 {
		t.Fatalf("available got %d want 1", i)
	}
	if err := e.SetNextSprite(0, 1); !errors.Is(err, ErrRefSpriteset) {
		t.Fatalf("linking a disabled sprite got %v", err)
	}

	// later sprites draw on top
	e.UpdateFrame(0)
	if px(e, 0, 0) != red {
		t.Fatalf("got %08x want sprite 2 on top", px(e, 0, 0))
	}
	if err := e.SetFirstSprite(2); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	if px(e, 0, 0) != green {
		t.Fatalf("got %08x want sprite 0 on top", px(e, 0, 0))
	}

	// re-enabling keeps the slot's spriteset
	if err := e.SetSpriteSet(1, ss); err != nil {
		t.Fatal(err)
	}
	same(2, 0, 1)
}

func TestSpritePictureAndPivot(t *testing.T) {
	e := spriteEngine(t, 1, 0)
	if err := e.SetSpritePictureByName(0, "half"); err != nil {
		t.Fatal(err)
	}
	if e.SpritePicture(0) != 1 {
		t.Fatalf("picture got %d want 1", e.SpritePicture(0))
	}
	if err := e.SetSpritePictureByName(0, "nope"); !errors.Is(err, ErrIdxPicture) {
		t.Fatalf("got %v want ErrIdxPicture", err)
	}
	if err := e.SetSpritePicture(0, 2); !errors.Is(err, ErrIdxPicture) || e.SpritePicture(0) != 1 {
		t.Fatalf("got %v picture %d", err, e.SpritePicture(0))
	}

	if err := e.SetSpritePivot(0, 0.5, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.SetSpritePosition(0, 8, 8); err != nil {
		t.Fatal(err)
	}
	st, err := e.SpriteState(0)
	if err != nil {
		t.Fatal(err)
	}
	if st.X != 4 || st.Y != 0 || !st.Enabled || st.Picture != 1 {
		t.Fatalf("state %+v", st)
	}
	e.UpdateFrame(0)
	expectPixels(t, e, 7, map[int]gfx.Color{3: black, 4: red, 8: blue, 12: black})
	expectPixels(t, e, 8, map[int]gfx.Color{4: black})

	pal, _ := gfx.PaletteOf(black, green, green)
	if err := e.SetSpritePalette(0, pal); err != nil {
		t.Fatal(err)
	}
	e.UpdateFrame(1)
	expectPixels(t, e, 0, map[int]gfx.Color{4: green, 8: green})
	if err := e.SetSpritePalette(0, nil); err != nil {
		t.Fatal(err)
	}
	if e.SpritePalette(0) == pal {
		t.Fatalf("palette not restored")
	}
}
