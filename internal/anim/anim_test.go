package anim

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/gfx"
)

func mustSeq(t *testing.T, target int, frames ...gfx.Frame) *gfx.Sequence {
	t.Helper()
	s, err := gfx.NewSequence("seq", target, frames)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func testPalette(t *testing.T, n int) *gfx.Palette {
	t.Helper()
	p, err := gfx.NewPalette(n)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		_ = p.SetColor(i, gfx.RGB(uint8(i*30), uint8(255-i*30), uint8(i*7)))
	}
	return p
}

func TestSpriteAnimationLoopTwice(t *testing.T) {
	seq := mustSeq(t, 0, gfx.Frame{Index: 0, Delay: 10}, gfx.Frame{Index: 1, Delay: 10}, gfx.Frame{Index: 2, Delay: 10})
	var a Animation
	shown := -1
	applied := map[int]int{}
	if err := a.StartSprite(seq, 2, func(i int) { shown = i }); err != nil {
		t.Fatal(err)
	}
	for tm := 0; tm <= 80; tm++ {
		before := shown
		a.Advance(tm)
		if shown != before || tm == 0 {
			applied[tm] = shown
		}
		if tm == 0 && shown != 0 {
			t.Fatalf("t=0 shows %d want 0", shown)
		}
		if tm == 31 && (shown != 0 || a.Pos() != 1 || a.Loop() != 1) {
			t.Fatalf("t=31 shows %d pos %d loop %d", shown, a.Pos(), a.Loop())
		}
	}
	want := map[int]int{0: 0, 10: 1, 20: 2, 30: 0, 40: 1, 50: 2}
	if len(applied) != len(want) {
		t.Fatalf("applied %v want %v", applied, want)
	}
	for tm, f := range want {
		if applied[tm] != f {
			t.Fatalf("t=%d applied %d want %d (%v)", tm, applied[tm], f, applied)
		}
	}
	if a.Enabled() || shown != 2 {
		t.Fatalf("after two passes enabled=%v shown=%d", a.Enabled(), shown)
	}
}

func TestSpriteAnimationPause(t *testing.T) {
	seq := mustSeq(t, 0, gfx.Frame{Index: 4, Delay: 1}, gfx.Frame{Index: 5, Delay: 1})
	var a Animation
	shown := -1
	_ = a.StartSprite(seq, 0, func(i int) { shown = i })
	a.Advance(0)
	a.Pause()
	a.Advance(5)
	if shown != 4 {
		t.Fatalf("paused animation advanced to %d", shown)
	}
	a.Resume()
	a.Advance(6)
	if shown != 5 {
		t.Fatalf("resumed got %d want 5", shown)
	}
}

func TestSetDelayKeepsSequence(t *testing.T) {
	seq := mustSeq(t, 0, gfx.Frame{Index: 0, Delay: 10}, gfx.Frame{Index: 1, Delay: 10})
	var a Animation
	shown := -1
	_ = a.StartSprite(seq, 0, func(i int) { shown = i })
	if err := a.SetDelay(0, 3); err != nil {
		t.Fatal(err)
	}
	if err := a.SetDelay(2, 3); err == nil {
		t.Fatalf("frame 2 accepted")
	}
	a.Advance(0)
	a.Advance(3)
	if shown != 1 {
		t.Fatalf("shortened delay: shown %d want 1", shown)
	}
	if seq.Frames[0].Delay != 10 {
		t.Fatalf("sequence mutated: %d", seq.Frames[0].Delay)
	}
}

func TestTilesetAnimation(t *testing.T) {
	pal := testPalette(t, 4)
	ts, _ := gfx.NewTileset(3, 8, 8, pal, nil)
	seq := mustSeq(t, 1, gfx.Frame{Index: 2, Delay: 5}, gfx.Frame{Index: 3, Delay: 5})
	var a Animation
	if err := a.StartTileset(ts, seq); err != nil {
		t.Fatal(err)
	}
	a.Advance(0)
	if ts.Slot(1) != 1 {
		t.Fatalf("t=0 slot %d want 1", ts.Slot(1))
	}
	a.Advance(4)
	if ts.Slot(1) != 1 {
		t.Fatalf("t=4 slot %d want 1", ts.Slot(1))
	}
	a.Advance(5)
	a.Advance(10)
	if ts.Slot(1) != 1 || !a.Enabled() {
		t.Fatalf("t=10 slot %d enabled %v", ts.Slot(1), a.Enabled())
	}
	bad := mustSeq(t, 1, gfx.Frame{Index: 4, Delay: 5})
	if err := a.StartTileset(ts, bad); err == nil {
		t.Fatalf("tile 4 accepted")
	}
}

func TestPaletteCycleRoundTrip(t *testing.T) {
	pal := testPalette(t, 8)
	orig := pal.Clone()
	for _, dir := range []bool{gfx.StripForward, gfx.StripReverse} {
		_ = pal.CopyFrom(orig)
		seq, _ := gfx.NewColorSequence("c", []gfx.ColorStrip{{First: 2, Count: 4, Delay: 5, Dir: dir}})
		var a Animation
		if err := a.StartPalette(pal, seq, false); err != nil {
			t.Fatal(err)
		}
		a.Advance(0)
		if dir == gfx.StripForward {
			if pal.Color(2) != orig.Color(5) || pal.Color(3) != orig.Color(2) {
				t.Fatalf("forward step did not rotate right")
			}
		} else if pal.Color(2) != orig.Color(3) || pal.Color(5) != orig.Color(2) {
			t.Fatalf("reverse step did not rotate left")
		}
		for tm := 5; tm <= 15; tm += 5 {
			a.Advance(tm)
		}
		for i := 0; i < 8; i++ {
			if pal.Color(i) != orig.Color(i) {
				t.Fatalf("dir=%v entry %d got %08x want %08x", dir, i, pal.Color(i), orig.Color(i))
			}
		}
	}
}

func stripState(orig *gfx.Palette, first, count, steps int, dir bool) []gfx.Color {
	out := make([]gfx.Color, count)
	for c := range out {
		out[c] = orig.Color(first + stripIndex(c, steps, count, dir))
	}
	return out
}

func TestPaletteBlendBoundaries(t *testing.T) {
	pal := testPalette(t, 6)
	orig := pal.Clone()
	seq, _ := gfx.NewColorSequence("b", []gfx.ColorStrip{{First: 1, Count: 3, Delay: 10, Dir: gfx.StripForward}})
	var a Animation
	if err := a.StartPalette(pal, seq, true); err != nil {
		t.Fatal(err)
	}
	a.Advance(0) // step to state 1, t0=0, t1=10
	pre := stripState(orig, 1, 3, 1, gfx.StripForward)
	post := stripState(orig, 1, 3, 2, gfx.StripForward)
	for c := 0; c < 3; c++ {
		if pal.Color(1+c) != pre[c] {
			t.Fatalf("t0 entry %d got %08x want %08x", c, pal.Color(1+c), pre[c])
		}
	}
	prev := append([]gfx.Color(nil), pre...)
	for tm := 1; tm < 10; tm++ {
		a.Advance(tm)
		for c := 0; c < 3; c++ {
			got := pal.Color(1 + c)
			chans := [][3]uint8{
				{pre[c].R(), post[c].R(), got.R()},
				{pre[c].G(), post[c].G(), got.G()},
				{pre[c].B(), post[c].B(), got.B()},
			}
			last := [3]uint8{prev[c].R(), prev[c].G(), prev[c].B()}
			for k, ch := range chans {
				lo, hi := min(ch[0], ch[1]), max(ch[0], ch[1])
				if ch[2] < lo || ch[2] > hi {
					t.Fatalf("t=%d entry %d channel %d = %d outside [%d,%d]", tm, c, k, ch[2], lo, hi)
				}
				if ch[1] >= ch[0] && ch[2] < last[k] || ch[1] < ch[0] && ch[2] > last[k] {
					t.Fatalf("t=%d entry %d channel %d not monotonic", tm, c, k)
				}
			}
			prev[c] = got
		}
	}
	a.Advance(10)
	for c := 0; c < 3; c++ {
		if pal.Color(1+c) != post[c] {
			t.Fatalf("t1 entry %d got %08x want %08x", c, pal.Color(1+c), post[c])
		}
	}
	if pal.Color(0) != orig.Color(0) || pal.Color(4) != orig.Color(4) {
		t.Fatalf("entries outside the strip changed")
	}
}

func TestStartRejectsWrongKind(t *testing.T) {
	pal := testPalette(t, 4)
	frames := mustSeq(t, 0, gfx.Frame{Index: 0, Delay: 1})
	colors, _ := gfx.NewColorSequence("c", []gfx.ColorStrip{{First: 0, Count: 8, Delay: 1}})
	var a Animation
	if err := a.StartPalette(pal, frames, false); err != ErrWrongKind {
		t.Fatalf("frames as palette: %v", err)
	}
	if err := a.StartSprite(colors, 0, nil); err != ErrWrongKind {
		t.Fatalf("colors as sprite: %v", err)
	}
	if err := a.StartPalette(pal, colors, false); err == nil {
		t.Fatalf("8-entry strip on 4-entry palette accepted")
	}
	if a.Enabled() {
		t.Fatalf("failed start enabled the animation")
	}
}
