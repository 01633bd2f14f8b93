package gfx

import "fmt"

// Frame is one step of a sprite or tile animation: the picture or tile id to
// show and how long to hold it.
type Frame struct {
	Index int
	Delay int
}

// Strip cycling directions.
const (
	StripReverse = false // rotate left
	StripForward = true  // rotate right
)

// ColorStrip is a contiguous palette range rotated one entry every Delay
// time units.
type ColorStrip struct {
	First int
	Count int
	Delay int
	Dir   bool
}

// Sequence is an immutable animation script. Frame sequences drive sprite
// pictures or tileset slots; strip sequences drive palette color cycling.
// Running animations keep their own position, never mutating the sequence.
type Sequence struct {
	Name string
	// Target is the animated tile id for tileset sequences.
	Target int
	Frames []Frame
	Strips []ColorStrip
}

// NewSequence builds a frame sequence. target is only meaningful for tile
// animations.
func NewSequence(name string, target int, frames []Frame) (*Sequence, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("sequence %q: no frames: %w", name, ErrSize)
	}
	for i, f := range frames {
		if f.Delay < 0 {
			return nil, fmt.Errorf("sequence %q frame %d: negative delay: %w", name, i, ErrOutOfRange)
		}
	}
	return &Sequence{Name: name, Target: target, Frames: append([]Frame(nil), frames...)}, nil
}

// NewColorSequence builds a color-cycle sequence over one or more strips.
func NewColorSequence(name string, strips []ColorStrip) (*Sequence, error) {
	if len(strips) == 0 {
		return nil, fmt.Errorf("color sequence %q: no strips: %w", name, ErrSize)
	}
	for i, s := range strips {
		if s.Count < 1 || s.First < 0 || s.First+s.Count > MaxColors || s.Delay < 0 {
			return nil, fmt.Errorf("color sequence %q strip %d: %w", name, i, ErrOutOfRange)
		}
	}
	return &Sequence{Name: name, Strips: append([]ColorStrip(nil), strips...)}, nil
}

// IsColorCycle reports whether s animates a palette.
func (s *Sequence) IsColorCycle() bool { return len(s.Strips) > 0 }

// Len returns the number of frames or strips.
func (s *Sequence) Len() int {
	if s.IsColorCycle() {
		return len(s.Strips)
	}
	return len(s.Frames)
}

// SequencePack groups sequences by name.
type SequencePack struct {
	seqs  []*Sequence
	names map[string]int
}

func NewSequencePack() *SequencePack { return &SequencePack{names: map[string]int{}} }

// Add appends seq; names must be unique within the pack.
func (p *SequencePack) Add(seq *Sequence) error {
	if _, dup := p.names[seq.Name]; dup {
		return fmt.Errorf("sequence %q already in pack", seq.Name)
	}
	p.names[seq.Name] = len(p.seqs)
	p.seqs = append(p.seqs, seq)
	return nil
}

// Find returns the named sequence or nil.
func (p *SequencePack) Find(name string) *Sequence {
	if i, ok := p.names[name]; ok {
		return p.seqs[i]
	}
	return nil
}

func (p *SequencePack) Len() int               { return len(p.seqs) }
func (p *SequencePack) At(i int) *Sequence     { return p.seqs[i] }
func (p *SequencePack) Sequences() []*Sequence { return p.seqs }
