package gfx

import (
	"fmt"
	"image"
)

// SpriteEntry locates one picture inside a spriteset atlas.
type SpriteEntry struct {
	Name string
	X, Y int
	W, H int
}

// Spriteset is an atlas bitmap holding the pictures sprites can show.
type Spriteset struct {
	bitmap  *Bitmap
	entries []SpriteEntry
	deleted bool
}

// NewSpriteset validates that every entry lies inside the atlas.
func NewSpriteset(atlas *Bitmap, entries []SpriteEntry) (*Spriteset, error) {
	if !atlas.Valid() {
		return nil, fmt.Errorf("spriteset atlas: %w", ErrDeleted)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("spriteset without pictures: %w", ErrSize)
	}
	for i, e := range entries {
		r := image.Rect(e.X, e.Y, e.X+e.W, e.Y+e.H)
		if e.W <= 0 || e.H <= 0 || !r.In(atlas.Bounds()) {
			return nil, fmt.Errorf("sprite %d (%q) %v: %w", i, e.Name, r, ErrOutOfRange)
		}
	}
	return &Spriteset{bitmap: atlas, entries: append([]SpriteEntry(nil), entries...)}, nil
}

func (s *Spriteset) Len() int          { return len(s.entries) }
func (s *Spriteset) Bitmap() *Bitmap   { return s.bitmap }
func (s *Spriteset) Palette() *Palette { return s.bitmap.palette }
func (s *Spriteset) Valid() bool       { return s != nil && !s.deleted }
func (s *Spriteset) Delete()           { s.entries, s.deleted = nil, true }

func (s *Spriteset) Entry(i int) (SpriteEntry, bool) {
	if i < 0 || i >= len(s.entries) {
		return SpriteEntry{}, false
	}
	return s.entries[i], true
}

// FindSprite returns the index of the named picture or -1.
func (s *Spriteset) FindSprite(name string) int {
	for i, e := range s.entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}
