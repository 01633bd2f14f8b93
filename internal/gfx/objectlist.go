package gfx

import (
	"fmt"
	"image"
)

// Object is one placed entity of an object layer. Objects with a non-zero
// GID draw the image tile of that id from the list's tileset.
type Object struct {
	ID      int
	GID     int
	Flags   Flags
	X, Y    int
	Width   int
	Height  int
	Type    uint8
	Visible bool
	Name    string

	bitmap *Bitmap
	next   *Object
}

// Bitmap returns the graphic resolved when the object was added, or nil.
func (o *Object) Bitmap() *Bitmap { return o.bitmap }

// Next returns the following object in insertion order.
func (o *Object) Next() *Object { return o.next }

// Bounds returns the area the object covers, with width and height swapped
// for rotated objects.
func (o *Object) Bounds() image.Rectangle {
	w, h := o.Width, o.Height
	if o.Flags&FlagRotate != 0 {
		w, h = h, w
	}
	return image.Rect(o.X, o.Y, o.X+w, o.Y+h)
}

// InLine reports whether the object crosses scanline y inside [x1, x2).
func (o *Object) InLine(x1, x2, y int) bool {
	r := o.Bounds()
	return y >= r.Min.Y && y < r.Max.Y && x1 < r.Max.X && x2 > r.Min.X
}

// ObjectList is an insertion-ordered singly-linked list of objects.
type ObjectList struct {
	head, tail *Object
	n          int
	tileset    *Tileset
	width      int
	height     int
	deleted    bool
}

// NewObjectList creates an empty list. tileset may be nil when the list only
// holds point and rectangle objects.
func NewObjectList(tileset *Tileset) *ObjectList { return &ObjectList{tileset: tileset} }

func (l *ObjectList) Len() int          { return l.n }
func (l *ObjectList) First() *Object    { return l.head }
func (l *ObjectList) Tileset() *Tileset { return l.tileset }
func (l *ObjectList) Valid() bool       { return l != nil && !l.deleted }
func (l *ObjectList) Delete()           { l.head, l.tail, l.n, l.deleted = nil, nil, 0, true }

// Width and Height return the extent covering every object so far.
func (l *ObjectList) Width() int  { return l.width }
func (l *ObjectList) Height() int { return l.height }

// Add appends a copy of o. Objects with a GID must resolve against the
// list's tileset, and a non-zero size must match the image.
func (l *ObjectList) Add(o Object) error {
	o.next = nil
	o.bitmap = nil
	if o.GID != 0 {
		if l.tileset == nil || !l.tileset.ImageBased() {
			return fmt.Errorf("object %d: gid %d without image tileset: %w", o.ID, o.GID, ErrOutOfRange)
		}
		img := l.tileset.Image(o.GID)
		if img == nil {
			return fmt.Errorf("object %d: gid %d: %w", o.ID, o.GID, ErrOutOfRange)
		}
		o.bitmap = img.Bitmap
		bw, bh := img.Bitmap.Width(), img.Bitmap.Height()
		if o.Width == 0 && o.Height == 0 {
			o.Width, o.Height = bw, bh
		}
		if o.Width != bw || o.Height != bh {
			return fmt.Errorf("object %d: size %dx%d, gid %d is %dx%d: %w", o.ID, o.Width, o.Height, o.GID, bw, bh, ErrOutOfRange)
		}
		if o.Type == 0 {
			o.Type = img.Type
		}
	}
	obj := &o
	if l.tail == nil {
		l.head = obj
	} else {
		l.tail.next = obj
	}
	l.tail = obj
	l.n++
	r := obj.Bounds()
	l.width = max(l.width, r.Max.X)
	l.height = max(l.height, r.Max.Y)
	return nil
}

// AddTileObject is the shorthand for a visible graphic object.
func (l *ObjectList) AddTileObject(id, gid int, flags Flags, x, y int) error {
	return l.Add(Object{ID: id, GID: gid, Flags: flags, X: x, Y: y, Visible: true})
}

// Each calls fn for every object in insertion order until fn returns false.
func (l *ObjectList) Each(fn func(*Object) bool) {
	for o := l.head; o != nil; o = o.next {
		if !fn(o) {
			return
		}
	}
}

// Clone returns a deep copy sharing the tileset.
func (l *ObjectList) Clone() *ObjectList {
	c := NewObjectList(l.tileset)
	for o := l.head; o != nil; o = o.next {
		cp := *o
		cp.next = nil
		if c.tail == nil {
			c.head = &cp
		} else {
			c.tail.next = &cp
		}
		c.tail = &cp
		c.n++
	}
	c.width, c.height = l.width, l.height
	return c
}
