package gfx

import "errors"

var (
	ErrOutOfRange = errors.New("index out of range")
	ErrTileSize   = errors.New("tile size must be a power of two")
	ErrDeleted    = errors.New("object was deleted")
	ErrSize       = errors.New("invalid size")
)
