package engine

import "log/slog"

// Error is the engine's error code. Every mutator returns nil or one of
// these and records the outcome for LastError.
type Error int

const (
	ErrOK           Error = iota // no error
	ErrOutOfMemory               // pool exhausted
	ErrIdxLayer                  // layer index out of range
	ErrIdxSprite                 // sprite index out of range
	ErrIdxAnimation              // animation index or frame out of range
	ErrIdxPicture                // sprite picture out of range
	ErrIdxPalette                // global palette slot out of range
	ErrRefTileset                // invalid or deleted tileset
	ErrRefTilemap                // invalid or deleted tilemap
	ErrRefSpriteset              // invalid or deleted spriteset
	ErrRefPalette                // invalid or deleted palette
	ErrRefSequence               // invalid sequence for the target
	ErrRefList                   // invalid or deleted object list
	ErrRefBitmap                 // invalid or deleted bitmap
	ErrWrongSize                 // size mismatch
	ErrUnsupported               // transform not available for the content
)

var errorText = [...]string{
	ErrOK:           "no error",
	ErrOutOfMemory:  "not enough free slots",
	ErrIdxLayer:     "layer index out of range",
	ErrIdxSprite:    "sprite index out of range",
	ErrIdxAnimation: "animation index out of range",
	ErrIdxPicture:   "picture index out of range",
	ErrIdxPalette:   "palette index out of range",
	ErrRefTileset:   "invalid tileset reference",
	ErrRefTilemap:   "invalid tilemap reference",
	ErrRefSpriteset: "invalid spriteset reference",
	ErrRefPalette:   "invalid palette reference",
	ErrRefSequence:  "invalid sequence reference",
	ErrRefList:      "invalid object list reference",
	ErrRefBitmap:    "invalid bitmap reference",
	ErrWrongSize:    "wrong size",
	ErrUnsupported:  "unsupported function",
}

func (e Error) Error() string {
	if e >= 0 && int(e) < len(errorText) {
		return errorText[e]
	}
	return "unknown error"
}

// LastError returns the code left by the most recent mutator call.
func (e *Engine) LastError() Error { return e.lastErr }

// fail records code and returns it. Nothing else is touched, so the failed
// call leaves the engine as it was.
func (e *Engine) fail(op string, index int, code Error) error {
	e.lastErr = code
	e.log.Debug("rejected", slog.String("op", op), slog.Int("index", index), slog.String("err", code.Error()))
	return code
}

func (e *Engine) ok() error {
	e.lastErr = ErrOK
	return nil
}
