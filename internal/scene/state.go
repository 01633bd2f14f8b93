package scene

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// --- Save/Load state ---
type savedWorld struct {
	Seed  uint64
	State state
}

func (w *World) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	_ = enc.Encode(savedWorld{Seed: w.cfg.Seed, State: w.st})
	return buf.Bytes()
}

// LoadState restores a state saved from a world generated with the same
// seed. Running animations restart from their first frame.
func (w *World) LoadState(data []byte) error {
	var s savedWorld
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&s); err != nil {
		return err
	}
	if s.Seed != w.cfg.Seed {
		return fmt.Errorf("state saved with seed %d, world has seed %d", s.Seed, w.cfg.Seed)
	}
	if len(s.State.Enemies) != numEnemies {
		return fmt.Errorf("state has %d enemies, want %d", len(s.State.Enemies), numEnemies)
	}
	w.st = s.State
	if err := w.applyMode(); err != nil {
		return err
	}
	for n := range w.st.Hidden {
		if err := w.applyVisibility(n); err != nil {
			return err
		}
	}
	w.prev, w.walk, w.hit = Buttons{}, false, false
	_ = w.eng.DisableSpriteAnimation(sprPlayer)
	_ = w.eng.SetSpritePicture(sprPlayer, picPlayer0)
	_ = w.eng.SetSpritePalette(sprPlayer, nil)
	w.eng.SetWorldPosition(w.st.CamX, w.baseY)
	w.placeSprites()
	w.log.Info("state loaded", "frame", w.st.Frame, "mode", w.st.Mode.String())
	return nil
}

func (w *World) SaveStateToFile(path string) error {
	data := w.SaveState()
	if len(data) == 0 {
		return nil
	}
	return os.WriteFile(path, data, 0644)
}

func (w *World) LoadStateFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return w.LoadState(data)
}
