package ui

import (
	"fmt"
	"os"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/scene"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/settings"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

var layerNames = [scene.NumLayers]string{"Front tiles", "Objects", "Clouds", "Sky"}

func onOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}

func (a *App) drawMainMenu(screen *ebiten.Image) {
	lines := []string{
		"Menu:",
		fmt.Sprintf("  Save state (slot %d)", a.cfg.Slot+1),
		fmt.Sprintf("  Load state (slot %d)", a.cfg.Slot+1),
		"  Select Slot",
		"  Settings",
		"  Keybindings",
		"  Close",
	}
	for i, s := range lines {
		prefix := "  "
		if i == a.menuIdx+1 {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+s, 10, 10+i*14)
	}
	// quick hints, keep on-screen
	hint := "F5: Save  F9: Load  1-4: Slot  M: Mode  F11: Fullscreen"
	ebitenutil.DebugPrintAt(screen, a.truncateText(hint, a.maxCharsForText(10)), 10, 10+len(lines)*14)
}

func (a *App) drawSlotMenu(screen *ebiten.Image) {
	lines := []string{"Select Slot:"}
	for i := 0; i < settings.NumSlots; i++ {
		state := "[empty]"
		if _, err := os.Stat(a.statePath(i)); err == nil {
			state = ""
		}
		lines = append(lines, fmt.Sprintf("  %d %s", i+1, state))
	}
	for i, s := range lines {
		prefix := "  "
		if i == a.menuIdx+1 {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+s, 10, 10+i*14)
	}
}

func (a *App) drawKeysMenu(screen *ebiten.Image) {
	title := "Keybindings (Up/Down to scroll, Backspace/Esc to return)"
	cursorY := 10
	for _, w := range a.wrapText(title, a.maxCharsForText(10)) {
		ebitenutil.DebugPrintAt(screen, w, 10, cursorY)
		cursorY += 14
	}
	rows := []string{
		"Arrows: Walk",
		"Z: Jump",
		"X: Run",
		"Enter: Next render mode",
		"RightShift: Toggle clouds",
		"M: Next render mode",
		"P: Pause",
		"N: Step (when paused)",
		"Tab: Fast-forward",
		"F5/F9: Save/Load state",
		"1-4: Select slot",
		"F12: Screenshot",
		"Esc: Open/Close Menu",
	}
	_, h := a.w.Size()
	baseY := cursorY + 4
	maxRows := max((h-baseY)/14, 1)
	a.keysOff = min(max(a.keysOff, 0), len(rows)-1)
	end := min(a.keysOff+maxRows, len(rows))
	maxChars := a.maxCharsForText(10)
	for i := a.keysOff; i < end; i++ {
		ebitenutil.DebugPrintAt(screen, a.truncateText(rows[i], maxChars), 10, baseY+(i-a.keysOff)*14)
	}
	// scroll indicators
	if a.keysOff > 0 {
		ebitenutil.DebugPrintAt(screen, "^", 2, baseY)
	}
	if end < len(rows) {
		ebitenutil.DebugPrintAt(screen, "v", 2, baseY+(maxRows-1)*14)
	}
}

func (a *App) drawSettingsMenu(screen *ebiten.Image) {
	cursorY := 10
	for _, w := range a.wrapText(settingsTitle, a.maxCharsForText(10)) {
		ebitenutil.DebugPrintAt(screen, w, 10, cursorY)
		cursorY += 14
	}
	items := []string{
		fmt.Sprintf("Scale: %dx", a.cfg.Scale),
		fmt.Sprintf("Render mode: %s", a.w.Mode()),
	}
	for n, name := range layerNames {
		items = append(items, fmt.Sprintf("%s: %s", name, onOff(a.w.LayerVisible(n))))
	}
	_, h := a.w.Size()
	baseY := cursorY
	maxRows := max((h-baseY)/14, 1)
	end := min(a.settingsOff+maxRows, len(items))
	for i := a.settingsOff; i < end; i++ {
		prefix := "  "
		if i == a.menuIdx {
			prefix = "> "
		}
		line := a.truncateText(prefix+items[i], a.maxCharsForText(10))
		ebitenutil.DebugPrintAt(screen, line, 10, baseY+(i-a.settingsOff)*14)
	}
	// scroll indicators
	if a.settingsOff > 0 {
		ebitenutil.DebugPrintAt(screen, "^", 2, baseY)
	}
	if end < len(items) {
		ebitenutil.DebugPrintAt(screen, "v", 2, baseY+(maxRows-1)*14)
	}
}
