package ui

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/scene"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/settings"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	mainSave = iota
	mainLoad
	mainSlot
	mainSettings
	mainKeys
	mainClose
	numMainItems
)

// Settings rows: scale, render mode, then one row per layer.
const (
	setScale = iota
	setMode
	setLayer0
	numSettingsItems = setLayer0 + scene.NumLayers
)

const settingsTitle = "Settings (Up/Down select; Left/Right change; Backspace/Esc: back)"

func backPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace)
}

func (a *App) updateMainMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < numMainItems-1 {
		a.menuIdx++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		switch a.menuIdx {
		case mainSave:
			a.menuSave()
		case mainLoad:
			a.menuLoad()
		case mainSlot:
			a.menuMode = menuSlot
			a.menuIdx = a.cfg.Slot
		case mainSettings:
			a.menuMode = menuSettings
			a.menuIdx = 0
			a.settingsOff = 0
		case mainKeys:
			a.menuMode = menuKeys
			a.keysOff = 0
		case mainClose:
			a.showMenu = false
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.showMenu = false
	}
}

func (a *App) updateSlotMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < settings.NumSlots-1 {
		a.menuIdx++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.cfg.Slot = a.menuIdx
		a.toast(fmt.Sprintf("Slot set to %d", a.cfg.Slot+1))
		a.saveSettings()
		a.menuMode, a.menuIdx = menuMain, mainSlot
	}
	if backPressed() {
		a.menuMode, a.menuIdx = menuMain, mainSlot
	}
}

func (a *App) updateKeysMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.keysOff > 0 {
		a.keysOff--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		a.keysOff++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || backPressed() {
		a.menuMode, a.menuIdx = menuMain, mainKeys
	}
}

func (a *App) updateSettingsMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < numSettingsItems-1 {
		a.menuIdx++
	}
	// maintain scroll window
	_, h := a.w.Size()
	baseY := 10 + 14*len(a.wrapText(settingsTitle, a.maxCharsForText(10)))
	maxRows := max((h-baseY)/14, 1)
	if a.menuIdx < a.settingsOff {
		a.settingsOff = a.menuIdx
	}
	if a.menuIdx >= a.settingsOff+maxRows {
		a.settingsOff = a.menuIdx - maxRows + 1
	}

	left := inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft)
	right := inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyEnter)
	if !left && !right {
		if backPressed() {
			a.menuMode, a.menuIdx = menuMain, mainSettings
		}
		return
	}
	switch {
	case a.menuIdx == setScale:
		if left && a.cfg.Scale > 1 {
			a.cfg.Scale--
		} else if right && !left && a.cfg.Scale < 8 {
			a.cfg.Scale++
		}
		a.applyWindowSize()
		a.saveSettings()
	case a.menuIdx == setMode:
		if left {
			a.cycleMode(-1)
		} else {
			a.cycleMode(1)
		}
	case a.menuIdx >= setLayer0:
		a.toggleLayer(a.menuIdx - setLayer0)
	}
}
