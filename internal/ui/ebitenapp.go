package ui

import (
	"fmt"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/tilerender/internal/scene"
	"github.com/FabianRolfMatthiasNoll/tilerender/internal/settings"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type menuMode int

const (
	menuMain menuMode = iota
	menuSlot
	menuSettings
	menuKeys
)

type App struct {
	cfg     settings.Config
	cfgPath string // where settings persist; empty disables saving
	log     *slog.Logger
	w       *scene.World
	tex     *ebiten.Image
	overlay *ebiten.Image
	paused  bool
	fast    bool

	// overlay/menu
	showMenu    bool
	menuMode    menuMode
	menuIdx     int
	keysOff     int
	settingsOff int

	msg       string
	msgFrames int
}

// NewApp wraps w in an ebiten game. cfgPath may be empty.
func NewApp(cfg settings.Config, cfgPath string, w *scene.World, log *slog.Logger) *App {
	cfg.Defaults()
	if log == nil {
		log = slog.Default()
	}
	a := &App{cfg: cfg, cfgPath: cfgPath, log: log, w: w}
	ebiten.SetWindowTitle(cfg.Title)
	a.applyWindowSize()
	return a
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && (!a.showMenu || a.menuMode == menuMain) {
		a.showMenu = !a.showMenu
		a.menuMode, a.menuIdx = menuMain, 0
	} else if a.showMenu {
		switch a.menuMode {
		case menuMain:
			a.updateMainMenu()
		case menuSlot:
			a.updateSlotMenu()
		case menuSettings:
			a.updateSettingsMenu()
		case menuKeys:
			a.updateKeysMenu()
		}
	}

	// Keyboard → pad buttons; the menu owns the keyboard while open
	var btn scene.Buttons
	if !a.showMenu {
		btn.Right = ebiten.IsKeyPressed(ebiten.KeyRight)
		btn.Left = ebiten.IsKeyPressed(ebiten.KeyLeft)
		btn.Up = ebiten.IsKeyPressed(ebiten.KeyUp)
		btn.Down = ebiten.IsKeyPressed(ebiten.KeyDown)
		btn.A = ebiten.IsKeyPressed(ebiten.KeyZ)
		btn.B = ebiten.IsKeyPressed(ebiten.KeyX)
		btn.Start = ebiten.IsKeyPressed(ebiten.KeyEnter)
		btn.Select = ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	}
	a.w.SetButtons(btn)

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)
	if a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		a.w.StepFrame()
	}
	a.updateHotkeys()

	if !a.paused {
		n := 1
		if a.fast {
			n = 5
		}
		for i := 0; i < n; i++ {
			a.w.StepFrame()
		}
	}
	if a.msgFrames > 0 {
		a.msgFrames--
	}
	return nil
}

func (a *App) updateHotkeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if path, err := a.saveScreenshot(); err != nil {
			a.toast("Screenshot failed: " + err.Error())
		} else {
			a.toast("Saved " + filepath.Base(path))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		a.menuSave()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		a.menuLoad()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.cycleMode(1)
	}
	for i, k := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4} {
		if inpututil.IsKeyJustPressed(k) {
			a.cfg.Slot = i
			a.toast(fmt.Sprintf("Slot set to %d", i+1))
		}
	}
}

func (a *App) Draw(screen *ebiten.Image) {
	w, h := a.w.Size()
	if a.tex == nil {
		a.tex = ebiten.NewImage(w, h)
	}
	a.tex.WritePixels(a.w.Framebuffer())
	screen.DrawImage(a.tex, nil)

	if a.showMenu {
		if a.overlay == nil {
			a.overlay = ebiten.NewImage(w, h)
			a.overlay.Fill(color.RGBA{0, 0, 0, 160})
		}
		screen.DrawImage(a.overlay, nil)
		switch a.menuMode {
		case menuMain:
			a.drawMainMenu(screen)
		case menuSlot:
			a.drawSlotMenu(screen)
		case menuSettings:
			a.drawSettingsMenu(screen)
		case menuKeys:
			a.drawKeysMenu(screen)
		}
	} else if a.paused {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("PAUSED  frame %d", a.w.Frame()), 4, h-16)
	}
	if a.msgFrames > 0 {
		ebitenutil.DebugPrintAt(screen, a.truncateText(a.msg, a.maxCharsForText(4)), 4, 0)
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return a.w.Size() }

func (a *App) applyWindowSize() {
	w, h := a.w.Size()
	ebiten.SetWindowSize(w*a.cfg.Scale, h*a.cfg.Scale)
}

func (a *App) toast(msg string) {
	a.msg, a.msgFrames = msg, 120
	a.log.Info("ui", "msg", msg)
}

func (a *App) statePath(slot int) string {
	return filepath.Join(a.cfg.StateDir, fmt.Sprintf("tlview.slot%d.state", slot+1))
}

func (a *App) saveSlot(slot int) error { return a.w.SaveStateToFile(a.statePath(slot)) }

func (a *App) loadSlot(slot int) error {
	if err := a.w.LoadStateFromFile(a.statePath(slot)); err != nil {
		return err
	}
	a.syncFromWorld()
	return nil
}

// syncFromWorld copies render settings a loaded state may have changed.
func (a *App) syncFromWorld() {
	a.cfg.Mode = a.w.Mode()
	for n := range a.cfg.Hidden {
		a.cfg.Hidden[n] = !a.w.LayerVisible(n)
	}
}

func (a *App) menuSave() {
	if err := a.saveSlot(a.cfg.Slot); err != nil {
		a.toast("Save failed: " + err.Error())
		return
	}
	a.toast(fmt.Sprintf("Saved slot %d", a.cfg.Slot+1))
}

func (a *App) menuLoad() {
	if _, err := os.Stat(a.statePath(a.cfg.Slot)); err != nil {
		a.toast("Slot is empty")
		return
	}
	if err := a.loadSlot(a.cfg.Slot); err != nil {
		a.toast("Load failed: " + err.Error())
		return
	}
	a.toast(fmt.Sprintf("Loaded slot %d", a.cfg.Slot+1))
}

func (a *App) cycleMode(dir int) {
	modes := scene.Modes()
	m := (int(a.w.Mode()) + dir + len(modes)) % len(modes)
	if err := a.w.SetMode(modes[m]); err != nil {
		a.toast("Mode failed: " + err.Error())
		return
	}
	a.cfg.Mode = modes[m]
	a.toast("Mode: " + modes[m].String())
	a.saveSettings()
}

func (a *App) toggleLayer(n int) {
	if err := a.w.ToggleLayer(n); err != nil {
		a.toast("Layer failed: " + err.Error())
		return
	}
	a.cfg.Hidden[n] = !a.w.LayerVisible(n)
	a.saveSettings()
}

func (a *App) saveSettings() {
	if a.cfgPath == "" {
		return
	}
	if err := a.cfg.Save(a.cfgPath); err != nil {
		a.log.Warn("save settings", "path", a.cfgPath, "err", err)
	}
}

// Debug text glyphs are 6x16.
func (a *App) maxCharsForText(x int) int {
	w, _ := a.w.Size()
	n := (w - x) / 6
	if n < 1 {
		n = 1
	}
	return n
}

func (a *App) truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func (a *App) wrapText(s string, max int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= max:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func (a *App) saveScreenshot() (string, error) {
	img := a.w.ScaledImage(a.cfg.Scale)
	ts := time.Now().Format("20060102_150405")
	name := filepath.Join(a.cfg.StateDir, fmt.Sprintf("screenshot_%s.png", ts))
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return name, png.Encode(f, img)
}
