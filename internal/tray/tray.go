// Package tray provides a system tray controller for the Aura particle
// visualizer.
package tray

import (
	"fmt"
	"strings"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/aura/internal/particle"
	"github.com/ayusman/aura/internal/shape"
)

// Controller is the part of the running app the tray drives.
type Controller interface {
	Config() particle.Config
	SetConfig(cfg particle.Config) particle.Config
}

// Tray represents the system tray menu.
type Tray struct {
	controller Controller
	onToggle   func(enabled bool) bool
	onQuit     func()
	enabled    bool
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
	menuShapes map[shape.Shape]*systray.MenuItem
}

// New creates a new Tray driving controller, with tracking enabled.
func New(controller Controller) *Tray {
	return &Tray{
		controller: controller,
		enabled:    true,
	}
}

// OnToggle sets the callback called when tracking is toggled. It returns
// whether tracking is actually live after the change.
func (t *Tray) OnToggle(fn func(enabled bool) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Register adds the tray to the platform event loop without taking over the
// main thread, which stays with the render loop.
func (t *Tray) Register() {
	systray.Register(t.onReady, t.onExit)
}

// Quit removes the tray icon.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Aura")
	systray.SetTooltip("Aura Particle Visualizer")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem("Hands: 0", "Tracked hands")
	t.menuStatus.Disable()
	systray.AddSeparator()

	menuShape := systray.AddMenuItem("Shape", "Particle shape")
	current := t.controller.Config().Shape
	t.menuShapes = make(map[shape.Shape]*systray.MenuItem, len(shape.All))
	for _, s := range shape.All {
		item := menuShape.AddSubMenuItemCheckbox(shapeTitle(s), "Morph into "+s.String(), s == current)
		t.menuShapes[s] = item
		go t.watchShape(s, item)
	}
	menuReset := systray.AddMenuItem("Reset", "Restore the default particle settings")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Aura")
	toggle := t.menuToggle
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-toggle.ClickedCh:
				t.handleToggle()
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) watchShape(s shape.Shape, item *systray.MenuItem) {
	for range item.ClickedCh {
		t.handleShape(s)
	}
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleShape publishes a config snapshot with the selected shape.
func (t *Tray) handleShape(s shape.Shape) {
	cfg := t.controller.Config()
	cfg.Shape = s
	t.checkShape(t.controller.SetConfig(cfg).Shape)
}

// handleReset publishes the default configuration.
func (t *Tray) handleReset() {
	t.checkShape(t.controller.SetConfig(particle.DefaultConfig()).Shape)
}

func (t *Tray) checkShape(current shape.Shape) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for name, item := range t.menuShapes {
		if name == current {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	enabled := !t.enabled
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil && !callback(enabled) && enabled {
		enabled = false
	}

	t.mu.Lock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	t.mu.Unlock()
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetHands updates the tracked hand count display in the menu.
func (t *Tray) SetHands(n int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus != nil {
		t.menuStatus.SetTitle(fmt.Sprintf("Hands: %d", n))
	}
}

// IsEnabled returns the current tracking state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Tracking off"
}

func shapeTitle(s shape.Shape) string {
	name := s.String()
	if s == shape.DNA {
		return strings.ToUpper(name)
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
