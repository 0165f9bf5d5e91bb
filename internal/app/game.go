package app

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ayusman/aura/internal/render"
)

// Game adapts App to ebiten.Game. Ebitengine calls Update once per tick and
// Draw once per frame on the same goroutine.
type Game struct {
	app      *App
	renderer *render.Renderer
	keys     []ebiten.Key
	last     time.Duration
}

// NewGame creates a Game rendering into a width x height window.
func NewGame(a *App, width, height int) *Game {
	return &Game{
		app:      a,
		renderer: render.NewRenderer(width, height),
	}
}

// Update implements ebiten.Game. It ends the run once the App is stopped.
func (g *Game) Update() error {
	if g.app.Stopped() {
		return ebiten.Termination
	}

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		switch k {
		case ebiten.KeyEscape:
			g.app.Stop()
			return ebiten.Termination
		case ebiten.KeyF:
			g.renderer.ToggleFPS()
		}
	}
	if cfg, changed := render.ApplyKeys(g.app.Config(), g.keys); changed {
		g.app.SetConfig(cfg)
	}

	now := g.app.Elapsed()
	state := g.app.Tick(g.app.ctx, now)
	g.renderer.Update(state.Tracking(), float32((now - g.last).Seconds()))
	g.last = now

	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.app.Frame())
}

// Layout implements ebiten.Game. The screen follows the window size so a
// resize only changes the projection.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.renderer.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until the window closes or the App stops.
func (g *Game) Run(title string, width, height, tps int) error {
	if tps <= 0 {
		tps = DefaultTPS
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(tps)

	err := ebiten.RunGame(g)
	g.app.Stop()
	return err
}
