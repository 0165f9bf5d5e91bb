package render

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/ayusman/aura/internal/gesture"
	"github.com/ayusman/aura/internal/particle"
)

// FadeDuration is how long the cursor takes to appear or vanish, in seconds.
const FadeDuration = 0.3

// Cursor geometry in pixels at scale 1.
const (
	ringRadius  = 40
	ringWidth   = 2
	coreRadius  = 8
	orbitRadius = 4
)

// Cursor is the HUD ring that follows the gesture center while hands are
// tracked.
type Cursor struct {
	opacity float32
	target  float32
	fade    *gween.Tween
}

// NewCursor returns a hidden cursor.
func NewCursor() *Cursor {
	return &Cursor{}
}

// Update starts a fade whenever tracking flips and advances it by dt seconds.
func (c *Cursor) Update(tracking bool, dt float32) {
	var target float32
	if tracking {
		target = 1
	}
	if target != c.target {
		c.target = target
		c.fade = gween.New(c.opacity, target, FadeDuration, ease.OutQuad)
	}
	if c.fade == nil {
		return
	}

	val, done := c.fade.Update(dt)
	c.opacity = val
	if done {
		c.fade = nil
	}
}

// Opacity returns the current fade level in [0,1].
func (c *Cursor) Opacity() float32 {
	return c.opacity
}

// CursorPlacement returns the screen position and scale of the cursor. X is
// mirrored so the ring moves the same way as the user's hand.
func CursorPlacement(s gesture.State, width, height int) (x, y, scale float32) {
	x = float32((1 - s.Center.X) * float64(width))
	y = float32(s.Center.Y * float64(height))
	scale = float32(0.5 + s.Expansion*0.1)
	return x, y, scale
}

// Draw paints the ring, the core, one orbiting dot per hand and the readout.
func (c *Cursor) Draw(screen *ebiten.Image, s gesture.State, cfg particle.Config, now time.Duration) {
	if c.opacity <= 0 {
		return
	}

	b := screen.Bounds()
	x, y, scale := CursorPlacement(s, b.Dx(), b.Dy())
	ms := float64(now) / float64(time.Millisecond)
	base := particle.HSL(cfg.Hue, cfg.Saturation, cfg.Lightness)

	vector.StrokeCircle(screen, x, y, ringRadius*scale, ringWidth, fade(base, 0.8*c.opacity), true)

	pulse := float32(0.85 + 0.15*math.Sin(ms*0.004))
	vector.DrawFilledCircle(screen, x, y, coreRadius*scale*pulse, fade(base, c.opacity), true)

	for i := range s.Hands {
		angle := (float64(i)*180 + ms/10) * math.Pi / 180
		ox := float32(math.Sin(angle)) * ringRadius * scale
		oy := -float32(math.Cos(angle)) * ringRadius * scale
		vector.DrawFilledCircle(screen, x+ox, y+oy, orbitRadius*scale, fade(base, c.opacity), true)
	}

	readout := fmt.Sprintf("POS: %.2f, %.2f\nEXP: %.2f", s.Center.X, s.Center.Y, s.Expansion)
	ebitenutil.DebugPrintAt(screen, readout, int(x)-42, int(y+(ringRadius+8)*scale))
}

func fade(c color.NRGBA, alpha float32) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * float64(min(max(alpha, 0), 1))))
	return c
}
