package particle

import (
	"image/color"
	"math"
	"time"
)

const (
	// Opacity is the sprite alpha under additive blending.
	Opacity = 0.8
	// ActivePulse enlarges points while a hand is tracked.
	ActivePulse = 1.8
	// breathRate and breathDepth shape the idle size oscillation (per ms).
	breathRate  = 0.003
	breathDepth = 0.15
)

// Material is the per-frame appearance of every particle.
type Material struct {
	Color color.NRGBA
	Size  float64
}

func material(cfg Config, tracking bool, now time.Duration) Material {
	pulse := 1.0
	if tracking {
		pulse = ActivePulse
	}
	ms := float64(now) / float64(time.Millisecond)
	return Material{
		Color: HSL(cfg.Hue, cfg.Saturation, cfg.Lightness),
		Size:  cfg.Size * pulse * (1 + math.Sin(ms*breathRate)*breathDepth),
	}
}

// HSL converts hue in degrees and saturation/lightness in percent to an
// opaque color.
func HSL(hue, saturation, lightness float64) color.NRGBA {
	h := math.Mod(hue/360, 1)
	if h < 0 {
		h++
	}
	s := clamp(saturation/100, 0, 1)
	l := clamp(lightness/100, 0, 1)

	if s == 0 {
		v := toByte(l)
		return color.NRGBA{R: v, G: v, B: v, A: 0xff}
	}

	var q float64
	if l <= 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return color.NRGBA{
		R: toByte(hueToChannel(p, q, h+1.0/3)),
		G: toByte(hueToChannel(p, q, h)),
		B: toByte(hueToChannel(p, q, h-1.0/3)),
		A: 0xff,
	}
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*6*(2.0/3-t)
	}
	return p
}

func toByte(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}
