package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ayusman/aura/internal/particle"
	"github.com/ayusman/aura/internal/shape"
)

// Hotkey steps.
const (
	HueStep        = 10.0
	SaturationStep = 5.0
	SizeStep       = 0.1
	SpeedStep      = 0.2
)

var shapeKeys = map[ebiten.Key]shape.Shape{
	ebiten.KeyDigit1: shape.Sphere,
	ebiten.KeyDigit2: shape.Cube,
	ebiten.KeyDigit3: shape.Torus,
	ebiten.KeyDigit4: shape.Heart,
	ebiten.KeyDigit5: shape.DNA,
}

// ApplyKey returns cfg adjusted for one hotkey and whether anything changed.
// R and Backspace restore the default configuration.
func ApplyKey(cfg particle.Config, key ebiten.Key) (particle.Config, bool) {
	next := cfg
	if s, ok := shapeKeys[key]; ok {
		next.Shape = s
	} else {
		switch key {
		case ebiten.KeyR, ebiten.KeyBackspace:
			next = particle.DefaultConfig()
		case ebiten.KeyArrowUp:
			next.Count += particle.CountStep
		case ebiten.KeyArrowDown:
			next.Count -= particle.CountStep
		case ebiten.KeyArrowRight:
			next.Hue = math.Mod(cfg.Hue+HueStep, particle.MaxHue)
		case ebiten.KeyArrowLeft:
			next.Hue = math.Mod(cfg.Hue-HueStep+particle.MaxHue, particle.MaxHue)
		case ebiten.KeyPeriod:
			next.Saturation += SaturationStep
		case ebiten.KeyComma:
			next.Saturation -= SaturationStep
		case ebiten.KeyEqual, ebiten.KeyNumpadAdd:
			next.Size += SizeStep
		case ebiten.KeyMinus, ebiten.KeyNumpadSubtract:
			next.Size -= SizeStep
		case ebiten.KeyBracketRight:
			next.Speed += SpeedStep
		case ebiten.KeyBracketLeft:
			next.Speed -= SpeedStep
		default:
			return cfg, false
		}
	}

	next = next.Normalize()
	return next, next != cfg
}

// ApplyKeys folds ApplyKey over keys.
func ApplyKeys(cfg particle.Config, keys []ebiten.Key) (particle.Config, bool) {
	changed := false
	for _, k := range keys {
		var ok bool
		cfg, ok = ApplyKey(cfg, k)
		changed = changed || ok
	}
	return cfg, changed
}
