// Package particle owns the live particle field: configuration, per-frame
// simulation toward shape targets, and the derived material.
package particle

import (
	"math"

	"github.com/ayusman/aura/internal/shape"
)

// Population bounds.
const (
	MinCount  = 10000
	MaxCount  = 60000
	CountStep = 5000
)

// Appearance bounds.
const (
	MaxHue        = 360.0
	MaxSaturation = 100.0
	MaxLightness  = 100.0
	MinSize       = 0.05
	MaxSize       = 5.0
	MaxSpeed      = 10.0
)

// Config is the user-controlled snapshot read once per tick. It is a value
// type; publishers replace it wholesale.
type Config struct {
	Count      int         `json:"count"`
	Hue        float64     `json:"hue"`
	Saturation float64     `json:"saturation"`
	Lightness  float64     `json:"lightness"`
	Size       float64     `json:"size"`
	Speed      float64     `json:"speed"`
	Shape      shape.Shape `json:"shape"`
}

// DefaultConfig returns the startup configuration.
func DefaultConfig() Config {
	return Config{
		Count:      35000,
		Hue:        280,
		Saturation: 90,
		Lightness:  60,
		Size:       0.6,
		Speed:      1.2,
		Shape:      shape.Sphere,
	}
}

// Normalize clamps every field into range. An unknown shape becomes Sphere.
func (c Config) Normalize() Config {
	c.Count = min(max(c.Count, MinCount), MaxCount)
	c.Hue = clamp(c.Hue, 0, MaxHue)
	c.Saturation = clamp(c.Saturation, 0, MaxSaturation)
	c.Lightness = clamp(c.Lightness, 0, MaxLightness)
	c.Size = clamp(c.Size, MinSize, MaxSize)
	c.Speed = clamp(c.Speed, 0, MaxSpeed)
	if !c.Shape.Valid() {
		c.Shape = shape.Sphere
	}
	return c
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
