package particle

import (
	"image/color"
	"math"
	"testing"

	"github.com/ayusman/aura/internal/shape"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg != cfg.Normalize() {
		t.Errorf("DefaultConfig should already be normalized: %+v", cfg)
	}
	if cfg.Count != 35000 || cfg.Shape != shape.Sphere {
		t.Errorf("DefaultConfig = %+v", cfg)
	}
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "count below minimum",
			in:   Config{Count: 10, Size: 1, Shape: shape.Cube},
			want: Config{Count: MinCount, Size: 1, Shape: shape.Cube},
		},
		{
			name: "count above maximum",
			in:   Config{Count: 1_000_000, Size: 1, Shape: shape.DNA},
			want: Config{Count: MaxCount, Size: 1, Shape: shape.DNA},
		},
		{
			name: "color out of range",
			in:   Config{Count: MinCount, Hue: 400, Saturation: -5, Lightness: 150, Size: 1, Shape: shape.Torus},
			want: Config{Count: MinCount, Hue: MaxHue, Saturation: 0, Lightness: MaxLightness, Size: 1, Shape: shape.Torus},
		},
		{
			name: "size and speed",
			in:   Config{Count: MinCount, Size: 0, Speed: 99, Shape: shape.Heart},
			want: Config{Count: MinCount, Size: MinSize, Speed: MaxSpeed, Shape: shape.Heart},
		},
		{
			name: "unknown shape",
			in:   Config{Count: MinCount, Size: 1, Shape: "blob"},
			want: Config{Count: MinCount, Size: 1, Shape: shape.Sphere},
		},
		{
			name: "NaN speed",
			in:   Config{Count: MinCount, Size: 1, Speed: math.NaN(), Shape: shape.Sphere},
			want: Config{Count: MinCount, Size: 1, Speed: 0, Shape: shape.Sphere},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHSL(t *testing.T) {
	tests := []struct {
		name    string
		h, s, l float64
		want    color.NRGBA
	}{
		{name: "red", h: 0, s: 100, l: 50, want: color.NRGBA{R: 255, A: 255}},
		{name: "green", h: 120, s: 100, l: 50, want: color.NRGBA{G: 255, A: 255}},
		{name: "blue", h: 240, s: 100, l: 50, want: color.NRGBA{B: 255, A: 255}},
		{name: "hue wraps", h: 360, s: 100, l: 50, want: color.NRGBA{R: 255, A: 255}},
		{name: "gray", h: 280, s: 0, l: 50, want: color.NRGBA{R: 128, G: 128, B: 128, A: 255}},
		{name: "white", h: 10, s: 90, l: 100, want: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
		{name: "black", h: 10, s: 90, l: 0, want: color.NRGBA{A: 255}},
		{name: "default violet", h: 280, s: 90, l: 60, want: color.NRGBA{R: 184, G: 61, B: 245, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HSL(tt.h, tt.s, tt.l); got != tt.want {
				t.Errorf("HSL(%v, %v, %v) = %v, want %v", tt.h, tt.s, tt.l, got, tt.want)
			}
		})
	}
}
