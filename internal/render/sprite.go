package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// SpriteSize is the edge length of the particle sprite texture.
const SpriteSize = 128

// gradientStops is the radial alpha falloff of the particle sprite,
// as (radius fraction, alpha) pairs.
var gradientStops = [...][2]float64{
	{0, 1},
	{0.3, 0.5},
	{0.6, 0.1},
	{1, 0},
}

// gradientAlpha returns the sprite alpha at radius fraction r.
func gradientAlpha(r float64) float64 {
	if r <= 0 {
		return gradientStops[0][1]
	}
	for i := 1; i < len(gradientStops); i++ {
		lo, hi := gradientStops[i-1], gradientStops[i]
		if r <= hi[0] {
			f := (r - lo[0]) / (hi[0] - lo[0])
			return lo[1] + (hi[1]-lo[1])*f
		}
	}
	return 0
}

// circlePixels renders the white radial-gradient sprite as premultiplied RGBA.
func circlePixels(size int) []byte {
	pix := make([]byte, size*size*4)
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c) / c
			a := byte(math.Round(gradientAlpha(r) * 255))
			i := (y*size + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = a, a, a, a
		}
	}
	return pix
}

func newCircleSprite() *ebiten.Image {
	img := ebiten.NewImage(SpriteSize, SpriteSize)
	img.WritePixels(circlePixels(SpriteSize))
	return img
}
