// Package render draws the particle field and the hand cursor HUD with
// Ebitengine.
package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Lens describes the perspective camera looking down -Z at the origin.
type Lens struct {
	FOV      float32 // vertical, degrees
	Near     float32
	Far      float32
	Distance float32 // eye position on +Z
}

// DefaultLens leaves room for the largest expansions before clipping.
func DefaultLens() Lens {
	return Lens{FOV: 75, Near: 0.1, Far: 5000, Distance: 180}
}

// Projector maps world-space particles to screen pixels.
type Projector struct {
	lens   Lens
	width  int
	height int

	view     mgl32.Mat4
	viewProj mgl32.Mat4
	mvp      mgl32.Mat4
}

// NewProjector creates a projector for a width x height viewport.
func NewProjector(lens Lens, width, height int) *Projector {
	p := &Projector{
		lens: lens,
		view: mgl32.LookAtV(
			mgl32.Vec3{0, 0, lens.Distance},
			mgl32.Vec3{0, 0, 0},
			mgl32.Vec3{0, 1, 0},
		),
		mvp: mgl32.Ident4(),
	}
	p.SetViewport(width, height)
	return p
}

// SetViewport updates the aspect ratio after a resize.
func (p *Projector) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == p.width && height == p.height {
		return
	}
	p.width, p.height = width, height

	aspect := float32(width) / float32(height)
	proj := mgl32.Perspective(mgl32.DegToRad(p.lens.FOV), aspect, p.lens.Near, p.lens.Far)
	p.viewProj = proj.Mul4(p.view)
	p.mvp = p.viewProj
}

// Viewport returns the current viewport size.
func (p *Projector) Viewport() (width, height int) {
	return p.width, p.height
}

// SetRotation sets the object rotation as XYZ Euler angles with z fixed at 0.
func (p *Projector) SetRotation(x, y float32) {
	model := mgl32.HomogRotate3DX(x).Mul4(mgl32.HomogRotate3DY(y))
	p.mvp = p.viewProj.Mul4(model)
}

// Project returns the screen position of a world point and the pixel scale
// for a unit-sized sprite at that depth. ok is false for points outside the
// near/far range.
func (p *Projector) Project(x, y, z float32) (sx, sy, scale float32, ok bool) {
	clip := p.mvp.Mul4x1(mgl32.Vec4{x, y, z, 1})
	w := clip[3]
	if w < p.lens.Near || w > p.lens.Far {
		return 0, 0, 0, false
	}

	inv := 1 / w
	sx = (clip[0]*inv + 1) * 0.5 * float32(p.width)
	sy = (1 - clip[1]*inv) * 0.5 * float32(p.height)
	scale = float32(p.height) * 0.5 / w
	return sx, sy, scale, true
}
