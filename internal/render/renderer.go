package render

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/ayusman/aura/internal/gesture"
	"github.com/ayusman/aura/internal/particle"
)

const (
	// maxQuadsPerBatch bounds the vertex buffer handed to one DrawTriangles32 call.
	maxQuadsPerBatch = 1 << 14
	// minQuadSize keeps distant particles visible as at least one pixel.
	minQuadSize = 1
)

// Frame is everything the renderer needs for one draw.
type Frame struct {
	Positions []float32
	Rotation  gesture.Rotation
	Material  particle.Material
	Gesture   gesture.State
	Config    particle.Config
	Now       time.Duration
}

// Renderer draws particles as additive textured quads, then the HUD.
type Renderer struct {
	projector *Projector
	sprite    *ebiten.Image
	cursor    *Cursor

	verts []ebiten.Vertex
	inds  []uint32

	background color.Color
	showFPS    bool
}

// NewRenderer creates a renderer for the initial viewport size.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		projector:  NewProjector(DefaultLens(), width, height),
		cursor:     NewCursor(),
		verts:      make([]ebiten.Vertex, 0, maxQuadsPerBatch*4),
		inds:       make([]uint32, 0, maxQuadsPerBatch*6),
		background: color.Black,
	}
}

// Projector returns the projector used for particles.
func (r *Renderer) Projector() *Projector {
	return r.projector
}

// FPSVisible reports whether the frame rate overlay is shown.
func (r *Renderer) FPSVisible() bool {
	return r.showFPS
}

// Layout updates the projection after a window resize.
func (r *Renderer) Layout(width, height int) {
	r.projector.SetViewport(width, height)
}

// Update advances HUD animations by dt seconds.
func (r *Renderer) Update(tracking bool, dt float32) {
	r.cursor.Update(tracking, dt)
}

// ToggleFPS shows or hides the frame rate overlay.
func (r *Renderer) ToggleFPS() {
	r.showFPS = !r.showFPS
}

// Draw renders f onto screen.
func (r *Renderer) Draw(screen *ebiten.Image, f Frame) {
	if r.sprite == nil {
		r.sprite = newCircleSprite()
	}
	screen.Fill(r.background)

	r.projector.SetRotation(float32(f.Rotation.X), float32(f.Rotation.Y))
	r.drawParticles(screen, f.Positions, f.Material)
	r.cursor.Draw(screen, f.Gesture, f.Config, f.Now)

	if r.showFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nParticles: %d\nShape: %s",
			ebiten.ActualFPS(), ebiten.ActualTPS(), len(f.Positions)/3, f.Config.Shape))
	}
}

func (r *Renderer) drawParticles(screen *ebiten.Image, positions []float32, m particle.Material) {
	cr, cg, cb, ca := premultiply(m.Color, particle.Opacity)
	w, h := r.projector.Viewport()

	r.verts, r.inds = r.verts[:0], r.inds[:0]
	for i := 0; i+2 < len(positions); i += 3 {
		sx, sy, scale, ok := r.projector.Project(positions[i], positions[i+1], positions[i+2])
		if !ok {
			continue
		}
		half := max(float32(m.Size)*scale, minQuadSize) / 2
		if sx+half < 0 || sy+half < 0 || sx-half > float32(w) || sy-half > float32(h) {
			continue
		}

		r.verts, r.inds = appendQuad(r.verts, r.inds, sx, sy, half, cr, cg, cb, ca)
		if len(r.verts) >= maxQuadsPerBatch*4 {
			r.flush(screen)
		}
	}
	r.flush(screen)
}

// flush submits the accumulated quads in one DrawTriangles32 call.
func (r *Renderer) flush(screen *ebiten.Image) {
	if len(r.verts) == 0 {
		return
	}

	var op ebiten.DrawTrianglesOptions
	op.Blend = ebiten.BlendLighter
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	screen.DrawTriangles32(r.verts, r.inds, r.sprite, &op)

	r.verts, r.inds = r.verts[:0], r.inds[:0]
}

// appendQuad adds a sprite quad centered at (x, y).
func appendQuad(verts []ebiten.Vertex, inds []uint32, x, y, half, cr, cg, cb, ca float32) ([]ebiten.Vertex, []uint32) {
	base := uint32(len(verts))
	dx := [4]float32{-half, half, -half, half}
	dy := [4]float32{-half, -half, half, half}
	su := [4]float32{0, SpriteSize, 0, SpriteSize}
	sv := [4]float32{0, 0, SpriteSize, SpriteSize}

	for j := 0; j < 4; j++ {
		verts = append(verts, ebiten.Vertex{
			DstX:   x + dx[j],
			DstY:   y + dy[j],
			SrcX:   su[j],
			SrcY:   sv[j],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}
	inds = append(inds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
	return verts, inds
}

// premultiply converts c with an extra opacity into premultiplied vertex color.
func premultiply(c color.NRGBA, opacity float64) (r, g, b, a float32) {
	a = float32(float64(c.A) / 255 * opacity)
	r = float32(c.R) / 255 * a
	g = float32(c.G) / 255 * a
	b = float32(c.B) / 255 * a
	return r, g, b, a
}
