package particle

import (
	"context"
	"log"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ayusman/aura/internal/gesture"
	"github.com/ayusman/aura/internal/shape"
)

var tracer = otel.Tracer("github.com/ayusman/aura/internal/particle")

// Palette-to-world mapping for the gesture center. Both axes are inverted:
// the camera image is mirrored and its Y grows downward.
const (
	CenterScaleX = -220.0
	CenterScaleY = -160.0
)

const (
	// ApproachRate is the per-frame lerp toward placed target plus turbulence.
	ApproachRate = 0.15

	turbulenceBase = 1.5
	turbulenceGain = 0.1
	turbulenceFreq = 0.1

	// referenceRate is the frame rate the smoothing factors were tuned at.
	referenceRate = 60.0
)

// Smoothing holds the exponential smoothing factors applied to the gesture
// signal each tick.
type Smoothing struct {
	Center    float64
	Expansion float64
	Rotation  float64
	// FrameCorrected rescales each factor by elapsed time relative to 60 Hz,
	// so the response no longer depends on the tick rate.
	FrameCorrected bool
}

// DefaultSmoothing returns the tuned per-frame factors.
func DefaultSmoothing() Smoothing {
	return Smoothing{
		Center:    0.12,
		Expansion: 0.15,
		Rotation:  0.08,
	}
}

func (s Smoothing) factor(alpha float64, dt time.Duration) float64 {
	if !s.FrameCorrected || dt <= 0 {
		return alpha
	}
	return 1 - math.Pow(1-alpha, dt.Seconds()*referenceRate)
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithSmoothing overrides DefaultSmoothing.
func WithSmoothing(sm Smoothing) Option {
	return func(s *Simulator) { s.smoothing = sm }
}

// WithTurbulence scales the turbulence amplitude; 0 disables it.
func WithTurbulence(scale float64) Option {
	return func(s *Simulator) { s.turbulence = scale }
}

// WithRand sets the random source handed to the shape generator.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) { s.rng = rng }
}

// Simulator owns the particle buffers and the smoothed gesture signal.
// It is not safe for concurrent use; the render loop is its only caller.
type Simulator struct {
	positions []float32
	targets   []float32
	cfg       Config

	center    mgl32.Vec3
	expansion float64
	rotation  gesture.Rotation
	material  Material

	smoothing  Smoothing
	turbulence float64
	rng        *rand.Rand

	last    time.Duration
	started bool
}

// New builds a Simulator populated for cfg. Particles start at their targets.
func New(cfg Config, opts ...Option) *Simulator {
	s := &Simulator{
		expansion:  gesture.RestExpansion,
		smoothing:  DefaultSmoothing(),
		turbulence: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s.Reconfigure(context.Background(), cfg)
	s.material = material(s.cfg, false, 0)
	return s
}

// Reconfigure applies cfg. When shape or count changed the targets are
// regenerated; when count changed the positions are replaced too, so new
// particles appear at their targets. It reports whether a reshape happened.
func (s *Simulator) Reconfigure(ctx context.Context, cfg Config) bool {
	cfg = cfg.Normalize()
	if s.targets != nil && cfg.Shape == s.cfg.Shape && cfg.Count == s.cfg.Count {
		s.cfg = cfg
		return false
	}

	_, span := tracer.Start(ctx, "particle.reshape", trace.WithAttributes(
		attribute.String("particle.shape", cfg.Shape.String()),
		attribute.Int("particle.count", cfg.Count),
	))
	defer span.End()

	targets := shape.Generate(cfg.Shape, cfg.Count, s.rng)
	if len(s.positions) != len(targets) {
		s.positions = slices.Clone(targets)
	}
	s.targets = targets
	s.cfg = cfg

	log.Printf("Particle field reshaped: %s x %d", cfg.Shape, cfg.Count)
	return true
}

// Tick advances the field by one frame. now is the animation clock; it drives
// turbulence and the breathing pulse, and the gap since the previous tick is
// used only when smoothing is frame corrected.
func (s *Simulator) Tick(state gesture.State, cfg Config, now time.Duration) {
	s.Reconfigure(context.Background(), cfg)

	var dt time.Duration
	if s.started {
		dt = now - s.last
	}
	s.last, s.started = now, true

	sm := s.smoothing
	target := mgl32.Vec3{
		float32((state.Center.X - 0.5) * CenterScaleX),
		float32((state.Center.Y - 0.5) * CenterScaleY),
		0,
	}
	s.center = s.center.Add(target.Sub(s.center).Mul(float32(sm.factor(sm.Center, dt))))
	s.expansion += (state.Expansion - s.expansion) * sm.factor(sm.Expansion, dt)
	rot := sm.factor(sm.Rotation, dt)
	s.rotation.X += (state.Rotation.X - s.rotation.X) * rot
	s.rotation.Y += (state.Rotation.Y - s.rotation.Y) * rot

	s.step(now.Seconds()*s.cfg.Speed, float32(sm.factor(ApproachRate, dt)))
	s.material = material(s.cfg, state.Tracking(), now)
}

// step moves every particle toward its placed target plus turbulence.
func (s *Simulator) step(phase float64, rate float32) {
	exp := float32(s.expansion)
	cx, cy, cz := s.center[0], s.center[1], s.center[2]
	amp := (turbulenceBase + s.expansion*turbulenceGain) * s.turbulence

	pos, tgt := s.positions, s.targets
	for i := 0; i+2 < len(tgt); i += 3 {
		tx, ty, tz := tgt[i], tgt[i+1], tgt[i+2]

		var nx, ny, nz float32
		if amp != 0 {
			nx = float32(math.Sin(phase+float64(tx)*turbulenceFreq) * amp)
			ny = float32(math.Cos(phase+float64(ty)*turbulenceFreq) * amp)
			nz = float32(math.Sin(phase*0.5+float64(tz)*turbulenceFreq) * amp)
		}

		pos[i] += (tx*exp + cx + nx - pos[i]) * rate
		pos[i+1] += (ty*exp + cy + ny - pos[i+1]) * rate
		pos[i+2] += (tz*exp + cz + nz - pos[i+2]) * rate
	}
}

// Positions returns the live position buffer (x,y,z per particle). Callers
// must not modify it or keep it past the next Tick.
func (s *Simulator) Positions() []float32 { return s.positions }

// Targets returns the shape target buffer.
func (s *Simulator) Targets() []float32 { return s.targets }

// Len returns the number of particles.
func (s *Simulator) Len() int { return len(s.positions) / 3 }

// Config returns the configuration last applied.
func (s *Simulator) Config() Config { return s.cfg }

// Center returns the smoothed world-space center.
func (s *Simulator) Center() mgl32.Vec3 { return s.center }

// Expansion returns the smoothed expansion.
func (s *Simulator) Expansion() float64 { return s.expansion }

// Rotation returns the smoothed object rotation (z is always 0).
func (s *Simulator) Rotation() gesture.Rotation { return s.rotation }

// Material returns the appearance computed by the last Tick.
func (s *Simulator) Material() Material { return s.material }
