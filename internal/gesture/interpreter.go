// Package gesture turns per-frame hand landmarks into the continuous control
// signals (center, expansion, rotation) that drive the particle field.
package gesture

import (
	"math"

	"github.com/ayusman/aura/internal/detector"
)

// Expansion mapping constants.
const (
	// RestExpansion is the scale used when no hand is tracked.
	RestExpansion = 1.0
	// MinBaseExpansion floors the two-hand distance mapping.
	MinBaseExpansion = 0.1
	// MaxExpansion caps the combined two-hand expansion.
	MaxExpansion = 25.0
	// DistanceOffset is the wrist separation that maps to zero zoom.
	DistanceOffset = 0.05
	// DistanceGain scales wrist separation into expansion.
	DistanceGain = 12.0
	// OpenHandBoost is added to the multiplier for every open hand.
	OpenHandBoost = 1.5
	// SingleOpenExpansion and SingleClosedExpansion are the one-hand sculpt values.
	SingleOpenExpansion   = 2.5
	SingleClosedExpansion = 0.5
)

// Vec3 is a point in palette space: X and Y in [0,1], Z relative depth.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation is an Euler angle pair in radians.
type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hand is one tracked hand for the current frame. Hands carry no identity
// across frames; the Left/Right label is reassigned by the model every frame.
type Hand struct {
	detector.HandLandmarks
	IsOpen bool `json:"isOpen"`
}

// State is the control signal for one frame. It is recomputed wholesale each
// frame; temporal smoothing happens in the particle simulator.
type State struct {
	Hands []Hand `json:"hands"`
	// Center is the mean wrist position of the tracked hands.
	Center Vec3 `json:"center"`
	// Distance is the planar wrist separation; zero unless exactly two hands are present.
	Distance  float64  `json:"distance"`
	Expansion float64  `json:"expansion"`
	Rotation  Rotation `json:"rotation"`
}

// RestState is the state before any hand has been seen.
func RestState() State {
	return State{
		Hands:     []Hand{},
		Center:    Vec3{X: 0.5, Y: 0.5},
		Expansion: RestExpansion,
	}
}

// Tracking reports whether at least one hand is present.
func (s State) Tracking() bool {
	return len(s.Hands) > 0
}

// Interpret maps this frame's detection result to a State. With no hands
// (nil result included) expansion returns to rest while center and rotation
// keep prev's values, so a brief tracking loss does not snap the field.
func Interpret(prev State, res *detector.Result) State {
	if res == nil || len(res.Hands) == 0 {
		return State{
			Hands:     []Hand{},
			Center:    prev.Center,
			Expansion: RestExpansion,
			Rotation:  prev.Rotation,
		}
	}

	hands := make([]Hand, len(res.Hands))
	for i := range res.Hands {
		hands[i] = Hand{
			HandLandmarks: res.Hands[i],
			IsOpen:        detector.CalculateOpenness(&res.Hands[i].Points),
		}
	}

	state := State{
		Hands:    hands,
		Center:   center(hands),
		Rotation: rotation(hands),
	}
	state.Distance, state.Expansion = expansion(hands)
	return state
}

// center averages the wrist landmarks.
func center(hands []Hand) Vec3 {
	var c Vec3
	for i := range hands {
		w := hands[i].Wrist()
		c.X += w.X
		c.Y += w.Y
		c.Z += w.Z
	}
	n := float64(len(hands))
	return Vec3{X: c.X / n, Y: c.Y / n, Z: c.Z / n}
}

// rotation steers from the hand labeled Right, falling back to the first hand.
func rotation(hands []Hand) Rotation {
	steer := &hands[0]
	for i := range hands {
		if hands[i].Handedness == detector.Right {
			steer = &hands[i]
			break
		}
	}
	w := steer.Wrist()
	return Rotation{
		X: (w.Y - 0.5) * 2 * math.Pi,
		Y: (w.X - 0.5) * 2 * math.Pi,
	}
}

// expansion returns the wrist distance (two hands only) and the zoom factor.
func expansion(hands []Hand) (distance, scale float64) {
	switch len(hands) {
	case 0:
		return 0, RestExpansion
	case 1:
		if hands[0].IsOpen {
			return 0, SingleOpenExpansion
		}
		return 0, SingleClosedExpansion
	}

	distance = detector.Distance2D(hands[0].Wrist(), hands[1].Wrist())
	base := math.Max(MinBaseExpansion, (distance-DistanceOffset)*DistanceGain)

	open := 0
	for i := 0; i < 2; i++ {
		if hands[i].IsOpen {
			open++
		}
	}
	multiplier := 1 + OpenHandBoost*float64(open)

	return distance, math.Min(MaxExpansion, base*multiplier)
}
