// Package detector provides the hand landmark source: landmark types, the
// detector abstraction and the per-frame Source the render loop polls.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Fingertips lists the four non-thumb fingertip indices used by the openness heuristic.
var Fingertips = [4]int{IndexTip, MiddleTip, RingTip, PinkyTip}

// OpenThreshold is the average wrist-to-fingertip distance, in normalized
// image units, above which a hand counts as open. Empirically tuned; it does
// not scale with hand size or distance from the camera.
const OpenThreshold = 0.22

// Handedness labels assigned by the landmark model. The label is produced
// fresh each frame and is not a stable identity.
const (
	Left  = "Left"
	Right = "Right"
)

// Point3D is a normalized landmark position. X and Y are in [0,1] with the
// origin at the top-left of the camera frame; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Wrist returns the wrist landmark.
func (h *HandLandmarks) Wrist() Point3D {
	return h.Points[Wrist]
}

// distance2D is the Euclidean distance between a and b ignoring depth.
func distance2D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Distance2D returns the planar distance between two landmarks.
func Distance2D(a, b Point3D) float64 {
	return distance2D(a, b)
}

// AverageTipDistance returns the mean planar distance from the wrist to the
// four fingertips.
func AverageTipDistance(points *[NumLandmarks]Point3D) float64 {
	if points == nil {
		return 0
	}
	wrist := points[Wrist]
	var sum float64
	for _, tip := range Fingertips {
		sum += distance2D(points[tip], wrist)
	}
	return sum / float64(len(Fingertips))
}

// CalculateOpenness reports whether the hand is open. A nil hand is closed.
func CalculateOpenness(points *[NumLandmarks]Point3D) bool {
	if points == nil {
		return false
	}
	return AverageTipDistance(points) > OpenThreshold
}
