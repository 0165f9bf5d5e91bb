package detector

import (
	"errors"
	"time"

	"gocv.io/x/gocv"
)

// ErrNotInitialized is returned when a detector is used before it was started.
var ErrNotInitialized = errors.New("detector not initialized")

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected. Frameless
	// implementations (mock, replay) accept a nil frame.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Starter is implemented by detectors with an expensive warm-up step
// (model load, subprocess start) that Source.Initialize should run eagerly.
type Starter interface {
	Start() error
}

// TimedDetector is implemented by detectors whose output depends on stream
// time, such as session playback. Source calls DetectAt with the tick
// timestamp instead of Detect.
type TimedDetector interface {
	DetectAt(frame *gocv.Mat, ts time.Duration) ([]HandLandmarks, error)
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinPresenceConf is the minimum hand presence confidence threshold (0.0-1.0).
	MinPresenceConf float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config tuned for responsive real-time tracking.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.4,
		MinPresenceConf: 0.4,
		MinTrackingConf: 0.4,
	}
}
