package detector

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gocv.io/x/gocv"

	"github.com/ayusman/aura/internal/capture"
)

var tracer = otel.Tracer("github.com/ayusman/aura/internal/detector")

// Result is one detection pass: at most MaxHands hands for a timestamp.
type Result struct {
	Hands     []HandLandmarks `json:"hands"`
	Timestamp time.Duration   `json:"timestamp"`
}

// Source binds an optional camera to a Detector and serves per-tick results.
// It is driven from the render loop; only Initialize may race with itself.
type Source struct {
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector Detector
	config   Config
	tap      func(*gocv.Mat)

	initializing atomic.Bool
	ready        atomic.Bool

	// life orders Initialize's steps against Close.
	life   sync.Mutex
	closed bool

	mu   sync.Mutex
	last *Result
}

// SourceOption customizes a Source.
type SourceOption func(*Source)

// WithCamera makes the source read a frame per tick from camera.
// Without a camera the detector is called with a nil frame.
func WithCamera(camera capture.Camera) SourceOption {
	return func(s *Source) { s.camera = camera }
}

// WithMotionGate reuses the previous result when the frame changed by less
// than threshold percent of pixels. Ignored without a camera.
func WithMotionGate(motion *capture.MotionDetector) SourceOption {
	return func(s *Source) { s.motion = motion }
}

// WithFrameTap hands every captured frame to fn before detection. fn must
// not retain the Mat after returning.
func WithFrameTap(fn func(*gocv.Mat)) SourceOption {
	return func(s *Source) { s.tap = fn }
}

// WithConfig overrides DefaultConfig.
func WithConfig(cfg Config) SourceOption {
	return func(s *Source) { s.config = cfg }
}

// NewSource creates a Source around d.
func NewSource(d Detector, opts ...SourceOption) *Source {
	s := &Source{
		detector: d,
		config:   DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config.MaxHands <= 0 {
		s.config.MaxHands = 2
	}
	return s
}

// Initialize opens the camera and warms the detector. It is idempotent: once
// ready it returns true, and a call made while another is still initializing
// returns false without side effects. Failures are logged and reported as
// false; retrying is up to the caller. After Close it always returns false,
// and anything it opened concurrently with Close is released again.
func (s *Source) Initialize(ctx context.Context) bool {
	if s.ready.Load() {
		return true
	}
	if !s.initializing.CompareAndSwap(false, true) {
		return false
	}
	defer s.initializing.Store(false)

	_, span := tracer.Start(ctx, "landmark.initialize")
	defer span.End()

	if s.isClosed() {
		return false
	}
	if s.camera != nil {
		if err := s.camera.Open(); err != nil {
			log.Printf("Landmark source: open camera: %v", err)
			span.RecordError(err)
			return false
		}
		if s.isClosed() {
			s.camera.Close()
			return false
		}
	}
	if st, ok := s.detector.(Starter); ok {
		if err := st.Start(); err != nil {
			log.Printf("Landmark source: start detector: %v", err)
			span.RecordError(err)
			return false
		}
	}

	s.life.Lock()
	defer s.life.Unlock()
	if s.closed {
		s.release()
		span.SetAttributes(attribute.Bool("landmark.closed", true))
		return false
	}
	s.ready.Store(true)
	log.Println("Landmark source ready")
	return true
}

func (s *Source) isClosed() bool {
	s.life.Lock()
	defer s.life.Unlock()
	return s.closed
}

// Ready reports whether Initialize has succeeded.
func (s *Source) Ready() bool {
	return s.ready.Load()
}

// Detect runs one detection pass for the frame at ts. It returns nil when the
// source is not initialized, no frame is available, or the detector failed;
// callers treat nil as "no hands this tick".
func (s *Source) Detect(ctx context.Context, ts time.Duration) *Result {
	if !s.ready.Load() {
		return nil
	}

	_, span := tracer.Start(ctx, "landmark.detect")
	defer span.End()

	var frame *gocv.Mat
	if s.camera != nil {
		f, err := s.camera.ReadFrame()
		if err != nil {
			return nil
		}
		defer f.Close()
		frame = f
		if s.tap != nil {
			s.tap(frame)
		}

		if s.motion != nil {
			moved, _ := s.motion.Detect(frame)
			if prev := s.previous(); !moved && prev != nil {
				span.SetAttributes(attribute.Bool("landmark.reused", true))
				return &Result{Hands: prev.Hands, Timestamp: ts}
			}
		}
	}

	var (
		hands []HandLandmarks
		err   error
	)
	if td, ok := s.detector.(TimedDetector); ok {
		hands, err = td.DetectAt(frame, ts)
	} else {
		hands, err = s.detector.Detect(frame)
	}
	if err != nil {
		span.RecordError(err)
		return nil
	}
	if len(hands) > s.config.MaxHands {
		hands = hands[:s.config.MaxHands]
	}
	span.SetAttributes(attribute.Int("landmark.hands", len(hands)))

	res := &Result{Hands: hands, Timestamp: ts}
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	return res
}

func (s *Source) previous() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Resume drops the motion baseline and the cached result, so the first frame
// after a tracking pause always runs detection.
func (s *Source) Resume() {
	if s.motion != nil {
		s.motion.Reset()
	}
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()
}

// CalculateOpenness applies the openness heuristic to a hand.
func (s *Source) CalculateOpenness(points *[NumLandmarks]Point3D) bool {
	return CalculateOpenness(points)
}

// Camera returns the bound camera, or nil.
func (s *Source) Camera() capture.Camera {
	return s.camera
}

// Close releases the detector, camera and motion detector. A closed source
// cannot be initialized again.
func (s *Source) Close() error {
	s.life.Lock()
	defer s.life.Unlock()

	s.closed = true
	s.ready.Store(false)
	return s.release()
}

// release closes everything the source may have opened. s.life must be held.
func (s *Source) release() error {
	var firstErr error
	if s.detector != nil {
		if err := s.detector.Close(); err != nil {
			firstErr = err
		}
	}
	if s.camera != nil {
		if err := s.camera.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.motion != nil {
		s.motion.Close()
	}
	return firstErr
}
