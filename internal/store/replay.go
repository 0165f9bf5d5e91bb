package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/aura/internal/detector"
)

// ReplayDetector plays back a recorded session. Driven by a Source it picks
// frames by playback time, so a session replays at the speed it was recorded
// regardless of the tick rate. Sessions without timestamps, and direct Detect
// calls, advance one stored frame per call. The frame argument is ignored.
type ReplayDetector struct {
	frames []Frame
	loop   bool
	// span is the length of one timed pass; zero for untimed sessions.
	span time.Duration

	mu      sync.Mutex
	index   int
	origin  time.Duration
	started bool
	closed  bool
}

var _ detector.TimedDetector = (*ReplayDetector)(nil)

// NewReplayDetector loads every frame of sessionID. With loop set the
// playback restarts after the last frame; otherwise it yields no hands.
func NewReplayDetector(s *Store, sessionID string, loop bool) (*ReplayDetector, error) {
	if _, err := s.Sessions().GetByID(sessionID); err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	frames, err := s.Frames().List(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load frames for %s: %w", sessionID, err)
	}

	return newReplayDetector(frames, loop), nil
}

func newReplayDetector(frames []Frame, loop bool) *ReplayDetector {
	d := &ReplayDetector{frames: frames, loop: loop}
	if n := len(frames); n > 1 {
		// the last frame is held for one average frame interval
		if last := frames[n-1].Timestamp; last > 0 {
			d.span = last + last/time.Duration(n-1)
		}
	}
	return d
}

// Detect returns the hands of the next stored frame.
func (d *ReplayDetector) Detect(_ *gocv.Mat) ([]detector.HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, detector.ErrNotInitialized
	}
	return d.next(), nil
}

// DetectAt returns the hands of the frame recorded at ts, measured from the
// first DetectAt call.
func (d *ReplayDetector) DetectAt(_ *gocv.Mat, ts time.Duration) ([]detector.HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, detector.ErrNotInitialized
	}
	if d.span == 0 {
		return d.next(), nil
	}

	if !d.started || ts < d.origin {
		d.origin = ts
		d.started = true
	}
	elapsed := ts - d.origin
	if elapsed >= d.span {
		if !d.loop {
			return nil, nil
		}
		elapsed %= d.span
	}

	i := sort.Search(len(d.frames), func(i int) bool {
		return d.frames[i].Timestamp > elapsed
	})
	return d.frames[max(i-1, 0)].Hands, nil
}

// next advances the untimed cursor. d.mu must be held.
func (d *ReplayDetector) next() []detector.HandLandmarks {
	if len(d.frames) == 0 {
		return nil
	}
	if d.index >= len(d.frames) {
		if !d.loop {
			return nil
		}
		d.index = 0
	}

	hands := d.frames[d.index].Hands
	d.index++
	return hands
}

// Len returns the number of frames in the session.
func (d *ReplayDetector) Len() int {
	return len(d.frames)
}

// Duration returns the length of one timed pass, or zero when the session
// carries no timestamps.
func (d *ReplayDetector) Duration() time.Duration {
	return d.span
}

// Close stops playback.
func (d *ReplayDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
