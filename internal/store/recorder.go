package store

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/aura/internal/detector"
)

// recorderBatch is how many frames the recorder buffers per transaction.
const recorderBatch = 60

// Recorder appends detection results of a live run to a new session.
type Recorder struct {
	store   *Store
	session *Session

	mu      sync.Mutex
	pending []Frame
	seq     int
	first   *detector.Result
	last    *detector.Result
	closed  bool

	// dropped counts frames discarded by failed flushes.
	dropped  int
	dropWarn sync.Once
}

// NewRecorder creates a session named name and returns a recorder for it.
func NewRecorder(s *Store, name string) (*Recorder, error) {
	sess := &Session{Name: name}
	if err := s.Sessions().Create(sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	log.Printf("Recording landmarks to session %s (%s)", sess.ID, name)
	return &Recorder{
		store:   s,
		session: sess,
		pending: make([]Frame, 0, recorderBatch),
	}, nil
}

// SessionID returns the id of the session being recorded.
func (r *Recorder) SessionID() string {
	return r.session.ID
}

// Record buffers one detection result and flushes full batches. Nil results
// are skipped.
func (r *Recorder) Record(res *detector.Result) error {
	if res == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	if r.first == nil {
		r.first = res
	}
	r.last = res

	r.pending = append(r.pending, Frame{
		Sequence:  r.seq,
		Timestamp: res.Timestamp - r.first.Timestamp,
		Hands:     res.Hands,
	})
	r.seq++

	if len(r.pending) >= recorderBatch {
		return r.flush()
	}
	return nil
}

// flush writes the buffered batch. A failed batch is dropped so a broken
// database cannot grow the buffer past recorderBatch.
func (r *Recorder) flush() error {
	err := r.store.Frames().Append(r.session.ID, r.pending)
	if err != nil {
		r.dropped += len(r.pending)
		r.dropWarn.Do(func() {
			log.Printf("Dropping recorded frames for session %s: %v", r.session.ID, err)
		})
		err = fmt.Errorf("append frames: %w", err)
	}
	r.pending = r.pending[:0]
	return err
}

// Dropped returns how many frames were lost to failed writes.
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close flushes buffered frames and finalizes the session totals. It is safe
// to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	flushErr := r.flush()

	var duration time.Duration
	if r.first != nil {
		duration = r.last.Timestamp - r.first.Timestamp
	}
	stored := r.seq - r.dropped
	if err := r.store.Sessions().Finish(r.session.ID, stored, duration); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}

	if r.dropped > 0 {
		log.Printf("Recorded %d frames to session %s, dropped %d", stored, r.session.ID, r.dropped)
	} else {
		log.Printf("Recorded %d frames to session %s", stored, r.session.ID)
	}
	return flushErr
}
