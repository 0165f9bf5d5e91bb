package server

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"
)

// DefaultStreamInterval caps the preview at ~15 FPS.
const DefaultStreamInterval = 66 * time.Millisecond

// FrameBuffer keeps the most recent camera frame as JPEG for the preview
// stream. The render loop feeds it through Put; encoding only happens while
// at least one client is watching.
type FrameBuffer struct {
	interval time.Duration
	watchers atomic.Int32

	mu      sync.RWMutex
	jpeg    []byte
	seq     uint64
	updated time.Time
}

// NewFrameBuffer creates a FrameBuffer that encodes at most one frame per
// interval. A non-positive interval uses DefaultStreamInterval.
func NewFrameBuffer(interval time.Duration) *FrameBuffer {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return &FrameBuffer{interval: interval}
}

// Put encodes frame when someone is watching and the last encode is older
// than the interval. The Mat is not retained.
func (b *FrameBuffer) Put(frame *gocv.Mat) {
	if frame == nil || frame.Empty() || b.watchers.Load() == 0 {
		return
	}

	b.mu.RLock()
	fresh := time.Since(b.updated) < b.interval
	b.mu.RUnlock()
	if fresh {
		return
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return
	}
	defer buf.Close()

	b.Store(buf.GetBytes())
}

// Store replaces the buffered JPEG with a copy of data.
func (b *FrameBuffer) Store(data []byte) {
	jpeg := make([]byte, len(data))
	copy(jpeg, data)

	b.mu.Lock()
	b.jpeg = jpeg
	b.seq++
	b.updated = time.Now()
	b.mu.Unlock()
}

// Latest returns the buffered JPEG and its sequence number. The sequence is
// zero until the first frame arrives.
func (b *FrameBuffer) Latest() ([]byte, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.jpeg, b.seq
}

// Watchers returns the number of connected stream clients.
func (b *FrameBuffer) Watchers() int {
	return int(b.watchers.Load())
}

func (b *FrameBuffer) watch() (unwatch func()) {
	b.watchers.Add(1)
	return func() { b.watchers.Add(-1) }
}

// StreamHandler serves MJPEG frames from a FrameBuffer.
type StreamHandler struct {
	frames *FrameBuffer
}

// NewStreamHandler creates a new StreamHandler reading from frames.
func NewStreamHandler(frames *FrameBuffer) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	unwatch := h.frames.watch()
	defer unwatch()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ticker := time.NewTicker(h.frames.interval)
	defer ticker.Stop()

	var sent uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		jpeg, seq := h.frames.Latest()
		if seq == sent {
			continue
		}
		sent = seq

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
		if _, err := w.Write(jpeg); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
