package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/aura/internal/detector"
	"github.com/ayusman/aura/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func seedSession(t *testing.T, s *store.Store) *store.Session {
	t.Helper()

	sess := &store.Session{Name: "demo"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	frames := []store.Frame{
		{Sequence: 0, Timestamp: 0, Hands: []detector.HandLandmarks{detector.HandAt(detector.Left, 0.3, 0.5, true)}},
		{Sequence: 1, Timestamp: 16 * time.Millisecond},
	}
	if err := s.Frames().Append(sess.ID, frames); err != nil {
		t.Fatalf("failed to append frames: %v", err)
	}
	if err := s.Sessions().Finish(sess.ID, len(frames), 16*time.Millisecond); err != nil {
		t.Fatalf("failed to finish session: %v", err)
	}
	return sess
}

func TestSessionsHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionsHandler(s)

	t.Run("empty list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var response listSessionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Sessions == nil || len(response.Sessions) != 0 {
			t.Errorf("expected empty non-nil list, got %v", response.Sessions)
		}
	})

	sess := seedSession(t, s)

	t.Run("lists recorded sessions", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		var response listSessionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Sessions) != 1 {
			t.Fatalf("expected 1 session, got %d", len(response.Sessions))
		}
		got := response.Sessions[0]
		if got.ID != sess.ID || got.Frames != 2 || got.DurationMS != 16 {
			t.Errorf("unexpected session %+v", got)
		}
	})

	t.Run("collection rejects POST", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestSessionsHandler_Item(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionsHandler(s)
	sess := seedSession(t, s)

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var response sessionResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Name != "demo" {
			t.Errorf("expected name demo, got %q", response.Name)
		}
	})

	t.Run("frames", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/frames", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var response listFramesResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Frames) != 2 {
			t.Fatalf("expected 2 frames, got %d", len(response.Frames))
		}
		if len(response.Frames[0].Hands) != 1 || response.Frames[0].Hands[0].Handedness != detector.Left {
			t.Errorf("unexpected first frame %+v", response.Frames[0])
		}
		if response.Frames[1].Hands == nil || response.Frames[1].TimestampMS != 16 {
			t.Errorf("unexpected second frame %+v", response.Frames[1])
		}
	})

	t.Run("unknown subresource", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/other", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sess.ID, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
		}
		if n, _ := s.Frames().Count(sess.ID); n != 0 {
			t.Errorf("expected frames to be deleted, %d remain", n)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		for _, path := range []string{"/api/sessions/" + sess.ID, "/api/sessions/" + sess.ID + "/frames"} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusNotFound {
				t.Errorf("GET %s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
			}
		}

		req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sess.ID, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("DELETE: expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}
