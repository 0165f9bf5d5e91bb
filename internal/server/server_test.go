package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ayusman/aura/internal/detector"
	"github.com/ayusman/aura/internal/gesture"
	"github.com/ayusman/aura/internal/particle"
	"github.com/ayusman/aura/internal/shape"
	"github.com/ayusman/aura/internal/store"
)

type fakeVisualizer struct {
	mu    sync.Mutex
	state gesture.State
	cfg   particle.Config
}

func newFakeVisualizer() *fakeVisualizer {
	return &fakeVisualizer{state: gesture.RestState(), cfg: particle.DefaultConfig()}
}

func (f *fakeVisualizer) State() gesture.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeVisualizer) setState(s gesture.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
}

func (f *fakeVisualizer) Config() particle.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fakeVisualizer) SetConfig(cfg particle.Config) particle.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg.Normalize()
	return f.cfg
}

func getHealth(t *testing.T, srv *Server) map[string]any {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestServer_Health(t *testing.T) {
	t.Run("without visualizer omits tracking", func(t *testing.T) {
		response := getHealth(t, New(Config{}))

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if _, ok := response["uptime"]; !ok {
			t.Error("expected 'uptime' field in response")
		}
		if _, ok := response["tracking"]; ok {
			t.Errorf("expected no 'tracking' field, got %v", response["tracking"])
		}
	})

	t.Run("reports tracking from the gesture state", func(t *testing.T) {
		vis := newFakeVisualizer()
		srv := New(Config{Visualizer: vis})
		defer srv.Shutdown(context.Background())

		if got := getHealth(t, srv)["tracking"]; got != false {
			t.Errorf("at rest: expected tracking false, got %v", got)
		}

		vis.setState(gesture.Interpret(gesture.RestState(), &detector.Result{
			Hands: []detector.HandLandmarks{detector.HandAt(detector.Left, 0.4, 0.5, false)},
		}))
		if got := getHealth(t, srv)["tracking"]; got != true {
			t.Errorf("with a hand: expected tracking true, got %v", got)
		}
	})

	t.Run("rejects non-GET", func(t *testing.T) {
		srv := New(Config{})
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_ConditionalRoutes(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "aura.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	routes := []string{"/api/config", "/api/gesture", "/api/sessions", "/api/stream"}

	tests := []struct {
		name       string
		config     Config
		registered map[string]bool
	}{
		{
			name:       "nothing wired",
			config:     Config{},
			registered: map[string]bool{},
		},
		{
			name:       "visualizer only",
			config:     Config{Visualizer: newFakeVisualizer()},
			registered: map[string]bool{"/api/config": true, "/api/gesture": true},
		},
		{
			name:       "store only",
			config:     Config{Store: s},
			registered: map[string]bool{"/api/sessions": true},
		},
		{
			name:       "frames only",
			config:     Config{Frames: NewFrameBuffer(0)},
			registered: map[string]bool{"/api/stream": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(tt.config)
			defer srv.Shutdown(context.Background())

			for _, path := range routes {
				_, pattern := srv.mux.Handler(httptest.NewRequest(http.MethodGet, path, nil))
				if got := pattern != ""; got != tt.registered[path] {
					t.Errorf("%s: registered = %v, want %v", path, got, tt.registered[path])
				}
			}
		})
	}
}

func TestServer_NotFound(t *testing.T) {
	srv := New(Config{Visualizer: newFakeVisualizer()})
	defer srv.Shutdown(context.Background())

	for _, path := range []string{"/api/nonexistent", "/api/sessions", "/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestServer_StaticDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<canvas id=\"aura\"></canvas>"), 0o644); err != nil {
		t.Fatalf("failed to write index: %v", err)
	}

	srv := New(Config{StaticDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `id="aura"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}

	// the API keeps precedence over the file server
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected health JSON under a static root, got %s", ct)
	}
}

func TestServer_ConfigRoundTrip(t *testing.T) {
	vis := newFakeVisualizer()
	srv := New(Config{Visualizer: vis})
	defer srv.Shutdown(context.Background())

	req := httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(`{"shape":"torus","hue":120}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cfg := vis.Config()
	if cfg.Shape != shape.Torus || cfg.Hue != 120 {
		t.Errorf("config not applied: %+v", cfg)
	}
	if cfg.Count != particle.DefaultConfig().Count {
		t.Errorf("untouched fields should keep their value, Count = %d", cfg.Count)
	}
}

func TestServer_ShutdownWithoutListen(t *testing.T) {
	srv := New(Config{Visualizer: newFakeVisualizer()})
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
