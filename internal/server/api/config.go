// Package api provides HTTP API handlers for the Aura particle visualizer.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ayusman/aura/internal/particle"
	"github.com/ayusman/aura/internal/shape"
)

// maxConfigBody bounds PUT /api/config payloads.
const maxConfigBody = 4 << 10

// ConfigStore holds the live particle configuration.
type ConfigStore interface {
	Config() particle.Config
	SetConfig(cfg particle.Config) particle.Config
}

// ConfigHandler serves GET and PUT /api/config.
type ConfigHandler struct {
	configs ConfigStore
}

// NewConfigHandler creates a new ConfigHandler backed by configs.
func NewConfigHandler(configs ConfigStore) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

type configResponse struct {
	Config particle.Config `json:"config"`
	Shapes []shape.Shape   `json:"shapes"`
}

// ServeHTTP implements the http.Handler interface.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut, http.MethodPatch:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// get handles GET /api/config and returns the current snapshot.
func (h *ConfigHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		Config: h.configs.Config(),
		Shapes: shape.All,
	})
}

// update handles PUT /api/config. Fields missing from the body keep their
// current values; the merged result is normalized and published as a whole.
func (h *ConfigHandler) update(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxConfigBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}
	if len(body) > maxConfigBody {
		writeError(w, http.StatusRequestEntityTooLarge, "Body too large")
		return
	}

	cfg := h.configs.Config()
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, shape.ErrInvalidShape) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	writeJSON(w, http.StatusOK, configResponse{
		Config: h.configs.SetConfig(cfg),
		Shapes: shape.All,
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
