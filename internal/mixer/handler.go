package mixer

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the render model and the UI gestures over HTTP using go-chi.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler returns a Handler serving svc.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the mixer endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/mixer", func(r chi.Router) {
		r.Get("/", h.GetSnapshot)
		r.Post("/refresh", h.Refresh)
		r.Post("/show-all", h.ShowAll)
		r.Get("/memory", h.GetMemory)
		r.Route("/streams/{stream_id}", func(r chi.Router) {
			r.Post("/volume", h.SetVolume)
			r.Delete("/", h.RemoveStream)
		})
	})
}

// volumeRequest is the body of POST /mixer/streams/{stream_id}/volume.
// Final is set on drag release.
type volumeRequest struct {
	Fraction *float64 `json:"fraction"`
	Final    bool     `json:"final"`
}

// GetSnapshot handles GET /mixer. The first call refreshes.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.svc.Snapshot()
	if !ok {
		snap = h.svc.Refresh(r.Context())
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// Refresh handles POST /mixer/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.ManualRefresh(r.Context()))
}

// ShowAll handles POST /mixer/show-all.
func (h *Handler) ShowAll(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.ShowAll(r.Context())
	h.log.Info("hidden streams cleared", slog.Int("rows", len(snap.Rows)))
	h.writeJSON(w, http.StatusOK, snap)
}

// GetMemory handles GET /mixer/memory.
func (h *Handler) GetMemory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Memory())
}

// SetVolume handles POST /mixer/streams/{stream_id}/volume.
// Body: { "fraction": 0.4, "final": false }.
func (h *Handler) SetVolume(w http.ResponseWriter, r *http.Request) {
	id, err := ParseStreamID(chi.URLParam(r, "stream_id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var req volumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Fraction == nil {
		h.log.Debug("invalid volume body", slog.String("stream_id", id.String()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.svc.SetVolume(r.Context(), id, *req.Fraction, req.Final); err != nil {
		h.writeError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// RemoveStream handles DELETE /mixer/streams/{stream_id}.
func (h *Handler) RemoveStream(w http.ResponseWriter, r *http.Request) {
	id, err := ParseStreamID(chi.URLParam(r, "stream_id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.svc.Remove(r.Context(), id); err != nil {
		h.writeError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, id StreamID, err error) {
	if errors.Is(err, ErrUnknownStream) {
		h.log.Debug("gesture for unknown stream", slog.String("stream_id", id.String()))
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.log.Error("gesture failed", slog.String("stream_id", id.String()), slog.String("error", err.Error()))
	w.WriteHeader(http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Debug("writing response failed", slog.String("error", err.Error()))
	}
}
