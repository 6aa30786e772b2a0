package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/order"
	"github.com/starford/raido/internal/pinservice"
	"github.com/starford/raido/internal/scanner"
)

// Handler holds API route handlers.
type Handler struct {
	svc        *pinservice.Service
	idx        *index.DB
	orderStore *order.FileStore
}

// NewHandler creates a new Handler. idx and orderStore may be nil when the
// search index or order persistence is not configured.
func NewHandler(svc *pinservice.Service, idx *index.DB, orderStore *order.FileStore) *Handler {
	return &Handler{svc: svc, idx: idx, orderStore: orderStore}
}

// ListPins handles GET /pins.
func (h *Handler) ListPins(w http.ResponseWriter, _ *http.Request) {
	pins := h.svc.CurrentPins()
	if pins == nil {
		pins = []models.Pin{}
	}
	writeJSON(w, http.StatusOK, PinListResponse{Pins: pins, Total: len(pins)})
}

// RemovePin handles DELETE /pins/{id}.
func (h *Handler) RemovePin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	if err := h.svc.RemovePin(id); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("pin not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody(err.Error()))
		default:
			slog.Error("remove pin failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderPins handles PUT /pins/order. When an order store is configured the
// new order is persisted as well.
func (h *Handler) ReorderPins(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Order == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("order is required"))
		return
	}

	pins := h.svc.Reorder(req.Order)

	if h.orderStore != nil {
		ids := make([]string, len(pins))
		for i, p := range pins {
			ids[i] = p.ID
		}
		if err := h.orderStore.Set(ids); err != nil {
			slog.Warn("persist order failed", slog.String("error", err.Error()))
		}
	}

	writeJSON(w, http.StatusOK, PinListResponse{Pins: pins, Total: len(pins)})
}

// TriggerScan handles POST /scan.
func (h *Handler) TriggerScan(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Scan())
}

// TriggerFullScan handles POST /scan/full.
func (h *Handler) TriggerFullScan(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ScanFull())
}

// ScanStats handles GET /scan/stats.
func (h *Handler) ScanStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.GetStats())
}

// SetRoots handles PUT /roots.
func (h *Handler) SetRoots(w http.ResponseWriter, r *http.Request) {
	var req RootsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	valid, invalid := h.svc.SetRootDirectories(req.Roots)
	if valid == nil {
		valid = []string{}
	}
	if invalid == nil {
		invalid = []scanner.InvalidRoot{}
	}
	writeJSON(w, http.StatusOK, RootsResponse{Valid: valid, Invalid: invalid})
}

// GetRoots handles GET /roots: reports the configured roots with a fresh
// validation pass.
func (h *Handler) GetRoots(w http.ResponseWriter, _ *http.Request) {
	roots := h.svc.Roots()
	writeJSON(w, http.StatusOK, map[string]any{"roots": roots})
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.idx == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody("search index not configured"))
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.idx.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
