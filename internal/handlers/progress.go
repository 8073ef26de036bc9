package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/fitstack/apiserver/internal/services"
	"github.com/fitstack/apiserver/internal/store"
	"github.com/fitstack/apiserver/types"
)

// ProgressHandler provides HTTP handlers for body-progress entries.
type ProgressHandler struct {
	progressService *services.ProgressService
	logger          *slog.Logger
}

// NewProgressHandler constructs a handler with the provided service.
func NewProgressHandler(progressService *services.ProgressService, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		logger:          logger,
	}
}

// ProgressRouter registers progress routes on the given router.
func ProgressRouter(r chi.Router, handler *ProgressHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware)
	r.Get("/", handler.ListEntries)
	r.Post("/", handler.CreateEntry)
	r.Delete("/{entryID}", handler.DeleteEntry)
}

// ProgressCreateRequest is the JSON payload for creating an entry.
type ProgressCreateRequest struct {
	Weight             float64            `json:"weight"`
	BodyMeasurements   map[string]float64 `json:"body_measurements"`
	PerformanceMetrics map[string]float64 `json:"performance_metrics"`
	Date               string             `json:"date"`
}

func (r ProgressCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Weight, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&r.Date, validation.Required),
	)
}

func (h *ProgressHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries, err := h.progressService.ListByOwner(r.Context(), userID)
	if err != nil {
		h.logger.Error("list progress entries failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch progress entries")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *ProgressHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ProgressCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entryDate, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	created, err := h.progressService.Create(r.Context(), types.ProgressEntry{
		UserID:             userID,
		Weight:             req.Weight,
		BodyMeasurements:   req.BodyMeasurements,
		PerformanceMetrics: req.PerformanceMetrics,
		Date:               entryDate,
	})
	if err != nil {
		h.logger.Error("create progress entry failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add progress entry")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *ProgressHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseResourceID(chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := h.progressService.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "progress entry not found")
			return
		}
		h.logger.Error("delete progress entry failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete progress entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
