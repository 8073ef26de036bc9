package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fitstack/apiserver/internal/services"
)

// WingmanHandler relays chat messages to the generative-language
// collaborator. The endpoint is stateless: beyond the standard auth
// gate it only forwards the message and returns the reply. A nil
// service means no collaborator is configured; the route still exists
// and reports the service unavailable after the auth gate.
type WingmanHandler struct {
	wingmanService *services.WingmanService
	logger         *slog.Logger
}

// NewWingmanHandler constructs a handler with the provided service.
func NewWingmanHandler(wingmanService *services.WingmanService, logger *slog.Logger) *WingmanHandler {
	return &WingmanHandler{
		wingmanService: wingmanService,
		logger:         logger,
	}
}

// WingmanRouter registers chat routes on the given router.
func WingmanRouter(r chi.Router, handler *WingmanHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware)
	r.Post("/chat", handler.Chat)
}

// ChatRequest is the JSON payload for a chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the collaborator's reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

func (h *WingmanHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	if h.wingmanService == nil {
		writeError(w, http.StatusInternalServerError, "ai service unavailable")
		return
	}

	reply, err := h.wingmanService.Chat(r.Context(), req.Message)
	if err != nil {
		h.logger.Error("chat relay failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ai service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}
