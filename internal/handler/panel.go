package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tooni-app/salesdesk/internal/middleware"
	"github.com/tooni-app/salesdesk/internal/panel"
	"github.com/tooni-app/salesdesk/internal/store"
	"github.com/tooni-app/salesdesk/pkg/logger"
)

// PanelHandler exposes the suggestion panel state for a conversation.
type PanelHandler struct {
	manager *panel.Manager
	store   *store.Store
	logger  *logger.Logger
}

// NewPanelHandler creates a new panel handler.
func NewPanelHandler(m *panel.Manager, st *store.Store, log *logger.Logger) *PanelHandler {
	return &PanelHandler{
		manager: m,
		store:   st,
		logger:  log,
	}
}

// Get handles GET /api/v1/conversations/:id/panel
func (h *PanelHandler) Get(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.store.Conversation(conversationID); err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, h.manager.For(conversationID).Snapshot())
}

// Refresh handles POST /api/v1/conversations/:id/panel/refresh
func (h *PanelHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, err := h.store.Messages(conversationID)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	ctrl := h.manager.For(conversationID)
	ctrl.OnMessagesChanged(messages)
	ctrl.Refresh()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}
