package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tooni-app/salesdesk/internal/middleware"
	"github.com/tooni-app/salesdesk/internal/model"
	"github.com/tooni-app/salesdesk/internal/store"
	"github.com/tooni-app/salesdesk/pkg/logger"
)

const (
	paymentLinkMessage = "Aqui está seu link de pagamento: https://pagamento.tooni.app/checkout/123"
	soldThanksMessage  = "Obrigado pela sua compra! Estamos processando seu pedido."
)

// ConversationHandler handles conversation endpoints.
type ConversationHandler struct {
	store  *store.Store
	logger *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(st *store.Store, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		store:  st,
		logger: log,
	}
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	convs := h.store.Conversations()
	writeJSON(w, http.StatusOK, model.ListConversationsResponse{
		Conversations: convs,
		Total:         len(convs),
	})
}

// Get handles GET /api/v1/conversations/:id
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.store.Conversation(conversationID)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// Send handles POST /api/v1/conversations/:id/messages
func (h *ConversationHandler) Send(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateSender(req.Sender); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Sender == "" {
		req.Sender = model.SenderAgent
	}

	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.store.AppendMessage(conversationID, req.Sender, req.Content)
	if err != nil {
		h.writeStoreError(w, err, "failed to send message")
		return
	}

	conv, err := h.store.Conversation(conversationID)
	if err != nil {
		h.writeStoreError(w, err, "failed to send message")
		return
	}

	writeJSON(w, http.StatusCreated, model.SendMessageResponse{
		Message:      msg,
		Conversation: conv,
	})
}

// MarkRead handles POST /api/v1/conversations/:id/read
func (h *ConversationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.store.Activate(conversationID)
	if err != nil {
		h.writeStoreError(w, err, "failed to mark conversation read")
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// SendPaymentLink handles POST /api/v1/conversations/:id/payment-link
func (h *ConversationHandler) SendPaymentLink(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.store.AppendMessage(conversationID, model.SenderAgent, paymentLinkMessage)
	if err != nil {
		h.writeStoreError(w, err, "failed to send payment link")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]*model.Message{"message": msg})
}

// MarkSold handles POST /api/v1/conversations/:id/sold
func (h *ConversationHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.store.Conversation(conversationID)
	if err != nil {
		h.writeStoreError(w, err, "failed to mark sold")
		return
	}

	customer, err := h.store.UpdateFunnelStage(conv.CustomerID, model.StageSold)
	if err != nil {
		h.writeStoreError(w, err, "failed to mark sold")
		return
	}

	msg, err := h.store.AppendMessage(conversationID, model.SenderAgent, soldThanksMessage)
	if err != nil {
		h.writeStoreError(w, err, "failed to mark sold")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"customer": customer,
		"message":  msg,
	})
}

func (h *ConversationHandler) writeStoreError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, store.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "conversation not found")
	case errors.Is(err, store.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, "customer not found")
	case errors.Is(err, store.ErrInvalidSender), errors.Is(err, store.ErrInvalidStage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg)
		writeError(w, http.StatusInternalServerError, logMsg)
	}
}
