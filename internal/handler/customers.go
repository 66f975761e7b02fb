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

// CustomerHandler handles customer endpoints.
type CustomerHandler struct {
	store  *store.Store
	logger *logger.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(st *store.Store, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		store:  st,
		logger: log,
	}
}

// List handles GET /api/v1/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers := h.store.Customers()
	writeJSON(w, http.StatusOK, model.ListCustomersResponse{
		Customers: customers,
		Total:     len(customers),
	})
}

// Get handles GET /api/v1/customers/:id
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(customerID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.store.Customer(customerID)
	if err != nil {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// UpdateStage handles PUT /api/v1/customers/:id/stage
func (h *CustomerHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")
	if err := middleware.ValidateID(customerID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.UpdateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateFunnelStage(req.FunnelStage); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.store.UpdateFunnelStage(customerID, req.FunnelStage)
	if err != nil {
		if errors.Is(err, store.ErrCustomerNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("failed to update funnel stage")
		writeError(w, http.StatusInternalServerError, "failed to update funnel stage")
		return
	}

	writeJSON(w, http.StatusOK, customer)
}
