package donation

import (
	"context"
	"encoding/json"
	"net/http"

	errors "github.com/frahmantamala/donation-management/internal"
	"github.com/frahmantamala/donation-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateDonation(ctx context.Context, req CreateDonationRequest) (*CreateDonationResponse, error)
	GetStatus(ctx context.Context, orderID string) (Status, error)
	GetStatusPage(ctx context.Context, orderID string) (*StatusPageResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// CreateDonation handles POST /donations
func (h *Handler) CreateDonation(w http.ResponseWriter, r *http.Request) {
	var req CreateDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warn("CreateDonation: invalid request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	resp, err := h.Service.CreateDonation(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// CheckStatus handles GET /donations/{order_id}/check-status
func (h *Handler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	ctx := errors.ContextWithOrderID(r.Context(), chi.URLParam(r, "order_id"))
	status, err := h.Service.GetStatus(ctx, errors.OrderIDFromContext(ctx))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, StatusResponse{Status: status})
}

// ShowStatus handles GET /donations/{order_id}/status
func (h *Handler) ShowStatus(w http.ResponseWriter, r *http.Request) {
	ctx := errors.ContextWithOrderID(r.Context(), chi.URLParam(r, "order_id"))
	page, err := h.Service.GetStatusPage(ctx, errors.OrderIDFromContext(ctx))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}
