package program

import (
	"context"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/donation-management/internal"
	"github.com/frahmantamala/donation-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetProgram(ctx context.Context, id int64) (*Program, error)
	GetProgramSummary(ctx context.Context, id int64) (*Summary, error)
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

// GetProgram handles GET /programs/{id}
func (h *Handler) GetProgram(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.HandleError(w, errors.NewValidationFieldError("id", "invalid program id", errors.ErrCodeValidationFailed))
		return
	}

	summary, err := h.Service.GetProgramSummary(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}
