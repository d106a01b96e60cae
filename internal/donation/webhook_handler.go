package donation

import (
	"context"
	"io"
	"net/http"

	errors "github.com/frahmantamala/donation-management/internal"
	"github.com/frahmantamala/donation-management/internal/transport"
)

// maxNotificationBytes bounds the callback body read into memory.
const maxNotificationBytes = 1 << 20

const (
	msgProcessed        = "Notification processed successfully."
	msgAlreadyProcessed = "Notification already processed."
	msgInvalidFormat    = "Invalid notification format."
	msgInvalidSignature = "Invalid signature."
	msgNotFound         = "Donation not found."
	msgFailed           = "Failed to process notification."
)

type NotificationServiceAPI interface {
	HandleNotification(ctx context.Context, raw []byte) (NotificationOutcome, error)
}

type WebhookHandler struct {
	*transport.BaseHandler
	Service NotificationServiceAPI
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, service NotificationServiceAPI) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// HandleMidtransCallback handles POST and GET /midtrans/callback. The gateway
// only needs a status code back, so every answer is a plain {"message"} body.
func (h *WebhookHandler) HandleMidtransCallback(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxNotificationBytes))
	if err != nil {
		h.Logger.Warn("HandleMidtransCallback: failed to read body", "error", err)
		h.WriteMessage(w, http.StatusBadRequest, msgInvalidFormat)
		return
	}

	outcome, err := h.Service.HandleNotification(r.Context(), raw)
	if err != nil {
		status, message := notificationErrorResponse(err)
		if status >= http.StatusInternalServerError {
			h.Logger.Error("HandleMidtransCallback: failed to process notification", "error", err)
		}
		h.WriteMessage(w, status, message)
		return
	}

	if outcome == OutcomeAlreadyProcessed {
		h.WriteMessage(w, http.StatusOK, msgAlreadyProcessed)
		return
	}
	h.WriteMessage(w, http.StatusOK, msgProcessed)
}

func notificationErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, errors.ErrInvalidNotification):
		return http.StatusBadRequest, msgInvalidFormat
	case errors.Is(err, errors.ErrInvalidSignature):
		return http.StatusForbidden, msgInvalidSignature
	case errors.Is(err, errors.ErrDonationNotFound):
		return http.StatusNotFound, msgNotFound
	default:
		return http.StatusInternalServerError, msgFailed
	}
}
