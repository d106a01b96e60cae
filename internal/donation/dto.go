package donation

import (
	"encoding/json"
	"strings"
	"time"

	errors "github.com/frahmantamala/donation-management/internal"
	"github.com/frahmantamala/donation-management/internal/core/common/validation"
	paymentgatewaytypes "github.com/frahmantamala/donation-management/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/donation-management/internal/program"
	"github.com/shopspring/decimal"
)

const maxDonorFieldLength = 255

// CreateDonationRequest is the POST /donations body.
type CreateDonationRequest struct {
	ProgramID     int64           `json:"program_id"`
	Amount        decimal.Decimal `json:"amount"`
	DonatorName   string          `json:"donator_name"`
	DonatorEmail  string          `json:"donator_email"`
	PaymentMethod string          `json:"payment_method"`
	Message       *string         `json:"message,omitempty"`
	IsAnonymous   *bool           `json:"is_anonymous,omitempty"`
}

func (r *CreateDonationRequest) Normalize() {
	r.DonatorName = strings.TrimSpace(r.DonatorName)
	r.DonatorEmail = strings.TrimSpace(r.DonatorEmail)
	r.PaymentMethod = strings.ToLower(strings.TrimSpace(r.PaymentMethod))
	if r.Message != nil && strings.TrimSpace(*r.Message) == "" {
		r.Message = nil
	}
}

// Validate checks the request against the configured minimum and fee table.
func (r CreateDonationRequest) Validate(minimum decimal.Decimal, methods []string) *errors.AppError {
	v := validation.NewValidator()

	v.Field("program_id", r.ProgramID).Required()

	v.Field("amount", r.Amount).
		Positive(errors.ErrCodeInvalidAmount).
		WholeNumber(errors.ErrCodeInvalidAmount).
		MinDecimal(minimum, errors.ErrCodeAmountTooLow)

	v.Field("donator_name", r.DonatorName).
		Required().
		MaxLength(maxDonorFieldLength)

	v.Field("donator_email", r.DonatorEmail).
		Required().
		MaxLength(maxDonorFieldLength).
		Email()

	v.Field("payment_method", r.PaymentMethod).
		Required().
		OneOf(methods, errors.ErrCodeInvalidPaymentMethod)

	return v.Validate()
}

type CreateDonationResponse struct {
	OrderID     string                           `json:"order_id"`
	RedirectURL string                           `json:"redirect_url"`
	SentParams  *paymentgatewaytypes.SnapRequest `json:"sent_params"`
}

type StatusResponse struct {
	Status Status `json:"status"`
}

// DonationView is the public projection of a donation shown on the status page.
type DonationView struct {
	OrderID       string          `json:"order_id"`
	DisplayName   string          `json:"donator_name"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	Total         decimal.Decimal `json:"total"`
	Message       *string         `json:"message,omitempty"`
	IsAnonymous   bool            `json:"is_anonymous"`
	Status        Status          `json:"status"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type StatusPageResponse struct {
	Donation DonationView     `json:"donation"`
	Program  *program.Summary `json:"program"`
}

func NewDonationView(d *Donation) DonationView {
	return DonationView{
		OrderID:       d.OrderID,
		DisplayName:   d.DisplayName(),
		Amount:        d.Amount,
		Fee:           d.Fee,
		Total:         d.Total(),
		Message:       d.Message,
		IsAnonymous:   d.IsAnonymous,
		Status:        d.Status,
		PaymentMethod: d.PaymentMethod,
		CreatedAt:     d.CreatedAt,
	}
}

// Notification is a Midtrans HTTP notification. Every signed field arrives as
// a string and is kept verbatim for signature checks.
type Notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	StatusMessage     string `json:"status_message"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	OrderID           string `json:"order_id"`
	MerchantID        string `json:"merchant_id"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
	Currency          string `json:"currency"`
	SettlementTime    string `json:"settlement_time,omitempty"`
}

// ParseNotification decodes raw and checks the fields the pipeline relies on.
func ParseNotification(raw []byte) (*Notification, error) {
	if len(raw) == 0 {
		return nil, errors.ErrInvalidNotification
	}
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, errors.ErrInvalidNotification.WithCause(err)
	}

	v := validation.NewValidator()
	v.Field("order_id", n.OrderID).Required()
	v.Field("status_code", n.StatusCode).Required()
	v.Field("gross_amount", n.GrossAmount).Required()
	v.Field("signature_key", n.SignatureKey).Required()
	v.Field("transaction_status", n.TransactionStatus).Required()
	if appErr := v.Validate(); appErr != nil {
		return nil, errors.ErrInvalidNotification.WithDetails(appErr.Details)
	}
	return &n, nil
}

// NotificationFromStatus turns a Core API status answer into a notification so
// polled results travel through the same pipeline as pushed ones.
func NotificationFromStatus(s *paymentgatewaytypes.TransactionStatusResponse) *Notification {
	return &Notification{
		TransactionTime:   s.TransactionTime,
		TransactionStatus: s.TransactionStatus,
		TransactionID:     s.TransactionID,
		StatusMessage:     s.StatusMessage,
		StatusCode:        s.StatusCode,
		SignatureKey:      s.SignatureKey,
		PaymentType:       s.PaymentType,
		OrderID:           s.OrderID,
		GrossAmount:       s.GrossAmount,
		FraudStatus:       s.FraudStatus,
		Currency:          s.Currency,
		SettlementTime:    s.SettlementTime,
	}
}
