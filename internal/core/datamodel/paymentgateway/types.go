package paymentgateway

import (
	"errors"
)

// Midtrans transaction_status vocabulary.
const (
	TransactionStatusCapture    = "capture"
	TransactionStatusSettlement = "settlement"
	TransactionStatusPending    = "pending"
	TransactionStatusDeny       = "deny"
	TransactionStatusExpire     = "expire"
	TransactionStatusCancel     = "cancel"
)

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

type ItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int32  `json:"quantity"`
	Name     string `json:"name"`
}

type CreditCard struct {
	Secure bool `json:"secure"`
}

// SnapRequest is the body of a Snap create-transaction call.
type SnapRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	CustomerDetails    CustomerDetails    `json:"customer_details"`
	ItemDetails        []ItemDetail       `json:"item_details"`
	EnabledPayments    []string           `json:"enabled_payments"`
	CreditCard         *CreditCard        `json:"credit_card,omitempty"`
}

func (r *SnapRequest) Validate() error {
	if r.TransactionDetails.OrderID == "" {
		return errors.New("order_id is required")
	}
	if r.TransactionDetails.GrossAmount <= 0 {
		return errors.New("gross_amount must be greater than 0")
	}
	var sum int64
	for _, item := range r.ItemDetails {
		sum += item.Price * int64(item.Quantity)
	}
	if len(r.ItemDetails) > 0 && sum != r.TransactionDetails.GrossAmount {
		return errors.New("item_details must sum to gross_amount")
	}
	return nil
}

type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// ErrorResponse is what Snap and the Core API return on rejection.
type ErrorResponse struct {
	StatusCode    string   `json:"status_code,omitempty"`
	StatusMessage string   `json:"status_message,omitempty"`
	ErrorMessages []string `json:"error_messages,omitempty"`
}

// TransactionStatusResponse is the Core API GET /v2/{order_id}/status body.
// It carries the same signed fields as an HTTP notification.
type TransactionStatusResponse struct {
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	SignatureKey      string `json:"signature_key"`
	Currency          string `json:"currency,omitempty"`
	SettlementTime    string `json:"settlement_time,omitempty"`
}
