package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeDonationPaid                     = "donation.paid"
	EventTypeDonationFailed                   = "donation.failed"
	EventTypeDonationNotificationUnrecognized = "donation.notification_unrecognized"
)

type DonationSettledEvent struct {
	BaseEvent
	OrderID           string `json:"order_id"`
	ProgramID         int64  `json:"program_id"`
	Amount            string `json:"amount"`
	Fee               string `json:"fee"`
	PaymentType       string `json:"payment_type"`
	TransactionStatus string `json:"transaction_status"`
}

func newDonationSettledEvent(eventType, orderID string, programID int64, amount, fee, paymentType, transactionStatus string) *DonationSettledEvent {
	return &DonationSettledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"order_id":           orderID,
				"program_id":         programID,
				"amount":             amount,
				"fee":                fee,
				"payment_type":       paymentType,
				"transaction_status": transactionStatus,
			},
		},
		OrderID:           orderID,
		ProgramID:         programID,
		Amount:            amount,
		Fee:               fee,
		PaymentType:       paymentType,
		TransactionStatus: transactionStatus,
	}
}

func NewDonationPaidEvent(orderID string, programID int64, amount, fee, paymentType, transactionStatus string) *DonationSettledEvent {
	return newDonationSettledEvent(EventTypeDonationPaid, orderID, programID, amount, fee, paymentType, transactionStatus)
}

func NewDonationFailedEvent(orderID string, programID int64, amount, fee, paymentType, transactionStatus string) *DonationSettledEvent {
	return newDonationSettledEvent(EventTypeDonationFailed, orderID, programID, amount, fee, paymentType, transactionStatus)
}

// NotificationUnrecognizedEvent flags a gateway status outside the known
// vocabulary. The donation is left untouched.
type NotificationUnrecognizedEvent struct {
	BaseEvent
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	CurrentStatus     string `json:"current_status"`
}

func NewNotificationUnrecognizedEvent(orderID, transactionStatus, currentStatus string) *NotificationUnrecognizedEvent {
	return &NotificationUnrecognizedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDonationNotificationUnrecognized,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"order_id":           orderID,
				"transaction_status": transactionStatus,
				"current_status":     currentStatus,
			},
		},
		OrderID:           orderID,
		TransactionStatus: transactionStatus,
		CurrentStatus:     currentStatus,
	}
}
