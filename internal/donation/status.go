package donation

import (
	"fmt"

	paymentgatewaytypes "github.com/frahmantamala/donation-management/internal/core/datamodel/paymentgateway"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// transitions lists, per status, the statuses a notification may move it to.
// Terminal statuses have no entry and accept nothing.
var transitions = map[Status][]Status{
	StatusPending: {StatusPending, StatusPaid, StatusFailed},
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPaid, StatusFailed:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown donation status %q", s)
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusFailed
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StatusFromTransaction maps a gateway transaction_status onto a donation
// status. The second return is false for values outside the known vocabulary.
func StatusFromTransaction(transactionStatus string) (Status, bool) {
	switch transactionStatus {
	case paymentgatewaytypes.TransactionStatusCapture, paymentgatewaytypes.TransactionStatusSettlement:
		return StatusPaid, true
	case paymentgatewaytypes.TransactionStatusPending:
		return StatusPending, true
	case paymentgatewaytypes.TransactionStatusDeny, paymentgatewaytypes.TransactionStatusExpire, paymentgatewaytypes.TransactionStatusCancel:
		return StatusFailed, true
	default:
		return "", false
	}
}
