package donation

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/donation-management/internal"
	"github.com/frahmantamala/donation-management/internal/core/events"
	applog "github.com/frahmantamala/donation-management/pkg/logger"
	"github.com/shopspring/decimal"
)

type NotificationOutcome string

const (
	// OutcomeUpdated means the donation reached a terminal status.
	OutcomeUpdated NotificationOutcome = "updated"
	// OutcomeRecorded means the payload was archived but the status stayed pending.
	OutcomeRecorded NotificationOutcome = "recorded"
	// OutcomeAlreadyProcessed means the donation was terminal already, or a
	// concurrent notification got there first.
	OutcomeAlreadyProcessed NotificationOutcome = "already_processed"
)

type SignatureVerifier interface {
	VerifySignature(orderID, statusCode, grossAmount, signature string) bool
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type NotificationService struct {
	repo      RepositoryAPI
	verifier  SignatureVerifier
	publisher EventPublisher
	cache     StatusCache
	logger    *slog.Logger
}

func NewNotificationService(repo RepositoryAPI, verifier SignatureVerifier, publisher EventPublisher, cache StatusCache, logger *slog.Logger) *NotificationService {
	if cache == nil {
		cache = noopCache{}
	}
	return &NotificationService{
		repo:      repo,
		verifier:  verifier,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// HandleNotification parses a raw gateway callback and processes it.
func (s *NotificationService) HandleNotification(ctx context.Context, raw []byte) (NotificationOutcome, error) {
	n, err := ParseNotification(raw)
	if err != nil {
		applog.FromOr(ctx, s.logger).Warn("rejected malformed notification", "error", err)
		return "", err
	}
	return s.Process(ctx, n, raw)
}

// Process authenticates n and applies it to the matching donation. raw is
// archived as the donation's payment details.
func (s *NotificationService) Process(ctx context.Context, n *Notification, raw []byte) (NotificationOutcome, error) {
	log := applog.FromOr(ctx, s.logger).With("order_id", n.OrderID, "transaction_status", n.TransactionStatus)

	if !s.verifier.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey) {
		log.Warn("security event: notification signature mismatch",
			"status_code", n.StatusCode,
			"gross_amount", n.GrossAmount)
		return "", errors.ErrInvalidSignature
	}

	row, err := s.repo.GetByOrderID(ctx, n.OrderID)
	if err != nil {
		log.Error("failed to load donation for notification", "error", err)
		return "", errors.NewInternalError("failed to load donation", err)
	}
	if row == nil {
		log.Warn("notification for unknown donation")
		return "", errors.ErrDonationNotFound
	}

	donation := FromDataModel(row)
	if donation.Status != StatusPending {
		log.Info("notification for already processed donation", "current_status", donation.Status)
		return OutcomeAlreadyProcessed, nil
	}

	next, known := StatusFromTransaction(n.TransactionStatus)
	if !known {
		log.Warn("unrecognized transaction status, leaving donation unchanged")
		s.publish(ctx, events.NewNotificationUnrecognizedEvent(n.OrderID, n.TransactionStatus, string(donation.Status)))
		next = donation.Status
	}
	if !donation.Status.CanTransitionTo(next) {
		return "", errors.ErrInvalidTransition
	}

	s.checkGrossAmount(log, donation, n.GrossAmount)

	applied, err := s.repo.ApplyNotification(ctx, NotificationUpdate{
		OrderID:        n.OrderID,
		Status:         next,
		PaymentMethod:  n.PaymentType,
		PaymentDetails: raw,
	})
	if err != nil {
		log.Error("failed to apply notification", "error", err)
		return "", errors.NewInternalError("failed to update donation", err)
	}
	if !applied {
		log.Info("donation settled concurrently, notification ignored")
		return OutcomeAlreadyProcessed, nil
	}

	if !next.IsTerminal() {
		log.Info("notification recorded", "payment_type", n.PaymentType)
		return OutcomeRecorded, nil
	}

	log.Info("donation status updated", "old_status", donation.Status, "new_status", next, "payment_type", n.PaymentType)

	if err := s.cache.Set(ctx, n.OrderID, next); err != nil {
		log.Warn("status cache write failed", "error", err)
	}

	amount, fee := donation.Amount.String(), donation.Fee.String()
	if next == StatusPaid {
		s.publish(ctx, events.NewDonationPaidEvent(n.OrderID, donation.ProgramID, amount, fee, n.PaymentType, n.TransactionStatus))
	} else {
		s.publish(ctx, events.NewDonationFailedEvent(n.OrderID, donation.ProgramID, amount, fee, n.PaymentType, n.TransactionStatus))
	}

	return OutcomeUpdated, nil
}

// checkGrossAmount only warns: the signature already covers gross_amount, so
// a mismatch points at a pricing bug rather than a forged callback.
func (s *NotificationService) checkGrossAmount(log *slog.Logger, d *Donation, reported string) {
	gross, err := decimal.NewFromString(reported)
	if err != nil {
		log.Warn("gross amount is not a number", "gross_amount", reported)
		return
	}
	if !gross.Equal(d.Total()) {
		log.Warn("gross amount mismatch",
			"gross_amount", reported,
			"expected", d.Total().String())
	}
}

func (s *NotificationService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	// handlers outlive the request
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
