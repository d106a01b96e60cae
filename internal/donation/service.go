package donation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/donation-management/internal"
	donationDatamodel "github.com/frahmantamala/donation-management/internal/core/datamodel/donation"
	paymentgatewaytypes "github.com/frahmantamala/donation-management/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/donation-management/internal/program"
	"github.com/shopspring/decimal"
)

const (
	feeItemID   = "TRANSACTION_FEE"
	feeItemName = "Biaya Transaksi"
)

// NotificationUpdate is the single write a notification may cause.
type NotificationUpdate struct {
	OrderID        string
	Status         Status
	PaymentMethod  string
	PaymentDetails []byte
}

type RepositoryAPI interface {
	Create(ctx context.Context, donation *donationDatamodel.Donation) error
	// GetByOrderID returns nil, nil when no donation carries orderID.
	GetByOrderID(ctx context.Context, orderID string) (*donationDatamodel.Donation, error)
	// GetStatusByOrderID returns "" when no donation carries orderID.
	GetStatusByOrderID(ctx context.Context, orderID string) (string, error)
	// ApplyNotification writes update only while the donation is still
	// pending and reports whether a row was changed.
	ApplyNotification(ctx context.Context, update NotificationUpdate) (bool, error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*donationDatamodel.Donation, error)
}

type ProgramLookup interface {
	GetProgram(ctx context.Context, id int64) (*program.Program, error)
	GetProgramSummary(ctx context.Context, id int64) (*program.Summary, error)
}

type Gateway interface {
	CreateTransaction(ctx context.Context, req *paymentgatewaytypes.SnapRequest) (*paymentgatewaytypes.SnapResponse, error)
}

// StatusCache holds terminal statuses only.
type StatusCache interface {
	Get(ctx context.Context, orderID string) (Status, bool, error)
	Set(ctx context.Context, orderID string, status Status) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (Status, bool, error) { return "", false, nil }
func (noopCache) Set(context.Context, string, Status) error         { return nil }

type Config struct {
	MinimumDonation decimal.Decimal
	Fees            FeeTable
	GatewayTimeout  time.Duration
}

type Service struct {
	repo     RepositoryAPI
	programs ProgramLookup
	gateway  Gateway
	cache    StatusCache
	config   Config
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, programs ProgramLookup, gateway Gateway, cache StatusCache, config Config, logger *slog.Logger) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{
		repo:     repo,
		programs: programs,
		gateway:  gateway,
		cache:    cache,
		config:   config,
		logger:   logger,
	}
}

// CreateDonation records a pending donation and opens a Snap session for it.
// When the gateway fails the record is kept pending.
func (s *Service) CreateDonation(ctx context.Context, req CreateDonationRequest) (*CreateDonationResponse, error) {
	req.Normalize()
	if appErr := req.Validate(s.config.MinimumDonation, s.config.Fees.Methods()); appErr != nil {
		s.logger.Warn("donation validation failed", "error", appErr, "program_id", req.ProgramID)
		return nil, appErr
	}

	prog, err := s.programs.GetProgram(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}

	fee := s.config.Fees.FeeFor(req.PaymentMethod, req.Amount)
	total := req.Amount.Add(fee)
	if !isWhole(fee) {
		s.logger.Error("configured fee is not a whole amount", "payment_method", req.PaymentMethod, "fee", fee.String())
		return nil, errors.NewInternalError("fee configuration error", fmt.Errorf("fee %s for %s has a fractional part", fee, req.PaymentMethod))
	}

	method := req.PaymentMethod
	donation := &Donation{
		OrderID:       NewOrderID(),
		ProgramID:     prog.ID,
		DonatorName:   req.DonatorName,
		DonatorEmail:  req.DonatorEmail,
		Amount:        req.Amount,
		Fee:           fee,
		Message:       req.Message,
		IsAnonymous:   req.IsAnonymous != nil && *req.IsAnonymous,
		Status:        StatusPending,
		PaymentMethod: &method,
	}

	if err := s.repo.Create(ctx, donation.ToDataModel()); err != nil {
		s.logger.Error("failed to create donation", "error", err, "order_id", donation.OrderID)
		return nil, errors.NewInternalError("failed to create donation", err)
	}

	s.logger.Info("donation created",
		"order_id", donation.OrderID,
		"program_id", prog.ID,
		"amount", donation.Amount.String(),
		"fee", fee.String(),
		"total", total.String(),
		"payment_method", method)

	snapReq := buildSnapRequest(donation, prog)

	gatewayCtx, cancel := errors.WithTimeout(ctx, s.config.GatewayTimeout)
	defer cancel()

	snapResp, err := s.gateway.CreateTransaction(gatewayCtx, snapReq)
	if err != nil {
		s.logger.Error("failed to create payment session", "error", err, "order_id", donation.OrderID)
		return nil, errors.NewUpstreamError("Error dari Midtrans", err).
			WithDetails(map[string]string{"reason": err.Error()})
	}

	return &CreateDonationResponse{
		OrderID:     donation.OrderID,
		RedirectURL: snapResp.RedirectURL,
		SentParams:  snapReq,
	}, nil
}

func buildSnapRequest(d *Donation, prog *program.Program) *paymentgatewaytypes.SnapRequest {
	amount := d.Amount.IntPart()
	fee := d.Fee.IntPart()
	return &paymentgatewaytypes.SnapRequest{
		TransactionDetails: paymentgatewaytypes.TransactionDetails{
			OrderID:     d.OrderID,
			GrossAmount: amount + fee,
		},
		CustomerDetails: paymentgatewaytypes.CustomerDetails{
			FirstName: d.DonatorName,
			Email:     d.DonatorEmail,
		},
		ItemDetails: []paymentgatewaytypes.ItemDetail{
			{
				ID:       fmt.Sprintf("DONASI-%d", prog.ID),
				Price:    amount,
				Quantity: 1,
				Name:     "Donasi: " + prog.Name,
			},
			{
				ID:       feeItemID,
				Price:    fee,
				Quantity: 1,
				Name:     feeItemName,
			},
		},
		EnabledPayments: []string{*d.PaymentMethod},
	}
}

// GetStatus is a single-row read; terminal answers are cached.
func (s *Service) GetStatus(ctx context.Context, orderID string) (Status, error) {
	if status, ok, err := s.cache.Get(ctx, orderID); err != nil {
		s.logger.Warn("status cache read failed", "error", err, "order_id", orderID)
	} else if ok {
		return status, nil
	}

	raw, err := s.repo.GetStatusByOrderID(ctx, orderID)
	if err != nil {
		s.logger.Error("failed to get donation status", "error", err, "order_id", orderID)
		return "", errors.NewInternalError("failed to get donation status", err)
	}
	if raw == "" {
		return "", errors.ErrDonationNotFound
	}

	status, err := ParseStatus(raw)
	if err != nil {
		return "", errors.NewInternalError("stored donation status is invalid", err)
	}

	if status.IsTerminal() {
		if err := s.cache.Set(ctx, orderID, status); err != nil {
			s.logger.Warn("status cache write failed", "error", err, "order_id", orderID)
		}
	}
	return status, nil
}

// GetStatusPage returns the public donation view together with its program.
func (s *Service) GetStatusPage(ctx context.Context, orderID string) (*StatusPageResponse, error) {
	row, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		s.logger.Error("failed to get donation", "error", err, "order_id", orderID)
		return nil, errors.NewInternalError("failed to get donation", err)
	}
	if row == nil {
		return nil, errors.ErrDonationNotFound
	}

	donation := FromDataModel(row)
	resp := &StatusPageResponse{Donation: NewDonationView(donation)}

	summary, err := s.programs.GetProgramSummary(ctx, donation.ProgramID)
	switch {
	case err == nil:
		resp.Program = summary
	case isNotFound(err):
		s.logger.Warn("donation references a missing program", "order_id", orderID, "program_id", donation.ProgramID)
	default:
		return nil, err
	}
	return resp, nil
}

func isWhole(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(0))
}

func isNotFound(err error) bool {
	appErr, ok := errors.IsAppError(err)
	return ok && appErr.Type == errors.ErrorTypeNotFound
}
