package postgres

import (
	"context"
	"errors"
	"time"

	donationDatamodel "github.com/frahmantamala/donation-management/internal/core/datamodel/donation"
	"github.com/frahmantamala/donation-management/internal/donation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) donation.RepositoryAPI {
	return &DonationRepository{
		db: db,
	}
}

func (r *DonationRepository) Create(ctx context.Context, d *donationDatamodel.Donation) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DonationRepository) GetByOrderID(ctx context.Context, orderID string) (*donationDatamodel.Donation, error) {
	var d donationDatamodel.Donation
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) GetStatusByOrderID(ctx context.Context, orderID string) (string, error) {
	var statuses []string
	err := r.db.WithContext(ctx).
		Model(&donationDatamodel.Donation{}).
		Where("order_id = ?", orderID).
		Limit(1).
		Pluck("status", &statuses).Error
	if err != nil {
		return "", err
	}
	if len(statuses) == 0 {
		return "", nil
	}
	return statuses[0], nil
}

// ApplyNotification is a single conditional UPDATE guarded on status so that
// concurrent duplicate notifications settle a donation at most once.
func (r *DonationRepository) ApplyNotification(ctx context.Context, update donation.NotificationUpdate) (bool, error) {
	updates := map[string]interface{}{
		"status":          string(update.Status),
		"payment_details": datatypes.JSON(update.PaymentDetails),
		"updated_at":      time.Now(),
	}
	if update.PaymentMethod != "" {
		updates["payment_method"] = update.PaymentMethod
	}

	result := r.db.WithContext(ctx).
		Model(&donationDatamodel.Donation{}).
		Where("order_id = ? AND status = ?", update.OrderID, donationDatamodel.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *DonationRepository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*donationDatamodel.Donation, error) {
	var donations []*donationDatamodel.Donation
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", donationDatamodel.StatusPending, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&donations).Error
	return donations, err
}
