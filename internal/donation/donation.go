package donation

import (
	"time"

	donationDatamodel "github.com/frahmantamala/donation-management/internal/core/datamodel/donation"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AnonymousDisplayName replaces the donor name on public pages.
const AnonymousDisplayName = "Hamba Allah"

type Donation struct {
	ID             int64           `json:"id"`
	OrderID        string          `json:"order_id"`
	ProgramID      int64           `json:"program_id"`
	DonatorName    string          `json:"donator_name"`
	DonatorEmail   string          `json:"donator_email"`
	Amount         decimal.Decimal `json:"amount"`
	Fee            decimal.Decimal `json:"fee"`
	Message        *string         `json:"message,omitempty"`
	IsAnonymous    bool            `json:"is_anonymous"`
	Status         Status          `json:"status"`
	PaymentMethod  *string         `json:"payment_method,omitempty"`
	PaymentDetails datatypes.JSON  `json:"payment_details,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Total is what the donor is charged.
func (d *Donation) Total() decimal.Decimal {
	return d.Amount.Add(d.Fee)
}

func (d *Donation) DisplayName() string {
	if d.IsAnonymous {
		return AnonymousDisplayName
	}
	return d.DonatorName
}

func (d *Donation) ToDataModel() *donationDatamodel.Donation {
	return &donationDatamodel.Donation{
		ID:             d.ID,
		OrderID:        d.OrderID,
		ProgramID:      d.ProgramID,
		DonatorName:    d.DonatorName,
		DonatorEmail:   d.DonatorEmail,
		Amount:         d.Amount,
		Fee:            d.Fee,
		Message:        d.Message,
		IsAnonymous:    d.IsAnonymous,
		Status:         string(d.Status),
		PaymentMethod:  d.PaymentMethod,
		PaymentDetails: d.PaymentDetails,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func FromDataModel(d *donationDatamodel.Donation) *Donation {
	return &Donation{
		ID:             d.ID,
		OrderID:        d.OrderID,
		ProgramID:      d.ProgramID,
		DonatorName:    d.DonatorName,
		DonatorEmail:   d.DonatorEmail,
		Amount:         d.Amount,
		Fee:            d.Fee,
		Message:        d.Message,
		IsAnonymous:    d.IsAnonymous,
		Status:         Status(d.Status),
		PaymentMethod:  d.PaymentMethod,
		PaymentDetails: d.PaymentDetails,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
