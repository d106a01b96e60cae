package donation

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

type Donation struct {
	ID             int64           `gorm:"primaryKey"`
	OrderID        string          `gorm:"column:order_id;not null;uniqueIndex"`
	ProgramID      int64           `gorm:"column:donation_program_id;not null;index"`
	DonatorName    string          `gorm:"column:donator_name;not null"`
	DonatorEmail   string          `gorm:"column:donator_email;not null"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(15,2);not null"`
	Fee            decimal.Decimal `gorm:"column:fee;type:numeric(15,2);not null"`
	Message        *string         `gorm:"column:message"`
	IsAnonymous    bool            `gorm:"column:is_anonymous;not null"`
	Status         string          `gorm:"column:status;not null;default:pending;index"`
	PaymentMethod  *string         `gorm:"column:payment_method"`
	PaymentDetails datatypes.JSON  `gorm:"column:payment_details"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Donation) TableName() string {
	return "donations"
}
