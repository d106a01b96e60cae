package program

import (
	"time"

	programDatamodel "github.com/frahmantamala/donation-management/internal/core/datamodel/program"
	"github.com/shopspring/decimal"
)

const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

var hundred = decimal.NewFromInt(100)

type Program struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	TargetAmount     decimal.Decimal `json:"target_amount"`
	ShortDescription string          `json:"short_description,omitempty"`
	Status           string          `json:"status"`
	StartDate        *time.Time      `json:"start_date,omitempty"`
	EndDate          *time.Time      `json:"end_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Summary is the public funding view of a program. Only paid donations count
// towards CollectedAmount, and fees are never included.
type Summary struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Slug               string          `json:"slug"`
	Status             string          `json:"status"`
	TargetAmount       decimal.Decimal `json:"target_amount"`
	CollectedAmount    decimal.Decimal `json:"collected_amount"`
	ProgressPercentage decimal.Decimal `json:"progress_percentage"`
}

// ProgressPercentage is collected/target*100 capped at 100, or 0 without a target.
func ProgressPercentage(collected, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	pct := collected.Div(target).Mul(hundred).Round(2)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

func (p *Program) Summarize(collected decimal.Decimal) Summary {
	return Summary{
		ID:                 p.ID,
		Name:               p.Name,
		Slug:               p.Slug,
		Status:             p.Status,
		TargetAmount:       p.TargetAmount,
		CollectedAmount:    collected,
		ProgressPercentage: ProgressPercentage(collected, p.TargetAmount),
	}
}

func FromDataModel(p *programDatamodel.Program) *Program {
	out := &Program{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		TargetAmount: p.TargetAmount,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.ShortDescription.Valid {
		out.ShortDescription = p.ShortDescription.String
	}
	if p.StartDate.Valid {
		t := p.StartDate.Time
		out.StartDate = &t
	}
	if p.EndDate.Valid {
		t := p.EndDate.Time
		out.EndDate = &t
	}
	return out
}
