package program

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Program is the donation_programs row as read through sqlx.
type Program struct {
	ID               int64           `db:"id"`
	Name             string          `db:"name"`
	Slug             string          `db:"slug"`
	TargetAmount     decimal.Decimal `db:"target_amount"`
	ShortDescription sql.NullString  `db:"short_description"`
	Status           string          `db:"status"`
	StartDate        sql.NullTime    `db:"start_date"`
	EndDate          sql.NullTime    `db:"end_date"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}
