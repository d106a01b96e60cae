package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	programDatamodel "github.com/frahmantamala/donation-management/internal/core/datamodel/program"
	"github.com/frahmantamala/donation-management/internal/program"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type ProgramRepository struct {
	db *sqlx.DB
}

func NewProgramRepository(db *sqlx.DB) program.RepositoryAPI {
	return &ProgramRepository{db: db}
}

const selectProgram = `
SELECT id, name, slug, target_amount, short_description, status, start_date, end_date, created_at, updated_at
FROM donation_programs
WHERE id = ? AND deleted_at IS NULL`

func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*programDatamodel.Program, error) {
	var p programDatamodel.Program
	if err := r.db.GetContext(ctx, &p, r.db.Rebind(selectProgram), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get program %d: %w", id, err)
	}
	return &p, nil
}

const sumCollected = `
SELECT COALESCE(SUM(amount), 0)
FROM donations
WHERE donation_program_id = ? AND status = 'paid'`

func (r *ProgramRepository) CollectedAmount(ctx context.Context, id int64) (decimal.Decimal, error) {
	var collected decimal.Decimal
	if err := r.db.GetContext(ctx, &collected, r.db.Rebind(sumCollected), id); err != nil {
		return decimal.Zero, fmt.Errorf("sum collected for program %d: %w", id, err)
	}
	return collected, nil
}
