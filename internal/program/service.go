package program

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/donation-management/internal"
	programDatamodel "github.com/frahmantamala/donation-management/internal/core/datamodel/program"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	// GetByID returns nil, nil when the program does not exist or was deleted.
	GetByID(ctx context.Context, id int64) (*programDatamodel.Program, error)
	CollectedAmount(ctx context.Context, id int64) (decimal.Decimal, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetProgram(ctx context.Context, id int64) (*Program, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get program", "error", err, "program_id", id)
		return nil, errors.NewInternalError("failed to get program", err)
	}
	if row == nil {
		return nil, errors.ErrProgramNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) GetProgramSummary(ctx context.Context, id int64) (*Summary, error) {
	p, err := s.GetProgram(ctx, id)
	if err != nil {
		return nil, err
	}

	collected, err := s.repo.CollectedAmount(ctx, id)
	if err != nil {
		s.logger.Error("failed to sum collected amount", "error", err, "program_id", id)
		return nil, errors.NewInternalError("failed to get program summary", err)
	}

	summary := p.Summarize(collected)
	return &summary, nil
}
