package program_test

import (
	"context"
	"errors"

	apperrors "github.com/frahmantamala/donation-management/internal"
	programDatamodel "github.com/frahmantamala/donation-management/internal/core/datamodel/program"
	"github.com/frahmantamala/donation-management/internal/program"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Program Service", func() {
	var (
		repo    *MockRepository
		service *program.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		repo.programs[1] = &programDatamodel.Program{
			ID:           1,
			Name:         "Air Bersih",
			Slug:         "air-bersih",
			TargetAmount: decimal.NewFromInt(1000000),
			Status:       program.StatusActive,
		}
		repo.collected[1] = decimal.NewFromInt(250000)
		service = program.NewService(repo, newTestLogger())
	})

	It("returns a program", func() {
		p, err := service.GetProgram(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Name).To(Equal("Air Bersih"))
		Expect(p.ShortDescription).To(BeEmpty())
		Expect(p.StartDate).To(BeNil())
	})

	It("summarizes funding progress", func() {
		summary, err := service.GetProgramSummary(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.CollectedAmount.Equal(decimal.NewFromInt(250000))).To(BeTrue())
		Expect(summary.ProgressPercentage.Equal(decimal.NewFromInt(25))).To(BeTrue())
		Expect(summary.Slug).To(Equal("air-bersih"))
	})

	It("returns not found for an unknown program", func() {
		_, err := service.GetProgramSummary(ctx, 9)
		Expect(apperrors.Is(err, apperrors.ErrProgramNotFound)).To(BeTrue())
	})

	It("wraps repository failures", func() {
		repo.err = errors.New("db down")

		_, err := service.GetProgram(ctx, 1)
		appErr, ok := apperrors.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(apperrors.ErrorTypeInternal))
	})
})
