package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/frahmantamala/donation-management/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("matches sentinels through copies and wrapping", func() {
		err := fmt.Errorf("load: %w", apperrors.ErrDonationNotFound.WithCause(errors.New("no rows")))
		Expect(apperrors.Is(err, apperrors.ErrDonationNotFound)).To(BeTrue())
		Expect(apperrors.Is(err, apperrors.ErrProgramNotFound)).To(BeFalse())
	})

	It("does not mutate the sentinel", func() {
		_ = apperrors.ErrInvalidNotification.WithDetails("x")
		Expect(apperrors.ErrInvalidNotification.Details).To(BeNil())
	})

	It("joins field messages", func() {
		appErr := apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
			WithDetails(apperrors.ValidationErrors{Errors: []apperrors.ValidationError{
				{Field: "amount", Message: "amount must be at least 10000"},
				{Field: "donator_email", Message: "donator_email must be a valid email address"},
			}})
		Expect(appErr.GetDetailedMessage()).To(Equal("amount must be at least 10000; donator_email must be a valid email address"))
	})

	It("hides the cause from JSON", func() {
		raw, err := json.Marshal(apperrors.NewInternalError("failed to create donation", errors.New("pq: secret detail")))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).NotTo(ContainSubstring("secret detail"))
		Expect(string(raw)).To(ContainSubstring(`"type":"INTERNAL_ERROR"`))
	})

	It("finds AppErrors in a chain", func() {
		appErr, ok := apperrors.IsAppError(fmt.Errorf("wrap: %w", apperrors.ErrInvalidSignature))
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(403))

		_, ok = apperrors.IsAppError(errors.New("plain"))
		Expect(ok).To(BeFalse())
	})
})
