package donation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/donation-management/internal/donation"
	"github.com/frahmantamala/donation-management/internal/paymentgateway"
	"github.com/frahmantamala/donation-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

type errorBody struct {
	Message string `json:"message"`
	Error   struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Details struct {
			Errors []struct {
				Field string `json:"field"`
				Code  string `json:"code"`
			} `json:"errors"`
		} `json:"details"`
	} `json:"error"`
}

// failingNotificationService answers every notification with err.
type failingNotificationService struct {
	err error
}

func (f failingNotificationService) HandleNotification(context.Context, []byte) (donation.NotificationOutcome, error) {
	return "", f.err
}

var _ = Describe("Donation Handlers", func() {
	var (
		repo    *MockRepository
		gateway *MockGateway
		signer  *paymentgateway.Client
		router  *chi.Mux
	)

	newRouter := func(notifications donation.NotificationServiceAPI) *chi.Mux {
		base := transport.NewBaseHandler(newTestLogger())
		programs := NewMockProgramLookup()
		programs.Add(1, "Air Bersih", 1000000)

		svc := donation.NewService(repo, programs, gateway, nil, donation.Config{
			MinimumDonation: decimal.NewFromInt(10000),
			Fees:            feeTable(),
		}, newTestLogger())
		h := donation.NewHandler(base, svc)
		wh := donation.NewWebhookHandler(base, notifications)

		r := chi.NewRouter()
		r.Post("/donations/", h.CreateDonation)
		r.Get("/donations/{order_id}/check-status", h.CheckStatus)
		r.Get("/donations/{order_id}/status", h.ShowStatus)
		r.Post("/midtrans/callback", wh.HandleMidtransCallback)
		r.Get("/midtrans/callback", wh.HandleMidtransCallback)
		return r
	}

	do := func(method, path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		repo = NewMockRepository()
		gateway = NewMockGateway()
		signer = paymentgateway.NewClient(paymentgateway.Config{ServerKey: "test-key"}, newTestLogger())
		router = newRouter(donation.NewNotificationService(repo, signer, &MockPublisher{}, nil, newTestLogger()))
	})

	Describe("POST /donations/", func() {
		It("returns the order id, redirect url and sent params", func() {
			rec := do(http.MethodPost, "/donations/", []byte(`{
				"program_id": 1,
				"amount": 50000,
				"donator_name": "Siti",
				"donator_email": "siti@example.com",
				"payment_method": "BCA_VA"
			}`))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp struct {
				OrderID     string `json:"order_id"`
				RedirectURL string `json:"redirect_url"`
				SentParams  struct {
					TransactionDetails struct {
						GrossAmount int64 `json:"gross_amount"`
					} `json:"transaction_details"`
					EnabledPayments []string `json:"enabled_payments"`
				} `json:"sent_params"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.OrderID).To(HavePrefix("DONA-"))
			Expect(resp.RedirectURL).NotTo(BeEmpty())
			Expect(resp.SentParams.TransactionDetails.GrossAmount).To(Equal(int64(54000)))
			Expect(resp.SentParams.EnabledPayments).To(Equal([]string{"bca_va"}))
		})

		It("returns field errors for an amount below the minimum", func() {
			rec := do(http.MethodPost, "/donations/", []byte(`{
				"program_id": 1,
				"amount": 5000,
				"donator_name": "Siti",
				"donator_email": "siti@example.com",
				"payment_method": "bca_va"
			}`))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var body errorBody
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Error.Type).To(Equal("VALIDATION_ERROR"))
			Expect(body.Error.Details.Errors).To(HaveLen(1))
			Expect(body.Error.Details.Errors[0].Field).To(Equal("amount"))
			Expect(body.Error.Details.Errors[0].Code).To(Equal("AMOUNT_TOO_LOW"))
		})

		It("rejects a malformed body", func() {
			rec := do(http.MethodPost, "/donations/", []byte(`{"amount":`))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for an unknown program", func() {
			rec := do(http.MethodPost, "/donations/", []byte(`{
				"program_id": 7,
				"amount": 50000,
				"donator_name": "Siti",
				"donator_email": "siti@example.com",
				"payment_method": "bca_va"
			}`))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 500 with the gateway reason when Midtrans fails", func() {
			gateway.err = errBoom
			rec := do(http.MethodPost, "/donations/", []byte(`{
				"program_id": 1,
				"amount": 50000,
				"donator_name": "Siti",
				"donator_email": "siti@example.com",
				"payment_method": "bca_va"
			}`))
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))

			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["message"]).To(Equal("Error dari Midtrans"))
			Expect(body["error"]).To(HaveKeyWithValue("details", HaveKeyWithValue("reason", "boom")))
		})
	})

	Describe("GET /donations/{order_id}/check-status", func() {
		It("returns the status", func() {
			repo.AddPending("DONA-1", 1, 50000, 4000)

			rec := do(http.MethodGet, "/donations/DONA-1/check-status", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"status":"pending"}`))
		})

		It("returns 404 for an unknown order", func() {
			rec := do(http.MethodGet, "/donations/DONA-404/check-status", nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /donations/{order_id}/status", func() {
		It("returns the donation with its program", func() {
			repo.AddPending("DONA-1", 1, 50000, 4000)

			rec := do(http.MethodGet, "/donations/DONA-1/status", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var page struct {
				Donation struct {
					OrderID     string `json:"order_id"`
					DonatorName string `json:"donator_name"`
					Total       string `json:"total"`
				} `json:"donation"`
				Program struct {
					Name string `json:"name"`
				} `json:"program"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &page)).To(Succeed())
			Expect(page.Donation.OrderID).To(Equal("DONA-1"))
			Expect(page.Donation.DonatorName).To(Equal("Budi"))
			Expect(page.Donation.Total).To(Equal("54000"))
			Expect(page.Program.Name).To(Equal("Air Bersih"))
		})
	})

	Describe("/midtrans/callback", func() {
		It("acknowledges a valid notification", func() {
			repo.AddPending("DONA-1", 1, 50000, 4000)

			rec := do(http.MethodPost, "/midtrans/callback", notificationBody(signer, "DONA-1", "200", "54000.00", "settlement"))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"message":"Notification processed successfully."}`))
		})

		It("acknowledges a duplicate with 200", func() {
			repo.AddPending("DONA-1", 1, 50000, 4000)
			raw := notificationBody(signer, "DONA-1", "200", "54000.00", "settlement")

			Expect(do(http.MethodPost, "/midtrans/callback", raw).Code).To(Equal(http.StatusOK))
			rec := do(http.MethodPost, "/midtrans/callback", raw)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"message":"Notification already processed."}`))
		})

		It("answers a bodiless GET with 400", func() {
			rec := do(http.MethodGet, "/midtrans/callback", nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"message":"Invalid notification format."}`))
		})

		It("answers 400 for a malformed body", func() {
			rec := do(http.MethodPost, "/midtrans/callback", []byte(`not json`))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(MatchJSON(`{"message":"Invalid notification format."}`))
		})

		It("answers 403 for a bad signature", func() {
			repo.AddPending("DONA-1", 1, 50000, 4000)
			other := paymentgateway.NewClient(paymentgateway.Config{ServerKey: "wrong"}, newTestLogger())

			rec := do(http.MethodPost, "/midtrans/callback", notificationBody(other, "DONA-1", "200", "54000.00", "settlement"))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(rec.Body.String()).To(MatchJSON(`{"message":"Invalid signature."}`))
		})

		It("answers 404 for an unknown order", func() {
			rec := do(http.MethodPost, "/midtrans/callback", notificationBody(signer, "DONA-404", "200", "54000.00", "settlement"))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(rec.Body.String()).To(MatchJSON(`{"message":"Donation not found."}`))
		})

		It("answers 500 for anything else", func() {
			router = newRouter(failingNotificationService{err: errBoom})

			rec := do(http.MethodPost, "/midtrans/callback", []byte(`{}`))
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).To(MatchJSON(`{"message":"Failed to process notification."}`))
		})
	})
})
