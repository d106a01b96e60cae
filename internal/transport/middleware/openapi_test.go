package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/donation-management/api"
	"github.com/frahmantamala/donation-management/internal/transport/middleware"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPIValidator", func() {
	var (
		router  *chi.Mux
		reached bool
	)

	BeforeEach(func() {
		reached = false
		validator, err := middleware.OpenAPIValidator(api.OpenAPISpec, newTestLogger())
		Expect(err).NotTo(HaveOccurred())

		ok := func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		}
		router = chi.NewRouter()
		router.Use(validator)
		router.Post("/donations", ok)
		router.Get("/programs/{id}", ok)
		router.Get("/unknown", ok)
	})

	serve := func(method, path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("loads the embedded document", func() {
		doc, err := middleware.LoadOpenAPI(api.OpenAPISpec)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Paths.Find("/donations")).NotTo(BeNil())
		Expect(doc.Paths.Find("/midtrans/callback")).NotTo(BeNil())
	})

	It("rejects invalid documents", func() {
		_, err := middleware.OpenAPIValidator([]byte("openapi: [broken"), newTestLogger())
		Expect(err).To(HaveOccurred())
	})

	It("passes valid requests through", func() {
		rec := serve(http.MethodPost, "/donations", []byte(`{
			"program_id": 1,
			"amount": 50000,
			"donator_name": "Siti",
			"donator_email": "siti@example.com",
			"payment_method": "bca_va"
		}`))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(reached).To(BeTrue())
	})

	It("rejects a body missing required fields before the handler", func() {
		rec := serve(http.MethodPost, "/donations", []byte(`{"program_id": 1}`))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(reached).To(BeFalse())

		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["message"]).To(ContainSubstring("invalid request body"))
		Expect(body["error"]).To(HaveKeyWithValue("type", "VALIDATION_ERROR"))
	})

	It("rejects path parameters of the wrong type", func() {
		rec := serve(http.MethodGet, "/programs/abc", nil)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(reached).To(BeFalse())
	})

	It("lets undocumented paths through", func() {
		rec := serve(http.MethodGet, "/unknown", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(reached).To(BeTrue())
	})
})
