package program_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	programDatamodel "github.com/frahmantamala/donation-management/internal/core/datamodel/program"
	"github.com/frahmantamala/donation-management/internal/program"
	"github.com/frahmantamala/donation-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Program Handler", func() {
	var router *chi.Mux

	BeforeEach(func() {
		repo := NewMockRepository()
		repo.programs[1] = &programDatamodel.Program{
			ID:           1,
			Name:         "Air Bersih",
			Slug:         "air-bersih",
			TargetAmount: decimal.NewFromInt(1000000),
			Status:       program.StatusActive,
		}
		repo.collected[1] = decimal.NewFromInt(500000)

		h := program.NewHandler(transport.NewBaseHandler(newTestLogger()), program.NewService(repo, newTestLogger()))
		router = chi.NewRouter()
		router.Get("/programs/{id}", h.GetProgram)
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	It("returns the program summary", func() {
		rec := get("/programs/1")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("name", "Air Bersih"))
		Expect(body).To(HaveKeyWithValue("collected_amount", "500000"))
		Expect(body).To(HaveKeyWithValue("progress_percentage", "50"))
	})

	It("returns 404 for an unknown program", func() {
		Expect(get("/programs/9").Code).To(Equal(http.StatusNotFound))
	})

	It("returns 400 for a malformed id", func() {
		Expect(get("/programs/abc").Code).To(Equal(http.StatusBadRequest))
		Expect(get("/programs/0").Code).To(Equal(http.StatusBadRequest))
	})
})
