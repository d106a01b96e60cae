package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/donation-management/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LoggingMiddleware", func() {
	var (
		buf     *bytes.Buffer
		handler http.Handler
		seen    string
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		logger := slog.New(slog.NewJSONHandler(buf, nil))
		seen = ""
		echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			seen = string(body)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"token":"snap-token","redirect_url":"https://pay"}`))
		})
		handler = middleware.RequestID(middleware.LoggingMiddleware(logger)(echo))
	})

	It("redacts donor and gateway secrets", func() {
		body := `{"order_id":"DONA-1","signature_key":"abc123","donor":{"email":"budi@example.com"}}`
		req := httptest.NewRequest(http.MethodPost, "/midtrans/callback", strings.NewReader(body))
		req.Header.Set("Authorization", "Basic c2VjcmV0Og==")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		Expect(out).To(ContainSubstring("DONA-1"))
		Expect(out).NotTo(ContainSubstring("abc123"))
		Expect(out).NotTo(ContainSubstring("budi@example.com"))
		Expect(out).NotTo(ContainSubstring("c2VjcmV0Og=="))
		Expect(out).NotTo(ContainSubstring("snap-token"))
		Expect(out).To(ContainSubstring("https://pay"))
	})

	It("passes the body through to the handler unchanged", func() {
		body := `{"amount":50000}`
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/donations/", strings.NewReader(body)))

		Expect(seen).To(Equal(body))
	})

	It("logs the status code and the trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/donations/DONA-1/status", nil)
		req.Header.Set(middleware.TraceIDHeader, "trace-42")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		Expect(buf.String()).To(ContainSubstring(`"status_code":201`))
		Expect(buf.String()).To(ContainSubstring(`"traceID":"trace-42"`))
	})

	It("does not log non-JSON bodies", func() {
		req := httptest.NewRequest(http.MethodPost, "/midtrans/callback", strings.NewReader("signature_key=abc123"))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		Expect(buf.String()).NotTo(ContainSubstring("abc123"))
		Expect(buf.String()).To(ContainSubstring("[NON-JSON BODY]"))
	})

	It("skips bodies on documentation routes", func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/openapi.yml", nil))

		Expect(buf.String()).NotTo(ContainSubstring("redirect_url"))
	})
})
