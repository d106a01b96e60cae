package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/donation-management/api"
	"github.com/frahmantamala/donation-management/internal/transport/rest"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Router", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	})

	serve := func(router *chi.Mux, method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	newRouter := func(config rest.RouterConfig) *chi.Mux {
		router := chi.NewRouter()
		Expect(rest.RegisterAllRoutes(router, rest.Handlers{}, config, logger)).To(Succeed())
		return router
	}

	ok := func(context.Context) error { return nil }

	Describe("health", func() {
		It("answers ping", func() {
			rec := serve(newRouter(rest.RouterConfig{}), http.MethodGet, "/api/v1/ping")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`{"status":"OK"}`))
		})

		It("reports every component when all checks pass", func() {
			router := newRouter(rest.RouterConfig{HealthChecks: []rest.HealthCheck{
				{Name: "postgres", Check: ok},
				{Name: "redis", Check: ok},
			}})

			rec := serve(router, http.MethodGet, "/api/v1/health")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp rest.HealthResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal(rest.HealthHealthy))
			Expect(resp.Components).To(HaveKey("postgres"))
			Expect(resp.Components).To(HaveKey("redis"))
		})

		It("is unavailable when one check fails", func() {
			router := newRouter(rest.RouterConfig{HealthChecks: []rest.HealthCheck{
				{Name: "postgres", Check: ok},
				{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
			}})

			rec := serve(router, http.MethodGet, "/api/v1/health")
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))

			var resp rest.HealthResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal(rest.HealthUnhealthy))
			Expect(resp.Components["postgres"].Status).To(Equal(rest.HealthHealthy))
			Expect(resp.Components["redis"].Status).To(Equal(rest.HealthUnhealthy))
			Expect(resp.Components["redis"].Message).To(Equal("connection refused"))
		})

		It("bounds checks with a deadline", func() {
			var hadDeadline bool
			router := newRouter(rest.RouterConfig{HealthChecks: []rest.HealthCheck{
				{Name: "postgres", Check: func(ctx context.Context) error {
					_, hadDeadline = ctx.Deadline()
					return nil
				}},
			}})

			serve(router, http.MethodGet, "/api/v1/health")
			Expect(hadDeadline).To(BeTrue())
		})
	})

	Describe("documentation", func() {
		It("serves the OpenAPI document", func() {
			rec := serve(newRouter(rest.RouterConfig{OpenAPISpec: api.OpenAPISpec}), http.MethodGet, "/openapi.yml")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/yaml"))
			Expect(rec.Body.Bytes()).To(Equal(api.OpenAPISpec))
		})

		It("rejects an invalid document", func() {
			router := chi.NewRouter()
			err := rest.RegisterAllRoutes(router, rest.Handlers{}, rest.RouterConfig{OpenAPISpec: []byte("openapi: [")}, logger)
			Expect(err).To(HaveOccurred())
		})
	})

	It("echoes the trace id", func() {
		router := newRouter(rest.RouterConfig{})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("X-Trace-ID", "trace-7")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Header().Get("X-Trace-ID")).To(Equal("trace-7"))
	})
})
