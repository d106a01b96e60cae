package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/donation-management/internal/donation"
	"github.com/frahmantamala/donation-management/internal/program"
	"github.com/frahmantamala/donation-management/internal/transport/middleware"
	"github.com/frahmantamala/donation-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	OpenAPISpec    []byte
	HealthChecks   []HealthCheck
}

type Handlers struct {
	Donation *donation.Handler
	Webhook  *donation.WebhookHandler
	Program  *program.Handler
}

func RegisterAllRoutes(router *chi.Mux, handlers Handlers, config RouterConfig, logger *slog.Logger) error {
	healthHandler := NewHealthHandler(config.HealthChecks...)

	// Apply global middleware
	router.Use(middleware.CORS(config.AllowedOrigins))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	var validator func(http.Handler) http.Handler
	if len(config.OpenAPISpec) > 0 {
		v, err := middleware.OpenAPIValidator(config.OpenAPISpec, logger)
		if err != nil {
			return err
		}
		validator = v

		spec := config.OpenAPISpec
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(spec)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)
	})

	router.Group(func(r chi.Router) {
		if validator != nil {
			r.Use(validator)
		}

		if handlers.Donation != nil {
			r.Route("/donations", func(r chi.Router) {
				r.Post("/", handlers.Donation.CreateDonation)
				r.Get("/{order_id}/check-status", handlers.Donation.CheckStatus)
				r.Get("/{order_id}/status", handlers.Donation.ShowStatus)
			})
		}

		if handlers.Program != nil {
			r.Get("/programs/{id}", handlers.Program.GetProgram)
		}
	})

	// callbacks answer with a bare message and skip request validation
	if handlers.Webhook != nil {
		router.Post("/midtrans/callback", handlers.Webhook.HandleMidtransCallback)
		router.Get("/midtrans/callback", handlers.Webhook.HandleMidtransCallback)
	}

	return nil
}
