package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/donation-management/api"
	"github.com/frahmantamala/donation-management/internal/donation"
	"github.com/frahmantamala/donation-management/internal/program"
	"github.com/frahmantamala/donation-management/internal/transport"
	"github.com/frahmantamala/donation-management/internal/transport/rest"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	router, err := setupRoutes(deps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.EventBus.Wait(ctx); err != nil {
			slog.Warn("Event handlers still running at shutdown", "error", err)
		}
		deps.Close()
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) (*chi.Mux, error) {
	router := chi.NewRouter()
	base := transport.NewBaseHandler(deps.Logger)

	handlers := rest.Handlers{
		Donation: donation.NewHandler(base, deps.DonationService),
		Webhook:  donation.NewWebhookHandler(base, deps.NotificationService),
		Program:  program.NewHandler(base, deps.ProgramService),
	}

	err := rest.RegisterAllRoutes(router, handlers, rest.RouterConfig{
		AllowedOrigins: deps.Config.Server.Origins(),
		OpenAPISpec:    api.OpenAPISpec,
		HealthChecks:   deps.healthChecks(),
	}, deps.Logger)
	if err != nil {
		return nil, err
	}
	return router, nil
}

func (d *Dependencies) healthChecks() []rest.HealthCheck {
	checks := []rest.HealthCheck{{Name: "postgres", Check: d.DB.PingContext}}
	if d.Redis != nil {
		checks = append(checks, rest.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return d.Redis.Ping(ctx).Err() },
		})
	}
	return checks
}
