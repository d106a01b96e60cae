package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/donation-management/internal/reconciliation"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that run outside the HTTP server, such as payment reconciliation.`,
}

var reconcileWorkerCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile stale pending donations with the payment gateway",
	Long: `Periodically query the Midtrans status API for donations that stayed pending
longer than the configured threshold and apply the answer through the notification pipeline.`,
	Run: func(cmd *cobra.Command, args []string) {
		startReconcileWorker()
	},
}

var (
	reconcileInterval   time.Duration
	reconcileStaleAfter time.Duration
	reconcileBatchSize  int
	reconcileMaxWorkers int
	reconcileOnce       bool
)

func startReconcileWorker() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	logger := deps.Logger
	cfg := deps.Config.Reconciliation

	config := reconciliation.Config{
		Interval:     getDurationFlag(reconcileInterval, cfg.Interval),
		StaleAfter:   getDurationFlag(reconcileStaleAfter, cfg.StaleAfter),
		BatchSize:    getIntFlag(reconcileBatchSize, cfg.BatchSize),
		MaxWorkers:   getIntFlag(reconcileMaxWorkers, cfg.MaxWorkers),
		QueryTimeout: deps.Config.Payment.Timeout,
	}

	logger.Info("starting reconcile worker",
		"interval", config.Interval,
		"stale_after", config.StaleAfter,
		"batch_size", config.BatchSize,
		"max_workers", config.MaxWorkers,
		"once", reconcileOnce)

	reconciler := reconciliation.NewReconciler(deps.DonationRepo, deps.Gateway, deps.NotificationService, config, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if reconcileOnce {
		result, err := reconciler.RunOnce(ctx)
		reconciler.Shutdown()
		if err != nil {
			logger.Error("reconciliation failed", "error", err)
		} else {
			logger.Info("reconciliation finished", "scanned", result.Scanned, "updated", result.Updated, "failed", result.Failed)
		}
	} else {
		logger.Info("reconcile worker is running. Press Ctrl+C to stop.")
		if err := reconciler.Run(ctx); err != nil {
			logger.Error("reconcile worker stopped with error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := deps.EventBus.Wait(shutdownCtx); err != nil {
		logger.Warn("shutdown timeout reached, event handlers still running")
	}
	logger.Info("reconcile worker shutdown complete")
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	reconcileWorkerCmd.Flags().DurationVar(&reconcileInterval, "interval", 0, "Time between batches (overrides config)")
	reconcileWorkerCmd.Flags().DurationVar(&reconcileStaleAfter, "stale-after", 0, "Minimum age of a pending donation (overrides config)")
	reconcileWorkerCmd.Flags().IntVar(&reconcileBatchSize, "batch-size", 0, "Donations per batch (overrides config)")
	reconcileWorkerCmd.Flags().IntVar(&reconcileMaxWorkers, "max-workers", 0, "Concurrent status queries (overrides config)")
	reconcileWorkerCmd.Flags().BoolVar(&reconcileOnce, "once", false, "Reconcile a single batch and exit")

	workerCmd.AddCommand(reconcileWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
