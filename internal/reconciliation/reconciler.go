package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	donationDatamodel "github.com/frahmantamala/donation-management/internal/core/datamodel/donation"
	paymentgatewaytypes "github.com/frahmantamala/donation-management/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/donation-management/internal/donation"
	"github.com/frahmantamala/donation-management/internal/paymentgateway"
)

const (
	defaultInterval     = 5 * time.Minute
	defaultStaleAfter   = 30 * time.Minute
	defaultBatchSize    = 100
	defaultMaxWorkers   = 4
	defaultQueryTimeout = 15 * time.Second
)

type Repository interface {
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*donationDatamodel.Donation, error)
}

type StatusFetcher interface {
	GetTransactionStatus(ctx context.Context, orderID string) (*paymentgatewaytypes.TransactionStatusResponse, error)
}

// Processor is the notification pipeline polled statuses are fed into.
type Processor interface {
	Process(ctx context.Context, n *donation.Notification, raw []byte) (donation.NotificationOutcome, error)
}

type Config struct {
	Interval     time.Duration
	StaleAfter   time.Duration
	BatchSize    int
	MaxWorkers   int
	QueryTimeout time.Duration
}

// Result counts what happened to one batch.
type Result struct {
	Scanned          int
	Updated          int
	Recorded         int
	AlreadyProcessed int
	NotOpened        int
	Failed           int
}

// Reconciler polls the gateway for donations that stayed pending longer than
// StaleAfter, for callbacks that never arrived.
type Reconciler struct {
	repo      Repository
	fetcher   StatusFetcher
	processor Processor
	config    Config
	logger    *slog.Logger
	now       func() time.Time

	jobQueue   chan Job
	workerPool chan chan Job
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once

	mu     sync.Mutex
	result Result
}

func NewReconciler(repo Repository, fetcher StatusFetcher, processor Processor, config Config, logger *slog.Logger) *Reconciler {
	if config.Interval <= 0 {
		config.Interval = defaultInterval
	}
	if config.StaleAfter <= 0 {
		config.StaleAfter = defaultStaleAfter
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaultBatchSize
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = defaultMaxWorkers
	}
	if config.QueryTimeout <= 0 {
		config.QueryTimeout = defaultQueryTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		repo:       repo,
		fetcher:    fetcher,
		processor:  processor,
		config:     config,
		logger:     logger,
		now:        time.Now,
		jobQueue:   make(chan Job, config.BatchSize),
		workerPool: make(chan chan Job, config.MaxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start launches the worker pool and dispatcher. It is safe to call more than once.
func (r *Reconciler) Start() {
	r.once.Do(func() {
		for i := 0; i < r.config.MaxWorkers; i++ {
			worker := NewWorker(i, r.workerPool, r.logger)
			worker.Start(r.ctx, &r.wg, r.reconcile)
		}

		r.wg.Add(1)
		go r.dispatch()

		r.logger.Info("reconciliation worker pool started",
			"max_workers", r.config.MaxWorkers,
			"queue_size", cap(r.jobQueue))
	})
}

func (r *Reconciler) dispatch() {
	defer r.wg.Done()

	for {
		select {
		case job := <-r.jobQueue:
			select {
			case jobChannel := <-r.workerPool:
				select {
				case jobChannel <- job:
				case <-r.ctx.Done():
					r.logger.Info("dispatcher shutting down")
					return
				}
			case <-r.ctx.Done():
				r.logger.Info("dispatcher shutting down")
				return
			}
		case <-r.ctx.Done():
			r.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (r *Reconciler) Shutdown() {
	r.logger.Info("shutting down reconciler")
	r.cancel()
	r.wg.Wait()
	r.logger.Info("reconciler shutdown complete")
}

// Run reconciles one batch immediately and then one per Interval until ctx
// is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	r.Start()
	defer r.Shutdown()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("reconciliation batch failed", "error", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

// RunOnce reconciles a single batch and returns when every job is handled.
func (r *Reconciler) RunOnce(ctx context.Context) (Result, error) {
	r.Start()

	cutoff := r.now().Add(-r.config.StaleAfter)
	stale, err := r.repo.ListStalePending(ctx, cutoff, r.config.BatchSize)
	if err != nil {
		return Result{}, err
	}

	r.mu.Lock()
	r.result = Result{Scanned: len(stale)}
	r.mu.Unlock()

	if len(stale) == 0 {
		r.logger.Debug("no stale pending donations", "cutoff", cutoff)
		return r.snapshot(), nil
	}

	r.logger.Info("reconciling stale pending donations", "count", len(stale), "cutoff", cutoff)

	var batch sync.WaitGroup
	for _, d := range stale {
		batch.Add(1)
		select {
		case r.jobQueue <- Job{OrderID: d.OrderID, done: &batch}:
		case <-ctx.Done():
			batch.Done()
			return r.snapshot(), ctx.Err()
		case <-r.ctx.Done():
			batch.Done()
			return r.snapshot(), r.ctx.Err()
		}
	}

	done := make(chan struct{})
	go func() {
		batch.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return r.snapshot(), ctx.Err()
	case <-r.ctx.Done():
		return r.snapshot(), r.ctx.Err()
	}

	res := r.snapshot()
	r.logger.Info("reconciliation batch finished",
		"scanned", res.Scanned,
		"updated", res.Updated,
		"recorded", res.Recorded,
		"already_processed", res.AlreadyProcessed,
		"not_opened", res.NotOpened,
		"failed", res.Failed)
	return res, nil
}

func (r *Reconciler) reconcile(job Job) {
	ctx, cancel := context.WithTimeout(r.ctx, r.config.QueryTimeout)
	defer cancel()

	log := r.logger.With("order_id", job.OrderID)

	status, err := r.fetcher.GetTransactionStatus(ctx, job.OrderID)
	if errors.Is(err, paymentgateway.ErrTransactionNotFound) {
		log.Info("payment session was never opened, leaving donation pending")
		r.record(func(res *Result) { res.NotOpened++ })
		return
	}
	if err != nil {
		log.Error("failed to query transaction status", "error", err)
		r.record(func(res *Result) { res.Failed++ })
		return
	}

	raw, err := json.Marshal(status)
	if err != nil {
		log.Error("failed to encode transaction status", "error", err)
		r.record(func(res *Result) { res.Failed++ })
		return
	}

	outcome, err := r.processor.Process(ctx, donation.NotificationFromStatus(status), raw)
	if err != nil {
		log.Error("failed to apply polled status", "error", err, "transaction_status", status.TransactionStatus)
		r.record(func(res *Result) { res.Failed++ })
		return
	}

	switch outcome {
	case donation.OutcomeUpdated:
		r.record(func(res *Result) { res.Updated++ })
	case donation.OutcomeRecorded:
		r.record(func(res *Result) { res.Recorded++ })
	default:
		r.record(func(res *Result) { res.AlreadyProcessed++ })
	}
}

func (r *Reconciler) record(fn func(*Result)) {
	r.mu.Lock()
	fn(&r.result)
	r.mu.Unlock()
}

func (r *Reconciler) snapshot() Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}
