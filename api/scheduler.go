/*
scheduler.go - Automated monthly payment and award scheduler

PURPOSE:
  Periodically makes sure every active worker has this month's payment row,
  sends the due-date reminder once the 5th business day arrives, and
  reconciles award periods that contain today.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start
  - Skips a tick when the previous run is still going
  - Per-worker failures are logged and counted; the run continues

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewPaymentScheduler(service, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers_month.go: EnsurePayment endpoint (manual creation)
  - payroll/service.go: EnsureMonthlyPayment, NotifyPaymentDue, ReconcileAward
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/household-payroll/metrics"
	"github.com/warp/household-payroll/observability"
	"github.com/warp/household-payroll/payroll"
)

// PaymentScheduler handles the recurring monthly work.
type PaymentScheduler struct {
	Service       *payroll.Service
	Log           *zap.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// RunResult counts what one pass did.
type RunResult struct {
	PaymentsCreated  int
	DueNotified      int
	AwardsReconciled int
	Errors           int
}

// NewPaymentScheduler creates a new scheduler. log may be nil.
func NewPaymentScheduler(svc *payroll.Service, log *zap.Logger) *PaymentScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentScheduler{
		Service:       svc,
		Log:           log.Named("scheduler"),
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (ps *PaymentScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		ps.Log.Info("disabled, not starting")
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.wg.Add(1)

	go ps.loop(ps.ticker)

	ps.Log.Info("started", zap.Duration("interval", ps.CheckInterval))
}

// Stop stops the scheduler and waits for a run in progress.
func (ps *PaymentScheduler) Stop() {
	ps.mu.Lock()
	ticker := ps.ticker
	ps.ticker = nil
	ps.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(ps.stop)
	ps.wg.Wait()
	ps.Log.Info("stopped")
}

func (ps *PaymentScheduler) loop(ticker *time.Ticker) {
	defer ps.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-ps.stop
		cancel()
	}()

	// Run immediately on start
	ps.Run(ctx)

	for {
		select {
		case <-ticker.C:
			ps.Run(ctx)
		case <-ps.stop:
			return
		}
	}
}

// Run performs one pass. Concurrent calls return immediately with a zero result.
func (ps *PaymentScheduler) Run(ctx context.Context) RunResult {
	ps.mu.Lock()
	if ps.running {
		ps.mu.Unlock()
		ps.Log.Info("previous run still going, skipping")
		return RunResult{}
	}
	ps.running = true
	ps.mu.Unlock()

	defer func() {
		ps.mu.Lock()
		ps.running = false
		ps.mu.Unlock()
	}()

	start := time.Now()
	metrics.SchedulerRuns.Inc()
	res := ps.process(ctx)

	ps.Log.Info("run completed",
		zap.Int("payments_created", res.PaymentsCreated),
		zap.Int("due_notified", res.DueNotified),
		zap.Int("awards_reconciled", res.AwardsReconciled),
		zap.Int("errors", res.Errors),
		zap.Duration("duration", time.Since(start)),
	)
	return res
}

func (ps *PaymentScheduler) process(ctx context.Context) RunResult {
	var res RunResult
	svc := ps.Service
	today := svc.Today()
	month, year := int(today.Month()), today.Year()

	workers, err := svc.Store.ListWorkers(ctx, true)
	if err != nil {
		ps.failed(&res, "list workers", "", err)
		return res
	}

	for _, w := range workers {
		p, created, err := svc.EnsureMonthlyPayment(ctx, w.ID, month, year)
		if err != nil {
			ps.failed(&res, "ensure monthly payment", string(w.ID), err)
			continue
		}
		if created {
			res.PaymentsCreated++
			metrics.PaymentsCreated.Inc()
		}

		sent, err := svc.NotifyPaymentDue(ctx, p)
		if err != nil {
			ps.failed(&res, "notify payment due", string(w.ID), err)
		} else if sent {
			res.DueNotified++
		}

		periods, err := svc.Store.ListAwardPeriods(ctx, w.ID)
		if err != nil {
			ps.failed(&res, "list award periods", string(w.ID), err)
			continue
		}
		for _, ap := range periods {
			if !ap.Period().Contains(today) {
				continue
			}
			changed, err := svc.ReconcileAward(ctx, ap)
			if err != nil {
				ps.failed(&res, "reconcile award", string(w.ID), err)
				continue
			}
			if changed {
				res.AwardsReconciled++
			}
		}
	}
	return res
}

func (ps *PaymentScheduler) failed(res *RunResult, op, workerID string, err error) {
	res.Errors++
	metrics.SchedulerErrors.Inc()
	observability.CaptureErr(err)
	ps.Log.Error(op, zap.String("diarista_id", workerID), zap.Error(err))
}
