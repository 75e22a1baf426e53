package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrRunInProgress is returned by TriggerOnce when a pass is already running.
var ErrRunInProgress = errors.New("collection run already in progress")

// Notifier delivers failure alerts. Delivery is best-effort; errors are
// logged and never fail a run.
type Notifier interface {
	SendAlert(ctx context.Context, title string, lines []string) error
}

// RunnerConfig holds scheduling and alerting knobs.
type RunnerConfig struct {
	Interval       time.Duration // time between scheduled passes
	FailureStreak  int           // consecutive failures before alerting
	NotifyCooldown time.Duration // minimum gap between alerts
}

// Runner triggers collection passes on a fixed interval. A scheduled
// tick that lands while a pass is still running is skipped, not queued.
type Runner struct {
	cfg       RunnerConfig
	collector *Collector
	notifier  Notifier
	logger    *slog.Logger

	busy atomic.Bool

	mu           sync.Mutex
	failures     int
	lastNotifyAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a new Runner. notifier may be nil to disable alerts.
func NewRunner(cfg RunnerConfig, c *Collector, notifier Notifier, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:       cfg,
		collector: c,
		notifier:  notifier,
		logger:    logger.With("component", "runner"),
	}
}

// Start begins the scheduling loop.
func (r *Runner) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.run()

	r.logger.Info("collection runner started",
		"interval", r.cfg.Interval,
		"failure_streak", r.cfg.FailureStreak,
	)
	return nil
}

// Stop gracefully shuts down the runner.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("collection runner stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TriggerOnce runs a single collection pass, whether called from the
// schedule or an operator. Returns ErrRunInProgress if one is active.
func (r *Runner) TriggerOnce(ctx context.Context) (*RunSummary, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer r.busy.Store(false)

	summary, err := r.collector.CollectStationOnce(ctx)
	if err != nil {
		r.recordFailure(ctx, err)
		return nil, err
	}
	r.recordSuccess()
	return summary, nil
}

// Busy reports whether a pass is currently running.
func (r *Runner) Busy() bool {
	return r.busy.Load()
}

func (r *Runner) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	// Collect immediately on start.
	r.collectScheduled()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.collectScheduled()
		}
	}
}

func (r *Runner) collectScheduled() {
	if _, err := r.TriggerOnce(r.ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			r.logger.Info("skipping scheduled pass, previous still running")
			return
		}
		if r.ctx.Err() != nil {
			return
		}
		r.logger.Error("collection pass failed", "error", err)
	}
}

func (r *Runner) recordSuccess() {
	r.mu.Lock()
	r.failures = 0
	r.mu.Unlock()
}

func (r *Runner) recordFailure(ctx context.Context, runErr error) {
	r.mu.Lock()
	r.failures++
	streak := r.failures
	notify := r.notifier != nil &&
		r.cfg.FailureStreak > 0 &&
		streak >= r.cfg.FailureStreak &&
		time.Since(r.lastNotifyAt) >= r.cfg.NotifyCooldown
	if notify {
		r.lastNotifyAt = time.Now()
	}
	r.mu.Unlock()

	if !notify {
		return
	}
	lines := []string{
		fmt.Sprintf("station %d", r.collector.cfg.StationID),
		fmt.Sprintf("%d consecutive failures", streak),
		"last error: " + runErr.Error(),
	}
	if err := r.notifier.SendAlert(ctx, "market collection failing", lines); err != nil {
		r.logger.Warn("failure alert not delivered", "error", err)
	}
}
