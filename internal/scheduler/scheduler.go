package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PassFunc is one campaign execution pass: pick up due campaigns, send,
// settle. It must respect its context; the scheduler bounds each pass so
// a slow one cannot pile onto the next tick.
type PassFunc func(context.Context) error

// Scheduler fires passes on a fixed interval from a single goroutine, so
// two passes never race over the same due campaigns within one process.
type Scheduler struct {
	logger   *zap.Logger
	interval time.Duration
	pass     PassFunc

	mu        sync.RWMutex
	isRunning bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewScheduler(logger *zap.Logger, interval time.Duration, pass PassFunc) *Scheduler {
	return &Scheduler{
		logger:   logger,
		interval: interval,
		pass:     pass,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the loop. The first pass runs right away so campaigns
// that came due while the service was down do not wait a full interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrSchedulerAlreadyRunning
	}

	s.isRunning = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.loop(ctx)

	s.logger.Info("Campaign scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop halts the loop and blocks until an in-flight pass finishes, so
// delivery accounting is settled before shutdown proceeds.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	s.logger.Info("Campaign scheduler stopped")
	return nil
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.doneCh)
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	if err := s.runPass(ctx); err != nil {
		s.logger.Error("Initial campaign pass failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Campaign scheduler context canceled")
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if err := s.runPass(ctx); err != nil {
				s.logger.Error("Campaign pass failed", zap.Error(err))
			}
		}
	}
}

// runPass gives the pass slightly less than the interval so it ends
// before the next tick. Intervals of a second or less keep the full
// interval; the budget must never start out expired.
func (s *Scheduler) runPass(ctx context.Context) error {
	budget := s.interval - time.Second
	if budget <= 0 {
		budget = s.interval
	}

	passCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	start := time.Now()
	err := s.pass(passCtx)
	if err != nil {
		return err
	}

	s.logger.Info("Campaign pass completed", zap.Duration("took", time.Since(start)))
	return nil
}
