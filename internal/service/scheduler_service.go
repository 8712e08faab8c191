package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/config"
	"github.com/atendo/crm-campaigns/internal/scheduler"
)

type schedulerService struct {
	scheduler *scheduler.Scheduler
	executor  ExecutorService
	logger    *zap.Logger
}

func NewSchedulerService(
	cfg *config.Config,
	executor ExecutorService,
	logger *zap.Logger,
) SchedulerService {
	interval := time.Duration(cfg.Scheduler.IntervalMinutes) * time.Minute

	svc := &schedulerService{
		executor: executor,
		logger:   logger,
	}

	svc.scheduler = scheduler.NewScheduler(logger, interval, svc.executePass)
	return svc
}

func (s *schedulerService) Start() error {
	ctx := context.Background()
	return s.scheduler.Start(ctx)
}

func (s *schedulerService) Stop() error {
	return s.scheduler.Stop()
}

func (s *schedulerService) IsRunning() bool {
	return s.scheduler.IsRunning()
}

func (s *schedulerService) executePass(ctx context.Context) error {
	return s.executor.RunDuePass(ctx)
}
