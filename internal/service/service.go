package service

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/config"
	"github.com/atendo/crm-campaigns/internal/draft"
	"github.com/atendo/crm-campaigns/internal/pipeline"
	"github.com/atendo/crm-campaigns/internal/repository"
	"github.com/atendo/crm-campaigns/internal/sender"
)

type Service struct {
	Contact   ContactService
	Template  TemplateService
	Campaign  CampaignService
	Executor  ExecutorService
	Scheduler SchedulerService
	Draft     DraftService
	Profile   ProfileService
	Health    HealthService
}

func NewService(
	cfg *config.Config,
	repo repository.Repository,
	redisClient *redis.Client,
	channel sender.ChannelSender,
	registry *draft.Registry,
	logger *zap.Logger,
) *Service {
	machine := pipeline.NewMachine(repo.Contact(), logger)

	contactService := NewContactService(repo, machine, logger)
	templateService := NewTemplateService(repo, logger)
	executorService := NewExecutorService(cfg, repo, redisClient, channel, logger)
	campaignService := NewCampaignService(repo, executorService, logger)
	schedulerService := NewSchedulerService(cfg, executorService, logger)
	draftService := NewDraftService(registry, repo, logger)
	profileService := NewProfileService(repo, logger)
	healthService := NewHealthService(repo, redisClient, schedulerService, executorService)

	return &Service{
		Contact:   contactService,
		Template:  templateService,
		Campaign:  campaignService,
		Executor:  executorService,
		Scheduler: schedulerService,
		Draft:     draftService,
		Profile:   profileService,
		Health:    healthService,
	}
}
