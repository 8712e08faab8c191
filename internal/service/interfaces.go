package service

import (
	"context"

	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/sender"
)

type ContactService interface {
	Create(ownerID string, input CreateContactInput) (*models.Contact, error)
	Get(ownerID, contactID string) (*models.Contact, error)
	List(ownerID string) ([]*models.Contact, error)
	Update(ownerID, contactID string, input UpdateContactInput) (*models.Contact, error)
	TransitionStage(ownerID, contactID string, stage models.Stage) error
	StageBoard(ownerID string) (map[models.Stage]int, error)
}

type TemplateService interface {
	Create(ownerID string, input CreateTemplateInput) (*models.MessageTemplate, error)
	Get(ownerID, templateID string) (*models.MessageTemplate, error)
	List(ownerID string) ([]*models.MessageTemplate, error)
}

type CampaignService interface {
	Plan(ownerID string, input PlanCampaignInput) (*models.Campaign, error)
	Get(ownerID, campaignID string) (*CampaignDetails, error)
	List(ownerID string) ([]*models.Campaign, error)
	Cancel(ownerID, campaignID string) error
}

type ExecutorService interface {
	RunDuePass(ctx context.Context) error
	Trigger(ctx context.Context, ownerID, campaignID string) error
	RequestStop(campaignID string)
	ClearStopRequest(campaignID string)
	GetCircuitBreakerStatus() (state sender.BreakerState, requests uint32, failures uint32)
}

type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool
}

type DraftService interface {
	Generate(ctx context.Context, ownerID, providerID, prompt string) (string, error)
	Providers() []string
}

type ProfileService interface {
	Get(ownerID string) (*models.OwnerProfile, error)
	Update(ownerID string, input UpdateProfileInput) (*models.OwnerProfile, error)
}

type HealthService interface {
	GetHealth() *HealthStatus
}
