package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/repository"
)

type campaignService struct {
	repo     repository.Repository
	executor ExecutorService
	logger   *zap.Logger
	now      func() time.Time
}

func NewCampaignService(
	repo repository.Repository,
	executor ExecutorService,
	logger *zap.Logger,
) CampaignService {
	return &campaignService{
		repo:     repo,
		executor: executor,
		logger:   logger,
		now:      time.Now,
	}
}

// Plan validates the input, snapshots the recipient set and persists the
// campaign. A ScheduledAt in the future yields a scheduled campaign,
// anything else a draft that must be triggered by hand.
func (s *campaignService) Plan(ownerID string, input PlanCampaignInput) (*models.Campaign, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("name", "must not be empty")
	}

	contactIDs := dedupe(input.ContactIDs)
	if len(contactIDs) == 0 {
		return nil, NewValidationError("contact_ids", "recipient set must not be empty")
	}

	campaign := &models.Campaign{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(input.Name),
		Status:        models.CampaignStatusDraft,
		TotalContacts: len(contactIDs),
	}

	switch input.Composition.Source {
	case CompositionSourceTemplate:
		tpl, err := s.repo.Template().GetByID(ownerID, input.Composition.TemplateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("template %s: %w", input.Composition.TemplateID, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to resolve template: %w", err)
		}
		campaign.TemplateID = sql.NullString{String: tpl.ID, Valid: true}
	case CompositionSourceManual, CompositionSourceDraft:
		if strings.TrimSpace(input.Composition.Body) == "" {
			return nil, NewValidationError("body", "must not be empty")
		}
		campaign.MessageBody = sql.NullString{String: input.Composition.Body, Valid: true}
	default:
		return nil, NewValidationError("source", fmt.Sprintf("unknown composition source %q", input.Composition.Source))
	}

	if input.ScheduledAt != nil {
		// The requested time is persisted even when it already passed,
		// so the record keeps what the caller asked for. Only a future
		// time arms the scheduler.
		campaign.ScheduledAt = sql.NullTime{Time: *input.ScheduledAt, Valid: true}
		if input.ScheduledAt.After(s.now()) {
			campaign.Status = models.CampaignStatusScheduled
		}
	}

	if err := s.repo.Campaign().Create(campaign, contactIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewValidationError("contact_ids", "contains contacts outside your directory")
		}
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.logger.Info("Campaign planned",
		zap.String("campaignID", campaign.ID),
		zap.String("ownerID", ownerID),
		zap.String("status", string(campaign.Status)),
		zap.Int("totalContacts", campaign.TotalContacts))

	return campaign, nil
}

func (s *campaignService) Get(ownerID, campaignID string) (*CampaignDetails, error) {
	campaign, err := s.repo.Campaign().GetByID(ownerID, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("campaign %s: %w", campaignID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	counts, err := s.repo.Delivery().CountByOutcome(campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to count deliveries: %w", err)
	}

	return &CampaignDetails{
		Campaign:   campaign,
		Deliveries: counts,
	}, nil
}

func (s *campaignService) List(ownerID string) ([]*models.Campaign, error) {
	campaigns, err := s.repo.Campaign().List(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// Cancel settles a campaign before it finishes on its own. Drafts and
// scheduled campaigns go straight to completed without any sends. A
// running campaign gets a stop request; the executor finishes in-flight
// sends and settles it. Terminal campaigns cannot be cancelled.
func (s *campaignService) Cancel(ownerID, campaignID string) error {
	campaign, err := s.repo.Campaign().GetByID(ownerID, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("campaign %s: %w", campaignID, ErrNotFound)
		}
		return fmt.Errorf("failed to get campaign: %w", err)
	}

	switch campaign.Status {
	case models.CampaignStatusDraft, models.CampaignStatusScheduled:
		ok, err := s.repo.Campaign().UpdateStatus(campaignID,
			[]models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusScheduled},
			models.CampaignStatusCompleted)
		if err != nil {
			return fmt.Errorf("failed to cancel campaign: %w", err)
		}
		if !ok {
			return fmt.Errorf("campaign %s: %w", campaignID, ErrCampaignNotCancellable)
		}
		s.logger.Info("Campaign cancelled", zap.String("campaignID", campaignID))
		return nil
	case models.CampaignStatusRunning:
		s.executor.RequestStop(campaignID)

		// The pass may have settled between the status check and the stop
		// request. A request nobody will consume is withdrawn so it does
		// not linger for the process lifetime.
		current, err := s.repo.Campaign().GetByID(ownerID, campaignID)
		if err == nil && current.Status.IsTerminal() {
			s.executor.ClearStopRequest(campaignID)
			s.logger.Info("Campaign settled before stop request took effect",
				zap.String("campaignID", campaignID))
			return nil
		}

		s.logger.Info("Campaign stop requested", zap.String("campaignID", campaignID))
		return nil
	default:
		return fmt.Errorf("campaign %s: %w", campaignID, ErrCampaignNotCancellable)
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
