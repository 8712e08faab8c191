package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/config"
	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/repository"
	"github.com/atendo/crm-campaigns/internal/sender"
	"github.com/atendo/crm-campaigns/internal/signature"
)

type executorService struct {
	cfg            *config.Config
	repo           repository.Repository
	redisClient    *redis.Client
	channel        sender.ChannelSender
	circuitBreaker *sender.CircuitBreaker
	logger         *zap.Logger
	now            func() time.Time

	mu           sync.Mutex
	stopRequests map[string]struct{}
}

func NewExecutorService(
	cfg *config.Config,
	repo repository.Repository,
	redisClient *redis.Client,
	channel sender.ChannelSender,
	logger *zap.Logger,
) ExecutorService {
	cb := sender.NewCircuitBreaker(&cfg.Executor.CircuitBreaker, logger)

	return &executorService{
		cfg:            cfg,
		repo:           repo,
		redisClient:    redisClient,
		channel:        channel,
		circuitBreaker: cb,
		logger:         logger,
		now:            time.Now,
		stopRequests:   make(map[string]struct{}),
	}
}

// RunDuePass picks up every campaign that should be executing: scheduled
// campaigns whose time has come, plus running campaigns left behind by an
// interrupted pass. Delivery records make resuming safe.
func (s *executorService) RunDuePass(ctx context.Context) error {
	campaigns, err := s.repo.Campaign().ListRunnable(s.now(), s.cfg.Executor.BatchSize)
	if err != nil {
		s.logger.Error("Failed to list runnable campaigns", zap.Error(err))
		return fmt.Errorf("failed to list runnable campaigns: %w", err)
	}

	if len(campaigns) == 0 {
		s.logger.Debug("No campaigns due for execution")
		return nil
	}

	s.logger.Info("Found campaigns due for execution", zap.Int("count", len(campaigns)))

	for _, campaign := range campaigns {
		if campaign.Status == models.CampaignStatusScheduled {
			claimed, err := s.repo.Campaign().UpdateStatus(campaign.ID,
				[]models.CampaignStatus{models.CampaignStatusScheduled},
				models.CampaignStatusRunning)
			if err != nil {
				s.logger.Error("Failed to claim campaign",
					zap.String("campaignID", campaign.ID),
					zap.Error(err))
				continue
			}
			if !claimed {
				continue
			}
		}

		if err := s.execute(ctx, campaign); err != nil {
			s.logger.Error("Campaign execution failed",
				zap.String("campaignID", campaign.ID),
				zap.Error(err))
		}
	}

	return nil
}

// Trigger starts a campaign by hand. Drafts, scheduled campaigns and
// failed campaigns can be triggered; the guarded status update keeps two
// concurrent triggers from both running the same campaign.
func (s *executorService) Trigger(ctx context.Context, ownerID, campaignID string) error {
	campaign, err := s.repo.Campaign().GetByID(ownerID, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("campaign %s: %w", campaignID, ErrNotFound)
		}
		return fmt.Errorf("failed to get campaign: %w", err)
	}

	claimed, err := s.repo.Campaign().UpdateStatus(campaign.ID,
		[]models.CampaignStatus{
			models.CampaignStatusDraft,
			models.CampaignStatusScheduled,
			models.CampaignStatusFailed,
		},
		models.CampaignStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to claim campaign: %w", err)
	}
	if !claimed {
		return fmt.Errorf("campaign %s is %s: %w", campaignID, campaign.Status, ErrCampaignNotTriggerable)
	}

	campaign.Status = models.CampaignStatusRunning
	return s.execute(ctx, campaign)
}

// RequestStop asks a running campaign to settle after its in-flight sends
// finish. Recipients not yet attempted stay without delivery records.
func (s *executorService) RequestStop(campaignID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopRequests[campaignID] = struct{}{}
}

// ClearStopRequest withdraws a stop request that no pass will consume,
// such as one filed against a campaign that settled in the meantime.
func (s *executorService) ClearStopRequest(campaignID string) {
	s.clearStop(campaignID)
}

func (s *executorService) GetCircuitBreakerStatus() (sender.BreakerState, uint32, uint32) {
	requests, failures := s.circuitBreaker.Counts()
	return s.circuitBreaker.State(), requests, failures
}

// execute runs one pass over a running campaign. Each recipient without a
// delivery record gets exactly one send attempt; the unique delivery
// ledger makes repeating a pass after a crash safe.
func (s *executorService) execute(ctx context.Context, campaign *models.Campaign) error {
	defer s.clearStop(campaign.ID)

	if s.circuitBreaker.Open() {
		return s.failCampaign(campaign, errors.New("channel sender unavailable: circuit breaker is open"))
	}

	body, sig, err := s.resolveMessage(campaign)
	if err != nil {
		return s.failCampaign(campaign, err)
	}

	recipients, err := s.repo.Campaign().Recipients(campaign.ID)
	if err != nil {
		return s.failCampaign(campaign, fmt.Errorf("failed to load recipients: %w", err))
	}

	records, err := s.repo.Delivery().ListByCampaign(campaign.ID)
	if err != nil {
		return s.failCampaign(campaign, fmt.Errorf("failed to load delivery records: %w", err))
	}
	attempted := make(map[string]struct{}, len(records))
	for _, rec := range records {
		attempted[rec.ContactID] = struct{}{}
	}

	pending := make([]*models.Contact, 0, len(recipients))
	for _, contact := range recipients {
		if _, ok := attempted[contact.ID]; ok {
			continue
		}
		pending = append(pending, contact)
	}

	s.logger.Info("Executing campaign",
		zap.String("campaignID", campaign.ID),
		zap.Int("totalContacts", campaign.TotalContacts),
		zap.Int("pending", len(pending)))

	sem := make(chan struct{}, s.concurrency())
	var wg sync.WaitGroup
	stopped := false

	for _, contact := range pending {
		if s.stopRequested(campaign.ID) {
			s.logger.Info("Stop requested, halting campaign sends",
				zap.String("campaignID", campaign.ID))
			stopped = true
			break
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(contact *models.Contact) {
			defer wg.Done()
			defer func() { <-sem }()
			s.deliver(ctx, campaign, contact, body, sig)
		}(contact)
	}

	wg.Wait()

	if ctx.Err() != nil && !stopped {
		// Interrupted pass: leave the campaign running for the next one.
		return ctx.Err()
	}

	return s.settle(campaign, stopped)
}

// deliver attempts one send and records the outcome. The delivery record
// is written once per (campaign, contact) pair; a pair that already has a
// record is never sent to again.
func (s *executorService) deliver(ctx context.Context, campaign *models.Campaign, contact *models.Contact, body, sig string) {
	text := signature.Append(renderMessage(body, contact), sig)

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout())
	defer cancel()

	sendErr := s.circuitBreaker.Execute(sendCtx, func() error {
		return s.channel.Send(sendCtx, contact.Phone, text)
	})

	rec := &models.DeliveryRecord{
		CampaignID: campaign.ID,
		ContactID:  contact.ID,
		Message:    text,
		Outcome:    models.DeliveryOutcomeSent,
	}
	if sendErr != nil {
		rec.Outcome = models.DeliveryOutcomeFailed
		rec.Error = sql.NullString{String: sendErr.Error(), Valid: true}
	}

	inserted, err := s.repo.Delivery().InsertIfAbsent(rec)
	if err != nil {
		s.logger.Error("Failed to record delivery outcome",
			zap.String("campaignID", campaign.ID),
			zap.String("contactID", contact.ID),
			zap.Error(err))
		return
	}
	if !inserted {
		s.logger.Warn("Delivery already recorded, skipping accounting",
			zap.String("campaignID", campaign.ID),
			zap.String("contactID", contact.ID))
		return
	}

	if sendErr != nil {
		s.logger.Warn("Message delivery failed",
			zap.String("campaignID", campaign.ID),
			zap.String("contactID", contact.ID),
			zap.String("circuitBreakerState", string(s.circuitBreaker.State())),
			zap.Error(sendErr))
		return
	}

	if err := s.repo.Campaign().IncrementSentCount(campaign.ID); err != nil {
		s.logger.Error("Failed to increment sent count",
			zap.String("campaignID", campaign.ID),
			zap.Error(err))
	}

	s.cacheOutcome(campaign.ID, contact.ID)

	s.logger.Info("Message sent successfully",
		zap.String("campaignID", campaign.ID),
		zap.String("contactID", contact.ID),
		zap.String("circuitBreakerState", string(s.circuitBreaker.State())))
}

// settle decides whether the campaign is finished. It completes once every
// recipient has a terminal delivery record, or immediately when a stop was
// requested.
func (s *executorService) settle(campaign *models.Campaign, stopped bool) error {
	counts, err := s.repo.Delivery().CountByOutcome(campaign.ID)
	if err != nil {
		return fmt.Errorf("failed to count deliveries: %w", err)
	}

	terminal := counts[models.DeliveryOutcomeSent] + counts[models.DeliveryOutcomeFailed]
	if terminal < campaign.TotalContacts && !stopped {
		return nil
	}

	ok, err := s.repo.Campaign().UpdateStatus(campaign.ID,
		[]models.CampaignStatus{models.CampaignStatusRunning},
		models.CampaignStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to complete campaign: %w", err)
	}
	if ok {
		s.logger.Info("Campaign completed",
			zap.String("campaignID", campaign.ID),
			zap.Int("total", campaign.TotalContacts),
			zap.Int("sent", counts[models.DeliveryOutcomeSent]),
			zap.Int("failed", counts[models.DeliveryOutcomeFailed]),
			zap.Bool("stopped", stopped))
	}

	return nil
}

// failCampaign marks the campaign failed after an infrastructure fault
// that prevented the pass from processing recipients. Failed campaigns
// can be re-triggered; delivery records already written still hold.
func (s *executorService) failCampaign(campaign *models.Campaign, cause error) error {
	if _, err := s.repo.Campaign().UpdateStatus(campaign.ID,
		[]models.CampaignStatus{models.CampaignStatusScheduled, models.CampaignStatusRunning},
		models.CampaignStatusFailed); err != nil {
		s.logger.Error("Failed to mark campaign failed",
			zap.String("campaignID", campaign.ID),
			zap.Error(err))
	}

	s.logger.Error("Campaign failed",
		zap.String("campaignID", campaign.ID),
		zap.Error(cause))

	return fmt.Errorf("campaign %s: %w: %v", campaign.ID, ErrExecutorFault, cause)
}

// resolveMessage resolves the campaign body (template or literal) and the
// owner's signature block once per pass.
func (s *executorService) resolveMessage(campaign *models.Campaign) (body, sig string, err error) {
	switch {
	case campaign.TemplateID.Valid:
		tpl, err := s.repo.Template().GetByID(campaign.OwnerID, campaign.TemplateID.String)
		if err != nil {
			return "", "", fmt.Errorf("failed to resolve template: %w", err)
		}
		body = tpl.Body
	case campaign.MessageBody.Valid:
		body = campaign.MessageBody.String
	default:
		return "", "", errors.New("campaign has neither template nor message body")
	}

	profile, err := s.repo.Profile().Get(campaign.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return body, "", nil
		}
		return "", "", fmt.Errorf("failed to load owner profile: %w", err)
	}

	return body, signature.Resolve(profile.AttendantName, profile.DepartmentName, profile.Signature), nil
}

// cacheOutcome mirrors the delivery into Redis for quick lookups. Cache
// failures are logged and ignored; the ledger in Postgres is the truth.
func (s *executorService) cacheOutcome(campaignID, contactID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cacheKey := fmt.Sprintf("delivery:%s:%s", campaignID, contactID)
	cacheValue := fmt.Sprintf("sent:%s", s.now().Format(time.RFC3339))

	if err := s.redisClient.Set(ctx, cacheKey, cacheValue, 24*time.Hour).Err(); err != nil {
		s.logger.Warn("Failed to cache delivery outcome in Redis",
			zap.String("campaignID", campaignID),
			zap.String("contactID", contactID),
			zap.Error(err))
	}
}

func (s *executorService) stopRequested(campaignID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stopRequests[campaignID]
	return ok
}

func (s *executorService) clearStop(campaignID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stopRequests, campaignID)
}

func (s *executorService) concurrency() int {
	if s.cfg.Executor.Concurrency > 0 {
		return s.cfg.Executor.Concurrency
	}
	return 1
}

func (s *executorService) sendTimeout() time.Duration {
	if s.cfg.Executor.SendTimeout > 0 {
		return time.Duration(s.cfg.Executor.SendTimeout) * time.Second
	}
	return 15 * time.Second
}

// renderMessage substitutes contact placeholders into the body.
func renderMessage(body string, contact *models.Contact) string {
	out := strings.ReplaceAll(body, "{name}", contact.Name)
	out = strings.ReplaceAll(out, "{phone}", contact.Phone)
	if contact.Email.Valid {
		out = strings.ReplaceAll(out, "{email}", contact.Email.String)
	}
	return out
}
