package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/repository"
	repomocks "github.com/atendo/crm-campaigns/internal/repository/mocks"
	"github.com/atendo/crm-campaigns/internal/service"
	servicemocks "github.com/atendo/crm-campaigns/internal/service/mocks"
)

type campaignMocks struct {
	repo     *repomocks.MockRepository
	template *repomocks.MockTemplateRepository
	campaign *repomocks.MockCampaignRepository
	delivery *repomocks.MockDeliveryRepository
	executor *servicemocks.MockExecutorService
}

func newCampaignMocks(ctrl *gomock.Controller) *campaignMocks {
	m := &campaignMocks{
		repo:     repomocks.NewMockRepository(ctrl),
		template: repomocks.NewMockTemplateRepository(ctrl),
		campaign: repomocks.NewMockCampaignRepository(ctrl),
		delivery: repomocks.NewMockDeliveryRepository(ctrl),
		executor: servicemocks.NewMockExecutorService(ctrl),
	}
	m.repo.EXPECT().Template().Return(m.template).AnyTimes()
	m.repo.EXPECT().Campaign().Return(m.campaign).AnyTimes()
	m.repo.EXPECT().Delivery().Return(m.delivery).AnyTimes()
	return m
}

func TestCampaignService_Plan_Draft(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newCampaignMocks(ctrl)

	var created *models.Campaign
	var createdIDs []string
	m.campaign.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(c *models.Campaign, ids []string) error {
			created = c
			createdIDs = ids
			return nil
		})

	svc := service.NewCampaignService(m.repo, m.executor, zap.NewNop())

	campaign, err := svc.Plan("owner-1", service.PlanCampaignInput{
		Name: "Follow up",
		Composition: service.MessageComposition{
			Source: service.CompositionSourceManual,
			Body:   "Hi {name}, any news?",
		},
		ContactIDs: []string{"c1", "c2", "c1", "c3"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.CampaignStatusDraft, campaign.Status)
	assert.False(t, campaign.ScheduledAt.Valid)
	assert.Equal(t, 3, campaign.TotalContacts)
	assert.Equal(t, []string{"c1", "c2", "c3"}, createdIDs)
	assert.Equal(t, created.ID, campaign.ID)
	assert.True(t, campaign.MessageBody.Valid)
}

func TestCampaignService_Plan_Scheduled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newCampaignMocks(ctrl)

	m.template.EXPECT().GetByID("owner-1", "tpl-1").Return(&models.MessageTemplate{
		ID:      "tpl-1",
		OwnerID: "owner-1",
		Body:    "Hello {name}",
	}, nil)
	m.campaign.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	svc := service.NewCampaignService(m.repo, m.executor, zap.NewNop())

	scheduledAt := time.Now().Add(2 * time.Hour)
	campaign, err := svc.Plan("owner-1", service.PlanCampaignInput{
		Name: "Promo",
		Composition: service.MessageComposition{
			Source:     service.CompositionSourceTemplate,
			TemplateID: "tpl-1",
		},
		ContactIDs:  []string{"c1"},
		ScheduledAt: &scheduledAt,
	})
	require.NoError(t, err)

	assert.Equal(t, models.CampaignStatusScheduled, campaign.Status)
	assert.True(t, campaign.ScheduledAt.Valid)
	assert.Equal(t, "tpl-1", campaign.TemplateID.String)
}

func TestCampaignService_Plan_PastScheduleBecomesDraft(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newCampaignMocks(ctrl)
	m.campaign.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	svc := service.NewCampaignService(m.repo, m.executor, zap.NewNop())

	scheduledAt := time.Now().Add(-time.Hour)
	campaign, err := svc.Plan("owner-1", service.PlanCampaignInput{
		Name: "Late",
		Composition: service.MessageComposition{
			Source: service.CompositionSourceManual,
			Body:   "Hello",
		},
		ContactIDs:  []string{"c1"},
		ScheduledAt: &scheduledAt,
	})
	require.NoError(t, err)

	assert.Equal(t, models.CampaignStatusDraft, campaign.Status)
	// The requested time stays on the record even though it did not arm
	// the scheduler.
	require.True(t, campaign.ScheduledAt.Valid)
	assert.True(t, campaign.ScheduledAt.Time.Equal(scheduledAt))
}

func TestCampaignService_Plan_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input service.PlanCampaignInput
	}{
		{
			name: "empty name",
			input: service.PlanCampaignInput{
				Composition: service.MessageComposition{
					Source: service.CompositionSourceManual,
					Body:   "Hello",
				},
				ContactIDs: []string{"c1"},
			},
		},
		{
			name: "empty recipient set",
			input: service.PlanCampaignInput{
				Name: "Promo",
				Composition: service.MessageComposition{
					Source: service.CompositionSourceManual,
					Body:   "Hello",
				},
			},
		},
		{
			name: "manual composition without body",
			input: service.PlanCampaignInput{
				Name: "Promo",
				Composition: service.MessageComposition{
					Source: service.CompositionSourceManual,
				},
				ContactIDs: []string{"c1"},
			},
		},
		{
			name: "unknown composition source",
			input: service.PlanCampaignInput{
				Name: "Promo",
				Composition: service.MessageComposition{
					Source: "telepathy",
				},
				ContactIDs: []string{"c1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newCampaignMocks(ctrl)
			svc := service.NewCampaignService(m.repo, m.executor, zap.NewNop())

			_, err := svc.Plan("owner-1", tt.input)

			var vErr *service.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestCampaignService_Plan_TemplateNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newCampaignMocks(ctrl)
	m.template.EXPECT().GetByID("owner-1", "missing").Return(nil, repository.ErrNotFound)

	svc := service.NewCampaignService(m.repo, m.executor, zap.NewNop())

	_, err := svc.Plan("owner-1", service.PlanCampaignInput{
		Name: "Promo",
		Composition: service.MessageComposition{
			Source:     service.CompositionSourceTemplate,
			TemplateID: "missing",
		},
		ContactIDs: []string{"c1"},
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestCampaignService_Plan_ForeignContactRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newCampaignMocks(ctrl)
	m.campaign.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrNotFound)

	svc := service.NewCampaignService(m.repo, m.executor, zap.NewNop())

	_, err := svc.Plan("owner-1", service.PlanCampaignInput{
		Name: "Promo",
		Composition: service.MessageComposition{
			Source: service.CompositionSourceManual,
			Body:   "Hello",
		},
		ContactIDs: []string{"someone-elses-contact"},
	})

	var vErr *service.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestCampaignService_Cancel(t *testing.T) {
	tests := []struct {
		name       string
		status     models.CampaignStatus
		setupMocks func(*campaignMocks)
		wantErr    error
	}{
		{
			name:   "draft settles completed",
			status: models.CampaignStatusDraft,
			setupMocks: func(m *campaignMocks) {
				m.campaign.EXPECT().UpdateStatus("camp-1",
					[]models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusScheduled},
					models.CampaignStatusCompleted).Return(true, nil)
			},
		},
		{
			name:   "scheduled settles completed",
			status: models.CampaignStatusScheduled,
			setupMocks: func(m *campaignMocks) {
				m.campaign.EXPECT().UpdateStatus("camp-1",
					[]models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusScheduled},
					models.CampaignStatusCompleted).Return(true, nil)
			},
		},
		{
			name:   "running gets a stop request",
			status: models.CampaignStatusRunning,
			setupMocks: func(m *campaignMocks) {
				m.executor.EXPECT().RequestStop("camp-1")
				m.campaign.EXPECT().GetByID("owner-1", "camp-1").Return(&models.Campaign{
					ID:      "camp-1",
					OwnerID: "owner-1",
					Status:  models.CampaignStatusRunning,
				}, nil)
			},
		},
		{
			name:   "stop request withdrawn when campaign settles meanwhile",
			status: models.CampaignStatusRunning,
			setupMocks: func(m *campaignMocks) {
				m.executor.EXPECT().RequestStop("camp-1")
				m.campaign.EXPECT().GetByID("owner-1", "camp-1").Return(&models.Campaign{
					ID:      "camp-1",
					OwnerID: "owner-1",
					Status:  models.CampaignStatusCompleted,
				}, nil)
				m.executor.EXPECT().ClearStopRequest("camp-1")
			},
		},
		{
			name:       "completed cannot be cancelled",
			status:     models.CampaignStatusCompleted,
			setupMocks: func(m *campaignMocks) {},
			wantErr:    service.ErrCampaignNotCancellable,
		},
		{
			name:       "failed cannot be cancelled",
			status:     models.CampaignStatusFailed,
			setupMocks: func(m *campaignMocks) {},
			wantErr:    service.ErrCampaignNotCancellable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newCampaignMocks(ctrl)
			m.campaign.EXPECT().GetByID("owner-1", "camp-1").Return(&models.Campaign{
				ID:      "camp-1",
				OwnerID: "owner-1",
				Status:  tt.status,
			}, nil)
			tt.setupMocks(m)

			svc := service.NewCampaignService(m.repo, m.executor, zap.NewNop())

			err := svc.Cancel("owner-1", "camp-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCampaignService_Get_WithDeliveryCounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newCampaignMocks(ctrl)
	m.campaign.EXPECT().GetByID("owner-1", "camp-1").Return(&models.Campaign{
		ID:      "camp-1",
		OwnerID: "owner-1",
		Status:  models.CampaignStatusCompleted,
	}, nil)
	m.delivery.EXPECT().CountByOutcome("camp-1").Return(map[models.DeliveryOutcome]int{
		models.DeliveryOutcomeSent:   2,
		models.DeliveryOutcomeFailed: 1,
	}, nil)

	svc := service.NewCampaignService(m.repo, m.executor, zap.NewNop())

	details, err := svc.Get("owner-1", "camp-1")
	require.NoError(t, err)

	assert.Equal(t, "camp-1", details.Campaign.ID)
	assert.Equal(t, 2, details.Deliveries[models.DeliveryOutcomeSent])
	assert.Equal(t, 1, details.Deliveries[models.DeliveryOutcomeFailed])
}

func TestCampaignService_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newCampaignMocks(ctrl)
	m.campaign.EXPECT().GetByID("owner-1", "missing").Return(nil, repository.ErrNotFound)

	svc := service.NewCampaignService(m.repo, m.executor, zap.NewNop())

	_, err := svc.Get("owner-1", "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
