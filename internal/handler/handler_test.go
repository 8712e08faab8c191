package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/handler"
	"github.com/atendo/crm-campaigns/internal/middleware"
	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/scheduler"
	"github.com/atendo/crm-campaigns/internal/sender"
	"github.com/atendo/crm-campaigns/internal/service"
	"github.com/atendo/crm-campaigns/internal/service/mocks"
)

type handlerMocks struct {
	contact   *mocks.MockContactService
	template  *mocks.MockTemplateService
	campaign  *mocks.MockCampaignService
	executor  *mocks.MockExecutorService
	scheduler *mocks.MockSchedulerService
	draft     *mocks.MockDraftService
	profile   *mocks.MockProfileService
	health    *mocks.MockHealthService
}

func newTestHandler(ctrl *gomock.Controller) (*handler.Handler, *handlerMocks) {
	m := &handlerMocks{
		contact:   mocks.NewMockContactService(ctrl),
		template:  mocks.NewMockTemplateService(ctrl),
		campaign:  mocks.NewMockCampaignService(ctrl),
		executor:  mocks.NewMockExecutorService(ctrl),
		scheduler: mocks.NewMockSchedulerService(ctrl),
		draft:     mocks.NewMockDraftService(ctrl),
		profile:   mocks.NewMockProfileService(ctrl),
		health:    mocks.NewMockHealthService(ctrl),
	}

	svc := &service.Service{
		Contact:   m.contact,
		Template:  m.template,
		Campaign:  m.campaign,
		Executor:  m.executor,
		Scheduler: m.scheduler,
		Draft:     m.draft,
		Profile:   m.profile,
		Health:    m.health,
	}

	return handler.NewHandler(svc, zap.NewNop()), m
}

func doRequest(h *handler.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.OwnerIDHeader, "owner-1")
	w := httptest.NewRecorder()

	h.Routes().ServeHTTP(w, req)
	return w
}

func TestHandler_CreateContact(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.contact.EXPECT().Create("owner-1", gomock.Any()).DoAndReturn(
		func(ownerID string, input service.CreateContactInput) (*models.Contact, error) {
			assert.Equal(t, "Alice", input.Name)
			assert.Equal(t, "+5511990001", input.Phone)
			return &models.Contact{
				ID:      "contact-1",
				OwnerID: ownerID,
				Name:    input.Name,
				Phone:   input.Phone,
				Status:  models.ContactStatusLead,
				Stage:   models.StageNew,
			}, nil
		})

	w := doRequest(h, http.MethodPost, "/contacts", map[string]any{
		"name":  "Alice",
		"phone": "+5511990001",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "contact-1", resp.ID)
	assert.Equal(t, models.StageNew, resp.Stage)
}

func TestHandler_CreateContact_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.contact.EXPECT().Create("owner-1", gomock.Any()).
		Return(nil, service.NewValidationError("phone", "must not be empty"))

	w := doRequest(h, http.MethodPost, "/contacts", map[string]any{"name": "Alice"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestHandler_CreateTemplate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.template.EXPECT().Create("owner-1", gomock.Any()).DoAndReturn(
		func(ownerID string, input service.CreateTemplateInput) (*models.MessageTemplate, error) {
			assert.Equal(t, "Welcome", input.Name)
			assert.Equal(t, "Hello {name}", input.Body)
			return &models.MessageTemplate{
				ID:      "tpl-1",
				OwnerID: ownerID,
				Name:    input.Name,
				Body:    input.Body,
			}, nil
		})

	w := doRequest(h, http.MethodPost, "/templates", map[string]any{
		"name": "Welcome",
		"body": "Hello {name}",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.MessageTemplate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tpl-1", resp.ID)
}

func TestHandler_CreateTemplate_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.template.EXPECT().Create("owner-1", gomock.Any()).
		Return(nil, service.NewValidationError("body", "must not be empty"))

	w := doRequest(h, http.MethodPost, "/templates", map[string]any{"name": "Welcome"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestHandler_GetTemplate_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.template.EXPECT().Get("owner-1", "missing").Return(nil, service.ErrNotFound)

	w := doRequest(h, http.MethodGet, "/templates/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_MissingOwnerHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _ := newTestHandler(ctrl)

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_OWNER")
}

func TestHandler_TransitionStage(t *testing.T) {
	tests := []struct {
		name           string
		stage          string
		setupMocks     func(*handlerMocks)
		expectedStatus int
	}{
		{
			name:  "success",
			stage: "qualified",
			setupMocks: func(m *handlerMocks) {
				m.contact.EXPECT().TransitionStage("owner-1", "contact-1", models.StageQualified).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:  "unknown stage",
			stage: "won",
			setupMocks: func(m *handlerMocks) {
				m.contact.EXPECT().TransitionStage("owner-1", "contact-1", models.Stage("won")).
					Return(service.NewValidationError("stage", "unknown stage"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "contact not found",
			stage: "closed",
			setupMocks: func(m *handlerMocks) {
				m.contact.EXPECT().TransitionStage("owner-1", "contact-1", models.StageClosed).
					Return(service.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h, m := newTestHandler(ctrl)
			tt.setupMocks(m)

			w := doRequest(h, http.MethodPut, "/contacts/contact-1/stage", map[string]string{
				"stage": tt.stage,
			})

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestHandler_PlanCampaign(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.campaign.EXPECT().Plan("owner-1", gomock.Any()).DoAndReturn(
		func(ownerID string, input service.PlanCampaignInput) (*models.Campaign, error) {
			assert.Equal(t, service.CompositionSourceManual, input.Composition.Source)
			assert.Equal(t, []string{"c1", "c2"}, input.ContactIDs)
			return &models.Campaign{
				ID:            "camp-1",
				OwnerID:       ownerID,
				Name:          input.Name,
				Status:        models.CampaignStatusDraft,
				TotalContacts: 2,
			}, nil
		})

	w := doRequest(h, http.MethodPost, "/campaigns", map[string]any{
		"name": "Follow up",
		"composition": map[string]string{
			"source": "manual",
			"body":   "Hi {name}",
		},
		"contact_ids": []string{"c1", "c2"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.Campaign
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.CampaignStatusDraft, resp.Status)
	assert.Equal(t, 2, resp.TotalContacts)
}

func TestHandler_TriggerCampaign_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.executor.EXPECT().Trigger(gomock.Any(), "owner-1", "camp-1").
		Return(service.ErrCampaignNotTriggerable)

	w := doRequest(h, http.MethodPost, "/campaigns/camp-1/trigger", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
}

func TestHandler_TriggerCampaign_ExecutorFault(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.executor.EXPECT().Trigger(gomock.Any(), "owner-1", "camp-1").
		Return(service.ErrExecutorFault)

	w := doRequest(h, http.MethodPost, "/campaigns/camp-1/trigger", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "EXECUTOR_FAULT")
}

func TestHandler_GetCampaign(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.campaign.EXPECT().Get("owner-1", "camp-1").Return(&service.CampaignDetails{
		Campaign: &models.Campaign{
			ID:            "camp-1",
			Status:        models.CampaignStatusCompleted,
			TotalContacts: 3,
			SentCount:     2,
		},
		Deliveries: map[models.DeliveryOutcome]int{
			models.DeliveryOutcomeSent:   2,
			models.DeliveryOutcomeFailed: 1,
		},
	}, nil)

	w := doRequest(h, http.MethodGet, "/campaigns/camp-1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sent":2`)
}

func TestHandler_GenerateDraft(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.draft.EXPECT().Generate(gomock.Any(), "owner-1", "chatgpt", "follow up").
		Return("Hello!\n\nAna - Suporte", nil)

	w := doRequest(h, http.MethodPost, "/drafts", map[string]string{
		"provider": "chatgpt",
		"prompt":   "follow up",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ana - Suporte")
}

func TestHandler_StartScheduler(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(*handlerMocks)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			setupMocks: func(m *handlerMocks) {
				m.scheduler.EXPECT().Start().Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "Scheduler started successfully",
		},
		{
			name: "already running",
			setupMocks: func(m *handlerMocks) {
				m.scheduler.EXPECT().Start().Return(scheduler.ErrSchedulerAlreadyRunning)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "SCHEDULER_ALREADY_RUNNING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			h, m := newTestHandler(ctrl)
			tt.setupMocks(m)

			w := doRequest(h, http.MethodPost, "/scheduler/start", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestHandler_HealthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.health.EXPECT().GetHealth().Return(&service.HealthStatus{
		Status:              service.HealthStatusHealthy,
		SchedulerStatus:     service.HealthStatusRunning,
		DatabaseStatus:      service.HealthStatusConnected,
		RedisStatus:         service.HealthStatusConnected,
		CircuitBreakerState: sender.BreakerClosed,
	})

	// Health endpoint does not require an owner header.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHandler_HealthCheck_Unhealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, m := newTestHandler(ctrl)

	m.health.EXPECT().GetHealth().Return(&service.HealthStatus{
		Status:          service.HealthStatusUnhealthy,
		SchedulerStatus: service.HealthStatusStopped,
		DatabaseStatus:  service.HealthStatusDisconnected,
		RedisStatus:     service.HealthStatusConnected,
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
