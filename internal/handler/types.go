package handler

import (
	"time"

	"github.com/atendo/crm-campaigns/internal/models"
)

type createContactRequest struct {
	Name   string   `json:"name"`
	Phone  string   `json:"phone"`
	Email  string   `json:"email,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Status string   `json:"status,omitempty"`
	Stage  string   `json:"stage,omitempty"`
}

type updateContactRequest struct {
	Name   string   `json:"name,omitempty"`
	Phone  string   `json:"phone,omitempty"`
	Email  string   `json:"email,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Status string   `json:"status,omitempty"`
}

type transitionStageRequest struct {
	Stage string `json:"stage"`
}

type createTemplateRequest struct {
	Name     string `json:"name"`
	Body     string `json:"body"`
	Category string `json:"category,omitempty"`
}

type compositionRequest struct {
	Source     string `json:"source"`
	TemplateID string `json:"template_id,omitempty"`
	Body       string `json:"body,omitempty"`
}

type planCampaignRequest struct {
	Name        string             `json:"name"`
	Composition compositionRequest `json:"composition"`
	ContactIDs  []string           `json:"contact_ids"`
	ScheduledAt *time.Time         `json:"scheduled_at,omitempty"`
}

type generateDraftRequest struct {
	Provider string `json:"provider"`
	Prompt   string `json:"prompt"`
}

type updateProfileRequest struct {
	AttendantName  string `json:"attendant_name,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
	Signature      string `json:"signature,omitempty"`
}

type campaignDetailsResponse struct {
	Campaign   *models.Campaign               `json:"campaign"`
	Deliveries map[models.DeliveryOutcome]int `json:"deliveries"`
}

type stageBoardResponse struct {
	Stages map[models.Stage]int `json:"stages"`
}

type draftResponse struct {
	Provider string `json:"provider"`
	Text     string `json:"text"`
}

type providersResponse struct {
	Providers []string `json:"providers"`
}

type schedulerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status               string    `json:"status"`
	SchedulerStatus      string    `json:"scheduler_status,omitempty"`
	DatabaseStatus       string    `json:"database_status,omitempty"`
	RedisStatus          string    `json:"redis_status,omitempty"`
	CircuitBreakerState  string    `json:"circuit_breaker_state,omitempty"`
	CircuitBreakerStatus string    `json:"circuit_breaker_status,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
