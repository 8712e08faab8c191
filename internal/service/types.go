package service

import (
	"time"

	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/sender"
)

// CreateContactInput carries the fields accepted when creating a contact.
// Status defaults to lead and Stage to new when left empty.
type CreateContactInput struct {
	Name   string
	Phone  string
	Email  string
	Tags   []string
	Status models.ContactStatus
	Stage  models.Stage
}

// UpdateContactInput carries the mutable contact fields. Stage changes go
// through the pipeline transition operation instead.
type UpdateContactInput struct {
	Name   string
	Phone  string
	Email  string
	Tags   []string
	Status models.ContactStatus
}

// CreateTemplateInput carries the fields accepted when creating a message
// template.
type CreateTemplateInput struct {
	Name     string
	Body     string
	Category string
}

// CompositionSource identifies where a campaign message body comes from.
type CompositionSource string

const (
	CompositionSourceManual   CompositionSource = "manual"
	CompositionSourceTemplate CompositionSource = "template"
	CompositionSourceDraft    CompositionSource = "draft"
)

// MessageComposition describes the message a campaign will send. Template
// compositions reference a stored template by id; manual and draft
// compositions carry the body inline.
type MessageComposition struct {
	Source     CompositionSource
	TemplateID string
	Body       string
}

// PlanCampaignInput carries everything needed to plan a campaign. A future
// ScheduledAt produces a scheduled campaign, otherwise the campaign is
// created as a draft.
type PlanCampaignInput struct {
	Name        string
	Composition MessageComposition
	ContactIDs  []string
	ScheduledAt *time.Time
}

// CampaignDetails is a campaign together with its delivery accounting.
type CampaignDetails struct {
	Campaign   *models.Campaign
	Deliveries map[models.DeliveryOutcome]int
}

// UpdateProfileInput carries the owner profile fields used for message
// signatures.
type UpdateProfileInput struct {
	AttendantName  string
	DepartmentName string
	Signature      string
}

// Health status values reported by the health endpoint.
const (
	HealthStatusHealthy      = "healthy"
	HealthStatusDegraded     = "degraded"
	HealthStatusUnhealthy    = "unhealthy"
	HealthStatusRunning      = "running"
	HealthStatusStopped      = "stopped"
	HealthStatusConnected    = "connected"
	HealthStatusDisconnected = "disconnected"
)

// HealthStatus aggregates the health of the service dependencies.
type HealthStatus struct {
	Status               string
	SchedulerStatus      string
	DatabaseStatus       string
	RedisStatus          string
	CircuitBreakerState  sender.BreakerState
	CircuitBreakerStatus string
}
