package models

import (
	"database/sql"
	"time"
)

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusRunning   CampaignStatus = "running"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusFailed    CampaignStatus = "failed"
)

// IsTerminal reports whether the status permits no further transitions.
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStatusCompleted || s == CampaignStatusFailed
}

// Campaign is a planned or executing bulk-send job. The recipient set is
// snapshotted at planning time into campaign_recipients and never changes
// afterwards. Exactly one of TemplateID or MessageBody is set: templated
// campaigns reference a template, manually composed ones carry the
// literal body.
type Campaign struct {
	ID            string         `db:"id" json:"id"`
	OwnerID       string         `db:"owner_id" json:"owner_id"`
	Name          string         `db:"name" json:"name"`
	TemplateID    sql.NullString `db:"template_id" json:"template_id,omitempty"`
	MessageBody   sql.NullString `db:"message_body" json:"message_body,omitempty"`
	Status        CampaignStatus `db:"status" json:"status"`
	ScheduledAt   sql.NullTime   `db:"scheduled_at" json:"scheduled_at,omitempty"`
	TotalContacts int            `db:"total_contacts" json:"total_contacts"`
	SentCount     int            `db:"sent_count" json:"sent_count"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}
