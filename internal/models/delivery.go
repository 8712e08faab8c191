package models

import (
	"database/sql"
	"time"
)

type DeliveryOutcome string

const (
	DeliveryOutcomePending DeliveryOutcome = "pending"
	DeliveryOutcomeSent    DeliveryOutcome = "sent"
	DeliveryOutcomeFailed  DeliveryOutcome = "failed"
)

// DeliveryRecord is the durable outcome record for one (campaign, contact)
// send attempt. A unique constraint on (campaign_id, contact_id) keeps
// accounting exactly-once even when an execution pass is repeated.
type DeliveryRecord struct {
	ID         int64           `db:"id" json:"id"`
	CampaignID string          `db:"campaign_id" json:"campaign_id"`
	ContactID  string          `db:"contact_id" json:"contact_id"`
	Message    string          `db:"message" json:"message"`
	Outcome    DeliveryOutcome `db:"outcome" json:"outcome"`
	Error      sql.NullString  `db:"error" json:"error,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
