package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/atendo/crm-campaigns/internal/models"
)

type campaignRepository struct {
	db *sqlx.DB
}

func NewCampaignRepository(db *sqlx.DB) CampaignRepository {
	return &campaignRepository{
		db: db,
	}
}

// Create persists the campaign together with its recipient snapshot. The
// snapshot only admits contacts from the owner's directory; if any
// requested id does not resolve there, the whole transaction rolls back
// with ErrNotFound.
func (r *campaignRepository) Create(campaign *models.Campaign, contactIDs []string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	campaignQuery := `
		INSERT INTO campaigns (id, owner_id, name, template_id, message_body, status, scheduled_at,
		                       total_contacts, sent_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.Exec(campaignQuery,
		campaign.ID,
		campaign.OwnerID,
		campaign.Name,
		campaign.TemplateID,
		campaign.MessageBody,
		campaign.Status,
		campaign.ScheduledAt,
		campaign.TotalContacts,
		campaign.SentCount,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	snapshotQuery := `
		INSERT INTO campaign_recipients (campaign_id, contact_id)
		SELECT $1, id FROM contacts
		WHERE owner_id = $2 AND id = ANY($3)
	`
	result, err := tx.Exec(snapshotQuery, campaign.ID, campaign.OwnerID, pq.Array(contactIDs))
	if err != nil {
		return fmt.Errorf("failed to snapshot recipients: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if inserted != int64(len(contactIDs)) {
		return fmt.Errorf("contact set contains ids outside the owner's directory: %w", ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit campaign: %w", err)
	}

	return nil
}

func (r *campaignRepository) GetByID(ownerID, id string) (*models.Campaign, error) {
	query := `
		SELECT id, owner_id, name, template_id, message_body, status, scheduled_at,
		       total_contacts, sent_count, created_at, updated_at
		FROM campaigns
		WHERE id = $1 AND owner_id = $2
	`

	var campaign models.Campaign
	err := r.db.Get(&campaign, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return &campaign, nil
}

// List returns the owner's campaigns, newest first.
func (r *campaignRepository) List(ownerID string) ([]*models.Campaign, error) {
	query := `
		SELECT id, owner_id, name, template_id, message_body, status, scheduled_at,
		       total_contacts, sent_count, created_at, updated_at
		FROM campaigns
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	var campaigns []*models.Campaign
	err := r.db.Select(&campaigns, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	return campaigns, nil
}

// ListRunnable picks campaigns for an execution pass: scheduled ones whose
// scheduled_at is due, and running ones abandoned by an interrupted pass.
func (r *campaignRepository) ListRunnable(now time.Time, limit int) ([]*models.Campaign, error) {
	query := `
		SELECT id, owner_id, name, template_id, message_body, status, scheduled_at,
		       total_contacts, sent_count, created_at, updated_at
		FROM campaigns
		WHERE (status = $1 AND scheduled_at <= $2) OR status = $3
		ORDER BY scheduled_at ASC NULLS LAST
		LIMIT $4
	`

	var campaigns []*models.Campaign
	err := r.db.Select(&campaigns, query,
		models.CampaignStatusScheduled, now, models.CampaignStatusRunning, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runnable campaigns: %w", err)
	}

	return campaigns, nil
}

// UpdateStatus performs a guarded transition. The WHERE clause on the
// current status keeps terminal states from regressing and lets
// concurrent passes race safely: only one write observes its expected
// source status.
func (r *campaignRepository) UpdateStatus(id string, from []models.CampaignStatus, to models.CampaignStatus) (bool, error) {
	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}

	query := `
		UPDATE campaigns
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = ANY($4)
	`

	result, err := r.db.Exec(query, id, to, time.Now(), pq.Array(sources))
	if err != nil {
		return false, fmt.Errorf("failed to update campaign status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return rows > 0, nil
}

// IncrementSentCount bumps sent_count by one. The guard keeps the count
// from ever exceeding total_contacts.
func (r *campaignRepository) IncrementSentCount(id string) error {
	query := `
		UPDATE campaigns
		SET sent_count = sent_count + 1, updated_at = $2
		WHERE id = $1 AND sent_count < total_contacts
	`

	_, err := r.db.Exec(query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to increment sent count: %w", err)
	}

	return nil
}

// Recipients returns the contacts snapshotted for the campaign at
// planning time.
func (r *campaignRepository) Recipients(campaignID string) ([]*models.Contact, error) {
	query := `
		SELECT c.id, c.owner_id, c.name, c.phone, c.email, c.tags, c.status, c.stage,
		       c.created_at, c.updated_at
		FROM campaign_recipients cr
		JOIN contacts c ON c.id = cr.contact_id
		WHERE cr.campaign_id = $1
		ORDER BY c.created_at ASC
	`

	var contacts []*models.Contact
	err := r.db.Select(&contacts, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign recipients: %w", err)
	}

	return contacts, nil
}
