package repository

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atendo/crm-campaigns/internal/models"
)

type deliveryRepository struct {
	db *sqlx.DB
}

func NewDeliveryRepository(db *sqlx.DB) DeliveryRepository {
	return &deliveryRepository{
		db: db,
	}
}

// InsertIfAbsent records a delivery outcome unless the (campaign, contact)
// pair already has one. The unique constraint plus ON CONFLICT DO NOTHING
// makes the insert atomic, so repeated executor passes account each
// recipient exactly once.
func (r *deliveryRepository) InsertIfAbsent(rec *models.DeliveryRecord) (bool, error) {
	query := `
		INSERT INTO delivery_records (campaign_id, contact_id, message, outcome, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (campaign_id, contact_id) DO NOTHING
	`

	rec.CreatedAt = time.Now()

	result, err := r.db.Exec(query,
		rec.CampaignID,
		rec.ContactID,
		rec.Message,
		rec.Outcome,
		rec.Error,
		rec.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert delivery record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return rows > 0, nil
}

func (r *deliveryRepository) ListByCampaign(campaignID string) ([]*models.DeliveryRecord, error) {
	query := `
		SELECT id, campaign_id, contact_id, message, outcome, error, created_at
		FROM delivery_records
		WHERE campaign_id = $1
		ORDER BY created_at ASC
	`

	var records []*models.DeliveryRecord
	err := r.db.Select(&records, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery records: %w", err)
	}

	return records, nil
}

// CountByOutcome returns delivery record counts per outcome for one
// campaign. All outcomes are present in the result, zero when absent.
func (r *deliveryRepository) CountByOutcome(campaignID string) (map[models.DeliveryOutcome]int, error) {
	query := `
		SELECT outcome, COUNT(*) AS count
		FROM delivery_records
		WHERE campaign_id = $1
		GROUP BY outcome
	`

	rows, err := r.db.Query(query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to count delivery outcomes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := map[models.DeliveryOutcome]int{
		models.DeliveryOutcomePending: 0,
		models.DeliveryOutcomeSent:    0,
		models.DeliveryOutcomeFailed:  0,
	}

	for rows.Next() {
		var outcome models.DeliveryOutcome
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcome counts: %w", err)
	}

	return counts, nil
}
