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

const pqUniqueViolation = "23505"

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepository{
		db: db,
	}
}

// Create inserts a new contact. A phone already registered for the owner
// yields ErrDuplicate.
func (r *contactRepository) Create(contact *models.Contact) error {
	query := `
		INSERT INTO contacts (id, owner_id, name, phone, email, tags, status, stage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	_, err := r.db.Exec(query,
		contact.ID,
		contact.OwnerID,
		contact.Name,
		contact.Phone,
		contact.Email,
		contact.Tags,
		contact.Status,
		contact.Stage,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return fmt.Errorf("phone %s: %w", contact.Phone, ErrDuplicate)
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

func (r *contactRepository) GetByID(ownerID, id string) (*models.Contact, error) {
	query := `
		SELECT id, owner_id, name, phone, email, tags, status, stage, created_at, updated_at
		FROM contacts
		WHERE id = $1 AND owner_id = $2
	`

	var contact models.Contact
	err := r.db.Get(&contact, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contact %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return &contact, nil
}

// List returns the owner's contacts ordered by creation time descending.
func (r *contactRepository) List(ownerID string) ([]*models.Contact, error) {
	query := `
		SELECT id, owner_id, name, phone, email, tags, status, stage, created_at, updated_at
		FROM contacts
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	var contacts []*models.Contact
	err := r.db.Select(&contacts, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	return contacts, nil
}

func (r *contactRepository) Update(contact *models.Contact) error {
	query := `
		UPDATE contacts
		SET name = $3,
		    phone = $4,
		    email = $5,
		    tags = $6,
		    status = $7,
		    updated_at = $8
		WHERE id = $1 AND owner_id = $2
	`

	contact.UpdatedAt = time.Now()

	result, err := r.db.Exec(query,
		contact.ID,
		contact.OwnerID,
		contact.Name,
		contact.Phone,
		contact.Email,
		contact.Tags,
		contact.Status,
		contact.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return fmt.Errorf("phone %s: %w", contact.Phone, ErrDuplicate)
		}
		return fmt.Errorf("failed to update contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("contact %s: %w", contact.ID, ErrNotFound)
	}

	return nil
}

// UpdateStage records a stage transition against one contact row.
// Last-writer-wins under concurrent transitions.
func (r *contactRepository) UpdateStage(ownerID, id string, stage models.Stage) error {
	query := `
		UPDATE contacts
		SET stage = $3, updated_at = $4
		WHERE id = $1 AND owner_id = $2
	`

	result, err := r.db.Exec(query, id, ownerID, stage, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update contact stage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("contact %s: %w", id, ErrNotFound)
	}

	return nil
}

// CountByStage returns contact counts per pipeline stage for the owner's
// board view. Stages with no contacts are present with a zero count.
func (r *contactRepository) CountByStage(ownerID string) (map[models.Stage]int, error) {
	query := `
		SELECT stage, COUNT(*) AS count
		FROM contacts
		WHERE owner_id = $1
		GROUP BY stage
	`

	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts by stage: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[models.Stage]int, len(models.Stages()))
	for _, s := range models.Stages() {
		counts[s] = 0
	}

	for rows.Next() {
		var stage models.Stage
		var count int
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stage count: %w", err)
		}
		counts[stage] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stage counts: %w", err)
	}

	return counts, nil
}
