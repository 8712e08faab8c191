package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atendo/crm-campaigns/internal/models"
)

type templateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) TemplateRepository {
	return &templateRepository{
		db: db,
	}
}

func (r *templateRepository) Create(tpl *models.MessageTemplate) error {
	query := `
		INSERT INTO message_templates (id, owner_id, name, body, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	tpl.CreatedAt = time.Now()

	_, err := r.db.Exec(query,
		tpl.ID,
		tpl.OwnerID,
		tpl.Name,
		tpl.Body,
		tpl.Category,
		tpl.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

func (r *templateRepository) GetByID(ownerID, id string) (*models.MessageTemplate, error) {
	query := `
		SELECT id, owner_id, name, body, category, created_at
		FROM message_templates
		WHERE id = $1 AND owner_id = $2
	`

	var tpl models.MessageTemplate
	err := r.db.Get(&tpl, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return &tpl, nil
}

// List returns the owner's templates ordered by creation time descending.
func (r *templateRepository) List(ownerID string) ([]*models.MessageTemplate, error) {
	query := `
		SELECT id, owner_id, name, body, category, created_at
		FROM message_templates
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	var templates []*models.MessageTemplate
	err := r.db.Select(&templates, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return templates, nil
}
