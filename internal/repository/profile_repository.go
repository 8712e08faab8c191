package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atendo/crm-campaigns/internal/models"
)

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{
		db: db,
	}
}

func (r *profileRepository) Get(ownerID string) (*models.OwnerProfile, error) {
	query := `
		SELECT owner_id, attendant_name, department_name, signature, updated_at
		FROM owner_profiles
		WHERE owner_id = $1
	`

	var profile models.OwnerProfile
	err := r.db.Get(&profile, query, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile for owner %s: %w", ownerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

func (r *profileRepository) Upsert(profile *models.OwnerProfile) error {
	query := `
		INSERT INTO owner_profiles (owner_id, attendant_name, department_name, signature, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id) DO UPDATE
		SET attendant_name = EXCLUDED.attendant_name,
		    department_name = EXCLUDED.department_name,
		    signature = EXCLUDED.signature,
		    updated_at = EXCLUDED.updated_at
	`

	profile.UpdatedAt = time.Now()

	_, err := r.db.Exec(query,
		profile.OwnerID,
		profile.AttendantName,
		profile.DepartmentName,
		profile.Signature,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}
