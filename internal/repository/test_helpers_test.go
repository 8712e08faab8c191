package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/repository"
)

func insertTestContact(t *testing.T, db *sqlx.DB, ownerID, name, phone string) *models.Contact {
	t.Helper()

	contact := &models.Contact{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Name:    name,
		Phone:   phone,
		Status:  models.ContactStatusLead,
		Stage:   models.StageNew,
	}
	require.NoError(t, repository.NewContactRepository(db).Create(contact))
	return contact
}

func insertTestCampaign(t *testing.T, db *sqlx.DB, ownerID string, contactIDs []string) *models.Campaign {
	t.Helper()

	campaign := &models.Campaign{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Name:          "test campaign",
		Status:        models.CampaignStatusDraft,
		TotalContacts: len(contactIDs),
	}
	campaign.MessageBody.String = "Hello {name}"
	campaign.MessageBody.Valid = true

	require.NoError(t, repository.NewCampaignRepository(db).Create(campaign, contactIDs))
	return campaign
}
