package repository_test

import (
	"testing"
	"time"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/repository"
)

func TestCampaignRepository_Create_SnapshotsRecipients(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewCampaignRepository(db)

	c1 := insertTestContact(t, db, "owner-1", "Alice", "+5511990001")
	c2 := insertTestContact(t, db, "owner-1", "Bruno", "+5511990002")

	campaign := insertTestCampaign(t, db, "owner-1", []string{c1.ID, c2.ID})

	recipients, err := repo.Recipients(campaign.ID)
	require.NoError(t, err)
	require.Len(t, recipients, 2)

	ids := []string{recipients[0].ID, recipients[1].ID}
	assert.ElementsMatch(t, []string{c1.ID, c2.ID}, ids)
}

func TestCampaignRepository_Create_RejectsForeignContacts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewCampaignRepository(db)

	mine := insertTestContact(t, db, "owner-1", "Alice", "+5511990001")
	theirs := insertTestContact(t, db, "owner-2", "Eve", "+5511990002")

	campaign := &models.Campaign{
		ID:            uuid.New().String(),
		OwnerID:       "owner-1",
		Name:          "cross owner",
		Status:        models.CampaignStatusDraft,
		TotalContacts: 2,
	}
	campaign.MessageBody.String = "Hello"
	campaign.MessageBody.Valid = true

	err := repo.Create(campaign, []string{mine.ID, theirs.ID})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Rolled back entirely: the campaign must not exist.
	_, err = repo.GetByID("owner-1", campaign.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCampaignRepository_UpdateStatus_Guarded(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewCampaignRepository(db)

	contact := insertTestContact(t, db, "owner-1", "Alice", "+5511990001")
	campaign := insertTestCampaign(t, db, "owner-1", []string{contact.ID})

	// draft -> running succeeds
	ok, err := repo.UpdateStatus(campaign.ID,
		[]models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusScheduled},
		models.CampaignStatusRunning)
	require.NoError(t, err)
	assert.True(t, ok)

	// a second claim from the same source statuses loses
	ok, err = repo.UpdateStatus(campaign.ID,
		[]models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusScheduled},
		models.CampaignStatusRunning)
	require.NoError(t, err)
	assert.False(t, ok)

	// running -> completed succeeds
	ok, err = repo.UpdateStatus(campaign.ID,
		[]models.CampaignStatus{models.CampaignStatusRunning},
		models.CampaignStatusCompleted)
	require.NoError(t, err)
	assert.True(t, ok)

	// terminal status never regresses
	ok, err = repo.UpdateStatus(campaign.ID,
		[]models.CampaignStatus{models.CampaignStatusRunning, models.CampaignStatusScheduled},
		models.CampaignStatusFailed)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID("owner-1", campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusCompleted, got.Status)
}

func TestCampaignRepository_IncrementSentCount_Capped(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewCampaignRepository(db)

	contact := insertTestContact(t, db, "owner-1", "Alice", "+5511990001")
	campaign := insertTestCampaign(t, db, "owner-1", []string{contact.ID})

	require.NoError(t, repo.IncrementSentCount(campaign.ID))
	// The cap holds even when incremented more times than recipients.
	require.NoError(t, repo.IncrementSentCount(campaign.ID))
	require.NoError(t, repo.IncrementSentCount(campaign.ID))

	got, err := repo.GetByID("owner-1", campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SentCount)
	assert.Equal(t, 1, got.TotalContacts)
}

func TestCampaignRepository_ListRunnable(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewCampaignRepository(db)
	now := time.Now()

	contact := insertTestContact(t, db, "owner-1", "Alice", "+5511990001")

	due := insertTestCampaign(t, db, "owner-1", []string{contact.ID})
	_, err := repo.UpdateStatus(due.ID, []models.CampaignStatus{models.CampaignStatusDraft}, models.CampaignStatusScheduled)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE campaigns SET scheduled_at = $2 WHERE id = $1", due.ID, now.Add(-time.Hour))
	require.NoError(t, err)

	future := insertTestCampaign(t, db, "owner-1", []string{contact.ID})
	_, err = repo.UpdateStatus(future.ID, []models.CampaignStatus{models.CampaignStatusDraft}, models.CampaignStatusScheduled)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE campaigns SET scheduled_at = $2 WHERE id = $1", future.ID, now.Add(time.Hour))
	require.NoError(t, err)

	abandoned := insertTestCampaign(t, db, "owner-1", []string{contact.ID})
	_, err = repo.UpdateStatus(abandoned.ID, []models.CampaignStatus{models.CampaignStatusDraft}, models.CampaignStatusRunning)
	require.NoError(t, err)

	insertTestCampaign(t, db, "owner-1", []string{contact.ID}) // stays draft

	runnable, err := repo.ListRunnable(now, 10)
	require.NoError(t, err)
	require.Len(t, runnable, 2)

	ids := []string{runnable[0].ID, runnable[1].ID}
	assert.ElementsMatch(t, []string{due.ID, abandoned.ID}, ids)
}

func TestCampaignRepository_GetByID_ScopedToOwner(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewCampaignRepository(db)

	contact := insertTestContact(t, db, "owner-1", "Alice", "+5511990001")
	campaign := insertTestCampaign(t, db, "owner-1", []string{contact.ID})

	_, err := repo.GetByID("owner-2", campaign.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
