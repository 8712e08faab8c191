package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/repository"
)

func insertTestTemplate(t *testing.T, repo repository.TemplateRepository, ownerID, name string) *models.MessageTemplate {
	t.Helper()

	tpl := &models.MessageTemplate{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Name:    name,
		Body:    "Hello {name}",
	}
	require.NoError(t, repo.Create(tpl))
	return tpl
}

func TestTemplateRepository_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := repository.NewTemplateRepository(db)

	tpl := insertTestTemplate(t, repo, "owner-1", "Welcome")

	got, err := repo.GetByID("owner-1", tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, got.ID)
	assert.Equal(t, "Welcome", got.Name)
	assert.Equal(t, "Hello {name}", got.Body)
	assert.False(t, got.Category.Valid)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestTemplateRepository_GetByID_ScopedToOwner(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := repository.NewTemplateRepository(db)

	tpl := insertTestTemplate(t, repo, "owner-1", "Welcome")

	_, err := repo.GetByID("owner-2", tpl.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByID("owner-1", uuid.New().String())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTemplateRepository_List_NewestFirst(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := repository.NewTemplateRepository(db)

	first := insertTestTemplate(t, repo, "owner-1", "Welcome")
	time.Sleep(20 * time.Millisecond)
	second := insertTestTemplate(t, repo, "owner-1", "Follow up")

	insertTestTemplate(t, repo, "owner-2", "Elsewhere")

	templates, err := repo.List("owner-1")
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, second.ID, templates[0].ID)
	assert.Equal(t, first.ID, templates[1].ID)
}
