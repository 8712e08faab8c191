package repository

import (
	"time"

	"github.com/atendo/crm-campaigns/internal/models"
)

// Repository interface defines all repository operations.
type Repository interface {
	// Ping checks database connectivity
	Ping() error

	Contact() ContactRepository
	Template() TemplateRepository
	Campaign() CampaignRepository
	Delivery() DeliveryRepository
	Profile() ProfileRepository
}

// ContactRepository owns contact records and their pipeline stage.
type ContactRepository interface {
	Create(contact *models.Contact) error
	GetByID(ownerID, id string) (*models.Contact, error)
	List(ownerID string) ([]*models.Contact, error)
	Update(contact *models.Contact) error
	UpdateStage(ownerID, id string, stage models.Stage) error
	CountByStage(ownerID string) (map[models.Stage]int, error)
}

// TemplateRepository stores reusable message bodies.
type TemplateRepository interface {
	Create(tpl *models.MessageTemplate) error
	GetByID(ownerID, id string) (*models.MessageTemplate, error)
	List(ownerID string) ([]*models.MessageTemplate, error)
}

// CampaignRepository persists campaigns and their recipient snapshots.
type CampaignRepository interface {
	// Create persists the campaign and snapshots the recipient set in one
	// transaction. Fails with ErrNotFound when a contact id does not
	// resolve inside the owner's directory.
	Create(campaign *models.Campaign, contactIDs []string) error
	GetByID(ownerID, id string) (*models.Campaign, error)
	List(ownerID string) ([]*models.Campaign, error)
	// ListRunnable returns campaigns an execution pass should pick up:
	// scheduled ones that are due, plus running ones left over from an
	// interrupted pass.
	ListRunnable(now time.Time, limit int) ([]*models.Campaign, error)
	// UpdateStatus transitions status only when the current status is one
	// of from, reporting whether the guarded write took effect. Terminal
	// statuses never regress because they are never listed as a source.
	UpdateStatus(id string, from []models.CampaignStatus, to models.CampaignStatus) (bool, error)
	// IncrementSentCount bumps sent_count, capped at total_contacts.
	IncrementSentCount(id string) error
	Recipients(campaignID string) ([]*models.Contact, error)
}

// DeliveryRepository is the per-recipient delivery ledger.
type DeliveryRepository interface {
	// InsertIfAbsent records the outcome unless a record for the
	// (campaign, contact) pair already exists, reporting whether the row
	// was inserted.
	InsertIfAbsent(rec *models.DeliveryRecord) (bool, error)
	ListByCampaign(campaignID string) ([]*models.DeliveryRecord, error)
	CountByOutcome(campaignID string) (map[models.DeliveryOutcome]int, error)
}

// ProfileRepository stores the attendant/department signature
// configuration per owner.
type ProfileRepository interface {
	Get(ownerID string) (*models.OwnerProfile, error)
	Upsert(profile *models.OwnerProfile) error
}
