package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/pipeline"
	"github.com/atendo/crm-campaigns/internal/repository"
)

type contactService struct {
	repo    repository.Repository
	machine *pipeline.Machine
	logger  *zap.Logger
}

func NewContactService(
	repo repository.Repository,
	machine *pipeline.Machine,
	logger *zap.Logger,
) ContactService {
	return &contactService{
		repo:    repo,
		machine: machine,
		logger:  logger,
	}
}

func (s *contactService) Create(ownerID string, input CreateContactInput) (*models.Contact, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, NewValidationError("phone", "must not be empty")
	}

	status := input.Status
	if status == "" {
		status = models.ContactStatusLead
	}
	if !validContactStatus(status) {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}

	stage := input.Stage
	if stage == "" {
		stage = models.StageNew
	}
	if !s.machine.Valid(stage) {
		return nil, NewValidationError("stage", fmt.Sprintf("unknown stage %q", stage))
	}

	contact := &models.Contact{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Name:    strings.TrimSpace(input.Name),
		Phone:   strings.TrimSpace(input.Phone),
		Tags:    pq.StringArray(input.Tags),
		Status:  status,
		Stage:   stage,
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		contact.Email = sql.NullString{String: email, Valid: true}
	}
	if contact.Tags == nil {
		contact.Tags = pq.StringArray{}
	}

	if err := s.repo.Contact().Create(contact); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewValidationError("phone", "a contact with this phone already exists")
		}
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logger.Info("Contact created",
		zap.String("contactID", contact.ID),
		zap.String("ownerID", ownerID),
		zap.String("stage", string(contact.Stage)))

	return contact, nil
}

func (s *contactService) Get(ownerID, contactID string) (*models.Contact, error) {
	contact, err := s.repo.Contact().GetByID(ownerID, contactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) List(ownerID string) ([]*models.Contact, error) {
	contacts, err := s.repo.Contact().List(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (s *contactService) Update(ownerID, contactID string, input UpdateContactInput) (*models.Contact, error) {
	contact, err := s.Get(ownerID, contactID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		contact.Name = name
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		contact.Phone = phone
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		contact.Email = sql.NullString{String: email, Valid: true}
	}
	if input.Tags != nil {
		contact.Tags = pq.StringArray(input.Tags)
	}
	if input.Status != "" {
		if !validContactStatus(input.Status) {
			return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", input.Status))
		}
		contact.Status = input.Status
	}
	contact.UpdatedAt = time.Now()

	if err := s.repo.Contact().Update(contact); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewValidationError("phone", "a contact with this phone already exists")
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return contact, nil
}

func (s *contactService) TransitionStage(ownerID, contactID string, stage models.Stage) error {
	err := s.machine.Transition(ownerID, contactID, stage)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("contact %s: %w", contactID, ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *contactService) StageBoard(ownerID string) (map[models.Stage]int, error) {
	counts, err := s.repo.Contact().CountByStage(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts by stage: %w", err)
	}
	return counts, nil
}

func validContactStatus(status models.ContactStatus) bool {
	switch status {
	case models.ContactStatusLead, models.ContactStatusProspect,
		models.ContactStatusCustomer, models.ContactStatusOther:
		return true
	}
	return false
}
