package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/repository"
)

type templateService struct {
	repo   repository.Repository
	logger *zap.Logger
}

func NewTemplateService(repo repository.Repository, logger *zap.Logger) TemplateService {
	return &templateService{
		repo:   repo,
		logger: logger,
	}
}

func (s *templateService) Create(ownerID string, input CreateTemplateInput) (*models.MessageTemplate, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, NewValidationError("name", "must not be empty")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, NewValidationError("body", "must not be empty")
	}

	tpl := &models.MessageTemplate{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Name:    strings.TrimSpace(input.Name),
		Body:    input.Body,
	}
	if category := strings.TrimSpace(input.Category); category != "" {
		tpl.Category = sql.NullString{String: category, Valid: true}
	}

	if err := s.repo.Template().Create(tpl); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	s.logger.Info("Template created",
		zap.String("templateID", tpl.ID),
		zap.String("ownerID", ownerID))

	return tpl, nil
}

func (s *templateService) Get(ownerID, templateID string) (*models.MessageTemplate, error) {
	tpl, err := s.repo.Template().GetByID(ownerID, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("template %s: %w", templateID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return tpl, nil
}

func (s *templateService) List(ownerID string) ([]*models.MessageTemplate, error) {
	templates, err := s.repo.Template().List(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}
