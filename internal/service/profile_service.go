package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/models"
	"github.com/atendo/crm-campaigns/internal/repository"
)

type profileService struct {
	repo   repository.Repository
	logger *zap.Logger
}

func NewProfileService(repo repository.Repository, logger *zap.Logger) ProfileService {
	return &profileService{
		repo:   repo,
		logger: logger,
	}
}

// Get returns the owner's signature profile. Owners who never configured
// one get an empty profile instead of an error.
func (s *profileService) Get(ownerID string) (*models.OwnerProfile, error) {
	profile, err := s.repo.Profile().Get(ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &models.OwnerProfile{OwnerID: ownerID}, nil
		}
		return nil, fmt.Errorf("failed to get owner profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) Update(ownerID string, input UpdateProfileInput) (*models.OwnerProfile, error) {
	profile := &models.OwnerProfile{
		OwnerID:        ownerID,
		AttendantName:  strings.TrimSpace(input.AttendantName),
		DepartmentName: strings.TrimSpace(input.DepartmentName),
		Signature:      strings.TrimSpace(input.Signature),
		UpdatedAt:      time.Now(),
	}

	if err := s.repo.Profile().Upsert(profile); err != nil {
		return nil, fmt.Errorf("failed to update owner profile: %w", err)
	}

	s.logger.Info("Owner profile updated", zap.String("ownerID", ownerID))

	return profile, nil
}
