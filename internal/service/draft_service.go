package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/draft"
	"github.com/atendo/crm-campaigns/internal/repository"
)

type draftService struct {
	registry *draft.Registry
	repo     repository.Repository
	logger   *zap.Logger
}

func NewDraftService(
	registry *draft.Registry,
	repo repository.Repository,
	logger *zap.Logger,
) DraftService {
	return &draftService{
		registry: registry,
		repo:     repo,
		logger:   logger,
	}
}

// Generate produces a message draft through the named provider, signed
// with the owner's configured signature block.
func (s *draftService) Generate(ctx context.Context, ownerID, providerID, prompt string) (string, error) {
	var sc draft.SigningContext

	profile, err := s.repo.Profile().Get(ownerID)
	switch {
	case err == nil:
		sc = draft.SigningContext{
			AttendantName:  profile.AttendantName,
			DepartmentName: profile.DepartmentName,
			Signature:      profile.Signature,
		}
	case errors.Is(err, repository.ErrNotFound):
		// No profile configured yet, draft goes out unsigned.
	default:
		return "", fmt.Errorf("failed to load owner profile: %w", err)
	}

	text, err := s.registry.Generate(ctx, providerID, prompt, sc)
	if err != nil {
		return "", err
	}

	s.logger.Info("Draft generated",
		zap.String("ownerID", ownerID),
		zap.String("provider", providerID))

	return text, nil
}

// Providers lists the registered draft provider ids.
func (s *draftService) Providers() []string {
	return s.registry.ProviderIDs()
}
