// Package draft provides the pluggable AI draft generation capability. A
// registry maps provider ids to Provider implementations; generated drafts
// come back with the resolved signature already embedded so the caller can
// edit and send them as-is.
package draft

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/signature"
)

// SigningContext carries the attendant configuration used to close a
// generated draft.
type SigningContext struct {
	AttendantName  string
	DepartmentName string
	Signature      string
}

// Provider turns a prompt into suggested message text. One implementation
// is registered per provider id.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Registry holds the registered draft providers. It never writes to
// persistent storage; generation is a best-effort assistive step with no
// effect on campaign or contact state.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	logger    *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger,
	}
}

// Register adds or replaces the provider for the given id.
func (r *Registry) Register(id string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[id] = p
}

// ProviderIDs returns the registered provider ids.
func (r *Registry) ProviderIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}

// Generate produces draft text through the provider registered under
// providerID and appends the resolved signature. It fails with
// ErrUnknownProvider for unregistered ids and ErrEmptyPrompt for blank
// prompts.
func (r *Registry) Generate(ctx context.Context, providerID, prompt string, sc SigningContext) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	r.mu.RLock()
	provider, ok := r.providers[providerID]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, providerID)
	}

	text, err := provider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("provider %s failed to generate draft: %w", providerID, err)
	}

	sig := signature.Resolve(sc.AttendantName, sc.DepartmentName, sc.Signature)

	r.logger.Info("Draft generated",
		zap.String("provider", providerID),
		zap.Int("length", len(text)))

	return signature.Append(text, sig), nil
}
