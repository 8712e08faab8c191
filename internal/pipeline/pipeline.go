// Package pipeline validates and applies sales stage transitions on
// contact records.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/models"
)

// Directory is the contact store the machine records transitions against.
type Directory interface {
	UpdateStage(ownerID, contactID string, stage models.Stage) error
}

// Machine applies stage transitions. Any stage is reachable from any
// other, so the only validation is that the target is a recognized stage;
// transitioning a contact to its current stage is a successful no-op.
// Concurrent transitions on the same contact are last-writer-wins.
type Machine struct {
	dir    Directory
	stages map[models.Stage]struct{}
	logger *zap.Logger
}

func NewMachine(dir Directory, logger *zap.Logger) *Machine {
	stages := make(map[models.Stage]struct{})
	for _, s := range models.Stages() {
		stages[s] = struct{}{}
	}

	return &Machine{
		dir:    dir,
		stages: stages,
		logger: logger,
	}
}

// Valid reports whether s is a recognized pipeline stage.
func (m *Machine) Valid(s models.Stage) bool {
	_, ok := m.stages[s]
	return ok
}

// Transition moves the contact to the target stage. It fails with
// ErrUnknownStage for unrecognized stages, leaving the contact untouched.
func (m *Machine) Transition(ownerID, contactID string, target models.Stage) error {
	if !m.Valid(target) {
		return fmt.Errorf("%w: %q", ErrUnknownStage, target)
	}

	if err := m.dir.UpdateStage(ownerID, contactID, target); err != nil {
		return fmt.Errorf("failed to record stage transition: %w", err)
	}

	m.logger.Info("Contact stage transitioned",
		zap.String("contactID", contactID),
		zap.String("stage", string(target)))

	return nil
}
