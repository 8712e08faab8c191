// Package service provides business logic implementation for the application.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that a referenced entity is missing or owned by
	// another account.
	ErrNotFound = errors.New("not found")

	// ErrExecutorFault signals an infrastructure-level failure before any
	// recipient was processed. The campaign is moved to failed and may be
	// re-triggered later.
	ErrExecutorFault = errors.New("executor fault")

	// ErrCampaignNotTriggerable is returned when a campaign is not in a
	// status that allows starting execution.
	ErrCampaignNotTriggerable = errors.New("campaign cannot be triggered in its current status")

	// ErrCampaignNotCancellable is returned when a campaign is not in a
	// status that allows cancellation.
	ErrCampaignNotCancellable = errors.New("campaign cannot be cancelled in its current status")
)

// ValidationError reports bad input. It is surfaced to the caller
// immediately and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
