// Package repository implements Postgres-backed storage for the CRM core.
package repository

import "errors"

var (
	// ErrNotFound is returned when a record is absent or owned by another
	// account.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint, e.g. a contact phone already registered for the owner.
	ErrDuplicate = errors.New("record already exists")
)
