package models

import (
	"database/sql"
	"time"
)

// MessageTemplate is a named, reusable message body. The body may contain
// personalization placeholders such as {name} and {phone} that are
// substituted per recipient at send time.
type MessageTemplate struct {
	ID        string         `db:"id" json:"id"`
	OwnerID   string         `db:"owner_id" json:"owner_id"`
	Name      string         `db:"name" json:"name"`
	Body      string         `db:"body" json:"body"`
	Category  sql.NullString `db:"category" json:"category,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
