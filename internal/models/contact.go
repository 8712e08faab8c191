// Package models defines data structures used throughout the application.
package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type ContactStatus string

const (
	ContactStatusLead     ContactStatus = "lead"
	ContactStatusProspect ContactStatus = "prospect"
	ContactStatusCustomer ContactStatus = "customer"
	ContactStatusOther    ContactStatus = "other"
)

// Stage is a named position in the sales funnel a contact occupies.
type Stage string

const (
	StageNew         Stage = "new"
	StageContacted   Stage = "contacted"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageClosed      Stage = "closed"
)

// Stages lists all pipeline stages in funnel order.
func Stages() []Stage {
	return []Stage{
		StageNew,
		StageContacted,
		StageQualified,
		StageProposal,
		StageNegotiation,
		StageClosed,
	}
}

// Contact represents a contact record in the database.
type Contact struct {
	ID        string         `db:"id" json:"id"`
	OwnerID   string         `db:"owner_id" json:"owner_id"`
	Name      string         `db:"name" json:"name"`
	Phone     string         `db:"phone" json:"phone"`
	Email     sql.NullString `db:"email" json:"email,omitempty"`
	Tags      pq.StringArray `db:"tags" json:"tags"`
	Status    ContactStatus  `db:"status" json:"status"`
	Stage     Stage          `db:"stage" json:"stage"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// OwnerProfile holds the attendant and department configuration used to
// resolve the signature block for an owner's outbound messages.
type OwnerProfile struct {
	OwnerID        string    `db:"owner_id" json:"owner_id"`
	AttendantName  string    `db:"attendant_name" json:"attendant_name"`
	DepartmentName string    `db:"department_name" json:"department_name"`
	Signature      string    `db:"signature" json:"signature"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
