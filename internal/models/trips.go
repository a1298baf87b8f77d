package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type Trip struct {
	ID             int             `json:"id,omitempty" db:"id,omitempty"`
	Title          string          `json:"title,omitempty" db:"title,omitempty"`
	Description    string          `json:"description,omitempty" db:"description,omitempty"`
	Destination    string          `json:"destination,omitempty" db:"destination,omitempty"`
	StartDate      sql.NullString  `json:"start_date,omitempty" db:"start_date,omitempty"`
	EndDate        sql.NullString  `json:"end_date,omitempty" db:"end_date,omitempty"`
	BudgetTotal    decimal.Decimal `json:"budget_total,omitempty" db:"budget_total,omitempty"`
	BudgetCurrency string          `json:"budget_currency,omitempty" db:"budget_currency,omitempty"`
	OwnerID        int             `json:"owner_id,omitempty" db:"owner_id,omitempty"`
	IsDeleted      bool            `json:"is_deleted,omitempty" db:"is_deleted,omitempty"`
	DeletedAt      sql.NullString  `json:"deleted_at,omitempty" db:"deleted_at,omitempty"`
	CreatedAt      sql.NullString  `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt      sql.NullString  `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

// Collaborator invitation lifecycle.
const (
	CollaboratorPending  = "pending"
	CollaboratorAccepted = "accepted"
	CollaboratorDeclined = "declined"
	CollaboratorRevoked  = "revoked"
	CollaboratorExpired  = "expired"
)

type TripCollaborator struct {
	ID          int            `json:"id,omitempty" db:"id,omitempty"`
	TripID      int            `json:"trip_id,omitempty" db:"trip_id,omitempty"`
	UserID      int            `json:"user_id,omitempty" db:"user_id,omitempty"`
	Role        string         `json:"role,omitempty" db:"role,omitempty"`
	Status      string         `json:"status,omitempty" db:"status,omitempty"`
	TokenCode   string         `json:"token_code,omitempty" db:"token_code,omitempty"`
	ExpiresAt   sql.NullString `json:"expires_at,omitempty" db:"expires_at,omitempty"`
	InvitedAt   sql.NullString `json:"invited_at,omitempty" db:"invited_at,omitempty"`
	RespondedAt sql.NullString `json:"responded_at,omitempty" db:"responded_at,omitempty"`
}
