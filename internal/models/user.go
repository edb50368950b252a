package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	ExternalID      *string     `json:"-" db:"external_id"` // linked external identity, never serialized
	Phone           *string     `json:"phone" db:"phone"`
	Nickname        string      `json:"nickname" db:"nickname"`
	Avatar          string      `json:"avatar" db:"avatar"`
	Buildings       []uuid.UUID `json:"buildings" db:"buildings"`
	CurrentBuilding *uuid.UUID  `json:"current_building" db:"current_building"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// UserInfo is the profile shape returned to clients. The phone number is
// partially masked before it leaves the service.
type UserInfo struct {
	ID              uuid.UUID   `json:"id"`
	Phone           string      `json:"phone"`
	Nickname        string      `json:"nickname"`
	Avatar          string      `json:"avatar"`
	Buildings       []uuid.UUID `json:"buildings"`
	CurrentBuilding *uuid.UUID  `json:"current_building"`
}
