package models

import (
	"time"

	"github.com/google/uuid"
)

// OtpCode is a one-time login code for a phone number. Rows are append-only:
// the only mutation ever applied is flipping Used to true on successful
// verification. Superseded codes are kept, not deleted.
type OtpCode struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Phone     string    `json:"phone" db:"phone"`
	Code      string    `json:"code" db:"code"`
	Used      bool      `json:"used" db:"used"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
