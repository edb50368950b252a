package models

import (
	"time"

	"github.com/google/uuid"
)

type Building struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	OwnerID   uuid.UUID `json:"owner_id" db:"owner_id"`
	RoomCount int       `json:"room_count" db:"room_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
