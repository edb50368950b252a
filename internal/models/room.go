package models

import (
	"time"

	"github.com/google/uuid"
)

// Room occupancy statuses. A room is rented iff its tenant name is non-empty;
// OccupancyFor keeps that derivation in one place.
const (
	RoomStatusEmpty  = "empty"
	RoomStatusRented = "rented"
)

type Tenant struct {
	Name   string `json:"name" db:"tenant_name"`
	Phone  string `json:"phone" db:"tenant_phone"`
	IDCard string `json:"id_card" db:"tenant_id_card"`
}

type LeaseInfo struct {
	StartDate string  `json:"start_date" db:"lease_start"`
	EndDate   string  `json:"end_date" db:"lease_end"`
	PayDay    int     `json:"pay_day" db:"pay_day"`
	Deposit   float64 `json:"deposit" db:"deposit"`
}

type Room struct {
	ID          uuid.UUID `json:"id" db:"id"`
	BuildingID  uuid.UUID `json:"building_id" db:"building_id"`
	RoomNumber  string    `json:"room_number" db:"room_number"`
	RoomImage   string    `json:"room_image" db:"room_image"`
	Area        float64   `json:"area" db:"area"`
	MonthlyRent float64   `json:"monthly_rent" db:"monthly_rent"`
	Status      string    `json:"status" db:"status"`
	Tenant      Tenant    `json:"tenant"`
	LeaseInfo   LeaseInfo `json:"lease_info"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// OccupancyFor derives the room status from tenant presence.
func OccupancyFor(tenantName string) string {
	if tenantName != "" {
		return RoomStatusRented
	}
	return RoomStatusEmpty
}
