package models

import (
	"time"

	"github.com/google/uuid"
)

// Rent record lifecycle. Paid is terminal; a record never leaves it.
const (
	RentStatusPending = "pending"
	RentStatusOverdue = "overdue"
	RentStatusPaid    = "paid"
)

// RentRecord is one rent obligation for one room for one (year, month) billing
// period. Room number and tenant name are snapshots taken at generation time.
type RentRecord struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	RoomID     uuid.UUID  `json:"room_id" db:"room_id"`
	BuildingID uuid.UUID  `json:"building_id" db:"building_id"`
	RoomNumber string     `json:"room_number" db:"room_number"`
	TenantName string     `json:"tenant_name" db:"tenant_name"`
	Amount     float64    `json:"amount" db:"amount"`
	Year       int        `json:"year" db:"year"`
	Month      int        `json:"month" db:"month"`
	DueDate    time.Time  `json:"due_date" db:"due_date"`
	PaidDate   *time.Time `json:"paid_date" db:"paid_date"`
	Status     string     `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// RentStats summarizes a building's ledger. Pending and paid figures cover the
// requested billing period; OverdueCount counts overdue records across all
// periods.
type RentStats struct {
	PendingCount  int     `json:"pending_count"`
	PendingAmount float64 `json:"pending_amount"`
	PaidCount     int     `json:"paid_count"`
	PaidAmount    float64 `json:"paid_amount"`
	OverdueCount  int     `json:"overdue_count"`
}

// PendingRentItem is a ledger row joined with live room info, used for the
// "due within seven days" listing.
type PendingRentItem struct {
	RecordID   uuid.UUID `json:"record_id"`
	RoomID     uuid.UUID `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	RoomImage  string    `json:"room_image"`
	TenantName string    `json:"tenant_name"`
	Amount     float64   `json:"amount"`
	DueDate    time.Time `json:"due_date"`
	Status     string    `json:"status"`
}
