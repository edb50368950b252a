package repositories

import (
	"context"
	"errors"

	"rentdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByBuilding(ctx context.Context, buildingID uuid.UUID, limit, offset int) ([]*models.Room, error)
	CountByBuilding(ctx context.Context, buildingID uuid.UUID) (int, error)
	CountByNumber(ctx context.Context, buildingID uuid.UUID, roomNumber string) (int, error)
	// ListRented returns every occupied room, optionally scoped to one building.
	ListRented(ctx context.Context, buildingID *uuid.UUID) ([]*models.Room, error)
	UpdateImage(ctx context.Context, id uuid.UUID, objectName string) error
}

type roomRepo struct {
	db DBTX
}

func NewRoomRepo(db DBTX) RoomRepository {
	return &roomRepo{db: db}
}

const roomColumns = `id, building_id, room_number, room_image, area, monthly_rent, status,
		tenant_name, tenant_phone, tenant_id_card, lease_start, lease_end, pay_day, deposit,
		created_at, updated_at`

func (r *roomRepo) scanRoom(row pgx.Row) (*models.Room, error) {
	room := &models.Room{}
	err := row.Scan(
		&room.ID, &room.BuildingID, &room.RoomNumber, &room.RoomImage, &room.Area, &room.MonthlyRent, &room.Status,
		&room.Tenant.Name, &room.Tenant.Phone, &room.Tenant.IDCard,
		&room.LeaseInfo.StartDate, &room.LeaseInfo.EndDate, &room.LeaseInfo.PayDay, &room.LeaseInfo.Deposit,
		&room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (id, building_id, room_number, room_image, area, monthly_rent, status,
			tenant_name, tenant_phone, tenant_id_card, lease_start, lease_end, pay_day, deposit,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		room.ID, room.BuildingID, room.RoomNumber, room.RoomImage, room.Area, room.MonthlyRent, room.Status,
		room.Tenant.Name, room.Tenant.Phone, room.Tenant.IDCard,
		room.LeaseInfo.StartDate, room.LeaseInfo.EndDate, room.LeaseInfo.PayDay, room.LeaseInfo.Deposit,
	)
	return err
}

func (r *roomRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	room, err := r.scanRoom(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return room, err
}

func (r *roomRepo) Update(ctx context.Context, room *models.Room) error {
	query := `
		UPDATE rooms
		SET room_number = $2, room_image = $3, area = $4, monthly_rent = $5, status = $6,
			tenant_name = $7, tenant_phone = $8, tenant_id_card = $9,
			lease_start = $10, lease_end = $11, pay_day = $12, deposit = $13, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query,
		room.ID, room.RoomNumber, room.RoomImage, room.Area, room.MonthlyRent, room.Status,
		room.Tenant.Name, room.Tenant.Phone, room.Tenant.IDCard,
		room.LeaseInfo.StartDate, room.LeaseInfo.EndDate, room.LeaseInfo.PayDay, room.LeaseInfo.Deposit,
	)
	return err
}

func (r *roomRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM rooms WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *roomRepo) ListByBuilding(ctx context.Context, buildingID uuid.UUID, limit, offset int) ([]*models.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE building_id = $1
		ORDER BY room_number ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, buildingID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *roomRepo) CountByBuilding(ctx context.Context, buildingID uuid.UUID) (int, error) {
	var total int
	query := `SELECT COUNT(*) FROM rooms WHERE building_id = $1`
	err := r.db.QueryRow(ctx, query, buildingID).Scan(&total)
	return total, err
}

func (r *roomRepo) CountByNumber(ctx context.Context, buildingID uuid.UUID, roomNumber string) (int, error) {
	var total int
	query := `SELECT COUNT(*) FROM rooms WHERE building_id = $1 AND room_number = $2`
	err := r.db.QueryRow(ctx, query, buildingID, roomNumber).Scan(&total)
	return total, err
}

func (r *roomRepo) ListRented(ctx context.Context, buildingID *uuid.UUID) ([]*models.Room, error) {
	query := `
		SELECT ` + roomColumns + `
		FROM rooms
		WHERE status = 'rented' AND ($1::uuid IS NULL OR building_id = $1)
		ORDER BY room_number ASC
	`
	rows, err := r.db.Query(ctx, query, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *roomRepo) UpdateImage(ctx context.Context, id uuid.UUID, objectName string) error {
	query := `UPDATE rooms SET room_image = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, objectName)
	return err
}

func (r *roomRepo) collect(rows pgx.Rows) ([]*models.Room, error) {
	var rooms []*models.Room
	for rows.Next() {
		room, err := r.scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}
