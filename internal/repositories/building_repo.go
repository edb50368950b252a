package repositories

import (
	"context"
	"errors"

	"rentdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BuildingRepository interface {
	Create(ctx context.Context, building *models.Building) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error)
	Update(ctx context.Context, id uuid.UUID, name, address *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Building, error)
	// AdjustRoomCount applies a delta to the denormalized room counter and
	// returns the resulting value so callers can notice drift below zero.
	AdjustRoomCount(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

type buildingRepo struct {
	db DBTX
}

func NewBuildingRepo(db DBTX) BuildingRepository {
	return &buildingRepo{db: db}
}

const buildingColumns = `id, name, address, owner_id, room_count, created_at, updated_at`

func (r *buildingRepo) Create(ctx context.Context, building *models.Building) error {
	query := `
		INSERT INTO buildings (id, name, address, owner_id, room_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, building.ID, building.Name, building.Address, building.OwnerID, building.RoomCount)
	return err
}

func (r *buildingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	building := &models.Building{}
	query := `SELECT ` + buildingColumns + ` FROM buildings WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&building.ID, &building.Name, &building.Address, &building.OwnerID, &building.RoomCount, &building.CreatedAt, &building.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return building, nil
}

func (r *buildingRepo) Update(ctx context.Context, id uuid.UUID, name, address *string) error {
	query := `
		UPDATE buildings
		SET name = COALESCE($2, name), address = COALESCE($3, address), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, name, address)
	return err
}

func (r *buildingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM buildings WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *buildingRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Building, error) {
	query := `
		SELECT ` + buildingColumns + `
		FROM buildings
		WHERE id = ANY($1)
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buildings []*models.Building
	for rows.Next() {
		building := &models.Building{}
		if err := rows.Scan(&building.ID, &building.Name, &building.Address, &building.OwnerID, &building.RoomCount, &building.CreatedAt, &building.UpdatedAt); err != nil {
			return nil, err
		}
		buildings = append(buildings, building)
	}
	return buildings, rows.Err()
}

func (r *buildingRepo) AdjustRoomCount(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	var count int
	query := `
		UPDATE buildings
		SET room_count = room_count + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING room_count
	`
	if err := r.db.QueryRow(ctx, query, id, delta).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
