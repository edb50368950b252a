package repositories

import (
	"context"
	"errors"

	"rentdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, nickname, avatar *string) error
	UpdateMembership(ctx context.Context, id uuid.UUID, buildings []uuid.UUID, currentBuilding *uuid.UUID) error
	SetCurrentBuilding(ctx context.Context, id, buildingID uuid.UUID) error
}

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, external_id, phone, nickname, avatar, buildings, current_building, created_at, updated_at`

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, external_id, phone, nickname, avatar, buildings, current_building, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.ExternalID, user.Phone, user.Nickname, user.Avatar, user.Buildings, user.CurrentBuilding)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, phone))
}

func (r *userRepo) scanOne(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.ExternalID, &user.Phone, &user.Nickname, &user.Avatar, &user.Buildings, &user.CurrentBuilding, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id uuid.UUID, nickname, avatar *string) error {
	query := `
		UPDATE users
		SET nickname = COALESCE($2, nickname), avatar = COALESCE($3, avatar), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, nickname, avatar)
	return err
}

func (r *userRepo) UpdateMembership(ctx context.Context, id uuid.UUID, buildings []uuid.UUID, currentBuilding *uuid.UUID) error {
	query := `
		UPDATE users
		SET buildings = $2, current_building = $3, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, buildings, currentBuilding)
	return err
}

func (r *userRepo) SetCurrentBuilding(ctx context.Context, id, buildingID uuid.UUID) error {
	query := `
		UPDATE users
		SET current_building = $2, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, buildingID)
	return err
}
