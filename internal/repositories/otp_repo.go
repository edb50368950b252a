package repositories

import (
	"context"
	"errors"
	"time"

	"rentdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OtpRepository interface {
	Create(ctx context.Context, code *models.OtpCode) error
	// CountRecentByPhone counts codes issued for a phone since the given
	// instant; the issue flow uses it for the 60-second window.
	CountRecentByPhone(ctx context.Context, phone string, since time.Time) (int, error)
	// LatestUnused returns the most recent unused code row matching
	// (phone, code), or nil when none exists.
	LatestUnused(ctx context.Context, phone, code string) (*models.OtpCode, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
}

type otpRepo struct {
	db DBTX
}

func NewOtpRepo(db DBTX) OtpRepository {
	return &otpRepo{db: db}
}

func (r *otpRepo) Create(ctx context.Context, code *models.OtpCode) error {
	query := `
		INSERT INTO sms_codes (id, phone, code, used, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, code.ID, code.Phone, code.Code, code.Used)
	return err
}

func (r *otpRepo) CountRecentByPhone(ctx context.Context, phone string, since time.Time) (int, error) {
	var total int
	query := `SELECT COUNT(*) FROM sms_codes WHERE phone = $1 AND created_at >= $2`
	err := r.db.QueryRow(ctx, query, phone, since).Scan(&total)
	return total, err
}

func (r *otpRepo) LatestUnused(ctx context.Context, phone, code string) (*models.OtpCode, error) {
	record := &models.OtpCode{}
	query := `
		SELECT id, phone, code, used, created_at
		FROM sms_codes
		WHERE phone = $1 AND code = $2 AND used = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, phone, code).Scan(&record.ID, &record.Phone, &record.Code, &record.Used, &record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *otpRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE sms_codes SET used = TRUE WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
