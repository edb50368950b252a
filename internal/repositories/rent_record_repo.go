package repositories

import (
	"context"
	"errors"
	"time"

	"rentdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// HistoryFilter narrows ledger queries. Nil fields are ignored.
type HistoryFilter struct {
	RoomID     *uuid.UUID
	BuildingID *uuid.UUID
	Status     *string
}

type RentRecordRepository interface {
	// CreateUnique inserts a record unless one already exists for the same
	// (room, year, month). Reports whether a row was actually inserted, so a
	// racing duplicate is a benign skip rather than an error.
	CreateUnique(ctx context.Context, record *models.RentRecord) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.RentRecord, error)
	// MarkPaid transitions a not-yet-paid record to paid. Reports whether the
	// record changed; an already-paid record is left untouched.
	MarkPaid(ctx context.Context, id uuid.UUID, paidDate time.Time) (bool, error)
	History(ctx context.Context, filter HistoryFilter, limit, offset int) ([]*models.RentRecord, error)
	CountHistory(ctx context.Context, filter HistoryFilter) (int, error)
	Stats(ctx context.Context, buildingID uuid.UUID, year, month int) (*models.RentStats, error)
	PendingWithinRange(ctx context.Context, buildingID uuid.UUID, from, to time.Time) ([]*models.PendingRentItem, error)
	RecentByRoom(ctx context.Context, roomID uuid.UUID, limit int) ([]*models.RentRecord, error)
	DeleteByRoom(ctx context.Context, roomID uuid.UUID) error
}

type rentRecordRepo struct {
	db DBTX
}

func NewRentRecordRepo(db DBTX) RentRecordRepository {
	return &rentRecordRepo{db: db}
}

const rentRecordColumns = `id, room_id, building_id, room_number, tenant_name, amount, year, month, due_date, paid_date, status, created_at`

func (r *rentRecordRepo) CreateUnique(ctx context.Context, record *models.RentRecord) (bool, error) {
	query := `
		INSERT INTO rent_records (id, room_id, building_id, room_number, tenant_name, amount, year, month, due_date, paid_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (room_id, year, month) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		record.ID, record.RoomID, record.BuildingID, record.RoomNumber, record.TenantName,
		record.Amount, record.Year, record.Month, record.DueDate, record.PaidDate, record.Status,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *rentRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RentRecord, error) {
	query := `SELECT ` + rentRecordColumns + ` FROM rent_records WHERE id = $1`
	record, err := r.scanRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return record, err
}

func (r *rentRecordRepo) MarkPaid(ctx context.Context, id uuid.UUID, paidDate time.Time) (bool, error) {
	query := `
		UPDATE rent_records
		SET status = 'paid', paid_date = $2
		WHERE id = $1 AND status <> 'paid'
	`
	tag, err := r.db.Exec(ctx, query, id, paidDate)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *rentRecordRepo) History(ctx context.Context, filter HistoryFilter, limit, offset int) ([]*models.RentRecord, error) {
	query := `
		SELECT ` + rentRecordColumns + `
		FROM rent_records
		WHERE ($1::uuid IS NULL OR room_id = $1)
			AND ($2::uuid IS NULL OR building_id = $2)
			AND ($3::text IS NULL OR status = $3)
		ORDER BY due_date DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, filter.RoomID, filter.BuildingID, filter.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *rentRecordRepo) CountHistory(ctx context.Context, filter HistoryFilter) (int, error) {
	var total int
	query := `
		SELECT COUNT(*)
		FROM rent_records
		WHERE ($1::uuid IS NULL OR room_id = $1)
			AND ($2::uuid IS NULL OR building_id = $2)
			AND ($3::text IS NULL OR status = $3)
	`
	err := r.db.QueryRow(ctx, query, filter.RoomID, filter.BuildingID, filter.Status).Scan(&total)
	return total, err
}

// Stats aggregates the current period's pending/paid figures. The overdue
// count deliberately spans all periods, not just the requested one.
func (r *rentRecordRepo) Stats(ctx context.Context, buildingID uuid.UUID, year, month int) (*models.RentStats, error) {
	stats := &models.RentStats{}
	query := `
		SELECT
			COUNT(*) FILTER (WHERE year = $2 AND month = $3 AND status IN ('pending', 'overdue')),
			COALESCE(SUM(amount) FILTER (WHERE year = $2 AND month = $3 AND status IN ('pending', 'overdue')), 0),
			COUNT(*) FILTER (WHERE year = $2 AND month = $3 AND status = 'paid'),
			COALESCE(SUM(amount) FILTER (WHERE year = $2 AND month = $3 AND status = 'paid'), 0),
			COUNT(*) FILTER (WHERE status = 'overdue')
		FROM rent_records
		WHERE building_id = $1
	`
	err := r.db.QueryRow(ctx, query, buildingID, year, month).Scan(
		&stats.PendingCount, &stats.PendingAmount, &stats.PaidCount, &stats.PaidAmount, &stats.OverdueCount,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *rentRecordRepo) PendingWithinRange(ctx context.Context, buildingID uuid.UUID, from, to time.Time) ([]*models.PendingRentItem, error) {
	query := `
		SELECT rr.id, rr.room_id, COALESCE(rm.room_number, rr.room_number), COALESCE(rm.room_image, ''),
			COALESCE(NULLIF(rm.tenant_name, ''), rr.tenant_name), rr.amount, rr.due_date, rr.status
		FROM rent_records rr
		LEFT JOIN rooms rm ON rm.id = rr.room_id
		WHERE rr.building_id = $1
			AND rr.status IN ('pending', 'overdue')
			AND rr.due_date >= $2 AND rr.due_date <= $3
		ORDER BY rr.due_date ASC
	`
	rows, err := r.db.Query(ctx, query, buildingID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.PendingRentItem
	for rows.Next() {
		item := &models.PendingRentItem{}
		if err := rows.Scan(&item.RecordID, &item.RoomID, &item.RoomNumber, &item.RoomImage, &item.TenantName, &item.Amount, &item.DueDate, &item.Status); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *rentRecordRepo) RecentByRoom(ctx context.Context, roomID uuid.UUID, limit int) ([]*models.RentRecord, error) {
	query := `
		SELECT ` + rentRecordColumns + `
		FROM rent_records
		WHERE room_id = $1
		ORDER BY due_date DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *rentRecordRepo) DeleteByRoom(ctx context.Context, roomID uuid.UUID) error {
	query := `DELETE FROM rent_records WHERE room_id = $1`
	_, err := r.db.Exec(ctx, query, roomID)
	return err
}

func (r *rentRecordRepo) scanRecord(row pgx.Row) (*models.RentRecord, error) {
	record := &models.RentRecord{}
	err := row.Scan(
		&record.ID, &record.RoomID, &record.BuildingID, &record.RoomNumber, &record.TenantName,
		&record.Amount, &record.Year, &record.Month, &record.DueDate, &record.PaidDate, &record.Status, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *rentRecordRepo) collect(rows pgx.Rows) ([]*models.RentRecord, error) {
	var records []*models.RentRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
