package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rentdesk/internal/caching"
	"rentdesk/internal/common"
	"rentdesk/internal/models"
	"rentdesk/internal/repositories"

	"github.com/google/uuid"
)

const statsCacheTTL = 5 * time.Minute

// Period identifies one monthly billing cycle.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// CurrentPeriod derives the billing period from a point in time.
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: int(now.Month())}
}

// ClassifyRentStatus derives a record's lifecycle state. Paid wins
// unconditionally; otherwise the due date is compared to now by calendar day,
// ignoring time of day.
func ClassifyRentStatus(dueDate, now time.Time, paid bool) string {
	if paid {
		return models.RentStatusPaid
	}
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if due.Before(today) {
		return models.RentStatusOverdue
	}
	return models.RentStatusPending
}

// DueDateFor places the lease pay day inside the billing period, clamped to a
// day that exists in that month.
func DueDateFor(period Period, payDay int) time.Time {
	if payDay < 1 {
		payDay = 1
	}
	lastDay := time.Date(period.Year, time.Month(period.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if payDay > lastDay {
		payDay = lastDay
	}
	return time.Date(period.Year, time.Month(period.Month), payDay, 0, 0, 0, 0, time.UTC)
}

// HistoryPage is one page of ledger records.
type HistoryPage struct {
	List     []*models.RentRecord `json:"list"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

// HistoryQuery are the optional filters accepted by History.
type HistoryQuery struct {
	RoomID     *uuid.UUID
	BuildingID *uuid.UUID
	Status     *string
	Page       int
	PageSize   int
}

type LedgerService interface {
	// GenerateMonthly emits one rent record per occupied room for the period,
	// skipping rooms already billed. Safe to invoke repeatedly.
	GenerateMonthly(ctx context.Context, period Period, buildingID *uuid.UUID) (int, error)
	MarkPaid(ctx context.Context, recordID uuid.UUID) error
	Record(ctx context.Context, recordID uuid.UUID) (*models.RentRecord, error)
	Stats(ctx context.Context, buildingID uuid.UUID) (*models.RentStats, error)
	History(ctx context.Context, query HistoryQuery) (*HistoryPage, error)
	PendingWithinWeek(ctx context.Context, buildingID uuid.UUID) ([]*models.PendingRentItem, error)
}

type ledgerService struct {
	records  repositories.RentRecordRepository
	rooms    repositories.RoomRepository
	cacheSvc caching.CacheService
	now      func() time.Time
}

func NewLedgerService(records repositories.RentRecordRepository, rooms repositories.RoomRepository, cacheSvc caching.CacheService) LedgerService {
	return &ledgerService{
		records:  records,
		rooms:    rooms,
		cacheSvc: cacheSvc,
		now:      time.Now,
	}
}

func (s *ledgerService) GenerateMonthly(ctx context.Context, period Period, buildingID *uuid.UUID) (int, error) {
	if period.Month < 1 || period.Month > 12 {
		return 0, fmt.Errorf("%w: month must be between 1 and 12", common.ErrInvalid)
	}

	rooms, err := s.rooms.ListRented(ctx, buildingID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	created := 0
	touched := make(map[uuid.UUID]struct{})

	for _, room := range rooms {
		dueDate := DueDateFor(period, room.LeaseInfo.PayDay)
		record := &models.RentRecord{
			ID:         uuid.New(),
			RoomID:     room.ID,
			BuildingID: room.BuildingID,
			RoomNumber: room.RoomNumber,
			TenantName: room.Tenant.Name,
			Amount:     room.MonthlyRent,
			Year:       period.Year,
			Month:      period.Month,
			DueDate:    dueDate,
			Status:     ClassifyRentStatus(dueDate, now, false),
		}

		// The unique (room, year, month) constraint makes this a no-op for
		// rooms billed earlier, including by a racing invocation.
		inserted, err := s.records.CreateUnique(ctx, record)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
			touched[room.BuildingID] = struct{}{}
		}
	}

	for id := range touched {
		s.invalidateStats(ctx, id)
	}
	return created, nil
}

func (s *ledgerService) MarkPaid(ctx context.Context, recordID uuid.UUID) error {
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: rent record", common.ErrNotFound)
	}

	changed, err := s.records.MarkPaid(ctx, recordID, s.now())
	if err != nil {
		return err
	}
	// Already-paid records are left untouched so the paid date never moves.
	if changed {
		s.invalidateStats(ctx, record.BuildingID)
	}
	return nil
}

func (s *ledgerService) Record(ctx context.Context, recordID uuid.UUID) (*models.RentRecord, error) {
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: rent record", common.ErrNotFound)
	}
	return record, nil
}

func (s *ledgerService) Stats(ctx context.Context, buildingID uuid.UUID) (*models.RentStats, error) {
	period := CurrentPeriod(s.now())

	if cached, err := s.cacheSvc.GetBuildingStats(ctx, buildingID, period.Year, period.Month); err == nil && cached != nil {
		return cached, nil
	}

	stats, err := s.records.Stats(ctx, buildingID, period.Year, period.Month)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetBuildingStats(ctx, buildingID, period.Year, period.Month, stats, statsCacheTTL); err != nil {
		log.Printf("failed to cache stats for building %s: %v", buildingID, err)
	}
	return stats, nil
}

func (s *ledgerService) History(ctx context.Context, query HistoryQuery) (*HistoryPage, error) {
	if query.Status != nil {
		switch *query.Status {
		case models.RentStatusPending, models.RentStatusOverdue, models.RentStatusPaid:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", common.ErrInvalid, *query.Status)
		}
	}

	page, pageSize := common.NormalizePagination(query.Page, query.PageSize)
	filter := repositories.HistoryFilter{RoomID: query.RoomID, BuildingID: query.BuildingID, Status: query.Status}

	total, err := s.records.CountHistory(ctx, filter)
	if err != nil {
		return nil, err
	}

	list, err := s.records.History(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.RentRecord{}
	}

	return &HistoryPage{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *ledgerService) PendingWithinWeek(ctx context.Context, buildingID uuid.UUID) ([]*models.PendingRentItem, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	items, err := s.records.PendingWithinRange(ctx, buildingID, today, today.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.PendingRentItem{}
	}
	return items, nil
}

func (s *ledgerService) invalidateStats(ctx context.Context, buildingID uuid.UUID) {
	if err := s.cacheSvc.InvalidateBuildingStats(ctx, buildingID); err != nil {
		log.Printf("failed to invalidate stats cache for building %s: %v", buildingID, err)
	}
}
