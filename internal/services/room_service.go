package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"rentdesk/internal/caching"
	"rentdesk/internal/common"
	"rentdesk/internal/models"
	"rentdesk/internal/repositories"

	"github.com/google/uuid"
)

const (
	roomImageBucket    = "rentdesk-images"
	roomImageURLExpiry = 24 * time.Hour
	recentRecordLimit  = 12
)

// RoomCreateRequest carries the fields accepted when adding a room.
type RoomCreateRequest struct {
	BuildingID  uuid.UUID
	RoomNumber  string
	Area        float64
	MonthlyRent float64
	Tenant      *models.Tenant
	LeaseInfo   *models.LeaseInfo
}

// RoomUpdate lists the mutable room fields; nil fields are left unchanged.
type RoomUpdate struct {
	RoomNumber  *string
	Area        *float64
	MonthlyRent *float64
	Tenant      *models.Tenant
	LeaseInfo   *models.LeaseInfo
}

// RoomDetail is a room plus its most recent ledger entries.
type RoomDetail struct {
	Room        *models.Room         `json:"room"`
	RentRecords []*models.RentRecord `json:"rent_records"`
	ImageURL    string               `json:"image_url,omitempty"`
}

// RoomPage is one page of a building's rooms.
type RoomPage struct {
	List     []*models.Room `json:"list"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

type RoomService interface {
	Create(ctx context.Context, req *RoomCreateRequest) (uuid.UUID, error)
	Update(ctx context.Context, roomID uuid.UUID, update *RoomUpdate) error
	Delete(ctx context.Context, roomID uuid.UUID) error
	Get(ctx context.Context, roomID uuid.UUID) (*RoomDetail, error)
	List(ctx context.Context, buildingID uuid.UUID, page, pageSize int) (*RoomPage, error)
	UploadImage(ctx context.Context, roomID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
}

type roomService struct {
	db       repositories.DB
	rooms    repositories.RoomRepository
	records  repositories.RentRecordRepository
	cacheSvc caching.CacheService
	minioSvc MinioService
}

func NewRoomService(db repositories.DB, cacheSvc caching.CacheService, minioSvc MinioService) RoomService {
	return &roomService{
		db:       db,
		rooms:    repositories.NewRoomRepo(db),
		records:  repositories.NewRentRecordRepo(db),
		cacheSvc: cacheSvc,
		minioSvc: minioSvc,
	}
}

// Create inserts the room and bumps the building's room counter in one
// transaction. Duplicate room numbers within a building are rejected.
func (s *roomService) Create(ctx context.Context, req *RoomCreateRequest) (uuid.UUID, error) {
	if err := common.ValidateRequiredString(req.RoomNumber, "room_number"); err != nil {
		return uuid.Nil, err
	}
	if req.LeaseInfo != nil {
		if err := common.ValidatePayDay(req.LeaseInfo.PayDay); err != nil {
			return uuid.Nil, err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback(ctx)

	rooms := repositories.NewRoomRepo(tx)
	buildings := repositories.NewBuildingRepo(tx)

	building, err := buildings.GetByID(ctx, req.BuildingID)
	if err != nil {
		return uuid.Nil, err
	}
	if building == nil {
		return uuid.Nil, fmt.Errorf("%w: building", common.ErrNotFound)
	}

	existing, err := rooms.CountByNumber(ctx, req.BuildingID, req.RoomNumber)
	if err != nil {
		return uuid.Nil, err
	}
	if existing > 0 {
		return uuid.Nil, fmt.Errorf("%w: room number already exists", common.ErrConflict)
	}

	room := &models.Room{
		ID:          uuid.New(),
		BuildingID:  req.BuildingID,
		RoomNumber:  req.RoomNumber,
		Area:        req.Area,
		MonthlyRent: req.MonthlyRent,
		LeaseInfo:   models.LeaseInfo{PayDay: 1},
	}
	if req.Tenant != nil {
		room.Tenant = *req.Tenant
	}
	if req.LeaseInfo != nil {
		room.LeaseInfo = *req.LeaseInfo
	}
	room.Status = models.OccupancyFor(room.Tenant.Name)

	if err := rooms.Create(ctx, room); err != nil {
		return uuid.Nil, err
	}
	if _, err := buildings.AdjustRoomCount(ctx, req.BuildingID, 1); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return room.ID, nil
}

// Update applies the provided fields and re-derives occupancy whenever the
// tenant sub-record changes.
func (s *roomService) Update(ctx context.Context, roomID uuid.UUID, update *RoomUpdate) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return fmt.Errorf("%w: room", common.ErrNotFound)
	}

	if update.RoomNumber != nil {
		if err := common.ValidateRequiredString(*update.RoomNumber, "room_number"); err != nil {
			return err
		}
		room.RoomNumber = *update.RoomNumber
	}
	if update.Area != nil {
		room.Area = *update.Area
	}
	if update.MonthlyRent != nil {
		room.MonthlyRent = *update.MonthlyRent
	}
	if update.LeaseInfo != nil {
		if err := common.ValidatePayDay(update.LeaseInfo.PayDay); err != nil {
			return err
		}
		room.LeaseInfo = *update.LeaseInfo
	}
	if update.Tenant != nil {
		room.Tenant = *update.Tenant
		room.Status = models.OccupancyFor(room.Tenant.Name)
	}

	return s.rooms.Update(ctx, room)
}

// Delete removes the room, cascades to its rent records and decrements the
// building's room counter, all in one transaction.
func (s *roomService) Delete(ctx context.Context, roomID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rooms := repositories.NewRoomRepo(tx)
	records := repositories.NewRentRecordRepo(tx)
	buildings := repositories.NewBuildingRepo(tx)

	room, err := rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return fmt.Errorf("%w: room", common.ErrNotFound)
	}

	if err := records.DeleteByRoom(ctx, roomID); err != nil {
		return err
	}
	if err := rooms.Delete(ctx, roomID); err != nil {
		return err
	}

	count, err := buildings.AdjustRoomCount(ctx, room.BuildingID, -1)
	if err != nil {
		return err
	}
	if count < 0 {
		log.Printf("room count for building %s went negative (%d) after deleting room %s", room.BuildingID, count, roomID)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if err := s.cacheSvc.InvalidateBuildingStats(ctx, room.BuildingID); err != nil {
		log.Printf("failed to invalidate stats cache for building %s: %v", room.BuildingID, err)
	}
	return nil
}

func (s *roomService) Get(ctx context.Context, roomID uuid.UUID) (*RoomDetail, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room", common.ErrNotFound)
	}

	records, err := s.records.RecentByRoom(ctx, roomID, recentRecordLimit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*models.RentRecord{}
	}

	detail := &RoomDetail{Room: room, RentRecords: records}
	if room.RoomImage != "" {
		url, err := s.minioSvc.GetPresignedURL(ctx, roomImageBucket, room.RoomImage, roomImageURLExpiry)
		if err != nil {
			log.Printf("failed to presign image for room %s: %v", roomID, err)
		} else {
			detail.ImageURL = url
		}
	}
	return detail, nil
}

func (s *roomService) List(ctx context.Context, buildingID uuid.UUID, page, pageSize int) (*RoomPage, error) {
	page, pageSize = common.NormalizePagination(page, pageSize)

	total, err := s.rooms.CountByBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	list, err := s.rooms.ListByBuilding(ctx, buildingID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.Room{}
	}
	return &RoomPage{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *roomService) UploadImage(ctx context.Context, roomID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return "", err
	}
	if room == nil {
		return "", fmt.Errorf("%w: room", common.ErrNotFound)
	}

	objectName := fmt.Sprintf("rooms/%s/%s%s", roomID, uuid.New(), path.Ext(filename))
	if err := s.minioSvc.Upload(ctx, roomImageBucket, objectName, contentType, reader, size); err != nil {
		return "", err
	}
	if err := s.rooms.UpdateImage(ctx, roomID, objectName); err != nil {
		return "", err
	}
	return s.minioSvc.GetPresignedURL(ctx, roomImageBucket, objectName, roomImageURLExpiry)
}
