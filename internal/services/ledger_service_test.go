package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentdesk/internal/common"
	"rentdesk/internal/models"
	"rentdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockRentRecordRepository struct {
	mock.Mock
}

func (m *MockRentRecordRepository) CreateUnique(ctx context.Context, record *models.RentRecord) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

func (m *MockRentRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RentRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentRecord), args.Error(1)
}

func (m *MockRentRecordRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidDate time.Time) (bool, error) {
	args := m.Called(ctx, id, paidDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockRentRecordRepository) History(ctx context.Context, filter repositories.HistoryFilter, limit, offset int) ([]*models.RentRecord, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RentRecord), args.Error(1)
}

func (m *MockRentRecordRepository) CountHistory(ctx context.Context, filter repositories.HistoryFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockRentRecordRepository) Stats(ctx context.Context, buildingID uuid.UUID, year, month int) (*models.RentStats, error) {
	args := m.Called(ctx, buildingID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentStats), args.Error(1)
}

func (m *MockRentRecordRepository) PendingWithinRange(ctx context.Context, buildingID uuid.UUID, from, to time.Time) ([]*models.PendingRentItem, error) {
	args := m.Called(ctx, buildingID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PendingRentItem), args.Error(1)
}

func (m *MockRentRecordRepository) RecentByRoom(ctx context.Context, roomID uuid.UUID, limit int) ([]*models.RentRecord, error) {
	args := m.Called(ctx, roomID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RentRecord), args.Error(1)
}

func (m *MockRentRecordRepository) DeleteByRoom(ctx context.Context, roomID uuid.UUID) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Create(ctx context.Context, room *models.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *MockRoomRepository) Update(ctx context.Context, room *models.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRoomRepository) ListByBuilding(ctx context.Context, buildingID uuid.UUID, limit, offset int) ([]*models.Room, error) {
	args := m.Called(ctx, buildingID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}

func (m *MockRoomRepository) CountByBuilding(ctx context.Context, buildingID uuid.UUID) (int, error) {
	args := m.Called(ctx, buildingID)
	return args.Int(0), args.Error(1)
}

func (m *MockRoomRepository) CountByNumber(ctx context.Context, buildingID uuid.UUID, roomNumber string) (int, error) {
	args := m.Called(ctx, buildingID, roomNumber)
	return args.Int(0), args.Error(1)
}

func (m *MockRoomRepository) ListRented(ctx context.Context, buildingID *uuid.UUID) ([]*models.Room, error) {
	args := m.Called(ctx, buildingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}

func (m *MockRoomRepository) UpdateImage(ctx context.Context, id uuid.UUID, objectName string) error {
	args := m.Called(ctx, id, objectName)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetBuildingStats(ctx context.Context, buildingID uuid.UUID, year, month int) (*models.RentStats, error) {
	args := m.Called(ctx, buildingID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentStats), args.Error(1)
}

func (m *MockCacheService) SetBuildingStats(ctx context.Context, buildingID uuid.UUID, year, month int, stats *models.RentStats, ttl time.Duration) error {
	args := m.Called(ctx, buildingID, year, month, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateBuildingStats(ctx context.Context, buildingID uuid.UUID) error {
	args := m.Called(ctx, buildingID)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestClassifyRentStatus(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate time.Time
		paid    bool
		want    string
	}{
		{"paid wins over overdue", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true, models.RentStatusPaid},
		{"paid wins over pending", time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), true, models.RentStatusPaid},
		{"due before today is overdue", time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), false, models.RentStatusOverdue},
		{"due today is pending", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), false, models.RentStatusPending},
		{"due today with earlier clock time is pending", time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC), false, models.RentStatusPending},
		{"due tomorrow is pending", time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), false, models.RentStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRentStatus(tt.dueDate, now, tt.paid))
		})
	}
}

func TestDueDateFor(t *testing.T) {
	tests := []struct {
		name   string
		period Period
		payDay int
		want   time.Time
	}{
		{"normal day", Period{2024, 6}, 15, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"first of month", Period{2024, 6}, 1, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"zero clamps to first", Period{2024, 6}, 0, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"clamped to short february", Period{2023, 2}, 30, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"leap february keeps 29", Period{2024, 2}, 29, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"december rolls nothing over", Period{2024, 12}, 28, time.Date(2024, 12, 28, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueDateFor(tt.period, tt.payDay))
		})
	}
}

type LedgerServiceTestSuite struct {
	suite.Suite
	records *MockRentRecordRepository
	rooms   *MockRoomRepository
	cache   *MockCacheService
	service *ledgerService
	now     time.Time
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.records = &MockRentRecordRepository{}
	suite.rooms = &MockRoomRepository{}
	suite.cache = &MockCacheService{}
	suite.now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	suite.service = &ledgerService{
		records:  suite.records,
		rooms:    suite.rooms,
		cacheSvc: suite.cache,
		now:      func() time.Time { return suite.now },
	}

	suite.records.Test(suite.T())
	suite.rooms.Test(suite.T())
	suite.cache.Test(suite.T())
}

func (suite *LedgerServiceTestSuite) TearDownTest() {
	suite.records.AssertExpectations(suite.T())
	suite.rooms.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func rentedRoom(buildingID uuid.UUID, number string, rent float64, payDay int) *models.Room {
	return &models.Room{
		ID:          uuid.New(),
		BuildingID:  buildingID,
		RoomNumber:  number,
		MonthlyRent: rent,
		Status:      models.RoomStatusRented,
		Tenant:      models.Tenant{Name: "Zhang San", Phone: "13800000000"},
		LeaseInfo:   models.LeaseInfo{PayDay: payDay},
	}
}

func (suite *LedgerServiceTestSuite) TestGenerateMonthly_CreatesRecordPerRentedRoom() {
	ctx := context.Background()
	buildingID := uuid.New()
	room := rentedRoom(buildingID, "101", 1000, 15)

	suite.rooms.On("ListRented", ctx, (*uuid.UUID)(nil)).Return([]*models.Room{room}, nil)
	suite.records.On("CreateUnique", ctx, mock.MatchedBy(func(r *models.RentRecord) bool {
		return r.RoomID == room.ID &&
			r.BuildingID == buildingID &&
			r.RoomNumber == "101" &&
			r.TenantName == "Zhang San" &&
			r.Amount == 1000 &&
			r.Year == 2024 && r.Month == 6 &&
			r.DueDate.Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)) &&
			r.Status == models.RentStatusPending
	})).Return(true, nil)
	suite.cache.On("InvalidateBuildingStats", ctx, buildingID).Return(nil)

	created, err := suite.service.GenerateMonthly(ctx, Period{2024, 6}, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, created)
}

func (suite *LedgerServiceTestSuite) TestGenerateMonthly_PastDueDateIsOverdueAtCreation() {
	ctx := context.Background()
	buildingID := uuid.New()
	room := rentedRoom(buildingID, "102", 800, 5) // before June 10

	suite.rooms.On("ListRented", ctx, (*uuid.UUID)(nil)).Return([]*models.Room{room}, nil)
	suite.records.On("CreateUnique", ctx, mock.MatchedBy(func(r *models.RentRecord) bool {
		return r.Status == models.RentStatusOverdue
	})).Return(true, nil)
	suite.cache.On("InvalidateBuildingStats", ctx, buildingID).Return(nil)

	created, err := suite.service.GenerateMonthly(ctx, Period{2024, 6}, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, created)
}

func (suite *LedgerServiceTestSuite) TestGenerateMonthly_SecondRunCreatesNothing() {
	ctx := context.Background()
	buildingID := uuid.New()
	room := rentedRoom(buildingID, "103", 1200, 20)

	// The room was already billed for this period, so the unique-insert
	// reports no row written and the cache stays untouched.
	suite.rooms.On("ListRented", ctx, (*uuid.UUID)(nil)).Return([]*models.Room{room}, nil)
	suite.records.On("CreateUnique", ctx, mock.Anything).Return(false, nil)

	created, err := suite.service.GenerateMonthly(ctx, Period{2024, 6}, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, created)
}

func (suite *LedgerServiceTestSuite) TestGenerateMonthly_ScopedToBuilding() {
	ctx := context.Background()
	buildingID := uuid.New()

	suite.rooms.On("ListRented", ctx, &buildingID).Return([]*models.Room{}, nil)

	created, err := suite.service.GenerateMonthly(ctx, Period{2024, 6}, &buildingID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, created)
}

func (suite *LedgerServiceTestSuite) TestGenerateMonthly_RejectsBadMonth() {
	_, err := suite.service.GenerateMonthly(context.Background(), Period{2024, 13}, nil)
	assert.ErrorIs(suite.T(), err, common.ErrInvalid)
}

func (suite *LedgerServiceTestSuite) TestMarkPaid_NotFound() {
	ctx := context.Background()
	recordID := uuid.New()

	suite.records.On("GetByID", ctx, recordID).Return(nil, nil)

	err := suite.service.MarkPaid(ctx, recordID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestMarkPaid_TransitionsAndInvalidatesCache() {
	ctx := context.Background()
	buildingID := uuid.New()
	record := &models.RentRecord{ID: uuid.New(), BuildingID: buildingID, Status: models.RentStatusPending}

	suite.records.On("GetByID", ctx, record.ID).Return(record, nil)
	suite.records.On("MarkPaid", ctx, record.ID, suite.now).Return(true, nil)
	suite.cache.On("InvalidateBuildingStats", ctx, buildingID).Return(nil)

	err := suite.service.MarkPaid(ctx, record.ID)
	assert.NoError(suite.T(), err)
}

func (suite *LedgerServiceTestSuite) TestMarkPaid_AlreadyPaidIsNoOp() {
	ctx := context.Background()
	paidAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	record := &models.RentRecord{ID: uuid.New(), BuildingID: uuid.New(), Status: models.RentStatusPaid, PaidDate: &paidAt}

	suite.records.On("GetByID", ctx, record.ID).Return(record, nil)
	suite.records.On("MarkPaid", ctx, record.ID, suite.now).Return(false, nil)

	err := suite.service.MarkPaid(ctx, record.ID)
	assert.NoError(suite.T(), err)
	suite.cache.AssertNotCalled(suite.T(), "InvalidateBuildingStats", ctx, record.BuildingID)
}

func (suite *LedgerServiceTestSuite) TestStats_CacheHit() {
	ctx := context.Background()
	buildingID := uuid.New()
	cached := &models.RentStats{PendingCount: 2, PendingAmount: 2000}

	suite.cache.On("GetBuildingStats", ctx, buildingID, 2024, 6).Return(cached, nil)

	stats, err := suite.service.Stats(ctx, buildingID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, stats)
	suite.records.AssertNotCalled(suite.T(), "Stats", ctx, buildingID, 2024, 6)
}

func (suite *LedgerServiceTestSuite) TestStats_CacheMissFallsThrough() {
	ctx := context.Background()
	buildingID := uuid.New()
	fresh := &models.RentStats{PendingCount: 1, PendingAmount: 1000, OverdueCount: 3}

	suite.cache.On("GetBuildingStats", ctx, buildingID, 2024, 6).Return(nil, nil)
	suite.records.On("Stats", ctx, buildingID, 2024, 6).Return(fresh, nil)
	suite.cache.On("SetBuildingStats", ctx, buildingID, 2024, 6, fresh, statsCacheTTL).Return(nil)

	stats, err := suite.service.Stats(ctx, buildingID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), fresh, stats)
}

func (suite *LedgerServiceTestSuite) TestHistory_RejectsUnknownStatus() {
	status := "settled"
	_, err := suite.service.History(context.Background(), HistoryQuery{Status: &status})
	assert.ErrorIs(suite.T(), err, common.ErrInvalid)
}

func (suite *LedgerServiceTestSuite) TestHistory_PaginatesWithDefaults() {
	ctx := context.Background()
	buildingID := uuid.New()
	filter := repositories.HistoryFilter{BuildingID: &buildingID}

	suite.records.On("CountHistory", ctx, filter).Return(41, nil)
	suite.records.On("History", ctx, filter, 20, 20).Return([]*models.RentRecord{{ID: uuid.New()}}, nil)

	page, err := suite.service.History(ctx, HistoryQuery{BuildingID: &buildingID, Page: 2})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 41, page.Total)
	assert.Equal(suite.T(), 2, page.Page)
	assert.Equal(suite.T(), 20, page.PageSize)
	assert.Len(suite.T(), page.List, 1)
}

func (suite *LedgerServiceTestSuite) TestPendingWithinWeek_UsesDayBounds() {
	ctx := context.Background()
	buildingID := uuid.New()
	from := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)

	suite.records.On("PendingWithinRange", ctx, buildingID, from, to).Return([]*models.PendingRentItem{}, nil)

	items, err := suite.service.PendingWithinWeek(ctx, buildingID)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), items)
	assert.Empty(suite.T(), items)
}

func (suite *LedgerServiceTestSuite) TestGenerateMonthly_StorageErrorStopsRun() {
	ctx := context.Background()
	buildingID := uuid.New()
	room := rentedRoom(buildingID, "104", 900, 1)

	suite.rooms.On("ListRented", ctx, (*uuid.UUID)(nil)).Return([]*models.Room{room}, nil)
	suite.records.On("CreateUnique", ctx, mock.Anything).Return(false, errors.New("connection reset"))

	created, err := suite.service.GenerateMonthly(ctx, Period{2024, 6}, nil)
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), 0, created)
}
