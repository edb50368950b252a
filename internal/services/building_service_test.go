package services

import (
	"context"
	"testing"
	"time"

	"rentdesk/internal/common"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type BuildingServiceTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	service BuildingService
}

func (suite *BuildingServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	suite.Require().NoError(err)
	suite.mock = mock
	suite.service = NewBuildingService(mock)
}

func (suite *BuildingServiceTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestBuildingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BuildingServiceTestSuite))
}

func userRow(id uuid.UUID, buildings []uuid.UUID, current *uuid.UUID) *pgxmock.Rows {
	phone := "13812340000"
	return pgxmock.NewRows([]string{"id", "external_id", "phone", "nickname", "avatar", "buildings", "current_building", "created_at", "updated_at"}).
		AddRow(id, (*string)(nil), &phone, "Landlord", "", buildings, current, time.Now(), time.Now())
}

func buildingRow(id uuid.UUID, name string, ownerID uuid.UUID, roomCount int) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name", "address", "owner_id", "room_count", "created_at", "updated_at"}).
		AddRow(id, name, "12 Main St", ownerID, roomCount, time.Now(), time.Now())
}

func (suite *BuildingServiceTestSuite) TestCreate_FirstBuildingBecomesCurrent() {
	ctx := context.Background()
	ownerID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery("SELECT id, external_id").
		WithArgs(ownerID).
		WillReturnRows(userRow(ownerID, []uuid.UUID{}, nil))
	suite.mock.ExpectExec("INSERT INTO buildings").
		WithArgs(pgxmock.AnyArg(), "Sunrise Court", "12 Main St", ownerID, 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec("UPDATE users").
		WithArgs(ownerID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	building, err := suite.service.Create(ctx, ownerID, "Sunrise Court", "12 Main St")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Sunrise Court", building.Name)
	assert.Equal(suite.T(), ownerID, building.OwnerID)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BuildingServiceTestSuite) TestCreate_UnknownOwnerRollsBack() {
	ctx := context.Background()
	ownerID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery("SELECT id, external_id").
		WithArgs(ownerID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "external_id", "phone", "nickname", "avatar", "buildings", "current_building", "created_at", "updated_at"}))
	suite.mock.ExpectRollback()

	_, err := suite.service.Create(ctx, ownerID, "Sunrise Court", "12 Main St")
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BuildingServiceTestSuite) TestCreate_RequiresName() {
	_, err := suite.service.Create(context.Background(), uuid.New(), "  ", "12 Main St")
	assert.ErrorIs(suite.T(), err, common.ErrInvalid)
}

func (suite *BuildingServiceTestSuite) TestDelete_RefusedWhileRoomsRemain() {
	ctx := context.Background()
	ownerID := uuid.New()
	buildingID := uuid.New()

	// The room check fires before any destructive statement; no DELETE is
	// ever issued.
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery("FROM buildings").
		WithArgs(buildingID).
		WillReturnRows(buildingRow(buildingID, "Sunrise Court", ownerID, 3))
	suite.mock.ExpectQuery("SELECT COUNT").
		WithArgs(buildingID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	suite.mock.ExpectRollback()

	err := suite.service.Delete(ctx, ownerID, buildingID)
	assert.ErrorIs(suite.T(), err, common.ErrConflict)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BuildingServiceTestSuite) TestDelete_RepairsMembershipAndCurrentPointer() {
	ctx := context.Background()
	ownerID := uuid.New()
	buildingID := uuid.New()
	otherID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery("FROM buildings").
		WithArgs(buildingID).
		WillReturnRows(buildingRow(buildingID, "Sunrise Court", ownerID, 0))
	suite.mock.ExpectQuery("SELECT COUNT").
		WithArgs(buildingID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	suite.mock.ExpectExec("DELETE FROM buildings").
		WithArgs(buildingID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectQuery("SELECT id, external_id").
		WithArgs(ownerID).
		WillReturnRows(userRow(ownerID, []uuid.UUID{buildingID, otherID}, &buildingID))
	suite.mock.ExpectExec("UPDATE users").
		WithArgs(ownerID, []uuid.UUID{otherID}, &otherID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.service.Delete(ctx, ownerID, buildingID)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BuildingServiceTestSuite) TestDelete_UnknownBuilding() {
	ctx := context.Background()
	buildingID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery("FROM buildings").
		WithArgs(buildingID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "address", "owner_id", "room_count", "created_at", "updated_at"}))
	suite.mock.ExpectRollback()

	err := suite.service.Delete(ctx, uuid.New(), buildingID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BuildingServiceTestSuite) TestSwitch_SetsCurrentBuilding() {
	ctx := context.Background()
	userID := uuid.New()
	buildingID := uuid.New()

	suite.mock.ExpectQuery("FROM buildings").
		WithArgs(buildingID).
		WillReturnRows(buildingRow(buildingID, "Sunrise Court", userID, 2))
	suite.mock.ExpectExec("UPDATE users").
		WithArgs(userID, buildingID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	building, err := suite.service.Switch(ctx, userID, buildingID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), buildingID, building.ID)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BuildingServiceTestSuite) TestSwitch_UnknownBuilding() {
	ctx := context.Background()
	buildingID := uuid.New()

	suite.mock.ExpectQuery("FROM buildings").
		WithArgs(buildingID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "address", "owner_id", "room_count", "created_at", "updated_at"}))

	_, err := suite.service.Switch(ctx, uuid.New(), buildingID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *BuildingServiceTestSuite) TestList_StalePointerFallsBackToFirst() {
	ctx := context.Background()
	userID := uuid.New()
	buildingID := uuid.New()
	staleID := uuid.New()

	suite.mock.ExpectQuery("SELECT id, external_id").
		WithArgs(userID).
		WillReturnRows(userRow(userID, []uuid.UUID{buildingID}, &staleID))
	suite.mock.ExpectQuery("FROM buildings").
		WithArgs([]uuid.UUID{buildingID}).
		WillReturnRows(buildingRow(buildingID, "Sunrise Court", userID, 2))

	result, err := suite.service.List(ctx, userID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result.List, 1)
	assert.NotNil(suite.T(), result.CurrentBuilding)
	assert.Equal(suite.T(), buildingID, result.CurrentBuilding.ID)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *BuildingServiceTestSuite) TestList_NoBuildings() {
	ctx := context.Background()
	userID := uuid.New()

	suite.mock.ExpectQuery("SELECT id, external_id").
		WithArgs(userID).
		WillReturnRows(userRow(userID, []uuid.UUID{}, nil))

	result, err := suite.service.List(ctx, userID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), result.List)
	assert.Nil(suite.T(), result.CurrentBuilding)
}
