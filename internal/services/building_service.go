package services

import (
	"context"
	"fmt"

	"rentdesk/internal/common"
	"rentdesk/internal/models"
	"rentdesk/internal/repositories"

	"github.com/google/uuid"
)

// BuildingList is a user's buildings along with the resolved current building.
type BuildingList struct {
	List            []*models.Building `json:"list"`
	CurrentBuilding *models.Building   `json:"current_building"`
}

type BuildingService interface {
	Create(ctx context.Context, ownerID uuid.UUID, name, address string) (*models.Building, error)
	Update(ctx context.Context, buildingID uuid.UUID, name, address *string) error
	Delete(ctx context.Context, ownerID, buildingID uuid.UUID) error
	Switch(ctx context.Context, userID, buildingID uuid.UUID) (*models.Building, error)
	List(ctx context.Context, userID uuid.UUID) (*BuildingList, error)
}

type buildingService struct {
	db        repositories.DB
	users     repositories.UserRepository
	buildings repositories.BuildingRepository
	rooms     repositories.RoomRepository
}

func NewBuildingService(db repositories.DB) BuildingService {
	return &buildingService{
		db:        db,
		users:     repositories.NewUserRepo(db),
		buildings: repositories.NewBuildingRepo(db),
		rooms:     repositories.NewRoomRepo(db),
	}
}

// Create inserts the building and appends it to the owner's membership list in
// one transaction. The first building a user creates becomes their current one.
func (s *buildingService) Create(ctx context.Context, ownerID uuid.UUID, name, address string) (*models.Building, error) {
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	users := repositories.NewUserRepo(tx)
	buildings := repositories.NewBuildingRepo(tx)

	user, err := users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", common.ErrNotFound)
	}

	building := &models.Building{
		ID:      uuid.New(),
		Name:    name,
		Address: address,
		OwnerID: ownerID,
	}
	if err := buildings.Create(ctx, building); err != nil {
		return nil, err
	}

	membership := append(user.Buildings, building.ID)
	current := user.CurrentBuilding
	if len(membership) == 1 {
		current = &building.ID
	}
	if err := users.UpdateMembership(ctx, ownerID, membership, current); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return building, nil
}

func (s *buildingService) Update(ctx context.Context, buildingID uuid.UUID, name, address *string) error {
	building, err := s.buildings.GetByID(ctx, buildingID)
	if err != nil {
		return err
	}
	if building == nil {
		return fmt.Errorf("%w: building", common.ErrNotFound)
	}
	if name != nil {
		if err := common.ValidateRequiredString(*name, "name"); err != nil {
			return err
		}
	}
	return s.buildings.Update(ctx, buildingID, name, address)
}

// Delete refuses while rooms remain, then removes the building and repairs the
// owner's membership list and current-building pointer in one transaction. The
// room check runs before any destructive step.
func (s *buildingService) Delete(ctx context.Context, ownerID, buildingID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	users := repositories.NewUserRepo(tx)
	buildings := repositories.NewBuildingRepo(tx)
	rooms := repositories.NewRoomRepo(tx)

	building, err := buildings.GetByID(ctx, buildingID)
	if err != nil {
		return err
	}
	if building == nil {
		return fmt.Errorf("%w: building", common.ErrNotFound)
	}

	roomCount, err := rooms.CountByBuilding(ctx, buildingID)
	if err != nil {
		return err
	}
	if roomCount > 0 {
		return fmt.Errorf("%w: building still has rooms", common.ErrConflict)
	}

	if err := buildings.Delete(ctx, buildingID); err != nil {
		return err
	}

	user, err := users.GetByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if user != nil {
		membership := make([]uuid.UUID, 0, len(user.Buildings))
		for _, id := range user.Buildings {
			if id != buildingID {
				membership = append(membership, id)
			}
		}
		current := user.CurrentBuilding
		if current != nil && *current == buildingID {
			current = nil
			if len(membership) > 0 {
				current = &membership[0]
			}
		}
		if err := users.UpdateMembership(ctx, ownerID, membership, current); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Switch sets the user's current building. Membership is not checked here;
// the source system behaves the same way.
func (s *buildingService) Switch(ctx context.Context, userID, buildingID uuid.UUID) (*models.Building, error) {
	building, err := s.buildings.GetByID(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, fmt.Errorf("%w: building", common.ErrNotFound)
	}
	if err := s.users.SetCurrentBuilding(ctx, userID, buildingID); err != nil {
		return nil, err
	}
	return building, nil
}

func (s *buildingService) List(ctx context.Context, userID uuid.UUID) (*BuildingList, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", common.ErrNotFound)
	}

	result := &BuildingList{List: []*models.Building{}}
	if len(user.Buildings) == 0 {
		return result, nil
	}

	buildings, err := s.buildings.ListByIDs(ctx, user.Buildings)
	if err != nil {
		return nil, err
	}
	result.List = buildings

	// Fall back to the first building when the stored pointer is stale.
	if user.CurrentBuilding != nil {
		for _, b := range buildings {
			if b.ID == *user.CurrentBuilding {
				result.CurrentBuilding = b
				break
			}
		}
	}
	if result.CurrentBuilding == nil && len(buildings) > 0 {
		result.CurrentBuilding = buildings[0]
	}
	return result, nil
}
