package handlers

import (
	"rentdesk/internal/common"
	"rentdesk/internal/services"

	"github.com/labstack/echo/v4"
)

// BuildingHandlers handles building CRUD and switching.
type BuildingHandlers struct {
	buildingService services.BuildingService
}

func NewBuildingHandlers(buildingService services.BuildingService) *BuildingHandlers {
	return &BuildingHandlers{buildingService: buildingService}
}

// ListBuildings handles GET /v1/buildings
func (h *BuildingHandlers) ListBuildings(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(401, "Unauthorized")
	}

	list, err := h.buildingService.List(ctx, userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOK(c, list)
}

// CreateBuilding handles POST /v1/buildings
func (h *BuildingHandlers) CreateBuilding(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(401, "Unauthorized")
	}

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendFailure(c, common.CodeInvalid, "invalid request format")
	}

	building, err := h.buildingService.Create(ctx, userID, req.Name, req.Address)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, "building created", building)
}

// UpdateBuilding handles PUT /v1/buildings/:id
func (h *BuildingHandlers) UpdateBuilding(c echo.Context) error {
	buildingID, err := common.ValidateUUID(c.Param("id"), "building_id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendFailure(c, common.CodeInvalid, "invalid request format")
	}

	if err := h.buildingService.Update(c.Request().Context(), buildingID, req.Name, req.Address); err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, "building updated", nil)
}

// DeleteBuilding handles DELETE /v1/buildings/:id
func (h *BuildingHandlers) DeleteBuilding(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(401, "Unauthorized")
	}

	buildingID, err := common.ValidateUUID(c.Param("id"), "building_id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.buildingService.Delete(ctx, userID, buildingID); err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, "building deleted", nil)
}

// SwitchBuilding handles POST /v1/buildings/:id/switch
func (h *BuildingHandlers) SwitchBuilding(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(401, "Unauthorized")
	}

	buildingID, err := common.ValidateUUID(c.Param("id"), "building_id")
	if err != nil {
		return common.SendError(c, err)
	}

	building, err := h.buildingService.Switch(ctx, userID, buildingID)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, "building switched", building)
}
