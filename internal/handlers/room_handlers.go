package handlers

import (
	"strconv"

	"rentdesk/internal/common"
	"rentdesk/internal/models"
	"rentdesk/internal/services"

	"github.com/labstack/echo/v4"
)

// RoomHandlers handles room CRUD and image upload.
type RoomHandlers struct {
	roomService services.RoomService
}

func NewRoomHandlers(roomService services.RoomService) *RoomHandlers {
	return &RoomHandlers{roomService: roomService}
}

// ListRooms handles GET /v1/rooms?building_id=&page=&page_size=
func (h *RoomHandlers) ListRooms(c echo.Context) error {
	buildingID, err := common.ValidateUUID(c.QueryParam("building_id"), "building_id")
	if err != nil {
		return common.SendError(c, err)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	rooms, err := h.roomService.List(c.Request().Context(), buildingID, page, pageSize)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOK(c, rooms)
}

// GetRoom handles GET /v1/rooms/:id
func (h *RoomHandlers) GetRoom(c echo.Context) error {
	roomID, err := common.ValidateUUID(c.Param("id"), "room_id")
	if err != nil {
		return common.SendError(c, err)
	}

	detail, err := h.roomService.Get(c.Request().Context(), roomID)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOK(c, detail)
}

// CreateRoom handles POST /v1/rooms
func (h *RoomHandlers) CreateRoom(c echo.Context) error {
	var req struct {
		BuildingID  string            `json:"building_id"`
		RoomNumber  string            `json:"room_number"`
		Area        float64           `json:"area"`
		MonthlyRent float64           `json:"monthly_rent"`
		Tenant      *models.Tenant    `json:"tenant"`
		LeaseInfo   *models.LeaseInfo `json:"lease_info"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendFailure(c, common.CodeInvalid, "invalid request format")
	}

	buildingID, err := common.ValidateUUID(req.BuildingID, "building_id")
	if err != nil {
		return common.SendError(c, err)
	}

	roomID, err := h.roomService.Create(c.Request().Context(), &services.RoomCreateRequest{
		BuildingID:  buildingID,
		RoomNumber:  req.RoomNumber,
		Area:        req.Area,
		MonthlyRent: req.MonthlyRent,
		Tenant:      req.Tenant,
		LeaseInfo:   req.LeaseInfo,
	})
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, "room created", map[string]interface{}{"id": roomID})
}

// UpdateRoom handles PUT /v1/rooms/:id
func (h *RoomHandlers) UpdateRoom(c echo.Context) error {
	roomID, err := common.ValidateUUID(c.Param("id"), "room_id")
	if err != nil {
		return common.SendError(c, err)
	}

	var req struct {
		RoomNumber  *string           `json:"room_number"`
		Area        *float64          `json:"area"`
		MonthlyRent *float64          `json:"monthly_rent"`
		Tenant      *models.Tenant    `json:"tenant"`
		LeaseInfo   *models.LeaseInfo `json:"lease_info"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendFailure(c, common.CodeInvalid, "invalid request format")
	}

	update := &services.RoomUpdate{
		RoomNumber:  req.RoomNumber,
		Area:        req.Area,
		MonthlyRent: req.MonthlyRent,
		Tenant:      req.Tenant,
		LeaseInfo:   req.LeaseInfo,
	}
	if err := h.roomService.Update(c.Request().Context(), roomID, update); err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, "room updated", nil)
}

// DeleteRoom handles DELETE /v1/rooms/:id
func (h *RoomHandlers) DeleteRoom(c echo.Context) error {
	roomID, err := common.ValidateUUID(c.Param("id"), "room_id")
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.roomService.Delete(c.Request().Context(), roomID); err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, "room deleted", nil)
}

// UploadRoomImage handles POST /v1/rooms/:id/image
func (h *RoomHandlers) UploadRoomImage(c echo.Context) error {
	roomID, err := common.ValidateUUID(c.Param("id"), "room_id")
	if err != nil {
		return common.SendError(c, err)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return common.SendFailure(c, common.CodeInvalid, "image file is required")
	}

	src, err := file.Open()
	if err != nil {
		return common.SendFailure(c, common.CodeInvalid, "could not read image file")
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.roomService.UploadImage(c.Request().Context(), roomID, file.Filename, contentType, src, file.Size)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, "image uploaded", map[string]interface{}{"url": url})
}
