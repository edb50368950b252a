package handlers

import (
	"rentdesk/internal/common"
	"rentdesk/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles OTP issue, login and profile requests.
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// SendOtp handles POST /v1/auth/otp
func (h *AuthHandlers) SendOtp(c echo.Context) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendFailure(c, common.CodeInvalid, "invalid request format")
	}

	if err := h.authService.IssueOtp(c.Request().Context(), req.Phone); err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, "verification code sent", nil)
}

// Login handles POST /v1/auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendFailure(c, common.CodeInvalid, "invalid request format")
	}

	result, err := h.authService.VerifyOtp(c.Request().Context(), req.Phone, req.Code)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOK(c, result)
}

// Me handles GET /v1/me
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(401, "Unauthorized")
	}

	info, err := h.authService.GetUserInfo(ctx, userID)
	if err != nil {
		return common.SendError(c, err)
	}
	return common.SendOK(c, info)
}

// UpdateProfile handles PUT /v1/me
func (h *AuthHandlers) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(401, "Unauthorized")
	}

	var req struct {
		Nickname *string `json:"nickname"`
		Avatar   *string `json:"avatar"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendFailure(c, common.CodeInvalid, "invalid request format")
	}

	if err := h.authService.UpdateProfile(ctx, userID, req.Nickname, req.Avatar); err != nil {
		return common.SendError(c, err)
	}
	return common.SendOKMessage(c, "profile updated", nil)
}
