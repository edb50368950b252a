package common

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the uniform action envelope. Code 0 means success; any non-zero
// code is a failure with a human-readable message.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Response codes per error kind.
const (
	CodeOK          = 0
	CodeInvalid     = 1001
	CodeNotFound    = 1002
	CodeConflict    = 1003
	CodeRateLimited = 1004
	CodeOTPInvalid  = 1005
	CodeOTPExpired  = 1006
	CodeTransport   = 1007
	CodeStorage     = 1500
)

// SendOK sends a success envelope with optional data.
func SendOK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, &Response{Code: CodeOK, Data: data})
}

// SendOKMessage sends a success envelope with a message and optional data.
func SendOKMessage(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, &Response{Code: CodeOK, Message: message, Data: data})
}

// SendFailure sends a failure envelope with an explicit code.
func SendFailure(c echo.Context, code int, message string) error {
	return c.JSON(http.StatusOK, &Response{Code: code, Message: message})
}

// SendError maps a service error onto the envelope. Unrecognized errors are
// reported as storage failures without leaking internals.
func SendError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalid):
		return SendFailure(c, CodeInvalid, err.Error())
	case errors.Is(err, ErrNotFound):
		return SendFailure(c, CodeNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		return SendFailure(c, CodeConflict, err.Error())
	case errors.Is(err, ErrRateLimited):
		return SendFailure(c, CodeRateLimited, err.Error())
	case errors.Is(err, ErrCodeInvalid):
		return SendFailure(c, CodeOTPInvalid, err.Error())
	case errors.Is(err, ErrCodeExpired):
		return SendFailure(c, CodeOTPExpired, err.Error())
	case errors.Is(err, ErrTransport):
		return SendFailure(c, CodeTransport, err.Error())
	default:
		return SendFailure(c, CodeStorage, "operation could not be completed")
	}
}
