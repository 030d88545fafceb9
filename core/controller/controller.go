package controller

import (
	stderrors "errors"
	"net/http"
	"time"

	"setlist-api/core/constants"
	"setlist-api/core/errors"
	"setlist-api/core/logger"
	"setlist-api/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Response types
type (
	SuccessResponse struct {
		Status    int       `json:"status"`
		Message   string    `json:"message"`
		Data      any       `json:"data,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	ErrorResponse struct {
		Status    string           `json:"status"`
		Code      errors.ErrorCode `json:"code"`
		Error     string           `json:"error"`
		Details   any              `json:"details,omitempty"`
		Timestamp time.Time        `json:"timestamp"`
	}
)

type BaseController interface {
	BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	NotFound(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Forbidden(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	SuccessResponse(c echo.Context, data any, message string) error
	ErrorResponse(c echo.Context, err error) error
	CurrentUserID(c echo.Context) (uuid.UUID, *errors.AppError)
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

func NewSuccessResponse(httpStatusCode int, data any, message string) *SuccessResponse {
	return &SuccessResponse{
		Status:    httpStatusCode,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func newErrorBody(appErrCode errors.ErrorCode, message string, details ...any) *ErrorResponse {
	body := &ErrorResponse{
		Status:    "error",
		Code:      appErrCode,
		Error:     message,
		Timestamp: time.Now(),
	}
	if len(details) > 0 && details[0] != nil {
		body.Details = details[0]
	}
	return body
}

func NewErrorResponse(httpStatusCode int, appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return echo.NewHTTPError(httpStatusCode, newErrorBody(appErrCode, message, details...))
}

// StatusFor maps an application error code onto its HTTP status.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidInput, errors.ErrInvalidRequestData:
		return http.StatusBadRequest
	case errors.ErrUnauthorized, errors.ErrTokenExpired, errors.ErrInvalidTokenFormat, errors.ErrMissingAuthorizationHeader:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrAlreadyExists, errors.ErrConflict:
		return http.StatusConflict
	case errors.ErrTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (h *responseHandler) BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusBadRequest, appErrCode, message, details...)
}

func (h *responseHandler) InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusInternalServerError, appErrCode, message, details...)
}

func (h *responseHandler) NotFound(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusNotFound, appErrCode, message, details...)
}

func (h *responseHandler) Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusUnauthorized, appErrCode, message, details...)
}

func (h *responseHandler) Forbidden(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusForbidden, appErrCode, message, details...)
}

func (h *responseHandler) SuccessResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, NewSuccessResponse(http.StatusOK, data, message))
}

func (h *responseHandler) ErrorResponse(c echo.Context, err error) error {
	httpStatus := http.StatusInternalServerError
	appCode := errors.ErrInternalServer
	msg := "internal server error"

	var ae *errors.AppError
	if stderrors.As(err, &ae) && ae != nil {
		appCode = ae.Code
		httpStatus = StatusFor(appCode)
		if ae.Message != "" {
			msg = ae.Message
		}
	}

	if httpStatus >= http.StatusInternalServerError {
		logger.Error("BaseController:ErrorResponse",
			"status", httpStatus,
			"code", appCode,
			"message", msg,
			"error", err,
		)
	}
	return c.JSON(httpStatus, newErrorBody(appCode, msg))
}

func (h *responseHandler) CurrentUserID(c echo.Context) (uuid.UUID, *errors.AppError) {
	tokenData := c.Get(constants.ContextTokenData)
	if tokenData == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "Token data not found in context", nil)
	}

	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok || claims.UserID == uuid.Nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data format", nil)
	}

	return claims.UserID, nil
}

// HTTPErrorHandler renders every error leaving a handler with the shared error
// body. Unknown errors become a generic 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	var body *ErrorResponse

	var he *echo.HTTPError
	var ae *errors.AppError
	switch {
	case stderrors.As(err, &he):
		status = he.Code
		switch m := he.Message.(type) {
		case *ErrorResponse:
			body = m
		case string:
			body = newErrorBody(codeForStatus(status), m)
		default:
			body = newErrorBody(codeForStatus(status), http.StatusText(status))
		}
	case stderrors.As(err, &ae):
		status = StatusFor(ae.Code)
		body = newErrorBody(ae.Code, ae.Message)
	default:
		body = newErrorBody(errors.ErrInternalServer, "internal server error")
	}

	if status >= http.StatusInternalServerError {
		logger.Error("HTTPErrorHandler", "path", c.Path(), "status", status, "error", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		logger.Error("HTTPErrorHandler:Write", "error", writeErr)
	}
}

func codeForStatus(status int) errors.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return errors.ErrInvalidRequestData
	case http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case http.StatusForbidden:
		return errors.ErrForbidden
	case http.StatusNotFound:
		return errors.ErrNotFound
	case http.StatusConflict:
		return errors.ErrConflict
	case http.StatusTooManyRequests:
		return errors.ErrTooManyRequests
	default:
		return errors.ErrInternalServer
	}
}
