package controller

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"setlist-api/core/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[errors.ErrorCode]int{
		errors.ErrInvalidInput:    http.StatusBadRequest,
		errors.ErrNotFound:        http.StatusNotFound,
		errors.ErrForbidden:       http.StatusForbidden,
		errors.ErrConflict:        http.StatusConflict,
		errors.ErrAlreadyExists:   http.StatusConflict,
		errors.ErrTooManyRequests: http.StatusTooManyRequests,
		errors.ErrDeliveryFailed:  http.StatusInternalServerError,
		errors.ErrUnauthorized:    http.StatusUnauthorized,
		errors.ErrCreateFailed:    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusFor(code), code)
	}
}

func TestErrorResponseWritesErrorKey(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	err := NewBaseController().ErrorResponse(c, errors.NewAppError(errors.ErrTooManyRequests, "wait 10 minutes", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "wait 10 minutes", body["error"])
	assert.Equal(t, "TOO_MANY_REQUESTS", body["code"])
}

func TestHTTPErrorHandlerUnknownErrorIsGeneric500(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	HTTPErrorHandler(stderrors.New("db exploded"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db exploded")
	assert.Contains(t, rec.Body.String(), `"error":"internal server error"`)
}

func TestHTTPErrorHandlerKeepsBody(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	HTTPErrorHandler(NewBaseController().Forbidden(errors.ErrForbidden, "not a member"), c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"not a member"`)
}

func TestHTTPErrorHandlerEchoDefaults(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/missing", nil), rec)

	HTTPErrorHandler(echo.ErrNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}
