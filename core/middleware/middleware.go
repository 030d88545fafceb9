package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"setlist-api/core/constants"
	"setlist-api/core/controller"
	"setlist-api/core/errors"
	"setlist-api/core/logger"
	"setlist-api/core/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type Middleware struct {
	jwtSecret string
}

func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{jwtSecret: jwtSecret}
}

// AuthMiddleware validates the bearer token and stores its claims under
// constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrMissingAuthorizationHeader, "Missing authorization header")
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrInvalidTokenFormat, "Invalid authorization header format")
			}

			claims, err := utils.ParseTokenWithSecret(m.jwtSecret, token)
			if err != nil {
				if stderrors.Is(err, jwt.ErrTokenExpired) {
					return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrTokenExpired, "Token expired")
				}
				logger.Warn("Middleware:AuthMiddleware:InvalidToken", "error", err)
				return controller.NewErrorResponse(http.StatusUnauthorized, errors.ErrUnauthorized, "Unauthorized")
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// RequestLogger logs one line per request.
func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			logger.Info("HTTP",
				"method", req.Method,
				"path", c.Path(),
				"uri", req.RequestURI,
				"status", res.Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}
