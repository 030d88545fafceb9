package controller

import (
	"setlist-api/core/controller"
	"setlist-api/core/errors"
	"setlist-api/modules/user/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserController struct {
	controller.BaseController
	service service.UserServiceInterface
}

func NewUserController(service service.UserServiceInterface) *UserController {
	return &UserController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

// GetMe handles GET /users/me
func (c *UserController) GetMe(ctx echo.Context) error {
	userID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	resp, appErr := c.service.GetMe(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Profile retrieved")
}

// GetProfile handles GET /users/:id
func (c *UserController) GetProfile(ctx echo.Context) error {
	viewerID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid user ID")
	}

	resp, appErr := c.service.GetProfile(ctx.Request().Context(), viewerID, id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Profile retrieved")
}
