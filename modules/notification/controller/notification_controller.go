package controller

import (
	"setlist-api/core/controller"
	"setlist-api/core/errors"
	"setlist-api/core/params"
	"setlist-api/core/validator"
	"setlist-api/modules/notification/dto"
	"setlist-api/modules/notification/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	service service.NotificationServiceInterface
	controller.BaseController
}

func NewNotificationController(service service.NotificationServiceInterface) *NotificationController {
	return &NotificationController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetMyNotifications handles GET /notifications?page=&limit=
func (c *NotificationController) GetMyNotifications(ctx echo.Context) error {
	userID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	queryParams := params.NewQueryParams(ctx)
	result, appErr := c.service.GetMyNotifications(ctx.Request().Context(), userID, *queryParams)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Notifications retrieved successfully")
}

func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	userID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.MarkAsReadRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if result := validator.Validate(req); result.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, result.First(), result)
	}

	if appErr := c.service.MarkAsRead(ctx.Request().Context(), userID, req.IDs); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Marked as read successfully")
}

func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	userID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	if appErr := c.service.MarkAllAsRead(ctx.Request().Context(), userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Marked all as read successfully")
}

// MarkProjectAsRead handles PUT /projects/:id/notifications/mark-read
func (c *NotificationController) MarkProjectAsRead(ctx echo.Context) error {
	userID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	projectID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid project id")
	}

	if appErr := c.service.MarkProjectAsRead(ctx.Request().Context(), userID, projectID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Project notifications marked as read")
}

func (c *NotificationController) CountUnread(ctx echo.Context) error {
	userID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	count, appErr := c.service.CountUnread(ctx.Request().Context(), userID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, dto.UnreadCountResponse{Count: count}, "Unread count retrieved")
}
