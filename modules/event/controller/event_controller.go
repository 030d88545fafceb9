package controller

import (
	"setlist-api/core/controller"
	"setlist-api/core/errors"
	"setlist-api/modules/event/dto"
	"setlist-api/modules/event/service"
	"setlist-api/modules/event/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type EventController struct {
	controller.BaseController
	service service.EventServiceInterface
}

func NewEventController(service service.EventServiceInterface) *EventController {
	return &EventController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

// Create handles POST /projects/:id/events
func (c *EventController) Create(ctx echo.Context) error {
	actorID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	projectID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid project ID")
	}

	req := new(dto.CreateEventRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}
	if result := validator.ValidateCreateEvent(req); result.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, result.First(), result)
	}

	resp, appErr := c.service.CreateEvent(ctx.Request().Context(), actorID, projectID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Event created")
}

// List handles GET /projects/:id/events
func (c *EventController) List(ctx echo.Context) error {
	actorID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	projectID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid project ID")
	}

	resp, appErr := c.service.ListProjectEvents(ctx.Request().Context(), actorID, projectID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Events retrieved")
}

func (c *EventController) Get(ctx echo.Context) error {
	actorID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid event ID")
	}

	resp, appErr := c.service.GetEvent(ctx.Request().Context(), actorID, id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Event retrieved")
}

func (c *EventController) Delete(ctx echo.Context) error {
	actorID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid event ID")
	}

	if appErr := c.service.DeleteEvent(ctx.Request().Context(), actorID, id); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Event deleted")
}

func (c *EventController) UpsertException(ctx echo.Context) error {
	actorID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid event ID")
	}

	req := new(dto.ExceptionRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}
	if result := validator.ValidateException(req); result.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, result.First(), result)
	}

	resp, appErr := c.service.UpsertException(ctx.Request().Context(), actorID, id, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Exception saved")
}

func (c *EventController) ListExceptions(ctx echo.Context) error {
	actorID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid event ID")
	}

	resp, appErr := c.service.ListExceptions(ctx.Request().Context(), actorID, id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Exceptions retrieved")
}
