package controller

import (
	"setlist-api/core/controller"
	"setlist-api/core/errors"
	"setlist-api/modules/project/dto"
	"setlist-api/modules/project/service"
	"setlist-api/modules/project/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxImageSize = 5 << 20

type ProjectController struct {
	controller.BaseController
	service service.ProjectServiceInterface
}

func NewProjectController(service service.ProjectServiceInterface) *ProjectController {
	return &ProjectController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

func (c *ProjectController) Create(ctx echo.Context) error {
	actorID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.ProjectRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}
	if result := validator.ValidateProjectRequest(req); result.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, result.First(), result)
	}

	resp, appErr := c.service.CreateProject(ctx.Request().Context(), actorID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Project created")
}

func (c *ProjectController) List(ctx echo.Context) error {
	actorID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	resp, appErr := c.service.ListMyProjects(ctx.Request().Context(), actorID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Projects retrieved")
}

func (c *ProjectController) Get(ctx echo.Context) error {
	actorID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid project ID")
	}

	resp, appErr := c.service.GetProject(ctx.Request().Context(), actorID, id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Project retrieved")
}

func (c *ProjectController) Members(ctx echo.Context) error {
	actorID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid project ID")
	}

	resp, appErr := c.service.ListMembers(ctx.Request().Context(), actorID, id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Members retrieved")
}

// UploadImage handles PUT /projects/:id/image (multipart field "image").
func (c *ProjectController) UploadImage(ctx echo.Context) error {
	actorID, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid project ID")
	}

	fh, err := ctx.FormFile("image")
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "image is required")
	}
	if fh.Size > maxImageSize {
		return c.BadRequest(errors.ErrInvalidInput, "image must be at most 5MB")
	}
	file, err := fh.Open()
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "image could not be read")
	}
	defer file.Close()

	resp, appErr := c.service.UploadImage(ctx.Request().Context(), actorID, id, fh.Filename, fh.Header.Get("Content-Type"), file)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Image updated")
}
