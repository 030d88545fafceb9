package controller

import (
	"setlist-api/core/controller"
	"setlist-api/core/errors"
	"setlist-api/modules/invitation/dto"
	"setlist-api/modules/invitation/service"
	"setlist-api/modules/invitation/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type InvitationController struct {
	controller.BaseController
	service service.InvitationServiceInterface
}

func NewInvitationController(service service.InvitationServiceInterface) *InvitationController {
	return &InvitationController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

func (c *InvitationController) actor(ctx echo.Context) (service.Actor, *errors.AppError) {
	id, appErr := c.CurrentUserID(ctx)
	if appErr != nil {
		return service.Actor{}, appErr
	}
	return service.Actor{ID: id}, nil
}

// SendInvitation handles POST /invitations/send
func (c *InvitationController) SendInvitation(ctx echo.Context) error {
	actor, appErr := c.actor(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.SendInvitationRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}
	if result := validator.ValidateSendInvitation(req); result.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, result.First(), result)
	}

	resp, appErr := c.service.SendInvitation(ctx.Request().Context(), actor, req.RecipientID, req.ProjectID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, resp.Message)
}

// RequestCollaboration handles POST /invitations/request
func (c *InvitationController) RequestCollaboration(ctx echo.Context) error {
	actor, appErr := c.actor(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.CollaborationRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}
	if result := validator.ValidateCollaborationRequest(req); result.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, result.First(), result)
	}

	resp, appErr := c.service.RequestCollaboration(ctx.Request().Context(), actor, req.ProjectID, req.TargetID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, resp.Message)
}

// AcceptInvitation handles POST /invitations/accept/:token
func (c *InvitationController) AcceptInvitation(ctx echo.Context) error {
	actor, appErr := c.actor(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	resp, appErr := c.service.AcceptInvitation(ctx.Request().Context(), actor, ctx.Param("token"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, resp.Message)
}

// DeclineInvitation handles POST /invitations/decline/:token
func (c *InvitationController) DeclineInvitation(ctx echo.Context) error {
	actor, appErr := c.actor(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	resp, appErr := c.service.DeclineInvitation(ctx.Request().Context(), actor, ctx.Param("token"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, resp.Message)
}

// CancelInvitation handles POST /invitations/cancel/:token
func (c *InvitationController) CancelInvitation(ctx echo.Context) error {
	actor, appErr := c.actor(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	resp, appErr := c.service.CancelInvitation(ctx.Request().Context(), actor, ctx.Param("token"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, resp.Message)
}

// InviteByEmail handles POST /invitations/invite-by-email
func (c *InvitationController) InviteByEmail(ctx echo.Context) error {
	actor, appErr := c.actor(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.InviteByEmailRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}
	if result := validator.ValidateInviteByEmail(req); result.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, result.First(), result)
	}

	resp, appErr := c.service.InviteByEmail(ctx.Request().Context(), actor, req.Email, req.ProjectID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, resp.Message)
}

// JoinWithCode handles POST /invitations/join-with-code
func (c *InvitationController) JoinWithCode(ctx echo.Context) error {
	actor, appErr := c.actor(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.JoinWithCodeRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data")
	}
	if result := validator.ValidateJoinWithCode(req); result.HasError() {
		return c.BadRequest(errors.ErrInvalidInput, result.First(), result)
	}

	resp, appErr := c.service.JoinWithCode(ctx.Request().Context(), actor, req.Code)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, resp.Message)
}

// GetPendingInvitations handles GET /invitations
func (c *InvitationController) GetPendingInvitations(ctx echo.Context) error {
	actor, appErr := c.actor(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	resp, appErr := c.service.ListPending(ctx.Request().Context(), actor)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Pending invitations retrieved")
}

// GetProjectInvitations handles GET /projects/:id/invitations
func (c *InvitationController) GetProjectInvitations(ctx echo.Context) error {
	actor, appErr := c.actor(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	projectID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid project ID")
	}

	resp, appErr := c.service.ListProjectInvitations(ctx.Request().Context(), actor, projectID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Project invitations retrieved")
}
