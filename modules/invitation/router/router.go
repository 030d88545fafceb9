package router

import (
	"setlist-api/core/middleware"
	"setlist-api/modules/invitation/controller"

	"github.com/labstack/echo/v4"
)

type InvitationRouter struct {
	controller *controller.InvitationController
}

func NewInvitationRouter(controller *controller.InvitationController) *InvitationRouter {
	return &InvitationRouter{
		controller: controller,
	}
}

func (r *InvitationRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	invitations := g.Group("/invitations")
	invitations.Use(mw.AuthMiddleware())

	invitations.GET("", r.controller.GetPendingInvitations)
	invitations.POST("/send", r.controller.SendInvitation)
	invitations.POST("/request", r.controller.RequestCollaboration)
	invitations.POST("/accept/:token", r.controller.AcceptInvitation)
	invitations.POST("/decline/:token", r.controller.DeclineInvitation)
	invitations.POST("/cancel/:token", r.controller.CancelInvitation)
	invitations.POST("/invite-by-email", r.controller.InviteByEmail)
	invitations.POST("/join-with-code", r.controller.JoinWithCode)

	g.GET("/projects/:id/invitations", r.controller.GetProjectInvitations, mw.AuthMiddleware())
}
