package router

import (
	"setlist-api/core/middleware"
	"setlist-api/modules/notification/controller"

	"github.com/labstack/echo/v4"
)

type NotificationRouter struct {
	controller *controller.NotificationController
}

func NewNotificationRouter(controller *controller.NotificationController) *NotificationRouter {
	return &NotificationRouter{controller: controller}
}

// Register mounts the caller's inbox under /notifications and the per-project
// read marker next to the other project routes.
func (r *NotificationRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	inbox := g.Group("/notifications", mw.AuthMiddleware())
	inbox.GET("", r.controller.GetMyNotifications)
	inbox.GET("/unread-count", r.controller.CountUnread)
	inbox.PUT("/mark-read", r.controller.MarkAsRead)
	inbox.PUT("/mark-all-read", r.controller.MarkAllAsRead)

	g.PUT("/projects/:id/notifications/mark-read", r.controller.MarkProjectAsRead, mw.AuthMiddleware())
}
