package router

import (
	"setlist-api/core/middleware"
	"setlist-api/modules/event/controller"

	"github.com/labstack/echo/v4"
)

type EventRouter struct {
	controller *controller.EventController
}

func NewEventRouter(controller *controller.EventController) *EventRouter {
	return &EventRouter{controller: controller}
}

func (r *EventRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	g.POST("/projects/:id/events", r.controller.Create, mw.AuthMiddleware())
	g.GET("/projects/:id/events", r.controller.List, mw.AuthMiddleware())

	events := g.Group("/events", mw.AuthMiddleware())
	events.GET("/:id", r.controller.Get)
	events.DELETE("/:id", r.controller.Delete)
	events.POST("/:id/exceptions", r.controller.UpsertException)
	events.GET("/:id/exceptions", r.controller.ListExceptions)
}
