package router

import (
	"setlist-api/core/middleware"
	"setlist-api/modules/project/controller"

	"github.com/labstack/echo/v4"
)

type ProjectRouter struct {
	controller *controller.ProjectController
}

func NewProjectRouter(controller *controller.ProjectController) *ProjectRouter {
	return &ProjectRouter{controller: controller}
}

func (r *ProjectRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	projects := g.Group("/projects", mw.AuthMiddleware())
	projects.POST("", r.controller.Create)
	projects.GET("", r.controller.List)
	projects.GET("/:id", r.controller.Get)
	projects.GET("/:id/members", r.controller.Members)
	projects.PUT("/:id/image", r.controller.UploadImage)
}
