package router

import (
	"setlist-api/core/middleware"
	"setlist-api/modules/user/controller"

	"github.com/labstack/echo/v4"
)

type UserRouter struct {
	controller *controller.UserController
}

func NewUserRouter(controller *controller.UserController) *UserRouter {
	return &UserRouter{controller: controller}
}

func (r *UserRouter) Register(g *echo.Group, mw *middleware.Middleware) {
	users := g.Group("/users", mw.AuthMiddleware())
	users.GET("/me", r.controller.GetMe)
	users.GET("/:id", r.controller.GetProfile)
}
