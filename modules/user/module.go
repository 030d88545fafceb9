package user

import (
	"setlist-api/core/database"
	"setlist-api/core/middleware"
	"setlist-api/modules/user/controller"
	"setlist-api/modules/user/repository"
	"setlist-api/modules/user/router"
	"setlist-api/modules/user/service"

	"github.com/labstack/echo/v4"
)

// Init registers the user routes and returns the repository for other modules.
func Init(g *echo.Group, db database.IDatabase, mw *middleware.Middleware) repository.UserRepositoryInterface {
	repo := repository.NewUserRepository(db)
	svc := service.NewUserService(repo)
	ctrl := controller.NewUserController(svc)

	router.NewUserRouter(ctrl).Register(g, mw)

	return repo
}
