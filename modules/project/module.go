package project

import (
	"setlist-api/core/database"
	"setlist-api/core/middleware"
	"setlist-api/core/storage"
	"setlist-api/modules/project/controller"
	"setlist-api/modules/project/guard"
	"setlist-api/modules/project/repository"
	"setlist-api/modules/project/router"
	"setlist-api/modules/project/service"

	"github.com/labstack/echo/v4"
)

// Module exposes what the invitation and event modules need from projects.
type Module struct {
	Repository repository.ProjectRepositoryInterface
	Guard      *guard.Guard
}

func Init(g *echo.Group, db database.IDatabase, mw *middleware.Middleware, store storage.ObjectStore) *Module {
	repo := repository.NewProjectRepository(db)
	gd := guard.NewGuard(repo)
	svc := service.NewProjectService(repo, gd, store)
	ctrl := controller.NewProjectController(svc)

	router.NewProjectRouter(ctrl).Register(g, mw)

	return &Module{Repository: repo, Guard: gd}
}
