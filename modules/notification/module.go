package notification

import (
	"setlist-api/core/database"
	"setlist-api/core/middleware"
	"setlist-api/modules/notification/controller"
	"setlist-api/modules/notification/repository"
	"setlist-api/modules/notification/router"
	"setlist-api/modules/notification/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.IDatabase, mw *middleware.Middleware, members service.MemberLister) *service.NotificationService {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo, members)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e, mw)

	return svc
}
