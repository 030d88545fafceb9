package event

import (
	"setlist-api/core/config"
	"setlist-api/core/database"
	"setlist-api/core/mailer"
	"setlist-api/core/middleware"
	"setlist-api/core/queue"
	"setlist-api/modules/event/controller"
	"setlist-api/modules/event/repository"
	"setlist-api/modules/event/router"
	"setlist-api/modules/event/service"
	notifservice "setlist-api/modules/notification/service"
	"setlist-api/modules/project"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	Projects  *project.Module
	Scheduler queue.Scheduler
	Mailer    mailer.Gateway
	Notifier  notifservice.Emitter
	// Tasks receives the reminder handler; nil when no worker runs.
	Tasks *asynq.ServeMux
}

func Init(g *echo.Group, db database.IDatabase, mw *middleware.Middleware, cfg *config.Config, deps Deps) *service.EventService {
	repo := repository.NewEventRepository(db)
	svc := service.NewEventService(repo, deps.Projects.Repository, deps.Projects.Guard, deps.Scheduler, deps.Mailer, deps.Notifier, service.Settings{
		BaseURL:      cfg.App.BaseURL,
		ReminderLead: cfg.Event.ReminderLead,
	})
	ctrl := controller.NewEventController(svc)

	router.NewEventRouter(ctrl).Register(g, mw)

	if deps.Tasks != nil {
		service.NewReminderHandler(svc).Register(deps.Tasks)
	}
	return svc
}
