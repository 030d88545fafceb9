package invitation

import (
	"setlist-api/core/cache"
	"setlist-api/core/config"
	"setlist-api/core/database"
	"setlist-api/core/mailer"
	"setlist-api/core/middleware"
	"setlist-api/modules/invitation/controller"
	"setlist-api/modules/invitation/repository"
	"setlist-api/modules/invitation/router"
	"setlist-api/modules/invitation/service"
	notifservice "setlist-api/modules/notification/service"
	"setlist-api/modules/project"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	Projects *project.Module
	Users    service.UserReader
	Mailer   mailer.Gateway
	Notifier notifservice.Emitter
	Locker   cache.Locker
}

// Init initializes the invitation module and returns the service for use by other modules
func Init(g *echo.Group, db database.IDatabase, mw *middleware.Middleware, cfg *config.Config, deps Deps) *service.InvitationService {
	repo := repository.NewInvitationRepository(db)
	svc := service.NewInvitationService(
		repo,
		deps.Projects.Repository,
		deps.Users,
		deps.Projects.Guard,
		deps.Mailer,
		deps.Notifier,
		deps.Locker,
		service.Settings{
			BaseURL:         cfg.App.BaseURL,
			MaxUsers:        cfg.App.MaxUsers,
			UserCapMargin:   cfg.Invitation.UserCapMargin,
			CodeTTL:         cfg.Invitation.CodeTTL,
			CodeCooldown:    cfg.Invitation.CodeCooldown,
			CodeMaxAttempts: cfg.Invitation.CodeMaxAttempts,
		},
	)
	ctrl := controller.NewInvitationController(svc)
	r := router.NewInvitationRouter(ctrl)

	r.Register(g, mw)

	return svc
}
