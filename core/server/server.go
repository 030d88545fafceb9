package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"setlist-api/core/cache"
	"setlist-api/core/config"
	"setlist-api/core/controller"
	"setlist-api/core/database"
	"setlist-api/core/logger"
	"setlist-api/core/mailer"
	"setlist-api/core/metrics"
	"setlist-api/core/middleware"
	"setlist-api/core/queue"
	"setlist-api/core/storage"
	"setlist-api/modules/event"
	"setlist-api/modules/invitation"
	"setlist-api/modules/notification"
	"setlist-api/modules/project"
	"setlist-api/modules/user"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

// Run loads configuration, wires every module and serves HTTP until SIGINT
// or SIGTERM. The reminder worker runs alongside when redis is configured.
func Run() error {
	cfg, err := config.Init()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	in, err := newInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer in.close()

	e := newEcho(cfg, db, in)

	if in.worker != nil {
		if err := in.worker.Start(in.tasks); err != nil {
			return fmt.Errorf("reminder worker: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Info("Server starting", "addr", addr, "env", cfg.App.Env)
		if err := e.Start(addr); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Server shutting down")
	case err = <-errCh:
		logger.Error("Server:Run:Error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if in.worker != nil {
		in.worker.Shutdown()
	}
	if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("Server:Shutdown:Error", "error", shutdownErr)
	}
	return err
}

// infra holds the optional collaborators that depend on redis, SMTP and S3.
type infra struct {
	redis     *redis.Client
	locker    cache.Locker
	scheduler queue.Scheduler
	client    *queue.Client
	worker    *asynq.Server
	tasks     *asynq.ServeMux
	mailer    mailer.Gateway
	store     storage.ObjectStore
}

func newInfra(ctx context.Context, cfg *config.Config) (*infra, error) {
	renderer, err := mailer.NewRenderer(cfg.SMTP.FromName)
	if err != nil {
		return nil, fmt.Errorf("mail templates: %w", err)
	}

	in := &infra{
		locker:    cache.NewLocalLocker(),
		scheduler: queue.NoopScheduler{},
		mailer:    mailer.NewMailer(renderer, mailer.NewSMTPSender(cfg.SMTP)),
		store:     storage.NewS3Store(cfg.S3),
	}

	if cfg.Redis.Addr == "" {
		logger.Warn("Redis not configured, using in-process locks and skipping event reminders")
		return in, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	in.redis = client
	in.locker = cache.NewRedisLocker(client)

	in.client = queue.NewClient(cfg.Redis)
	in.scheduler = in.client
	in.worker = queue.NewServer(cfg.Redis)
	in.tasks = asynq.NewServeMux()
	return in, nil
}

func (in *infra) close() {
	if in.client != nil {
		if err := in.client.Close(); err != nil {
			logger.Warn("Queue client close failed", "error", err)
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			logger.Warn("Redis close failed", "error", err)
		}
	}
}

func newEcho(cfg *config.Config, db database.IDatabase, in *infra) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = controller.HTTPErrorHandler

	mw := middleware.NewMiddleware(cfg.JWT.Secret)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(mw.RequestLogger())
	e.Use(echomw.CORS())
	e.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(20))))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api")

	users := user.Init(api, db, mw)
	projects := project.Init(api, db, mw, in.store)
	notifications := notification.Init(api, db, mw, projects.Repository)
	invitation.Init(api, db, mw, cfg, invitation.Deps{
		Projects: projects,
		Users:    users,
		Mailer:   in.mailer,
		Notifier: notifications,
		Locker:   in.locker,
	})
	event.Init(api, db, mw, cfg, event.Deps{
		Projects:  projects,
		Scheduler: in.scheduler,
		Mailer:    in.mailer,
		Notifier:  notifications,
		Tasks:     in.tasks,
	})

	return e
}
