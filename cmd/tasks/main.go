package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	_ "github.com/taskflow/approval-platform/docs"
	"github.com/taskflow/approval-platform/internal/api"
	"github.com/taskflow/approval-platform/internal/api/handler"
	"github.com/taskflow/approval-platform/internal/app"
	"github.com/taskflow/approval-platform/internal/core/service"
	"github.com/taskflow/approval-platform/internal/infrastructure/config"
	redisdb "github.com/taskflow/approval-platform/internal/infrastructure/db/redis"
	"github.com/taskflow/approval-platform/internal/infrastructure/queue"
	"github.com/taskflow/approval-platform/pkg/logger"
)

// @title                       Taskflow Task API
// @version                     1.0
// @description                 Creates tasks and runs the PENDING to APPROVED/REJECTED review workflow.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Service: "tasks",
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("task service stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := app.OpenStorage(ctx, "tasks", cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	checks := store.Checks
	notifiers := queue.Fanout{queue.NewLogNotifier(logger.Component("notifier"))}
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		notifiers = append(notifiers, redisdb.NewPublisher(rdb, cfg.Notifier.Channel))
		checks = append(checks, handler.RedisCheck(rdb))
		log.Info().Str("channel", cfg.Notifier.Channel).Msg("publishing task notifications to redis")
	}

	dispatcher := queue.NewDispatcher(cfg.Notifier.Workers, notifiers, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	// Only Validate is used here; tokens are issued by the identity service.
	tokens, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		return err
	}

	tasks := service.NewTaskService(store.Tasks, dispatcher, logger.Component("workflow"))

	e := api.NewTaskRouter(api.Options{
		Service:     "tasks",
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
		Checks:      checks,
	}, api.TaskDeps{
		Tasks:  tasks,
		Tokens: tokens,
	})

	return app.Serve(ctx, e, ":"+cfg.Port, log)
}
