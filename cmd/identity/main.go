package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	_ "github.com/taskflow/approval-platform/docs"
	"github.com/taskflow/approval-platform/internal/api"
	"github.com/taskflow/approval-platform/internal/app"
	"github.com/taskflow/approval-platform/internal/core/service"
	"github.com/taskflow/approval-platform/internal/infrastructure/config"
	"github.com/taskflow/approval-platform/pkg/logger"
)

// @title                       Taskflow Identity API
// @version                     1.0
// @description                 Registers users and issues bearer tokens for the task service.
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
		Service: "identity",
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("identity service stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := app.OpenStorage(ctx, "identity", cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	tokens, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		return err
	}

	auth, err := service.NewAuthService(store.Users, tokens, service.NewBcryptHasher(cfg.Auth.BcryptCost), logger.Component("auth"))
	if err != nil {
		return err
	}

	e := api.NewIdentityRouter(api.Options{
		Service:     "identity",
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
		Checks:      store.Checks,
	}, api.IdentityDeps{
		Auth:           auth,
		Tokens:         tokens,
		LoginRateLimit: cfg.Auth.LoginRateLimit,
	})

	return app.Serve(ctx, e, ":"+cfg.Port, log)
}
