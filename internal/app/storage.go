package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taskflow/approval-platform/internal/api/handler"
	"github.com/taskflow/approval-platform/internal/core/ports"
	"github.com/taskflow/approval-platform/internal/infrastructure/config"
	"github.com/taskflow/approval-platform/internal/infrastructure/db/memory"
	mongodb "github.com/taskflow/approval-platform/internal/infrastructure/db/mongo"
)

// Storage bundles the repositories selected by STORAGE_DRIVER.
type Storage struct {
	Users  ports.UserRepository
	Tasks  ports.TaskRepository
	Checks []handler.Check
	Close  func(context.Context) error
}

// OpenStorage connects the configured backend and prepares its indexes.
func OpenStorage(ctx context.Context, service string, cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &Storage{
			Users: memory.NewUserRepository(),
			Tasks: memory.NewTaskRepository(),
			Close: func(context.Context) error { return nil },
		}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "taskflow-" + service,
	})
	if err != nil {
		return nil, err
	}

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("user indexes: %w", err)
	}
	tasks := mongodb.NewTaskRepository(db)
	if err := tasks.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("task indexes: %w", err)
	}

	log.Info().Str("database", db.Name()).Msg("connected to mongodb")
	return &Storage{
		Users:  users,
		Tasks:  tasks,
		Checks: []handler.Check{handler.MongoCheck(db)},
		Close:  client.Disconnect,
	}, nil
}
