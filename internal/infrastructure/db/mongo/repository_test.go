package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

// testDatabase connects to MONGO_TEST_URI and returns a throwaway database.
// Tests are skipped when the variable is unset.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	client, db, err := Connect(ctx, Config{URI: uri, Database: "taskflow_test_" + uuid.NewString()[:8]})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))

	created, err := repo.Create(ctx, &domain.User{Username: "alice", Email: "a@example.com", PasswordHash: "$2a$10$x", Role: domain.RoleAdmin, CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", Email: "b@example.com", PasswordHash: "$2a$10$y", Role: domain.RoleUser})
	assert.True(t, errors.Is(err, domain.ErrUserExists))

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, found.Role)

	_, err = repo.FindByUsername(ctx, "ghost")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
}

func TestTaskRepository_ConditionalUpdate(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := NewTaskRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))

	task, err := domain.NewTask("Review budget", "", "bob", "alice", time.Now())
	require.NoError(t, err)
	created, err := repo.Create(ctx, task)
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, created.ID, domain.StatusPending, domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)

	_, err = repo.UpdateStatus(ctx, created.ID, domain.StatusPending, domain.StatusRejected)
	assert.True(t, errors.Is(err, domain.ErrWriteConflict))

	_, err = repo.UpdateStatus(ctx, "000000000000000000000000", domain.StatusPending, domain.StatusRejected)
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))

	_, err = repo.FindByID(ctx, "not-hex")
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))

	approved := domain.StatusApproved
	list, err := repo.List(ctx, &approved)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}
