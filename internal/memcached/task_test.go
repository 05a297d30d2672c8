package memcached_test

import (
	"context"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/memcached"
	"github.com/sanLimbu/todo-app/internal/sqlite"
	"github.com/sanLimbu/todo-app/internal/sqlite/sqlitetesting"
)

// With no memcached listening every lookup is a miss and the store answers.
func TestTask_Unreachable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := sqlitetesting.New(t)

	user, err := sqlite.NewUser(db).Create(ctx, "alice", "hash", false)
	require.NoError(t, err)

	client := memcache.New("127.0.0.1:1")
	client.Timeout = 50 * time.Millisecond

	repo := memcached.NewTask(client, sqlite.NewTask(db), zap.NewNop())

	task, err := repo.Create(ctx, user.ID, internal.NewTaskParams("cached", "", "", "a, b", "Low"))
	require.NoError(t, err)

	require.NoError(t, repo.SetCompleted(ctx, task.ID, true))

	got, err := repo.Find(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, got.Completed)
	require.Equal(t, []string{"a", "b"}, got.Tags)

	owned, err := repo.ByOwner(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)

	require.NoError(t, repo.Delete(ctx, task.ID))

	_, err = repo.Find(ctx, task.ID)
	require.Equal(t, internal.ErrorCodeNotFound, internal.CodeOf(err))
}
