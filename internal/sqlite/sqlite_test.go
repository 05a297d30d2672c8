package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/sqlite"
	"github.com/sanLimbu/todo-app/internal/sqlite/sqlitetesting"
)

func TestTask(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := sqlitetesting.New(t)

	users := sqlite.NewUser(db)
	tasks := sqlite.NewTask(db)

	alice, err := users.Create(ctx, "alice", "hash", false)
	require.NoError(t, err)

	bob, err := users.Create(ctx, "bob", "hash", false)
	require.NoError(t, err)

	first, err := tasks.Create(ctx, alice.ID, internal.NewTaskParams("first", "desc", "2024-01-02", "work, urgent", "High"))
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	_, err = tasks.Create(ctx, bob.ID, internal.NewTaskParams("bobs", "", "", "", "Low"))
	require.NoError(t, err)

	second, err := tasks.Create(ctx, alice.ID, internal.NewTaskParams("second", "", "", "", "Medium"))
	require.NoError(t, err)

	t.Run("Find round trips tags", func(t *testing.T) {
		got, err := tasks.Find(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, internal.Task{
			ID:          first.ID,
			Title:       "first",
			Description: "desc",
			DueDate:     "2024-01-02",
			Priority:    internal.PriorityHigh,
			Tags:        []string{"work", "urgent"},
			UserID:      alice.ID,
		}, got)

		got, err = tasks.Find(ctx, second.ID)
		require.NoError(t, err)
		require.Equal(t, []string{}, got.Tags)
	})

	t.Run("ByOwner keeps insertion order", func(t *testing.T) {
		got, err := tasks.ByOwner(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, first.ID, got[0].ID)
		require.Equal(t, second.ID, got[1].ID)
	})

	t.Run("Update and SetCompleted", func(t *testing.T) {
		require.NoError(t, tasks.Update(ctx, second.ID, internal.NewTaskParams("renamed", "d", "2030-05-05", "a", "Low")))
		require.NoError(t, tasks.SetCompleted(ctx, second.ID, true))
		require.NoError(t, tasks.SetCompleted(ctx, second.ID, true))

		got, err := tasks.Find(ctx, second.ID)
		require.NoError(t, err)
		require.Equal(t, "renamed", got.Title)
		require.Equal(t, []string{"a"}, got.Tags)
		require.True(t, got.Completed)
	})

	t.Run("missing records", func(t *testing.T) {
		_, err := tasks.Find(ctx, "missing")
		require.Equal(t, internal.ErrorCodeNotFound, internal.CodeOf(err))

		err = tasks.Update(ctx, "missing", internal.NewTaskParams("x", "", "", "", "Low"))
		require.Equal(t, internal.ErrorCodeNotFound, internal.CodeOf(err))

		require.Equal(t, internal.ErrorCodeNotFound, internal.CodeOf(tasks.SetCompleted(ctx, "missing", true)))
		require.Equal(t, internal.ErrorCodeNotFound, internal.CodeOf(tasks.Delete(ctx, "missing")))
	})

	t.Run("owner is mandatory", func(t *testing.T) {
		_, err := tasks.Create(ctx, 999, internal.NewTaskParams("orphan", "", "", "", "Low"))
		require.Error(t, err)
	})
}

func TestUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := sqlitetesting.New(t)

	users := sqlite.NewUser(db)
	tasks := sqlite.NewTask(db)

	root, err := users.Create(ctx, "root", "hash", true)
	require.NoError(t, err)

	alice, err := users.Create(ctx, "alice", "hash", false)
	require.NoError(t, err)

	_, err = users.Create(ctx, "alice", "other", false)
	require.Equal(t, internal.ErrorCodeAlreadyExists, internal.CodeOf(err))

	got, err := users.FindByUsername(ctx, "root")
	require.NoError(t, err)
	require.Equal(t, root, got)

	_, err = users.FindByUsername(ctx, "ghost")
	require.Equal(t, internal.ErrorCodeNotFound, internal.CodeOf(err))

	all, err := users.All(ctx)
	require.NoError(t, err)
	require.Equal(t, []internal.User{root, alice}, all)

	err = users.Update(ctx, alice.ID, internal.NewUpdateUserParams("root", false))
	require.Equal(t, internal.ErrorCodeAlreadyExists, internal.CodeOf(err))

	require.NoError(t, users.Update(ctx, alice.ID, internal.NewUpdateUserParams("alice2", true)))

	got, err = users.Find(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alice2", got.Username)
	require.True(t, got.IsAdmin)

	_, err = tasks.Create(ctx, alice.ID, internal.NewTaskParams("one", "", "", "", "Low"))
	require.NoError(t, err)
	_, err = tasks.Create(ctx, root.ID, internal.NewTaskParams("two", "", "", "", "Low"))
	require.NoError(t, err)

	stats, err := users.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, internal.Dashboard{Users: 2, Admins: 2, Tasks: 2}, stats)

	require.NoError(t, users.Delete(ctx, alice.ID))

	owned, err := tasks.ByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, owned)

	stats, err = users.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, internal.Dashboard{Users: 1, Admins: 1, Tasks: 1}, stats)

	_, err = users.Find(ctx, alice.ID)
	require.Equal(t, internal.ErrorCodeNotFound, internal.CodeOf(err))
	require.Equal(t, internal.ErrorCodeNotFound, internal.CodeOf(users.Delete(ctx, alice.ID)))
}
