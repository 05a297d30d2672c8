package envvar_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/envvar"
)

type mapProvider map[string]string

func (m mapProvider) Get(key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", errors.New("not found")
	}

	return v, nil
}

func TestConfiguration_Get(t *testing.T) {
	t.Setenv("TODO_PLAIN", "plain")
	t.Setenv("TODO_SECRET", "ignored")
	t.Setenv("TODO_SECRET_SECURE", "app:secret")
	t.Setenv("TODO_MISSING_SECURE", "app:missing")

	conf := envvar.New(mapProvider{"app:secret": "s3cret"})

	val, err := conf.Get("TODO_PLAIN")
	require.NoError(t, err)
	require.Equal(t, "plain", val)

	val, err = conf.Get("TODO_SECRET")
	require.NoError(t, err)
	require.Equal(t, "s3cret", val)

	_, err = conf.Get("TODO_MISSING")
	require.Equal(t, internal.ErrorCodeInvalidArgument, internal.CodeOf(err))

	val, err = conf.Get("TODO_UNDEFINED")
	require.NoError(t, err)
	require.Empty(t, val)

	_, err = envvar.New(nil).Get("TODO_SECRET")
	require.Equal(t, internal.ErrorCodeInvalidArgument, internal.CodeOf(err))
}

func TestLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(filename, []byte("TODO_LOADED_FROM_FILE=yes\n"), 0o600))

	t.Cleanup(func() { os.Unsetenv("TODO_LOADED_FROM_FILE") })

	require.NoError(t, envvar.Load(filename))
	require.Equal(t, "yes", os.Getenv("TODO_LOADED_FROM_FILE"))

	require.Error(t, envvar.Load(filepath.Join(t.TempDir(), "missing.env")))
}
