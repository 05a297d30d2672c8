package rabbitmq_test

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/rabbitmq"
)

func encode(t *testing.T, v interface{}) []byte {
	t.Helper()

	var b bytes.Buffer
	require.NoError(t, gob.NewEncoder(&b).Encode(v))

	return b.Bytes()
}

func TestDecodeTask(t *testing.T) {
	t.Parallel()

	task := internal.Task{
		ID:       "abc",
		Title:    "Pay rent",
		DueDate:  "2024-07-01",
		Priority: internal.PriorityHigh,
		Tags:     []string{"home", "bills"},
		UserID:   7,
	}

	got, err := rabbitmq.DecodeTask(encode(t, task))
	require.NoError(t, err)
	require.Equal(t, task, got)

	_, err = rabbitmq.DecodeTask([]byte("garbage"))
	require.Equal(t, internal.ErrorCodeInvalidArgument, internal.CodeOf(err))
}

func TestDecodeID(t *testing.T) {
	t.Parallel()

	got, err := rabbitmq.DecodeID(encode(t, "abc"))
	require.NoError(t, err)
	require.Equal(t, "abc", got)

	_, err = rabbitmq.DecodeID(nil)
	require.Equal(t, internal.ErrorCodeInvalidArgument, internal.CodeOf(err))
}
