package authz_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/authz"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	alice := &internal.Identity{UserID: 1, Username: "alice"}
	admin := &internal.Identity{UserID: 2, Username: "root", IsAdmin: true}
	alicesTask := &internal.Task{ID: "t1", UserID: 1}

	taskActions := []authz.Action{authz.ActionEdit, authz.ActionComplete, authz.ActionIncomplete, authz.ActionDelete}
	adminActions := []authz.Action{
		authz.ActionAdminDashboard, authz.ActionListUsers,
		authz.ActionCreateUser, authz.ActionEditUser, authz.ActionDeleteUser,
	}

	type check struct {
		name   string
		id     *internal.Identity
		action authz.Action
		task   *internal.Task
		reason authz.Reason
	}

	var checks []check

	for _, action := range append(append([]authz.Action{authz.ActionViewList, authz.ActionAdd}, taskActions...), adminActions...) {
		checks = append(checks, check{"anonymous " + string(action), nil, action, alicesTask, authz.ReasonUnauthenticated})
	}

	for _, action := range taskActions {
		checks = append(checks,
			check{"owner " + string(action), alice, action, alicesTask, authz.ReasonNone},
			check{"missing " + string(action), alice, action, nil, authz.ReasonNotFound},
			check{"admin on foreign " + string(action), admin, action, alicesTask, authz.ReasonNotFound},
		)
	}

	for _, action := range adminActions {
		checks = append(checks,
			check{"user " + string(action), alice, action, nil, authz.ReasonAdminOnly},
			check{"admin " + string(action), admin, action, nil, authz.ReasonNone},
		)
	}

	checks = append(checks,
		check{"user lists", alice, authz.ActionViewList, nil, authz.ReasonNone},
		check{"user adds", alice, authz.ActionAdd, nil, authz.ReasonNone},
		check{"unknown action", admin, authz.Action("launch"), nil, authz.ReasonAdminOnly},
	)

	for _, c := range checks {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			got := authz.Authorize(c.id, c.action, c.task)
			require.Equal(t, c.reason, got.Reason)
			require.Equal(t, c.reason == authz.ReasonNone, got.Allowed)
		})
	}
}

func TestDecision_Err(t *testing.T) {
	t.Parallel()

	require.NoError(t, authz.Decision{Allowed: true}.Err())

	tests := []struct {
		reason authz.Reason
		code   internal.ErrorCode
		msg    string
	}{
		{authz.ReasonUnauthenticated, internal.ErrorCodeUnauthenticated, authz.MessageUnauthenticated},
		{authz.ReasonNotFound, internal.ErrorCodeNotFound, authz.MessageNotFound},
		{authz.ReasonAdminOnly, internal.ErrorCodePermissionDenied, authz.MessageAdminOnly},
	}

	for _, tt := range tests {
		err := authz.Decision{Reason: tt.reason}.Err()
		require.Equal(t, tt.code, internal.CodeOf(err))
		require.EqualError(t, err, tt.msg)
	}
}
