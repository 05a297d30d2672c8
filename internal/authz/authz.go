// Package authz decides whether an identity may perform an action on a resource.
package authz

import (
	"github.com/sanLimbu/todo-app/internal"
)

// Action is an operation guarded by Authorize.
type Action string

const (
	ActionViewList   Action = "view-list"
	ActionAdd        Action = "add"
	ActionEdit       Action = "edit"
	ActionComplete   Action = "complete"
	ActionIncomplete Action = "incomplete"
	ActionDelete     Action = "delete"

	ActionAdminDashboard Action = "admin-dashboard"
	ActionListUsers      Action = "list-users"
	ActionCreateUser     Action = "create-user"
	ActionEditUser       Action = "edit-user"
	ActionDeleteUser     Action = "delete-user"
)

// Reason explains a denied Decision.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnauthenticated
	ReasonNotFound
	ReasonAdminOnly
)

const (
	MessageUnauthenticated = "Please log in to access this page."
	MessageNotFound        = "Task not found or unauthorized access."
	MessageAdminOnly       = "Access denied: Admins only."
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Message returns the human readable explanation of a denied Decision.
func (d Decision) Message() string {
	switch d.Reason {
	case ReasonUnauthenticated:
		return MessageUnauthenticated
	case ReasonNotFound:
		return MessageNotFound
	case ReasonAdminOnly:
		return MessageAdminOnly
	}

	return ""
}

// Err returns nil when allowed, otherwise an *internal.Error coded after the Reason.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}

	code := internal.ErrorCodeUnknown

	switch d.Reason {
	case ReasonUnauthenticated:
		code = internal.ErrorCodeUnauthenticated
	case ReasonNotFound:
		code = internal.ErrorCodeNotFound
	case ReasonAdminOnly:
		code = internal.ErrorCodePermissionDenied
	}

	return internal.NewErrorf(code, "%s", d.Message())
}

func allow() Decision { return Decision{Allowed: true} }

func deny(r Reason) Decision { return Decision{Reason: r} }

// Authorize evaluates, in order: authentication, task ownership for actions on a specific
// task, and the admin flag for account management. task is nil when it does not exist or
// the action is not task specific.
//
// A missing task and a task owned by someone else are denied with the same Reason.
func Authorize(id *internal.Identity, action Action, task *internal.Task) Decision {
	if id == nil {
		return deny(ReasonUnauthenticated)
	}

	switch action {
	case ActionViewList, ActionAdd:
		return allow()
	case ActionEdit, ActionComplete, ActionIncomplete, ActionDelete:
		if task == nil || task.UserID != id.UserID {
			return deny(ReasonNotFound)
		}

		return allow()
	case ActionAdminDashboard, ActionListUsers, ActionCreateUser, ActionEditUser, ActionDeleteUser:
		if !id.IsAdmin {
			return deny(ReasonAdminOnly)
		}

		return allow()
	}

	return deny(ReasonAdminOnly)
}
