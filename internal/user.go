package internal

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// User is an account allowed to sign in.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
}

// Identity is the authenticated principal acting on a request.
type Identity struct {
	UserID   int64
	Username string
	IsAdmin  bool
}

// NewIdentity returns the Identity of u.
func NewIdentity(u User) *Identity {
	return &Identity{
		UserID:   u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the Identity stored in ctx, nil when the request is anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// CreateUserParams defines the values required to create a User.
type CreateUserParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// NewCreateUserParams normalizes raw form values.
func NewCreateUserParams(username, password string, isAdmin bool) CreateUserParams {
	return CreateUserParams{
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
		IsAdmin:  isAdmin,
	}
}

// Validate indicates whether the fields are valid.
func (p CreateUserParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required.Error("Username and password are required.")),
		validation.Field(&p.Password, validation.Required.Error("Username and password are required.")),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}

// UpdateUserParams defines the values an administrator can change on a User.
type UpdateUserParams struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// NewUpdateUserParams normalizes raw form values.
func NewUpdateUserParams(username string, isAdmin bool) UpdateUserParams {
	return UpdateUserParams{
		Username: strings.TrimSpace(username),
		IsAdmin:  isAdmin,
	}
}

// Validate indicates whether the fields are valid.
func (p UpdateUserParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required.Error("Username is required.")),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}

// Dashboard summarizes the accounts managed by administrators.
type Dashboard struct {
	Users  int
	Admins int
	Tasks  int
}
