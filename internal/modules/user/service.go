package user

import "context"

// RegisterInput carries a new account's fields. Role defaults to RoleUser
// when empty.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      Role
}

// Service defines user account business logic.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
}
