package auth

import (
	"context"

	"warbler/domain"
	"warbler/errs"
)

const (
	userKey privateKey = "user"
)

type privateKey string

// SetUser returns a copy of ctx carrying the current user.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the current user stored in ctx, or nil for anonymous requests.
func GetUser(ctx context.Context) *domain.User {
	if temp := ctx.Value(userKey); temp != nil {
		if user, ok := temp.(*domain.User); ok {
			return user
		}
	}
	return nil
}

// Require returns the current user, or an unauthorized error if there is none.
func Require(ctx context.Context) (*domain.User, error) {
	if user := GetUser(ctx); user != nil {
		return user, nil
	}
	return nil, errs.Errorf(errs.EUNAUTHORIZED, "Access unauthorized.")
}
