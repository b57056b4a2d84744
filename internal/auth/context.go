package auth

import (
	"context"

	"github.com/vidhub/backend/internal/models"
)

type identityKey struct{}

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (models.User, bool) {
	if ctx == nil {
		return models.User{}, false
	}
	user, ok := ctx.Value(identityKey{}).(models.User)
	return user, ok && user.ID != ""
}
