package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vidhub/backend/internal/apierror"
	"github.com/vidhub/backend/internal/auth"
	"github.com/vidhub/backend/internal/logging"
	"github.com/vidhub/backend/internal/models"
	"github.com/vidhub/backend/internal/repositories"
)

// AccessTokenCookie is the cookie carrying the access token.
const AccessTokenCookie = "accessToken"

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	VerifyAccess(token string) (auth.Claims, error)
}

// UserLookup loads the user a token was issued to.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Authenticate resolves the caller from the accessToken cookie or a bearer
// Authorization header. Failures short-circuit with 401 before next runs.
func Authenticate(tokens AccessVerifier, users UserLookup, exposeErrors bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := accessToken(r)
			if token == "" {
				apierror.Write(ctx, w, apierror.Unauthorized("Unauthorized request"), exposeErrors)
				return
			}

			claims, err := tokens.VerifyAccess(token)
			if err != nil {
				apierror.Write(ctx, w, apierror.Unauthorized("Invalid Access Token").Wrap(err), exposeErrors)
				return
			}

			user, err := users.FindByID(ctx, claims.UserID())
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					apierror.Write(ctx, w, apierror.Unauthorized("Invalid Access Token").Wrap(err), exposeErrors)
					return
				}
				apierror.Write(ctx, w, apierror.Internal("Unable to verify session", err), exposeErrors)
				return
			}
			user.Password = ""
			user.RefreshToken = ""

			ctx = logging.With(ctx, "user_id", user.ID)
			ctx = auth.WithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
