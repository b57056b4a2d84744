package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vidhub/backend/internal/apierror"
	"github.com/vidhub/backend/internal/auth"
	"github.com/vidhub/backend/internal/logging"
	"github.com/vidhub/backend/internal/models"
	"github.com/vidhub/backend/internal/repositories"
)

// Response is the success envelope shared by every endpoint.
type Response struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts an error-returning handler; every failure is rendered by apierror.Write.
func handle(exposeErrors bool, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			apierror.Write(r.Context(), w, err, exposeErrors)
		}
	}
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := Response{Success: status < http.StatusBadRequest, StatusCode: status, Message: message, Data: data}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}

// storeError maps repository sentinels onto API errors; notFound is the message for a missing record.
func storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apierror.NotFound(notFound).Wrap(err)
	case errors.Is(err, repositories.ErrConflict):
		return apierror.Conflict("Resource already exists").Wrap(err)
	case errors.Is(err, repositories.ErrConstraint):
		return apierror.BadRequest("Request violates a data constraint").Wrap(err)
	default:
		return apierror.Internal("Internal Server Error", err)
	}
}

func currentUser(r *http.Request) (models.User, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return models.User{}, apierror.Unauthorized("Unauthorized request")
	}
	return user, nil
}

type empty struct{}

func logger(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context())
}
