package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vidhub/backend/internal/apierror"
	"github.com/vidhub/backend/internal/media"
	"github.com/vidhub/backend/internal/models"
)

const maxJSONBody = 1 << 20

// pathID reads a UUID path parameter in canonical form.
func pathID(r *http.Request, name string) (string, error) {
	return parseID(chi.URLParam(r, name), name)
}

func parseID(raw, name string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apierror.BadRequest(name + " is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apierror.BadRequest("Invalid " + name)
	}
	return id.String(), nil
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return apierror.BadRequest("Invalid request body").Wrap(err)
	}
	return nil
}

// sortOptions whitelists the sortBy values a listing accepts.
type sortOptions []models.SortField

var (
	videoSorts   = sortOptions{models.SortCreatedAt, models.SortViews, models.SortDuration, models.SortTitle}
	commentSorts = sortOptions{models.SortCreatedAt, models.SortUpdatedAt}
)

func (o sortOptions) String() string {
	names := make([]string, len(o))
	for i, field := range o {
		names[i] = string(field)
	}
	return strings.Join(names, ", ")
}

// pageRequest parses page, limit, sortBy and sortType query parameters; sortBy
// must be one of allowed.
func pageRequest(r *http.Request, allowed sortOptions) (models.PageRequest, error) {
	q := r.URL.Query()
	page := models.PageRequest{Page: models.DefaultPage, Limit: models.DefaultLimit, SortBy: models.SortCreatedAt}

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return models.PageRequest{}, apierror.BadRequest("page must be a positive integer")
		}
		page.Page = n
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return models.PageRequest{}, apierror.BadRequest("limit must be a positive integer")
		}
		page.Limit = min(n, models.MaxLimit)
	}
	if raw := strings.TrimSpace(q.Get("sortBy")); raw != "" {
		field := models.SortField(raw)
		if !slices.Contains(allowed, field) {
			return models.PageRequest{}, apierror.BadRequest("Invalid sortBy", "sortBy must be one of "+allowed.String())
		}
		page.SortBy = field
	}
	switch strings.ToLower(strings.TrimSpace(q.Get("sortType"))) {
	case "", "desc":
	case "asc":
		page.Ascending = true
	default:
		return models.PageRequest{}, apierror.BadRequest("Invalid sortType", "sortType must be asc or desc")
	}
	return page, nil
}

// UploadConfig bounds multipart request bodies and names the spool directory.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

func parseUpload(w http.ResponseWriter, r *http.Request, cfg UploadConfig, fields ...string) (*media.Upload, error) {
	upload, err := media.ParseUpload(w, r, cfg.Dir, cfg.MaxBytes, fields...)
	switch {
	case err == nil:
		return upload, nil
	case errors.Is(err, media.ErrUploadTooLarge):
		return nil, apierror.New(http.StatusRequestEntityTooLarge, "Upload is too large")
	case errors.Is(err, media.ErrMalformedUpload):
		return nil, apierror.BadRequest("Expected multipart form data").Wrap(err)
	default:
		return nil, apierror.Internal("Unable to read upload", err)
	}
}

func uploadFile(r *http.Request, host MediaHost, path string) (media.Asset, error) {
	if host == nil {
		return media.Asset{}, apierror.Internal("Media storage unavailable", media.ErrStorageUnavailable)
	}
	asset, err := host.Upload(r.Context(), path)
	if err != nil {
		return media.Asset{}, apierror.Internal("Error while uploading file", err)
	}
	return asset, nil
}

func discard(r *http.Request, janitor MediaJanitor, locations ...string) {
	if janitor == nil {
		return
	}
	for _, location := range locations {
		if err := janitor.Enqueue(r.Context(), location); err != nil {
			logger(r).Warn("schedule media cleanup", "location", location, "error", err)
		}
	}
}
