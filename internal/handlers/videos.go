package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidhub/backend/internal/apierror"
	"github.com/vidhub/backend/internal/auth"
	"github.com/vidhub/backend/internal/models"
)

// VideoHandler serves the video catalogue.
type VideoHandler struct {
	Videos  VideoStore
	Media   MediaHost
	Janitor MediaJanitor
	Uploads UploadConfig
}

// List implements GET /videos.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) error {
	page, err := pageRequest(r, videoSorts)
	if err != nil {
		return err
	}
	filter := models.VideoFilter{Query: strings.TrimSpace(r.URL.Query().Get("query"))}
	if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
		if filter.OwnerID, err = parseID(raw, "userId"); err != nil {
			return err
		}
	}

	videos, err := h.Videos.List(r.Context(), filter, page)
	if err != nil {
		return apierror.Internal("Internal Server Error", err)
	}
	respondJSON(r.Context(), w, http.StatusOK, "Videos fetched successfully", videos)
	return nil
}

// Publish implements POST /videos.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	upload, err := parseUpload(w, r, h.Uploads, "video", "thumbnail")
	if err != nil {
		return err
	}
	defer upload.Cleanup()

	title, description := upload.Value("title"), upload.Value("description")
	if title == "" || description == "" {
		return apierror.BadRequest("Title and description are required")
	}
	videoPath, thumbnailPath := upload.File("video"), upload.File("thumbnail")
	if videoPath == "" || thumbnailPath == "" {
		return apierror.BadRequest("Video file and thumbnail are required")
	}

	videoAsset, err := uploadFile(r, h.Media, videoPath)
	if err != nil {
		return err
	}
	thumbnail, err := uploadFile(r, h.Media, thumbnailPath)
	if err != nil {
		discard(r, h.Janitor, videoAsset.URL)
		return err
	}

	now := time.Now().UTC()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     actor.ID,
		VideoFile:   videoAsset.URL,
		Thumbnail:   thumbnail.URL,
		Title:       title,
		Description: description,
		Duration:    videoAsset.Duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Videos.Create(r.Context(), video); err != nil {
		discard(r, h.Janitor, videoAsset.URL, thumbnail.URL)
		return apierror.Internal("Error while publishing video", err)
	}
	logger(r).Info("video published", "video_id", video.ID, "owner_id", actor.ID)
	respondJSON(r.Context(), w, http.StatusCreated, "Video published successfully", video)
	return nil
}

// Get implements GET /videos/{videoId}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, "videoId")
	if err != nil {
		return err
	}
	video, err := h.Videos.FindByID(r.Context(), id)
	if err != nil {
		return storeError(err, "Video not found")
	}
	if !video.IsPublished && !strings.EqualFold(video.OwnerID, actor.ID) {
		respondJSON(r.Context(), w, http.StatusOK, "Video is not published yet", nil)
		return nil
	}
	respondJSON(r.Context(), w, http.StatusOK, "Video fetched successfully", video)
	return nil
}

// Update implements PATCH /videos/{videoId}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) error {
	video, err := h.owned(r)
	if err != nil {
		return err
	}
	upload, err := parseUpload(w, r, h.Uploads, "thumbnail")
	if err != nil {
		return err
	}
	defer upload.Cleanup()

	title, description := upload.Value("title"), upload.Value("description")
	if title == "" || description == "" {
		return apierror.BadRequest("Title and description are required")
	}
	thumbnailPath := upload.File("thumbnail")
	if thumbnailPath == "" {
		return apierror.BadRequest("Thumbnail is required")
	}
	thumbnail, err := uploadFile(r, h.Media, thumbnailPath)
	if err != nil {
		return err
	}

	previous := video.Thumbnail
	video.Title = title
	video.Description = description
	video.Thumbnail = thumbnail.URL
	updated, err := h.Videos.Update(r.Context(), video)
	if err != nil {
		discard(r, h.Janitor, thumbnail.URL)
		return storeError(err, "Video not found")
	}
	if previous != "" && previous != thumbnail.URL {
		discard(r, h.Janitor, previous)
	}
	respondJSON(r.Context(), w, http.StatusOK, "Video updated successfully", updated)
	return nil
}

// Delete implements DELETE /videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	video, err := h.owned(r)
	if err != nil {
		return err
	}
	if err := h.Videos.Delete(r.Context(), video.ID); err != nil {
		return storeError(err, "Video not found")
	}
	discard(r, h.Janitor, video.VideoFile, video.Thumbnail)
	respondJSON(r.Context(), w, http.StatusOK, "Video deleted successfully", empty{})
	return nil
}

type publishStatus struct {
	IsPublished bool `json:"isPublished"`
}

// TogglePublish implements PATCH /videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) error {
	video, err := h.owned(r)
	if err != nil {
		return err
	}
	updated, err := h.Videos.SetPublished(r.Context(), video.ID, !video.IsPublished)
	if err != nil {
		return storeError(err, "Video not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Video publish status toggled successfully", publishStatus{IsPublished: updated.IsPublished})
	return nil
}

// owned loads the video named by the path and requires the caller to own it.
func (h VideoHandler) owned(r *http.Request) (models.Video, error) {
	actor, err := currentUser(r)
	if err != nil {
		return models.Video{}, err
	}
	id, err := pathID(r, "videoId")
	if err != nil {
		return models.Video{}, err
	}
	video, err := h.Videos.FindByID(r.Context(), id)
	if err != nil {
		return models.Video{}, storeError(err, "Video not found")
	}
	if err := auth.RequireOwner(actor.ID, video.OwnerID, "video"); err != nil {
		return models.Video{}, err
	}
	return video, nil
}
