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

// PlaylistHandler serves user playlists.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Users     UserStore
	Read      ReadModel
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create implements POST /playlist.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	var req playlistRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apierror.BadRequest("Name is required")
	}

	now := time.Now().UTC()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     actor.ID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Playlists.Create(r.Context(), playlist); err != nil {
		return apierror.Internal("Failed to create playlist", err)
	}
	respondJSON(r.Context(), w, http.StatusCreated, "Playlist created successfully", playlist)
	return nil
}

// ListByUser implements GET /playlist/user/{userId}.
func (h PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) error {
	userID, err := pathID(r, "userId")
	if err != nil {
		return err
	}
	if _, err := h.Users.FindByID(r.Context(), userID); err != nil {
		return storeError(err, "User not found")
	}
	playlists, err := h.Playlists.ListByOwner(r.Context(), userID)
	if err != nil {
		return apierror.Internal("Internal Server Error", err)
	}
	respondJSON(r.Context(), w, http.StatusOK, "User playlists fetched successfully", playlists)
	return nil
}

// Get implements GET /playlist/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "playlistId")
	if err != nil {
		return err
	}
	detail, err := h.Read.PlaylistDetail(r.Context(), id)
	if err != nil {
		return storeError(err, "Playlist not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Playlist fetched successfully", detail)
	return nil
}

// Update implements PATCH /playlist/{playlistId}. Empty fields keep their stored value.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) error {
	playlist, err := h.owned(r, "playlistId")
	if err != nil {
		return err
	}
	var req playlistRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return err
	}
	name, description := strings.TrimSpace(req.Name), strings.TrimSpace(req.Description)
	if name == "" && description == "" {
		return apierror.BadRequest("Name or description is required")
	}
	if name == "" {
		name = playlist.Name
	}
	if description == "" {
		description = playlist.Description
	}

	updated, err := h.Playlists.Update(r.Context(), playlist.ID, name, description)
	if err != nil {
		return storeError(err, "Playlist not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Playlist updated successfully", updated)
	return nil
}

// Delete implements DELETE /playlist/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	playlist, err := h.owned(r, "playlistId")
	if err != nil {
		return err
	}
	if err := h.Playlists.Delete(r.Context(), playlist.ID); err != nil {
		return storeError(err, "Playlist not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Playlist deleted successfully", empty{})
	return nil
}

// AddVideo implements PATCH /playlist/add/{videoId}/{playlistId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) error {
	playlist, videoID, err := h.membership(r)
	if err != nil {
		return err
	}
	updated, err := h.Playlists.AddVideo(r.Context(), playlist.ID, videoID)
	if err != nil {
		return storeError(err, "Playlist not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Video added to playlist successfully", updated)
	return nil
}

// RemoveVideo implements PATCH /playlist/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) error {
	playlist, videoID, err := h.membership(r)
	if err != nil {
		return err
	}
	updated, err := h.Playlists.RemoveVideo(r.Context(), playlist.ID, videoID)
	if err != nil {
		return storeError(err, "Playlist not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Video removed from playlist successfully", updated)
	return nil
}

func (h PlaylistHandler) membership(r *http.Request) (models.Playlist, string, error) {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		return models.Playlist{}, "", err
	}
	playlist, err := h.owned(r, "playlistId")
	if err != nil {
		return models.Playlist{}, "", err
	}
	if _, err := h.Videos.FindByID(r.Context(), videoID); err != nil {
		return models.Playlist{}, "", storeError(err, "Video not found")
	}
	return playlist, videoID, nil
}

func (h PlaylistHandler) owned(r *http.Request, param string) (models.Playlist, error) {
	actor, err := currentUser(r)
	if err != nil {
		return models.Playlist{}, err
	}
	id, err := pathID(r, param)
	if err != nil {
		return models.Playlist{}, err
	}
	playlist, err := h.Playlists.FindByID(r.Context(), id)
	if err != nil {
		return models.Playlist{}, storeError(err, "Playlist not found")
	}
	if err := auth.RequireOwner(actor.ID, playlist.OwnerID, "playlist"); err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}
