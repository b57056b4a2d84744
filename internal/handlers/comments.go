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

// CommentHandler serves video comments.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
}

// List implements GET /comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) error {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		return err
	}
	page, err := pageRequest(r, commentSorts)
	if err != nil {
		return err
	}
	if _, err := h.Videos.FindByID(r.Context(), videoID); err != nil {
		return storeError(err, "Video not found")
	}
	comments, err := h.Comments.ListByVideo(r.Context(), videoID, page)
	if err != nil {
		return apierror.Internal("Internal Server Error", err)
	}
	respondJSON(r.Context(), w, http.StatusOK, "Comments fetched successfully", comments)
	return nil
}

type contentRequest struct {
	Content string `json:"content"`
}

func readContent(w http.ResponseWriter, r *http.Request) (string, error) {
	var req contentRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		return "", err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", apierror.BadRequest("Content is required")
	}
	return content, nil
}

// Add implements POST /comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		return err
	}
	content, err := readContent(w, r)
	if err != nil {
		return err
	}
	if _, err := h.Videos.FindByID(r.Context(), videoID); err != nil {
		return storeError(err, "Video not found")
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   actor.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Comments.Create(r.Context(), comment); err != nil {
		return storeError(err, "Video not found")
	}
	respondJSON(r.Context(), w, http.StatusCreated, "Comment added successfully", comment)
	return nil
}

// Update implements PATCH /comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) error {
	comment, err := h.owned(r)
	if err != nil {
		return err
	}
	content, err := readContent(w, r)
	if err != nil {
		return err
	}
	updated, err := h.Comments.UpdateContent(r.Context(), comment.ID, content)
	if err != nil {
		return storeError(err, "Comment not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Comment updated successfully", updated)
	return nil
}

// Delete implements DELETE /comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	comment, err := h.owned(r)
	if err != nil {
		return err
	}
	if err := h.Comments.Delete(r.Context(), comment.ID); err != nil {
		return storeError(err, "Comment not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Comment deleted successfully", empty{})
	return nil
}

func (h CommentHandler) owned(r *http.Request) (models.Comment, error) {
	actor, err := currentUser(r)
	if err != nil {
		return models.Comment{}, err
	}
	id, err := pathID(r, "commentId")
	if err != nil {
		return models.Comment{}, err
	}
	comment, err := h.Comments.FindByID(r.Context(), id)
	if err != nil {
		return models.Comment{}, storeError(err, "Comment not found")
	}
	if err := auth.RequireOwner(actor.ID, comment.OwnerID, "comment"); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}
