package handlers

import (
	"net/http"

	"github.com/vidhub/backend/internal/apierror"
	"github.com/vidhub/backend/internal/models"
)

// LikeHandler toggles likes and lists liked videos.
type LikeHandler struct {
	Likes LikeStore
	Read  ReadModel
}

type likeStatus struct {
	Liked bool `json:"liked"`
}

// ToggleVideo implements POST /likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, models.LikeVideo, "videoId", "Video not found")
}

// ToggleComment implements POST /likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, models.LikeComment, "commentId", "Comment not found")
}

// ToggleTweet implements POST /likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) error {
	return h.toggle(w, r, models.LikeTweet, "tweetId", "Tweet not found")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.LikeKind, param, notFound string) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	id, err := pathID(r, param)
	if err != nil {
		return err
	}
	liked, err := h.Likes.Toggle(r.Context(), models.LikeTarget{Kind: kind, ID: id}, actor.ID)
	if err != nil {
		return storeError(err, notFound)
	}
	message := "Like removed successfully"
	if liked {
		message = "Liked successfully"
	}
	respondJSON(r.Context(), w, http.StatusOK, message, likeStatus{Liked: liked})
	return nil
}

// LikedVideos implements GET /likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	videos, err := h.Read.LikedVideos(r.Context(), actor.ID)
	if err != nil {
		return apierror.Internal("Internal Server Error", err)
	}
	respondJSON(r.Context(), w, http.StatusOK, "Liked videos fetched successfully", videos)
	return nil
}
