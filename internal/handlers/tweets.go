package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidhub/backend/internal/apierror"
	"github.com/vidhub/backend/internal/auth"
	"github.com/vidhub/backend/internal/models"
)

// TweetHandler serves channel tweets.
type TweetHandler struct {
	Tweets TweetStore
	Users  UserStore
}

// Create implements POST /tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	content, err := readContent(w, r)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	tweet := models.Tweet{ID: uuid.NewString(), OwnerID: actor.ID, Content: content, CreatedAt: now, UpdatedAt: now}
	if err := h.Tweets.Create(r.Context(), tweet); err != nil {
		return apierror.Internal("Failed to create tweet", err)
	}
	respondJSON(r.Context(), w, http.StatusCreated, "Tweet created successfully", tweet)
	return nil
}

// ListByUser implements GET /tweets/user/{userId}.
func (h TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) error {
	userID, err := pathID(r, "userId")
	if err != nil {
		return err
	}
	if _, err := h.Users.FindByID(r.Context(), userID); err != nil {
		return storeError(err, "User not found")
	}
	tweets, err := h.Tweets.ListByOwner(r.Context(), userID)
	if err != nil {
		return apierror.Internal("Internal Server Error", err)
	}
	respondJSON(r.Context(), w, http.StatusOK, "Tweets fetched successfully", tweets)
	return nil
}

// Update implements PATCH /tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) error {
	tweet, err := h.owned(r)
	if err != nil {
		return err
	}
	content, err := readContent(w, r)
	if err != nil {
		return err
	}
	updated, err := h.Tweets.UpdateContent(r.Context(), tweet.ID, content)
	if err != nil {
		return storeError(err, "Tweet not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Tweet updated successfully", updated)
	return nil
}

// Delete implements DELETE /tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	tweet, err := h.owned(r)
	if err != nil {
		return err
	}
	if err := h.Tweets.Delete(r.Context(), tweet.ID); err != nil {
		return storeError(err, "Tweet not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Tweet deleted successfully", empty{})
	return nil
}

func (h TweetHandler) owned(r *http.Request) (models.Tweet, error) {
	actor, err := currentUser(r)
	if err != nil {
		return models.Tweet{}, err
	}
	id, err := pathID(r, "tweetId")
	if err != nil {
		return models.Tweet{}, err
	}
	tweet, err := h.Tweets.FindByID(r.Context(), id)
	if err != nil {
		return models.Tweet{}, storeError(err, "Tweet not found")
	}
	if err := auth.RequireOwner(actor.ID, tweet.OwnerID, "tweet"); err != nil {
		return models.Tweet{}, err
	}
	return tweet, nil
}
