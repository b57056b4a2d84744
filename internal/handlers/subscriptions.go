package handlers

import (
	"net/http"
	"strings"

	"github.com/vidhub/backend/internal/apierror"
)

// SubscriptionHandler toggles and counts channel subscriptions.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
}

type subscriptionStatus struct {
	Subscribed bool `json:"subscribed"`
}

type subscriberCount struct {
	Subscribers int64 `json:"subscribers"`
}

type subscribedCount struct {
	SubscribedTo int64 `json:"subscribedTo"`
}

// Toggle implements POST /subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	channelID, err := pathID(r, "channelId")
	if err != nil {
		return err
	}
	if strings.EqualFold(channelID, actor.ID) {
		return apierror.BadRequest("You cannot subscribe to your own channel")
	}

	subscribed, err := h.Subscriptions.Toggle(r.Context(), actor.ID, channelID)
	if err != nil {
		return storeError(err, "Channel not found")
	}
	message := "Unsubscribed successfully"
	if subscribed {
		message = "Subscribed successfully"
	}
	respondJSON(r.Context(), w, http.StatusOK, message, subscriptionStatus{Subscribed: subscribed})
	return nil
}

// Subscribers implements GET /subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) error {
	channelID, err := pathID(r, "channelId")
	if err != nil {
		return err
	}
	count, err := h.Subscriptions.CountSubscribers(r.Context(), channelID)
	if err != nil {
		return storeError(err, "Channel not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Subscribers fetched successfully", subscriberCount{Subscribers: count})
	return nil
}

// SubscribedChannels implements GET /subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) error {
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		return err
	}
	count, err := h.Subscriptions.CountSubscriptions(r.Context(), subscriberID)
	if err != nil {
		return storeError(err, "User not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Subscribed channels fetched successfully", subscribedCount{SubscribedTo: count})
	return nil
}
