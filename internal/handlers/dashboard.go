package handlers

import (
	"net/http"

	"github.com/vidhub/backend/internal/apierror"
)

// DashboardHandler serves the signed-in creator's channel overview.
type DashboardHandler struct {
	Read ReadModel
}

// Stats implements GET /dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	stats, err := h.Read.ChannelStats(r.Context(), actor.ID)
	if err != nil {
		return storeError(err, "Channel not found")
	}
	respondJSON(r.Context(), w, http.StatusOK, "Channel stats fetched successfully", stats)
	return nil
}

// Videos implements GET /dashboard/videos.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) error {
	actor, err := currentUser(r)
	if err != nil {
		return err
	}
	page, err := pageRequest(r, videoSorts)
	if err != nil {
		return err
	}
	videos, err := h.Read.ChannelVideos(r.Context(), actor.ID, page)
	if err != nil {
		return apierror.Internal("Internal Server Error", err)
	}
	respondJSON(r.Context(), w, http.StatusOK, "Channel videos fetched successfully", videos)
	return nil
}
