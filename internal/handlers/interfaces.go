package handlers

import (
	"context"

	"github.com/vidhub/backend/internal/auth"
	"github.com/vidhub/backend/internal/media"
	"github.com/vidhub/backend/internal/models"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, username, email string) (models.User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAccount(ctx context.Context, id, fullname, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, id, url string) (models.User, error)
	UpdateCoverImage(ctx context.Context, id, url string) (models.User, error)
}

// SessionManager issues, rotates and revokes authentication tokens for users.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Rotate(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, userID string) error
	VerifyAccess(token string) (auth.Claims, error)
}

// VideoStore captures persistence for uploaded videos.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, filter models.VideoFilter, page models.PageRequest) ([]models.VideoSummary, error)
	Update(ctx context.Context, video models.Video) (models.Video, error)
	SetPublished(ctx context.Context, id string, published bool) (models.Video, error)
	Delete(ctx context.Context, id string) error
	RecordView(ctx context.Context, userID, videoID string) error
}

// CommentStore captures persistence for video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByVideo(ctx context.Context, videoID string, page models.PageRequest) ([]models.CommentView, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// LikeStore flips likes on videos, comments and tweets.
type LikeStore interface {
	Toggle(ctx context.Context, target models.LikeTarget, userID string) (bool, error)
}

// SubscriptionStore flips and counts channel subscriptions.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscriptions(ctx context.Context, subscriberID string) (int64, error)
}

// PlaylistStore captures persistence for playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error)
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// ReadModel produces the joined views served by profile, history and dashboard endpoints.
type ReadModel interface {
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error)
	ChannelVideos(ctx context.Context, ownerID string, page models.PageRequest) ([]models.VideoSummary, error)
	LikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error)
	PlaylistDetail(ctx context.Context, playlistID string) (models.PlaylistDetail, error)
}

// MediaHost uploads spooled files and reports their public location.
type MediaHost interface {
	Upload(ctx context.Context, localPath string) (media.Asset, error)
}

// MediaJanitor schedules deletion of media that is no longer referenced.
type MediaJanitor interface {
	Enqueue(ctx context.Context, location string) error
}
