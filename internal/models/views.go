package models

import "time"

// OwnerProfile is the public projection of a user joined into other views.
type OwnerProfile struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Fullname string `json:"fullname,omitempty"`
	Avatar   string `json:"avatar"`
}

// VideoSummary is the listing projection of a video.
type VideoSummary struct {
	ID        string  `json:"_id"`
	Title     string  `json:"title"`
	Thumbnail string  `json:"thumbnail"`
	Views     int64   `json:"views"`
	Duration  float64 `json:"duration"`
}

// CommentView is a comment with its author's profile joined in.
type CommentView struct {
	ID        string       `json:"_id"`
	VideoID   string       `json:"video"`
	Content   string       `json:"content"`
	Owner     OwnerProfile `json:"owner"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// WatchedVideo is a watch history entry: the full video with its owner's profile.
type WatchedVideo struct {
	ID          string       `json:"_id"`
	VideoFile   string       `json:"videoFile"`
	Thumbnail   string       `json:"thumbnail"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Duration    float64      `json:"duration"`
	Views       int64        `json:"views"`
	IsPublished bool         `json:"isPublished"`
	Owner       OwnerProfile `json:"owner"`
	CreatedAt   time.Time    `json:"createdAt"`
	WatchedAt   time.Time    `json:"watchedAt"`
}

// LikedVideo is the liked-videos projection.
type LikedVideo struct {
	VideoID   string    `json:"videoId"`
	Title     string    `json:"title"`
	Thumbnail string    `json:"thumbnail"`
	Views     int64     `json:"views"`
	Duration  float64   `json:"duration"`
	OwnerID   string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChannelStats aggregates a channel's dashboard counters.
type ChannelStats struct {
	ID               string `json:"_id"`
	Username         string `json:"username"`
	Fullname         string `json:"fullname"`
	TotalVideos      int64  `json:"totalVideos"`
	TotalSubscribers int64  `json:"totalSubscribers"`
	TotalViews       int64  `json:"totalViews"`
	TotalLikes       int64  `json:"totalLikes"`
	TotalComments    int64  `json:"totalComments"`
}

// ChannelProfile is the public channel page as seen by a viewer.
type ChannelProfile struct {
	ID                        string `json:"_id"`
	Username                  string `json:"username"`
	Fullname                  string `json:"fullname"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// PlaylistVideo is the projection of a video inside a playlist.
type PlaylistVideo struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Thumbnail string    `json:"thumbnail"`
	Duration  float64   `json:"duration"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlaylistDetail is a playlist with its owner and videos populated.
type PlaylistDetail struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Owner       OwnerProfile    `json:"owner"`
	Videos      []PlaylistVideo `json:"video"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
