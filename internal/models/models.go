package models

import "time"

// User represents a channel owner and viewer account. Password and RefreshToken
// never leave the service.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Fullname     string    `json:"fullname"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	WatchHistory []string  `json:"watchHistory"`
	Password     string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Video is an uploaded media item owned by a channel.
type Video struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"owner"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment is a viewer remark on a video.
type Comment struct {
	ID        string    `json:"_id"`
	VideoID   string    `json:"video"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeKind names the collection a like points into.
type LikeKind string

const (
	LikeVideo   LikeKind = "video"
	LikeComment LikeKind = "comment"
	LikeTweet   LikeKind = "tweet"
)

// LikeTarget identifies exactly one likeable record.
type LikeTarget struct {
	Kind LikeKind
	ID   string
}

// Subscription links a subscriber to a channel.
type Subscription struct {
	ID           string    `json:"_id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Playlist is an ordered, duplicate-free collection of videos.
type Playlist struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"video"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Tweet is a short text post on a channel.
type Tweet struct {
	ID        string    `json:"_id"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"-"`
}
