package handlers

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vidhub/backend/internal/auth"
	"github.com/vidhub/backend/internal/media"
	"github.com/vidhub/backend/internal/models"
	"github.com/vidhub/backend/internal/repositories"
)

// memDB backs every in-memory store used by the handler tests.
type memDB struct {
	mu        sync.Mutex
	seq       int64
	order     map[string]int64
	users     map[string]models.User
	videos    map[string]models.Video
	comments  map[string]models.Comment
	tweets    map[string]models.Tweet
	playlists map[string]models.Playlist
	likes     map[string]map[string]struct{}
	subs      map[string]map[string]struct{}
	history   map[string]map[string]time.Time
	creds     *auth.InMemoryCredentialStore
	lastPage  models.PageRequest
	lastQuery models.VideoFilter
}

func newMemDB() *memDB {
	return &memDB{
		order:     make(map[string]int64),
		users:     make(map[string]models.User),
		videos:    make(map[string]models.Video),
		comments:  make(map[string]models.Comment),
		tweets:    make(map[string]models.Tweet),
		playlists: make(map[string]models.Playlist),
		likes:     make(map[string]map[string]struct{}),
		subs:      make(map[string]map[string]struct{}),
		history:   make(map[string]map[string]time.Time),
		creds:     auth.NewInMemoryCredentialStore(),
	}
}

func (db *memDB) track(id string) {
	db.seq++
	db.order[id] = db.seq
}

// newestFirst sorts ids by reverse insertion order.
func (db *memDB) newestFirst(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return db.order[ids[i]] > db.order[ids[j]] })
}

func (db *memDB) owner(id string) models.OwnerProfile {
	u := db.users[id]
	return models.OwnerProfile{ID: u.ID, Username: u.Username, Fullname: u.Fullname, Avatar: u.Avatar}
}

type memUsers struct{ db *memDB }

func (s memUsers) Create(_ context.Context, user models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.db.users[user.ID] = user
	s.db.track(user.ID)
	s.db.creds.AddUser(user.ID)
	return nil
}

func (s memUsers) FindByID(_ context.Context, id string) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.user(id)
}

func (db *memDB) user(id string) (models.User, error) {
	user, ok := db.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.WatchHistory = []string{}
	for videoID := range db.history[id] {
		user.WatchHistory = append(user.WatchHistory, videoID)
	}
	sort.Strings(user.WatchHistory)
	return user, nil
}

func (s memUsers) FindByLogin(_ context.Context, username, email string) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, user := range s.db.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return s.db.user(id)
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s memUsers) Exists(_ context.Context, username, email string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, user := range s.db.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s memUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	_, err := s.update(id, func(u *models.User) error { u.Password = passwordHash; return nil })
	return err
}

func (s memUsers) UpdateAccount(_ context.Context, id, fullname, email string) (models.User, error) {
	return s.update(id, func(u *models.User) error {
		for otherID, other := range s.db.users {
			if otherID != id && other.Email == email {
				return repositories.ErrConflict
			}
		}
		u.Fullname, u.Email = fullname, email
		return nil
	})
}

func (s memUsers) UpdateAvatar(_ context.Context, id, url string) (models.User, error) {
	return s.update(id, func(u *models.User) error { u.Avatar = url; return nil })
}

func (s memUsers) UpdateCoverImage(_ context.Context, id, url string) (models.User, error) {
	return s.update(id, func(u *models.User) error { u.CoverImage = url; return nil })
}

func (s memUsers) update(id string, fn func(*models.User) error) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	user, ok := s.db.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	if err := fn(&user); err != nil {
		return models.User{}, err
	}
	user.UpdatedAt = time.Now().UTC()
	s.db.users[id] = user
	return s.db.user(id)
}

type memVideos struct{ db *memDB }

func (s memVideos) Create(_ context.Context, video models.Video) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.videos[video.ID] = video
	s.db.track(video.ID)
	return nil
}

func (s memVideos) FindByID(_ context.Context, id string) (models.Video, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	video, ok := s.db.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s memVideos) List(_ context.Context, filter models.VideoFilter, page models.PageRequest) ([]models.VideoSummary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.lastPage, s.db.lastQuery = page, filter

	var matched []models.Video
	for _, v := range s.db.videos {
		if !v.IsPublished || (filter.OwnerID != "" && v.OwnerID != filter.OwnerID) {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(filter.Query)) {
			continue
		}
		matched = append(matched, v)
	}
	return s.db.videoWindow(matched, page), nil
}

// videoWindow sorts videos by page and returns the requested window as summaries.
func (db *memDB) videoWindow(videos []models.Video, page models.PageRequest) []models.VideoSummary {
	less := func(a, b models.Video) bool {
		switch page.SortBy {
		case models.SortViews:
			return a.Views < b.Views
		case models.SortDuration:
			return a.Duration < b.Duration
		case models.SortTitle:
			return a.Title < b.Title
		default:
			return db.order[a.ID] < db.order[b.ID]
		}
	}
	sort.Slice(videos, func(i, j int) bool {
		if page.Ascending {
			return less(videos[i], videos[j])
		}
		return less(videos[j], videos[i])
	})

	out := []models.VideoSummary{}
	for i := page.Offset(); i < len(videos) && len(out) < page.Limit; i++ {
		v := videos[i]
		out = append(out, models.VideoSummary{ID: v.ID, Title: v.Title, Thumbnail: v.Thumbnail, Views: v.Views, Duration: v.Duration})
	}
	return out
}

func (s memVideos) Update(_ context.Context, video models.Video) (models.Video, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.videos[video.ID]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	stored.Title, stored.Description, stored.Thumbnail = video.Title, video.Description, video.Thumbnail
	s.db.videos[video.ID] = stored
	return stored, nil
}

func (s memVideos) SetPublished(_ context.Context, id string, published bool) (models.Video, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	stored, ok := s.db.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	stored.IsPublished = published
	s.db.videos[id] = stored
	return stored, nil
}

func (s memVideos) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.db.videos, id)
	for commentID, c := range s.db.comments {
		if c.VideoID == id {
			delete(s.db.comments, commentID)
		}
	}
	delete(s.db.likes, string(models.LikeVideo)+":"+id)
	return nil
}

func (s memVideos) RecordView(_ context.Context, userID, videoID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	video, ok := s.db.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.db.videos[videoID] = video
	if s.db.history[userID] == nil {
		s.db.history[userID] = make(map[string]time.Time)
	}
	s.db.seq++
	s.db.history[userID][videoID] = time.Unix(s.db.seq, 0).UTC()
	return nil
}

type memComments struct{ db *memDB }

func (s memComments) Create(_ context.Context, comment models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.videos[comment.VideoID]; !ok {
		return repositories.ErrNotFound
	}
	s.db.comments[comment.ID] = comment
	s.db.track(comment.ID)
	return nil
}

func (s memComments) FindByID(_ context.Context, id string) (models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	comment, ok := s.db.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s memComments) ListByVideo(_ context.Context, videoID string, page models.PageRequest) ([]models.CommentView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var ids []string
	for id, c := range s.db.comments {
		if c.VideoID == videoID {
			ids = append(ids, id)
		}
	}
	less := func(a, b string) bool {
		if page.SortBy == models.SortUpdatedAt {
			if ua, ub := s.db.comments[a].UpdatedAt, s.db.comments[b].UpdatedAt; !ua.Equal(ub) {
				return ua.Before(ub)
			}
		}
		return s.db.order[a] < s.db.order[b]
	}
	sort.Slice(ids, func(i, j int) bool {
		if page.Ascending {
			return less(ids[i], ids[j])
		}
		return less(ids[j], ids[i])
	})
	out := []models.CommentView{}
	for i := page.Offset(); i < len(ids) && len(out) < page.Limit; i++ {
		c := s.db.comments[ids[i]]
		out = append(out, models.CommentView{ID: c.ID, VideoID: c.VideoID, Content: c.Content, Owner: s.db.owner(c.OwnerID), CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt})
	}
	return out, nil
}

func (s memComments) UpdateContent(_ context.Context, id, content string) (models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	comment, ok := s.db.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	comment.Content = content
	s.db.comments[id] = comment
	return comment, nil
}

func (s memComments) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.db.comments, id)
	return nil
}

type memTweets struct{ db *memDB }

func (s memTweets) Create(_ context.Context, tweet models.Tweet) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.tweets[tweet.ID] = tweet
	s.db.track(tweet.ID)
	return nil
}

func (s memTweets) FindByID(_ context.Context, id string) (models.Tweet, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	tweet, ok := s.db.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s memTweets) ListByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var ids []string
	for id, t := range s.db.tweets {
		if t.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	s.db.newestFirst(ids)
	out := []models.Tweet{}
	for _, id := range ids {
		out = append(out, s.db.tweets[id])
	}
	return out, nil
}

func (s memTweets) UpdateContent(_ context.Context, id, content string) (models.Tweet, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	tweet, ok := s.db.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	s.db.tweets[id] = tweet
	return tweet, nil
}

func (s memTweets) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.db.tweets, id)
	return nil
}

type memLikes struct{ db *memDB }

func (s memLikes) Toggle(_ context.Context, target models.LikeTarget, userID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var exists bool
	switch target.Kind {
	case models.LikeVideo:
		_, exists = s.db.videos[target.ID]
	case models.LikeComment:
		_, exists = s.db.comments[target.ID]
	case models.LikeTweet:
		_, exists = s.db.tweets[target.ID]
	}
	if !exists {
		return false, repositories.ErrNotFound
	}
	key := string(target.Kind) + ":" + target.ID
	if _, liked := s.db.likes[key][userID]; liked {
		delete(s.db.likes[key], userID)
		return false, nil
	}
	if s.db.likes[key] == nil {
		s.db.likes[key] = make(map[string]struct{})
	}
	s.db.likes[key][userID] = struct{}{}
	return true, nil
}

type memSubscriptions struct{ db *memDB }

func (s memSubscriptions) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[channelID]; !ok {
		return false, repositories.ErrNotFound
	}
	if _, subscribed := s.db.subs[channelID][subscriberID]; subscribed {
		delete(s.db.subs[channelID], subscriberID)
		return false, nil
	}
	if s.db.subs[channelID] == nil {
		s.db.subs[channelID] = make(map[string]struct{})
	}
	s.db.subs[channelID][subscriberID] = struct{}{}
	return true, nil
}

func (s memSubscriptions) CountSubscribers(_ context.Context, channelID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[channelID]; !ok {
		return 0, repositories.ErrNotFound
	}
	return int64(len(s.db.subs[channelID])), nil
}

func (s memSubscriptions) CountSubscriptions(_ context.Context, subscriberID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[subscriberID]; !ok {
		return 0, repositories.ErrNotFound
	}
	return s.db.countSubscriptions(subscriberID), nil
}

func (db *memDB) countSubscriptions(subscriberID string) int64 {
	var n int64
	for _, subscribers := range db.subs {
		if _, ok := subscribers[subscriberID]; ok {
			n++
		}
	}
	return n
}

type memPlaylists struct{ db *memDB }

func (s memPlaylists) Create(_ context.Context, playlist models.Playlist) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.playlists[playlist.ID] = playlist
	s.db.track(playlist.ID)
	return nil
}

func (s memPlaylists) FindByID(_ context.Context, id string) (models.Playlist, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	playlist, ok := s.db.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s memPlaylists) ListByOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var ids []string
	for id, p := range s.db.playlists {
		if p.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	s.db.newestFirst(ids)
	out := []models.Playlist{}
	for _, id := range ids {
		out = append(out, s.db.playlists[id])
	}
	return out, nil
}

func (s memPlaylists) Update(_ context.Context, id, name, description string) (models.Playlist, error) {
	return s.mutate(id, func(p *models.Playlist) { p.Name, p.Description = name, description })
}

func (s memPlaylists) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.db.playlists, id)
	return nil
}

func (s memPlaylists) AddVideo(_ context.Context, playlistID, videoID string) (models.Playlist, error) {
	return s.mutate(playlistID, func(p *models.Playlist) {
		for _, id := range p.VideoIDs {
			if id == videoID {
				return
			}
		}
		p.VideoIDs = append(p.VideoIDs, videoID)
	})
}

func (s memPlaylists) RemoveVideo(_ context.Context, playlistID, videoID string) (models.Playlist, error) {
	return s.mutate(playlistID, func(p *models.Playlist) {
		kept := []string{}
		for _, id := range p.VideoIDs {
			if id != videoID {
				kept = append(kept, id)
			}
		}
		p.VideoIDs = kept
	})
}

func (s memPlaylists) mutate(id string, fn func(*models.Playlist)) (models.Playlist, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	playlist, ok := s.db.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.VideoIDs = append([]string{}, playlist.VideoIDs...)
	fn(&playlist)
	s.db.playlists[id] = playlist
	return playlist, nil
}

type memReadModel struct{ db *memDB }

func (s memReadModel) ChannelStats(_ context.Context, channelID string) (models.ChannelStats, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	user, ok := s.db.users[channelID]
	if !ok {
		return models.ChannelStats{}, repositories.ErrNotFound
	}
	stats := models.ChannelStats{ID: user.ID, Username: user.Username, Fullname: user.Fullname}
	stats.TotalSubscribers = int64(len(s.db.subs[channelID]))
	for _, v := range s.db.videos {
		if v.OwnerID != channelID {
			continue
		}
		stats.TotalVideos++
		stats.TotalViews += v.Views
		stats.TotalLikes += int64(len(s.db.likes[string(models.LikeVideo)+":"+v.ID]))
		for _, c := range s.db.comments {
			if c.VideoID == v.ID {
				stats.TotalComments++
			}
		}
	}
	return stats, nil
}

func (s memReadModel) ChannelProfile(_ context.Context, username, viewerID string) (models.ChannelProfile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Username != username {
			continue
		}
		_, subscribed := s.db.subs[u.ID][viewerID]
		return models.ChannelProfile{
			ID:                        u.ID,
			Username:                  u.Username,
			Fullname:                  u.Fullname,
			Email:                     u.Email,
			Avatar:                    u.Avatar,
			CoverImage:                u.CoverImage,
			SubscribersCount:          int64(len(s.db.subs[u.ID])),
			ChannelsSubscribedToCount: s.db.countSubscriptions(u.ID),
			IsSubscribed:              subscribed,
		}, nil
	}
	return models.ChannelProfile{}, repositories.ErrNotFound
}

func (s memReadModel) WatchHistory(_ context.Context, userID string) ([]models.WatchedVideo, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.WatchedVideo{}
	for videoID, at := range s.db.history[userID] {
		v, ok := s.db.videos[videoID]
		if !ok {
			continue
		}
		out = append(out, models.WatchedVideo{
			ID: v.ID, VideoFile: v.VideoFile, Thumbnail: v.Thumbnail, Title: v.Title, Description: v.Description,
			Duration: v.Duration, Views: v.Views, IsPublished: v.IsPublished, Owner: s.db.owner(v.OwnerID),
			CreatedAt: v.CreatedAt, WatchedAt: at,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WatchedAt.After(out[j].WatchedAt) })
	return out, nil
}

func (s memReadModel) ChannelVideos(_ context.Context, ownerID string, page models.PageRequest) ([]models.VideoSummary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var videos []models.Video
	for _, v := range s.db.videos {
		if v.OwnerID == ownerID && v.IsPublished {
			videos = append(videos, v)
		}
	}
	return s.db.videoWindow(videos, page), nil
}

func (s memReadModel) LikedVideos(_ context.Context, userID string) ([]models.LikedVideo, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var ids []string
	for id := range s.db.videos {
		if _, ok := s.db.likes[string(models.LikeVideo)+":"+id][userID]; ok {
			ids = append(ids, id)
		}
	}
	s.db.newestFirst(ids)
	out := []models.LikedVideo{}
	for _, id := range ids {
		v := s.db.videos[id]
		out = append(out, models.LikedVideo{VideoID: v.ID, Title: v.Title, Thumbnail: v.Thumbnail, Views: v.Views, Duration: v.Duration, OwnerID: v.OwnerID, CreatedAt: v.CreatedAt})
	}
	return out, nil
}

func (s memReadModel) PlaylistDetail(_ context.Context, playlistID string) (models.PlaylistDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.playlists[playlistID]
	if !ok {
		return models.PlaylistDetail{}, repositories.ErrNotFound
	}
	owner := s.db.owner(p.OwnerID)
	owner.Fullname = ""
	detail := models.PlaylistDetail{ID: p.ID, Name: p.Name, Description: p.Description, Owner: owner, Videos: []models.PlaylistVideo{}, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
	for _, id := range p.VideoIDs {
		if v, ok := s.db.videos[id]; ok {
			detail.Videos = append(detail.Videos, models.PlaylistVideo{ID: v.ID, Title: v.Title, Thumbnail: v.Thumbnail, Duration: v.Duration, Views: v.Views, CreatedAt: v.CreatedAt})
		}
	}
	return detail, nil
}

// fakeMedia imitates media.Host: it consumes the local file and returns a CDN location.
type fakeMedia struct {
	mu       sync.Mutex
	uploaded []string
	fail     bool
}

func (m *fakeMedia) Upload(_ context.Context, localPath string) (media.Asset, error) {
	defer os.Remove(localPath)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return media.Asset{}, media.ErrStorageUnavailable
	}
	url := "https://cdn.test/" + filepath.Base(localPath)
	m.uploaded = append(m.uploaded, url)
	asset := media.Asset{URL: url}
	if filepath.Ext(localPath) == ".mp4" {
		asset.Duration = 12.5
	}
	return asset, nil
}

type fakeJanitor struct {
	mu      sync.Mutex
	deleted []string
}

func (j *fakeJanitor) Enqueue(_ context.Context, location string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.deleted = append(j.deleted, location)
	return nil
}

func (j *fakeJanitor) queued() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.deleted...)
}
