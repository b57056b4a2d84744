package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/vidhub/backend/internal/db"
	"github.com/vidhub/backend/internal/logging"
	"github.com/vidhub/backend/internal/models"
)

// PostgresReadModel builds denormalized views by joining collections at query time.
type PostgresReadModel struct {
	pool db.Pool
}

// NewPostgresReadModel constructs a read model backed by PostgreSQL.
func NewPostgresReadModel(pool db.Pool) *PostgresReadModel {
	return &PostgresReadModel{pool: pool}
}

// ChannelStats aggregates the dashboard counters of a channel.
func (m *PostgresReadModel) ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.channel_stats")
	defer span.End()

	conn, err := acquire(ctx, m.pool)
	if err != nil {
		return models.ChannelStats{}, err
	}
	defer conn.Release()

	var stats models.ChannelStats
	err = conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.fullname,
               (SELECT count(*) FROM videos v WHERE v.owner_id = u.id),
               (SELECT count(*) FROM subscriptions s WHERE s.channel_id = u.id),
               (SELECT COALESCE(SUM(v.views), 0)::BIGINT FROM videos v WHERE v.owner_id = u.id),
               (SELECT count(*) FROM likes l JOIN videos v ON v.id = l.video_id WHERE v.owner_id = u.id),
               (SELECT count(*) FROM comments c JOIN videos v ON v.id = c.video_id WHERE v.owner_id = u.id)
        FROM users u
        WHERE u.id = $1
    `, channelID).Scan(&stats.ID, &stats.Username, &stats.Fullname, &stats.TotalVideos, &stats.TotalSubscribers,
		&stats.TotalViews, &stats.TotalLikes, &stats.TotalComments)
	if err != nil {
		return models.ChannelStats{}, translate(err, "select channel stats")
	}
	span.Annotate("videos", stats.TotalVideos, "subscribers", stats.TotalSubscribers)
	return stats, nil
}

// ChannelProfile loads the public page of username as seen by viewerID.
func (m *PostgresReadModel) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.channel_profile")
	defer span.End()

	conn, err := acquire(ctx, m.pool)
	if err != nil {
		return models.ChannelProfile{}, err
	}
	defer conn.Release()

	var profile models.ChannelProfile
	err = conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.fullname, u.email, u.avatar, u.cover_image,
               (SELECT count(*) FROM subscriptions s WHERE s.channel_id = u.id),
               (SELECT count(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
               EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id::TEXT = $2)
        FROM users u
        WHERE u.username = $1
    `, strings.ToLower(strings.TrimSpace(username)), viewerID).Scan(&profile.ID, &profile.Username, &profile.Fullname,
		&profile.Email, &profile.Avatar, &profile.CoverImage, &profile.SubscribersCount,
		&profile.ChannelsSubscribedToCount, &profile.IsSubscribed)
	if err != nil {
		return models.ChannelProfile{}, translate(err, "select channel profile")
	}
	return profile, nil
}

// WatchHistory resolves userID's history, most recently watched first, with each
// video's owner joined in.
func (m *PostgresReadModel) WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.watch_history")
	defer span.End()

	conn, err := acquire(ctx, m.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.video_file, v.thumbnail, v.title, v.description, v.duration, v.views, v.is_published,
               v.created_at, wh.watched_at, o.id, o.username, o.fullname, o.avatar
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN users o ON o.id = v.owner_id
        WHERE wh.user_id = $1
        ORDER BY wh.watched_at DESC, v.id
    `, userID)
	if err != nil {
		return nil, translate(err, "query watch history")
	}
	defer rows.Close()

	history := []models.WatchedVideo{}
	for rows.Next() {
		var w models.WatchedVideo
		if err := rows.Scan(&w.ID, &w.VideoFile, &w.Thumbnail, &w.Title, &w.Description, &w.Duration, &w.Views,
			&w.IsPublished, &w.CreatedAt, &w.WatchedAt, &w.Owner.ID, &w.Owner.Username, &w.Owner.Fullname, &w.Owner.Avatar); err != nil {
			return nil, fmt.Errorf("scan watch history: %w", err)
		}
		history = append(history, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}
	span.Annotate("entries", len(history))
	return history, nil
}

// ChannelVideos returns a sorted window over a channel's published videos.
func (m *PostgresReadModel) ChannelVideos(ctx context.Context, ownerID string, page models.PageRequest) ([]models.VideoSummary, error) {
	conn, err := acquire(ctx, m.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, title, thumbnail, views, duration
        FROM videos
        WHERE owner_id = $1 AND is_published
        `+orderClause(page, videoSortColumns, "id")+`
        LIMIT $2 OFFSET $3
    `, ownerID, page.Limit, page.Offset())
	if err != nil {
		return nil, translate(err, "query channel videos")
	}
	return collectSummaries(rows)
}

// LikedVideos lists the videos userID liked, most recent like first.
func (m *PostgresReadModel) LikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error) {
	conn, err := acquire(ctx, m.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.thumbnail, v.views, v.duration, v.owner_id, v.created_at
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        WHERE l.liked_by = $1
        ORDER BY l.created_at DESC, l.id DESC
    `, userID)
	if err != nil {
		return nil, translate(err, "query liked videos")
	}
	defer rows.Close()

	liked := []models.LikedVideo{}
	for rows.Next() {
		var v models.LikedVideo
		if err := rows.Scan(&v.VideoID, &v.Title, &v.Thumbnail, &v.Views, &v.Duration, &v.OwnerID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		liked = append(liked, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}
	return liked, nil
}

// PlaylistDetail loads a playlist with its owner and videos in playlist order.
func (m *PostgresReadModel) PlaylistDetail(ctx context.Context, playlistID string) (models.PlaylistDetail, error) {
	ctx, span := logging.StartSpan(ctx, "readmodel.playlist_detail")
	defer span.End()

	conn, err := acquire(ctx, m.pool)
	if err != nil {
		return models.PlaylistDetail{}, err
	}
	defer conn.Release()

	var detail models.PlaylistDetail
	err = conn.QueryRow(ctx, `
        SELECT p.id, p.name, p.description, p.created_at, p.updated_at, u.id, u.username, u.avatar
        FROM playlists p
        JOIN users u ON u.id = p.owner_id
        WHERE p.id = $1
    `, playlistID).Scan(&detail.ID, &detail.Name, &detail.Description, &detail.CreatedAt, &detail.UpdatedAt,
		&detail.Owner.ID, &detail.Owner.Username, &detail.Owner.Avatar)
	if err != nil {
		return models.PlaylistDetail{}, translate(err, "select playlist detail")
	}

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.thumbnail, v.duration, v.views, v.created_at
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        WHERE pv.playlist_id = $1
        ORDER BY pv.position
    `, playlistID)
	if err != nil {
		return models.PlaylistDetail{}, translate(err, "query playlist videos")
	}
	defer rows.Close()

	detail.Videos = []models.PlaylistVideo{}
	for rows.Next() {
		var v models.PlaylistVideo
		if err := rows.Scan(&v.ID, &v.Title, &v.Thumbnail, &v.Duration, &v.Views, &v.CreatedAt); err != nil {
			return models.PlaylistDetail{}, fmt.Errorf("scan playlist video: %w", err)
		}
		detail.Videos = append(detail.Videos, v)
	}
	if err := rows.Err(); err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("iterate playlist videos: %w", err)
	}
	span.Annotate("videos", len(detail.Videos))
	return detail, nil
}
