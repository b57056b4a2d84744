package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vidhub/backend/internal/db"
	"github.com/vidhub/backend/internal/models"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

var videoSortColumns = map[models.SortField]string{
	models.SortCreatedAt: "created_at",
	models.SortViews:     "views",
	models.SortDuration:  "duration",
	models.SortTitle:     "title",
}

// orderClause renders the ORDER BY for page from a whitelist of columns, falling
// back to the createdAt column. idColumn breaks ties in the same direction.
func orderClause(page models.PageRequest, columns map[models.SortField]string, idColumn string) string {
	column, ok := columns[page.SortBy]
	if !ok {
		column = columns[models.SortCreatedAt]
	}
	direction := "DESC"
	if page.Ascending {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, %s %s", column, direction, idColumn, direction)
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var v models.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.VideoFile, &v.Thumbnail, &v.Title, &v.Description,
		&v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

const videoColumns = `id, owner_id, video_file, thumbnail, title, description, duration, views, is_published, created_at, updated_at`

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (`+videoColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, video.ID, video.OwnerID, video.VideoFile, video.Thumbnail, video.Title, video.Description,
		video.Duration, video.Views, video.IsPublished, video.CreatedAt, video.UpdatedAt)
	return translate(err, "insert video")
}

// FindByID loads a single video.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Video{}, err
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		return models.Video{}, translate(err, "select video")
	}
	return video, nil
}

// List returns a window over published videos matching filter.
func (r *PostgresVideoRepository) List(ctx context.Context, filter models.VideoFilter, page models.PageRequest) ([]models.VideoSummary, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, title, thumbnail, views, duration
        FROM videos
        WHERE is_published
          AND ($1 = '' OR owner_id::TEXT = $1)
          AND ($2 = '' OR title ILIKE '%' || $2 || '%')
        `+orderClause(page, videoSortColumns, "id")+`
        LIMIT $3 OFFSET $4
    `, filter.OwnerID, likePattern(filter.Query), page.Limit, page.Offset())
	if err != nil {
		return nil, translate(err, "query videos")
	}
	return collectSummaries(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern escapes LIKE wildcards so q matches literally.
func likePattern(q string) string {
	return likeEscaper.Replace(q)
}

func collectSummaries(rows pgx.Rows) ([]models.VideoSummary, error) {
	defer rows.Close()
	summaries := []models.VideoSummary{}
	for rows.Next() {
		var s models.VideoSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Thumbnail, &s.Views, &s.Duration); err != nil {
			return nil, fmt.Errorf("scan video summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return summaries, nil
}

// Update rewrites a video's details and thumbnail.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) (models.Video, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Video{}, err
	}
	defer conn.Release()

	updated, err := scanVideo(conn.QueryRow(ctx, `
        UPDATE videos SET title = $2, description = $3, thumbnail = $4, updated_at = now()
        WHERE id = $1
        RETURNING `+videoColumns, video.ID, video.Title, video.Description, video.Thumbnail))
	if err != nil {
		return models.Video{}, translate(err, "update video")
	}
	return updated, nil
}

// SetPublished flips the visibility of a video.
func (r *PostgresVideoRepository) SetPublished(ctx context.Context, id string, published bool) (models.Video, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Video{}, err
	}
	defer conn.Release()

	updated, err := scanVideo(conn.QueryRow(ctx, `
        UPDATE videos SET is_published = $2, updated_at = now()
        WHERE id = $1
        RETURNING `+videoColumns, id, published))
	if err != nil {
		return models.Video{}, translate(err, "set video published")
	}
	return updated, nil
}

// Delete removes a video. Comments, likes and playlist entries cascade.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete video")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordView moves the video to the top of the user's watch history and
// counts one more view.
func (r *PostgresVideoRepository) RecordView(ctx context.Context, userID, videoID string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, videoID)
		if err != nil {
			return translate(err, "increment views")
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, `
            INSERT INTO watch_history (user_id, video_id, watched_at)
            VALUES ($1, $2, now())
            ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = excluded.watched_at
        `, userID, videoID)
		return translate(err, "record watch history")
	})
}
