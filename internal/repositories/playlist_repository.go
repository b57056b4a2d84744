package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidhub/backend/internal/db"
	"github.com/vidhub/backend/internal/models"
)

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

const playlistColumns = `p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at,
        ARRAY(SELECT pv.video_id::TEXT FROM playlist_videos pv WHERE pv.playlist_id = p.id ORDER BY pv.position)`

func scanPlaylist(row pgx.Row) (models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt, &p.VideoIDs)
	if p.VideoIDs == nil {
		p.VideoIDs = []string{}
	}
	return p, err
}

func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description, playlist.CreatedAt, playlist.UpdatedAt)
	return translate(err, "insert playlist")
}

func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Playlist{}, err
	}
	defer conn.Release()

	playlist, err := scanPlaylist(conn.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists p WHERE p.id = $1`, id))
	if err != nil {
		return models.Playlist{}, translate(err, "select playlist")
	}
	return playlist, nil
}

// ListByOwner returns ownerID's playlists, newest first.
func (r *PostgresPlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+playlistColumns+` FROM playlists p WHERE p.owner_id = $1 ORDER BY p.created_at DESC, p.id DESC
    `, ownerID)
	if err != nil {
		return nil, translate(err, "query playlists")
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// Update renames a playlist and rewrites its description.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, id, name, description string) (models.Playlist, error) {
	return r.mutate(ctx, id, "update playlist", `
        UPDATE playlists SET name = $2, description = $3, updated_at = now() WHERE id = $1
    `, id, name, description)
}

func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete playlist")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideo appends videoID to the end of the playlist; adding a video twice is a no-op.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error) {
	return r.mutate(ctx, playlistID, "add playlist video", `
        INSERT INTO playlist_videos (playlist_id, video_id, position)
        SELECT $1, $2, COALESCE(MAX(position), 0) + 1 FROM playlist_videos WHERE playlist_id = $1
        ON CONFLICT (playlist_id, video_id) DO NOTHING
    `, playlistID, videoID)
}

// RemoveVideo drops videoID from the playlist if present.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error) {
	return r.mutate(ctx, playlistID, "remove playlist video", `
        DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID)
}

func (r *PostgresPlaylistRepository) mutate(ctx context.Context, id, op, stmt string, args ...any) (models.Playlist, error) {
	var playlist models.Playlist
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := exists(ctx, tx, "playlists", id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return translate(err, op)
		}
		if _, err := tx.Exec(ctx, `UPDATE playlists SET updated_at = now() WHERE id = $1`, id); err != nil {
			return translate(err, "touch playlist")
		}
		var err error
		playlist, err = scanPlaylist(tx.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists p WHERE p.id = $1`, id))
		return translate(err, "reload playlist")
	})
	if err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}
