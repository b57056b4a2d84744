package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidhub/backend/internal/db"
	"github.com/vidhub/backend/internal/models"
)

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

const commentColumns = `id, video_id, owner_id, content, created_at, updated_at`

func scanComment(row pgx.Row) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.VideoID, &c.OwnerID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create stores a comment. A missing video surfaces as ErrNotFound.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (`+commentColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, comment.ID, comment.VideoID, comment.OwnerID, comment.Content, comment.CreatedAt, comment.UpdatedAt)
	return translate(err, "insert comment")
}

func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Comment{}, err
	}
	defer conn.Release()

	comment, err := scanComment(conn.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return models.Comment{}, translate(err, "select comment")
	}
	return comment, nil
}

var commentSortColumns = map[models.SortField]string{
	models.SortCreatedAt: "c.created_at",
	models.SortUpdatedAt: "c.updated_at",
}

// ListByVideo returns a sorted window of a video's comments with their authors.
func (r *PostgresCommentRepository) ListByVideo(ctx context.Context, videoID string, page models.PageRequest) ([]models.CommentView, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT c.id, c.video_id, c.content, c.created_at, c.updated_at,
               u.id, u.username, u.fullname, u.avatar
        FROM comments c
        JOIN users u ON u.id = c.owner_id
        WHERE c.video_id = $1
        `+orderClause(page, commentSortColumns, "c.id")+`
        LIMIT $2 OFFSET $3
    `, videoID, page.Limit, page.Offset())
	if err != nil {
		return nil, translate(err, "query comments")
	}
	defer rows.Close()

	comments := []models.CommentView{}
	for rows.Next() {
		var c models.CommentView
		if err := rows.Scan(&c.ID, &c.VideoID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
			&c.Owner.ID, &c.Owner.Username, &c.Owner.Fullname, &c.Owner.Avatar); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

func (r *PostgresCommentRepository) UpdateContent(ctx context.Context, id, content string) (models.Comment, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Comment{}, err
	}
	defer conn.Release()

	comment, err := scanComment(conn.QueryRow(ctx, `
        UPDATE comments SET content = $2, updated_at = now()
        WHERE id = $1
        RETURNING `+commentColumns, id, content))
	if err != nil {
		return models.Comment{}, translate(err, "update comment")
	}
	return comment, nil
}

func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete comment")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
