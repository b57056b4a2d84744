package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vidhub/backend/internal/db"
	"github.com/vidhub/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

type likeTable struct {
	column string
	table  string
}

var likeTargets = map[models.LikeKind]likeTable{
	models.LikeVideo:   {column: "video_id", table: "videos"},
	models.LikeComment: {column: "comment_id", table: "comments"},
	models.LikeTweet:   {column: "tweet_id", table: "tweets"},
}

// Toggle flips the like between userID and target inside one transaction and
// reports whether the like exists afterwards. A missing target yields ErrNotFound.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, target models.LikeTarget, userID string) (bool, error) {
	ref, ok := likeTargets[target.Kind]
	if !ok {
		return false, fmt.Errorf("unknown like target %q", target.Kind)
	}

	var liked bool
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := exists(ctx, tx, ref.table, target.ID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM likes WHERE liked_by = $1 AND `+ref.column+` = $2`, userID, target.ID)
		if err != nil {
			return translate(err, "delete like")
		}
		if tag.RowsAffected() > 0 {
			liked = false
			return nil
		}

		_, err = tx.Exec(ctx, `
            INSERT INTO likes (id, liked_by, `+ref.column+`, created_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT DO NOTHING
        `, uuid.NewString(), userID, target.ID, time.Now().UTC())
		if err != nil {
			return translate(err, "insert like")
		}
		liked = true
		return nil
	})
	return liked, err
}
