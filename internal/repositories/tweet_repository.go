package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidhub/backend/internal/db"
	"github.com/vidhub/backend/internal/models"
)

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets.
type PostgresTweetRepository struct {
	pool db.Pool
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

const tweetColumns = `id, owner_id, content, created_at, updated_at`

func scanTweet(row pgx.Row) (models.Tweet, error) {
	var t models.Tweet
	err := row.Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PostgresTweetRepository) Create(ctx context.Context, tweet models.Tweet) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO tweets (`+tweetColumns+`) VALUES ($1, $2, $3, $4, $5)
    `, tweet.ID, tweet.OwnerID, tweet.Content, tweet.CreatedAt, tweet.UpdatedAt)
	return translate(err, "insert tweet")
}

func (r *PostgresTweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Tweet{}, err
	}
	defer conn.Release()

	tweet, err := scanTweet(conn.QueryRow(ctx, `SELECT `+tweetColumns+` FROM tweets WHERE id = $1`, id))
	if err != nil {
		return models.Tweet{}, translate(err, "select tweet")
	}
	return tweet, nil
}

// ListByOwner returns a user's tweets, newest first.
func (r *PostgresTweetRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+tweetColumns+` FROM tweets WHERE owner_id = $1 ORDER BY created_at DESC, id DESC
    `, ownerID)
	if err != nil {
		return nil, translate(err, "query tweets")
	}
	defer rows.Close()

	tweets := []models.Tweet{}
	for rows.Next() {
		tweet, err := scanTweet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, tweet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}
	return tweets, nil
}

func (r *PostgresTweetRepository) UpdateContent(ctx context.Context, id, content string) (models.Tweet, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Tweet{}, err
	}
	defer conn.Release()

	tweet, err := scanTweet(conn.QueryRow(ctx, `
        UPDATE tweets SET content = $2, updated_at = now() WHERE id = $1 RETURNING `+tweetColumns, id, content))
	if err != nil {
		return models.Tweet{}, translate(err, "update tweet")
	}
	return tweet, nil
}

func (r *PostgresTweetRepository) Delete(ctx context.Context, id string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete tweet")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
