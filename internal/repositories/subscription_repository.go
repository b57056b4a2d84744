package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vidhub/backend/internal/db"
)

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle subscribes or unsubscribes subscriberID from channelID and reports the
// resulting state. A missing channel yields ErrNotFound.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	var subscribed bool
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := exists(ctx, tx, "users", channelID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
            DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
        `, subscriberID, channelID)
		if err != nil {
			return translate(err, "delete subscription")
		}
		if tag.RowsAffected() > 0 {
			subscribed = false
			return nil
		}

		_, err = tx.Exec(ctx, `
            INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT DO NOTHING
        `, uuid.NewString(), subscriberID, channelID, time.Now().UTC())
		if err != nil {
			return translate(err, "insert subscription")
		}
		subscribed = true
		return nil
	})
	return subscribed, err
}

// CountSubscribers returns how many users follow channelID.
func (r *PostgresSubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, "users", channelID, `SELECT count(*) FROM subscriptions WHERE channel_id = $1`)
}

// CountSubscriptions returns how many channels subscriberID follows.
func (r *PostgresSubscriptionRepository) CountSubscriptions(ctx context.Context, subscriberID string) (int64, error) {
	return r.count(ctx, "users", subscriberID, `SELECT count(*) FROM subscriptions WHERE subscriber_id = $1`)
}

func (r *PostgresSubscriptionRepository) count(ctx context.Context, table, id, query string) (int64, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	if err := exists(ctx, conn, table, id); err != nil {
		return 0, err
	}
	var n int64
	if err := conn.QueryRow(ctx, query, id).Scan(&n); err != nil {
		return 0, translate(err, "count subscriptions")
	}
	return n, nil
}
