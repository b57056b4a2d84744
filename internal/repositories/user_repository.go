package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidhub/backend/internal/auth"
	"github.com/vidhub/backend/internal/db"
	"github.com/vidhub/backend/internal/models"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users and
// their active refresh token.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `u.id, u.username, u.email, u.fullname, u.avatar, u.cover_image, u.password_hash,
        COALESCE(u.refresh_token, ''), u.created_at, u.updated_at,
        ARRAY(SELECT wh.video_id::TEXT FROM watch_history wh WHERE wh.user_id = u.id ORDER BY wh.watched_at DESC, wh.video_id)`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Fullname, &user.Avatar, &user.CoverImage,
		&user.Password, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt, &user.WatchHistory)
	if user.WatchHistory == nil {
		user.WatchHistory = []string{}
	}
	return user, err
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, fullname, avatar, cover_image, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, user.ID, user.Username, user.Email, user.Fullname, user.Avatar, user.CoverImage, user.Password, user.CreatedAt, user.UpdatedAt)
	return translate(err, "insert user")
}

// FindByID fetches a user by primary key.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.User{}, err
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		return models.User{}, translate(err, "select user by id")
	}
	return user, nil
}

// FindByLogin fetches the user matching either the username or the email. Empty
// identifiers never match.
func (r *PostgresUserRepository) FindByLogin(ctx context.Context, username, email string) (models.User, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.User{}, err
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users u
        WHERE ($1 <> '' AND u.username = $1) OR ($2 <> '' AND u.email = $2)
        ORDER BY u.created_at
        LIMIT 1
    `, username, email))
	if err != nil {
		return models.User{}, translate(err, "select user by login")
	}
	return user, nil
}

// Exists reports whether the username or email is already registered.
func (r *PostgresUserRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	var found bool
	if err := conn.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)
    `, username, email).Scan(&found); err != nil {
		return false, translate(err, "check user exists")
	}
	return found, nil
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
    `, id, passwordHash)
	if err != nil {
		return translate(err, "update password")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAccount changes the user's display name and email.
func (r *PostgresUserRepository) UpdateAccount(ctx context.Context, id, fullname, email string) (models.User, error) {
	return r.update(ctx, "update account", `UPDATE users SET fullname = $2, email = $3, updated_at = now() WHERE id = $1`, id, fullname, email)
}

// UpdateAvatar points the user at a newly uploaded avatar.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id, url string) (models.User, error) {
	return r.update(ctx, "update avatar", `UPDATE users SET avatar = $2, updated_at = now() WHERE id = $1`, id, url)
}

// UpdateCoverImage points the user at a newly uploaded cover image.
func (r *PostgresUserRepository) UpdateCoverImage(ctx context.Context, id, url string) (models.User, error) {
	return r.update(ctx, "update cover image", `UPDATE users SET cover_image = $2, updated_at = now() WHERE id = $1`, id, url)
}

func (r *PostgresUserRepository) update(ctx context.Context, op, stmt string, args ...any) (models.User, error) {
	var user models.User
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, stmt, args...)
		if err != nil {
			return translate(err, op)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		user, err = scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, args[0]))
		return translate(err, "reload user")
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// SetRefreshToken overwrites the user's active refresh token.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	return r.writeToken(ctx, "set refresh token", `UPDATE users SET refresh_token = $2 WHERE id = $1`, userID, token)
}

// RefreshToken returns the active refresh token, or "" after logout.
func (r *PostgresUserRepository) RefreshToken(ctx context.Context, userID string) (string, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return "", err
	}
	defer conn.Release()

	var token string
	err = conn.QueryRow(ctx, `SELECT COALESCE(refresh_token, '') FROM users WHERE id = $1`, userID).Scan(&token)
	if err != nil {
		if errors.Is(translate(err, ""), ErrNotFound) {
			return "", auth.ErrUnknownUser
		}
		return "", fmt.Errorf("select refresh token: %w", err)
	}
	return token, nil
}

// SwapRefreshToken rotates current to next atomically; a concurrent rotation of
// the same token loses with ErrRefreshTokenReused.
func (r *PostgresUserRepository) SwapRefreshToken(ctx context.Context, userID, current, next string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users SET refresh_token = $3 WHERE id = $1 AND refresh_token = $2
    `, userID, current, next)
	if err != nil {
		return fmt.Errorf("swap refresh token: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if err := exists(ctx, conn, "users", userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.ErrUnknownUser
		}
		return err
	}
	return auth.ErrRefreshTokenReused
}

// ClearRefreshToken logs the user out.
func (r *PostgresUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	return r.writeToken(ctx, "clear refresh token", `UPDATE users SET refresh_token = NULL WHERE id = $1`, userID)
}

func (r *PostgresUserRepository) writeToken(ctx context.Context, op, stmt string, args ...any) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, stmt, args...)
	if err != nil {
		if errors.Is(translate(err, op), ErrNotFound) {
			return auth.ErrUnknownUser
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUnknownUser
	}
	return nil
}

var _ auth.CredentialStore = (*PostgresUserRepository)(nil)
