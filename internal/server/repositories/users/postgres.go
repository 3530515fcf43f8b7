package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/dbx"
	"github.com/1anshu-stack/backend/internal/server/models"
	"github.com/google/uuid"
)

const userColumns = `id, username, email, full_name, password_hash, avatar_url, cover_image_url, COALESCE(refresh_token, ''), created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.AvatarURL, &u.CoverImageURL, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err, ""):
		return fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	// ids are uuids; anything else cannot exist
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	if username == "" && email == "" {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users
		 WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		 ORDER BY created_at
		 LIMIT 1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, username, email))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, full_name, password_hash, avatar_url, cover_image_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash, user.AvatarURL, user.CoverImageURL))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// UpdateFields sets only the non-nil fields of upd and returns the updated
// row, or common.ErrorNotFound when no user has this id.
func (r *PostgresRepository) UpdateFields(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if upd.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Username != nil {
		set("username", *upd.Username)
	}
	if upd.Email != nil {
		set("email", *upd.Email)
	}
	if upd.FullName != nil {
		set("full_name", *upd.FullName)
	}
	if upd.PasswordHash != nil {
		set("password_hash", *upd.PasswordHash)
	}
	if upd.AvatarURL != nil {
		set("avatar_url", *upd.AvatarURL)
	}
	if upd.CoverImageURL != nil {
		set("cover_image_url", *upd.CoverImageURL)
	}
	if upd.RefreshToken != nil {
		if *upd.RefreshToken == "" {
			set("refresh_token", nil)
		} else {
			set("refresh_token", *upd.RefreshToken)
		}
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *PostgresRepository) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	query :=
		`SELECT u.id, u.username, u.full_name, u.email, u.avatar_url, u.cover_image_url,
		        (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id),
		        (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
		        EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id::text = $2)
		 FROM users u
		 WHERE u.username = $1`

	p := &models.ChannelProfile{}
	err := r.db.QueryRowContext(ctx, query, username, viewerID).Scan(
		&p.ID, &p.Username, &p.FullName, &p.Email, &p.AvatarURL, &p.CoverImageURL,
		&p.SubscribersCount, &p.ChannelsSubscribedToCount, &p.IsSubscribed)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// WatchHistory returns the user's watched videos, most recent first, each
// with its owner resolved.
func (r *PostgresRepository) WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT v.id, v.title, v.description, v.video_file_url, v.thumbnail_url, v.duration, v.views,
		        o.id, o.username, o.full_name, o.avatar_url, w.watched_at
		 FROM watch_history w
		 JOIN videos v ON v.id = w.video_id
		 JOIN users o ON o.id = v.owner_id
		 WHERE w.user_id = $1
		 ORDER BY w.watched_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	history := make([]models.WatchedVideo, 0)
	for rows.Next() {
		var v models.WatchedVideo
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.VideoFileURL, &v.ThumbnailURL, &v.Duration, &v.Views,
			&v.Owner.ID, &v.Owner.Username, &v.Owner.FullName, &v.Owner.AvatarURL, &v.WatchedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		history = append(history, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return history, nil
}
