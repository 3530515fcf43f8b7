package users

import (
	"context"

	"github.com/1anshu-stack/backend/internal/server/models"
)

// Repository is the account store. Every mutation is a field-level update
// addressed by id; there are no multi-row transactions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByUsernameOrEmail matches either non-empty argument.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFields(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)

	ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error)
}
