package client

import (
	"context"

	"github.com/1anshu-stack/backend/internal/client/models"
)

// Client is the account API as seen by the CLI.
type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	UpdateAccount(ctx context.Context, username, fullName string) (*models.User, error)
	UpdateAvatar(ctx context.Context, path string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, path string) (*models.User, error)
	Channel(ctx context.Context, username string) (*models.Channel, error)
	WatchHistory(ctx context.Context) ([]models.WatchedVideo, error)
}

// Pinger reports whether the server is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
	Close() error
}
