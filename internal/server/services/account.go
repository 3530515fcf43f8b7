package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/logging"
	"github.com/1anshu-stack/backend/internal/server/media"
	"github.com/1anshu-stack/backend/internal/server/models"
	"github.com/1anshu-stack/backend/internal/server/repositories/repomanager"
)

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	media       media.Uploader
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, uploader media.Uploader, logger logging.Logger) *AccountService {
	return &AccountService{db: db, repomanager: m, media: uploader, logger: logger}
}

func (s *AccountService) CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User does not exist", "failed to load user")
	}
	return u.Public(), nil
}

func (s *AccountService) UpdateAccountDetails(ctx context.Context, userID, username, fullName string) (*models.PublicUser, error) {
	username = NormalizeUsername(username)
	fullName = strings.TrimSpace(fullName)
	if username == "" || fullName == "" {
		return nil, common.Validation("All fields are required")
	}

	u, err := s.repomanager.Users(s.db).UpdateFields(ctx, userID, models.UserUpdate{
		Username: &username,
		FullName: &fullName,
	})
	if err != nil {
		return nil, storeError(err, "User does not exist", "failed to update account")
	}
	return u.Public(), nil
}

func (s *AccountService) UpdateAvatar(ctx context.Context, userID, localPath string) (*models.PublicUser, error) {
	if localPath == "" {
		return nil, common.Validation("Avatar file is missing")
	}

	url, err := s.media.Upload(ctx, localPath)
	if err != nil {
		return nil, common.Upstream("Error while uploading avatar", err)
	}

	u, err := s.repomanager.Users(s.db).UpdateFields(ctx, userID, models.UserUpdate{AvatarURL: &url})
	if err != nil {
		return nil, storeError(err, "User does not exist", "failed to update avatar")
	}
	return u.Public(), nil
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, userID, localPath string) (*models.PublicUser, error) {
	if localPath == "" {
		return nil, common.Validation("Cover image file is missing")
	}

	url, err := s.media.Upload(ctx, localPath)
	if err != nil {
		return nil, common.Upstream("Error while uploading cover image", err)
	}

	u, err := s.repomanager.Users(s.db).UpdateFields(ctx, userID, models.UserUpdate{CoverImageURL: &url})
	if err != nil {
		return nil, storeError(err, "User does not exist", "failed to update cover image")
	}
	return u.Public(), nil
}

// ChannelProfile returns the channel view of username. viewerID may be empty
// for anonymous callers, in which case IsSubscribed is false.
func (s *AccountService) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, common.Validation("username is missing")
	}

	p, err := s.repomanager.Users(s.db).ChannelProfile(ctx, username, viewerID)
	if err != nil {
		return nil, storeError(err, "channel does not exist", "failed to load channel")
	}
	return p, nil
}

func (s *AccountService) WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error) {
	h, err := s.repomanager.Users(s.db).WatchHistory(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User does not exist", "failed to load watch history")
	}
	return h, nil
}
