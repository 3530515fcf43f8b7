// Package services contains server-side business logic. SessionService owns
// the login/refresh/logout lifecycle; AccountService covers profile reads and
// updates.
//
// Every user has at most one live refresh token, stored on the user row.
// Login and refresh overwrite it, logout clears it, and a presented refresh
// token is accepted only while it equals the stored value.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/cryptox"
	"github.com/1anshu-stack/backend/internal/logging"
	"github.com/1anshu-stack/backend/internal/server/auth"
	"github.com/1anshu-stack/backend/internal/server/media"
	"github.com/1anshu-stack/backend/internal/server/models"
	"github.com/1anshu-stack/backend/internal/server/repositories/repomanager"
)

// TokenIssuer is the part of auth.Issuer the services use.
type TokenIssuer interface {
	IssuePair(u *models.User) (auth.TokenPair, error)
	VerifyRefresh(token string) (*auth.RefreshClaims, error)
}

type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Session is what a successful login returns.
type Session struct {
	User   *models.PublicUser
	Tokens auth.TokenPair
}

type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      cryptox.PasswordHasher
	tokens      TokenIssuer
	media       media.Uploader
	logger      logging.Logger
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, hasher cryptox.PasswordHasher,
	tokens TokenIssuer, uploader media.Uploader, logger logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		media:       uploader,
		logger:      logger,
	}
}

// Register creates an account. The avatar must upload; a cover image that is
// missing or fails to upload is stored as "".
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	for _, f := range []string{in.FullName, in.Email, in.Username, in.Password} {
		if strings.TrimSpace(f) == "" {
			return nil, common.Validation("All fields are required")
		}
	}

	username := NormalizeUsername(in.Username)
	email := NormalizeEmail(in.Email)
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return nil, common.Conflict("User with email or username already exists")
	case !errors.Is(err, common.ErrorNotFound):
		return nil, common.Upstream("failed to look up user", err)
	}

	if in.AvatarPath == "" {
		return nil, common.Validation("Avatar file is required")
	}

	avatarURL, err := s.media.Upload(ctx, in.AvatarPath)
	if err != nil || avatarURL == "" {
		apiErr := common.Validation("Avatar file is required")
		apiErr.Err = err
		return nil, apiErr
	}

	coverURL := ""
	if in.CoverImagePath != "" {
		coverURL, err = s.media.Upload(ctx, in.CoverImagePath)
		if err != nil {
			s.logger.Warn(ctx, "cover image upload failed", "username", username, "error", err)
			coverURL = ""
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := repo.Create(ctx, &models.User{
		Username:      username,
		Email:         email,
		FullName:      strings.TrimSpace(in.FullName),
		PasswordHash:  hash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict("User with email or username already exists")
		}
		return nil, common.Upstream("failed to register user", err)
	}

	user, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		return nil, storeError(err, "Something went wrong while registering the user", "failed to load user")
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user.Public(), nil
}

// Login checks the password and starts a new session, replacing any previous
// refresh token of this user.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	username := NormalizeUsername(in.Username)
	email := NormalizeEmail(in.Email)
	if username == "" && email == "" {
		return nil, common.Validation("username or email is required")
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, storeError(err, "User does not exist", "failed to look up user")
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, common.Unauthorized("Invalid user credentials")
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	updated, err := repo.UpdateFields(ctx, user.ID, models.UserUpdate{RefreshToken: &pair.RefreshToken})
	if err != nil {
		return nil, storeError(err, "User does not exist", "failed to store session")
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &Session{User: updated.Public(), Tokens: pair}, nil
}

// Logout clears the stored refresh token, whatever it currently is.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	_, err := s.repomanager.Users(s.db).UpdateFields(ctx, userID, models.UserUpdate{RefreshToken: models.Ptr("")})
	if err != nil {
		return storeError(err, "User does not exist", "failed to clear session")
	}

	s.logger.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// RefreshSession exchanges a refresh token for a new pair. The presented
// token must equal the stored one, so each token works once. Every failure
// is reported as Unauthorized; the cause is only logged.
//
// The compare and the write are separate statements: two concurrent calls
// with the same token can both succeed, and the later write wins.
func (s *SessionService) RefreshSession(ctx context.Context, presented string) (*auth.TokenPair, error) {
	if presented == "" {
		return nil, common.Unauthorized("Unauthorized request")
	}

	claims, err := s.tokens.VerifyRefresh(presented)
	if err != nil {
		return nil, s.refreshFailed(ctx, "Invalid refresh token", err)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, s.refreshFailed(ctx, "Invalid refresh token", err)
	}

	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(user.RefreshToken)) != 1 {
		return nil, s.refreshFailed(ctx, "Refresh token is expired or used", errors.New("refresh token mismatch"))
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, s.refreshFailed(ctx, "Invalid refresh token", err)
	}

	if _, err := repo.UpdateFields(ctx, user.ID, models.UserUpdate{RefreshToken: &pair.RefreshToken}); err != nil {
		return nil, s.refreshFailed(ctx, "Invalid refresh token", err)
	}

	s.logger.Debug(ctx, "session refreshed", "user_id", user.ID)
	return &pair, nil
}

func (s *SessionService) refreshFailed(ctx context.Context, msg string, cause error) error {
	s.logger.Warn(ctx, "refresh rejected", "reason", msg, "error", cause)
	return common.UnauthorizedCause(msg, cause)
}

// ChangePassword replaces the password hash. The current session is kept.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return common.Validation("New password is required")
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return storeError(err, "User does not exist", "failed to load user")
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return common.Unauthorized("Invalid old password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := repo.UpdateFields(ctx, userID, models.UserUpdate{PasswordHash: &hash}); err != nil {
		return storeError(err, "User does not exist", "failed to update password")
	}

	s.logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}
