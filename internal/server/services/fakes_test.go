package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/cryptox"
	"github.com/1anshu-stack/backend/internal/dbx"
	"github.com/1anshu-stack/backend/internal/logging"
	"github.com/1anshu-stack/backend/internal/server/auth"
	"github.com/1anshu-stack/backend/internal/server/models"
	"github.com/1anshu-stack/backend/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory users.Repository with the same uniqueness rules
// as the PostgreSQL schema.
type memRepo struct {
	mu   sync.Mutex
	byID map[string]*models.User

	// onGetByID runs after GetByID has read the row, before it returns.
	onGetByID func()

	lookupErr      error
	createErr      error
	updateErr      error
	vanishOnCreate bool

	channel    *models.ChannelProfile
	history    []models.WatchedVideo
	aggErr     error
	lastViewer string
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*models.User{}}
}

func (r *memRepo) get(id string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		c := *u
		return &c
	}
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u := r.get(id)
	if r.onGetByID != nil {
		r.onGetByID()
	}
	if u == nil {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *memRepo) GetByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *user
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if !r.vanishOnCreate {
		r.byID[c.ID] = &c
	}
	out := c
	return &out, nil
}

func (r *memRepo) UpdateFields(_ context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Username != nil {
		for oid, o := range r.byID {
			if oid != id && o.Username == *upd.Username {
				return nil, common.ErrorAlreadyExists
			}
		}
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = *upd.AvatarURL
	}
	if upd.CoverImageURL != nil {
		u.CoverImageURL = *upd.CoverImageURL
	}
	if upd.RefreshToken != nil {
		u.RefreshToken = *upd.RefreshToken
	}
	u.UpdatedAt = time.Now()
	c := *u
	return &c, nil
}

func (r *memRepo) ChannelProfile(_ context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	r.lastViewer = viewerID
	if r.aggErr != nil {
		return nil, r.aggErr
	}
	if r.channel == nil || r.channel.Username != username {
		return nil, common.ErrorNotFound
	}
	c := *r.channel
	return &c, nil
}

func (r *memRepo) WatchHistory(_ context.Context, userID string) ([]models.WatchedVideo, error) {
	if r.aggErr != nil {
		return nil, r.aggErr
	}
	return r.history, nil
}

type fakeManager struct {
	repo *memRepo
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository        { return m.repo }

type fakeUploader struct {
	mu    sync.Mutex
	fail  map[string]error
	calls []string
}

func (f *fakeUploader) Upload(_ context.Context, localPath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, localPath)
	if err := f.fail[localPath]; err != nil {
		return "", err
	}
	return "https://cdn.test/" + localPath, nil
}

var errUpload = errors.New("upload failed")

type fixture struct {
	repo     *memRepo
	uploader *fakeUploader
	issuer   *auth.Issuer
	sessions *SessionService
	accounts *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	issuer, err := auth.NewIssuer(auth.Options{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	repo := newMemRepo()
	up := &fakeUploader{fail: map[string]error{}}
	m := &fakeManager{repo: repo}
	hasher := cryptox.NewArgon2Hasher(cryptox.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

	return &fixture{
		repo:     repo,
		uploader: up,
		issuer:   issuer,
		sessions: NewSessionService(nil, m, hasher, issuer, up, logging.Nop{}),
		accounts: NewAccountService(nil, m, up, logging.Nop{}),
	}
}

func (f *fixture) register(t *testing.T, username, email, password string) *models.PublicUser {
	t.Helper()
	u, err := f.sessions.Register(context.Background(), RegisterInput{
		FullName:   "Full " + username,
		Email:      email,
		Username:   username,
		Password:   password,
		AvatarPath: username + "-avatar.png",
	})
	require.NoError(t, err)
	return u
}
