package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/logging"
	"github.com/1anshu-stack/backend/internal/server/auth"
	"github.com/1anshu-stack/backend/internal/server/health"
	"github.com/1anshu-stack/backend/internal/server/models"
	"github.com/1anshu-stack/backend/internal/server/services"
)

type fakeSessions struct {
	register       func(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error)
	login          func(ctx context.Context, in services.LoginInput) (*services.Session, error)
	logout         func(ctx context.Context, userID string) error
	refresh        func(ctx context.Context, presented string) (*auth.TokenPair, error)
	changePassword func(ctx context.Context, userID, oldPassword, newPassword string) error
}

func (f *fakeSessions) Register(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error) {
	return f.register(ctx, in)
}

func (f *fakeSessions) Login(ctx context.Context, in services.LoginInput) (*services.Session, error) {
	return f.login(ctx, in)
}

func (f *fakeSessions) Logout(ctx context.Context, userID string) error {
	return f.logout(ctx, userID)
}

func (f *fakeSessions) RefreshSession(ctx context.Context, presented string) (*auth.TokenPair, error) {
	return f.refresh(ctx, presented)
}

func (f *fakeSessions) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return f.changePassword(ctx, userID, oldPassword, newPassword)
}

type fakeAccounts struct {
	users map[string]*models.PublicUser

	updateDetails func(ctx context.Context, userID, username, fullName string) (*models.PublicUser, error)
	updateImage   func(ctx context.Context, userID, localPath string) (*models.PublicUser, error)
	channel       func(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	history       func(ctx context.Context, userID string) ([]models.WatchedVideo, error)
}

func (f *fakeAccounts) CurrentUser(_ context.Context, userID string) (*models.PublicUser, error) {
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, common.NotFound("User does not exist")
}

func (f *fakeAccounts) UpdateAccountDetails(ctx context.Context, userID, username, fullName string) (*models.PublicUser, error) {
	return f.updateDetails(ctx, userID, username, fullName)
}

func (f *fakeAccounts) UpdateAvatar(ctx context.Context, userID, localPath string) (*models.PublicUser, error) {
	return f.updateImage(ctx, userID, localPath)
}

func (f *fakeAccounts) UpdateCoverImage(ctx context.Context, userID, localPath string) (*models.PublicUser, error) {
	return f.updateImage(ctx, userID, localPath)
}

func (f *fakeAccounts) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	return f.channel(ctx, username, viewerID)
}

func (f *fakeAccounts) WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error) {
	return f.history(ctx, userID)
}

// fakeVerifier accepts "tok-<userID>" and reports "expired" as expired.
type fakeVerifier struct{}

func (fakeVerifier) VerifyAccess(token string) (*auth.AccessClaims, error) {
	switch {
	case token == "expired":
		return nil, common.ErrTokenExpired
	case len(token) > 4 && token[:4] == "tok-":
		return &auth.AccessClaims{UserID: token[4:]}, nil
	default:
		return nil, common.ErrInvalidToken
	}
}

type testEnv struct {
	sessions *fakeSessions
	accounts *fakeAccounts
	handler  *Handler
	router   http.Handler
}

func testOptions(t *testing.T) Options {
	return Options{
		AccessTTL:      time.Minute,
		RefreshTTL:     time.Hour,
		UploadDir:      t.TempDir(),
		JSONBodyLimit:  1 << 10,
		MultipartLimit: 1 << 20,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	alice := &models.PublicUser{ID: "u1", Username: "alice", Email: "alice@example.com", FullName: "Alice"}
	s := &fakeSessions{}
	a := &fakeAccounts{users: map[string]*models.PublicUser{"u1": alice}}
	h := NewHandler(s, a, fakeVerifier{}, testOptions(t), logging.Nop{})

	return &testEnv{
		sessions: s,
		accounts: a,
		handler:  h,
		router: NewRouter(RouterConfig{
			Handler: h,
			Health:  health.NewChecker(time.Second),
			Prefix:  "/api/v1/users",
			Logger:  logging.Nop{},
		}),
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
