package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/server/auth"
	"github.com/1anshu-stack/backend/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	var apiErr *common.APIError
	assert.True(t, errors.As(err, &apiErr), "want *common.APIError, got %T", err)
}

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)

	u, err := f.sessions.Register(context.Background(), RegisterInput{
		FullName:       "Alice A",
		Email:          " A@X.com ",
		Username:       "Alice",
		Password:       "pw1",
		AvatarPath:     "avatar.png",
		CoverImagePath: "cover.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "https://cdn.test/avatar.png", u.AvatarURL)
	assert.Equal(t, "https://cdn.test/cover.png", u.CoverImageURL)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.NotContains(t, string(b), "refresh")

	stored := f.repo.get(u.ID)
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.Empty(t, stored.RefreshToken)
}

func TestRegister_BlankFields(t *testing.T) {
	valid := RegisterInput{FullName: "A", Email: "a@x.com", Username: "a", Password: "p", AvatarPath: "a.png"}

	tests := []struct {
		name   string
		mutate func(in *RegisterInput)
	}{
		{"full name", func(in *RegisterInput) { in.FullName = "  " }},
		{"email", func(in *RegisterInput) { in.Email = "" }},
		{"username", func(in *RegisterInput) { in.Username = "\t" }},
		{"password", func(in *RegisterInput) { in.Password = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			in := valid
			tc.mutate(&in)

			_, err := f.sessions.Register(context.Background(), in)
			assertKind(t, err, common.ErrorValidation)
			assert.Empty(t, f.uploader.calls, "nothing uploaded on invalid input")
		})
	}
}

func TestRegister_ConflictOnUsernameOrEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "a@x.com", "pw1")

	_, err := f.sessions.Register(context.Background(), RegisterInput{
		FullName: "Other", Email: "other@x.com", Username: "ALICE", Password: "p", AvatarPath: "x.png",
	})
	assertKind(t, err, common.ErrorConflict)

	_, err = f.sessions.Register(context.Background(), RegisterInput{
		FullName: "Other", Email: "A@x.com", Username: "bob", Password: "p", AvatarPath: "x.png",
	})
	assertKind(t, err, common.ErrorConflict)
}

func TestRegister_StoreUniqueViolationIsConflict(t *testing.T) {
	f := newFixture(t)
	f.repo.createErr = fmt.Errorf("%w: duplicate key", common.ErrorAlreadyExists)

	_, err := f.sessions.Register(context.Background(), RegisterInput{
		FullName: "A", Email: "a@x.com", Username: "a", Password: "p", AvatarPath: "a.png",
	})
	assertKind(t, err, common.ErrorConflict)
}

func TestRegister_StoreFailureIsUpstream(t *testing.T) {
	f := newFixture(t)
	f.repo.createErr = errors.New("db error: connection reset")

	_, err := f.sessions.Register(context.Background(), RegisterInput{
		FullName: "A", Email: "a@x.com", Username: "a", Password: "p", AvatarPath: "a.png",
	})
	assertKind(t, err, common.ErrorUpstream)

	f.repo.createErr = nil
	f.repo.lookupErr = errors.New("db error: timeout")
	_, err = f.sessions.Register(context.Background(), RegisterInput{
		FullName: "A", Email: "a@x.com", Username: "a", Password: "p", AvatarPath: "a.png",
	})
	assertKind(t, err, common.ErrorUpstream)
}

func TestRegister_AvatarRequired(t *testing.T) {
	f := newFixture(t)

	_, err := f.sessions.Register(context.Background(), RegisterInput{
		FullName: "A", Email: "a@x.com", Username: "a", Password: "p",
	})
	assertKind(t, err, common.ErrorValidation)

	f.uploader.fail["bad.png"] = errUpload
	_, err = f.sessions.Register(context.Background(), RegisterInput{
		FullName: "A", Email: "a@x.com", Username: "a", Password: "p", AvatarPath: "bad.png",
	})
	assertKind(t, err, common.ErrorValidation)
	assert.ErrorIs(t, err, errUpload)
}

func TestRegister_CoverFailureCoalescesToEmpty(t *testing.T) {
	f := newFixture(t)
	f.uploader.fail["cover.png"] = errUpload

	u, err := f.sessions.Register(context.Background(), RegisterInput{
		FullName: "A", Email: "a@x.com", Username: "a", Password: "p",
		AvatarPath: "a.png", CoverImagePath: "cover.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "", u.CoverImageURL)
	assert.NotEmpty(t, u.AvatarURL)
}

func TestRegister_UserVanishedIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.repo.vanishOnCreate = true

	_, err := f.sessions.Register(context.Background(), RegisterInput{
		FullName: "A", Email: "a@x.com", Username: "a", Password: "p", AvatarPath: "a.png",
	})
	assertKind(t, err, common.ErrorNotFound)
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "alice", "a@x.com", "pw1")

	s, err := f.sessions.Login(context.Background(), LoginInput{Username: "Alice", Password: "pw1"})
	require.NoError(t, err)

	assert.Equal(t, "alice", s.User.Username)
	assert.NotEmpty(t, s.Tokens.AccessToken)
	assert.NotEmpty(t, s.Tokens.RefreshToken)
	assert.Equal(t, s.Tokens.RefreshToken, f.repo.get(reg.ID).RefreshToken)

	claims, err := f.issuer.VerifyRefresh(s.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, claims.UserID)
}

func TestLogin_ByEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "a@x.com", "pw1")

	s, err := f.sessions.Login(context.Background(), LoginInput{Email: "A@X.COM", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", s.User.Username)
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "a@x.com", "pw1")

	_, err := f.sessions.Login(context.Background(), LoginInput{Password: "pw1"})
	assertKind(t, err, common.ErrorValidation)

	_, err = f.sessions.Login(context.Background(), LoginInput{Username: "ghost", Password: "pw1"})
	assertKind(t, err, common.ErrorNotFound)

	_, err = f.sessions.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	assertKind(t, err, common.ErrorUnauthorized)
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "a@x.com", "pw1")
	ctx := context.Background()

	first, err := f.sessions.Login(ctx, LoginInput{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	second, err := f.sessions.Login(ctx, LoginInput{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	_, err = f.sessions.RefreshSession(ctx, first.Tokens.RefreshToken)
	assertKind(t, err, common.ErrorUnauthorized)

	_, err = f.sessions.RefreshSession(ctx, second.Tokens.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshSession_SingleUseRotation(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "alice", "a@x.com", "pw1")
	ctx := context.Background()

	s, err := f.sessions.Login(ctx, LoginInput{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	pair, err := f.sessions.RefreshSession(ctx, s.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, s.Tokens.AccessToken, pair.AccessToken)
	assert.NotEqual(t, s.Tokens.RefreshToken, pair.RefreshToken)
	assert.Equal(t, pair.RefreshToken, f.repo.get(reg.ID).RefreshToken)

	_, err = f.sessions.RefreshSession(ctx, s.Tokens.RefreshToken)
	assertKind(t, err, common.ErrorUnauthorized)

	// the replay did not disturb the live session
	_, err = f.sessions.RefreshSession(ctx, pair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshSession_AfterLogoutFails(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "alice", "a@x.com", "pw1")
	ctx := context.Background()

	s, err := f.sessions.Login(ctx, LoginInput{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	require.NoError(t, f.sessions.Logout(ctx, reg.ID))
	assert.Empty(t, f.repo.get(reg.ID).RefreshToken)

	_, err = f.sessions.RefreshSession(ctx, s.Tokens.RefreshToken)
	assertKind(t, err, common.ErrorUnauthorized)
}

func TestRefreshSession_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sessions.RefreshSession(ctx, "")
	assertKind(t, err, common.ErrorUnauthorized)

	_, err = f.sessions.RefreshSession(ctx, "garbage")
	assertKind(t, err, common.ErrorUnauthorized)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	// validly signed, but for a user that does not exist
	ghost, err := f.issuer.IssueRefresh(&models.User{ID: "missing"})
	require.NoError(t, err)
	_, err = f.sessions.RefreshSession(ctx, ghost)
	assertKind(t, err, common.ErrorUnauthorized)

	// an access token is not a refresh token
	reg := f.register(t, "alice", "a@x.com", "pw1")
	s, err := f.sessions.Login(ctx, LoginInput{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	_, err = f.sessions.RefreshSession(ctx, s.Tokens.AccessToken)
	assertKind(t, err, common.ErrorUnauthorized)

	// store failure while persisting is still reported as unauthorized
	f.repo.updateErr = errors.New("db down")
	_, err = f.sessions.RefreshSession(ctx, s.Tokens.RefreshToken)
	assertKind(t, err, common.ErrorUnauthorized)
	f.repo.updateErr = nil
	assert.Equal(t, s.Tokens.RefreshToken, f.repo.get(reg.ID).RefreshToken)
}

// Two refreshes presenting the same token both pass the equality check when
// they read before either writes. Both succeed and the last write wins; the
// loser's new refresh token is dead on arrival.
func TestRefreshSession_ConcurrentRaceLastWriteWins(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "alice", "a@x.com", "pw1")
	ctx := context.Background()

	s, err := f.sessions.Login(ctx, LoginInput{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	var arrived sync.WaitGroup
	arrived.Add(2)
	f.repo.onGetByID = func() {
		arrived.Done()
		arrived.Wait()
	}

	var (
		wg    sync.WaitGroup
		pairs [2]*auth.TokenPair
		errs  [2]error
	)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pairs[i], errs[i] = f.sessions.RefreshSession(ctx, s.Tokens.RefreshToken)
		}()
	}
	wg.Wait()
	f.repo.onGetByID = nil

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.NotEqual(t, pairs[0].RefreshToken, pairs[1].RefreshToken)

	stored := f.repo.get(reg.ID).RefreshToken
	var winner, loser *auth.TokenPair
	switch stored {
	case pairs[0].RefreshToken:
		winner, loser = pairs[0], pairs[1]
	case pairs[1].RefreshToken:
		winner, loser = pairs[1], pairs[0]
	default:
		t.Fatalf("stored token matches neither refresh result")
	}

	_, err = f.sessions.RefreshSession(ctx, loser.RefreshToken)
	assertKind(t, err, common.ErrorUnauthorized)
	_, err = f.sessions.RefreshSession(ctx, winner.RefreshToken)
	require.NoError(t, err)
}

func TestLogout_IdempotentAndNotFound(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "alice", "a@x.com", "pw1")
	ctx := context.Background()

	require.NoError(t, f.sessions.Logout(ctx, reg.ID))
	require.NoError(t, f.sessions.Logout(ctx, reg.ID))

	err := f.sessions.Logout(ctx, "missing")
	assertKind(t, err, common.ErrorNotFound)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "alice", "a@x.com", "pw1")
	ctx := context.Background()

	s, err := f.sessions.Login(ctx, LoginInput{Username: "alice", Password: "pw1"})
	require.NoError(t, err)

	err = f.sessions.ChangePassword(ctx, reg.ID, "wrong", "pw2")
	assertKind(t, err, common.ErrorUnauthorized)

	err = f.sessions.ChangePassword(ctx, reg.ID, "pw1", " ")
	assertKind(t, err, common.ErrorValidation)

	require.NoError(t, f.sessions.ChangePassword(ctx, reg.ID, "pw1", "pw2"))

	// the session survives a password change
	assert.Equal(t, s.Tokens.RefreshToken, f.repo.get(reg.ID).RefreshToken)

	_, err = f.sessions.Login(ctx, LoginInput{Username: "alice", Password: "pw1"})
	assertKind(t, err, common.ErrorUnauthorized)

	_, err = f.sessions.Login(ctx, LoginInput{Username: "alice", Password: "pw2"})
	require.NoError(t, err)

	err = f.sessions.ChangePassword(ctx, "missing", "pw2", "pw3")
	assertKind(t, err, common.ErrorNotFound)
}

func TestScenario_RegisterLoginRefreshReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.sessions.Register(ctx, RegisterInput{
		FullName: "Alice", Email: "a@x.com", Username: "alice", Password: "pw1", AvatarPath: "a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	s, err := f.sessions.Login(ctx, LoginInput{Username: "alice", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", s.User.Username)

	pair, err := f.sessions.RefreshSession(ctx, s.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, s.Tokens.AccessToken, pair.AccessToken)
	assert.NotEqual(t, s.Tokens.RefreshToken, pair.RefreshToken)

	_, err = f.sessions.RefreshSession(ctx, s.Tokens.RefreshToken)
	assertKind(t, err, common.ErrorUnauthorized)
	assert.Equal(t, 401, common.AsAPIError(err).Status)
}
