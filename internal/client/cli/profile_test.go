package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1anshu-stack/backend/internal/client/client"
	"github.com/1anshu-stack/backend/internal/client/models"
)

func TestMe_PrintsProfile(t *testing.T) {
	api := &fakeAPI{user: &models.User{ID: "u1", Username: "alice", Email: "a@x.io", FullName: "Alice", AvatarURL: "https://cdn/a.png"}}
	a, out := newTestApp(api)

	require.NoError(t, a.Me(context.Background()))
	assert.Contains(t, out.String(), "alice")
	assert.Contains(t, out.String(), "https://cdn/a.png")
	assert.NotContains(t, out.String(), "Cover image")
}

func TestMe_NotLoggedIn(t *testing.T) {
	a, out := newTestApp(&fakeAPI{err: client.ErrNotLoggedIn})
	assert.Error(t, a.Me(context.Background()))
	assert.Contains(t, out.String(), "Please log in first")
}

func TestUpdateAccount_UpdatesPrompt(t *testing.T) {
	api := &fakeAPI{}
	a, _ := newTestApp(api)
	stubInputs(t, []string{"al", "Al"})

	require.NoError(t, a.UpdateAccount(context.Background()))
	assert.Equal(t, [2]string{"al", "Al"}, api.account)
	assert.Equal(t, "al", a.userName)
}

func TestReplaceImages(t *testing.T) {
	api := &fakeAPI{user: &models.User{ID: "u1"}}
	a, _ := newTestApp(api)

	stubInputs(t, []string{"/a.png"})
	require.NoError(t, a.UpdateAvatar(context.Background()))
	assert.Equal(t, "avatar:/a.png", api.image)

	stubInputs(t, []string{"/c.png"})
	require.NoError(t, a.UpdateCoverImage(context.Background()))
	assert.Equal(t, "cover:/c.png", api.image)
}

func TestChannel_Prints(t *testing.T) {
	api := &fakeAPI{ch: &models.Channel{Username: "bob", FullName: "Bob", SubscribersCount: 3, IsSubscribed: true}}
	a, out := newTestApp(api)

	require.NoError(t, a.Channel(context.Background(), "bob"))
	assert.Equal(t, "bob", api.channel)
	assert.Contains(t, out.String(), "Subscribers:")
	assert.Contains(t, out.String(), "true")
}

func TestHistory(t *testing.T) {
	api := &fakeAPI{}
	a, out := newTestApp(api)

	require.NoError(t, a.History(context.Background()))
	assert.Contains(t, out.String(), "Watch history is empty")

	out.Reset()
	api.history = []models.WatchedVideo{{
		Title:     "Intro",
		Views:     7,
		Owner:     models.VideoOwner{Username: "bob"},
		WatchedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, a.History(context.Background()))
	assert.Contains(t, out.String(), "Intro")
	assert.Contains(t, out.String(), "2024-05-01 10:00")
}
