package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/1anshu-stack/backend/internal/client/models"
)

type fakeAPI struct {
	loggedIn bool

	regReq   models.RegisterRequest
	loginWho string
	loginPw  string
	oldPw    string
	newPw    string
	account  [2]string
	image    string
	channel  string

	user    *models.User
	ch      *models.Channel
	history []models.WatchedVideo
	err     error
}

func (f *fakeAPI) LoggedIn() bool { return f.loggedIn }

func (f *fakeAPI) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	f.regReq = req
	return f.user, f.err
}

func (f *fakeAPI) Login(_ context.Context, who, pw string) (*models.User, error) {
	f.loginWho, f.loginPw = who, pw
	if f.err != nil {
		return nil, f.err
	}
	f.loggedIn = true
	return f.user, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.loggedIn = false
	return f.err
}

func (f *fakeAPI) Refresh(context.Context) error {
	if f.err != nil {
		f.loggedIn = false
	}
	return f.err
}

func (f *fakeAPI) Me(context.Context) (*models.User, error) { return f.user, f.err }

func (f *fakeAPI) ChangePassword(_ context.Context, oldPw, newPw string) error {
	f.oldPw, f.newPw = oldPw, newPw
	return f.err
}

func (f *fakeAPI) UpdateAccount(_ context.Context, username, fullName string) (*models.User, error) {
	f.account = [2]string{username, fullName}
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u1", Username: username, FullName: fullName}, nil
}

func (f *fakeAPI) UpdateAvatar(_ context.Context, path string) (*models.User, error) {
	f.image = "avatar:" + path
	return f.user, f.err
}

func (f *fakeAPI) UpdateCoverImage(_ context.Context, path string) (*models.User, error) {
	f.image = "cover:" + path
	return f.user, f.err
}

func (f *fakeAPI) Channel(_ context.Context, username string) (*models.Channel, error) {
	f.channel = username
	return f.ch, f.err
}

func (f *fakeAPI) WatchHistory(context.Context) ([]models.WatchedVideo, error) {
	return f.history, f.err
}

type fakePinger struct {
	err    error
	closed bool
}

func (p *fakePinger) Ping(context.Context) error { return p.err }
func (p *fakePinger) Close() error               { p.closed = true; return nil }

// stubInputs replaces the prompt helpers with queued answers.
func stubInputs(t *testing.T, texts []string, passwords ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})

	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(string, io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}
}

func newTestApp(api *fakeAPI) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{api: api, health: &fakePinger{}, reader: bufio.NewReader(strings.NewReader("")), out: &out}, &out
}
