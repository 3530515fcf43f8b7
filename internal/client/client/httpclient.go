package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/1anshu-stack/backend/internal/client/models"
	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/netx"
)

const maxResponseBytes = 4 << 20

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Code       string          `json:"code"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

// bodyFunc builds a fresh request body; it is called again on retry.
type bodyFunc func() (io.Reader, string, error)

func jsonBody(v any) bodyFunc {
	return func() (io.Reader, string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(b), "application/json", nil
	}
}

func multipartBody(fields, files map[string]string) bodyFunc {
	return func() (io.Reader, string, error) {
		return netx.MultipartBody(fields, files)
	}
}

type HTTPClient struct {
	base string
	http *http.Client

	mu     sync.Mutex
	tokens models.TokenPair
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url: unsupported scheme %q", u.Scheme)
	}
	return &HTTPClient{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) setTokens(p models.TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = p
}

func (c *HTTPClient) currentTokens() models.TokenPair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

// LoggedIn reports whether the client holds a session.
func (c *HTTPClient) LoggedIn() bool {
	return c.currentTokens().RefreshToken != ""
}

// do sends one request. An authenticated request answered with
// token_expired is retried once after a successful refresh.
func (c *HTTPClient) do(ctx context.Context, method, path string, body bodyFunc, out any, authed bool) error {
	err := c.send(ctx, method, path, body, out, authed)

	var re *ResponseError
	if authed && errors.As(err, &re) && re.Code == common.CodeTokenExpired {
		if rerr := c.Refresh(ctx); rerr != nil {
			return err
		}
		return c.send(ctx, method, path, body, out, authed)
	}
	return err
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body bodyFunc, out any, authed bool) error {
	var (
		r  io.Reader
		ct string
	)
	if body != nil {
		var err error
		if r, ct, err = body(); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if authed {
		token := c.currentTokens().AccessToken
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env)

	if resp.StatusCode >= http.StatusBadRequest {
		e := &ResponseError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
		if decodeErr != nil || e.Message == "" {
			e.Message = resp.Status
		}
		return e
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, in models.RegisterRequest) (*models.User, error) {
	fields := map[string]string{
		"fullName": in.FullName,
		"email":    in.Email,
		"username": in.Username,
		"password": in.Password,
	}
	files := map[string]string{"avatar": in.AvatarPath, "coverImage": in.CoverImagePath}

	var u models.User
	if err := c.do(ctx, http.MethodPost, "/register", multipartBody(fields, files), &u, false); err != nil {
		return nil, err
	}
	return &u, nil
}

type loginResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// Login accepts either a username or an email; anything containing "@" is
// sent as an email.
func (c *HTTPClient) Login(ctx context.Context, usernameOrEmail, password string) (*models.User, error) {
	req := map[string]string{"password": password}
	if strings.Contains(usernameOrEmail, "@") {
		req["email"] = usernameOrEmail
	} else {
		req["username"] = usernameOrEmail
	}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", jsonBody(req), &resp, false); err != nil {
		return nil, err
	}

	c.setTokens(models.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
	return resp.User, nil
}

// Logout ends the server session. Local tokens are dropped even when the
// server call fails.
func (c *HTTPClient) Logout(ctx context.Context) error {
	defer c.setTokens(models.TokenPair{})
	return c.do(ctx, http.MethodPost, "/logout", nil, nil, true)
}

// Refresh rotates the token pair. A rejected refresh token ends the local
// session.
func (c *HTTPClient) Refresh(ctx context.Context) error {
	refresh := c.currentTokens().RefreshToken
	if refresh == "" {
		return ErrNotLoggedIn
	}

	var pair models.TokenPair
	err := c.send(ctx, http.MethodPost, "/refresh-token", jsonBody(map[string]string{"refreshToken": refresh}), &pair, false)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.setTokens(models.TokenPair{})
		}
		return err
	}

	c.setTokens(pair)
	return nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.do(ctx, http.MethodPost, "/change-password", jsonBody(body), nil, true)
}

func (c *HTTPClient) UpdateAccount(ctx context.Context, username, fullName string) (*models.User, error) {
	body := map[string]string{"username": username, "fullName": fullName}
	var u models.User
	if err := c.do(ctx, http.MethodPatch, "/account", jsonBody(body), &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateAvatar(ctx context.Context, path string) (*models.User, error) {
	return c.uploadImage(ctx, "/avatar", "avatar", path)
}

func (c *HTTPClient) UpdateCoverImage(ctx context.Context, path string) (*models.User, error) {
	return c.uploadImage(ctx, "/cover-image", "coverImage", path)
}

func (c *HTTPClient) uploadImage(ctx context.Context, route, field, path string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPatch, route, multipartBody(nil, map[string]string{field: path}), &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

// Channel is readable anonymously; the session is sent when there is one so
// isSubscribed reflects the caller.
func (c *HTTPClient) Channel(ctx context.Context, username string) (*models.Channel, error) {
	var ch models.Channel
	path := "/channel/" + url.PathEscape(username)
	if err := c.do(ctx, http.MethodGet, path, nil, &ch, c.LoggedIn()); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *HTTPClient) WatchHistory(ctx context.Context) ([]models.WatchedVideo, error) {
	var h []models.WatchedVideo
	if err := c.do(ctx, http.MethodGet, "/watch-history", nil, &h, true); err != nil {
		return nil, err
	}
	return h, nil
}
