// Package http exposes the account API over HTTP: the chi router, request
// handlers, identity resolution, session cookies and multipart uploads.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/filex"
	"github.com/1anshu-stack/backend/internal/logging"
	"github.com/1anshu-stack/backend/internal/server/auth"
	"github.com/1anshu-stack/backend/internal/server/models"
	"github.com/1anshu-stack/backend/internal/server/services"
)

type Sessions interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error)
	Login(ctx context.Context, in services.LoginInput) (*services.Session, error)
	Logout(ctx context.Context, userID string) error
	RefreshSession(ctx context.Context, presented string) (*auth.TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type Accounts interface {
	CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error)
	UpdateAccountDetails(ctx context.Context, userID, username, fullName string) (*models.PublicUser, error)
	UpdateAvatar(ctx context.Context, userID, localPath string) (*models.PublicUser, error)
	UpdateCoverImage(ctx context.Context, userID, localPath string) (*models.PublicUser, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error)
}

type AccessVerifier interface {
	VerifyAccess(token string) (*auth.AccessClaims, error)
}

type Options struct {
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	UploadDir      string
	JSONBodyLimit  int64
	MultipartLimit int64
}

type Handler struct {
	sessions Sessions
	accounts Accounts
	tokens   AccessVerifier
	validate *validator.Validate
	opts     Options
	logger   logging.Logger
}

func NewHandler(sessions Sessions, accounts Accounts, tokens AccessVerifier, opts Options, logger logging.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		accounts: accounts,
		tokens:   tokens,
		validate: validator.New(),
		opts:     opts,
		logger:   logger,
	}
}

// decodeJSON reads a size-limited JSON body into dst and validates it. An
// empty body is accepted when optional is set.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.JSONBodyLimit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case optional && errors.Is(err, io.EOF):
		case errors.As(err, &tooLarge):
			return common.Validation("Request body is too large")
		default:
			return common.Validation("Invalid request body")
		}
	}
	if err := h.validate.Struct(dst); err != nil {
		return common.Validation(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" is invalid ("+fe.Tag()+")")
	}
	return strings.Join(fields, ", ")
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		RecordAuthAttempt("register", false)
		writeError(w, r, h.logger, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	avatar, err := h.spoolFile(r, "avatar")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	cover, err := h.spoolFile(r, "coverImage")
	// The uploader removes what it consumed; whatever is left goes here.
	defer filex.RemoveQuietly(avatar, cover)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.sessions.Register(r.Context(), services.RegisterInput{
		FullName:       r.FormValue("fullName"),
		Email:          r.FormValue("email"),
		Username:       r.FormValue("username"),
		Password:       r.FormValue("password"),
		AvatarPath:     avatar,
		CoverImagePath: cover,
	})
	RecordAuthAttempt("register", err == nil)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user, "User registered Successfully")
}

type loginRequest struct {
	Username string `json:"username" validate:"max=64"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"max=128"`
}

type loginResponse struct {
	User         *models.PublicUser `json:"user"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := h.decodeJSON(w, r, &body, false); err != nil {
		RecordAuthAttempt("login", false)
		writeError(w, r, h.logger, err)
		return
	}

	s, err := h.sessions.Login(r.Context(), services.LoginInput(body))
	RecordAuthAttempt("login", err == nil)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	setSessionCookies(w, s.Tokens, h.opts.AccessTTL, h.opts.RefreshTTL)
	writeJSON(w, http.StatusOK, loginResponse{
		User:         s.User,
		AccessToken:  s.Tokens.AccessToken,
		RefreshToken: s.Tokens.RefreshToken,
	}, "User logged In Successfully")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	u := IdentityFromContext(r.Context())
	if err := h.sessions.Logout(r.Context(), u.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	clearSessionCookies(w)
	writeJSON(w, http.StatusOK, struct{}{}, "User logged Out")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"max=1024"`
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	presented := cookieValue(r, common.RefreshTokenCookieName)
	if presented == "" {
		var body refreshRequest
		if err := h.decodeJSON(w, r, &body, true); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		presented = body.RefreshToken
	}

	pair, err := h.sessions.RefreshSession(r.Context(), presented)
	RecordAuthAttempt("refresh", err == nil)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	setSessionCookies(w, *pair, h.opts.AccessTTL, h.opts.RefreshTTL)
	writeJSON(w, http.StatusOK, pair, "Access token refreshed")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"max=128"`
	NewPassword string `json:"newPassword" validate:"max=128"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var body changePasswordRequest
	if err := h.decodeJSON(w, r, &body, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	u := IdentityFromContext(r.Context())
	if err := h.sessions.ChangePassword(r.Context(), u.ID, body.OldPassword, body.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct{}{}, "Password changed successfully")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, IdentityFromContext(r.Context()), "User fetched successfully")
}

type updateAccountRequest struct {
	Username string `json:"username" validate:"max=64"`
	FullName string `json:"fullName" validate:"max=128"`
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var body updateAccountRequest
	if err := h.decodeJSON(w, r, &body, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	u := IdentityFromContext(r.Context())
	updated, err := h.accounts.UpdateAccountDetails(r.Context(), u.ID, body.Username, body.FullName)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, updated, "Account details updated successfully")
}

func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", h.accounts.UpdateAvatar, "Avatar image updated successfully")
}

func (h *Handler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", h.accounts.UpdateCoverImage, "Cover image updated successfully")
}

func (h *Handler) replaceImage(w http.ResponseWriter, r *http.Request, field string,
	update func(ctx context.Context, userID, localPath string) (*models.PublicUser, error), message string) {

	if err := h.parseMultipart(w, r); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	path, err := h.spoolFile(r, field)
	defer filex.RemoveQuietly(path)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	u := IdentityFromContext(r.Context())
	updated, err := update(r.Context(), u.ID, path)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, updated, message)
}

func (h *Handler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	viewerID := ""
	if u := IdentityFromContext(r.Context()); u != nil {
		viewerID = u.ID
	}

	p, err := h.accounts.ChannelProfile(r.Context(), chi.URLParam(r, "username"), viewerID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, p, "User channel fetched successfully")
}

func (h *Handler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	u := IdentityFromContext(r.Context())
	history, err := h.accounts.WatchHistory(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, history, "Watch history fetched successfully")
}
