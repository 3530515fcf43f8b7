package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/server/models"
)

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity injects the resolved caller into the context.
func WithIdentity(ctx context.Context, u *models.PublicUser) context.Context {
	return context.WithValue(ctx, identityContextKey, u)
}

// IdentityFromContext returns the resolved caller, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *models.PublicUser {
	u, _ := ctx.Value(identityContextKey).(*models.PublicUser)
	return u
}

// accessToken reads the access token from the session cookie or a Bearer header.
func accessToken(r *http.Request) string {
	if v := cookieValue(r, common.AccessTokenCookieName); v != "" {
		return v
	}
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

func (h *Handler) resolveIdentity(r *http.Request) (*models.PublicUser, error) {
	token := accessToken(r)
	if token == "" {
		return nil, common.Unauthorized("Unauthorized request")
	}

	claims, err := h.tokens.VerifyAccess(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, common.TokenExpired("Access token expired")
		}
		return nil, common.UnauthorizedCause("Invalid Access Token", err)
	}

	u, err := h.accounts.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UnauthorizedCause("Invalid Access Token", err)
		}
		return nil, err
	}
	return u, nil
}

// RequireIdentity rejects requests without a valid access token whose user
// still exists.
func (h *Handler) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := h.resolveIdentity(r)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), u)))
	})
}

// OptionalIdentity attaches the caller when a valid token is presented and
// lets the request through anonymously otherwise.
func (h *Handler) OptionalIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if accessToken(r) != "" {
			if u, err := h.resolveIdentity(r); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), u))
			}
		}
		next.ServeHTTP(w, r)
	})
}
