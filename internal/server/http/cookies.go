package http

import (
	"net/http"
	"time"

	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/server/auth"
)

// Session cookies are always HttpOnly and Secure.
func sessionCookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func setSessionCookies(w http.ResponseWriter, pair auth.TokenPair, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, sessionCookie(common.AccessTokenCookieName, pair.AccessToken, accessTTL))
	http.SetCookie(w, sessionCookie(common.RefreshTokenCookieName, pair.RefreshToken, refreshTTL))
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		c := sessionCookie(name, "", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
