// Package auth mints and verifies the two kinds of session tokens.
//
// Access tokens carry the caller's profile ({id, username, email, fullName})
// and are trusted on their own until they expire. Refresh tokens carry only
// the user id and are additionally compared with the value stored on the
// user, so they are signed with a different secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Options is the immutable token configuration built from config.Config.
type Options struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type Issuer struct {
	opts Options
	now  func() time.Time
}

func NewIssuer(opts Options) (*Issuer, error) {
	switch {
	case len(opts.AccessSecret) == 0 || len(opts.RefreshSecret) == 0:
		return nil, errors.New("token secrets must be set")
	case string(opts.AccessSecret) == string(opts.RefreshSecret):
		return nil, errors.New("access and refresh secrets must differ")
	case opts.AccessTTL <= 0 || opts.RefreshTTL <= 0:
		return nil, errors.New("token lifetimes must be positive")
	}
	return &Issuer{opts: opts, now: time.Now}, nil
}

func (i *Issuer) registered(userID string, ttl time.Duration) jwt.RegisteredClaims {
	now := i.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (i *Issuer) IssueAccess(u *models.User) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: i.registered(u.ID, i.opts.AccessTTL),
		UserID:           u.ID,
		Username:         u.Username,
		Email:            u.Email,
		FullName:         u.FullName,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.opts.AccessSecret)
}

func (i *Issuer) IssueRefresh(u *models.User) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: i.registered(u.ID, i.opts.RefreshTTL),
		UserID:           u.ID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.opts.RefreshSecret)
}

func (i *Issuer) IssuePair(u *models.User) (TokenPair, error) {
	access, err := i.IssueAccess(u)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.IssueRefresh(u)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.parse(tokenString, claims, i.opts.AccessSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func (i *Issuer) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.parse(tokenString, claims, i.opts.RefreshSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// parse returns common.ErrTokenExpired for expired tokens and an error
// wrapping common.ErrInvalidToken for everything else.
func (i *Issuer) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	if tokenString == "" {
		return common.ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return common.ErrInvalidToken
	}

	return nil
}
