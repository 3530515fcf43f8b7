package models

import "time"

// User is the persisted account. PasswordHash and RefreshToken never leave
// the server; use Public before returning a user to a caller.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicUser is a sanitized User.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserUpdate lists the fields to change; nil fields are left untouched.
// An empty RefreshToken clears the stored token.
type UserUpdate struct {
	Username      *string
	Email         *string
	FullName      *string
	PasswordHash  *string
	AvatarURL     *string
	CoverImageURL *string
	RefreshToken  *string
}

func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.FullName == nil && u.PasswordHash == nil &&
		u.AvatarURL == nil && u.CoverImageURL == nil && u.RefreshToken == nil
}

// Ptr is a helper for filling UserUpdate literals.
func Ptr[T any](v T) *T { return &v }
