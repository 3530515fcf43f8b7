package models

import "time"

// VideoOwner is the minimal profile attached to each watched video.
type VideoOwner struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// WatchedVideo is one entry of a user's watch history, newest first.
type WatchedVideo struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	VideoFileURL string     `json:"videoFile"`
	ThumbnailURL string     `json:"thumbnail"`
	Duration     float64    `json:"duration"`
	Views        int64      `json:"views"`
	Owner        VideoOwner `json:"owner"`
	WatchedAt    time.Time  `json:"watchedAt"`
}
