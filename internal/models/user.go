package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Moderator    bool      `json:"moderator"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor is the verified identity behind a request.
type Actor struct {
	UserID    string
	Username  string
	Moderator bool
}

func (a Actor) IsZero() bool {
	return a.UserID == ""
}
