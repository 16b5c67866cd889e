package models

import "time"

// AdminUsername is the reserved name that carries the admin flag.
const AdminUsername = "admin"

// Identity is a registered account.
type Identity struct {
	Username     string     `json:"username"`
	UserID       string     `json:"user_id"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	Admin        bool       `json:"is_admin"`
	Banned       bool       `json:"banned"`
	MutedUntil   *time.Time `json:"muted_until,omitempty"`
}

// IsMuted reports whether the mute window is still open at now.
func (i Identity) IsMuted(now time.Time) bool {
	return i.MutedUntil != nil && now.Before(*i.MutedUntil)
}

// Session binds a live connection to an identity.
type Session struct {
	ConnID   string    `json:"session_id"`
	Username string    `json:"username"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
