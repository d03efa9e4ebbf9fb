package entity

import (
	"time"
)

// User is the aggregate root for user domain
// Passwords are stored as bcrypt hashes in Password field and never leave the service layer.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser is the input for creating a user record. ID and timestamps are assigned by the store.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
}

// UserPatch carries optional changes; nil fields are left untouched.
type UserPatch struct {
	Name      *string
	Email     *string
	AvatarURL *string
}

// Public is the client-facing projection of a user, without the password hash.
type Public struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (u *User) Public() Public {
	p := Public{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		p.UpdatedAt = &t
	}
	return p
}
