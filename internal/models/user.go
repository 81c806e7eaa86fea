package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `json:"-"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	AvatarURL           string     `json:"avatar_url,omitempty"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	IsEmailVerified     bool       `gorm:"default:false" json:"is_email_verified"`
	GoogleID            *string    `gorm:"uniqueIndex" json:"-"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}

// HasPassword reports whether the user can log in with a password.
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// GoogleLinked reports whether a Google account is attached.
func (u *User) GoogleLinked() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}
